// Package jitter добавляет случайность в интервалы повторов, чтобы повторные попытки
// нескольких воркеров не совпадали по времени.
package jitter

import (
	"math/rand/v2"
	"time"
)

// DefaultJitter — стандартный коэффициент джиттера (50%)
const DefaultJitter = 0.5

// Duration возвращает продолжительность с применённым джиттером в диапазоне [d, d*(1+jitterFactor)].
func Duration(d time.Duration, jitterFactor float64) time.Duration {
	return d + time.Duration(rand.Float64()*jitterFactor*float64(d))
}

// ExponentialBackoff вычисляет экспоненциальную задержку с джиттером.
// attempt — номер попытки с нуля, результат без джиттера не превышает max.
func ExponentialBackoff(base, max time.Duration, attempt int, jitterFactor float64) time.Duration {
	backoff := base
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if backoff > max {
			backoff = max
			break
		}
	}
	return Duration(backoff, jitterFactor)
}

// Sleep ждёт d или отмену done. Возвращает false, если ожидание прервано.
func Sleep(done <-chan struct{}, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-done:
		return false
	}
}
