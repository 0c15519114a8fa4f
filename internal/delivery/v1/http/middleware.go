package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/metrics"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type ctxKey int

const (
	sessionKey ctxKey = iota
	actorKey
)

// TokenParser проверяет токен доступа и возвращает пользователя.
type TokenParser interface {
	Parse(token string) (domain.Actor, error)
}

// SessionMiddleware выдаёт cookie сессии, если её нет или она повреждена,
// и продлевает срок жизни cookie при каждом запросе.
func SessionMiddleware(cfg *cfg.SessionCfg) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(cfg.CookieName); err == nil {
				if _, err := uuid.Parse(c.Value); err == nil {
					id = c.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
			}

			http.SetCookie(w, &http.Cookie{
				Name:     cfg.CookieName,
				Value:    id,
				Path:     "/",
				MaxAge:   int(cfg.IdleTTL.Seconds()),
				HttpOnly: true,
				Secure:   cfg.CookieSecure,
				SameSite: http.SameSiteLaxMode,
			})

			ctx := context.WithValue(r.Context(), sessionKey, usecase.NewSession(id))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFrom(ctx context.Context) usecase.Session {
	sess, _ := ctx.Value(sessionKey).(usecase.Session)
	return sess
}

// AuthMiddleware кладёт в контекст пользователя из заголовка Authorization или cookie.
// Запрос без токена или с недействительным токеном обрабатывается как анонимный.
func AuthMiddleware(parser TokenParser, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				if c, err := r.Cookie(cookieName); err == nil {
					token = c.Value
				}
			}

			if token != "" {
				if actor, err := parser.Parse(token); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), actorKey, actor))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth отвечает 401, если пользователь не аутентифицирован.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if actorFrom(r.Context()).UserID <= 0 {
			WriteError(w, e.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func actorFrom(ctx context.Context) domain.Actor {
	actor, _ := ctx.Value(actorKey).(domain.Actor)
	return actor
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "

	h := r.Header.Get("Authorization")
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}

// MetricsMiddleware считает запросы и их длительность по шаблону маршрута chi.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		metrics.ObserveHTTPRequest(r.Method, route, statusOf(ww), time.Since(start))
	})
}

// LoggingMiddleware пишет строку лога на каждый запрос.
func LoggingMiddleware(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := statusOf(ww)
			if status >= http.StatusInternalServerError {
				log.Errorf(fmt.Errorf("%w: status %d", e.ErrInternalServerError, status),
					"%s %s %d %s request_id=%s", r.Method, r.URL.Path, status, time.Since(start), middleware.GetReqID(r.Context()))
				return
			}
			log.Debugf("%s %s %d %s request_id=%s", r.Method, r.URL.Path, status, time.Since(start), middleware.GetReqID(r.Context()))
		})
	}
}

func statusOf(ww middleware.WrapResponseWriter) int {
	if ww.Status() == 0 {
		return http.StatusOK
	}
	return ww.Status()
}
