package minio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/infrastructure"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/jitter"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/google/uuid"
)

const (
	cleanupAttempts    = 3
	cleanupTimeout     = 30 * time.Second
	cleanupBaseBackoff = time.Second
	cleanupMaxBackoff  = 4 * time.Second
)

// ImageStorage — хранилище объектов, в которое загружаются изображения.
type ImageStorage interface {
	Upload(ctx context.Context, image *domain.Image) (string, error)
	Delete(ctx context.Context, bucket string, key string) error
}

// MinioInfrastructure управляет загрузкой и очисткой изображений товаров в MinIO.
type MinioInfrastructure struct {
	storage     ImageStorage
	cfg         *cfg.MinIOCfg
	logger      logger.Logger
	shutdownCtx context.Context
	wg          sync.WaitGroup
	backoff     func(attempt int) time.Duration
}

func NewMinioInfrastructure(storage ImageStorage, cfg *cfg.MinIOCfg, logger logger.Logger, shutdownCtx context.Context) *MinioInfrastructure {
	return &MinioInfrastructure{
		storage:     storage,
		cfg:         cfg,
		logger:      logger,
		shutdownCtx: shutdownCtx,
		backoff: func(attempt int) time.Duration {
			return jitter.ExponentialBackoff(cleanupBaseBackoff, cleanupMaxBackoff, attempt, jitter.DefaultJitter)
		},
	}
}

// UploadImages загружает изображения товара в MinIO параллельно с ограничением одновременных операций.
// В случае ошибки отменяет остальные загрузки и запускает очистку уже загруженных файлов.
func (m *MinioInfrastructure) UploadImages(ctx context.Context, req *usecase.UploadImagesReq) (*usecase.UploadImagesRes, error) {
	const op = "MinioInfrastructure.UploadImages"

	// Отмена остальных загрузок при первой ошибке
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	limit := max(m.cfg.UploadImagesLimit, 1)

	keyCh := make(chan string, len(req.Images))
	errCh := make(chan error, len(req.Images))
	sem := make(chan struct{}, limit)

	var uploadWg sync.WaitGroup
	for _, image := range req.Images {
		uploadWg.Add(1)
		go func() {
			defer uploadWg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			ext, err := infrastructure.GetExtensionFromMIME(image.MimeType)
			if err != nil {
				errCh <- fmt.Errorf("invalid mime type %s for %s: %w", image.MimeType, image.Name, err)
				return
			}

			imageID := uuid.NewString()
			objKey := fmt.Sprintf("products/%s/%s.%s", infrastructure.Slug(req.Name), imageID, ext)
			newImage := domain.NewImage(imageID, m.cfg.BucketName, objKey, image.Data, image.MimeType)

			key, err := m.storage.Upload(ctx, newImage)
			if err != nil {
				errCh <- fmt.Errorf("upload %s failed: %w", image.Name, err)
				return
			}

			keyCh <- key
		}()
	}

	go func() {
		uploadWg.Wait()
		close(errCh)
		close(keyCh)
	}()

	keys := make([]string, 0, len(req.Images))
	done := false
	defer func() {
		if !done && len(keys) > 0 {
			m.CleanupImages(keys)
		}
	}()

	for len(keys) < len(req.Images) {
		select {
		case key, ok := <-keyCh:
			if ok {
				keys = append(keys, key)
			}
		case err, ok := <-errCh:
			if ok {
				cancel()
				// Дожидаемся уже начатых загрузок, чтобы очистить и их
				for key := range keyCh {
					keys = append(keys, key)
				}
				return nil, e.Wrap(op, err)
			}
		case <-ctx.Done():
			return nil, e.Wrap(op, ctx.Err())
		}
	}

	done = true
	return &usecase.UploadImagesRes{ImagesKeys: keys}, nil
}

// CleanupImages запускает фоновую очистку указанных ключей MinIO
func (m *MinioInfrastructure) CleanupImages(keys []string) {
	if len(keys) == 0 {
		return
	}
	m.wg.Add(1)
	go m.cleanupUploadedKeys(keys)
}

// cleanupUploadedKeys удаляет объекты из MinIO с экспоненциальной задержкой и jitter.
func (m *MinioInfrastructure) cleanupUploadedKeys(keys []string) {
	defer m.wg.Done()
	const op = "MinioInfrastructure.cleanupUploadedKeys"

	ctx, cancel := context.WithTimeout(m.shutdownCtx, cleanupTimeout)
	defer cancel()

	for _, key := range keys {
		for attempt := 0; attempt < cleanupAttempts; attempt++ {
			err := m.storage.Delete(ctx, m.cfg.BucketName, key)
			if err == nil {
				break
			}

			if attempt == cleanupAttempts-1 {
				m.logger.Errorf(e.Wrap(op, err), "Giving up on orphaned image %s", key)
				break
			}

			if !jitter.Sleep(ctx.Done(), m.backoff(attempt)) {
				m.logger.Warnf("Cleanup interrupted by shutdown, key=%s", key)
				return
			}
		}
	}
}

// WaitForCleanup ожидает завершения всех фоновых задач очистки с учётом таймаута завершения приложения.
func (m *MinioInfrastructure) WaitForCleanup(shutdownTimeoutCtx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-shutdownTimeoutCtx.Done():
		return fmt.Errorf("minio cleanup timeout during shutdown: %w", shutdownTimeoutCtx.Err())
	}
}

// PublicURL возвращает ссылку на изображение. Статические пути и ключи без публичного адреса возвращаются как есть.
func (m *MinioInfrastructure) PublicURL(path string) string {
	return PublicURL(m.cfg, path)
}

func PublicURL(cfg *cfg.MinIOCfg, path string) string {
	if path == "" || path[0] == '/' || cfg.PublicBaseURL == "" {
		return path
	}
	return fmt.Sprintf("%s/%s/%s", cfg.PublicBaseURL, cfg.BucketName, path)
}
