package minio

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStorage struct {
	mu         sync.Mutex
	objects    map[string]string
	failUpload string
	failDelete int
	deletes    int
}

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string]string)}
}

func (s *memStorage) Upload(_ context.Context, image *domain.Image) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpload != "" && string(image.Bytes) == s.failUpload {
		return "", errors.New("upload failed")
	}
	s.objects[image.ObjectKey] = image.ContentType
	return image.ObjectKey, nil
}

func (s *memStorage) Delete(_ context.Context, _ string, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	if s.failDelete > 0 {
		s.failDelete--
		return errors.New("delete failed")
	}
	delete(s.objects, key)
	return nil
}

func (s *memStorage) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func newInfra(storage *memStorage) *MinioInfrastructure {
	infra := NewMinioInfrastructure(storage, &cfg.MinIOCfg{BucketName: "product-images", UploadImagesLimit: 2}, logger.Nop(), context.Background())
	infra.backoff = func(int) time.Duration { return time.Millisecond }
	return infra
}

func TestUploadImages(t *testing.T) {
	storage := newMemStorage()
	infra := newInfra(storage)

	res, err := infra.UploadImages(context.Background(), usecase.NewUploadImagesReq("Desk Lamp", []usecase.ProductImage{
		{Name: "a.png", MimeType: "image/png", Data: []byte("a")},
		{Name: "b.jpg", MimeType: "image/jpeg", Data: []byte("b")},
	}))
	require.NoError(t, err)

	require.Len(t, res.ImagesKeys, 2)
	for _, key := range res.ImagesKeys {
		assert.True(t, strings.HasPrefix(key, "products/desk-lamp/"), key)
	}
	assert.Equal(t, 2, storage.len())
}

func TestUploadImages_UnsupportedType(t *testing.T) {
	infra := newInfra(newMemStorage())

	_, err := infra.UploadImages(context.Background(), usecase.NewUploadImagesReq("Lamp", []usecase.ProductImage{
		{Name: "doc.pdf", MimeType: "application/pdf", Data: []byte("x")},
	}))
	assert.ErrorIs(t, err, e.ErrUnsupportedMediaType)
}

func TestUploadImages_FailureCleansUpUploaded(t *testing.T) {
	storage := newMemStorage()
	storage.failUpload = "bad"
	infra := newInfra(storage)

	_, err := infra.UploadImages(context.Background(), usecase.NewUploadImagesReq("Lamp", []usecase.ProductImage{
		{Name: "ok.png", MimeType: "image/png", Data: []byte("ok")},
		{Name: "bad.png", MimeType: "image/png", Data: []byte("bad")},
	}))
	require.Error(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, infra.WaitForCleanup(ctx))
	assert.Zero(t, storage.len())
}

func TestCleanupImages_RetriesDelete(t *testing.T) {
	storage := newMemStorage()
	storage.objects["products/x.png"] = "image/png"
	storage.failDelete = 2
	infra := newInfra(storage)

	infra.CleanupImages([]string{"products/x.png"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, infra.WaitForCleanup(ctx))
	assert.Zero(t, storage.len())
	assert.Equal(t, 3, storage.deletes)
}

func TestPublicURL(t *testing.T) {
	c := &cfg.MinIOCfg{BucketName: "product-images", PublicBaseURL: "http://cdn.local"}

	assert.Equal(t, "http://cdn.local/product-images/products/a.png", PublicURL(c, "products/a.png"))
	assert.Equal(t, "/images/products/a.jpg", PublicURL(c, "/images/products/a.jpg"))
	assert.Equal(t, "", PublicURL(c, ""))
	assert.Equal(t, "products/a.png", PublicURL(&cfg.MinIOCfg{}, "products/a.png"))
}
