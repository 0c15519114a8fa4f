package usecase

import (
	"context"

	"github.com/DRSN-tech/storefront/internal/domain"
)

type ImagesInfra interface {
	UploadImages(ctx context.Context, req *UploadImagesReq) (*UploadImagesRes, error)
	CleanupImages(keys []string)
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}

// EventEncoder сериализует событие изменения товара для outbox.
type EventEncoder interface {
	EncodeProductEvent(eventID string, eventType OutboxEventType, product *domain.Product) ([]byte, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error
}

type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
}

// Authorizer решает, может ли роль выполнить действие над объектом.
type Authorizer interface {
	Can(actor domain.Actor, object string, action string) (bool, error)
}
