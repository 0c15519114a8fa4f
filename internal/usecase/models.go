package usecase

import (
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/google/uuid"
)

// SESSION

// Session — явный контекст сессии покупателя, который передаётся в операции корзины и избранного.
type Session struct {
	ID string
}

func NewSession(id string) Session {
	return Session{ID: id}
}

// ToggleFavoriteRes — результат переключения товара в избранном.
type ToggleFavoriteRes struct {
	Count int
	Added bool
}

// CATALOG

// ProductFilter — условия выборки товаров. Пустые поля не ограничивают выборку.
type ProductFilter struct {
	Query      string
	CategoryID *int64
	SellerID   *int64
	Names      []string
	ExcludeIDs []int64
}

// SearchProductsReq — запрос на поиск по каталогу.
type SearchProductsReq struct {
	Query      string
	CategoryID *int64
}

// CatalogPage — результат поиска вместе со списком категорий для фильтра.
type CatalogPage struct {
	Products   []domain.Product
	Categories []domain.Category
	Query      string
	CategoryID *int64
}

type CatalogStats struct {
	Categories int64
	Products   int64
}

// PRODUCT MANAGEMENT

// SaveProductReq — данные формы создания или изменения товара. Цены в копейках.
type SaveProductReq struct {
	Name        string
	Description string
	Price       int64
	Discount    int64
	Quantity    int
	CategoryID  int64
	IsApproved  bool
	Image       *ProductImage
}

// ProductImage представляет изображение, загруженное через multipart/form-data.
type ProductImage struct {
	Data     []byte // байты изображения
	MimeType string // Content-Type из multipart (image/jpeg)
	Size     int64  // фактический размер в байтах
	Name     string // оригинальное имя файла (для логов)
}

// UploadImagesReq — запрос на загрузку изображений товара.
type UploadImagesReq struct {
	Name   string
	Images []ProductImage
}

// UploadImagesRes — ключи загруженных объектов в MinIO.
type UploadImagesRes struct {
	ImagesKeys []string
}

func NewUploadImagesReq(name string, images []ProductImage) *UploadImagesReq {
	return &UploadImagesReq{
		Name:   name,
		Images: images,
	}
}

// ACCOUNT

type RegisterReq struct {
	Email    string
	Password string
	FullName string
}

type LoginReq struct {
	Email    string
	Password string
}

type BecomeSellerReq struct {
	ShopName    string
	Description string
}

// AuthRes — выданный токен и пользователь, для которого он выписан.
type AuthRes struct {
	Token string
	User  *domain.User
}

// OUTBOX

type OutboxEventType string

const (
	ProductCreated OutboxEventType = "product.created"
	ProductUpdated OutboxEventType = "product.updated"
	ProductDeleted OutboxEventType = "product.deleted"
)

type OutboxStatus string

const (
	OutboxPending    OutboxStatus = "pending"
	OutboxProcessing OutboxStatus = "processing"
	OutboxProcessed  OutboxStatus = "processed"
)

// OutboxEvent — событие изменения товара, записанное в одной транзакции с самим изменением.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   OutboxEventType
	ProductID   int64
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

func NewOutboxEvent(eventID string, eventType OutboxEventType, productID int64, payload []byte) *OutboxEvent {
	return &OutboxEvent{
		EventID:   eventID,
		EventType: eventType,
		ProductID: productID,
		Payload:   payload,
		Status:    OutboxPending,
	}
}

// WriteRawMessageReq — сообщение для брокера, ключом служит id товара.
type WriteRawMessageReq struct {
	ProductID int64
	Payload   []byte
}

func newEventID() string {
	return uuid.NewString()
}
