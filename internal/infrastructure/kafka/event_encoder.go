package kafka

import (
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/jimlawless/whereami"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// ProductEventEncoder кодирует события товаров в protobuf Struct.
type ProductEventEncoder struct {
	now func() time.Time
}

func NewProductEventEncoder() *ProductEventEncoder {
	return &ProductEventEncoder{now: time.Now}
}

func (p *ProductEventEncoder) EncodeProductEvent(eventID string, eventType usecase.OutboxEventType, product *domain.Product) ([]byte, error) {
	event, err := structpb.NewStruct(map[string]any{
		"event_id":        eventID,
		"event_type":      string(eventType),
		"event_timestamp": p.now().UnixMilli(),
		"product": map[string]any{
			"id":          product.ID,
			"name":        product.Name,
			"price":       product.Price,
			"discount":    product.Discount,
			"quantity":    product.Quantity,
			"category_id": product.CategoryID,
			"seller_id":   product.SellerID,
			"image_path":  product.ImagePath,
			"is_approved": product.IsApproved,
		},
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	data, err := proto.Marshal(event)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return data, nil
}

// DecodeProductEvent разбирает payload, созданный EncodeProductEvent.
func DecodeProductEvent(data []byte) (*structpb.Struct, error) {
	var event structpb.Struct
	if err := proto.Unmarshal(data, &event); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	return &event, nil
}
