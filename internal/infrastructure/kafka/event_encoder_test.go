package kafka

import (
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductEventEncoder_Roundtrip(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	enc := &ProductEventEncoder{now: func() time.Time { return ts }}

	product := &domain.Product{
		ID:         42,
		Name:       "Smartwatch Pro",
		Price:      19999,
		Discount:   1000,
		Quantity:   3,
		CategoryID: 1,
		SellerID:   2,
		ImagePath:  "products/smartwatch-pro/a.png",
		IsApproved: true,
	}

	data, err := enc.EncodeProductEvent("evt-1", usecase.ProductUpdated, product)
	require.NoError(t, err)

	event, err := DecodeProductEvent(data)
	require.NoError(t, err)

	fields := event.AsMap()
	assert.Equal(t, "evt-1", fields["event_id"])
	assert.Equal(t, "product.updated", fields["event_type"])
	assert.Equal(t, float64(ts.UnixMilli()), fields["event_timestamp"])

	p, ok := fields["product"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(42), p["id"])
	assert.Equal(t, "Smartwatch Pro", p["name"])
	assert.Equal(t, float64(19999), p["price"])
	assert.Equal(t, float64(1000), p["discount"])
	assert.Equal(t, true, p["is_approved"])
	assert.Equal(t, "products/smartwatch-pro/a.png", p["image_path"])
}

func TestDecodeProductEvent_Garbage(t *testing.T) {
	_, err := DecodeProductEvent([]byte{0xff, 0xff, 0xff})
	assert.Error(t, err)
}
