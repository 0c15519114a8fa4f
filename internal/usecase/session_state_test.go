package usecase

import (
	"testing"

	"github.com/DRSN-tech/storefront/internal/domain"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCart(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []domain.SessionCartItem
		wantErr bool
	}{
		{name: "valid", payload: `[{"productId":1,"quantity":2}]`, want: []domain.SessionCartItem{{ProductID: 1, Quantity: 2}}},
		{name: "empty list", payload: `[]`, want: []domain.SessionCartItem{}},
		{name: "null", payload: `null`, want: nil},
		{name: "not json", payload: `garbage`, wantErr: true},
		{name: "wrong shape", payload: `{"productId":1}`, wantErr: true},
		{name: "zero quantity", payload: `[{"productId":1,"quantity":0}]`, wantErr: true},
		{name: "quantity above limit", payload: `[{"productId":1,"quantity":10001}]`, wantErr: true},
		{name: "missing product id", payload: `[{"quantity":1}]`, wantErr: true},
		{name: "duplicate product", payload: `[{"productId":1,"quantity":1},{"productId":1,"quantity":2}]`, wantErr: true},
		{name: "string quantity", payload: `[{"productId":1,"quantity":"2"}]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeCart([]byte(tt.payload))
			if tt.wantErr {
				assert.ErrorIs(t, err, e.ErrMalformedSession)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeFavorites(t *testing.T) {
	ids, err := decodeFavorites([]byte(`[3,1,2]`))
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2}, ids)

	for _, payload := range []string{`[0]`, `[-1]`, `[1,2,1]`, `["1"]`, `{}`} {
		_, err := decodeFavorites([]byte(payload))
		assert.ErrorIs(t, err, e.ErrMalformedSession, payload)
	}
}
