package http

import (
	"errors"
	"net/http"
	"testing"

	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTTPResponse(t *testing.T) {
	tests := []struct {
		err  error
		code int
		msg  string
	}{
		{e.Wrap("CartUseCase.AddToCart", e.ErrInvalidQuantity), http.StatusBadRequest, e.ErrInvalidQuantity.Error()},
		{e.ErrInvalidCredentials, http.StatusUnauthorized, e.ErrInvalidCredentials.Error()},
		{e.Wrap("op", e.ErrNotSeller), http.StatusForbidden, e.ErrNotSeller.Error()},
		{e.Wrap("op", e.ErrProductNotFound), http.StatusNotFound, e.ErrProductNotFound.Error()},
		{e.ErrEmailTaken, http.StatusConflict, e.ErrEmailTaken.Error()},
		{e.ErrFileTooLarge, http.StatusRequestEntityTooLarge, e.ErrFileTooLarge.Error()},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, e.ErrInternalServerError.Error()},
		{&validationError{fields: []string{"ProductID (required)"}}, http.StatusBadRequest, "invalid fields: ProductID (required)"},
	}

	for _, tt := range tests {
		code, msg := ToHTTPResponse(tt.err)
		assert.Equal(t, tt.code, code, tt.err.Error())
		assert.Equal(t, tt.msg, msg)
	}
}

func TestParsePriceToCents(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		err  error
	}{
		{"599.99", 59999, nil},
		{"600", 60000, nil},
		{" 0.5 ", 50, nil},
		{"10.500", 1050, nil},
		{"1.999", 0, e.ErrPricePrecision},
		{"-1", 0, e.ErrInvalidPrice},
		{"abc", 0, e.ErrInvalidPrice},
		{"1000000001", 0, e.ErrInvalidPrice},
		{"", 0, e.ErrMissingFields},
	}

	for _, tt := range tests {
		got, err := parsePriceToCents(tt.in)
		if tt.err != nil {
			assert.ErrorIs(t, err, tt.err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "199.99", formatCents(19999))
	assert.Equal(t, "0.00", formatCents(0))
	assert.Equal(t, "5.00", formatCents(500))
}

func TestValidateStruct(t *testing.T) {
	err := validateStruct(&RegisterReq{Email: "not-an-email", Password: "x"})
	var vErr *validationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Error(), "Email (email)")

	assert.NoError(t, validateStruct(&ToggleFavoriteReq{ProductID: 3}))
}
