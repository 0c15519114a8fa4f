package e

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_KeepsChain(t *testing.T) {
	err := Wrap("CartUseCase.AddToCart", Wrap("validate", ErrInvalidProductID))

	assert.True(t, errors.Is(err, ErrInvalidProductID))
	assert.Equal(t, "CartUseCase.AddToCart: validate: product id must be positive", err.Error())
}
