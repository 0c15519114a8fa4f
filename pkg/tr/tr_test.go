package tr

import (
	"context"
	"testing"

	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/stretchr/testify/assert"
)

func TestTxFromCtx_Missing(t *testing.T) {
	tx, err := TxFromCtx(context.Background())

	assert.Nil(t, tx)
	assert.ErrorIs(t, err, e.ErrTransactionNotFound)
}

func TestTxFromCtx_NilTx(t *testing.T) {
	_, err := TxFromCtx(WithTx(context.Background(), nil))

	assert.ErrorIs(t, err, e.ErrTransactionNotFound)
}
