package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockmaster-api/internal/domain/entity"
)

func TestParseOperationKind(t *testing.T) {
	for _, raw := range []string{"receipt", "delivery", "transfer", "adjustment"} {
		k, err := entity.ParseOperationKind(raw)
		require.NoError(t, err)
		assert.True(t, k.IsValid())
		assert.Equal(t, raw, string(k))
	}

	_, err := entity.ParseOperationKind("RECEIPT")
	assert.Error(t, err, "los tipos distinguen mayúsculas")
	assert.False(t, entity.OperationKind("return").IsValid())
}

func TestOperationStatus_Terminal(t *testing.T) {
	assert.True(t, entity.StatusDone.Terminal())
	assert.True(t, entity.StatusFailed.Terminal())
	assert.False(t, entity.StatusPending.Terminal())
	assert.False(t, entity.StatusApplying.Terminal())
}

func TestStockKey_Less(t *testing.T) {
	a := entity.StockKey{ProductID: "a", LocationID: "z"}
	b := entity.StockKey{ProductID: "b", LocationID: "a"}
	c := entity.StockKey{ProductID: "b", LocationID: "b"}
	assert.True(t, a.Less(b))
	assert.True(t, b.Less(c))
	assert.False(t, c.Less(b))
}
