package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProductStockLevel(t *testing.T) {
	cases := map[int]StockLevel{
		0:  StockOut,
		1:  StockLow,
		5:  StockLow,
		6:  StockIn,
		50: StockIn,
	}
	for qty, want := range cases {
		assert.Equal(t, want, Product{StockQuantity: qty}.StockLevel(), "stock %d", qty)
	}
}
