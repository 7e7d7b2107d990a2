package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	laptop = Product{ID: 1, Name: "Laptop", Price: 1299.99, StockQuantity: 3}
	mouse  = Product{ID: 2, Name: "Mouse", Price: 24.50, StockQuantity: 10}
	dock   = Product{ID: 4, Name: "Dock", Price: 149, StockQuantity: 0}
)

func TestDraftItems(t *testing.T) {
	t.Run("add starts at quantity one", func(t *testing.T) {
		d := NewDraft("d1")
		require.NoError(t, d.AddItem(laptop))
		assert.Equal(t, []DraftItem{{ProductID: 1, Quantity: 1}}, d.Items)
	})

	t.Run("duplicate add is rejected", func(t *testing.T) {
		d := NewDraft("d1")
		require.NoError(t, d.AddItem(laptop))
		assert.ErrorIs(t, d.AddItem(laptop), ErrAlreadyInDraft)
		assert.Len(t, d.Items, 1)
	})

	t.Run("out of stock cannot be added", func(t *testing.T) {
		d := NewDraft("d1")
		assert.ErrorIs(t, d.AddItem(dock), ErrOutOfStock)
		assert.Empty(t, d.Items)
	})

	t.Run("quantity stays within stock", func(t *testing.T) {
		d := NewDraft("d1")
		require.NoError(t, d.AddItem(laptop))

		require.NoError(t, d.Decrement(laptop))
		assert.Equal(t, 1, d.Items[0].Quantity)

		for i := 0; i < 5; i++ {
			require.NoError(t, d.Increment(laptop))
		}
		assert.Equal(t, 3, d.Items[0].Quantity)

		require.NoError(t, d.SetQuantity(laptop, 99))
		assert.Equal(t, 3, d.Items[0].Quantity)
		require.NoError(t, d.SetQuantity(laptop, -4))
		assert.Equal(t, 1, d.Items[0].Quantity)
	})

	t.Run("edits on missing items fail", func(t *testing.T) {
		d := NewDraft("d1")
		assert.ErrorIs(t, d.Increment(mouse), ErrNotInDraft)
		assert.ErrorIs(t, d.SetQuantity(mouse, 2), ErrNotInDraft)
	})

	t.Run("remove", func(t *testing.T) {
		d := NewDraft("d1")
		require.NoError(t, d.AddItem(laptop))
		require.NoError(t, d.AddItem(mouse))
		d.RemoveItem(1)
		d.RemoveItem(42)
		assert.Equal(t, []DraftItem{{ProductID: 2, Quantity: 1}}, d.Items)
	})
}

func TestClampQuantity(t *testing.T) {
	assert.Equal(t, 1, ClampQuantity(0, 5))
	assert.Equal(t, 5, ClampQuantity(7, 5))
	assert.Equal(t, 3, ClampQuantity(3, 5))
	assert.Equal(t, 1, ClampQuantity(2, 0))
}

func TestDraftTotal(t *testing.T) {
	d := NewDraft("d1")
	d.Items = []DraftItem{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 3},
		{ProductID: 99, Quantity: 1},
	}
	idx := IndexProducts([]Product{laptop, mouse})

	assert.Equal(t, Money(2673.48), d.Total(idx))
	assert.Equal(t, "$2673.48", d.Total(idx).String())
}

func TestDraftValidate(t *testing.T) {
	cases := []struct {
		name  string
		draft Draft
		want  string
	}{
		{"everything missing reports the customer id", Draft{}, MsgCustomerIDRequired},
		{"blank id", Draft{CustomerID: "   ", CustomerName: "Ann", Items: []DraftItem{{1, 1}}}, MsgCustomerIDRequired},
		{"blank name", Draft{CustomerID: "CUST-001", CustomerName: " "}, MsgCustomerNameRequired},
		{"no items", Draft{CustomerID: "CUST-001", CustomerName: "Ann"}, MsgItemsRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.draft.Validate()
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.want, verr.Message)
		})
	}

	ok := Draft{CustomerID: "CUST-001", CustomerName: "Ann", Items: []DraftItem{{1, 1}}}
	assert.NoError(t, ok.Validate())
}

func TestDraftRequestTrimsCustomer(t *testing.T) {
	d := Draft{CustomerID: " CUST-001 ", CustomerName: "Test Customer\n", Items: []DraftItem{{ProductID: 1, Quantity: 2}}}
	assert.Equal(t, CreateOrderRequest{
		CustomerID:   "CUST-001",
		CustomerName: "Test Customer",
		Items:        []CreateOrderItem{{ProductID: 1, Quantity: 2}},
	}, d.Request())
}

func TestDraftSubmitted(t *testing.T) {
	d := NewDraft("d-1")
	assert.False(t, d.Submitted())

	d.Phase = PhaseSuccess
	assert.False(t, d.Submitted(), "success without a receipt is not a finished submission")

	d.Receipt = &Receipt{OrderID: 7, OrderNumber: "ORD-7", TotalPrice: 10}
	assert.True(t, d.Submitted())
}
