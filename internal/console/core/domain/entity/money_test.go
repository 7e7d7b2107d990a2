package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyUnmarshalJSON(t *testing.T) {
	t.Run("number and string forms decode", func(t *testing.T) {
		var got struct {
			A Money `json:"a"`
			B Money `json:"b"`
			C Money `json:"c"`
		}
		require.NoError(t, json.Unmarshal([]byte(`{"a": 100.5, "b": "24.50", "c": null}`), &got))
		assert.Equal(t, Money(100.5), got.A)
		assert.Equal(t, Money(24.5), got.B)
		assert.Equal(t, Money(0), got.C)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		var m Money
		assert.Error(t, json.Unmarshal([]byte(`"ten dollars"`), &m))
	})
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "$100.00", Money(100).String())
	assert.Equal(t, "$0.30", (Money(0.1) + Money(0.2)).String())
	assert.Equal(t, "$74.97", Money(24.99).Times(3).String())
}

func TestTimestampUnmarshalJSON(t *testing.T) {
	want := time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)

	for _, raw := range []string{
		`"2026-10-16T10:00:00Z"`,
		`"Fri, 16 Oct 2026 10:00:00 GMT"`,
		`"2026-10-16T10:00:00"`,
	} {
		var ts Timestamp
		require.NoError(t, json.Unmarshal([]byte(raw), &ts), raw)
		assert.True(t, want.Equal(ts.Time), raw)
	}

	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`null`), &ts))
	assert.True(t, ts.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
}
