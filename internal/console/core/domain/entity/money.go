package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money is a decimal amount as reported by the upstream services.
// The services serialise decimals either as JSON numbers or as strings
// ("100.00"), so both forms are accepted.
type Money float64

func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*m = 0
		return nil
	}

	raw := string(b)
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("money: %w", err)
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*m = 0
			return nil
		}
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("money: invalid amount %q: %w", raw, err)
	}
	*m = Money(v)
	return nil
}

// Round returns the amount rounded half away from zero to cents.
func (m Money) Round() Money {
	return Money(math.Round(float64(m)*100) / 100)
}

// Times multiplies a unit amount by a quantity.
func (m Money) Times(qty int) Money {
	return Money(float64(m) * float64(qty))
}

// String formats the amount for display, e.g. "$100.00".
func (m Money) String() string {
	return fmt.Sprintf("$%.2f", float64(m.Round()))
}
