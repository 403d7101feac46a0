package valueobject

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// Percent is a value object for tax and discount rates, expressed on a
// percentage basis (8.25 means 8.25%). Valid range is [0, 100].
type Percent struct {
	value decimal.Decimal
}

// NewPercent creates a Percent, rejecting values outside [0, 100]
func NewPercent(value decimal.Decimal) (Percent, error) {
	if value.IsNegative() || value.GreaterThan(decimal.NewFromInt(100)) {
		return Percent{}, fmt.Errorf("percent must be between 0 and 100, got %s", value)
	}
	return Percent{value: value}, nil
}

// NewPercentFromFloat creates a Percent from a float64 value
func NewPercentFromFloat(value float64) (Percent, error) {
	return NewPercent(decimal.NewFromFloat(value))
}

// ZeroPercent returns a zero rate
func ZeroPercent() Percent {
	return Percent{value: decimal.Zero}
}

// Decimal returns the percentage value (e.g. 8.25 for 8.25%)
func (p Percent) Decimal() decimal.Decimal {
	return p.value
}

// IsZero returns true if the rate is zero
func (p Percent) IsZero() bool {
	return p.value.IsZero()
}

// ApplyTo returns the given percent of the amount, unrounded
func (p Percent) ApplyTo(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(p.value).Div(decimal.NewFromInt(100))
}

// Equals returns true if both rates are equal
func (p Percent) Equals(other Percent) bool {
	return p.value.Equal(other.value)
}

// String returns the rate formatted with a percent sign
func (p Percent) String() string {
	return p.value.String() + "%"
}

// MarshalJSON implements json.Marshaler
func (p Percent) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.value.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (p *Percent) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid percent: %w", err)
	}
	parsed, err := NewPercent(d)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Value implements driver.Valuer for database storage
func (p Percent) Value() (driver.Value, error) {
	return p.value.String(), nil
}

// Scan implements sql.Scanner for database retrieval
func (p *Percent) Scan(value any) error {
	if value == nil {
		p.value = decimal.Zero
		return nil
	}

	var strVal string
	switch v := value.(type) {
	case string:
		strVal = v
	case []byte:
		strVal = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Percent", value)
	}

	d, err := decimal.NewFromString(strVal)
	if err != nil {
		return fmt.Errorf("invalid decimal value: %w", err)
	}
	p.value = d
	return nil
}
