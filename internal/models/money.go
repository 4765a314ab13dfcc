package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Money is an amount in US cents.
// Catalog and payload prices are decimal dollars on the wire ("129.99");
// keeping cents internally makes totals exact.
type Money int64

// Cents constructs a Money value from a cent count
func Cents(c int64) Money {
	return Money(c)
}

// ParseMoney parses a decimal dollar amount such as "129.99", "169" or "169.0".
// More than two fractional digits are accepted only when the extra digits are zero.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}

	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	if !isDigits(whole) || !isDigits(frac) || whole+frac == "" {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if whole == "" {
		whole = "0"
	}
	dollars, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	if len(frac) > 2 {
		if strings.Trim(frac[2:], "0") != "" {
			return 0, fmt.Errorf("amount %q has sub-cent precision", s)
		}
		frac = frac[:2]
	}
	for len(frac) < 2 {
		frac += "0"
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if dollars > (math.MaxInt64-99)/100 {
		return 0, fmt.Errorf("amount %q is too large", s)
	}

	m := Money(dollars*100 + cents)
	if neg {
		m = -m
	}
	return m, nil
}

// isDigits reports whether s holds only ASCII digits; "" passes
func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Cents returns the amount in cents
func (m Money) Cents() int64 {
	return int64(m)
}

// Decimal formats the amount as dollars with two decimals, e.g. "468.99"
func (m Money) Decimal() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// String formats the amount for display, e.g. "$468.99"
func (m Money) String() string {
	if m < 0 {
		return "-$" + (-m).Decimal()
	}
	return "$" + m.Decimal()
}

// MarshalJSON writes the amount as a JSON number in dollars
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal()), nil
}

// UnmarshalJSON accepts a JSON number or string in dollars
func (m *Money) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = 0
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("money: cannot unmarshal %s", string(data))
		}
		raw = n.String()
	}
	parsed, err := ParseMoney(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// UnmarshalYAML reads the scalar literally so 129.99 never passes through a float
func (m *Money) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("money: line %d: expected a scalar", value.Line)
	}
	parsed, err := ParseMoney(value.Value)
	if err != nil {
		return fmt.Errorf("money: line %d: %w", value.Line, err)
	}
	*m = parsed
	return nil
}

// MarshalYAML writes the amount as a decimal literal
func (m Money) MarshalYAML() (interface{}, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: m.Decimal()}, nil
}
