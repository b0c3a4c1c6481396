package validate

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MaxStatusLen bounds gateway-reported statuses; real ones are short enums.
	MaxStatusLen = 255

	maxAmountLen   = 32
	maxAmountScale = 12
)

// MaxAmount is the largest payment amount accepted; orders.amount is NUMERIC(12,2).
var MaxAmount = decimal.RequireFromString("9999999999.99")

// Number holds a JSON number or a numeric string as sent by clients, unparsed.
// A missing field leaves it empty.
type Number string

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = Number(strings.TrimSpace(s))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*n = Number(num)
	return nil
}

// ID parses a positive integer identifier.
func ID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// Quantity accepts positive whole numbers only; "2.5", "0" and "-1" are rejected.
func Quantity(n Number) (int, bool) {
	q, err := strconv.Atoi(string(n))
	if err != nil || q < 1 {
		return 0, false
	}
	return q, true
}

// Amount parses a monetary amount in (0, MaxAmount].
func Amount(n Number) (decimal.Decimal, bool) {
	if n == "" || len(n) > maxAmountLen {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(string(n))
	if err != nil || !AmountInRange(d) {
		return decimal.Zero, false
	}
	return d, true
}

// AmountInRange reports whether d is a usable payment amount. The exponent is checked
// before anything that rescales d, since "1e300000000" would expand to every digit.
func AmountInRange(d decimal.Decimal) bool {
	if e := d.Exponent(); e < -maxAmountScale || e > maxAmountScale {
		return false
	}
	return d.IsPositive() && d.LessThanOrEqual(MaxAmount)
}

// Status trims a gateway-reported status. Any non-blank value up to MaxStatusLen is accepted.
func Status(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > MaxStatusLen {
		return "", false
	}
	return s, true
}
