package validate_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/validate"
)

func TestNumberAcceptsNumbersAndStrings(t *testing.T) {
	var body struct {
		A validate.Number `json:"a"`
		B validate.Number `json:"b"`
		C validate.Number `json:"c"`
		D validate.Number `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 12, "b": " 19.98 ", "c": null}`), &body))
	assert.Equal(t, validate.Number("12"), body.A)
	assert.Equal(t, validate.Number("19.98"), body.B)
	assert.Empty(t, body.C)
	assert.Empty(t, body.D)

	assert.Error(t, json.Unmarshal([]byte(`{"a": true}`), &body))
}

func TestQuantity(t *testing.T) {
	for in, want := range map[validate.Number]bool{
		"1": true, "50": true, "0": false, "-1": false, "2.5": false, "": false, "abc": false,
	} {
		_, ok := validate.Quantity(in)
		assert.Equal(t, want, ok, "quantity %q", in)
	}
}

func TestAmount(t *testing.T) {
	d, ok := validate.Amount("19.98")
	require.True(t, ok)
	assert.Equal(t, "19.98", d.String())

	d, ok = validate.Amount("9999999999.99")
	require.True(t, ok)
	assert.True(t, d.Equal(validate.MaxAmount))

	d, ok = validate.Amount("1.5e3")
	require.True(t, ok)
	assert.Equal(t, "1500", d.String())

	for _, in := range []validate.Number{
		"0", "-3", "", "ten",
		"1e300000000", "1e-300000000", "1e13", "0.0000000000001", "10000000000",
		validate.Number("1" + strings.Repeat("0", 40)),
	} {
		_, ok := validate.Amount(in)
		assert.False(t, ok, "amount %q", in)
	}
}

func TestIDAndStatus(t *testing.T) {
	id, ok := validate.ID(" 42 ")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
	_, ok = validate.ID("0")
	assert.False(t, ok)
	_, ok = validate.ID("x1")
	assert.False(t, ok)

	s, ok := validate.Status(" COMPLETED ")
	assert.True(t, ok)
	assert.Equal(t, "COMPLETED", s)
	_, ok = validate.Status("   ")
	assert.False(t, ok)

	long := strings.Repeat("S", validate.MaxStatusLen)
	s, ok = validate.Status(long)
	assert.True(t, ok)
	assert.Equal(t, long, s)
	_, ok = validate.Status(long + "S")
	assert.False(t, ok)
}
