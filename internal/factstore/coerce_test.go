package factstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindForUnit(t *testing.T) {
	cases := []struct {
		unit string
		want ValueKind
	}{
		{"USD", KindMonetary},
		{"DKK", KindMonetary},
		{"shares", KindShares},
		{"USD/shares", KindPerShare},
		{"pure", KindDecimal},
		{"", KindText},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, KindForUnit(tc.unit), "unit %q", tc.unit)
	}
}

func TestCoerceNumeric(t *testing.T) {
	c, err := Coerce(KindMonetary, "352755000000")
	require.NoError(t, err)
	require.NotNil(t, c.Num)
	assert.Equal(t, 352755000000.0, *c.Num)

	c, err = Coerce(KindMonetary, "1,234,567")
	require.NoError(t, err)
	require.NotNil(t, c.Num)
	assert.Equal(t, 1234567.0, *c.Num)

	c, err = Coerce(KindMonetary, "3.52755e11")
	require.NoError(t, err)
	require.NotNil(t, c.Num)
	assert.Equal(t, 352755000000.0, *c.Num)
}

func TestCoerceNumericParenthesizedNegative(t *testing.T) {
	c, err := Coerce(KindMonetary, "(15234)")
	require.NoError(t, err)
	require.NotNil(t, c.Num)
	assert.Equal(t, -15234.0, *c.Num)
}

func TestCoerceNumericEmptyIsNotAnError(t *testing.T) {
	c, err := Coerce(KindMonetary, "  ")
	require.NoError(t, err)
	assert.Nil(t, c.Num)
}

func TestCoerceNumericRejectsText(t *testing.T) {
	_, err := Coerce(KindMonetary, "not a number")
	assert.Error(t, err)
}

func TestCoerceText(t *testing.T) {
	c, err := Coerce(KindText, "  Cupertino, California  ")
	require.NoError(t, err)
	assert.Equal(t, "Cupertino, California", c.Raw)
	assert.Nil(t, c.Num)
}

func TestCoerceBool(t *testing.T) {
	c, err := Coerce(KindBool, "true")
	require.NoError(t, err)
	require.NotNil(t, c.Num)
	assert.Equal(t, 1.0, *c.Num)

	c, err = Coerce(KindBool, "No")
	require.NoError(t, err)
	assert.Nil(t, c.Num)

	_, err = Coerce(KindBool, "maybe")
	assert.Error(t, err)
}

func TestCoerceUnknownKind(t *testing.T) {
	_, err := Coerce(ValueKind(99), "x")
	assert.Error(t, err)
}
