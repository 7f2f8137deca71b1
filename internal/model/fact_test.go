package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalName(t *testing.T) {
	assert.Equal(t, "Revenues", LocalName("us-gaap:Revenues"))
	assert.Equal(t, "Revenues", LocalName("us-gaap_Revenues"))
	assert.Equal(t, "Revenues", LocalName("Revenues"))
}

func TestFactEmpty(t *testing.T) {
	assert.True(t, Fact{}.Empty())
	assert.True(t, Fact{Value: "   "}.Empty())

	v := 1.0
	assert.False(t, Fact{Numeric: &v}.Empty())
	assert.False(t, Fact{Value: "n/a"}.Empty())
}

func TestFactHasDimensions(t *testing.T) {
	assert.False(t, Fact{}.HasDimensions())
	f := Fact{Dimensions: []Dimension{{Axis: "us-gaap:StatementClassOfStockAxis", Member: "us-gaap:CommonClassAMember"}}}
	assert.True(t, f.HasDimensions())
}
