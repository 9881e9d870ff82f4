package bidcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var saleIncrements = []string{"500000", "1000000", "2000000", "3000000", "5000000"}

func TestSelectIncrementExactMatch(t *testing.T) {
	assert.Equal(t, "2000000", SelectIncrement("2000000", saleIncrements))
	assert.Equal(t, "7000000", SelectIncrement("7000000", []string{"5000000", "6000000", "7000000"}))
}

func TestSelectIncrementClampsToHighest(t *testing.T) {
	assert.Equal(t, "5000000", SelectIncrement("42000000", saleIncrements))
}

func TestSelectIncrementClampsToLowest(t *testing.T) {
	assert.Equal(t, "500000", SelectIncrement("420000", saleIncrements))
}

func TestSelectIncrementNonNumericFallsToLowest(t *testing.T) {
	assert.Equal(t, "500000", SelectIncrement("50 thousand and 00/100 dollars", saleIncrements))
	assert.Equal(t, "500000", SelectIncrement("", saleIncrements))
}

func TestSelectIncrementAlwaysReturnsAMember(t *testing.T) {
	candidates := []string{"0", "-5", "500000", "750000", "5000001", "banana", "9999999999999"}
	for _, candidate := range candidates {
		assert.Contains(t, saleIncrements, SelectIncrement(candidate, saleIncrements), "candidate %q", candidate)
	}
}

func TestSelectIncrementEmptyIncrements(t *testing.T) {
	assert.Equal(t, "", SelectIncrement("5000000", nil))
}
