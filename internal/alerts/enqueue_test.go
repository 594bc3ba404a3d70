package alerts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0.00", formatAmount(0))
	assert.Equal(t, "0.07", formatAmount(7))
	assert.Equal(t, "70.00", formatAmount(7000))
	assert.Equal(t, "12.34", formatAmount(1234))
	assert.Equal(t, "-0.20", formatAmount(-20))
}
