package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "0", FormatCount(0))
	assert.Equal(t, "999", FormatCount(999))
	assert.Equal(t, "1.0K", FormatCount(1000))
	assert.Equal(t, "1.5K", FormatCount(1532))
	assert.Equal(t, "999.9K", FormatCount(999900))
	assert.Equal(t, "2.1M", FormatCount(2100000))
}
