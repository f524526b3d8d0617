package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentage(t *testing.T) {
	assert.Equal(t, "0", Percentage(5, 0).String())
	assert.Equal(t, "50", Percentage(500, 1000).String())
	assert.Equal(t, "33.3", Percentage(1, 3).String())
	assert.Equal(t, "100", Percentage(20, 20).String())
}

func TestMegabytes(t *testing.T) {
	assert.Equal(t, "1.50", Megabytes(1024*1024*3/2))
	assert.Equal(t, "0.00", Megabytes(0))
}

func TestRandomString(t *testing.T) {
	s := RandomString(8)
	assert.Len(t, s, 8)
	assert.Regexp(t, "^[a-zA-Z0-9]{8}$", s)
}
