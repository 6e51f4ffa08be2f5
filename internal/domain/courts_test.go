package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidCourt(t *testing.T) {
	assert.True(t, ValidCourt("ALMA"))
	assert.True(t, ValidCourt("MIRA OASIS 3 C"))
	assert.False(t, ValidCourt("alma"))
	assert.False(t, ValidCourt(""))
	assert.False(t, ValidCourt("CENTRE COURT"))
}

func TestCourtsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, c := range Courts {
		assert.False(t, seen[c], "duplicate court %s", c)
		seen[c] = true
	}
}
