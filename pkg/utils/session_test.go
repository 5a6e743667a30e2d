package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSessionID(t *testing.T) {
	a := NewSessionID()
	b := NewSessionID()

	assert.NotEqual(t, a, b)
	assert.True(t, ValidateSessionID(a))
}

func TestValidateSessionID(t *testing.T) {
	assert.False(t, ValidateSessionID(""))
	assert.False(t, ValidateSessionID("not-a-session"))
	assert.True(t, ValidateSessionID("3f1c2a9e-5b7d-4c1e-9a2b-0d4e6f8a1b3c"))
}

func TestGenerateRandomID(t *testing.T) {
	for _, n := range []int{1, 8, 15, 16} {
		id := GenerateRandomID(n)
		assert.Len(t, id, n)
	}
}
