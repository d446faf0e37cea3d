package random

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateUsername(t *testing.T) {
	re := regexp.MustCompile(`^user_[a-zA-Z0-9]{8}$`)
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		name := GenerateUsername()
		assert.Regexp(t, re, name)
		seen[name] = struct{}{}
	}
	assert.Greater(t, len(seen), 45)
}

func TestGetRandomStringLength(t *testing.T) {
	assert.Len(t, GetRandomString(0), 0)
	assert.Len(t, GetRandomString(32), 32)
}
