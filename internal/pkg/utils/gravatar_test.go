package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetGravatarURL(t *testing.T) {
	url := GetGravatarURL("Jane@Example.com ", 120)

	// hash of the trimmed, lowercased address
	assert.Equal(t, GetGravatarURL("jane@example.com", 120), url)
	assert.Contains(t, url, "https://www.gravatar.com/avatar/")
	assert.Contains(t, url, "s=120")
}

func TestGetGravatarURLDefaultSize(t *testing.T) {
	assert.Contains(t, GetGravatarURL("jane@example.com", 0), "s=200")
	assert.Contains(t, GetGravatarURL("jane@example.com", -5), "s=200")
}
