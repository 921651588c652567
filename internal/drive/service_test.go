package drive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeQuery(t *testing.T) {
	assert.Equal(t, `Chef\'s exports`, escapeQuery("Chef's exports"))
}

func TestNewServiceRequiresCredentials(t *testing.T) {
	_, err := NewService(context.Background(), "  ")
	assert.Error(t, err)
}
