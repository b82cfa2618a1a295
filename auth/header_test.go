package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeaderClient(t *testing.T) {
	c := &HeaderClient{}

	r := httptest.NewRequest("GET", "/messages", nil)
	_, err := c.Identify(r)
	assert.ErrorIs(t, err, ErrNoIdentity)

	r.Header.Set("User", "Alice")
	name, err := c.Identify(r)
	assert.NoError(t, err)
	assert.Equal(t, "Alice", name)
}
