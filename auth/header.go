package auth

import (
	"errors"
	"net/http"
)

var ErrNoIdentity = errors.New("empty user header")

// HeaderClient trusts the `user` header as is. There is no credential check.
type HeaderClient struct {
	Client
}

func (c *HeaderClient) Identify(r *http.Request) (string, error) {
	name := r.Header.Get(UserHeader)
	if name == "" {
		return "", ErrNoIdentity
	}
	return name, nil
}
