package auth

import "net/http"

// UserHeader carries the requester name.
const UserHeader = "user"

type Client interface {
	// Identify returns the participant name the request claims to act as.
	Identify(r *http.Request) (string, error)
}
