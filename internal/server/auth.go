package server

import (
	"errors"
	"net/http"
	"strings"
)

var errNoSession = errors.New("no valid session")

// userFromRequest resolves the caller's user id from a bearer token. The
// browser WebSocket API cannot set headers, so a token query parameter is
// accepted as a fallback.
func userFromRequest(r *http.Request, store Store) (string, error) {
	auth := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(auth, "Bearer ")
	if !found || token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		return "", errNoSession
	}

	userID, err := store.UserFromToken(r.Context(), token)
	if errors.Is(err, ErrNotFound) {
		return "", errNoSession
	}
	return userID, err
}
