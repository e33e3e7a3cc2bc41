package server

import (
	"errors"
	"net/http"
	"strings"
)

var errNoSession = errors.New("no valid session")

// identity is who is submitting: an authenticated user, an anonymous device
// that consented to persistence, or neither (ephemeral — nothing is saved).
type identity struct {
	UserID      string
	DeviceToken string
}

func (i identity) canPersist() bool {
	return i.UserID != "" || i.DeviceToken != ""
}

// resolveIdentity reads identity from request headers, never the body. A
// Bearer token must resolve to a user session; an X-Device-Token header only
// counts when the caller consented to being persisted.
func resolveIdentity(r *http.Request, store Store, consent bool) (identity, error) {
	auth := r.Header.Get("Authorization")
	if token, found := strings.CutPrefix(auth, "Bearer "); found {
		if token == "" {
			return identity{}, errNoSession
		}
		userID, err := store.UserIDFromSession(r.Context(), token)
		if errors.Is(err, ErrNotFound) {
			return identity{}, errNoSession
		}
		if err != nil {
			return identity{}, err
		}
		return identity{UserID: userID}, nil
	}

	if token := r.Header.Get("X-Device-Token"); token != "" && consent {
		return identity{DeviceToken: token}, nil
	}
	return identity{}, nil
}
