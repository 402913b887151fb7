package auth

import (
	"context"

	"cane-backend/pkg/utils"
)

// Session identifies the caller of a request. It is built by the auth
// middleware from the database user and passed down to services.
type Session struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
	MillID string `json:"millId,omitempty"`
}

type sessionKey struct{}

// WithSession returns ctx carrying s
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session placed on ctx by the auth middleware
func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}

// Require returns FORBIDDEN unless the session role has c
func (s Session) Require(c Capability) error {
	if !s.Role.Can(c) {
		return utils.NewAppError(utils.ErrCodeForbidden, "not allowed for role "+string(s.Role), string(c))
	}
	return nil
}

// ScopeMill returns the mill a listing must be restricted to. Admin roles
// see every mill; other roles are pinned to their own when they have one.
func (s Session) ScopeMill(requested string) string {
	if s.Role.IsAdmin() || s.MillID == "" {
		return requested
	}
	return s.MillID
}

// CheckMill returns FORBIDDEN when a mill-bound session names a mill other
// than its own. An empty requested mill is always allowed.
func (s Session) CheckMill(requested string) error {
	if requested == "" || s.ScopeMill(requested) == requested {
		return nil
	}
	return utils.NewAppError(utils.ErrCodeForbidden, "not allowed for mill "+requested, s.MillID)
}
