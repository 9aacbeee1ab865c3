package auth

import "context"

// Principal identifies who is attempting an operation. Staff principals carry
// the authenticated user id; the system principal is used by background
// processes (expiry sweeper) and bypasses staff membership checks while still
// going through the full transition protocol.
type Principal struct {
	UserID string
	System bool
}

// SystemActor is the actor recorded on audit events for automated transitions.
const SystemActor = "system"

// Actor returns the identity recorded on audit events and logs.
func (p Principal) Actor() string {
	if p.System {
		return SystemActor
	}
	return p.UserID
}

// SystemPrincipal returns the principal used by automated processes.
func SystemPrincipal() Principal {
	return Principal{System: true}
}

type contextKey struct{}

// WithPrincipal returns a context carrying the given principal.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// PrincipalFrom extracts the principal set by the auth middleware.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}
