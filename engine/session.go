package engine

import (
	"context"

	"github.com/wippyai/function-abi/host"
)

type sessionKey struct{}

// WithSession returns a context carrying s. Host functions resolve the
// active invocation from the call context.
func WithSession(ctx context.Context, s *host.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session carried by ctx, or nil.
func SessionFrom(ctx context.Context) *host.Session {
	s, _ := ctx.Value(sessionKey{}).(*host.Session)
	return s
}
