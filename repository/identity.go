package repository

import (
	"context"
	"time"

	"github.com/taskboard/backend/domain"
)

// Capability is the credential handle a request operates under. It is
// resolved once per request by the access gate: the caller's bearer
// token plus, when the process is configured with one, the provider's
// service-role key. Provider calls take the whole handle and pick the
// elevated path uniformly instead of branching per call site.
type Capability struct {
	Token      string
	ServiceKey string
}

// Admin reports whether the elevated provider path is available.
func (c Capability) Admin() bool {
	return c.ServiceKey != ""
}

// IdentityPatch is a provider-side profile mutation. A zero Email means
// no email change; a nil Metadata means no metadata change.
type IdentityPatch struct {
	Email    string
	Metadata map[string]any
}

// IdentityProvider is the external auth service contract.
type IdentityProvider interface {
	// Resolve verifies a bearer token and returns the identity it
	// belongs to. Invalid tokens yield an Unauthorized domain error;
	// transport failures yield Service Unavailable.
	Resolve(ctx context.Context, token string) (*domain.Identity, error)
	// Update applies a profile patch, preferring the admin path when the
	// capability carries a service key.
	Update(ctx context.Context, cap Capability, userID string, patch IdentityPatch) (*domain.Identity, error)
	// DeleteUser removes the identity itself. Requires the admin path.
	DeleteUser(ctx context.Context, cap Capability, userID string) error
	// Ping reports provider reachability.
	Ping(ctx context.Context) error
}

// IdentityCache is an optional short-lived token-resolution cache used
// by the access gate. Get returns (nil, nil) on a miss; errors mean the
// cache itself is unavailable and callers fall through to the provider.
type IdentityCache interface {
	Get(ctx context.Context, token string) (*domain.Identity, error)
	Set(ctx context.Context, token string, identity *domain.Identity, ttl time.Duration) error
}
