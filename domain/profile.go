package domain

import (
	"reflect"
	"time"
)

// Identity is the caller resolved by the access gate, in the shape the
// identity provider returns it.
type Identity struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	Metadata         map[string]any `json:"user_metadata"`
}

// Profile is the API view over an identity record. It is not stored
// locally; the identity provider is the source of truth.
type Profile struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	Metadata         map[string]any `json:"metadata"`
}

// ProfileFromIdentity reshapes a provider record into the API view.
func ProfileFromIdentity(identity *Identity) *Profile {
	if identity == nil {
		return nil
	}
	metadata := identity.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &Profile{
		ID:               identity.ID,
		Email:            identity.Email,
		EmailConfirmedAt: identity.EmailConfirmedAt,
		CreatedAt:        identity.CreatedAt,
		UpdatedAt:        identity.UpdatedAt,
		Metadata:         metadata,
	}
}

// MergeMetadata applies a patch onto existing metadata. New keys
// overwrite existing ones; null and empty-string values delete the key
// rather than storing it.
func MergeMetadata(current, patch map[string]any) map[string]any {
	merged := make(map[string]any, len(current)+len(patch))
	for k, v := range current {
		merged[k] = v
	}
	for k, v := range patch {
		if v == nil {
			delete(merged, k)
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	return merged
}

// MetadataEqual compares two metadata maps, treating nil and empty as
// the same.
func MetadataEqual(a, b map[string]any) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}
