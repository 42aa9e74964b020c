package middleware

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/taskboard/backend/domain"
	"github.com/taskboard/backend/repository"
)

type fakeResolver struct {
	identity *domain.Identity
	err      error
	calls    int
}

func (f *fakeResolver) Resolve(context.Context, string) (*domain.Identity, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.identity, nil
}

func (f *fakeResolver) Update(context.Context, repository.Capability, string, repository.IdentityPatch) (*domain.Identity, error) {
	return nil, nil
}

func (f *fakeResolver) DeleteUser(context.Context, repository.Capability, string) error {
	return nil
}

func (f *fakeResolver) Ping(context.Context) error { return nil }

type memoryCache struct {
	entries map[string]*domain.Identity
	sets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]*domain.Identity{}}
}

func (m *memoryCache) Get(_ context.Context, token string) (*domain.Identity, error) {
	return m.entries[token], nil
}

func (m *memoryCache) Set(_ context.Context, token string, identity *domain.Identity, _ time.Duration) error {
	m.sets++
	m.entries[token] = identity
	return nil
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func runGate(gate func(fasthttp.RequestHandler) fasthttp.RequestHandler, authorization string) (*fasthttp.RequestCtx, bool) {
	reached := false
	handler := gate(func(ctx *fasthttp.RequestCtx) {
		reached = true
		ctx.SetStatusCode(fasthttp.StatusOK)
	})

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetRequestURI("/api/tasks")
	ctx.Request.Header.SetMethod(fasthttp.MethodGet)
	if authorization != "" {
		ctx.Request.Header.Set("Authorization", authorization)
	}
	handler(ctx)
	return ctx, reached
}

func errorBody(t *testing.T, ctx *fasthttp.RequestCtx) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &body))
	return body
}

func TestAccessGate(t *testing.T) {
	identity := &domain.Identity{ID: "u1", Email: "alice@example.com"}

	t.Run("missing header", func(t *testing.T) {
		provider := &fakeResolver{identity: identity}
		gate := AccessGate(provider, nil, GateConfig{}, nil)

		ctx, reached := runGate(gate, "")
		assert.False(t, reached)
		assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
		body := errorBody(t, ctx)
		assert.Equal(t, "Unauthorized", body["error"])
		assert.Equal(t, "Missing or invalid Authorization header. Expected format: Bearer <token>", body["message"])
		assert.Zero(t, provider.calls)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		gate := AccessGate(&fakeResolver{identity: identity}, nil, GateConfig{}, nil)

		ctx, reached := runGate(gate, "Basic abc123")
		assert.False(t, reached)
		assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
	})

	t.Run("garbage token rejected without a provider call", func(t *testing.T) {
		provider := &fakeResolver{identity: identity}
		gate := AccessGate(provider, nil, GateConfig{}, nil)

		ctx, reached := runGate(gate, "Bearer not-a-jwt")
		assert.False(t, reached)
		assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
		assert.Equal(t, "Invalid or expired token", errorBody(t, ctx)["message"])
		assert.Zero(t, provider.calls)
	})

	t.Run("expired token rejected without a provider call", func(t *testing.T) {
		provider := &fakeResolver{identity: identity}
		gate := AccessGate(provider, nil, GateConfig{}, nil)

		ctx, reached := runGate(gate, "Bearer "+signedToken(t, time.Now().Add(-time.Hour)))
		assert.False(t, reached)
		assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
		assert.Zero(t, provider.calls)
	})

	t.Run("provider rejection is 401", func(t *testing.T) {
		provider := &fakeResolver{err: domain.ErrUnauthorized}
		gate := AccessGate(provider, nil, GateConfig{}, nil)

		ctx, reached := runGate(gate, "Bearer "+signedToken(t, time.Now().Add(time.Hour)))
		assert.False(t, reached)
		assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
	})

	t.Run("provider outage is 503, not 401", func(t *testing.T) {
		provider := &fakeResolver{err: domain.WrapError(domain.ErrCodeUnavailable, "Authentication service is unavailable", nil)}
		gate := AccessGate(provider, nil, GateConfig{}, nil)

		ctx, reached := runGate(gate, "Bearer "+signedToken(t, time.Now().Add(time.Hour)))
		assert.False(t, reached)
		assert.Equal(t, fasthttp.StatusServiceUnavailable, ctx.Response.StatusCode())
		assert.Equal(t, "Authentication service is unavailable", errorBody(t, ctx)["message"])
	})

	t.Run("valid token attaches identity and capability", func(t *testing.T) {
		provider := &fakeResolver{identity: identity}
		gate := AccessGate(provider, nil, GateConfig{ServiceKey: "svc"}, nil)

		ctx, reached := runGate(gate, "Bearer "+signedToken(t, time.Now().Add(time.Hour)))
		assert.True(t, reached)
		assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

		attached, ok := ctx.UserValue(IdentityKey).(*domain.Identity)
		require.True(t, ok)
		assert.Equal(t, "u1", attached.ID)

		cap, ok := ctx.UserValue(CapabilityKey).(repository.Capability)
		require.True(t, ok)
		assert.True(t, cap.Admin())
		assert.NotEmpty(t, cap.Token)
	})

	t.Run("cache short-circuits the provider", func(t *testing.T) {
		provider := &fakeResolver{identity: identity}
		cache := newMemoryCache()
		gate := AccessGate(provider, cache, GateConfig{}, nil)
		auth := "Bearer " + signedToken(t, time.Now().Add(time.Hour))

		_, reached := runGate(gate, auth)
		require.True(t, reached)
		assert.Equal(t, 1, provider.calls)
		assert.Equal(t, 1, cache.sets)

		_, reached = runGate(gate, auth)
		require.True(t, reached)
		assert.Equal(t, 1, provider.calls)
	})
}

func TestTokenTTL(t *testing.T) {
	t.Run("clamps to token expiry", func(t *testing.T) {
		claims := jwt.MapClaims{"exp": float64(time.Now().Add(time.Minute).Unix())}
		ttl := tokenTTL(claims, time.Hour)
		assert.LessOrEqual(t, ttl, time.Minute)
		assert.Greater(t, ttl, 30*time.Second)
	})

	t.Run("defaults to max without exp", func(t *testing.T) {
		assert.Equal(t, time.Hour, tokenTTL(jwt.MapClaims{}, time.Hour))
	})
}
