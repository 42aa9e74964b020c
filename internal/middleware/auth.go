package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskboard/backend/api/transport"
	"github.com/taskboard/backend/domain"
	"github.com/taskboard/backend/repository"
)

// Request values attached by the access gate for downstream handlers.
const (
	IdentityKey   = "identity"
	CapabilityKey = "capability"
)

// GateConfig tunes the access gate.
type GateConfig struct {
	// ServiceKey is the provider's elevated credential, empty when not
	// configured.
	ServiceKey string
	// ResolveTimeout bounds the provider round trip.
	ResolveTimeout time.Duration
	// CacheTTL caps how long a resolution may be reused.
	CacheTTL time.Duration
}

// AccessGate authenticates requests: it extracts the bearer token,
// rejects tokens that are structurally broken or expired without a
// provider round trip, resolves the rest against the identity provider
// (through the cache when one is wired) and attaches the identity plus
// a capability handle to the request. Provider outages are reported as
// 503, distinct from the 401 an invalid token earns.
func AccessGate(provider repository.IdentityProvider, cache repository.IdentityCache, cfg GateConfig, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResolveTimeout <= 0 {
		cfg.ResolveTimeout = 5 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			token, ok := extractBearer(ctx)
			if !ok {
				respondError(ctx, fasthttp.StatusUnauthorized, domain.ErrCodeUnauthorized,
					"Missing or invalid Authorization header. Expected format: Bearer <token>")
				return
			}

			claims, err := precheck(token)
			if err != nil {
				logger.Warn("rejected malformed bearer token", zap.Error(err))
				respondError(ctx, fasthttp.StatusUnauthorized, domain.ErrCodeUnauthorized,
					"Invalid or expired token")
				return
			}

			stdCtx, cancel := context.WithTimeout(context.Background(), cfg.ResolveTimeout)
			defer cancel()

			identity := fromCache(stdCtx, cache, token, logger)
			if identity == nil {
				identity, err = provider.Resolve(stdCtx, token)
				if err != nil {
					if domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
						respondError(ctx, fasthttp.StatusUnauthorized, domain.ErrCodeUnauthorized,
							"Invalid or expired token")
						return
					}
					logger.Error("identity resolution failed", zap.Error(err))
					respondError(ctx, fasthttp.StatusServiceUnavailable, domain.ErrCodeUnavailable,
						"Authentication service is unavailable")
					return
				}
				if cache != nil {
					if cacheErr := cache.Set(stdCtx, token, identity, tokenTTL(claims, cfg.CacheTTL)); cacheErr != nil {
						logger.Debug("identity cache write failed", zap.Error(cacheErr))
					}
				}
			}

			ctx.SetUserValue(IdentityKey, identity)
			ctx.SetUserValue(CapabilityKey, repository.Capability{
				Token:      token,
				ServiceKey: cfg.ServiceKey,
			})

			next(ctx)
		}
	}
}

func extractBearer(ctx *fasthttp.RequestCtx) (string, bool) {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}

// precheck parses the token without verifying its signature. Signature
// verification belongs to the identity provider; this only filters out
// garbage and expired tokens before spending a network round trip.
func precheck(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	if err := claims.Valid(); err != nil {
		return nil, err
	}
	return claims, nil
}

// tokenTTL clamps the cache TTL so a resolution never outlives its token.
func tokenTTL(claims jwt.MapClaims, max time.Duration) time.Duration {
	if exp, ok := claims["exp"].(float64); ok {
		if until := time.Until(time.Unix(int64(exp), 0)); until > 0 && until < max {
			return until
		}
	}
	return max
}

func fromCache(ctx context.Context, cache repository.IdentityCache, token string, logger *zap.Logger) *domain.Identity {
	if cache == nil {
		return nil
	}
	identity, err := cache.Get(ctx, token)
	if err != nil {
		logger.Debug("identity cache read failed", zap.Error(err))
		return nil
	}
	return identity
}

func respondError(ctx *fasthttp.RequestCtx, status int, code domain.ErrorCode, message string) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(transport.NewErrorResponse(string(code), message, ""))
	ctx.SetBody(body)
}
