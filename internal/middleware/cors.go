package middleware

import (
	"strings"

	"github.com/valyala/fasthttp"
)

// CORSConfig holds CORS configuration options.
type CORSConfig struct {
	Origins     []string
	Methods     []string
	Headers     []string
	Credentials bool
	MaxAge      string
}

// DefaultCORSConfig returns a permissive default suitable for the
// browser board client.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		Origins:     []string{"*"},
		Methods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		Headers:     []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization"},
		Credentials: true,
		MaxAge:      "86400",
	}
}

// CORS wraps a handler with CORS headers and answers preflight requests
// before they reach the router.
func CORS(config CORSConfig) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			reqOrigin := string(ctx.Request.Header.Peek("Origin"))

			for _, origin := range config.Origins {
				if origin == "*" || origin == reqOrigin {
					ctx.Response.Header.Set("Access-Control-Allow-Origin", origin)
					break
				}
			}

			if config.Credentials {
				ctx.Response.Header.Set("Access-Control-Allow-Credentials", "true")
			}
			if len(config.Methods) > 0 {
				ctx.Response.Header.Set("Access-Control-Allow-Methods", strings.Join(config.Methods, ", "))
			}
			if len(config.Headers) > 0 {
				ctx.Response.Header.Set("Access-Control-Allow-Headers", strings.Join(config.Headers, ", "))
			}
			if config.MaxAge != "" {
				ctx.Response.Header.Set("Access-Control-Max-Age", config.MaxAge)
			}

			if string(ctx.Method()) == fasthttp.MethodOptions {
				ctx.SetStatusCode(fasthttp.StatusNoContent)
				return
			}

			next(ctx)
		}
	}
}
