package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MicahParks/keyfunc/v3"
)

// NewJWKSVerifier returns a verifier whose keys come from the JWKS published
// at jwksURL. Keys are cached and refreshed in the background until ctx is
// cancelled; unknown key IDs trigger a rate limited refresh.
func NewJWKSVerifier(ctx context.Context, jwksURL string, opts ...Option) (*JWTVerifier, error) {
	k, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("loading JWKS from %s: %w", jwksURL, err)
	}

	return NewJWTVerifier(k.Keyfunc, opts...), nil
}

// NewStaticJWKSVerifier returns a verifier for a fixed JWKS document, such
// as one read from a local file.
func NewStaticJWKSVerifier(jwks json.RawMessage, opts ...Option) (*JWTVerifier, error) {
	k, err := keyfunc.NewJWKSetJSON(jwks)
	if err != nil {
		return nil, fmt.Errorf("parsing JWKS: %w", err)
	}

	return NewJWTVerifier(k.Keyfunc, opts...), nil
}
