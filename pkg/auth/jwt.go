package auth

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultValidMethods are the asymmetric algorithms accepted from a JWKS.
var DefaultValidMethods = []string{"RS256", "RS384", "RS512", "ES256", "ES384", "PS256"}

type options struct {
	issuer            string
	authorizedParties []string
	leeway            time.Duration
	validMethods      []string
}

// Option configures a JWTVerifier.
type Option func(*options)

// WithIssuer requires the "iss" claim to equal issuer.
func WithIssuer(issuer string) Option {
	return func(o *options) {
		o.issuer = issuer
	}
}

// WithAuthorizedParties restricts the "azp" claim to the given values.
// Empty values are ignored.
func WithAuthorizedParties(parties ...string) Option {
	return func(o *options) {
		for _, p := range parties {
			if p != "" {
				o.authorizedParties = append(o.authorizedParties, p)
			}
		}
	}
}

// WithLeeway tolerates clock skew when validating time based claims.
func WithLeeway(d time.Duration) Option {
	return func(o *options) {
		o.leeway = d
	}
}

// WithValidMethods overrides the accepted signing algorithms.
func WithValidMethods(methods ...string) Option {
	return func(o *options) {
		o.validMethods = methods
	}
}

// JWTVerifier verifies signed JWTs using a key lookup function.
type JWTVerifier struct {
	keyfunc           jwt.Keyfunc
	parser            *jwt.Parser
	authorizedParties []string
}

// NewJWTVerifier returns a verifier resolving signing keys with keyfunc.
// Tokens must carry an expiry.
func NewJWTVerifier(keyfunc jwt.Keyfunc, opts ...Option) *JWTVerifier {
	o := &options{
		leeway:       5 * time.Second,
		validMethods: DefaultValidMethods,
	}
	for _, opt := range opts {
		opt(o)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods(o.validMethods),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(o.leeway),
	}
	if o.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(o.issuer))
	}

	return &JWTVerifier{
		keyfunc:           keyfunc,
		parser:            jwt.NewParser(parserOpts...),
		authorizedParties: o.authorizedParties,
	}
}

// Verify parses and validates token.
func (v *JWTVerifier) Verify(ctx context.Context, token string) (*Claims, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw := jwt.MapClaims{}
	if _, err := v.parser.ParseWithClaims(token, raw, v.keyfunc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	subject, err := raw.GetSubject()
	if err != nil || subject == "" {
		return nil, ErrMissingSubject
	}

	issuer, _ := raw.GetIssuer()
	azp, _ := raw["azp"].(string)

	if len(v.authorizedParties) > 0 && !slices.Contains(v.authorizedParties, azp) {
		return nil, fmt.Errorf("%w: %q", ErrUnauthorizedParty, azp)
	}

	return &Claims{
		Subject:         subject,
		AuthorizedParty: azp,
		Issuer:          issuer,
		Raw:             raw,
	}, nil
}
