// Package auth verifies bearer credentials presented to the gateway.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissingToken is returned when no credential was presented.
	ErrMissingToken = errors.New("missing bearer token")

	// ErrMalformedHeader is returned when the Authorization header does not
	// use the Bearer scheme.
	ErrMalformedHeader = errors.New("malformed authorization header")

	// ErrInvalidToken is returned when the token fails signature, expiry or
	// issuer validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrMissingSubject is returned for otherwise valid tokens without a
	// "sub" claim.
	ErrMissingSubject = errors.New("token has no subject")

	// ErrUnauthorizedParty is returned when the "azp" claim is not one of the
	// configured authorized parties.
	ErrUnauthorizedParty = errors.New("token authorized party not allowed")

	// ErrNotConfigured is returned by a verifier that has no key set.
	ErrNotConfigured = errors.New("credential verification is not configured")
)

// Claims is the verified content of a bearer token.
type Claims struct {
	// Subject is the stable user identifier ("sub")
	Subject string

	// AuthorizedParty is the "azp" claim, empty when absent
	AuthorizedParty string

	// Issuer is the "iss" claim
	Issuer string

	// Raw holds every decoded claim
	Raw jwt.MapClaims
}

// Verifier validates a bearer token and returns its claims.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingToken
	}

	// A scheme with nothing after it is a missing token, not a bad header.
	scheme, token, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMalformedHeader
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}

	return token, nil
}

// IsUnauthenticated reports whether err means no usable credential was
// presented, as opposed to a credential that failed verification.
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrMissingToken) || errors.Is(err, ErrMalformedHeader)
}

// DenyAll is a Verifier that rejects every token. It stands in when no key
// set is configured so authenticated routes fail closed.
type DenyAll struct{}

func (DenyAll) Verify(context.Context, string) (*Claims, error) {
	return nil, ErrNotConfigured
}
