// Package auth mints and verifies the capability tokens that stand in for
// the booking engine's Proof objects. Where the original contract relies on
// the Radix runtime to authenticate a caller's NFT/resource badges, this
// package issues and checks signed JWTs carrying the same claims, grounded
// in gateway/middleware.Authenticator's HMAC bearer-token pattern.
package auth

import (
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"bookingengine/native/booking"
)

// ErrInvalidToken is returned for any signature, claim, or shape failure;
// callers never learn which check failed, mirroring the teacher's
// "invalid token" response for every parseToken/validateClaims error.
var ErrInvalidToken = errors.New("auth: invalid token")

// kindClaim is the wire encoding of booking.ProofKind carried in the "knd"
// custom claim.
type kindClaim string

const (
	kindUser        kindClaim = "user"
	kindReservation kindClaim = "reservation"
	kindArbitrator  kindClaim = "arbitrator"
	kindAdmin       kindClaim = "admin"
)

func (k kindClaim) toProofKind() (booking.ProofKind, bool) {
	switch k {
	case kindUser:
		return booking.ProofKindUser, true
	case kindReservation:
		return booking.ProofKindReservation, true
	case kindArbitrator:
		return booking.ProofKindArbitrator, true
	case kindAdmin:
		return booking.ProofKindAdmin, true
	default:
		return 0, false
	}
}

func proofKindToClaim(kind booking.ProofKind) (kindClaim, error) {
	switch kind {
	case booking.ProofKindUser:
		return kindUser, nil
	case booking.ProofKindReservation:
		return kindReservation, nil
	case booking.ProofKindArbitrator:
		return kindArbitrator, nil
	case booking.ProofKindAdmin:
		return kindAdmin, nil
	default:
		return "", fmt.Errorf("auth: unknown proof kind %d", kind)
	}
}

// proofClaims is the JWT claim set backing one minted credential. Subject
// and Resource mirror booking.Proof's fields; RegisteredClaims supplies
// issuer, expiry and issued-at the way jwt.RegisteredClaims normally would
// for a service-to-service bearer token.
type proofClaims struct {
	Kind     kindClaim `json:"knd"`
	Subject  uint64    `json:"sub_id"`
	Resource uint64    `json:"res_id,omitempty"`
	jwt.RegisteredClaims
}

// Issuer mints and verifies booking proof tokens with a single HMAC secret,
// the same shared-secret shape as gateway/middleware.Authenticator, adapted
// from a one-way validator into a matched issue/verify pair since this
// service both mints and checks its own credentials.
type Issuer struct {
	secret   []byte
	issuer   string
	ttl      time.Duration
	clockLee time.Duration
}

// NewIssuer constructs an Issuer. ttl is the lifetime of newly minted
// tokens; zero disables expiry (used for long-lived admin credentials), and
// a negative ttl mints tokens that are already expired.
func NewIssuer(secret []byte, issuerName string, ttl time.Duration) *Issuer {
	return &Issuer{secret: secret, issuer: issuerName, ttl: ttl, clockLee: 2 * time.Minute}
}

// Mint signs a bearer token asserting the given capability.
func (iss *Issuer) Mint(kind booking.ProofKind, subject, resource uint64) (string, error) {
	kindC, err := proofKindToClaim(kind)
	if err != nil {
		return "", err
	}
	now := time.Now()
	registered := jwt.RegisteredClaims{
		Issuer:   iss.issuer,
		IssuedAt: jwt.NewNumericDate(now),
		ID:       uuid.NewString(),
	}
	if iss.ttl != 0 {
		registered.ExpiresAt = jwt.NewNumericDate(now.Add(iss.ttl))
	}
	claims := proofClaims{
		Kind:             kindC,
		Subject:          subject,
		Resource:         resource,
		RegisteredClaims: registered,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(iss.secret)
}

// Verify parses and validates tokenString, returning the booking.Proof it
// asserts. Any signature, expiry, issuer, or shape mismatch collapses to
// ErrInvalidToken.
func (iss *Issuer) Verify(tokenString string) (booking.Proof, error) {
	var claims proofClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return iss.secret, nil
	}, jwt.WithLeeway(iss.clockLee), jwt.WithIssuer(iss.issuer))
	if err != nil || !token.Valid {
		return booking.Proof{}, ErrInvalidToken
	}
	kind, ok := claims.Kind.toProofKind()
	if !ok {
		return booking.Proof{}, ErrInvalidToken
	}
	return booking.Proof{Kind: kind, Subject: claims.Subject, Resource: claims.Resource}, nil
}
