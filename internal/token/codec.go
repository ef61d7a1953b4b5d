// Package token encodes arbitrary payloads into signed, self-expiring JWTs
// and verifies them again. The token is the only record of a pending request:
// nothing is stored server side.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultIssuer is written to and required in the iss claim.
const DefaultIssuer = "scanconfirm"

var (
	ErrEncoding     = errors.New("token: payload cannot be encoded")
	ErrInvalidToken = errors.New("token: invalid token")
	ErrExpiredToken = errors.New("token: expired")
	ErrEmptySecret  = errors.New("token: signing secret is empty")
)

// Claims wraps a payload of any shape with the registered JWT claims.
type Claims[T any] struct {
	Payload T `json:"payload"`
	jwt.RegisteredClaims
}

// Identified payloads have their id copied into the jti claim.
type Identified interface {
	TokenID() string
}

type options struct {
	now func() time.Time
}

// Option tunes a Codec.
type Option func(*options)

// WithClock replaces time.Now for both issuing and validating.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// Codec signs and verifies Claims[T] with HS256 and a shared secret.
// It holds no mutable state and is safe for concurrent use.
type Codec[T any] struct {
	secret []byte
	issuer string
	now    func() time.Time
	parser *jwt.Parser
}

// NewCodec builds a codec for payload type T.
func NewCodec[T any](secret []byte, opts ...Option) (*Codec[T], error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	return &Codec[T]{
		secret: append([]byte(nil), secret...),
		issuer: DefaultIssuer,
		now:    o.now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
			jwt.WithIssuer(DefaultIssuer),
			jwt.WithTimeFunc(o.now),
			jwt.WithStrictDecoding(),
		),
	}, nil
}

// Encode signs payload with an absolute expiry of now+ttl, truncated to
// whole epoch seconds.
func (c *Codec[T]) Encode(payload T, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("%w: ttl must be positive, got %s", ErrEncoding, ttl)
	}
	now := c.now().UTC().Truncate(time.Second)

	claims := &Claims[T]{
		Payload: payload,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if id, ok := any(payload).(Identified); ok {
		claims.ID = id.TokenID()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return signed, nil
}

// Decode verifies raw and returns its payload.
func (c *Codec[T]) Decode(raw string) (T, error) {
	claims, err := c.DecodeClaims(raw)
	if err != nil {
		var zero T
		return zero, err
	}
	return claims.Payload, nil
}

// DecodeClaims verifies raw and returns the whole envelope. Every failure
// matches ErrInvalidToken; expiry additionally matches ErrExpiredToken.
func (c *Codec[T]) DecodeClaims(raw string) (*Claims[T], error) {
	claims := &Claims[T]{}
	tok, err := c.parser.ParseWithClaims(raw, claims, c.key)
	switch {
	case err == nil && tok.Valid:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, ErrExpiredToken)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	default:
		return nil, ErrInvalidToken
	}
}

// Inspect parses raw WITHOUT verifying the signature or expiry. It is meant
// for operator tooling; never act on its result.
func (c *Codec[T]) Inspect(raw string) (*Claims[T], error) {
	claims := &Claims[T]{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

func (c *Codec[T]) key(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
	}
	return c.secret, nil
}
