package security

import (
	"errors"
	"fmt"
	"time"

	"agentdesk/contexts/identity-access/agent-directory/domain/entities"
	domainerrors "agentdesk/contexts/identity-access/agent-directory/domain/errors"
	"agentdesk/contexts/identity-access/agent-directory/ports"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultTokenTTL = 24 * time.Hour

type tokenClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTCodec issues and verifies HS256 bearer tokens.
type JWTCodec struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

func NewJWTCodec(secret string, issuer string, ttl time.Duration) (JWTCodec, error) {
	if secret == "" {
		return JWTCodec{}, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return JWTCodec{
		Secret: []byte(secret),
		Issuer: issuer,
		TTL:    ttl,
	}, nil
}

func (c JWTCodec) Issue(user entities.User, now time.Time) (string, time.Time, error) {
	ttl := c.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	issuedAt := now.UTC()
	expiresAt := issuedAt.Add(ttl)
	claims := tokenClaims{
		UserID: user.UserID,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID,
			Issuer:    c.Issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (c JWTCodec) Verify(token string, now time.Time) (entities.TokenClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	}
	if c.Issuer != "" {
		options = append(options, jwt.WithIssuer(c.Issuer))
	}

	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.Secret, nil
	}, options...)
	if err != nil || !parsed.Valid {
		return entities.TokenClaims{}, domainerrors.ErrInvalidToken
	}

	result := entities.TokenClaims{
		UserID: claims.UserID,
		Role:   entities.Role(claims.Role),
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return result, nil
}

var (
	_ ports.TokenIssuer   = JWTCodec{}
	_ ports.TokenVerifier = JWTCodec{}
)
