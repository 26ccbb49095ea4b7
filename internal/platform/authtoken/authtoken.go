// Package authtoken issues and verifies the HS256 bearer tokens accepted by the API.
package authtoken

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/cohort-backend/internal/platform/ctxutil"
	"github.com/yungbote/cohort-backend/internal/platform/errs"
)

const Issuer = "cohort-backend"

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Issue signs a token for subject with the given role, valid for ttl from now.
func Issue(secret []byte, subject uuid.UUID, role string, ttl time.Duration, now time.Time) (string, error) {
	if len(secret) == 0 {
		return "", errs.Invalid("jwt secret is empty")
	}
	if subject == uuid.Nil {
		return "", errs.Invalid("subject is required")
	}
	role = strings.ToLower(strings.TrimSpace(role))
	if role != ctxutil.RoleAdmin && role != ctxutil.RoleLearner {
		return "", errs.Invalid("unknown role %q", role)
	}
	if ttl <= 0 {
		return "", errs.Invalid("ttl must be positive")
	}
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   subject.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Parse verifies signature, expiry and issuer and returns the request subject.
func Parse(secret []byte, token string) (*ctxutil.RequestData, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrUnauthorized, err)
	}
	sub, err := uuid.Parse(claims.Subject)
	if err != nil || sub == uuid.Nil {
		return nil, fmt.Errorf("%w: invalid subject", errs.ErrUnauthorized)
	}
	return &ctxutil.RequestData{UserID: sub, Role: claims.Role}, nil
}
