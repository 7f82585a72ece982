package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"bizcard/internal/shared/authorization"
	"bizcard/internal/shared/biztime"
)

var ErrInvalidToken = errors.New("invalid operator token")

// Claims identify a back-office operator. Subject carries the operator ID
// recorded as the actor in audit entries.
type Claims struct {
	Role authorization.OperatorRole `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) OperatorID() string {
	return c.Subject
}

type JWTService struct {
	secret           []byte
	accessExpMinutes int
	issuer           string
}

func NewJWTService(secret string, accessExpMinutes int, issuer string) *JWTService {
	return &JWTService{
		secret:           []byte(secret),
		accessExpMinutes: accessExpMinutes,
		issuer:           issuer,
	}
}

// Generate signs an operator token. A non-positive ttl uses the configured
// access expiry.
func (s *JWTService) Generate(operatorID string, role authorization.OperatorRole, ttl time.Duration) (string, time.Time, error) {
	if operatorID == "" {
		return "", time.Time{}, fmt.Errorf("operator ID is required")
	}
	if !role.IsValid() {
		return "", time.Time{}, fmt.Errorf("invalid operator role: %s", role)
	}
	if ttl <= 0 {
		ttl = time.Duration(s.accessExpMinutes) * time.Minute
	}

	now := biztime.NowUTC()
	exp := now.Add(ttl)
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   operatorID,
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign operator token: %w", err)
	}

	return token, exp, nil
}

func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || !claims.Role.IsValid() {
		return nil, fmt.Errorf("%w: missing operator identity", ErrInvalidToken)
	}

	return claims, nil
}
