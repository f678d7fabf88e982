package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/meera-jewels/retail-api/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// TokenValidator validates operator tokens. Tokens are HS256-signed with
// a shared secret; the console backend issues them when a staff member
// signs in on a floor terminal.
type TokenValidator struct {
	secret []byte
}

func NewTokenValidator(secret string) *TokenValidator {
	return &TokenValidator{secret: []byte(secret)}
}

// ValidateToken parses and verifies an operator token and returns the
// operator it identifies.
func (v *TokenValidator) ValidateToken(tokenString string) (*OperatorContext, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	operator := &OperatorContext{
		ID:   sub,
		Name: extractString(claims, "name"),
		Role: domain.TeamRole(extractString(claims, "role")),
	}
	if floor, ok := claims["floor"].(float64); ok {
		operator.Floor = int(floor)
	}

	return operator, nil
}

// IssueToken signs a token for the operator, valid for the given
// duration. Used by the sign-in flow and by tests.
func (v *TokenValidator) IssueToken(operator *OperatorContext, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   operator.ID,
		"name":  operator.Name,
		"role":  string(operator.Role),
		"floor": operator.Floor,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func extractString(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if val, ok := claims[key]; ok {
			if str, ok := val.(string); ok && str != "" {
				return str
			}
		}
	}
	return ""
}
