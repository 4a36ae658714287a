package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken wraps every token validation failure
var ErrInvalidToken = errors.New("invalid token")

// Claims are the identity facts carried by an access token
type Claims struct {
	UserID uint
	Role   string
}

func (c *Claims) IsAdmin() bool {
	return c.Role == models.RoleAdmin
}

// parseJWTToken validates and parses a JWT token using HMAC signing method
func parseJWTToken(tokenString string, jwtSecret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Reject anything but HMAC to prevent algorithm confusion
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: invalid claims format", ErrInvalidToken)
	}
	return claims, nil
}

// parseAndValidateJWT parses the JWT and checks its time based claims
func parseAndValidateJWT(tokenString string, jwtSecret []byte) (jwt.MapClaims, error) {
	claims, err := parseJWTToken(tokenString, jwtSecret)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("%w: invalid exp claim", ErrInvalidToken)
	}
	if exp == nil || exp.Before(now) {
		return nil, fmt.Errorf("%w: token has expired", ErrInvalidToken)
	}

	nbf, err := claims.GetNotBefore()
	if err != nil {
		return nil, fmt.Errorf("%w: invalid nbf claim", ErrInvalidToken)
	}
	if nbf != nil && nbf.After(now) {
		return nil, fmt.Errorf("%w: token not yet valid", ErrInvalidToken)
	}

	iat, err := claims.GetIssuedAt()
	if err != nil {
		return nil, fmt.Errorf("%w: invalid iat claim", ErrInvalidToken)
	}
	if iat != nil && iat.After(now.Add(time.Minute)) {
		return nil, fmt.Errorf("%w: token issued in the future", ErrInvalidToken)
	}

	return claims, nil
}

func claimsFrom(claims jwt.MapClaims) (*Claims, error) {
	userID, err := extractUserID(claims)
	if err != nil {
		return nil, err
	}
	role, err := extractRole(claims)
	if err != nil {
		return nil, err
	}
	return &Claims{UserID: userID, Role: role}, nil
}

// extractUserID reads the "uid" claim, written as a numeric string by the generator
func extractUserID(claims jwt.MapClaims) (uint, error) {
	if uid, ok := claims["uid"].(string); ok && uid != "" {
		parsed, err := strconv.ParseUint(uid, 10, 32)
		if err != nil || parsed == 0 {
			return 0, fmt.Errorf("%w: invalid uid claim %q", ErrInvalidToken, uid)
		}
		return uint(parsed), nil
	}

	if uid, ok := claims["uid"].(float64); ok && uid > 0 {
		return uint(uid), nil
	}

	return 0, fmt.Errorf("%w: missing uid claim", ErrInvalidToken)
}

// extractRole reads the mandatory "role" claim
func extractRole(claims jwt.MapClaims) (string, error) {
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return "", fmt.Errorf("%w: missing role claim", ErrInvalidToken)
	}
	if role != models.RoleAdmin && role != models.RoleUser {
		return "", fmt.Errorf("%w: invalid role %q", ErrInvalidToken, role)
	}
	return role, nil
}
