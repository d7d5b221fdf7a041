package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

type sessionClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// signToken generates the bearer token for a session.
func (s *Service) signToken(sess *Session) (string, error) {
	const op = "auth.token.signToken"

	claims := sessionClaims{
		UserID: strconv.FormatUint(sess.UserID, 10),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Subject:   sess.Username,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// parseToken validates signature, issuer and expiry and returns the session
// id and user id the token carries.
func (s *Service) parseToken(tokenStr string) (string, uint64, error) {
	const op = "auth.token.parseToken"

	token, err := jwt.ParseWithClaims(tokenStr, &sessionClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return []byte(s.cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(5*time.Second),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", 0, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}
		return "", 0, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.ID == "" {
		return "", 0, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	uid, err := strconv.ParseUint(claims.UserID, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	return claims.ID, uid, nil
}
