package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// RoleUser marks sessions bootstrapped from a pre-supplied token.
	RoleUser = "user"
	// RoleAnonymous marks sessions issued without any credential.
	RoleAnonymous = "anonymous"
)

// Session is a signed bearer token for one kiosk operator.
type Session struct {
	Token     string
	Subject   string
	Role      string
	ExpiresAt time.Time
}

// Claims represents JWT payload.
type Claims struct {
	Subject string `json:"sub"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// Issue signs a session token for the given subject.
func Issue(subject, role, issuer, key string, ttl time.Duration) (Session, error) {
	exp := time.Now().Add(ttl)

	claims := Claims{
		Subject: subject,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		return Session{}, err
	}

	return Session{
		Token:     token,
		Subject:   subject,
		Role:      role,
		ExpiresAt: exp,
	}, nil
}

// Parse validates a token and returns claims.
func Parse(tokenStr, key, issuer string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(key), nil
	})
	if err != nil {
		return Claims{}, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, errors.New("invalid token")
	}
	if issuer != "" && claims.Issuer != issuer {
		return Claims{}, errors.New("issuer mismatch")
	}
	return *claims, nil
}

// Bootstrap establishes an operator identity. A pre-supplied token is
// validated and exchanged for a fresh session carrying the same subject;
// with no token an anonymous subject is minted so the capture flow stays
// usable on unconfigured kiosks.
func Bootstrap(supplied, issuer, key string, ttl time.Duration) (Session, error) {
	if supplied == "" {
		return Issue("anon-"+uuid.NewString(), RoleAnonymous, issuer, key, ttl)
	}
	claims, err := Parse(supplied, key, issuer)
	if err != nil {
		return Session{}, fmt.Errorf("supplied token rejected: %w", err)
	}
	role := claims.Role
	if role == "" {
		role = RoleUser
	}
	return Issue(claims.Subject, role, issuer, key, ttl)
}
