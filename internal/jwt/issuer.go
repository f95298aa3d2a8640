// Package jwt emite y valida los tokens de sesión (HS256) que viajan en la cookie.
package jwt

import (
	"errors"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

const DefaultSessionTTL = 7 * 24 * time.Hour

var (
	ErrNoSecret      = errors.New("jwt: empty secret")
	ErrInvalidToken  = errors.New("jwt: invalid token")
	ErrInvalidIssuer = errors.New("jwt: invalid issuer")
)

// SessionClaims lleva el id del usuario en "userId", igual que las sesiones existentes.
type SessionClaims struct {
	UserID string `json:"userId"`
	jwtv5.RegisteredClaims
}

// Issuer firma tokens de sesión con un secreto compartido.
type Issuer struct {
	Secret []byte
	Iss    string        // "iss"; vacío = no se setea ni se chequea
	TTL    time.Duration // default 7 días
	Now    func() time.Time
}

func NewIssuer(secret, iss string, ttl time.Duration) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrNoSecret
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Issuer{Secret: []byte(secret), Iss: iss, TTL: ttl, Now: time.Now}, nil
}

func (i *Issuer) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

// Issue emite un token para userID y devuelve su expiración.
func (i *Issuer) Issue(userID string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, errors.New("jwt: empty user id")
	}
	now := i.now().UTC()
	exp := now.Add(i.TTL)

	claims := SessionClaims{
		UserID: userID,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    i.Iss,
			Subject:   userID,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(exp),
		},
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	tk.Header["typ"] = "JWT"
	signed, err := tk.SignedString(i.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse valida firma, método y exp; devuelve el userId.
func (i *Issuer) Parse(token string) (string, error) {
	var claims SessionClaims
	tok, err := jwtv5.ParseWithClaims(token, &claims,
		func(*jwtv5.Token) (any, error) { return i.Secret, nil },
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithTimeFunc(i.now),
		jwtv5.WithExpirationRequired(),
	)
	if err != nil || !tok.Valid {
		return "", ErrInvalidToken
	}
	if i.Iss != "" && claims.Issuer != i.Iss {
		return "", ErrInvalidIssuer
	}
	if claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}
