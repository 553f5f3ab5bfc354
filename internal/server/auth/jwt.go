// Package auth holds the privileged-access gate and the login decision.
//
// Administrative operations take a Privilege value. The only way to get one
// is Issuer.Verify on a dev token, and the only way to get a dev token is
// Issuer.Exchange with the configured override PIN.
package auth

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/dmitrijs2005/cyclelogin/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// RoleDev is the only role a dev token carries.
const RoleDev = "dev"

// Claims are the JWT claims of a dev token.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// tokenIDBytes sizes the random jti so two tokens minted in the same
// second still differ.
const tokenIDBytes = 24

// GenerateToken signs an HS256 token for subject valid for validity from now.
func GenerateToken(subject string, secretKey []byte, validity time.Duration, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(validity)

	jti, err := common.MakeRandHexString(tokenIDBytes)
	if err != nil {
		return "", time.Time{}, err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role: RoleDev,
	})

	s, err := token.SignedString(secretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return s, expiresAt, nil
}

// ParseToken validates signature, algorithm and expiry as of now.
func ParseToken(tokenString string, secretKey []byte, now time.Time) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return secretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid || claims.Role != RoleDev {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// Privilege proves the holder passed the administrative gate. The zero
// value grants nothing.
type Privilege struct {
	subject   string
	expiresAt time.Time
}

// Allowed reports whether the privilege is still usable at now.
func (p Privilege) Allowed(now time.Time) bool {
	return p.subject != "" && now.Before(p.expiresAt)
}

func (p Privilege) Subject() string      { return p.subject }
func (p Privilege) ExpiresAt() time.Time { return p.expiresAt }

// Require returns common.ErrorUnauthorized unless p is usable at now.
func Require(p Privilege, now time.Time) error {
	if !p.Allowed(now) {
		return common.ErrorUnauthorized
	}
	return nil
}

// Issuer exchanges the override PIN for dev tokens and turns valid tokens
// into Privilege values.
type Issuer struct {
	secret []byte
	pin    string
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer builds an Issuer. An empty pin disables the override.
func NewIssuer(secret, pin string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), pin: pin, ttl: ttl, now: time.Now}
}

// WithClock replaces the time source; intended for tests.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

// OverridePIN returns the configured override PIN ("" when disabled).
func (i *Issuer) OverridePIN() string { return i.pin }

// IsOverride reports whether pin is the override PIN.
func (i *Issuer) IsOverride(pin string) bool {
	if i.pin == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(pin), []byte(i.pin)) == 1
}

// Exchange returns a dev token for the override PIN.
func (i *Issuer) Exchange(pin string) (string, time.Time, error) {
	if !i.IsOverride(pin) {
		return "", time.Time{}, common.ErrorUnauthorized
	}
	return GenerateToken(RoleDev, i.secret, i.ttl, i.now())
}

// Verify turns a dev token into a Privilege.
func (i *Issuer) Verify(token string) (Privilege, error) {
	if token == "" {
		return Privilege{}, common.ErrorUnauthorized
	}
	claims, err := ParseToken(token, i.secret, i.now())
	if err != nil {
		return Privilege{}, err
	}
	return Privilege{subject: claims.Subject, expiresAt: claims.ExpiresAt.Time}, nil
}
