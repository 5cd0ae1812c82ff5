package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// JWTVerifier verifies a signed token locally against the shared secret,
// then resolves the subject in the users table.
type JWTVerifier struct {
	secret []byte
	db     *gorm.DB
}

func NewJWTVerifier(secret string, gdb *gorm.DB) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), db: gdb}
}

func (v *JWTVerifier) Verify(ctx context.Context, cred Credential) (*Identity, error) {
	if cred.Bearer == "" {
		return nil, ErrMissing
	}

	tok, err := jwt.Parse(cred.Bearer, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, ErrMalformed
		}
		return nil, ErrInvalid
	}

	sub, err := tok.Claims.GetSubject()
	if err != nil || sub == "" {
		return nil, ErrInvalid
	}

	return lookupIdentity(ctx, v.db, sub)
}

// SignJWT issues a token the JWTVerifier accepts. Used by operator tooling
// and tests; the server itself never hands tokens out.
func SignJWT(userID, secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": jwt.NewNumericDate(time.Now()),
		"exp": jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
