package user

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/mjuric/labtrack/core"
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims is the authorization payload transmitted via a JWT.
// The role claim is informational: the auth guard re-reads the role from
// storage after resolving the subject, so a role change takes effect on the
// next request even while an old token is still in flight.
type Claims struct {
	jwt.StandardClaims
	Role string `json:"role,omitempty"`
}

// IssueToken signs a token embedding the user's identity and role,
// expiring after the configured delta. There is no refresh or revocation;
// a token stays valid for its whole lifetime once issued.
func IssueToken(usr User, conf *core.Config) (string, error) {
	now := nowFunc()
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   usr.Username,
			ExpiresAt: now.Add(conf.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Role: usr.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(conf.SecretKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// VerifyToken validates the signature and expiry of a token string.
// It fails with ErrTokenExpired past the embedded expiry and with
// ErrTokenInvalid for any other defect (bad signature, unparsable
// structure, missing subject).
func VerifyToken(token string, conf *core.Config) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return conf.SecretKey, nil
	})
	if err != nil {
		if ve, ok := err.(*jwt.ValidationError); ok && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return Claims{}, ErrTokenInvalid
	}
	return *claims, nil
}
