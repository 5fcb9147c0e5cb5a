package user

import (
	"strings"
	"testing"
	"time"

	"github.com/mjuric/labtrack/core"
)

func TestIssueVerifyToken(t *testing.T) {
	conf := core.NewTestConfig()

	usr := User{
		ID:       1,
		Username: "jdoe",
		Name:     "John",
		Surname:  "Doe",
		Role:     RoleStudent,
	}

	validToken, err := IssueToken(usr, conf)
	if err != nil {
		t.Fatalf("IssueToken() failed: %v", err)
	}

	// generate an expired token
	nowFunc = func() time.Time { return time.Now().Add(-(conf.JWTExpirationDelta + time.Minute)) }
	expiredToken, err := IssueToken(usr, conf)
	if err != nil {
		t.Fatalf("IssueToken() failed: %v", err)
	}
	nowFunc = time.Now // reset

	// flip a byte in the signature segment
	tamperedToken := tamperSignature(t, validToken)

	// sign with a different key
	otherConf := core.NewTestConfig()
	otherConf.SecretKey = []byte("not-the-secret")
	foreignToken, err := IssueToken(usr, otherConf)
	if err != nil {
		t.Fatalf("IssueToken() failed: %v", err)
	}

	// token with no subject claim
	noSubToken, err := IssueToken(User{Role: RoleStudent}, conf)
	if err != nil {
		t.Fatalf("IssueToken() failed: %v", err)
	}

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "valid token", token: validToken},
		{name: "no token", token: "", wantErr: ErrTokenInvalid},
		{name: "garbage", token: "lmaooolol", wantErr: ErrTokenInvalid},
		{name: "expired token", token: expiredToken, wantErr: ErrTokenExpired},
		{name: "tampered signature", token: tamperedToken, wantErr: ErrTokenInvalid},
		{name: "wrong key", token: foreignToken, wantErr: ErrTokenInvalid},
		{name: "missing subject", token: noSubToken, wantErr: ErrTokenInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := VerifyToken(tt.token, conf)
			if err != tt.wantErr {
				t.Errorf("VerifyToken() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr == nil {
				if claims.Subject != usr.Username {
					t.Errorf("VerifyToken() subject = %v; want %v", claims.Subject, usr.Username)
				}
				if claims.Role != usr.Role {
					t.Errorf("VerifyToken() role = %v; want %v", claims.Role, usr.Role)
				}
			}
		})
	}
}

func tamperSignature(t *testing.T, token string) string {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("tamperSignature(): unexpected token format")
	}
	sig := []byte(parts[2])
	if sig[0] != 'A' {
		sig[0] = 'A'
	} else {
		sig[0] = 'B'
	}
	parts[2] = string(sig)
	return strings.Join(parts, ".")
}
