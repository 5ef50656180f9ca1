package token

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/tracerhq/tracer/core"
)

func newTestService(delta time.Duration) *Service {
	return &Service{
		signingKey:      []byte("secret"),
		expirationDelta: delta,
	}
}

func TestService_GenerateSessionToken(t *testing.T) {
	delta := 5 * time.Hour
	svc := newTestService(delta)

	// jwt.TimeFunc drives expiry validation during parsing; pin it to the
	// same instant so the round trip does not see the token as expired.
	now := time.Date(2021, time.March, 14, 9, 26, 53, 0, time.UTC)
	nowFunc = func() time.Time { return now }
	jwt.TimeFunc = nowFunc
	defer func() {
		nowFunc = time.Now
		jwt.TimeFunc = time.Now
	}()

	tests := []struct {
		name        string
		subject     string
		authorities []string
		wantRoles   string
	}{
		{name: "no roles", subject: "t1", wantRoles: ""},
		{name: "one role", subject: "t1", authorities: []string{"teacher"}, wantRoles: "teacher"},
		{name: "roles space-joined", subject: "mr_o", authorities: []string{"teacher", "admin"}, wantRoles: "teacher admin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ss, err := svc.GenerateSessionToken(tt.subject, tt.authorities)
			if err != nil {
				t.Fatalf("GenerateSessionToken() failed: %v", err)
			}

			claims, err := svc.ParseSessionToken(ss)
			if err != nil {
				t.Fatalf("ParseSessionToken() failed: %v", err)
			}
			if claims.Issuer != Issuer {
				t.Errorf("iss = %q; want %q", claims.Issuer, Issuer)
			}
			if claims.Subject != tt.subject {
				t.Errorf("sub = %q; want %q", claims.Subject, tt.subject)
			}
			if claims.Roles != tt.wantRoles {
				t.Errorf("roles = %q; want %q", claims.Roles, tt.wantRoles)
			}
			if claims.IssuedAt != now.Unix() {
				t.Errorf("iat = %d; want %d", claims.IssuedAt, now.Unix())
			}
			if want := now.Add(delta).Unix(); claims.ExpiresAt != want {
				t.Errorf("exp = %d; want iat+delta = %d", claims.ExpiresAt, want)
			}
		})
	}
}

func TestService_ParseSessionToken(t *testing.T) {
	svc := newTestService(5 * time.Hour)

	// expired token
	nowFunc = func() time.Time { return time.Now().Add(-6 * time.Hour) }
	expired, err := svc.GenerateSessionToken("t1", nil)
	nowFunc = time.Now
	if err != nil {
		t.Fatalf("GenerateSessionToken() failed: %v", err)
	}

	// token signed with a different key
	otherSvc := newTestService(5 * time.Hour)
	otherSvc.signingKey = []byte("not-the-key")
	forged, err := otherSvc.GenerateSessionToken("t1", nil)
	if err != nil {
		t.Fatalf("GenerateSessionToken() failed: %v", err)
	}

	// token with an unexpected signing method
	noneTok, err := jwt.NewWithClaims(jwt.SigningMethodNone, new(Claims)).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing none token failed: %v", err)
	}

	valid, err := svc.GenerateSessionToken("t1", []string{"teacher"})
	if err != nil {
		t.Fatalf("GenerateSessionToken() failed: %v", err)
	}

	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "empty", raw: "", wantErr: ErrInvalidToken},
		{name: "garbage", raw: "lol.lol.lol", wantErr: ErrInvalidToken},
		{name: "expired", raw: expired, wantErr: ErrInvalidToken},
		{name: "bad signature", raw: forged, wantErr: ErrInvalidToken},
		{name: "alg none", raw: noneTok, wantErr: ErrInvalidToken},
		{name: "valid", raw: valid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.ParseSessionToken(tt.raw); err != tt.wantErr {
				t.Errorf("ParseSessionToken() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestClaims_Authorities(t *testing.T) {
	claims := &Claims{Roles: "teacher admin"}
	got := claims.Authorities()
	if len(got) != 2 || got[0] != "teacher" || got[1] != "admin" {
		t.Errorf("Authorities() = %v; want [teacher admin]", got)
	}

	claims = &Claims{}
	if got := claims.Authorities(); got != nil {
		t.Errorf("Authorities() = %v; want nil", got)
	}
}

func TestGenerateVerificationToken(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		tok, err := GenerateVerificationToken()
		if err != nil {
			t.Fatalf("GenerateVerificationToken() failed: %v", err)
		}

		decoded, err := base64.RawURLEncoding.DecodeString(tok)
		if err != nil {
			t.Fatalf("token is not valid unpadded base64url: %v", err)
		}
		if len(decoded) != verificationTokenLength {
			t.Fatalf("decoded length = %d; want %d", len(decoded), verificationTokenLength)
		}

		if _, dup := seen[tok]; dup {
			t.Fatalf("duplicate token after %d draws", i)
		}
		seen[tok] = struct{}{}
	}
}

func TestNewService(t *testing.T) {
	conf := &core.Config{SecretKey: []byte("k")}
	conf.Server.JWTExpirationDelta = 5 * time.Hour
	svc := NewService(conf)
	if string(svc.SigningKey()) != "k" {
		t.Errorf("SigningKey() = %q; want %q", svc.SigningKey(), "k")
	}
	if svc.expirationDelta != 5*time.Hour {
		t.Errorf("expirationDelta = %v; want 5h", svc.expirationDelta)
	}
}
