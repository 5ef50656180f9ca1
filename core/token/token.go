package token

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/tracerhq/tracer/core"
)

// Issuer is the fixed, self-identifying `iss` claim of every session token.
const Issuer = "self"

// verificationTokenLength is the decoded byte length of email verification tokens.
const verificationTokenLength = 100

var (
	nowFunc = time.Now // mockable

	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims is the claim set embedded in a signed session token.
// Roles carries the space-joined authority strings; their order follows the
// authority collection passed at issue time and must not be relied upon.
type Claims struct {
	jwt.StandardClaims
	Roles string `json:"roles,omitempty"`
}

// Authorities splits the Roles claim back into its authority strings.
func (c *Claims) Authorities() []string {
	if c.Roles == "" {
		return nil
	}
	return strings.Fields(c.Roles)
}

// Service issues and parses signed session tokens. Verification tokens are
// stateless and issued by the package-level GenerateVerificationToken.
type Service struct {
	signingKey      []byte
	expirationDelta time.Duration
}

func NewService(conf *core.Config) *Service {
	return &Service{
		signingKey:      conf.SecretKey,
		expirationDelta: conf.Server.JWTExpirationDelta,
	}
}

func (svc *Service) SigningKey() []byte { return svc.signingKey }

// GenerateSessionToken builds and signs the session claim set for the given
// subject: iss=Issuer, iat=now, sub=subject, roles=space-joined authorities,
// exp=iat+expirationDelta.
func (svc *Service) GenerateSessionToken(subject string, authorities []string) (string, error) {
	now := nowFunc()
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    Issuer,
			Subject:   subject,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(svc.expirationDelta).Unix(),
		},
		Roles: strings.Join(authorities, " "),
	}

	ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.signingKey)
	if err != nil {
		return "", errors.Wrap(err, "signing session token")
	}
	return ss, nil
}

// ParseSessionToken verifies the signature and expiry of a compact session
// token and returns its claims. Any failure collapses into ErrInvalidToken;
// callers treat it as an Unauthorized condition.
func (svc *Service) ParseSessionToken(raw string) (*Claims, error) {
	claims := new(Claims)
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %q", t.Header["alg"])
		}
		return svc.signingKey, nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateVerificationToken returns an opaque bearer credential for
// out-of-band email confirmation: verificationTokenLength bytes drawn from a
// CSPRNG, URL-safe base64 without padding.
func GenerateVerificationToken() (string, error) {
	buf := make([]byte, verificationTokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "reading random bytes")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
