package teacher

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/tracerhq/tracer/core"
)

var (
	salt    = []byte("tracer.core.teacher.token_gen")
	nowFunc = time.Now // mockable

	// errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// EncodeUID base64 encodes the given Teacher's ID for use in confirmation links.
func EncodeUID(t Teacher) string {
	return base64.RawURLEncoding.EncodeToString([]byte(t.ID))
}

// DecodeUID base64 decodes a UID back to a Teacher ID.
func DecodeUID(uid string) (string, error) {
	idBytes, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return "", ErrInvalidToken
	}
	return string(idBytes), nil
}

// MakeEmailConfirmToken generates a signed, time-bounded email confirmation
// token for a given Teacher. The signature covers the account's stored
// verification token, so confirming (which clears it) invalidates the link.
func MakeEmailConfirmToken(conf *core.Config, t Teacher) string {
	return makeTokenWithTimestamp(conf, t, numDaysSince2001(nowFunc()))
}

// VerifyEmailConfirmToken checks that an email confirmation token for a given
// Teacher is authentic and within its validity window.
func VerifyEmailConfirmToken(conf *core.Config, t Teacher, tok string) error {
	if tok == "" {
		return ErrInvalidToken
	}

	parts := strings.SplitN(tok, "-", 2)
	if len(parts) < 2 {
		return ErrInvalidToken
	}
	tsB32 := parts[0]

	data, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(tsB32)
	if err != nil {
		return ErrInvalidToken
	}
	ts, err := strconv.Atoi(string(data))
	if err != nil {
		return ErrInvalidToken
	}

	// check that the token has not been tampered with
	newTok := makeTokenWithTimestamp(conf, t, ts)
	if subtle.ConstantTimeCompare([]byte(newTok), []byte(tok)) == 0 {
		return ErrInvalidToken
	}

	// check that the timestamp is within limit
	if (numDaysSince2001(nowFunc()) - ts) > int(conf.Server.EmailConfirmTimeoutDelta/(24*time.Hour)) {
		return ErrTokenExpired
	}
	return nil
}

func makeTokenWithTimestamp(conf *core.Config, t Teacher, ts int) string {
	tsB32 := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString([]byte(strconv.Itoa(ts)))
	return fmt.Sprintf("%s-%s", tsB32, sign(conf, hashValue(t, ts)))
}

func numDaysSince2001(t time.Time) int {
	ref := time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)
	return int(math.Ceil(t.Sub(ref).Hours() / 24))
}

func sign(conf *core.Config, val []byte) string {
	key := sha256.Sum256(append(salt, conf.SecretKey...))
	h := hmac.New(sha256.New, key[:])
	h.Write(val)
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

func hashValue(t Teacher, ts int) []byte {
	var val bytes.Buffer
	val.WriteString(t.ID)
	val.WriteString(t.VerificationToken)
	val.WriteString(strconv.FormatBool(t.EmailVerified))
	val.WriteString(strconv.Itoa(ts))
	return val.Bytes()
}
