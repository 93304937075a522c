package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var ErrSubjectMismatch = errors.New("auth: token subject mismatch")

// Tokens verifies identify tokens presented on the online event. The token
// is minted by the CRUD side at login; this node only checks that it is
// valid and names the user the connection claims to be.
type Tokens struct {
	secret []byte
}

// NewTokens returns nil when secret is empty, which disables verification.
func NewTokens(secret string) *Tokens {
	if secret == "" {
		return nil
	}
	return &Tokens{secret: []byte(secret)}
}

// Verify parses an HS256 token and checks its subject equals userID.
func (t *Tokens) Verify(token, userID string) error {
	parsed, err := jwt.Parse(token, func(tk *jwt.Token) (interface{}, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method %v", tk.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return err
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil {
		return err
	}
	if sub != userID {
		return ErrSubjectMismatch
	}
	return nil
}

// Sign computes the hex HMAC-SHA256 signature for a /notify request body
// and its timestamp.
func Sign(secret string, body []byte, ts string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	h.Write([]byte(ts))
	return hex.EncodeToString(h.Sum(nil))
}

// CheckSign verifies a /notify request signature in constant time.
func CheckSign(secret string, body []byte, ts, sig string) bool {
	want := Sign(secret, body, ts)
	return hmac.Equal([]byte(want), []byte(sig))
}
