package public

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
)

const flashCookieName = "lb_flash"

// Flash kinds understood by the templates.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashError   = "error"
)

// Flash is a one-shot notice carried across a redirect.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// FlashCodec signs and verifies the flash cookie. The payload is JSON,
// base64-encoded and signed with HMAC-SHA256 so a client cannot forge
// notices.
type FlashCodec struct {
	secret []byte
	secure bool
}

// NewFlashCodec creates a codec with the given signing secret.
func NewFlashCodec(secret []byte, secure bool) *FlashCodec {
	return &FlashCodec{secret: secret, secure: secure}
}

// Set queues a flash to be shown on the next rendered page. Any flashes
// already queued on the incoming request are preserved.
func (c *FlashCodec) Set(w http.ResponseWriter, r *http.Request, kind, message string) {
	flashes := append(c.peek(r), Flash{Kind: kind, Message: message})

	payload, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	encoded := base64.RawURLEncoding.EncodeToString(payload)

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    encoded + "." + c.sign(encoded),
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns the queued flashes and clears the cookie.
func (c *FlashCodec) Pop(w http.ResponseWriter, r *http.Request) []Flash {
	flashes := c.peek(r)
	if flashes == nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return flashes
}

func (c *FlashCodec) peek(r *http.Request) []Flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}

	encoded, signature, ok := strings.Cut(cookie.Value, ".")
	if !ok || !hmac.Equal([]byte(signature), []byte(c.sign(encoded))) {
		return nil
	}

	payload, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(payload, &flashes); err != nil {
		return nil
	}
	return flashes
}

func (c *FlashCodec) sign(encoded string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(encoded))
	return hex.EncodeToString(mac.Sum(nil))
}
