package public

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flashRequestWithCookies(t *testing.T, recorder *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range recorder.Result().Cookies() {
		r.AddCookie(cookie)
	}
	return r
}

func TestFlashCodec_RoundTrip(t *testing.T) {
	codec := NewFlashCodec([]byte("test-secret"), false)

	w := httptest.NewRecorder()
	codec.Set(w, httptest.NewRequest(http.MethodGet, "/", nil), FlashSuccess, "Review Saved!")

	r := flashRequestWithCookies(t, w)
	popW := httptest.NewRecorder()
	flashes := codec.Pop(popW, r)

	require.Len(t, flashes, 1)
	assert.Equal(t, FlashSuccess, flashes[0].Kind)
	assert.Equal(t, "Review Saved!", flashes[0].Message)

	// Pop clears the cookie.
	cookies := popW.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestFlashCodec_Accumulates(t *testing.T) {
	codec := NewFlashCodec([]byte("test-secret"), false)

	w := httptest.NewRecorder()
	codec.Set(w, httptest.NewRequest(http.MethodGet, "/", nil), FlashInfo, "first")

	r := flashRequestWithCookies(t, w)
	w2 := httptest.NewRecorder()
	codec.Set(w2, r, FlashError, "second")

	r2 := flashRequestWithCookies(t, w2)
	flashes := codec.Pop(httptest.NewRecorder(), r2)

	require.Len(t, flashes, 2)
	assert.Equal(t, "first", flashes[0].Message)
	assert.Equal(t, "second", flashes[1].Message)
}

func TestFlashCodec_RejectsTamperedCookie(t *testing.T) {
	codec := NewFlashCodec([]byte("test-secret"), false)

	w := httptest.NewRecorder()
	codec.Set(w, httptest.NewRequest(http.MethodGet, "/", nil), FlashSuccess, "legit")

	cookie := w.Result().Cookies()[0]
	parts := strings.SplitN(cookie.Value, ".", 2)
	require.Len(t, parts, 2)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: cookie.Name, Value: "dGFtcGVyZWQ" + "." + parts[1]})

	assert.Nil(t, codec.Pop(httptest.NewRecorder(), r))
}

func TestFlashCodec_RejectsForeignSecret(t *testing.T) {
	signer := NewFlashCodec([]byte("other-secret"), false)
	codec := NewFlashCodec([]byte("test-secret"), false)

	w := httptest.NewRecorder()
	signer.Set(w, httptest.NewRequest(http.MethodGet, "/", nil), FlashSuccess, "forged")

	r := flashRequestWithCookies(t, w)
	assert.Nil(t, codec.Pop(httptest.NewRecorder(), r))
}
