package public

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localbites/localbites-services/api/internal/domain"
)

// pngHeader is the minimal magic-byte prefix DetectContentType needs.
var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

func multipartUpload(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	r := httptest.NewRequest(http.MethodPost, "/add", &body)
	r.Header.Set("Content-Type", writer.FormDataContentType())
	return r
}

func TestPhotoStore_Save(t *testing.T) {
	store, err := NewPhotoStore(t.TempDir())
	require.NoError(t, err)

	r := multipartUpload(t, "photo", "shopfront.png", pngHeader)
	filename, err := store.Save(r)

	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(filename, ".png"), "filename %q should keep the sniffed extension", filename)

	saved, err := os.ReadFile(filepath.Join(store.Dir(), filename))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, saved)
}

func TestPhotoStore_Save_RejectsNonImage(t *testing.T) {
	store, err := NewPhotoStore(t.TempDir())
	require.NoError(t, err)

	r := multipartUpload(t, "photo", "resume.txt", []byte("plain text, not an image"))
	_, err = store.Save(r)

	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestPhotoStore_Save_MissingFileIsNotAnError(t *testing.T) {
	store, err := NewPhotoStore(t.TempDir())
	require.NoError(t, err)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("name", "No Photo Diner"))
	require.NoError(t, writer.Close())
	r := httptest.NewRequest(http.MethodPost, "/add", &body)
	r.Header.Set("Content-Type", writer.FormDataContentType())

	filename, err := store.Save(r)

	require.NoError(t, err)
	assert.Empty(t, filename)
}
