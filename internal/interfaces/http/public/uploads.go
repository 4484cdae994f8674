package public

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/localbites/localbites-services/api/internal/domain"
	"github.com/localbites/localbites-services/api/internal/interfaces/http/common"
)

// PhotoStore persists uploaded store photos under a public directory. Files
// are stored as received; resizing belongs to an external pipeline.
type PhotoStore struct {
	dir string
}

// NewPhotoStore creates the uploads directory if needed.
func NewPhotoStore(dir string) (*PhotoStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir %q: %w", dir, err)
	}
	return &PhotoStore{dir: dir}, nil
}

// Dir returns the directory photos are written to.
func (p *PhotoStore) Dir() string {
	return p.dir
}

// Save reads the optional "photo" field from a multipart form and stores it
// under a fresh uuid filename. Returns "" when no file was uploaded, and a
// ValidationError when the upload is not an image.
func (p *PhotoStore) Save(r *http.Request) (string, error) {
	file, header, err := r.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer file.Close()

	if header.Size > common.MaxPhotoUpload {
		return "", domain.NewValidationError("photo", "file is too large")
	}

	ext, err := sniffImageExtension(file, header)
	if err != nil {
		return "", err
	}

	filename := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(p.dir, filename))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", err
	}
	return filename, nil
}

// sniffImageExtension checks the magic bytes and rejects anything that is
// not an image, mirroring the upload filter of the listing forms.
func sniffImageExtension(file multipart.File, header *multipart.FileHeader) (string, error) {
	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	contentType := http.DetectContentType(head[:n])
	if !strings.HasPrefix(contentType, "image/") {
		return "", domain.NewValidationError("photo", "that file type isn't allowed")
	}

	switch contentType {
	case "image/jpeg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	}
	if ext := filepath.Ext(header.Filename); ext != "" {
		return ext, nil
	}
	return ".img", nil
}
