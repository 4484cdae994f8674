package common

const (
	// MaxFormBody limits urlencoded form bodies for store/review endpoints.
	MaxFormBody = 1 << 20
	// MaxPhotoUpload limits the multipart photo payload.
	MaxPhotoUpload = 10 << 20
)
