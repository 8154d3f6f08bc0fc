package validators

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	pkgerrors "github.com/edelguur/admin-backend/pkg/errors"
)

// IsMultipart reports whether the request carries a multipart form.
func IsMultipart(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/form-data")
}

// ParseMultipart reads the form with a hard cap on the request body.
func ParseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return pkgerrors.New(pkgerrors.CodeValidation, "upload too large").WithDetails(map[string]any{"max_bytes": maxBytes})
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}
	return nil
}

// FormString returns the trimmed value of key, or "" when absent.
func FormString(r *http.Request, key string) string {
	if r.MultipartForm == nil {
		return strings.TrimSpace(r.FormValue(key))
	}
	if values := r.MultipartForm.Value[key]; len(values) > 0 {
		return strings.TrimSpace(values[0])
	}
	return ""
}

// FormOptional returns nil when key is absent or blank.
func FormOptional(r *http.Request, key string) *string {
	v := FormString(r, key)
	if v == "" {
		return nil
	}
	return &v
}

// FormFile returns the first file under key, or nil.
func FormFile(r *http.Request, key string) *multipart.FileHeader {
	if files := FormFiles(r, key); len(files) > 0 {
		return files[0]
	}
	return nil
}

func FormFiles(r *http.Request, key string) []*multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	return r.MultipartForm.File[key]
}
