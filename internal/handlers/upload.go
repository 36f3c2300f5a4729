package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/rumor-ml/commons.systems/kakeibo/internal/textenc"
)

// uploadField is the multipart form field carrying the statement file
const uploadField = "file"

var errNoFile = errors.New("no file uploaded")

// readUpload returns the decoded statement text from a multipart "file" field
// or, for any other content type, the raw request body.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (string, textenc.Encoding, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	var raw []byte
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
			return "", "", fmt.Errorf("failed to parse form: %w", err)
		}
		f, _, err := r.FormFile(uploadField)
		if err != nil {
			return "", "", errNoFile
		}
		defer f.Close()
		raw, err = io.ReadAll(f)
		if err != nil {
			return "", "", fmt.Errorf("failed to read file: %w", err)
		}
	} else {
		var err error
		raw, err = io.ReadAll(r.Body)
		if err != nil {
			return "", "", fmt.Errorf("failed to read body: %w", err)
		}
	}

	text, enc := textenc.Decode(raw)
	return text, enc, nil
}

// uploadStatus maps a readUpload error to an HTTP status
func uploadStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
