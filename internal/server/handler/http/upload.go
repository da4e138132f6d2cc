package http

import (
	"net/http"

	"github.com/atinyakov/TwoHearts/internal/service"
)

// maxUploadSize bounds multipart image uploads.
const maxUploadSize = 10 << 20

// readUpload parses a multipart form and returns its "file" part. The caller
// must invoke the returned close func.
func readUpload(w http.ResponseWriter, r *http.Request) (service.Upload, func(), bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid multipart form")
		return service.Upload{}, nil, false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "file is required")
		return service.Upload{}, nil, false
	}
	up := service.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}
	return up, func() { _ = file.Close() }, true
}
