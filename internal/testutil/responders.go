package testutil

import (
	"io"
	"net/http"

	"github.com/ilkin0/bomprobe/internal/api/types"
	"github.com/ilkin0/bomprobe/internal/utils"
)

// EchoResponse reflects a received part back to the client.
type EchoResponse struct {
	Field    string `json:"field"`
	Filename string `json:"filename"`
	Size     int    `json:"size"`
	SHA256   string `json:"sha256"`
	Content  []byte `json:"content"`
}

func RespondJSON(status int, v any) Responder {
	return func(w http.ResponseWriter, _ *http.Request, _ Upload) {
		utils.WriteJSON(w, status, v)
	}
}

func RespondRaw(status int, contentType, body string) Responder {
	return func(w http.ResponseWriter, _ *http.Request, _ Upload) {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		io.WriteString(w, body)
	}
}

func RespondReport(report types.ProjectReport) Responder {
	return RespondJSON(http.StatusOK, report)
}

func RespondEcho() Responder {
	return func(w http.ResponseWriter, _ *http.Request, up Upload) {
		utils.Ok(w, EchoResponse{
			Field:    up.Field,
			Filename: up.Filename,
			Size:     len(up.Data),
			SHA256:   up.Hash,
			Content:  up.Data,
		})
	}
}

func readAllAndClose(rc io.ReadCloser) ([]byte, error) {
	defer rc.Close()
	return io.ReadAll(rc)
}
