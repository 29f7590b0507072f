package probe

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/ilkin0/bomprobe/internal/crypto"
)

type payload struct {
	body        []byte
	contentType string
	size        int64
	sha256      string
}

// newPayload encodes r as the only part of a multipart/form-data body.
func newPayload(r io.Reader, field, filename string) (*payload, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form part: %w", err)
	}

	digest := crypto.NewDigestReader(r)
	if _, err := io.Copy(part, digest); err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	return &payload{
		body:        buf.Bytes(),
		contentType: mw.FormDataContentType(),
		size:        digest.Size(),
		sha256:      digest.Sum(),
	}, nil
}
