package forms

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/moralknight/outreach-server/internal/models"
)

const (
	// MaxAttachmentSize is the per-file ceiling for report attachments.
	MaxAttachmentSize = 3 << 20 // 3 MiB

	// MaxRequestSize bounds the whole request body, attachment included.
	MaxRequestSize = 10 << 20 // 10 MiB
)

// ErrAttachmentTooLarge is returned when a file exceeds MaxAttachmentSize.
// The client enforces the same ceiling before upload, but the server never
// trusts the client-side filter.
var ErrAttachmentTooLarge = errors.New("attachment exceeds size limit")

// ErrAttachmentUnreadable is returned when the file cannot be read or
// decoded. The rest of the form's field data is unaffected.
var ErrAttachmentUnreadable = errors.New("could not process the attached file")

// CheckAttachment enforces the size ceiling on an already-decoded
// attachment. A nil attachment is fine.
func CheckAttachment(a *models.Attachment) error {
	if a == nil {
		return nil
	}
	if len(a.Data) == 0 {
		return ErrAttachmentUnreadable
	}
	if len(a.Data) > MaxAttachmentSize {
		return fmt.Errorf("%w (%d bytes, max %d)", ErrAttachmentTooLarge, len(a.Data), MaxAttachmentSize)
	}
	return nil
}

// DecodeBase64Attachment reconstructs an attachment from the JSON transport
// shape, where the browser encodes the file as a base64 string (with or
// without a data: URL prefix).
func DecodeBase64Attachment(encoded, filename, contentType string) (*models.Attachment, error) {
	if encoded == "" {
		return nil, nil
	}
	// Strip a "data:image/png;base64," style prefix if present.
	if idx := strings.Index(encoded, ";base64,"); idx >= 0 {
		if contentType == "" {
			contentType = strings.TrimPrefix(encoded[:idx], "data:")
		}
		encoded = encoded[idx+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAttachmentUnreadable, err)
	}
	a := &models.Attachment{
		Filename:    filename,
		ContentType: contentType,
		Data:        data,
	}
	if a.Filename == "" {
		a.Filename = "bijlage"
	}
	if a.ContentType == "" {
		a.ContentType = "application/octet-stream"
	}
	if err := CheckAttachment(a); err != nil {
		return nil, err
	}
	return a, nil
}

// ReadMultipartAttachment drains a multipart file part into an attachment,
// preserving the original filename and MIME type. Reading stops one byte
// past the ceiling so an oversized upload fails without buffering all of it.
func ReadMultipartAttachment(file multipart.File, header *multipart.FileHeader) (*models.Attachment, error) {
	if header == nil {
		return nil, nil
	}
	data, err := io.ReadAll(io.LimitReader(file, MaxAttachmentSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAttachmentUnreadable, err)
	}
	if len(data) > MaxAttachmentSize {
		return nil, fmt.Errorf("%w (max %d bytes)", ErrAttachmentTooLarge, MaxAttachmentSize)
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &models.Attachment{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}
