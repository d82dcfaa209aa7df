package forms

import (
	"bytes"
	"encoding/base64"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/moralknight/outreach-server/internal/models"
)

func TestCheckAttachment(t *testing.T) {
	require.NoError(t, CheckAttachment(nil))

	ok := &models.Attachment{Filename: "scan.pdf", ContentType: "application/pdf", Data: make([]byte, 1024)}
	require.NoError(t, CheckAttachment(ok))

	atLimit := &models.Attachment{Filename: "a.png", ContentType: "image/png", Data: make([]byte, MaxAttachmentSize)}
	require.NoError(t, CheckAttachment(atLimit))

	over := &models.Attachment{Filename: "big.pdf", ContentType: "application/pdf", Data: make([]byte, MaxAttachmentSize+1)}
	err := CheckAttachment(over)
	require.ErrorIs(t, err, ErrAttachmentTooLarge)

	empty := &models.Attachment{Filename: "empty.pdf"}
	require.ErrorIs(t, CheckAttachment(empty), ErrAttachmentUnreadable)
}

func TestDecodeBase64Attachment(t *testing.T) {
	raw := []byte("fake png bytes")
	encoded := base64.StdEncoding.EncodeToString(raw)

	att, err := DecodeBase64Attachment(encoded, "shot.png", "image/png")
	require.NoError(t, err)
	require.Equal(t, "shot.png", att.Filename)
	require.Equal(t, "image/png", att.ContentType)
	require.Equal(t, raw, att.Data)

	// data: URL prefix carries the content type when none was given.
	att, err = DecodeBase64Attachment("data:image/png;base64,"+encoded, "shot.png", "")
	require.NoError(t, err)
	require.Equal(t, "image/png", att.ContentType)
	require.Equal(t, raw, att.Data)

	// Empty input means no attachment, not an error.
	att, err = DecodeBase64Attachment("", "", "")
	require.NoError(t, err)
	require.Nil(t, att)

	_, err = DecodeBase64Attachment("!!! not base64 !!!", "x.pdf", "application/pdf")
	require.ErrorIs(t, err, ErrAttachmentUnreadable)

	over := base64.StdEncoding.EncodeToString(make([]byte, MaxAttachmentSize+1))
	_, err = DecodeBase64Attachment(over, "big.pdf", "application/pdf")
	require.ErrorIs(t, err, ErrAttachmentTooLarge)
}

func buildMultipart(t *testing.T, filename, contentType string, data []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="file"; filename="` + filename + `"`},
		"Content-Type":        {contentType},
	})
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(MaxRequestSize))

	file, header, err := req.FormFile("file")
	require.NoError(t, err)
	return file, header
}

func TestReadMultipartAttachment(t *testing.T) {
	data := []byte("%PDF-1.4 fake document")
	file, header := buildMultipart(t, "melding.pdf", "application/pdf", data)
	defer file.Close()

	att, err := ReadMultipartAttachment(file, header)
	require.NoError(t, err)
	require.Equal(t, "melding.pdf", att.Filename)
	require.Equal(t, "application/pdf", att.ContentType)
	require.Equal(t, data, att.Data)
}

func TestReadMultipartAttachment_TooLarge(t *testing.T) {
	file, header := buildMultipart(t, "big.bin", "application/octet-stream", make([]byte, MaxAttachmentSize+1))
	defer file.Close()

	_, err := ReadMultipartAttachment(file, header)
	require.ErrorIs(t, err, ErrAttachmentTooLarge)
}
