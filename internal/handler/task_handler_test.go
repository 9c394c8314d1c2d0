package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/tutorhub/tutoring-api/pkg/errors"
)

func multipartContext(t *testing.T, contentType string, body *bytes.Buffer) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/tasks", body)
	c.Request.Header.Set("Content-Type", contentType)
	return c
}

func TestOpenUploadMissingFileIsNoAttachment(t *testing.T) {
	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	require.NoError(t, form.WriteField("title", "Homework"))
	require.NoError(t, form.Close())

	h := NewTaskHandler(nil, 1<<20)
	c := multipartContext(t, form.FormDataContentType(), body)

	name, reader, cleanup, err := h.openUpload(c, "attachment")
	defer cleanup()

	require.NoError(t, err)
	assert.Empty(t, name)
	assert.Nil(t, reader)
}

func TestOpenUploadRejectsMalformedBody(t *testing.T) {
	body := bytes.NewBufferString("this is not a multipart payload")

	h := NewTaskHandler(nil, 1<<20)
	c := multipartContext(t, "multipart/form-data; boundary=xyz", body)

	_, _, cleanup, err := h.openUpload(c, "attachment")
	defer cleanup()

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestOpenUploadRejectsOversizedAttachment(t *testing.T) {
	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	part, err := form.CreateFormFile("attachment", "essay.pdf")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("a"), 4096))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	h := NewTaskHandler(nil, 1024)
	c := multipartContext(t, form.FormDataContentType(), body)
	h.limitBody(c)

	_, _, cleanup, err := h.openUpload(c, "attachment")
	defer cleanup()

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "size limit")
}

func TestOpenUploadReadsAttachment(t *testing.T) {
	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	part, err := form.CreateFormFile("attachment", "essay.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("content"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	h := NewTaskHandler(nil, 1<<20)
	c := multipartContext(t, form.FormDataContentType(), body)
	h.limitBody(c)

	name, reader, cleanup, err := h.openUpload(c, "attachment")
	defer cleanup()

	require.NoError(t, err)
	assert.Equal(t, "essay.pdf", name)
	assert.NotNil(t, reader)
}
