package validation

import (
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
)

func header(name string, size int64) *multipart.FileHeader {
	return &multipart.FileHeader{Filename: name, Size: size}
}

func TestValidateImage(t *testing.T) {
	assert.NoError(t, ValidateImage(header("thumb.jpg", 1024)))
	assert.NoError(t, ValidateImage(header("THUMB.PNG", 1024)))
	assert.NoError(t, ValidateImage(header("thumb.webp", 1024)))
}

func TestValidateImageRejections(t *testing.T) {
	assert.ErrorIs(t, ValidateImage(nil), ErrFileRequired)
	assert.ErrorIs(t, ValidateImage(header("thumb.gif", 1024)), ErrFileType)
	assert.ErrorIs(t, ValidateImage(header("thumb.jpg", MaxImageSize+1)), ErrFileSize)
}
