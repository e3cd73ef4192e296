// Package media uploads compressed images to the external media host.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// ErrUpload means the upload failed; the caller may retry without corrupting
// the in-progress form.
var ErrUpload = errors.New("media upload failed")

// Uploader posts image blobs to the media host and returns their public URL.
type Uploader struct {
	uploadURL string
	client    *http.Client
}

// NewUploader binds the uploader to the host's upload endpoint.
func NewUploader(uploadURL string) *Uploader {
	return &Uploader{
		uploadURL: uploadURL,
		client:    &http.Client{Timeout: 60 * time.Second},
	}
}

// Upload sends the blob and returns a publicly fetchable URL.
func (u *Uploader) Upload(ctx context.Context, filename string, blob io.Reader) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	if _, err := io.Copy(part, blob); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.uploadURL, &body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrUpload, resp.StatusCode)
	}

	var out struct {
		SecureURL string `json:"secure_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrUpload, err)
	}
	if out.SecureURL == "" {
		return "", fmt.Errorf("%w: response missing secure_url", ErrUpload)
	}
	return out.SecureURL, nil
}
