// Package uploader is the output boundary: it ships a finished
// artifact to the host endpoint or saves a local copy.
package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Client posts finished videos to the host application.
type Client struct {
	HTTP     *http.Client
	Endpoint string
	Token    string
}

func New(endpoint, token string) *Client {
	return &Client{
		HTTP:     &http.Client{Timeout: 5 * time.Minute},
		Endpoint: endpoint,
		Token:    token,
	}
}

type response struct {
	Success bool `json:"success"`
	Data    struct {
		URL     string `json:"url"`
		Message string `json:"message"`
	} `json:"data"`
}

// Upload posts the video as multipart form data and returns the URL
// the host stored it under. The local file is never removed, so a
// failed upload can be retried or downloaded instead.
func (c *Client) Upload(ctx context.Context, path string, postID int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("action", "btv_upload_video")
	if c.Token != "" {
		mw.WriteField("nonce", c.Token)
	}
	mw.WriteField("post_id", fmt.Sprintf("%d", postID))

	fw, err := mw.CreateFormFile("video", fmt.Sprintf("blog-video-%d.mp4", postID))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return "", fmt.Errorf("failed to read artifact: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upload rejected: status %d", resp.StatusCode)
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", fmt.Errorf("malformed upload response: %w", err)
	}
	if !r.Success {
		msg := r.Data.Message
		if msg == "" {
			msg = "no reason given"
		}
		return "", fmt.Errorf("upload refused by host: %s", msg)
	}
	return r.Data.URL, nil
}

// Download copies the artifact into dir under its canonical name.
func Download(path string, postID int, dir string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	dest := filepath.Join(dir, fmt.Sprintf("blog-video-%d.mp4", postID))
	out, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return "", err
	}
	return dest, out.Close()
}
