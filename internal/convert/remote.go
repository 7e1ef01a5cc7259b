// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

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
	"strings"

	"github.com/pdiddy/doc2md/internal/httputil"
	"github.com/pdiddy/doc2md/pkg/types"
)

// enginePath is the conversion endpoint on the remote service; doc2md serve
// exposes the same path, so one instance can act as another's engine.
const enginePath = "/engine/convert"

// RemoteEngine converts documents through a remote service speaking the
// engine wire contract: a multipart upload in, JSON {"text_content": ...}
// out.
type RemoteEngine struct {
	client *http.Client
	cfg    types.RemoteConfig
}

// NewRemoteEngine creates an engine backed by the service at cfg.URL. A nil
// client selects http.DefaultClient.
func NewRemoteEngine(client *http.Client, cfg types.RemoteConfig) (*RemoteEngine, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("remote engine requires a service URL")
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &RemoteEngine{client: client, cfg: cfg}, nil
}

// Name implements Engine.
func (r *RemoteEngine) Name() string { return "remote" }

// engineResponse is the service's success payload.
type engineResponse struct {
	TextContent string `json:"text_content"`
}

// Convert uploads the document at path and returns the text the service
// extracted. The original filename rides in the multipart part so the far
// side can key on the extension. 429 and 503 responses are retried with
// backoff; other non-200 statuses fail with the response body as the
// reason.
func (r *RemoteEngine) Convert(ctx context.Context, path string) (string, error) {
	body, contentType, err := multipartFile(path)
	if err != nil {
		return "", err
	}

	url := strings.TrimRight(r.cfg.URL, "/") + enginePath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if r.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, r.client, req, r.cfg.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("calling conversion service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("conversion service returned HTTP %d: %s",
			resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var er engineResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return "", fmt.Errorf("parsing service response: %w", err)
	}

	return er.TextContent, nil
}

// multipartFile assembles a single-part multipart body holding the file at
// path under the form name "file".
func multipartFile(path string) (body []byte, contentType string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading document %s: %w", path, err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, "", fmt.Errorf("building upload: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("building upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("building upload: %w", err)
	}

	return buf.Bytes(), mw.FormDataContentType(), nil
}
