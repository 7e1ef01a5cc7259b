// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/pdiddy/doc2md/internal/convert"
	"github.com/pdiddy/doc2md/pkg/types"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

// stubEngine converts by reading the spooled body: "fail" errors out,
// "empty" yields nothing, "panic" panics, anything else becomes "ok\n".
type stubEngine struct{}

func (stubEngine) Name() string { return "stub" }

func (stubEngine) Convert(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	switch strings.TrimSpace(string(data)) {
	case "fail":
		return "", errors.New("engine exploded")
	case "empty":
		return "", nil
	case "panic":
		panic("conversion blew up")
	}
	return "ok\n", nil
}

func newTestServer(t *testing.T, cfg types.ServeConfig) (*httptest.Server, *Server) {
	t.Helper()
	s := New(cfg, stubEngine{}, nil)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts, s
}

// uploadRequest builds a multipart POST carrying one `file` part per
// name/body pair.
func uploadRequest(t *testing.T, url string, files ...[2]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := mw.CreateFormFile("file", f[0])
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write([]byte(f[1])); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	req, err := http.NewRequest(http.MethodPost, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func doJSON(t *testing.T, req *http.Request, out any) *http.Response {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
	}
	return resp
}

func TestConvertEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, types.ServeConfig{Parallel: 1})

	req := uploadRequest(t, ts.URL+"/convert",
		[2]string{"report.docx", "0123456789"},
		[2]string{"notes.pdf", "fail"},
	)
	var got convertResponse
	resp := doJSON(t, req, &got)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got.Converted != 1 || got.Failed != 1 || got.Skipped != 0 {
		t.Errorf("tally = %+v, want 1 converted and 1 failed", got)
	}
	if len(got.Files) != 2 {
		t.Fatalf("len(Files) = %d, want 2", len(got.Files))
	}

	first := got.Files[0]
	if first.Name != "report.docx" || first.Status != "converted" {
		t.Errorf("Files[0] = %+v, want report.docx converted", first)
	}
	if first.Report == nil {
		t.Fatal("converted file should carry a size report")
	}
	if first.Report.Original != "10.00 B" {
		t.Errorf("Original = %q, want %q", first.Report.Original, "10.00 B")
	}
	if first.Report.Reduction != "70.0% smaller" {
		t.Errorf("Reduction = %q, want %q", first.Report.Reduction, "70.0% smaller")
	}

	second := got.Files[1]
	if second.Status != "failed" || second.Reason != "engine exploded" {
		t.Errorf("Files[1] = %+v, want the engine failure", second)
	}
	if second.Report != nil {
		t.Error("failed file should not carry a size report")
	}
}

func TestConvertDedupAcrossRequests(t *testing.T) {
	ts, _ := newTestServer(t, types.ServeConfig{Parallel: 1})

	var first convertResponse
	doJSON(t, uploadRequest(t, ts.URL+"/convert", [2]string{"report.docx", "0123456789"}), &first)
	if first.Converted != 1 {
		t.Fatalf("first upload: converted = %d, want 1", first.Converted)
	}

	var second convertResponse
	doJSON(t, uploadRequest(t, ts.URL+"/convert", [2]string{"report.docx", "0123456789"}), &second)
	if second.Skipped != 1 || second.Converted != 0 {
		t.Errorf("second upload = %+v, want the name skipped", second)
	}
	if len(second.Files) != 1 || second.Files[0].Report == nil {
		t.Error("a skipped known name should still report its stored sizes")
	}
}

func TestConvertRequiresFilePart(t *testing.T) {
	ts, _ := newTestServer(t, types.ServeConfig{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("note", "no file here"); err != nil {
		t.Fatal(err)
	}
	mw.Close()
	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/convert", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var got errorResponse
	resp := doJSON(t, req, &got)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if !strings.Contains(got.Message, "file") {
		t.Errorf("message = %q, should name the missing field", got.Message)
	}
}

func TestConvertMethodNotAllowed(t *testing.T) {
	ts, _ := newTestServer(t, types.ServeConfig{})

	resp, err := http.Get(ts.URL + "/convert")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

func TestResultsListsSession(t *testing.T) {
	ts, _ := newTestServer(t, types.ServeConfig{Parallel: 1})
	doJSON(t, uploadRequest(t, ts.URL+"/convert", [2]string{"report.docx", "0123456789"}), nil)

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/results", nil)
	var entries []resultEntry
	resp := doJSON(t, req, &entries)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].Name != "report.docx" || entries[0].Status != types.ConversionSuccess {
		t.Errorf("entry = %+v, want the converted document", entries[0])
	}
	if !entries[0].Report.Improvement {
		t.Error("shrinking conversion should count as an improvement")
	}
}

func TestDownload(t *testing.T) {
	ts, _ := newTestServer(t, types.ServeConfig{Parallel: 1})
	doJSON(t, uploadRequest(t, ts.URL+"/convert", [2]string{"report.docx", "0123456789"}), nil)

	tests := []struct {
		path       string
		wantStatus int
		wantType   string
		wantBody   string
	}{
		{"/download/report.md", http.StatusOK, "text/markdown; charset=utf-8", "ok\n"},
		{"/download/report.txt", http.StatusOK, "text/plain; charset=utf-8", "ok\n"},
		{"/download/missing.md", http.StatusNotFound, "", ""},
		{"/download/report.pdf", http.StatusNotFound, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(ts.URL + tt.path)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if ct := resp.Header.Get("Content-Type"); ct != tt.wantType {
				t.Errorf("Content-Type = %q, want %q", ct, tt.wantType)
			}
			body, _ := io.ReadAll(resp.Body)
			if string(body) != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
			if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
				t.Errorf("Content-Disposition = %q, want an attachment", cd)
			}
		})
	}
}

func TestEngineConvertEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, types.ServeConfig{})

	t.Run("success", func(t *testing.T) {
		var got engineResponse
		resp := doJSON(t, uploadRequest(t, ts.URL+"/engine/convert", [2]string{"doc.docx", "0123456789"}), &got)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		if got.TextContent != "ok\n" {
			t.Errorf("text_content = %q, want %q", got.TextContent, "ok\n")
		}
	})

	t.Run("engine failure", func(t *testing.T) {
		var got errorResponse
		resp := doJSON(t, uploadRequest(t, ts.URL+"/engine/convert", [2]string{"doc.docx", "fail"}), &got)
		if resp.StatusCode != http.StatusBadGateway {
			t.Errorf("status = %d, want 502", resp.StatusCode)
		}
		if got.Message != "engine exploded" {
			t.Errorf("message = %q, want the engine's own words", got.Message)
		}
	})

	t.Run("empty result", func(t *testing.T) {
		var got errorResponse
		resp := doJSON(t, uploadRequest(t, ts.URL+"/engine/convert", [2]string{"doc.docx", "empty"}), &got)
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", resp.StatusCode)
		}
		if got.Message != convert.EmptyResultMessage {
			t.Errorf("message = %q, want %q", got.Message, convert.EmptyResultMessage)
		}
	})
}

func TestServeAsRemoteEngine(t *testing.T) {
	ts, _ := newTestServer(t, types.ServeConfig{})

	eng, err := convert.NewRemoteEngine(nil, types.RemoteConfig{URL: ts.URL})
	if err != nil {
		t.Fatalf("NewRemoteEngine: %v", err)
	}

	outcome := convert.Run(context.Background(), eng, types.NewInputDocument("doc.docx", []byte("0123456789")))
	if !outcome.Success() {
		t.Fatalf("outcome = %+v, want success", outcome)
	}
	if outcome.Text != "ok\n" {
		t.Errorf("Text = %q, want %q", outcome.Text, "ok\n")
	}
}

func TestUploadLimit(t *testing.T) {
	ts, _ := newTestServer(t, types.ServeConfig{MaxUploadBytes: 64})

	big := strings.Repeat("x", 4096)
	resp := doJSON(t, uploadRequest(t, ts.URL+"/convert", [2]string{"big.docx", big}), &errorResponse{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for an oversized upload", resp.StatusCode)
	}
}

func TestPanicRecovery(t *testing.T) {
	ts, _ := newTestServer(t, types.ServeConfig{})

	req := uploadRequest(t, ts.URL+"/engine/convert", [2]string{"doc.docx", "panic"})
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 after a handler panic", resp.StatusCode)
	}
}

func TestIndexPage(t *testing.T) {
	ts, _ := newTestServer(t, types.ServeConfig{})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "multipart/form-data") {
		t.Error("index page should carry the upload form")
	}

	missing, err := http.Get(ts.URL + "/bogus")
	if err != nil {
		t.Fatal(err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("unknown path status = %d, want 404", missing.StatusCode)
	}
}
