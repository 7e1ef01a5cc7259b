// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/pdiddy/doc2md/internal/convert"
	"github.com/pdiddy/doc2md/internal/pipeline"
	"github.com/pdiddy/doc2md/internal/sizing"
	"github.com/pdiddy/doc2md/pkg/types"
)

// fileReport is one entry of the /convert response: the batch disposition
// plus a size report when the document's result is in the ledger.
type fileReport struct {
	pipeline.FileResult
	Report *types.SizeReport `json:"report,omitempty"`
}

type convertResponse struct {
	Files     []fileReport `json:"files"`
	Converted int          `json:"converted"`
	Skipped   int          `json:"skipped"`
	Failed    int          `json:"failed"`
}

type resultEntry struct {
	Name   string                 `json:"name"`
	Status types.ConversionStatus `json:"status"`
	Report types.SizeReport       `json:"report"`
}

// engineResponse is the engine contract body: the converted text of a
// single document.
type engineResponse struct {
	TextContent string `json:"text_content"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) convert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "")
		return
	}

	defer r.Body.Close()
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "unable to parse multipart form")
		return
	}

	docs, err := formDocuments(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Progress lines are a CLI affordance; over HTTP the per-file
	// dispositions carry the same information.
	files, batch, _ := s.runner.Process(r.Context(), docs, io.Discard)

	resp := convertResponse{
		Files:     make([]fileReport, 0, len(files)),
		Converted: batch.Converted,
		Skipped:   batch.Skipped,
		Failed:    batch.Failed,
	}
	for _, f := range files {
		fr := fileReport{FileResult: f}
		if res, ok := s.ledger.Get(f.Name); ok {
			report := sizing.Report(res)
			fr.Report = &report
		}
		resp.Files = append(resp.Files, fr)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) results(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "")
		return
	}

	list := s.ledger.List()
	entries := make([]resultEntry, 0, len(list))
	for _, res := range list {
		entries = append(entries, resultEntry{
			Name:   res.Name,
			Status: res.Status,
			Report: sizing.Report(res),
		})
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "")
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/download/")
	ext := path.Ext(name)
	if ext != ".md" && ext != ".txt" {
		writeError(w, http.StatusNotFound, "downloads are served as .md or .txt")
		return
	}
	stem := strings.TrimSuffix(name, ext)

	res, ok := s.lookupByBase(stem)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no converted document named %s", stem))
		return
	}

	contentType := "text/markdown; charset=utf-8"
	if ext == ".txt" {
		contentType = "text/plain; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+stem+ext+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, res.Text); err != nil {
		slog.Error("download: send file",
			slog.String("name", res.Name),
			slog.String("error", err.Error()),
		)
	}
}

// engineConvert implements the engine contract: one file part in, the
// converted text out. A remote doc2md targets this endpoint.
func (s *Server) engineConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "")
		return
	}

	defer r.Body.Close()
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "unable to parse multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "field `file` is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading upload: "+err.Error())
		return
	}

	doc := types.NewInputDocument(filepath.Base(header.Filename), data)
	outcome := convert.Run(r.Context(), s.engine, doc)
	if !outcome.Success() {
		// An empty result is the document's fault, an engine error is ours.
		status := http.StatusBadGateway
		if outcome.Reason == convert.EmptyResultMessage {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, outcome.Reason)
		return
	}
	writeJSON(w, http.StatusOK, engineResponse{TextContent: outcome.Text})
}

// lookupByBase finds the ledger entry whose base name matches stem.
func (s *Server) lookupByBase(stem string) (types.ConversionResult, bool) {
	for _, res := range s.ledger.List() {
		if res.BaseName() == stem {
			return res, true
		}
	}
	return types.ConversionResult{}, false
}

// formDocuments collects every `file` part of a parsed multipart form, in
// upload order. Filenames are reduced to their basenames.
func formDocuments(r *http.Request) ([]types.InputDocument, error) {
	if r.MultipartForm == nil {
		return nil, errors.New("field `file` is required")
	}
	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		return nil, errors.New("field `file` is required")
	}

	docs := make([]types.InputDocument, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", fh.Filename, err)
		}
		docs = append(docs, types.NewInputDocument(filepath.Base(fh.Filename), data))
	}
	return docs, nil
}

func writeError(w http.ResponseWriter, status int, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("writeJSON", slog.String("error", err.Error()))
	}
}
