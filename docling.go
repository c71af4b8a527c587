// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

// Package docling converts documents (PDF, Office, HTML, Markdown, feeds and
// more) into a structured Document that exports as an ordered mapping.
package docling

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

const (
	// PrioritySpecific is for format-specific backends (PDF, DOCX, etc.).
	PrioritySpecific = 0.0
	// PriorityGeneric is for fallback backends (PlainText, HTML, ZIP).
	PriorityGeneric = 10.0
)

type registeredBackend struct {
	backend  Backend
	priority float64
	name     string
}

// DocumentConverter detects the input format and dispatches to a backend.
// It is safe to reuse sequentially; it is not safe for concurrent use.
type DocumentConverter struct {
	backends []registeredBackend

	keepDataURIs   bool
	maxFileSize    int64
	pdf            PdfOptions
	archiveInclude []string
	archiveExclude []string
	logger         *slog.Logger
}

// New creates a DocumentConverter with the given options and every built-in backend.
func New(opts ...Option) *DocumentConverter {
	c := &DocumentConverter{
		pdf:    DefaultPdfOptions(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.enableBuiltins()
	return c
}

// RegisterBackend adds a backend with the given priority.
// Lower priority values are tried first.
func (c *DocumentConverter) RegisterBackend(name string, b Backend, priority float64) {
	c.backends = append(c.backends, registeredBackend{
		backend:  b,
		priority: priority,
		name:     name,
	})
	sort.SliceStable(c.backends, func(i, j int) bool {
		return c.backends[i].priority < c.backends[j].priority
	})
}

// Convert auto-detects the source type (file path or URL) and converts it.
func (c *DocumentConverter) Convert(source string) (*ConversionResult, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return c.ConvertURL(source)
	}
	return c.ConvertFile(source)
}

// ConvertFile converts a local file.
func (c *DocumentConverter) ConvertFile(path string) (*ConversionResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	if c.maxFileSize > 0 {
		st, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("stat file: %w", err)
		}
		if st.Size() > c.maxFileSize {
			return nil, fmt.Errorf("%s: %d bytes exceeds %d: %w", path, st.Size(), c.maxFileSize, ErrFileTooLarge)
		}
	}

	info := StreamInfo{
		Extension: strings.ToLower(filepath.Ext(path)),
		Filename:  filepath.Base(path),
		LocalPath: path,
	}
	return c.ConvertReader(f, info)
}

// ConvertURL fetches a URL and converts the response body.
func (c *DocumentConverter) ConvertURL(url string) (*ConversionResult, error) {
	resp, err := http.Get(url) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch URL: %s", resp.Status)
	}

	body := io.Reader(resp.Body)
	if c.maxFileSize > 0 {
		body = io.LimitReader(resp.Body, c.maxFileSize+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if c.maxFileSize > 0 && int64(len(data)) > c.maxFileSize {
		return nil, fmt.Errorf("%s: exceeds %d bytes: %w", url, c.maxFileSize, ErrFileTooLarge)
	}

	info := StreamInfo{URL: url}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		parts := strings.Split(ct, ";")
		info.MIMEType = strings.TrimSpace(parts[0])
		for _, p := range parts[1:] {
			p = strings.TrimSpace(p)
			if strings.HasPrefix(p, "charset=") {
				info.Charset = strings.Trim(strings.TrimPrefix(p, "charset="), `"'`)
			}
		}
	}

	urlPath := strings.Split(url, "?")[0]
	info.Extension = strings.ToLower(filepath.Ext(urlPath))
	if info.Extension != "" {
		info.Filename = filepath.Base(urlPath)
	}

	return c.ConvertReader(bytes.NewReader(data), info)
}

// ConvertReader converts a stream described by info. A missing MIME type is
// sniffed from the content.
func (c *DocumentConverter) ConvertReader(r io.ReadSeeker, info StreamInfo) (*ConversionResult, error) {
	start := time.Now()

	h := sha256.New()
	size, err := io.Copy(h, r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if c.maxFileSize > 0 && size > c.maxFileSize {
		return nil, fmt.Errorf("input of %d bytes exceeds %d: %w", size, c.maxFileSize, ErrFileTooLarge)
	}
	sum := h.Sum(nil)

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}
	if info.MIMEType == "" {
		info.MIMEType = detectMIMEType(r, info.Extension)
	}

	detected := time.Now()
	doc, format, err := c.dispatch(r, info)
	if err != nil {
		return nil, err
	}

	filename := info.Filename
	if filename == "" {
		filename = info.stem()
	}
	doc.Name = info.stem()
	doc.Origin = &DocumentOrigin{
		MIMEType:   info.MIMEType,
		BinaryHash: binary.BigEndian.Uint64(sum[:8]),
		Filename:   filename,
		URI:        info.URL,
	}

	res := &ConversionResult{
		Input: InputDocument{
			Filename:     filename,
			Format:       format,
			MIMEType:     info.MIMEType,
			FileSize:     size,
			DocumentHash: hex.EncodeToString(sum),
		},
		Status:   StatusSuccess,
		Document: doc,
		Timings: Timings{
			Detect:  detected.Sub(start),
			Convert: time.Since(detected),
		},
	}
	c.logger.Debug("converted document",
		"file", filename,
		"format", format,
		"texts", len(doc.Texts),
		"tables", len(doc.Tables),
		"pictures", len(doc.Pictures),
		"pages", doc.NumPages(),
		"elapsed", res.Timings.Total(),
	)
	return res, nil
}

// convertBytes converts an embedded document (archive member, feed body) and
// returns only its Document.
func (c *DocumentConverter) convertBytes(data []byte, info StreamInfo) (*Document, error) {
	r := bytes.NewReader(data)
	if info.MIMEType == "" {
		info.MIMEType = detectMIMEType(r, info.Extension)
	}
	doc, _, err := c.dispatch(r, info)
	return doc, err
}

// dispatch tries each accepting backend in priority order.
func (c *DocumentConverter) dispatch(r io.ReadSeeker, info StreamInfo) (*Document, string, error) {
	var failedAttempts []FailedConversionAttempt

	for _, rb := range c.backends {
		if !rb.backend.Accepts(info) {
			continue
		}

		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return nil, "", fmt.Errorf("seek: %w", err)
		}

		c.logger.Debug("trying backend", "backend", rb.name, "mime", info.MIMEType, "ext", info.Extension)
		doc, err := rb.backend.Convert(r, info)
		if err != nil {
			c.logger.Debug("backend failed", "backend", rb.name, "error", err)
			failedAttempts = append(failedAttempts, FailedConversionAttempt{
				Backend: rb.name,
				Err:     err,
			})
			continue
		}
		return doc, rb.name, nil
	}

	if len(failedAttempts) > 0 {
		return nil, "", &ConversionError{Attempts: failedAttempts}
	}

	return nil, "", &UnsupportedFormatError{
		Extension: info.Extension,
		MIMEType:  info.MIMEType,
	}
}

// enableBuiltins registers all built-in backends.
func (c *DocumentConverter) enableBuiltins() {
	// Specific format backends (priority 0.0 - tried first)
	c.RegisterBackend("csv", NewCsvBackend(), PrioritySpecific)
	c.RegisterBackend("rss", NewRSSBackend(c), PrioritySpecific)
	c.RegisterBackend("ipynb", NewIpynbBackend(c), PrioritySpecific)
	c.RegisterBackend("docx", NewDocxBackend(c), PrioritySpecific)
	c.RegisterBackend("xlsx", NewXlsxBackend(), PrioritySpecific)
	c.RegisterBackend("xls", NewXlsBackend(), PrioritySpecific)
	c.RegisterBackend("pptx", NewPptxBackend(c), PrioritySpecific)
	c.RegisterBackend("pdf", NewPdfBackend(c.pdf, c.logger), PrioritySpecific)
	c.RegisterBackend("epub", NewEpubBackend(c), PrioritySpecific)
	c.RegisterBackend("markdown", NewMarkdownBackend(c), PrioritySpecific)

	// Generic format backends (priority 10.0 - tried last as fallbacks)
	c.RegisterBackend("html", NewHTMLBackend(c), PriorityGeneric)
	c.RegisterBackend("zip", NewZipBackend(c), PriorityGeneric)
	c.RegisterBackend("plaintext", NewPlainTextBackend(), PriorityGeneric)
}

// detectMIMEType detects the MIME type from content and extension. The
// extension wins for container and text formats the sniffer reports generically.
func detectMIMEType(r io.ReadSeeker, ext string) string {
	byExt := mimeFromExtension(ext)

	mtype, err := mimetype.DetectReader(r)
	r.Seek(0, io.SeekStart)
	if err != nil {
		return byExt
	}
	detected := mtype.String()
	if i := strings.IndexByte(detected, ';'); i >= 0 {
		detected = detected[:i]
	}

	switch {
	case detected == "application/octet-stream":
		return byExt
	case byExt == "application/octet-stream":
		return detected
	case detected == "application/zip", detected == "application/json", strings.HasPrefix(detected, "text/plain"):
		// Office files, EPUB, notebooks and Markdown sniff as their container.
		return byExt
	}
	return detected
}

// mimeFromExtension returns a MIME type for common extensions.
func mimeFromExtension(ext string) string {
	extMap := map[string]string{
		".pdf":      "application/pdf",
		".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		".pptx":     "application/vnd.openxmlformats-officedocument.presentationml.presentation",
		".xlsx":     "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		".xls":      "application/vnd.ms-excel",
		".html":     "text/html",
		".htm":      "text/html",
		".xhtml":    "application/xhtml+xml",
		".csv":      "text/csv",
		".txt":      "text/plain",
		".text":     "text/plain",
		".md":       "text/markdown",
		".markdown": "text/markdown",
		".json":     "application/json",
		".jsonl":    "application/jsonl",
		".xml":      "text/xml",
		".rss":      "application/rss+xml",
		".atom":     "application/atom+xml",
		".epub":     "application/epub+zip",
		".zip":      "application/zip",
		".ipynb":    "application/x-ipynb+json",
	}
	if m, ok := extMap[ext]; ok {
		return m
	}
	return "application/octet-stream"
}
