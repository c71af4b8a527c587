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

package docling

import (
	"io"
	"path/filepath"
	"strings"
)

// StreamInfo holds metadata about the input being converted.
type StreamInfo struct {
	MIMEType  string
	Extension string
	Charset   string
	Filename  string
	LocalPath string
	URL       string

	// archiveDepth counts the archives enclosing this stream.
	archiveDepth int
}

// stem returns the file name without directory and extension, or "file" when
// the stream has no name.
func (i StreamInfo) stem() string {
	name := i.Filename
	if name == "" && i.LocalPath != "" {
		name = filepath.Base(i.LocalPath)
	}
	if name == "" {
		return "file"
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Backend is the interface every input format implements.
type Backend interface {
	// Accepts returns true if this backend can handle the given input.
	// It MUST NOT read from the stream.
	Accepts(info StreamInfo) bool

	// Convert parses the stream into a Document.
	Convert(reader io.ReadSeeker, info StreamInfo) (*Document, error)
}

// acceptsAny reports whether info matches one of the extensions or MIME prefixes.
func acceptsAny(info StreamInfo, exts []string, mimePrefixes []string) bool {
	ext := strings.ToLower(info.Extension)
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	mime := strings.ToLower(info.MIMEType)
	for _, p := range mimePrefixes {
		if strings.HasPrefix(mime, p) {
			return true
		}
	}
	return false
}
