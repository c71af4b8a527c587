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
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// maxArchiveDepth bounds how many archives may enclose a nested one.
	maxArchiveDepth = 4
	// maxArchiveMemberSize caps members when no file size limit is set.
	maxArchiveMemberSize = 256 << 20
)

// ZipBackend handles ZIP files by converting every member it can and
// grafting each result under its own group.
type ZipBackend struct {
	c *DocumentConverter
}

// NewZipBackend creates a new ZipBackend.
func NewZipBackend(c *DocumentConverter) *ZipBackend {
	return &ZipBackend{c: c}
}

func (b *ZipBackend) Accepts(info StreamInfo) bool {
	return acceptsAny(info, []string{".zip"}, []string{"application/zip", "application/x-zip"})
}

func (b *ZipBackend) Convert(reader io.ReadSeeker, info StreamInfo) (*Document, error) {
	if info.archiveDepth >= maxArchiveDepth {
		return nil, fmt.Errorf("archive nested more than %d levels deep", maxArchiveDepth)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read ZIP: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open ZIP: %w", err)
	}

	limit := b.c.maxFileSize
	if limit <= 0 {
		limit = maxArchiveMemberSize
	}

	doc := NewDocument(info.stem())
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !b.selected(f.Name) {
			continue
		}
		if f.UncompressedSize64 > uint64(limit) {
			b.c.logger.Debug("skipping archive member", "member", f.Name, "error", ErrFileTooLarge)
			continue
		}

		member, err := readZipMember(f)
		if err != nil {
			b.c.logger.Debug("skipping archive member", "member", f.Name, "error", err)
			continue
		}
		sub, err := b.c.convertBytes(member, StreamInfo{
			Extension:    strings.ToLower(path.Ext(f.Name)),
			Filename:     path.Base(f.Name),
			archiveDepth: info.archiveDepth + 1,
		})
		if err != nil {
			b.c.logger.Debug("skipping archive member", "member", f.Name, "error", err)
			continue
		}

		g := doc.AddGroup(GroupSection, f.Name, nil)
		doc.Graft(sub, g)
	}
	return doc, nil
}

// selected applies the include and exclude patterns to a member path.
func (b *ZipBackend) selected(name string) bool {
	for _, pattern := range b.c.archiveExclude {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return false
		}
	}
	if len(b.c.archiveInclude) == 0 {
		return true
	}
	for _, pattern := range b.c.archiveInclude {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

func readZipMember(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
