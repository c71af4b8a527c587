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
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// defaultImageDPI is reported for embedded images that carry no resolution.
const defaultImageDPI = 72

// imageFromBytes describes embedded image data. The data URI is only kept when
// keepURI is set since it can dwarf the rest of the document.
func imageFromBytes(data []byte, keepURI bool) *ImageRef {
	if len(data) == 0 {
		return nil
	}
	mime := mimetype.Detect(data).String()
	ref := &ImageRef{MIMEType: mime, DPI: defaultImageDPI}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		ref.Size = Size{Width: float64(cfg.Width), Height: float64(cfg.Height)}
	}
	if keepURI {
		ref.URI = "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
	}
	return ref
}

// imageFromSource resolves an <img src> or Markdown image destination. Only
// data URIs carry pixels; remote references yield nil.
func imageFromSource(src string, keepURI bool) *ImageRef {
	if !strings.HasPrefix(src, "data:") {
		return nil
	}
	meta, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !ok {
		return nil
	}
	var data []byte
	if strings.HasSuffix(meta, ";base64") {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil
		}
		data = []byte(unescaped)
	}
	ref := imageFromBytes(data, false)
	if ref != nil && keepURI {
		ref.URI = src
	}
	return ref
}
