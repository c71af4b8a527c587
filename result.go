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

import "time"

// ConversionStatus is the outcome of a conversion.
type ConversionStatus string

const (
	StatusSuccess ConversionStatus = "success"
)

// InputDocument describes the converted input.
type InputDocument struct {
	Filename string
	// Format is the name of the backend that produced the document.
	Format   string
	MIMEType string
	FileSize int64
	// DocumentHash is the hex SHA-256 of the input bytes.
	DocumentHash string
}

// Timings records how long each conversion phase took.
type Timings struct {
	Detect  time.Duration
	Convert time.Duration
}

// Total is the wall time of the whole conversion.
func (t Timings) Total() time.Duration {
	return t.Detect + t.Convert
}

// ConversionResult is returned by every Convert call.
type ConversionResult struct {
	Input    InputDocument
	Status   ConversionStatus
	Document *Document
	Timings  Timings
}
