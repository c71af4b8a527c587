package docling

import "log/slog"

// Option configures a DocumentConverter.
type Option func(*DocumentConverter)

// PdfOptions tunes the PDF layout heuristics.
type PdfOptions struct {
	// HeaderMargin is the fraction of the page height, at the top and at the
	// bottom, where short blocks are treated as page headers and footers.
	HeaderMargin float64
	// MaxPages limits the number of pages converted. Zero converts all pages.
	MaxPages int
}

// DefaultPdfOptions returns the options used when none are given.
func DefaultPdfOptions() PdfOptions {
	return PdfOptions{HeaderMargin: 0.07}
}

// WithKeepDataURIs configures whether pictures keep their full data URI
// (default: false, which leaves the image uri empty).
func WithKeepDataURIs(keep bool) Option {
	return func(c *DocumentConverter) {
		c.keepDataURIs = keep
	}
}

// WithLogger sets the logger used for debug events. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *DocumentConverter) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithPdfOptions overrides the PDF layout settings.
func WithPdfOptions(o PdfOptions) Option {
	return func(c *DocumentConverter) {
		c.pdf = o
	}
}

// WithArchiveFilter restricts which ZIP members are converted. Patterns use
// doublestar syntax ("**/*.md"). An empty include list accepts every member.
func WithArchiveFilter(include, exclude []string) Option {
	return func(c *DocumentConverter) {
		c.archiveInclude = include
		c.archiveExclude = exclude
	}
}

// WithMaxFileSize rejects inputs larger than n bytes with ErrFileTooLarge.
// Zero disables the check.
func WithMaxFileSize(n int64) Option {
	return func(c *DocumentConverter) {
		c.maxFileSize = n
	}
}
