package docling

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/nicholasgasior/docling-go/internal/ooxml"
)

// EpubBackend handles EPUB files: metadata first, then every spine document
// in reading order as a chapter group.
type EpubBackend struct {
	html *HTMLBackend
}

// NewEpubBackend creates a new EpubBackend.
func NewEpubBackend(c *DocumentConverter) *EpubBackend {
	return &EpubBackend{html: NewHTMLBackend(c)}
}

func (b *EpubBackend) Accepts(info StreamInfo) bool {
	return acceptsAny(info, []string{".epub"}, []string{"application/epub", "application/x-epub"})
}

func (b *EpubBackend) Convert(reader io.ReadSeeker, info StreamInfo) (*Document, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read EPUB: %w", err)
	}
	pkg, err := ooxml.Open(data)
	if err != nil {
		return nil, fmt.Errorf("open EPUB: %w", err)
	}

	opfPath, err := findOPFPath(pkg)
	if err != nil {
		return nil, fmt.Errorf("find OPF: %w", err)
	}
	opf, err := pkg.ReadNode(opfPath)
	if err != nil {
		return nil, fmt.Errorf("parse OPF: %w", err)
	}

	doc := NewDocument(info.stem())
	if meta := opf.Child("metadata"); meta != nil {
		epubMetadata(doc, meta)
	}

	manifest := map[string]*ooxml.Node{}
	if m := opf.Child("manifest"); m != nil {
		for _, item := range m.ChildrenNamed("item") {
			manifest[item.Attr("id")] = item
		}
	}
	spine := opf.Child("spine")
	if spine == nil {
		return doc, nil
	}
	for _, ref := range spine.ChildrenNamed("itemref") {
		item, ok := manifest[ref.Attr("idref")]
		if !ok {
			continue
		}
		href := item.Attr("href")
		if !isHTMLMember(href, item.Attr("media-type")) {
			continue
		}
		content, err := pkg.Read(ooxml.ResolveTarget(opfPath, href))
		if err != nil {
			continue
		}
		g := doc.AddGroup(GroupChapter, href, nil)
		if err := b.html.appendTo(doc, g, decodeHTML(content, "")); err != nil {
			return nil, fmt.Errorf("chapter %s: %w", href, err)
		}
	}
	return doc, nil
}

// findOPFPath reads the package document location from META-INF/container.xml.
func findOPFPath(pkg *ooxml.Package) (string, error) {
	container, err := pkg.ReadNode("META-INF/container.xml")
	if err != nil {
		return "", err
	}
	if rf := container.Find("rootfile"); rf != nil && rf.Attr("full-path") != "" {
		return rf.Attr("full-path"), nil
	}
	return "", fmt.Errorf("rootfile not found in container.xml")
}

var epubMetadataFields = []struct {
	local string
	label string
}{
	{"creator", "Author"},
	{"publisher", "Publisher"},
	{"date", "Date"},
	{"language", "Language"},
	{"description", "Description"},
}

func epubMetadata(doc *Document, meta *ooxml.Node) {
	if t := meta.Child("title"); t != nil && strings.TrimSpace(t.Text()) != "" {
		doc.AddTitle(t.Text(), nil, nil)
	}
	for _, f := range epubMetadataFields {
		var values []string
		for _, n := range meta.ChildrenNamed(f.local) {
			if v := strings.TrimSpace(n.Text()); v != "" {
				values = append(values, v)
			}
		}
		if len(values) > 0 {
			doc.AddText(LabelText, f.label+": "+strings.Join(values, ", "), nil, nil)
		}
	}
}

func isHTMLMember(href, mediaType string) bool {
	switch strings.ToLower(path.Ext(href)) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return strings.Contains(mediaType, "html")
}
