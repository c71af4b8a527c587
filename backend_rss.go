package docling

import (
	"fmt"
	"io"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/mmcdole/gofeed"
)

// RSSBackend handles RSS and Atom feeds. Item bodies are converted from HTML
// to Markdown and parsed by the Markdown backend.
type RSSBackend struct {
	markdown *MarkdownBackend
	html     *converter.Converter
}

// NewRSSBackend creates a new RSSBackend.
func NewRSSBackend(c *DocumentConverter) *RSSBackend {
	return &RSSBackend{
		markdown: NewMarkdownBackend(c),
		html: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(
					commonmark.WithHeadingStyle("atx"),
				),
				table.NewTablePlugin(),
			),
		),
	}
}

func (b *RSSBackend) Accepts(info StreamInfo) bool {
	return acceptsAny(info,
		[]string{".rss", ".atom", ".xml"},
		[]string{"application/rss", "application/atom", "text/xml", "application/xml"})
}

func (b *RSSBackend) Convert(reader io.ReadSeeker, info StreamInfo) (*Document, error) {
	feed, err := gofeed.NewParser().Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	doc := NewDocument(info.stem())
	if feed.Title != "" {
		doc.AddTitle(feed.Title, nil, nil)
	}
	if feed.Description != "" {
		doc.AddText(LabelText, feed.Description, nil, nil)
	}

	for _, item := range feed.Items {
		name := item.Title
		if name == "" {
			name = "item"
		}
		g := doc.AddGroup(GroupSection, name, nil)
		if item.Title != "" {
			doc.AddHeading(item.Title, 1, g, nil)
		}

		var authors []string
		for _, a := range item.Authors {
			if a != nil && a.Name != "" {
				authors = append(authors, a.Name)
			}
		}
		if len(authors) > 0 {
			doc.AddText(LabelText, "By: "+strings.Join(authors, ", "), g, nil)
		}
		if item.Published != "" {
			doc.AddText(LabelText, "Published: "+item.Published, g, nil)
		} else if item.Updated != "" {
			doc.AddText(LabelText, "Updated: "+item.Updated, g, nil)
		}
		if item.Link != "" {
			link := doc.AddText(LabelText, item.Link, g, nil)
			link.Hyperlink = item.Link
		}

		content := item.Content
		if content == "" {
			content = item.Description
		}
		if strings.TrimSpace(content) == "" {
			continue
		}
		if strings.Contains(content, "<") && strings.Contains(content, ">") {
			md, err := b.html.ConvertString(content)
			if err == nil {
				content = md
			}
		}
		b.markdown.appendTo(doc, g, []byte(content))
	}
	return doc, nil
}
