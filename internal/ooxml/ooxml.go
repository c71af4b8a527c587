// Package ooxml reads ZIP-based document packages (DOCX, PPTX, EPUB): part
// lookup, relationship files and a generic XML element tree.
package ooxml

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
)

// Common OOXML namespaces.
const (
	NSRelationships = "http://schemas.openxmlformats.org/package/2006/relationships"
	NSRelDoc        = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

	NSWordprocessingML = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	NSDrawingML        = "http://schemas.openxmlformats.org/drawingml/2006/main"
	NSOMML             = "http://schemas.openxmlformats.org/officeDocument/2006/math"
	NSPresentationML   = "http://schemas.openxmlformats.org/presentationml/2006/main"
)

// ErrPartNotFound is returned when a package has no part with the requested name.
var ErrPartNotFound = errors.New("part not found")

// Package is an opened ZIP package.
type Package struct {
	zr    *zip.Reader
	parts map[string]*zip.File
}

// Open reads a package from memory.
func Open(data []byte) (*Package, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open ZIP: %w", err)
	}
	p := &Package{zr: zr, parts: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		p.parts[f.Name] = f
	}
	return p, nil
}

// Has reports whether the package contains the named part.
func (p *Package) Has(name string) bool {
	_, ok := p.parts[name]
	return ok
}

// Names returns the part names matching prefix and suffix, sorted.
func (p *Package) Names(prefix, suffix string) []string {
	var names []string
	for name := range p.parts {
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, suffix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Read returns the content of a part.
func (p *Package) Read(name string) ([]byte, error) {
	f, ok := p.parts[strings.TrimPrefix(name, "/")]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrPartNotFound)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// ReadNode parses a part into an element tree.
func (p *Package) ReadNode(name string) (*Node, error) {
	data, err := p.Read(name)
	if err != nil {
		return nil, err
	}
	return ParseNode(data)
}

// Relationship represents an OOXML relationship.
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

// External reports whether the target lies outside the package (hyperlinks).
func (r Relationship) External() bool {
	return r.TargetMode == "External"
}

// Relationships is the root element for .rels files.
type Relationships struct {
	XMLName       xml.Name       `xml:"Relationships"`
	Relationships []Relationship `xml:"Relationship"`
}

// Relationships returns the relationships of a part keyed by ID. A part
// without a .rels file has none.
func (p *Package) Relationships(part string) (map[string]Relationship, error) {
	data, err := p.Read(RelsPathFor(part))
	if errors.Is(err, ErrPartNotFound) {
		return map[string]Relationship{}, nil
	}
	if err != nil {
		return nil, err
	}
	var rels Relationships
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil, fmt.Errorf("decode relationships: %w", err)
	}
	result := make(map[string]Relationship, len(rels.Relationships))
	for _, rel := range rels.Relationships {
		result[rel.ID] = rel
	}
	return result, nil
}

// RelsPathFor returns the .rels path for a given file in the ZIP.
func RelsPathFor(filePath string) string {
	dir := path.Dir(filePath)
	base := path.Base(filePath)
	if dir == "." {
		return "_rels/" + base + ".rels"
	}
	return dir + "/_rels/" + base + ".rels"
}

// ResolveTarget resolves a relative target path against a base path.
func ResolveTarget(basePath, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join(path.Dir(basePath), target)
}

// Node is a generic XML element.
type Node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []Node     `xml:",any"`
	Content  string     `xml:",chardata"`
}

// ParseNode parses an XML document into its root element.
func ParseNode(data []byte) (*Node, error) {
	var root Node
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse XML: %w", err)
	}
	return &root, nil
}

// Local is the element name without namespace.
func (n *Node) Local() string {
	return n.XMLName.Local
}

// Attr returns the value of the attribute with the given local name.
func (n *Node) Attr(local string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// Child returns the first direct child with the given local name.
func (n *Node) Child(local string) *Node {
	for i := range n.Children {
		if n.Children[i].XMLName.Local == local {
			return &n.Children[i]
		}
	}
	return nil
}

// Path follows a chain of direct children, returning nil when one is missing.
func (n *Node) Path(locals ...string) *Node {
	cur := n
	for _, l := range locals {
		if cur = cur.Child(l); cur == nil {
			return nil
		}
	}
	return cur
}

// ChildrenNamed returns all direct children with the given local name.
func (n *Node) ChildrenNamed(local string) []*Node {
	var result []*Node
	for i := range n.Children {
		if n.Children[i].XMLName.Local == local {
			result = append(result, &n.Children[i])
		}
	}
	return result
}

// Find returns the first descendant with the given local name.
func (n *Node) Find(local string) *Node {
	for i := range n.Children {
		if n.Children[i].XMLName.Local == local {
			return &n.Children[i]
		}
		if found := n.Children[i].Find(local); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns all descendants with the given local name in document order.
func (n *Node) FindAll(local string) []*Node {
	var result []*Node
	for i := range n.Children {
		if n.Children[i].XMLName.Local == local {
			result = append(result, &n.Children[i])
		}
		result = append(result, n.Children[i].FindAll(local)...)
	}
	return result
}

// Text concatenates the character data of leaf elements below n. Whitespace
// between child elements is ignored.
func (n *Node) Text() string {
	if len(n.Children) == 0 {
		return n.Content
	}
	var sb strings.Builder
	for i := range n.Children {
		sb.WriteString(n.Children[i].Text())
	}
	return sb.String()
}
