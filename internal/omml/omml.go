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

// Package omml renders Office Math Markup (the m: namespace of DOCX files) as LaTeX.
package omml

import (
	"strings"

	"github.com/nicholasgasior/docling-go/internal/ooxml"
)

const (
	rowBreak = `\\`
	colSep   = "&"
)

// Latex renders an m:oMathPara or m:oMath element. Equations of a paragraph
// are separated by line breaks.
func Latex(n *ooxml.Node) string {
	if n.Local() != "oMathPara" {
		return strings.TrimSpace(children(n))
	}
	var eqs []string
	for _, m := range n.ChildrenNamed("oMath") {
		if s := strings.TrimSpace(children(m)); s != "" {
			eqs = append(eqs, s)
		}
	}
	return strings.Join(eqs, " "+rowBreak+" ")
}

func children(n *ooxml.Node) string {
	var sb strings.Builder
	for i := range n.Children {
		sb.WriteString(element(&n.Children[i]))
	}
	return sb.String()
}

// part renders the named child, or "" when it is missing.
func part(n *ooxml.Node, local string) string {
	if c := n.Child(local); c != nil {
		return children(c)
	}
	return ""
}

// prop reads the m:val of a property below the element's *Pr child.
func prop(n *ooxml.Node, pr, local string) (string, bool) {
	p := n.Path(pr, local)
	if p == nil {
		return "", false
	}
	return p.Attr("val"), true
}

func element(n *ooxml.Node) string {
	switch n.Local() {
	case "r":
		return run(n)
	case "acc":
		return accent(n)
	case "bar":
		return bar(n)
	case "d":
		return delimiter(n)
	case "f":
		return fraction(n)
	case "func":
		return function(n)
	case "groupChr":
		return groupChar(n)
	case "rad":
		return radical(n)
	case "eqArr":
		return rows(n.ChildrenNamed("e"), `\begin{array}{c}`, `\end{array}`)
	case "m":
		return matrix(n)
	case "nary":
		return nary(n)
	case "limLow":
		return limLow(n)
	case "limUpp":
		return `\overset{` + part(n, "lim") + `}{` + part(n, "e") + `}`
	case "sSub":
		return part(n, "e") + `_{` + part(n, "sub") + `}`
	case "sSup":
		return part(n, "e") + `^{` + part(n, "sup") + `}`
	case "sSubSup":
		return part(n, "e") + `_{` + part(n, "sub") + `}^{` + part(n, "sup") + `}`
	case "sPre":
		return `{}_{` + part(n, "sub") + `}^{` + part(n, "sup") + `}` + part(n, "e")
	case "oMath", "box", "borderBox", "phant", "e", "num", "den", "deg", "sub", "sup", "fName", "lim":
		return children(n)
	}
	return ""
}

func run(n *ooxml.Node) string {
	var sb strings.Builder
	for _, t := range n.ChildrenNamed("t") {
		for _, r := range t.Content {
			switch {
			case symbols[r] != "":
				sb.WriteString(symbols[r])
			case strings.ContainsRune(latexSpecial, r):
				sb.WriteByte('\\')
				sb.WriteRune(r)
			default:
				sb.WriteRune(mathAlphanumeric(r))
			}
		}
	}
	return sb.String()
}

func accent(n *ooxml.Node) string {
	chr, ok := prop(n, "accPr", "chr")
	if !ok {
		chr = "\u0302"
	}
	cmd, ok := accents[chr]
	if !ok {
		cmd = `\hat`
	}
	return cmd + `{` + part(n, "e") + `}`
}

func bar(n *ooxml.Node) string {
	if pos, _ := prop(n, "barPr", "pos"); pos == "bot" {
		return `\underline{` + part(n, "e") + `}`
	}
	return `\overline{` + part(n, "e") + `}`
}

func delimiter(n *ooxml.Node) string {
	beg, ok := prop(n, "dPr", "begChr")
	if !ok {
		beg = "("
	}
	end, ok := prop(n, "dPr", "endChr")
	if !ok {
		end = ")"
	}
	sep, ok := prop(n, "dPr", "sepChr")
	if !ok {
		sep = "|"
	}
	var parts []string
	for _, e := range n.ChildrenNamed("e") {
		parts = append(parts, children(e))
	}
	return `\left` + fence(beg) + strings.Join(parts, sep) + `\right` + fence(end)
}

// fence renders a delimiter character; an empty one is invisible.
func fence(s string) string {
	switch s {
	case "":
		return "."
	case "{", "}":
		return `\` + s
	}
	if cmd, ok := fences[s]; ok {
		return cmd
	}
	return s
}

func fraction(n *ooxml.Node) string {
	num, den := part(n, "num"), part(n, "den")
	typ, _ := prop(n, "fPr", "type")
	switch typ {
	case "skw", "lin":
		return `{` + num + `}/{` + den + `}`
	case "noBar":
		return `\genfrac{}{}{0pt}{}{` + num + `}{` + den + `}`
	}
	return `\frac{` + num + `}{` + den + `}`
}

func function(n *ooxml.Node) string {
	name := strings.TrimSpace(part(n, "fName"))
	arg := part(n, "e")
	if functionNames[name] {
		return `\` + name + `(` + arg + `)`
	}
	return name + `(` + arg + `)`
}

func groupChar(n *ooxml.Node) string {
	chr, ok := prop(n, "groupChrPr", "chr")
	if !ok {
		chr = "⏟"
	}
	if cmd, ok := accents[chr]; ok {
		return cmd + `{` + part(n, "e") + `}`
	}
	return part(n, "e")
}

func radical(n *ooxml.Node) string {
	if deg := strings.TrimSpace(part(n, "deg")); deg != "" {
		return `\sqrt[` + deg + `]{` + part(n, "e") + `}`
	}
	return `\sqrt{` + part(n, "e") + `}`
}

func rows(es []*ooxml.Node, begin, end string) string {
	parts := make([]string, 0, len(es))
	for _, e := range es {
		parts = append(parts, children(e))
	}
	return begin + strings.Join(parts, rowBreak) + end
}

func matrix(n *ooxml.Node) string {
	var lines []string
	for _, mr := range n.ChildrenNamed("mr") {
		var cells []string
		for _, e := range mr.ChildrenNamed("e") {
			cells = append(cells, children(e))
		}
		lines = append(lines, strings.Join(cells, colSep))
	}
	return `\begin{matrix}` + strings.Join(lines, rowBreak) + `\end{matrix}`
}

func nary(n *ooxml.Node) string {
	chr, ok := prop(n, "naryPr", "chr")
	if !ok {
		chr = "∫"
	}
	op, ok := operators[chr]
	if !ok {
		op = chr
	}
	var sb strings.Builder
	sb.WriteString(op)
	if sub := part(n, "sub"); sub != "" {
		sb.WriteString(`_{` + sub + `}`)
	}
	if sup := part(n, "sup"); sup != "" {
		sb.WriteString(`^{` + sup + `}`)
	}
	sb.WriteString(" " + part(n, "e"))
	return sb.String()
}

func limLow(n *ooxml.Node) string {
	base := strings.TrimSpace(part(n, "e"))
	lim := strings.ReplaceAll(part(n, "lim"), `\rightarrow`, `\to`)
	switch base {
	case "lim", "max", "min", "sup", "inf":
		return `\` + base + `_{` + lim + `}`
	}
	return base + `_{` + lim + `}`
}
