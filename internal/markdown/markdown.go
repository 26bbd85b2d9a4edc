// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown converts section bodies authored in Markdown into HTML
// using goldmark. Raw HTML passes through so sections imported from the
// legacy site, which stored HTML fragments, keep rendering. Links that
// leave the site open in a new tab.
package markdown

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

var converter = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Typographer),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
		parser.WithASTTransformers(util.Prioritized(externalLinks{}, 500)),
	),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

var (
	attrTarget = []byte("target")
	attrRel    = []byte("rel")
	newTab     = []byte("_blank")
	noOpener   = []byte("noopener noreferrer")
)

// externalLinks marks absolute http(s) links, written or autolinked.
type externalLinks struct{}

func (externalLinks) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	src := reader.Source()
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		var dest []byte
		switch l := n.(type) {
		case *ast.Link:
			dest = l.Destination
		case *ast.AutoLink:
			if l.AutoLinkType != ast.AutoLinkURL {
				return ast.WalkContinue, nil
			}
			dest = l.URL(src)
		default:
			return ast.WalkContinue, nil
		}
		if isExternal(dest) {
			n.SetAttribute(attrTarget, newTab)
			n.SetAttribute(attrRel, noOpener)
		}
		return ast.WalkContinue, nil
	})
}

func isExternal(dest []byte) bool {
	lower := bytes.ToLower(dest)
	return bytes.HasPrefix(lower, []byte("http://")) ||
		bytes.HasPrefix(lower, []byte("https://")) ||
		bytes.HasPrefix(lower, []byte("www."))
}

// ToHTML converts Markdown source into HTML.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := converter.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Render is ToHTML for templates. Section bodies are staff-authored; on a
// conversion failure the escaped source is shown instead.
func Render(source string) template.HTML {
	out, err := ToHTML(source)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(out)
}
