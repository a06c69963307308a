// Package textproc renders task descriptions. Clients paste plain text with
// occasional markdown, so only a small inline subset is enabled and the
// resulting HTML is sanitized before it reaches a template.
package textproc

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

type TextProcessor struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func New() *TextProcessor {
	p := parser.NewParser(
		parser.WithBlockParsers(
			util.Prioritized(parser.NewFencedCodeBlockParser(), 700),
			util.Prioritized(parser.NewParagraphParser(), 1000),
		),
		parser.WithInlineParsers(
			util.Prioritized(parser.NewCodeSpanParser(), 100),
			util.Prioritized(parser.NewEmphasisParser(), 500),
		),
	)

	md := goldmark.New(
		goldmark.WithParser(p),
		goldmark.WithRendererOptions(html.WithUnsafe()),
		goldmark.WithExtensions(extension.Strikethrough),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowRelativeURLs(true)

	return &TextProcessor{md: md, policy: policy}
}

// RenderDescription converts a description to sanitized HTML ready for
// template embedding.
func (tp *TextProcessor) RenderDescription(text string) template.HTML {
	var buf bytes.Buffer
	if err := tp.md.Convert([]byte(text), &buf); err != nil {
		// Fall back to the escaped raw text
		return template.HTML(template.HTMLEscapeString(text))
	}
	unsafeHTML := strings.TrimSpace(buf.String())
	return template.HTML(tp.policy.Sanitize(unsafeHTML))
}
