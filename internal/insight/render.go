package insight

import (
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// RenderHTML converts one insight string with markdown emphasis markers
// into an HTML fragment. Insights are single sentences, so the wrapping
// paragraph tags are stripped.
func RenderHTML(insightText string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})

	out := string(markdown.ToHTML([]byte(insightText), p, renderer))
	out = strings.TrimSpace(out)
	out = strings.TrimPrefix(out, "<p>")
	out = strings.TrimSuffix(out, "</p>")
	return out
}

// RenderAllHTML renders a list of insights preserving their order
func RenderAllHTML(insights []string) []string {
	out := make([]string, len(insights))
	for i, s := range insights {
		out[i] = RenderHTML(s)
	}
	return out
}
