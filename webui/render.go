package webui

import (
	"bytes"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// markdownRenderer turns agent answers into sanitized HTML.
type markdownRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func newMarkdownRenderer() *markdownRenderer {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)

	return &markdownRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
		policy: policy,
	}
}

// render converts markdown to HTML. Raw HTML in the source is dropped by
// goldmark and anything unsafe left over is stripped by bluemonday. On a
// conversion error the escaped source is returned.
func (r *markdownRenderer) render(source string) template.HTML {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source)) //nolint:gosec // escaped above
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes())) //nolint:gosec // sanitized by bluemonday
}
