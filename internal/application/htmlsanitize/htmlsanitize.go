// Package htmlsanitize cleans user-supplied text before it is stored or
// rendered as HTML.
package htmlsanitize

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

var (
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

// mdRenderer escapes raw HTML in markdown input (WithUnsafe is not set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// Sanitize keeps safe formatting markup and removes scripts, handlers and
// unsafe URLs.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return ugcPolicy.Sanitize(s)
}

// maxDecodeRounds bounds how many layers of entity encoding PlainText peels.
const maxDecodeRounds = 4

// PlainText strips every tag and trims surrounding whitespace. The result is
// unescaped text that stays tag free after entity decoding, so "&lt;b&gt;"
// cannot come back out as "<b>". Input that is still changing after
// maxDecodeRounds is returned in its escaped form.
func PlainText(s string) string {
	out := strings.TrimSpace(s)
	for i := 0; i < maxDecodeRounds; i++ {
		next := strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(out)))
		if next == out {
			return out
		}
		out = next
	}
	return strings.TrimSpace(strictPolicy.Sanitize(out))
}

// Markdown renders markdown to sanitized HTML.
// POST: Output contains no script, style or event handler markup
func Markdown(md string) (string, error) {
	if strings.TrimSpace(md) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return Sanitize(buf.String()), nil
}
