// Package markup turns quiz text with backtick code spans into escaped, structured
// content. Nothing here concatenates untrusted text into HTML without escaping.
package markup

import (
	"bytes"
	"context"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/a-h/templ"
)

// Kind identifies how a segment renders.
type Kind int

const (
	Text Kind = iota
	InlineCode
	CodeBlock
)

// Segment is a run of content of a single kind. Content is always unescaped source text.
type Segment struct {
	Kind    Kind
	Content string
}

// Markup is parsed quiz text.
type Markup struct {
	Segments []Segment
}

var (
	inlineCode = regexp.MustCompile("`([^`]+)`")
	tags       = regexp.MustCompile(`<[^>]*>?`)
)

// Parse splits text into segments. A string fully wrapped in backticks that contains
// angle brackets is one code block (an option showing HTML source); otherwise each
// backtick pair becomes inline code.
func Parse(text string) Markup {
	if len(text) >= 2 && strings.HasPrefix(text, "`") && strings.HasSuffix(text, "`") && strings.ContainsAny(text, "<>") {
		return Markup{Segments: []Segment{{Kind: CodeBlock, Content: text[1 : len(text)-1]}}}
	}

	var segs []Segment
	last := 0
	for _, loc := range inlineCode.FindAllStringSubmatchIndex(text, -1) {
		if loc[0] > last {
			segs = append(segs, Segment{Kind: Text, Content: text[last:loc[0]]})
		}
		segs = append(segs, Segment{Kind: InlineCode, Content: text[loc[2]:loc[3]]})
		last = loc[1]
	}
	if last < len(text) {
		segs = append(segs, Segment{Kind: Text, Content: text[last:]})
	}
	return Markup{Segments: segs}
}

// Component renders the markup as escaped HTML.
func (m Markup) Component() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		for _, seg := range m.Segments {
			var err error
			switch seg.Kind {
			case CodeBlock:
				_, err = io.WriteString(w, `<pre><code class="quiz-code-block">`+templ.EscapeString(seg.Content)+`</code></pre>`)
			case InlineCode:
				_, err = io.WriteString(w, `<code class="quiz-inline-code">`+templ.EscapeString(seg.Content)+`</code>`)
			default:
				_, err = io.WriteString(w, templ.EscapeString(seg.Content))
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// HTML renders the markup to a string.
func (m Markup) HTML() string {
	var buf bytes.Buffer
	_ = m.Component().Render(context.Background(), &buf)
	return buf.String()
}

// Plain drops tags from text segments and keeps code content verbatim, for terminals.
func (m Markup) Plain() string {
	var b strings.Builder
	for _, seg := range m.Segments {
		if seg.Kind == Text {
			b.WriteString(StripTags(seg.Content))
			continue
		}
		b.WriteString(seg.Content)
	}
	return b.String()
}

// StripTags removes anything that looks like an HTML tag.
func StripTags(s string) string {
	return tags.ReplaceAllString(s, "")
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
