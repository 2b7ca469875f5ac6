// Package render turns HN markup and timestamps into terminal text.
package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HNToText converts the subset of HTML HN emits in comment and post bodies
// (p, a, i, code, pre) into wrapped plain text. Links whose text differs from
// the target get the URL appended in brackets. width <= 0 disables wrapping.
func HNToText(raw string, width int) string {
	if raw == "" {
		return ""
	}

	z := html.NewTokenizer(strings.NewReader(raw))
	var (
		sb          strings.Builder
		pre, code   bool
		href        string
		anchorStart int
	)

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return wrap(strings.TrimSpace(sb.String()), width)

		case html.StartTagToken, html.SelfClosingTagToken:
			t := z.Token()
			switch t.DataAtom {
			case atom.P:
				if sb.Len() > 0 {
					sb.WriteString("\n\n")
				}
			case atom.Br:
				sb.WriteString("\n")
			case atom.I, atom.Em:
				sb.WriteString("*")
			case atom.Code:
				if !pre {
					sb.WriteString("`")
				}
				code = true
			case atom.Pre:
				pre = true
				sb.WriteString("\n")
			case atom.A:
				href = ""
				for _, a := range t.Attr {
					if a.Key == "href" {
						href = a.Val
					}
				}
				anchorStart = sb.Len()
			}

		case html.EndTagToken:
			t := z.Token()
			switch t.DataAtom {
			case atom.I, atom.Em:
				sb.WriteString("*")
			case atom.Code:
				if !pre {
					sb.WriteString("`")
				}
				code = false
			case atom.Pre:
				pre = false
				sb.WriteString("\n")
			case atom.A:
				if href != "" && !sameLink(sb.String()[anchorStart:], href) {
					sb.WriteString(" [" + href + "]")
				}
				href = ""
			}

		case html.TextToken:
			// The tokenizer unescapes entities in text tokens.
			text := string(z.Text())
			switch {
			case pre:
				for i, line := range strings.Split(text, "\n") {
					if i > 0 {
						sb.WriteString("\n")
					}
					if line != "" {
						sb.WriteString("    " + line)
					}
				}
			case code:
				sb.WriteString(text)
			default:
				sb.WriteString(strings.ReplaceAll(text, "\n", " "))
			}
		}
	}
}

// sameLink reports whether the anchor text already shows the target. HN
// truncates long link text with "...".
func sameLink(text, href string) bool {
	text = strings.TrimSpace(text)
	if text == href {
		return true
	}
	if prefix, ok := strings.CutSuffix(text, "..."); ok && strings.HasPrefix(href, prefix) {
		return true
	}
	return false
}

// wrap word-wraps each paragraph to width display cells. Indented code lines
// are left alone.
func wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	var out strings.Builder
	for _, para := range strings.Split(text, "\n") {
		if strings.HasPrefix(para, "    ") {
			out.WriteString(para + "\n")
			continue
		}
		words := strings.Fields(para)
		if len(words) == 0 {
			out.WriteString("\n")
			continue
		}
		col := 0
		for i, w := range words {
			ww := lipgloss.Width(w)
			switch {
			case i == 0:
			case col+1+ww > width:
				out.WriteString("\n")
				col = 0
			default:
				out.WriteString(" ")
				col++
			}
			out.WriteString(w)
			col += ww
		}
		out.WriteString("\n")
	}
	return strings.TrimRight(out.String(), "\n")
}
