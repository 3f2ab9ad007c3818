package chat

import (
	"regexp"
	"strings"
)

const lineBreak = "<br>"

var (
	strongPattern   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	emphasisPattern = regexp.MustCompile(`\*(.*?)\*`)
)

// Beautify turns the assistant's lightweight markup into an HTML fragment:
// **bold**, *italic*, newlines and "* " bullet lines. Embedded HTML in raw
// is passed through unescaped.
func Beautify(raw string) string {
	out := strongPattern.ReplaceAllString(raw, "<strong>$1</strong>")
	out = emphasisPattern.ReplaceAllString(out, "<em>$1</em>")
	out = strings.ReplaceAll(out, "\n\n", lineBreak+lineBreak)
	out = strings.ReplaceAll(out, "\n", lineBreak)

	lines := strings.Split(out, lineBreak)
	if !hasBulletLine(lines) {
		return out
	}
	return renderLists(lines)
}

func isBullet(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "* ")
}

func hasBulletLine(lines []string) bool {
	for _, line := range lines {
		if isBullet(line) {
			return true
		}
	}
	return false
}

// renderLists groups consecutive bullet lines into one <ul>. Line breaks are
// kept between lines except right after a list item.
func renderLists(lines []string) string {
	var b strings.Builder
	inList := false

	for i, line := range lines {
		if isBullet(line) {
			if !inList {
				b.WriteString("<ul>")
				inList = true
			}
			b.WriteString("<li>")
			b.WriteString(strings.TrimPrefix(strings.TrimSpace(line), "* "))
			b.WriteString("</li>")
			continue
		}

		if inList {
			b.WriteString("</ul>")
			inList = false
		}
		b.WriteString(line)
		if i < len(lines)-1 {
			b.WriteString(lineBreak)
		}
	}

	if inList {
		b.WriteString("</ul>")
	}
	return b.String()
}
