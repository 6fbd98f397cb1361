package mention

import (
	"regexp"
	"strings"
)

var (
	fencedCodeRe = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe = regexp.MustCompile("`[^`\n]+`")
	mentionRe    = regexp.MustCompile(`@[A-Za-z0-9_:./\-]+`)
)

// ParseMentions extracts @name or @path tokens from text, in the order
// they first appear, deduplicated by their exact string. Mentions inside
// fenced or inline code spans are ignored, and a trailing sentence period
// is trimmed (so "see @notes.md." reads as "@notes.md"). Go's regexp
// engine has no lookaround, so the email-address guard the original
// implements as a lookahead is reproduced here as a check of the byte
// immediately preceding the match: if it looks like the local part of an
// email address, the @ is not a mention start.
func ParseMentions(text string) []string {
	stripped := inlineCodeRe.ReplaceAllString(fencedCodeRe.ReplaceAllString(text, ""), "")

	seen := make(map[string]bool)
	var out []string
	for _, loc := range mentionRe.FindAllStringIndex(stripped, -1) {
		start, end := loc[0], loc[1]
		if start > 0 && looksLikeEmailLocalPart(stripped[start-1]) {
			continue
		}

		token := strings.TrimRight(stripped[start:end], ".")
		if token == "" || token == "@" {
			continue
		}
		if !seen[token] {
			seen[token] = true
			out = append(out, token)
		}
	}
	return out
}

func looksLikeEmailLocalPart(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == '.' || b == '_' || b == '%' || b == '+' || b == '-':
		return true
	}
	return false
}
