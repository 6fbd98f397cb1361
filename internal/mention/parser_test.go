package mention

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMentionsIgnoresFencedAndInlineCode(t *testing.T) {
	text := "Check @outside.md.\n```\n@inside.md\n```\nAnd `@inline.md` or @after.md"
	assert.Equal(t, []string{"@outside.md", "@after.md"}, ParseMentions(text))
}

func TestParseMentionsDedupesByExactString(t *testing.T) {
	text := "@shared:notes.md appears twice: @shared:notes.md"
	assert.Equal(t, []string{"@shared:notes.md"}, ParseMentions(text))
}

func TestParseMentionsPreservesOrder(t *testing.T) {
	text := "@b.md then @a.md then @c.md"
	assert.Equal(t, []string{"@b.md", "@a.md", "@c.md"}, ParseMentions(text))
}

func TestParseMentionsSkipsEmailAddresses(t *testing.T) {
	text := "Contact user@example.com about @real-mention.md"
	got := ParseMentions(text)
	assert.NotContains(t, got, "@example.com")
	assert.Contains(t, got, "@real-mention.md")
}

func TestParseMentionsNamespacedForm(t *testing.T) {
	text := "See @docs:guide/setup for details"
	assert.Equal(t, []string{"@docs:guide/setup"}, ParseMentions(text))
}

func TestParseMentionsNoMentions(t *testing.T) {
	assert.Empty(t, ParseMentions("nothing to see here"))
}
