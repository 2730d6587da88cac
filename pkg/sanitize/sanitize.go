package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Policy strips markup from user supplied free text.
type Policy struct {
	policy *bluemonday.Policy
}

func New() *Policy {
	return &Policy{policy: bluemonday.StrictPolicy()}
}

// Text removes every HTML tag, unescapes entities and trims the result.
func (p *Policy) Text(content string) string {
	if content == "" {
		return ""
	}

	// Keep words on either side of block tags apart.
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")

	sanitized := p.policy.Sanitize(content)
	return strings.TrimSpace(html.UnescapeString(sanitized))
}
