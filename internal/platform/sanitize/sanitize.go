package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Strict strips every HTML element from user supplied text.
type Strict struct {
	policy *bluemonday.Policy
}

func NewStrict() Strict {
	return Strict{policy: bluemonday.StrictPolicy()}
}

func (s Strict) Sanitize(text string) string {
	if s.policy == nil {
		s.policy = bluemonday.StrictPolicy()
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(text)))
}
