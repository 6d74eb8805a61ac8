package html

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	proseOnce   sync.Once
	prosePolicy *bluemonday.Policy
)

// sanitizeProse keeps inline formatting and links from configured page and
// field descriptions.
func sanitizeProse(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(proseSanitizer().Sanitize(trimmed))
}

func proseSanitizer() *bluemonday.Policy {
	proseOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("b", "strong", "i", "em", "br", "p", "small", "code")
		policy.AllowStandardURLs()
		policy.AllowAttrs("href").OnElements("a")
		policy.RequireNoFollowOnLinks(true)
		prosePolicy = policy
	})
	return prosePolicy
}
