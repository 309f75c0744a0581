package extract

import (
	"iter"
	"regexp"
	"sync"

	"github.com/jgivc/w1r3catcher/internal/entity"
)

// Extractor finds links to watched domains in chat text. Compiled patterns
// are cached per domain.
type Extractor struct {
	mu       sync.Mutex
	patterns map[string]*regexp.Regexp
}

func New() *Extractor {
	return &Extractor{
		patterns: make(map[string]*regexp.Regexp),
	}
}

// Extract yields every match of every domain. Domains are scanned in order,
// each against the whole message, and matches of one domain come out left to
// right. Empty domains are skipped.
func (e *Extractor) Extract(message string, domains []string) iter.Seq[entity.MatchedURL] {
	return func(yield func(entity.MatchedURL) bool) {
		for _, domain := range domains {
			if domain == "" {
				continue
			}

			for _, url := range e.pattern(domain).FindAllString(message, -1) {
				if !yield(entity.MatchedURL{Domain: domain, URL: url}) {
					return
				}
			}
		}
	}
}

func (e *Extractor) pattern(domain string) *regexp.Regexp {
	e.mu.Lock()
	defer e.mu.Unlock()

	re, ok := e.patterns[domain]
	if !ok {
		re = regexp.MustCompile(`(?:https?://)?` + regexp.QuoteMeta(domain) + `/[^ ]+`)
		e.patterns[domain] = re
	}

	return re
}
