// Package sections locates the tagged regions of a model response.
//
// A response is expected to carry one <TAILORED_RESUME> region followed by one
// <GAP_ANALYSIS> region. Extraction is safe on partial text: a region whose
// closing tag has not arrived yet is reported as not found.
package sections

import (
	"regexp"
	"strings"
	"sync"
)

// Region names used by the generation prompt.
const (
	TailoredResume = "TAILORED_RESUME"
	GapAnalysis    = "GAP_ANALYSIS"
)

var (
	patterns   = make(map[string]*regexp.Regexp)
	patternsMu sync.RWMutex
)

// pattern returns the compiled non-greedy matcher for a region name.
func pattern(name string) *regexp.Regexp {
	patternsMu.RLock()
	re, ok := patterns[name]
	patternsMu.RUnlock()
	if ok {
		return re
	}

	quoted := regexp.QuoteMeta(name)
	re = regexp.MustCompile(`(?s)<` + quoted + `>(.*?)</` + quoted + `>`)

	patternsMu.Lock()
	patterns[name] = re
	patternsMu.Unlock()
	return re
}

// Extract returns the trimmed text between the first <name> and the first
// </name> after it. The second return value is false when either tag is missing.
// Every call scans text from the beginning.
func Extract(text, name string) (string, bool) {
	if name == "" {
		return "", false
	}
	m := pattern(name).FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// Result is the structured view of a complete response.
type Result struct {
	Resume      string `json:"resume"`
	Gaps        string `json:"gaps"`
	ResumeFound bool   `json:"resume_found"`
	GapsFound   bool   `json:"gaps_found"`
}

// Parse extracts both regions and applies the display fallbacks: a missing
// resume region becomes the whole trimmed text, a missing gap region is empty.
func Parse(text string) Result {
	var r Result

	r.Resume, r.ResumeFound = Extract(text, TailoredResume)
	if !r.ResumeFound {
		r.Resume = strings.TrimSpace(text)
	}

	r.Gaps, r.GapsFound = Extract(text, GapAnalysis)
	return r
}

// Gaps returns the gap region only when it exists and is non-empty, which is
// the condition for persisting it.
func Gaps(text string) (string, bool) {
	gaps, ok := Extract(text, GapAnalysis)
	if !ok || gaps == "" {
		return "", false
	}
	return gaps, true
}
