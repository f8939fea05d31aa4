package core

import (
	"regexp"
	"strings"
)

// defaultMinContentLength is the shortest cleaned body accepted before the
// extractor falls back to a greedier cut of the raw text.
const defaultMinContentLength = 20

// ThreadContentExtractor isolates the newest author-written content of an
// email body from quoted history, forwarded headers and signatures.
type ThreadContentExtractor struct {
	minLength  int
	boundaries []*regexp.Regexp
}

// NewThreadContentExtractor builds an extractor. minLength <= 0 selects the
// default threshold.
func NewThreadContentExtractor(minLength int) *ThreadContentExtractor {
	if minLength <= 0 {
		minLength = defaultMinContentLength
	}
	return &ThreadContentExtractor{
		minLength: minLength,
		boundaries: []*regexp.Regexp{
			// Reply markers inserted by common clients, several locales.
			regexp.MustCompile(`(?mi)^\s*-{2,}\s*Original Message\s*-{2,}`),
			regexp.MustCompile(`(?mi)^\s*-{2,}\s*Forwarded message\s*-{2,}`),
			regexp.MustCompile(`(?m)^On .{0,200}wrote:\s*$`),
			regexp.MustCompile(`(?m)^Le .{0,200}a écrit\s*:`),
			regexp.MustCompile(`(?m)^Am .{0,200}schrieb.{0,100}:`),
			regexp.MustCompile(`(?m)^El .{0,200}escribió\s*:`),
			// Quoted header blocks.
			regexp.MustCompile(`(?m)^From:\s.+`),
			regexp.MustCompile(`(?m)^Sent:\s.+`),
			// Signature and mobile footers.
			regexp.MustCompile(`(?m)^--\s*$`),
			regexp.MustCompile(`(?mi)^Sent from my .+`),
			regexp.MustCompile(`(?m)^\s*[_\-]{8,}\s*$`),
		},
	}
}

// Extract returns the cleaned newest-reply content of body. It walks the body
// line by line, stopping at the first quote boundary and dropping ">" quoted
// lines. When the result is shorter than the minimum length it retries with a
// greedy cut at the earliest boundary in the raw text, and in the worst case
// returns the trimmed original body so downstream always has something to
// classify.
func (e *ThreadContentExtractor) Extract(body string) string {
	lines := strings.Split(body, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if e.isBoundary(line) {
			break
		}
		if strings.HasPrefix(strings.TrimSpace(line), ">") {
			continue
		}
		kept = append(kept, line)
	}
	cleaned := strings.TrimSpace(strings.Join(kept, "\n"))
	if len(cleaned) >= e.minLength {
		return cleaned
	}

	// Too little survived the strict pass, keep everything up to the earliest
	// boundary instead.
	if idx := e.earliestBoundary(body); idx > 0 {
		if greedy := strings.TrimSpace(body[:idx]); greedy != "" {
			return greedy
		}
	}
	if cleaned != "" {
		return cleaned
	}
	return strings.TrimSpace(body)
}

func (e *ThreadContentExtractor) isBoundary(line string) bool {
	for _, re := range e.boundaries {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

func (e *ThreadContentExtractor) earliestBoundary(body string) int {
	earliest := -1
	for _, re := range e.boundaries {
		loc := re.FindStringIndex(body)
		if loc == nil {
			continue
		}
		if earliest < 0 || loc[0] < earliest {
			earliest = loc[0]
		}
	}
	return earliest
}
