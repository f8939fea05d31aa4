package core

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"go.uber.org/zap"
)

// ErrNoTime reports that a strategy (or the whole chain) found no usable
// future meeting time. It signals fallthrough, not failure.
var ErrNoTime = errors.New("no meeting time detected")

// TimeStrategy is one way of extracting a meeting start time from text.
type TimeStrategy interface {
	// Source identifies the strategy on produced candidates.
	Source() TimeSource
	// Detect returns a start time parsed from content relative to now.
	// ErrNoTime means the strategy has nothing; any other error is treated
	// the same way by the chain.
	Detect(ctx context.Context, content string, now time.Time) (time.Time, error)
}

// TimeDetectionChain runs its strategies in fixed order and returns the first
// candidate that survives the shared checks: the time must parse and must be
// strictly in the future. All candidates are normalized to the operating
// timezone before comparison.
type TimeDetectionChain struct {
	strategies []TimeStrategy
	loc        *time.Location
	logger     *zap.Logger
}

// NewTimeDetectionChain builds a chain over the given strategies in order.
func NewTimeDetectionChain(loc *time.Location, logger *zap.Logger, strategies ...TimeStrategy) *TimeDetectionChain {
	return &TimeDetectionChain{strategies: strategies, loc: loc, logger: logger}
}

// Detect runs the chain. It returns ErrNoTime when every strategy failed or
// produced a past time.
func (c *TimeDetectionChain) Detect(ctx context.Context, content string, now time.Time) (*TimeCandidate, error) {
	now = now.In(c.loc)
	for _, s := range c.strategies {
		t, err := s.Detect(ctx, content, now)
		if err != nil {
			if !errors.Is(err, ErrNoTime) {
				c.logger.Debug("time strategy failed",
					zap.String("strategy", string(s.Source())),
					zap.Error(err))
			}
			continue
		}
		t = t.In(c.loc)
		if !t.After(now) {
			c.logger.Debug("time strategy produced a past time",
				zap.String("strategy", string(s.Source())),
				zap.Time("detected", t))
			continue
		}
		c.logger.Debug("meeting time detected",
			zap.String("strategy", string(s.Source())),
			zap.Time("detected", t))
		return &TimeCandidate{Time: t, Source: s.Source()}, nil
	}
	return nil, ErrNoTime
}

// PatternStrategy anchors natural-language parsing on a small set of phrase
// shapes (relative days, weekdays, month-day, ISO fragments) and hands the
// matched fragment to a natural-language date parser with a future preference.
type PatternStrategy struct {
	loc      *time.Location
	parser   *when.Parser
	patterns []*regexp.Regexp
	isoRe    *regexp.Regexp
}

// NewPatternStrategy builds the first-tier strategy for the given timezone.
func NewPatternStrategy(loc *time.Location) *PatternStrategy {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &PatternStrategy{
		loc:    loc,
		parser: w,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:today|tomorrow|tonight)\b(?:\s+at)?\s+\d{1,2}(?::\d{2})?\s*(?:am|pm)?`),
			regexp.MustCompile(`(?i)\bat\s+\d{1,2}(?::\d{2})?\s*(?:am|pm)?\s+(?:today|tomorrow)\b`),
			regexp.MustCompile(`(?i)\b(?:next\s+)?(?:mon|tues|wednes|thurs|fri|satur|sun)day\b(?:\s+at\s+\d{1,2}(?::\d{2})?\s*(?:am|pm)?)?`),
			regexp.MustCompile(`(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+\d{1,2}(?:st|nd|rd|th)?(?:\s+at\s+\d{1,2}(?::\d{2})?\s*(?:am|pm)?)?`),
			regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}[ T]\d{1,2}:\d{2}\b`),
		},
		isoRe: regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}[ T]\d{1,2}:\d{2}\b`),
	}
}

// Source implements TimeStrategy.
func (s *PatternStrategy) Source() TimeSource { return TimeSourcePattern }

// Detect implements TimeStrategy.
func (s *PatternStrategy) Detect(_ context.Context, content string, now time.Time) (time.Time, error) {
	for _, re := range s.patterns {
		fragment := re.FindString(content)
		if fragment == "" {
			continue
		}
		if s.isoRe.MatchString(fragment) {
			return parseISOFragment(fragment, s.loc)
		}
		r, err := s.parser.Parse(fragment, now.In(s.loc))
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse %q: %w", fragment, err)
		}
		if r == nil {
			// The anchor matched but the parser got nothing out of it, let
			// the next pattern or strategy try.
			continue
		}
		return r.Time, nil
	}
	return time.Time{}, ErrNoTime
}

func parseISOFragment(fragment string, loc *time.Location) (time.Time, error) {
	fragment = strings.Replace(fragment, " ", "T", 1)
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02T3:04"} {
		if t, err := time.ParseInLocation(layout, fragment, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrNoTime
}

// aiTimePrompt demands a bare ISO timestamp so the response survives the
// sanitize pass. The literal "none" is the model's way of declining.
const aiTimePrompt = `Extract the meeting date and time from this email.
The current date and time is %s in the %s timezone.
Respond ONLY with an ISO 8601 timestamp like 2025-01-15T14:00:00, with no other text.
If no specific meeting time is mentioned, respond with exactly: none

Email:
%s`

// AIStrategy asks the completion service to extract an ISO-8601 timestamp.
// Responses are sanitized to timestamp characters before parsing; anything
// unusable is a fallthrough, never an error surfaced to the caller.
type AIStrategy struct {
	client   CompletionClient
	loc      *time.Location
	maxChars int
	timeout  time.Duration
	sanitize *regexp.Regexp
}

// NewAIStrategy builds the second-tier strategy. maxChars bounds how much of
// the content is sent; timeout bounds the completion call.
func NewAIStrategy(client CompletionClient, loc *time.Location, maxChars int, timeout time.Duration) *AIStrategy {
	if maxChars <= 0 {
		maxChars = 2000
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AIStrategy{
		client:   client,
		loc:      loc,
		maxChars: maxChars,
		timeout:  timeout,
		sanitize: regexp.MustCompile(`[^0-9T:\-]`),
	}
}

// Source implements TimeStrategy.
func (s *AIStrategy) Source() TimeSource { return TimeSourceAI }

// Detect implements TimeStrategy.
func (s *AIStrategy) Detect(ctx context.Context, content string, now time.Time) (time.Time, error) {
	if s.client == nil {
		return time.Time{}, ErrNoTime
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	bounded := content
	if len(bounded) > s.maxChars {
		bounded = bounded[:s.maxChars]
	}
	prompt := fmt.Sprintf(aiTimePrompt,
		now.In(s.loc).Format("2006-01-02 15:04 (Monday)"), s.loc.String(), bounded)

	resp, err := s.client.Complete(ctx, prompt)
	if err != nil {
		return time.Time{}, fmt.Errorf("completion call failed: %w", err)
	}
	resp = strings.TrimSpace(resp)
	if resp == "" || strings.EqualFold(resp, "none") {
		return time.Time{}, ErrNoTime
	}

	clean := s.sanitize.ReplaceAllString(resp, "")
	switch {
	case len(clean) >= 19:
		if t, err := time.ParseInLocation("2006-01-02T15:04:05", clean[:19], s.loc); err == nil {
			return t, nil
		}
		fallthrough
	case len(clean) >= 16:
		if t, err := time.ParseInLocation("2006-01-02T15:04", clean[:16], s.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrNoTime
}

// HeuristicStrategy is the last tier: find a clock time and a weekday anywhere
// in the content, synthesize a "next <weekday> at <time>" phrase and parse it.
type HeuristicStrategy struct {
	loc    *time.Location
	parser *when.Parser
	timeRe *regexp.Regexp
	dayRe  *regexp.Regexp
}

var weekdayNames = map[string]string{
	"mon": "monday", "tue": "tuesday", "wed": "wednesday", "thu": "thursday",
	"fri": "friday", "sat": "saturday", "sun": "sunday",
}

// NewHeuristicStrategy builds the third-tier strategy.
func NewHeuristicStrategy(loc *time.Location) *HeuristicStrategy {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &HeuristicStrategy{
		loc:    loc,
		parser: w,
		timeRe: regexp.MustCompile(`(?i)\b\d{1,2}(?::\d{2})?\s*(?:am|pm)\b|\b\d{1,2}:\d{2}\b`),
		dayRe:  regexp.MustCompile(`(?i)\b(mon|tue|wed|thu|fri|sat|sun)[a-z]*\b`),
	}
}

// Source implements TimeStrategy.
func (s *HeuristicStrategy) Source() TimeSource { return TimeSourceHeuristic }

// Detect implements TimeStrategy.
func (s *HeuristicStrategy) Detect(_ context.Context, content string, now time.Time) (time.Time, error) {
	clock := s.timeRe.FindString(content)
	day := s.dayRe.FindStringSubmatch(content)
	if clock == "" || day == nil {
		return time.Time{}, ErrNoTime
	}
	full, ok := weekdayNames[strings.ToLower(day[1])]
	if !ok {
		return time.Time{}, ErrNoTime
	}
	phrase := fmt.Sprintf("next %s at %s", full, strings.ToLower(clock))
	r, err := s.parser.Parse(phrase, now.In(s.loc))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %q: %w", phrase, err)
	}
	if r == nil {
		return time.Time{}, ErrNoTime
	}
	return r.Time, nil
}
