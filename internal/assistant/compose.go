package assistant

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/kristinakoza/ai-Smart-Email-Assistant/internal/core"
)

const alternativesPrompt = `I received a meeting request but the requested time (%s) is not available.
Write a brief, friendly email reply proposing these alternative times instead:
%s

Keep it short, do not invent other times, and do not add a subject line or signature placeholders.

The original request was:
%s`

// Composer builds the reply bodies the assistant sends. Confirmation text is
// deterministic; negotiation text is generated and falls back to a plain
// listing when the completion service is unavailable.
type Composer struct {
	completion core.CompletionClient
	logger     *zap.Logger
}

// NewComposer creates a composer. completion may be nil, in which case every
// body is deterministic.
func NewComposer(completion core.CompletionClient, logger *zap.Logger) *Composer {
	return &Composer{completion: completion, logger: logger}
}

// Confirmation returns the body confirming a scheduled or moved meeting.
func (c *Composer) Confirmation(window core.MeetingWindow) string {
	return fmt.Sprintf(
		"Hi,\n\nI've scheduled our meeting for %s as requested.\n\nLooking forward to it!\n",
		window.Format())
}

// Alternatives returns the body proposing open windows instead of a busy one.
func (c *Composer) Alternatives(ctx context.Context, request string, requested core.MeetingWindow, alternatives []core.MeetingWindow) string {
	listing := make([]string, 0, len(alternatives))
	for _, alt := range alternatives {
		listing = append(listing, "- "+alt.Format())
	}
	fallback := fmt.Sprintf(
		"Hi,\n\nUnfortunately %s doesn't work on my end. Would any of these times suit you instead?\n\n%s\n\nLet me know what works best.\n",
		requested.Format(), strings.Join(listing, "\n"))

	if c.completion == nil {
		return fallback
	}
	prompt := fmt.Sprintf(alternativesPrompt, requested.Format(), strings.Join(listing, "\n"), request)
	resp, err := c.completion.Complete(ctx, prompt)
	if err != nil {
		c.logger.Warn("reply generation failed, using fallback body", zap.Error(err))
		return fallback
	}
	cleaned := CleanGenerated(resp)
	if cleaned == "" {
		return fallback
	}
	return cleaned
}

var (
	preambleRe = regexp.MustCompile(`(?i)^(here is|here's|sure,|certainly|of course)[^\n]*\n+`)
	headingRe  = regexp.MustCompile(`(?m)^#{1,6}\s[^\n]*\n+`)
	subjectRe  = regexp.MustCompile(`(?im)^\*{0,2}subject:\*{0,2}[^\n]*\n+`)
	footerRe   = regexp.MustCompile(`(?is)\n+(feel free to (customize|adjust)|let me know if you need any (changes|adjustments)|---+\s*$).*$`)
)

// CleanGenerated strips the artifacts language models wrap email bodies in:
// preambles, markdown headings and bold markers, subject lines and trailing
// customization-tip footers.
func CleanGenerated(content string) string {
	content = strings.TrimSpace(content)
	content = preambleRe.ReplaceAllString(content, "")
	content = subjectRe.ReplaceAllString(content, "")
	content = headingRe.ReplaceAllString(content, "")
	content = strings.ReplaceAll(content, "**", "")
	content = footerRe.ReplaceAllString(content, "")
	return strings.TrimSpace(content)
}
