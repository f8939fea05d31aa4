package core

import "strings"

// IntentClassifier decides whether a message asks to meet and whether it asks
// to move an already scheduled meeting. Matching is case-insensitive substring
// matching over curated vocabularies, with exclusions checked first.
type IntentClassifier struct {
	meeting    []string
	exclusions []string
	reschedule []string
}

// NewIntentClassifier builds a classifier. Nil or empty slices select the
// default vocabularies.
func NewIntentClassifier(meeting, exclusions, reschedule []string) *IntentClassifier {
	if len(meeting) == 0 {
		meeting = DefaultMeetingVocabulary()
	}
	if len(exclusions) == 0 {
		exclusions = DefaultExclusionVocabulary()
	}
	if len(reschedule) == 0 {
		reschedule = DefaultRescheduleVocabulary()
	}
	return &IntentClassifier{
		meeting:    normalize(meeting),
		exclusions: normalize(exclusions),
		reschedule: normalize(reschedule),
	}
}

// DefaultMeetingVocabulary returns the built-in meeting-intent phrases.
func DefaultMeetingVocabulary() []string {
	return []string{
		"meet up", "get together", "schedule a meeting", "let's meet",
		"grab coffee", "get coffee", "hang out", "set up a call", "catch up",
		"meeting", "book a time", "schedule a call", "plan a meeting",
		"appointment", "sync up", "schedule", "reschedule", "video call",
		"on zoom", "in person", "one-on-one",
	}
}

// DefaultExclusionVocabulary returns phrases that mention meetings without
// requesting one. They take precedence over the meeting vocabulary.
func DefaultExclusionVocabulary() []string {
	return []string{
		"meeting room", "meeting agenda", "meeting minutes", "meeting notes",
		"meeting recording", "as discussed in the meeting",
		"summary of the meeting", "after the meeting",
	}
}

// DefaultRescheduleVocabulary returns the built-in rescheduling phrases.
func DefaultRescheduleVocabulary() []string {
	return []string{
		"reschedule", "move the meeting", "move our meeting", "postpone",
		"push back", "push it back", "different time", "another time",
		"a new time", "move it to", "shift the meeting", "change the time",
	}
}

// Classify inspects the original body for meeting intent and the cleaned
// content plus subject for reschedule intent. Meeting intent runs over the
// original body on purpose: quoted history still signals the thread is about
// a meeting. Reschedule intent runs over the newest content only so that a
// quoted "can we reschedule" from an earlier turn does not retrigger.
func (c *IntentClassifier) Classify(msg *InboundMessage, cleaned string) IntentResult {
	body := strings.ToLower(msg.Subject + "\n" + msg.Body)

	meeting := false
	if !containsAny(body, c.exclusions) {
		meeting = containsAny(body, c.meeting)
	}

	recent := strings.ToLower(msg.Subject + "\n" + cleaned)
	reschedule := containsAny(recent, c.reschedule)

	// A reschedule request is a meeting request even when no meeting phrase
	// survives in the newest content.
	if reschedule {
		meeting = true
	}
	return IntentResult{IsMeeting: meeting, IsReschedule: reschedule}
}

func containsAny(haystack string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(haystack, p) {
			return true
		}
	}
	return false
}

func normalize(phrases []string) []string {
	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
