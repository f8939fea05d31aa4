package core

import (
	"context"

	"go.uber.org/zap"
)

// ThreadEventCorrelator resolves which calendar event a reschedule request is
// talking about: the event tied to the earliest meeting-intent message of the
// same conversation, unless the operator selected one explicitly.
type ThreadEventCorrelator struct {
	index  ConversationIndex
	logger *zap.Logger
}

// NewThreadEventCorrelator builds a correlator over the conversation index.
func NewThreadEventCorrelator(index ConversationIndex, logger *zap.Logger) *ThreadEventCorrelator {
	return &ThreadEventCorrelator{index: index, logger: logger}
}

// Correlate returns the correlation for a message. A manual event ref wins
// over the conversation lookup. Lookup failures degrade to an empty
// correlation so the pipeline falls back to creating a fresh event.
func (c *ThreadEventCorrelator) Correlate(ctx context.Context, conversationID string, intent IntentResult, manualRef string) Correlation {
	if manualRef != "" {
		return Correlation{EventRef: manualRef, Manual: true}
	}
	if !intent.IsReschedule || conversationID == "" {
		return Correlation{}
	}
	ref, err := c.index.FindEventByConversation(ctx, conversationID)
	if err != nil {
		c.logger.Warn("conversation event lookup failed",
			zap.String("conversation_id", conversationID), zap.Error(err))
		return Correlation{}
	}
	return Correlation{EventRef: ref}
}
