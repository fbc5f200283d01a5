package usecase

import (
	"context"

	"DealsTracker/internal/domain"
	"DealsTracker/internal/ports"
)

// Chat answers questions about the public deal set.
type Chat struct {
	deals     *Deals
	assistant ports.Assistant
}

func NewChat(deals *Deals, assistant ports.Assistant) *Chat {
	return &Chat{deals: deals, assistant: assistant}
}

// Reply loads the approved deals and hands them to the assistant with the
// conversation so far.
func (c *Chat) Reply(ctx context.Context, history []domain.ChatMessage) (string, error) {
	if c.assistant == nil {
		return "", domain.MissingConfig("llm api key")
	}
	deals, err := c.deals.Public(ctx)
	if err != nil {
		return "", err
	}
	return c.assistant.Reply(ctx, deals, history)
}
