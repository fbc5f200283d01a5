package llm

import (
	"context"
	"fmt"
	"strings"

	"DealsTracker/internal/domain"
	"DealsTracker/internal/ports"
)

const defaultChatPrompt = `You are an expert intelligence analyst specializing in India's foreign policy, defence acquisitions, trade agreements, and strategic partnerships.

When answering:
- Be specific with deal values, dates, and key items
- Explain the strategic importance to India
- Mention current status (proposed/signed/in progress/completed)
- Keep responses clear and well-structured with key points
- Be concise but comprehensive, no more than 400 words per response`

const noReply = "No response generated."

// Assistant answers chat questions with the approved deals as context.
type Assistant struct {
	client *Client
	prompt string
}

var _ ports.Assistant = (*Assistant)(nil)

// NewAssistant builds an assistant; an empty prompt selects the built-in persona.
func NewAssistant(client *Client, prompt string) *Assistant {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		prompt = defaultChatPrompt
	}
	return &Assistant{client: client, prompt: prompt}
}

// Reply forwards the conversation with a system prompt embedding every deal.
// Only user and assistant turns from the caller are kept.
func (a *Assistant) Reply(ctx context.Context, deals []domain.Deal, history []domain.ChatMessage) (string, error) {
	messages := []domain.ChatMessage{{Role: domain.RoleSystem, Content: systemPrompt(a.prompt, deals)}}
	for _, m := range history {
		if m.Role != domain.RoleUser && m.Role != domain.RoleAssistant {
			continue
		}
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		messages = append(messages, m)
	}
	if len(messages) == 1 {
		return "", &domain.ValidationError{Field: "messages", Reason: "at least one user message is required"}
	}

	reply, err := a.client.Complete(ctx, Completion{
		Messages:    messages,
		Temperature: 0.4,
		MaxTokens:   600,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return noReply, nil
	}
	return reply, nil
}

func systemPrompt(persona string, deals []domain.Deal) string {
	var b strings.Builder
	b.WriteString(persona)
	fmt.Fprintf(&b, "\n\nTracked deals (%d approved records):\n", len(deals))
	for _, d := range deals {
		fmt.Fprintf(&b, "- %s | %s | $%sB | %s | %s | %s\n", d.Title, d.Country, d.Value, d.Status, d.Type, d.Date)
	}
	return b.String()
}
