package extractor

import (
	"fmt"
	"strings"
	"time"
)

// DefaultInstruction is the role given to the model when no custom instruction is configured.
const DefaultInstruction = `You are a financial data parser. Extract a single transaction from the user's text and reply with STRICTLY one JSON object.

Rules:
- Reply with valid JSON only.
- No explanations.
- No markdown.
- No comments.
- No additional text.
- If you are not sure about a field, still reply with JSON and set that field to null.
- "date" must be in UTC with the Z suffix, for example 2026-02-17T19:00:00Z. Resolve words like "yesterday" or "an hour ago" relative to the current time given below.`

const schema = `{
  "type": "expense | income | income-loan | expense-loan",
  "category": "food | transport | entertainment | salary | loan | ...",
  "item": "banana | loan | shirts | meat | ...",
  "amount": float,
  "currency": "RUB | USD | UZS | ...",
  "date": "date in ISO 8601 format",
  "person": "me | he | friend | person name | ... (always in English)"
}`

const (
	roleSystem = "system"
	roleUser   = "user"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Prompt builds the messages sent to every backend. The reference time is read from now at each call.
type Prompt struct {
	instruction string
	now         func() time.Time
}

func NewPrompt(instruction string) *Prompt {
	if strings.TrimSpace(instruction) == "" {
		instruction = DefaultInstruction
	}

	return &Prompt{
		instruction: instruction,
		now:         time.Now,
	}
}

func (p *Prompt) system() string {
	return fmt.Sprintf("%s\n\nCurrent time: %s\n\nResponse format:\n%s",
		p.instruction, p.now().Format(time.RFC3339), schema)
}

// messages returns the system instruction followed by the user's text, unmodified.
func (p *Prompt) messages(text string) []chatMessage {
	return []chatMessage{
		{Role: roleSystem, Content: p.system()},
		{Role: roleUser, Content: text},
	}
}
