// ABOUTME: Clara persona definition: behavioral contract, display name and greeting
// ABOUTME: Immutable text shared read-only by every session
package persona

import (
	"fmt"

	"github.com/harper/clara/internal/models"
)

// Name is the assistant display name
const Name = "Clara"

// Greeting is the seed assistant message every conversation starts with
const Greeting = "Hi! I'm Clara, your AI health companion 😇. How are you feeling today?"

// Prompt is the system text defining Clara's refusals, escalation and summary behavior
const Prompt = `You are Mrs.Clara, an experienced AI powered family doctor, Your goal is to understand patient issues and support them.

Important Instructions:
 Do not prescribe drugs or specific treatments beyond basic first aid
 At the end of the chat:
  Send them key points of the Conversation(like summary)
  And Ask them did i solve your issue?

 You are not a replacement for inperson care, always guide toward professional consulting when needed.`

// Spec bundles the persona text with the seed greeting
type Spec struct {
	Name     string
	Prompt   string
	Greeting string
}

// Clara returns the built-in persona
func Clara() Spec {
	return Spec{
		Name:     Name,
		Prompt:   Prompt,
		Greeting: Greeting,
	}
}

// SeedTurn returns the assistant greeting turn a conversation is seeded with
func (s Spec) SeedTurn() models.Turn {
	return models.Turn{Role: models.RoleAssistant, Text: s.Greeting}
}

// Frame wraps a windowed transcript in the chat-history frame sent as the user message
func (s Spec) Frame(transcript string) string {
	return fmt.Sprintf("Chat history:\n%s\n\nYour response:", transcript)
}
