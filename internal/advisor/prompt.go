package advisor

import (
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/caradvisor/internal/conversation"
)

// DefaultInstruction is the system message sent after the history on every call.
const DefaultInstruction = "You're a knowledgeable car agent. Let's find the best car for your needs. Please provide information about your preferences such as budget, reliability, speed, engine type, and any other relevant factors."

// BuildMessages lays out the request: every history turn in order, then the
// instruction. When history does not already end with the user turn for
// input, input is appended as the latest user message.
//
// Replies recorded with conversation.RoleSystem are sent with the assistant
// role so the model sees them as its own earlier answers.
func BuildMessages(history []conversation.Turn, instruction, input string) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	for _, t := range history {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: wireRole(t.Role), Content: t.Text})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: instruction})
	if !endsWithInput(history, input) {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: input})
	}
	return msgs
}

func wireRole(r conversation.Role) string {
	if r == conversation.RoleSystem {
		return openai.ChatMessageRoleAssistant
	}
	return openai.ChatMessageRoleUser
}

func endsWithInput(history []conversation.Turn, input string) bool {
	if len(history) == 0 {
		return false
	}
	last := history[len(history)-1]
	return last.Role == conversation.RoleUser && last.Text == input
}
