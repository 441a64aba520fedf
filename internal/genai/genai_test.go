package genai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazemdh/leadbot-go/internal/corpus"
)

const conversationJSON = `[
  {"status": "interested", "summary": "demande de prix", "messages": [
    {"sender_type": "contact", "text": "chhal el prix"},
    {"sender_type": "user", "text": "el prix yebda men 300dt"}
  ]}
]`

func TestDecodeConversations(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"plain array", conversationJSON},
		{"code fences", "```json\n" + conversationJSON + "\n```"},
		{"envelope object", `{"conversations": ` + conversationJSON + `}`},
		{"leading prose", "Voici les conversations :\n" + conversationJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeConversations(tt.in)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "interested", got[0].Status)
			require.Len(t, got[0].Messages, 2)
			assert.Equal(t, "chhal el prix", got[0].Messages[0].Text)
		})
	}
}

func TestDecodeConversationsRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "pas de json ici", `{"foo": 1}`} {
		_, err := decodeConversations(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestValidateConversations(t *testing.T) {
	in := []corpus.Conversation{
		{Status: "interested", Messages: []corpus.Message{{SenderType: "contact", Text: "salut"}}},
		{Status: "", Messages: []corpus.Message{{SenderType: "contact", Text: "salut"}}},
		{Status: "interested", Messages: nil},
		{Status: "interested", Messages: []corpus.Message{{SenderType: "", Text: "salut"}}},
		{Status: "interested", Messages: []corpus.Message{{SenderType: "contact", Text: "   "}}},
	}
	got := validateConversations(in)
	require.Len(t, got, 1)
	assert.Equal(t, "salut", got[0].Messages[0].Text)
}

func TestAugmentPromptEmbedsExamples(t *testing.T) {
	examples := []corpus.Conversation{
		{Status: "interested", Summary: "prix", Messages: []corpus.Message{{SenderType: "contact", Text: "chhal el prix"}}},
	}
	prompt, err := AugmentPrompt("interested", 10, examples)
	require.NoError(t, err)
	assert.Contains(t, prompt, `"interested"`)
	assert.Contains(t, prompt, "10")
	assert.Contains(t, prompt, "chhal el prix")
}

func TestCleanPrompt(t *testing.T) {
	batch := []corpus.Conversation{
		{Status: "interested", Messages: []corpus.Message{{SenderType: "contact", Text: "saalut"}}},
	}
	prompt, err := CleanPrompt(batch)
	require.NoError(t, err)
	assert.Contains(t, prompt, "saalut")
	assert.Contains(t, prompt, "1 conversations")
}
