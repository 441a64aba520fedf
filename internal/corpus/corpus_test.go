package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/hazemdh/leadbot-go/internal/errors"
)

func sampleCorpus() Corpus {
	return Corpus{
		{
			Status:  "interested",
			Summary: "asked about enrollment",
			Messages: []Message{
				{Timestamp: "2024-03-15T10:30:00", SenderType: SenderContact, Text: "salut"},
				{Timestamp: "2024-03-15T10:31:00", SenderType: SenderUser, Text: "ahla, kifech najem n3awnek"},
			},
		},
		{
			Status:  "interested",
			Summary: "pricing question",
			Messages: []Message{
				{SenderType: SenderContact, Text: "chhal el prix"},
				{SenderType: SenderEcho, Text: "el prix yebda men 300dt"},
			},
		},
		{
			Status:  "not_interested",
			Summary: "declined",
			Messages: []Message{
				{SenderType: SenderContact, Text: "non merci"},
			},
		},
	}
}

func TestDocument(t *testing.T) {
	c := sampleCorpus()[0]
	assert.Equal(t, "salut ahla, kifech najem n3awnek", c.Document())
	assert.Equal(t, "", Conversation{}.Document())
}

func TestCandidateResponses(t *testing.T) {
	c := sampleCorpus()

	got := c.CandidateResponses("interested")
	assert.Equal(t, []string{"ahla, kifech najem n3awnek", "el prix yebda men 300dt"}, got)

	// The declined conversation has no user or echo message.
	assert.Empty(t, c.CandidateResponses("not_interested"))
	assert.Empty(t, c.CandidateResponses("unknown_label"))
}

func TestCandidateResponsesFirstOnly(t *testing.T) {
	c := Corpus{{
		Status: "interested",
		Messages: []Message{
			{SenderType: SenderContact, Text: "salut"},
			{SenderType: SenderUser, Text: "first reply"},
			{SenderType: SenderUser, Text: "second reply"},
		},
	}}
	assert.Equal(t, []string{"first reply"}, c.CandidateResponses("interested"))
}

func TestLabels(t *testing.T) {
	labels := sampleCorpus().Labels()
	assert.Equal(t, []string{"interested", "not_interested"}, labels)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "training_dataset.json")

	want := sampleCorpus()
	require.NoError(t, Save(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Non-ASCII text must be written as UTF-8, not escaped.
	withAccents := Corpus{{Status: "interested", Summary: "présentation", Messages: []Message{
		{SenderType: SenderContact, Text: "réaction à l'école"},
	}}}
	require.NoError(t, Save(path, withAccents))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "réaction à l'école")
	assert.NotContains(t, string(raw), `\u00e9`)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.True(t, apperrors.IsSourceNotFound(err))
}

func TestWriteJSONAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "artifact.json")

	require.NoError(t, WriteJSON(path, map[string]string{"a": "1"}))
	require.NoError(t, WriteJSON(path, map[string]string{"a": "2"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")

	var got map[string]string
	require.NoError(t, ReadJSON(path, &got))
	assert.Equal(t, "2", got["a"])
}
