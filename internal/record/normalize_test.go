package record

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/hazemdh/leadbot-go/internal/errors"
)

func TestNormalize_PadsAndTruncates(t *testing.T) {
	schema := Schema{"a", "b", "c"}

	rows := [][]string{
		{"1", "2", "3", "4", "5"}, // extra columns discarded
		{"1"},                     // missing trailing columns padded
		{},                        // fully empty row still yields a record
	}

	got := Normalize(rows, schema, nil)
	require.Len(t, got, 3)

	assert.Equal(t, Record{"a": "1", "b": "2", "c": "3"}, got[0])
	assert.Equal(t, Record{"a": "1", "b": "", "c": ""}, got[1])
	assert.Equal(t, Record{"a": "", "b": "", "c": ""}, got[2])
}

func TestNormalize_DateCoercion(t *testing.T) {
	schema := Schema{"id", "created"}
	dates := map[string]bool{"created": true}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"valid date", "2024-03-15 10:30:00", "2024-03-15T10:30:00"},
		{"empty date", "", ""},
		{"garbage date", "yesterday", ""},
		{"wrong format", "15/03/2024", ""},
		{"date only", "2024-03-15", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize([][]string{{"x", tt.in}}, schema, dates)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0]["created"])
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	rows := [][]string{
		{"c1", "2024-01-01 00:00:00", "", "contact-9"},
		{"c2", "bad-date", "x", "contact-8", "extra"},
	}

	first := Normalize(rows, ConversationsSchema, ConversationsDateFields)
	second := Normalize(rows, ConversationsSchema, ConversationsDateFields)

	if !reflect.DeepEqual(first, second) {
		t.Error("Normalize is not deterministic over identical input")
	}
}

func TestNormalizeMessages_DropsMissingMessageID(t *testing.T) {
	rows := [][]string{
		{"2024-01-01 08:00:00", "conv1", "contact", "C1", "m1", "text", "in", `{"type":"text","text":"hi"}`, "r1"},
		{"2024-01-01 08:01:00", "conv1", "user", "U1", "", "text", "out", `{"type":"text","text":"hello"}`, "r1"},
		{"2024-01-01 08:02:00", "conv1", "contact", "C1"}, // row too short to carry a message_id
		{"2024-01-01 08:03:00", "conv1", "user", "U1", "m2", "text", "out", `{"type":"text","text":"bye"}`, "r1"},
	}

	got, malformed := NormalizeMessages(rows)
	require.Len(t, got, 2, "cardinality must decrease by exactly the dropped row count")
	assert.Zero(t, malformed)

	assert.Equal(t, "m1", got[0]["message_id"])
	assert.Equal(t, "hi", got[0]["text"])
	assert.Equal(t, "2024-01-01T08:00:00", got[0]["timestamp"])
	assert.Equal(t, "m2", got[1]["message_id"])
}

func TestNormalizeMessages_PayloadRendering(t *testing.T) {
	row := func(payload string) []string {
		return []string{"2024-01-01 08:00:00", "conv1", "contact", "C1", "m1", "attachment", "in", payload, "r1"}
	}

	got, malformed := NormalizeMessages([][]string{
		row(`{""type"":""attachment"",""attachment"":{""fileName"":""cv.pdf""}}`),
		row("not json at all"),
		row(""),
	})
	require.Len(t, got, 3)

	assert.Equal(t, "[Pièce jointe] cv.pdf", got[0]["text"])
	assert.Equal(t, "[Erreur parsing]", got[1]["text"])
	assert.Equal(t, "[Vide]", got[2]["text"])
	assert.Equal(t, 1, malformed, "only the unparseable payload counts as recovered")
}

func TestReadCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "messages.csv")

	content := "a,b,c\n1,2\nx,y,z,w\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rows, err := ReadCSV(path)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"1", "2"}, rows[1])
	assert.Equal(t, []string{"x", "y", "z", "w"}, rows[2])
}

func TestReadCSV_Missing(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.True(t, apperrors.IsSourceNotFound(err))
}
