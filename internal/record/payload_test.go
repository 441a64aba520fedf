package record

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/hazemdh/leadbot-go/internal/errors"
)

func TestParsePayload(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind PayloadKind
		want     string
	}{
		{
			name:     "empty string is Unsupported",
			raw:      "",
			wantKind: KindUnsupported,
			want:     "[Vide]",
		},
		{
			name:     "whitespace only is Unsupported",
			raw:      "   \t ",
			wantKind: KindUnsupported,
			want:     "[Vide]",
		},
		{
			name:     "malformed JSON is ParseError",
			raw:      `{"type":"text","text":`,
			wantKind: KindParseError,
			want:     "[Erreur parsing]",
		},
		{
			name:     "JSON array is ParseError",
			raw:      `["text"]`,
			wantKind: KindParseError,
			want:     "[Erreur parsing]",
		},
		{
			name:     "null payload is ParseError",
			raw:      "null",
			wantKind: KindParseError,
			want:     "[Erreur parsing]",
		},
		{
			name:     "text payload",
			raw:      `{"type":"text","text":"  salut  "}`,
			wantKind: KindText,
			want:     "salut",
		},
		{
			name:     "text payload with doubled quotes",
			raw:      `{""type"":""text"",""text"":""ahla""}`,
			wantKind: KindText,
			want:     "ahla",
		},
		{
			name:     "text payload with missing text field",
			raw:      `{"type":"text"}`,
			wantKind: KindText,
			want:     "",
		},
		{
			name:     "attachment payload",
			raw:      `{"type":"attachment","attachment":{"fileName":"cv.pdf"}}`,
			wantKind: KindAttachment,
			want:     "[Pièce jointe] cv.pdf",
		},
		{
			name:     "attachment payload with doubled quotes",
			raw:      `{""type"":""attachment"",""attachment"":{""fileName"":""cv.pdf""}}`,
			wantKind: KindAttachment,
			want:     "[Pièce jointe] cv.pdf",
		},
		{
			name:     "attachment without fileName uses default",
			raw:      `{"type":"attachment","attachment":{}}`,
			wantKind: KindAttachment,
			want:     "[Pièce jointe] Fichier",
		},
		{
			name:     "attachment without attachment object uses default",
			raw:      `{"type":"attachment"}`,
			wantKind: KindAttachment,
			want:     "[Pièce jointe] Fichier",
		},
		{
			name:     "reaction marker anywhere",
			raw:      `{"reaction":{"emoji":"👍"}}`,
			wantKind: KindReaction,
			want:     "[Réaction]",
		},
		{
			name:     "unsupported type is Reaction",
			raw:      `{"type":"unsupported"}`,
			wantKind: KindReaction,
			want:     "[Réaction]",
		},
		{
			name:     "unknown object is non-text placeholder",
			raw:      `{"type":"sticker","id":42}`,
			wantKind: KindUnsupported,
			want:     "[Message non texte]",
		},
		{
			name:     "malformed payload mentioning reaction is still ParseError",
			raw:      `{"reaction": }`,
			wantKind: KindParseError,
			want:     "[Erreur parsing]",
		},
		{
			name:     "text type wins over reaction marker",
			raw:      `{"type":"text","text":"I sent a reaction"}`,
			wantKind: KindText,
			want:     "I sent a reaction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePayload(tt.raw)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.want, got.Render())
		})
	}
}

func TestParsePayload_Err(t *testing.T) {
	for _, raw := range []string{"null", "not json at all", `{"type":"attachment","attachment":"cv.pdf"}`} {
		got := ParsePayload(raw)
		assert.Equal(t, KindParseError, got.Kind, "input %q", raw)
		assert.ErrorIs(t, got.Err(), apperrors.ErrMalformedRecord, "input %q", raw)
	}

	assert.NoError(t, ParsePayload(`{"type":"text","text":"salut"}`).Err())
	assert.NoError(t, ParsePayload("").Err())
}

// Fuzz-style sweep: no input may produce an empty render for non-text kinds,
// and decoding must never panic.
func TestParsePayload_NeverPanics(t *testing.T) {
	inputs := []string{
		"", " ", "null", "42", `"just a string"`, "[]", "{}",
		`{"type":null}`, `{"type":42}`, `{"type":"attachment","attachment":"cv.pdf"}`,
		"{{{{", `{"a":"b"`, "\x00\x01", `{"type":"text","text":null}`,
	}
	for _, in := range inputs {
		got := ParsePayload(in)
		if got.Kind != KindText {
			assert.NotEmpty(t, got.Render(), "input %q", in)
		}
	}
}
