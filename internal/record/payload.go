package record

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/hazemdh/leadbot-go/internal/errors"
)

// PayloadKind identifies a decoded message payload variant.
type PayloadKind int

// Payload variants, closed set.
const (
	KindText PayloadKind = iota
	KindAttachment
	KindReaction
	KindUnsupported
	KindParseError
)

// Fixed placeholder strings rendered for non-text payloads.
const (
	PlaceholderEmpty      = "[Vide]"
	PlaceholderParseError = "[Erreur parsing]"
	PlaceholderReaction   = "[Réaction]"
	PlaceholderNonText    = "[Message non texte]"
	attachmentPrefix      = "[Pièce jointe] "
	defaultAttachmentName = "Fichier"
)

// Payload is the decoded representation of one message payload.
// rendered always holds the final display string, so decoding happens
// exactly once per row.
type Payload struct {
	Kind     PayloadKind
	rendered string
	err      error
}

// Render returns the display string for the payload.
func (p Payload) Render() string {
	return p.rendered
}

// Err reports the decode failure recovered into a ParseError variant.
// It wraps ErrMalformedRecord; nil for every other variant.
func (p Payload) Err() error {
	return p.err
}

func parseError(cause string) Payload {
	return Payload{
		Kind:     KindParseError,
		rendered: PlaceholderParseError,
		err:      fmt.Errorf("%w: %s", apperrors.ErrMalformedRecord, cause),
	}
}

// ParsePayload decodes a raw message payload string.
//
// Branches, in priority order:
//  1. empty or whitespace-only input        -> Unsupported "[Vide]"
//  2. invalid JSON (after un-doubling "")   -> ParseError "[Erreur parsing]"
//     (a literal "null" payload counts as invalid: it has no fields to read)
//  3. type=="text"                          -> Text (trimmed text field)
//  4. type=="attachment"                    -> Attachment "[Pièce jointe] <fileName>"
//  5. reaction marker, or type=="unsupported" -> Reaction "[Réaction]"
//  6. anything else                         -> Unsupported "[Message non texte]"
//
// The order is a policy, not an accident: a payload that is both
// malformed and mentions a reaction must still resolve to ParseError.
// ParsePayload never fails; every input maps to exactly one variant.
func ParsePayload(raw string) Payload {
	if strings.TrimSpace(raw) == "" {
		return Payload{Kind: KindUnsupported, rendered: PlaceholderEmpty}
	}

	// Exports double-escape embedded quotes; undo before parsing.
	fixed := strings.ReplaceAll(raw, `""`, `"`)

	var data map[string]any
	if err := json.Unmarshal([]byte(fixed), &data); err != nil {
		return parseError(err.Error())
	}
	if data == nil {
		// Literal "null" parses fine but carries no fields to read.
		return parseError("payload is null")
	}

	switch data["type"] {
	case "text":
		text, _ := data["text"].(string)
		return Payload{Kind: KindText, rendered: strings.TrimSpace(text)}

	case "attachment":
		if att, present := data["attachment"]; present {
			attMap, ok := att.(map[string]any)
			if !ok {
				// attachment key exists but is not an object
				return parseError("attachment is not an object")
			}
			if name, ok := attMap["fileName"].(string); ok && name != "" {
				return Payload{Kind: KindAttachment, rendered: attachmentPrefix + name}
			}
		}
		return Payload{Kind: KindAttachment, rendered: attachmentPrefix + defaultAttachmentName}
	}

	if strings.Contains(fixed, "reaction") || data["type"] == "unsupported" {
		return Payload{Kind: KindReaction, rendered: PlaceholderReaction}
	}

	return Payload{Kind: KindUnsupported, rendered: PlaceholderNonText}
}
