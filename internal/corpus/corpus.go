// Package corpus defines the labeled conversation corpus that training,
// augmentation and response retrieval all share, plus the JSON artifact
// I/O every pipeline stage goes through. A stage never mutates an
// artifact in place: it reads one file and writes the next.
package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	apperrors "github.com/hazemdh/leadbot-go/internal/errors"
	"github.com/hazemdh/leadbot-go/internal/record"
)

// Sender types observed in message records.
const (
	SenderContact = "contact"
	SenderUser    = "user"
	SenderEcho    = "echo"
)

// Message is one text message inside a training conversation.
// Ordering within a conversation is chronological and is preserved
// through every transform stage.
type Message struct {
	Timestamp  string `json:"timestamp,omitempty"`
	SenderType string `json:"sender_type"`
	Text       string `json:"text"`
}

// Conversation is one labeled conversation. Status is the training label.
// The identifier and timing fields ride along from the raw export and are
// omitted when absent (synthetic conversations carry only status, summary
// and messages).
type Conversation struct {
	ConversationID    string `json:"conversation_id,omitempty"`
	StartTime         string `json:"start_time,omitempty"`
	EndTime           string `json:"end_time,omitempty"`
	ContactID         string `json:"contact_id,omitempty"`
	AssigneeID        string `json:"assignee_id,omitempty"`
	IncomingMessages  string `json:"incoming_messages,omitempty"`
	OutgoingMessages  string `json:"outgoing_messages,omitempty"`
	LastReplyTime     string `json:"last_reply_time,omitempty"`
	Status            string `json:"status"`
	Summary           string `json:"summary"`
	LastAssigneeID    string `json:"last_assignee_id,omitempty"`
	FirstReplyTime    string `json:"first_reply_time,omitempty"`
	TotalHandlingTime string `json:"total_handling_time,omitempty"`
	RecipientID       string `json:"recipient_id,omitempty"`

	Messages []Message `json:"messages"`
}

// Corpus is the ordered set of labeled training conversations.
type Corpus []Conversation

// MergedConversation is a conversation with its raw normalized message
// records attached, as produced by the merge stage. The training filter
// projects it down to a Conversation.
type MergedConversation struct {
	ConversationID    string `json:"conversation_id"`
	StartTime         string `json:"start_time"`
	EndTime           string `json:"end_time"`
	ContactID         string `json:"contact_id"`
	AssigneeID        string `json:"assignee_id"`
	IncomingMessages  string `json:"incoming_messages"`
	OutgoingMessages  string `json:"outgoing_messages"`
	LastReplyTime     string `json:"last_reply_time"`
	Status            string `json:"status"`
	Summary           string `json:"summary"`
	LastAssigneeID    string `json:"last_assignee_id"`
	FirstReplyTime    string `json:"first_reply_time"`
	TotalHandlingTime string `json:"total_handling_time"`
	RecipientID       string `json:"recipient_id"`

	Messages []record.Record `json:"messages"`
}

// Document flattens a conversation into one training text: all message
// texts joined by a single space.
func (c Conversation) Document() string {
	doc := ""
	for i, m := range c.Messages {
		if i > 0 {
			doc += " "
		}
		doc += m.Text
	}
	return doc
}

// CandidateResponses collects, for every conversation labeled with
// status, the text of its first user or echo message. At most one
// candidate per conversation, in corpus order.
func (c Corpus) CandidateResponses(status string) []string {
	var candidates []string
	for _, conv := range c {
		if conv.Status != status {
			continue
		}
		for _, m := range conv.Messages {
			if m.SenderType == SenderUser || m.SenderType == SenderEcho {
				if m.Text != "" {
					candidates = append(candidates, m.Text)
				}
				break
			}
		}
	}
	return candidates
}

// Labels returns the distinct status labels in corpus order of first
// appearance.
func (c Corpus) Labels() []string {
	seen := make(map[string]bool)
	var labels []string
	for _, conv := range c {
		if !seen[conv.Status] {
			seen[conv.Status] = true
			labels = append(labels, conv.Status)
		}
	}
	return labels
}

// ReadJSON loads a JSON artifact into v. A missing file maps to
// ErrSourceNotFound so callers can skip the owning stage.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", path, apperrors.ErrSourceNotFound)
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// WriteJSON writes v to path as indented, non-ASCII-escaped UTF-8 JSON.
// The write is atomic: a temp file in the same directory is renamed over
// the target, so a concurrent reader sees either the old complete
// artifact or the new one.
func WriteJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	enc := json.NewEncoder(tmp)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp for %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename temp to %s: %w", path, err)
	}
	return nil
}

// Load reads a corpus artifact.
func Load(path string) (Corpus, error) {
	var c Corpus
	if err := ReadJSON(path, &c); err != nil {
		return nil, err
	}
	return c, nil
}

// Save writes a corpus artifact.
func Save(path string, c Corpus) error {
	return WriteJSON(path, c)
}
