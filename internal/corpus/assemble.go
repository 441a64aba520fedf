package corpus

import (
	"github.com/hazemdh/leadbot-go/internal/record"
)

// Assemble joins cleaned conversation records with cleaned message
// records. The first element of each input is a header artifact from the
// upstream export and is skipped. Messages are grouped by their sender_id
// and attached to the conversation whose contact_id matches; a
// conversation with no matching group gets an empty message list.
//
// Note the join key pair: messages carry the contact in sender_id, not in
// conversation_id. Rows whose sender_id is empty are unattachable and are
// dropped here.
func Assemble(conversations, messages []record.Record) []MergedConversation {
	if len(conversations) > 0 {
		conversations = conversations[1:]
	}
	if len(messages) > 0 {
		messages = messages[1:]
	}

	bySender := make(map[string][]record.Record)
	for _, m := range messages {
		senderID := m["sender_id"]
		if senderID == "" {
			continue
		}
		bySender[senderID] = append(bySender[senderID], m)
	}

	merged := make([]MergedConversation, 0, len(conversations))
	for _, c := range conversations {
		msgs := bySender[c["contact_id"]]
		if msgs == nil {
			msgs = []record.Record{}
		}
		merged = append(merged, MergedConversation{
			ConversationID:    c["conversation_id"],
			StartTime:         c["start_time"],
			EndTime:           c["end_time"],
			ContactID:         c["contact_id"],
			AssigneeID:        c["assignee_id"],
			IncomingMessages:  c["incoming_messages"],
			OutgoingMessages:  c["outgoing_messages"],
			LastReplyTime:     c["last_reply_time"],
			Status:            c["status"],
			Summary:           c["summary"],
			LastAssigneeID:    c["last_assignee_id"],
			FirstReplyTime:    c["first_reply_time"],
			TotalHandlingTime: c["total_handling_time"],
			RecipientID:       c["recipient_id"],
			Messages:          msgs,
		})
	}
	return merged
}

// FilterToTrainingText projects merged conversations down to the training
// corpus: only messages whose message_type is "text" survive, each reduced
// to timestamp, sender type and rendered text. Conversations left with no
// messages are dropped.
func FilterToTrainingText(merged []MergedConversation) Corpus {
	out := make(Corpus, 0, len(merged))
	for _, mc := range merged {
		var msgs []Message
		for _, m := range mc.Messages {
			if m["message_type"] != "text" {
				continue
			}
			msgs = append(msgs, Message{
				Timestamp:  m["timestamp"],
				SenderType: m["sender_type"],
				Text:       m["text"],
			})
		}
		if len(msgs) == 0 {
			continue
		}
		out = append(out, Conversation{
			ConversationID:    mc.ConversationID,
			StartTime:         mc.StartTime,
			EndTime:           mc.EndTime,
			ContactID:         mc.ContactID,
			AssigneeID:        mc.AssigneeID,
			IncomingMessages:  mc.IncomingMessages,
			OutgoingMessages:  mc.OutgoingMessages,
			LastReplyTime:     mc.LastReplyTime,
			Status:            mc.Status,
			Summary:           mc.Summary,
			LastAssigneeID:    mc.LastAssigneeID,
			FirstReplyTime:    mc.FirstReplyTime,
			TotalHandlingTime: mc.TotalHandlingTime,
			RecipientID:       mc.RecipientID,
			Messages:          msgs,
		})
	}
	return out
}
