// Package record normalizes raw tabular exports into schema-conformant rows.
// The three sources (contacts, conversations, messages) arrive as headerless
// positional CSV with drifting column counts; normalization pins each row to
// a fixed schema, coerces timestamps, and decodes message payloads.
package record

// Schema is an ordered list of field names for one raw source.
type Schema []string

// ContactsSchema names the raw contact export columns.
var ContactsSchema = Schema{
	"ContactID", "FirstName", "LastName", "PhoneNumber", "Email",
	"Country", "Language", "Tags", "Status", "Lifecycle",
	"Assignee", "LastInteractionTime", "DateTimeCreated",
	"Channels", "Lead Source", "State", "Moyenne Bac",
	"Last Degree", "Graduation Year", "Current Degree",
	"Degree Sought", "Degree Choice", "Scholarship",
	"University", "Qualifying URL", "Eligible", "Qualifying Score",
}

// ContactsDateFields are contact columns parsed as timestamps.
var ContactsDateFields = map[string]bool{
	"LastInteractionTime": true,
	"DateTimeCreated":     true,
}

// ConversationsSchema names the raw conversation export columns.
var ConversationsSchema = Schema{
	"conversation_id", "start_time", "end_time", "contact_id",
	"assignee_id", "incoming_messages", "outgoing_messages",
	"last_reply_time", "status", "summary", "last_assignee_id",
	"first_reply_time", "total_handling_time", "recipient_id",
}

// ConversationsDateFields are conversation columns parsed as timestamps.
var ConversationsDateFields = map[string]bool{
	"start_time":       true,
	"end_time":         true,
	"last_reply_time":  true,
	"first_reply_time": true,
}

// MessagesSchema names the raw message export columns.
var MessagesSchema = Schema{
	"timestamp", "conversation_id", "sender_type", "sender_id",
	"message_id", "message_type", "direction", "payload", "recipient_id",
}

// MessagesDateFields are message columns parsed as timestamps.
var MessagesDateFields = map[string]bool{
	"timestamp": true,
}
