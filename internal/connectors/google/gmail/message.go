package gmail

import (
	"strings"
	"time"

	"google.golang.org/api/gmail/v1"

	"github.com/custodia-labs/flightdeck/internal/core/domain"
)

// WebURL is the Gmail web UI prefix for message links.
const WebURL = "https://mail.google.com/mail/u/0/#inbox/"

// MessageToRow converts a Gmail message fetched with metadata format to a
// raw email row.
func MessageToRow(msg *gmail.Message) domain.RawRow {
	row := domain.RawRow{
		"id":          msg.Id,
		"thread_id":   msg.ThreadId,
		"subject":     header(msg, "Subject"),
		"from_":       header(msg, "From"),
		"snippet":     msg.Snippet,
		"labels":      msg.LabelIds,
		"display_url": WebURL + threadOrID(msg),
	}
	if msg.InternalDate > 0 {
		row["email_ts"] = time.UnixMilli(msg.InternalDate).UTC().Format(time.RFC3339)
	}
	if hasAttachment(msg.Payload) {
		row["has_attachment"] = "true"
	}
	return row
}

func header(msg *gmail.Message, name string) string {
	if msg.Payload == nil {
		return ""
	}
	for _, h := range msg.Payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

func threadOrID(msg *gmail.Message) string {
	if msg.ThreadId != "" {
		return msg.ThreadId
	}
	return msg.Id
}

func hasAttachment(part *gmail.MessagePart) bool {
	if part == nil {
		return false
	}
	if part.Filename != "" {
		return true
	}
	for _, p := range part.Parts {
		if hasAttachment(p) {
			return true
		}
	}
	return false
}

// ShouldInclude reports whether a message belongs in the snapshot.
// Spam and trash are skipped.
func ShouldInclude(msg *gmail.Message) bool {
	if msg == nil || msg.Id == "" {
		return false
	}
	for _, label := range msg.LabelIds {
		if label == "SPAM" || label == "TRASH" {
			return false
		}
	}
	return true
}
