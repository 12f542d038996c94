package gmail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/gmail/v1"
)

func TestMessageToRow(t *testing.T) {
	msg := &gmail.Message{
		Id:           "m1",
		ThreadId:     "t1",
		Snippet:      "Can you review the draft?",
		LabelIds:     []string{"INBOX", "IMPORTANT"},
		InternalDate: 1772443800000,
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "subject", Value: "Draft review"},
				{Name: "From", Value: "Ana <ana@corp.test>"},
			},
			Parts: []*gmail.MessagePart{
				{MimeType: "text/plain"},
				{Filename: "draft.pdf"},
			},
		},
	}

	row := MessageToRow(msg)

	assert.Equal(t, "m1", row.String("id"))
	assert.Equal(t, "t1", row.String("thread_id"))
	assert.Equal(t, "Draft review", row.String("subject"))
	assert.Equal(t, "Ana <ana@corp.test>", row.String("from_"))
	assert.Equal(t, "Can you review the draft?", row.String("snippet"))
	assert.Equal(t, []string{"INBOX", "IMPORTANT"}, row.Strings("labels"))
	assert.Equal(t, "2026-03-02T09:30:00Z", row.String("email_ts"))
	assert.Equal(t, WebURL+"t1", row.String("display_url"))
	assert.Equal(t, "true", row.String("has_attachment"))
}

func TestMessageToRow_Sparse(t *testing.T) {
	row := MessageToRow(&gmail.Message{Id: "m2"})

	assert.Equal(t, "", row.String("subject"))
	assert.Equal(t, WebURL+"m2", row.String("display_url"))
	_, hasTS := row["email_ts"]
	assert.False(t, hasTS)
	_, hasAttachment := row["has_attachment"]
	assert.False(t, hasAttachment)
}

func TestShouldInclude(t *testing.T) {
	tests := []struct {
		name string
		msg  *gmail.Message
		want bool
	}{
		{"nil", nil, false},
		{"no id", &gmail.Message{}, false},
		{"inbox", &gmail.Message{Id: "a", LabelIds: []string{"INBOX"}}, true},
		{"spam", &gmail.Message{Id: "a", LabelIds: []string{"SPAM"}}, false},
		{"trash", &gmail.Message{Id: "a", LabelIds: []string{"INBOX", "TRASH"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldInclude(tt.msg))
		})
	}
}
