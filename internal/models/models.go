package models

import "time"

// Identity is the sender of an inbound message as reported by Telegram.
type Identity struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

type AttachmentKind string

const (
	AttachmentNone     AttachmentKind = ""
	AttachmentPhoto    AttachmentKind = "photo"
	AttachmentVideo    AttachmentKind = "video"
	AttachmentDocument AttachmentKind = "document"
	AttachmentVoice    AttachmentKind = "voice"
	AttachmentAudio    AttachmentKind = "audio"
)

// Attachment is the single media item carried by a message.
// FileName is set for documents, Title for audio.
type Attachment struct {
	Kind     AttachmentKind `json:"kind"`
	FileID   string         `json:"file_id"`
	FileName string         `json:"file_name,omitempty"`
	Title    string         `json:"title,omitempty"`
}

// ReplyTarget is the message an inbound message replies to. Text holds the
// replied message's text, or its caption when it has no text.
type ReplyTarget struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// InboundMessage is the platform-independent view of a received message.
type InboundMessage struct {
	ID         int          `json:"id"`
	ChatID     int64        `json:"chat_id"`
	Text       string       `json:"text,omitempty"`
	Caption    string       `json:"caption,omitempty"`
	Attachment Attachment   `json:"attachment"`
	ReplyTo    *ReplyTarget `json:"reply_to,omitempty"`
	Date       time.Time    `json:"date"`
}

func (m InboundMessage) IsReply() bool {
	return m.ReplyTo != nil
}

func (m InboundMessage) HasAttachment() bool {
	return m.Attachment.Kind != AttachmentNone
}

// Content returns the text of the message, or its caption when there is no text.
func (m InboundMessage) Content() string {
	if m.Text != "" {
		return m.Text
	}
	return m.Caption
}
