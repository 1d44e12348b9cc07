package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/xaenox/support-bot/internal/models"
)

// toInbound converts a Telegram message. It reports false for messages that
// carry no text, no caption and no supported attachment (stickers, locations,
// contacts). Users still get those forwarded as a header-only text.
func toInbound(m *tgbotapi.Message) (models.InboundMessage, bool) {
	msg := models.InboundMessage{
		ID:         m.MessageID,
		Text:       m.Text,
		Caption:    m.Caption,
		Attachment: attachmentOf(m),
		Date:       m.Time().UTC(),
	}
	if m.Chat != nil {
		msg.ChatID = m.Chat.ID
	}
	if r := m.ReplyToMessage; r != nil {
		text := r.Text
		if text == "" {
			text = r.Caption
		}
		msg.ReplyTo = &models.ReplyTarget{ID: r.MessageID, Text: text}
	}

	ok := msg.Text != "" || msg.Caption != "" || msg.HasAttachment()
	return msg, ok
}

// attachmentOf picks one attachment in the order photo, video, document,
// voice, audio. For photos the largest size is used.
func attachmentOf(m *tgbotapi.Message) models.Attachment {
	switch {
	case len(m.Photo) > 0:
		return models.Attachment{Kind: models.AttachmentPhoto, FileID: m.Photo[len(m.Photo)-1].FileID}
	case m.Video != nil:
		return models.Attachment{Kind: models.AttachmentVideo, FileID: m.Video.FileID}
	case m.Document != nil:
		return models.Attachment{Kind: models.AttachmentDocument, FileID: m.Document.FileID, FileName: m.Document.FileName}
	case m.Voice != nil:
		return models.Attachment{Kind: models.AttachmentVoice, FileID: m.Voice.FileID}
	case m.Audio != nil:
		return models.Attachment{Kind: models.AttachmentAudio, FileID: m.Audio.FileID, Title: m.Audio.Title}
	default:
		return models.Attachment{}
	}
}

func toIdentity(u *tgbotapi.User) models.Identity {
	return models.Identity{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.UserName,
	}
}
