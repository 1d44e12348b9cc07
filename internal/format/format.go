// Package format renders inbound user messages for the operator channel.
package format

import (
	"fmt"
	"strings"

	"github.com/xaenox/support-bot/internal/correlation"
	"github.com/xaenox/support-bot/internal/models"
)

const TimeLayout = "2006-01-02 15:04:05"

// nameEscaper keeps display names from forging #ID or #MSG markers.
var nameEscaper = strings.NewReplacer("#", "＃")

// UserInfo renders "First Last (@handle)", leaving out the parts that are empty.
func UserInfo(u models.Identity) string {
	first := nameEscaper.Replace(strings.TrimSpace(u.FirstName))
	last := nameEscaper.Replace(strings.TrimSpace(u.LastName))
	name := strings.TrimSpace(first + " " + last)
	if u.Username != "" {
		if name != "" {
			name += " "
		}
		name += "(@" + u.Username + ")"
	}
	return name
}

// ForOperator builds the text posted to the operator channel for msg.
// The #ID and #MSG markers it writes are read back by correlation.ExtractIDs
// when the operator replies.
func ForOperator(msg models.InboundMessage, from models.Identity) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s]\n", msg.Date.UTC().Format(TimeLayout))
	fmt.Fprintf(&b, "From: %s #ID%d\n", UserInfo(from), from.ID)
	fmt.Fprintf(&b, "#MSG%d", msg.ID)

	if msg.ReplyTo != nil {
		if adminID, ok := correlation.DecodeTag(msg.ReplyTo.Text); ok {
			fmt.Fprintf(&b, "\n↩️ Reply to admin message #%d", adminID)
		} else {
			fmt.Fprintf(&b, "\n↩️ Reply to message #%d", msg.ReplyTo.ID)
		}
	}

	if msg.Text != "" {
		fmt.Fprintf(&b, "\nMessage: %s", msg.Text)
	}

	if desc := Attachment(msg.Attachment); desc != "" {
		fmt.Fprintf(&b, "\nAttachments: %s", desc)
		if msg.Caption != "" {
			fmt.Fprintf(&b, " with caption: %s", msg.Caption)
		}
	}

	return b.String()
}

// Attachment describes an attachment in one bracketed token, or returns ""
// when there is none.
func Attachment(a models.Attachment) string {
	switch a.Kind {
	case models.AttachmentPhoto:
		return "[Photo]"
	case models.AttachmentVideo:
		return "[Video]"
	case models.AttachmentDocument:
		return fmt.Sprintf("[File: %s]", a.FileName)
	case models.AttachmentVoice:
		return "[Voice message]"
	case models.AttachmentAudio:
		title := a.Title
		if title == "" {
			title = "Unknown title"
		}
		return fmt.Sprintf("[Audio: %s]", title)
	default:
		return ""
	}
}
