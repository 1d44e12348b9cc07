// Package relay sends messages between end-users and the operator channel.
//
// All correlation state travels in the message text: forwards to the
// operator carry the #ID and #MSG markers, replies delivered to users carry a
// correlation tag naming the operator message they came from. Nothing is kept
// in memory between calls, so an Executor is safe for concurrent use.
package relay

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/xaenox/support-bot/internal/correlation"
	"github.com/xaenox/support-bot/internal/format"
	"github.com/xaenox/support-bot/internal/models"
	"github.com/xaenox/support-bot/pkg/config"
)

const (
	MissingUserIDWarning = "⚠️ Could not find the user ID in the message. Make sure you're replying to a forwarded user message."
	sendErrorPrefix      = "⚠️ Error sending message to user: "
)

// ErrUserIDNotFound is returned when the operator replied to a message that
// carries no end-user id.
var ErrUserIDNotFound = errors.New("no user id in replied message")

// Sender is the part of *tgbotapi.BotAPI the executor needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// RelayError wraps a failed outbound call.
type RelayError struct {
	ChatID int64
	Kind   models.AttachmentKind
	Err    error
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("failed to send %s to chat %d: %v", kindName(e.Kind), e.ChatID, e.Err)
}

func (e *RelayError) Unwrap() error {
	return e.Err
}

type ResultKind int

const (
	ResultOK ResultKind = iota
	ResultCorrelationError
	ResultRelayError
)

func (k ResultKind) String() string {
	switch k {
	case ResultOK:
		return "ok"
	case ResultCorrelationError:
		return "correlation_error"
	case ResultRelayError:
		return "relay_error"
	default:
		return "unknown"
	}
}

// Result is the outcome of relaying one event. Err is nil only for ResultOK.
type Result struct {
	Kind ResultKind
	// Sent is the relayed copy, when one was delivered.
	Sent tgbotapi.Message
	// UserID is the end-user the event was relayed to or from.
	UserID int64
	Err    error
}

// DispatchOptions controls a single Dispatch call.
type DispatchOptions struct {
	// Text replaces the original text or caption when non-nil.
	Text *string
	// ReplyTo is the message id to reply to; zero means no reply.
	ReplyTo int
	// AllowWithoutReply lets the send succeed when ReplyTo no longer exists.
	AllowWithoutReply bool
	// TagID, when non-nil, appends the correlation tag for that operator message.
	TagID       *int
	WithRestart bool
}

type Executor struct {
	sender         Sender
	operatorChatID int64
	confirmation   string
	restartButton  string
	logger         *zap.Logger
}

func NewExecutor(sender Sender, cfg config.Config, logger *zap.Logger) *Executor {
	return &Executor{
		sender:         sender,
		operatorChatID: cfg.Telegram.AdminChatID,
		confirmation:   cfg.Messages.Confirmation,
		restartButton:  cfg.Messages.RestartButton,
		logger:         logger,
	}
}

// WithLogger returns a copy of e that logs to logger.
func (e *Executor) WithLogger(logger *zap.Logger) *Executor {
	c := *e
	c.logger = logger
	return &c
}

// RestartKeyboard is the reply keyboard with the single restart button.
func RestartKeyboard(label string) tgbotapi.ReplyKeyboardMarkup {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(label)),
	)
	keyboard.ResizeKeyboard = true
	return keyboard
}

// Dispatch sends msg's content to chatID using the Telegram method matching its
// attachment kind. Media keep their file and carry the text in the caption.
func (e *Executor) Dispatch(ctx context.Context, chatID int64, msg models.InboundMessage, opts DispatchOptions) (tgbotapi.Message, error) {
	kind := msg.Attachment.Kind
	if err := ctx.Err(); err != nil {
		return tgbotapi.Message{}, &RelayError{ChatID: chatID, Kind: kind, Err: err}
	}

	text := msg.Caption
	if kind == models.AttachmentNone {
		text = msg.Text
	}
	if opts.Text != nil {
		text = *opts.Text
	}
	if opts.TagID != nil {
		text += correlation.EncodeTag(*opts.TagID)
	}

	base := tgbotapi.BaseChat{
		ChatID:                   chatID,
		ReplyToMessageID:         opts.ReplyTo,
		AllowSendingWithoutReply: opts.AllowWithoutReply,
	}
	if opts.WithRestart {
		base.ReplyMarkup = RestartKeyboard(e.restartButton)
	}
	file := tgbotapi.FileID(msg.Attachment.FileID)

	var c tgbotapi.Chattable
	switch kind {
	case models.AttachmentPhoto:
		cfg := tgbotapi.NewPhoto(chatID, file)
		cfg.BaseChat = base
		cfg.Caption = text
		c = cfg
	case models.AttachmentVideo:
		cfg := tgbotapi.NewVideo(chatID, file)
		cfg.BaseChat = base
		cfg.Caption = text
		c = cfg
	case models.AttachmentDocument:
		cfg := tgbotapi.NewDocument(chatID, file)
		cfg.BaseChat = base
		cfg.Caption = text
		c = cfg
	case models.AttachmentVoice:
		cfg := tgbotapi.NewVoice(chatID, file)
		cfg.BaseChat = base
		cfg.Caption = text
		c = cfg
	case models.AttachmentAudio:
		cfg := tgbotapi.NewAudio(chatID, file)
		cfg.BaseChat = base
		cfg.Caption = text
		c = cfg
	default:
		cfg := tgbotapi.NewMessage(chatID, text)
		cfg.BaseChat = base
		c = cfg
	}

	sent, err := e.sender.Send(c)
	if err != nil {
		return tgbotapi.Message{}, &RelayError{ChatID: chatID, Kind: kind, Err: err}
	}
	return sent, nil
}

// UserToOperator forwards an end-user message to the operator channel and
// confirms receipt to the sender. Failures are logged, never shown to the user.
func (e *Executor) UserToOperator(ctx context.Context, msg models.InboundMessage, from models.Identity) Result {
	text := format.ForOperator(msg, from)
	opts := DispatchOptions{Text: &text}
	if msg.ReplyTo != nil {
		if adminMsgID, ok := correlation.DecodeTag(msg.ReplyTo.Text); ok {
			e.logger.Info("User is replying to admin message",
				zap.Int64("user_id", from.ID),
				zap.Int("admin_message_id", adminMsgID))
			opts.ReplyTo = adminMsgID
			opts.AllowWithoutReply = true
		}
	}

	sent, err := e.Dispatch(ctx, e.operatorChatID, msg, opts)
	if err != nil {
		e.logger.Error("Failed to forward message to operator",
			zap.Error(err),
			zap.Int64("user_id", from.ID),
			zap.Int("message_id", msg.ID))
		return Result{Kind: ResultRelayError, UserID: from.ID, Err: err}
	}
	e.logger.Info("Forwarded message to operator",
		zap.Int64("user_id", from.ID),
		zap.Int("message_id", msg.ID),
		zap.Int("operator_message_id", sent.MessageID))

	confirm := tgbotapi.NewMessage(from.ID, e.confirmation)
	confirm.ReplyMarkup = RestartKeyboard(e.restartButton)
	if err := e.send(ctx, confirm); err != nil {
		e.logger.Error("Failed to send confirmation to user",
			zap.Error(err),
			zap.Int64("user_id", from.ID))
	}

	return Result{Kind: ResultOK, Sent: sent, UserID: from.ID}
}

// OperatorToUser relays an operator reply to the end-user named in the
// message the operator replied to.
func (e *Executor) OperatorToUser(ctx context.Context, msg models.InboundMessage) Result {
	var replyText string
	if msg.ReplyTo != nil {
		replyText = msg.ReplyTo.Text
	}

	ids := correlation.ExtractIDs(replyText)
	if !ids.HasUserID {
		e.logger.Warn("No user ID found in replied message",
			zap.Int("operator_message_id", msg.ID),
			zap.String("reply_text", replyText))
		e.notifyOperator(ctx, MissingUserIDWarning, 0)
		return Result{Kind: ResultCorrelationError, Err: ErrUserIDNotFound}
	}
	userID := ids.UserID
	e.logger.Info("Extracted reply target",
		zap.Int64("user_id", userID),
		zap.String("user_rule", ids.UserRule),
		zap.Int("original_message_id", ids.MessageID),
		zap.String("message_rule", ids.MessageRule))

	if err := e.typing(ctx, userID); err != nil {
		e.logger.Warn("Failed to send typing action",
			zap.Error(err),
			zap.Int64("user_id", userID))
	}

	tagID := msg.ID
	opts := DispatchOptions{
		TagID:             &tagID,
		WithRestart:       true,
		AllowWithoutReply: true,
	}
	if ids.HasMessageID {
		opts.ReplyTo = ids.MessageID
	}

	sent, err := e.Dispatch(ctx, userID, msg, opts)
	if err != nil {
		e.logger.Error("Failed to relay operator reply",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.Int("operator_message_id", msg.ID))
		e.notifyOperator(ctx, sendErrorPrefix+err.Error(), 0)
		return Result{Kind: ResultRelayError, UserID: userID, Err: err}
	}
	e.logger.Info("Sent operator reply to user",
		zap.Int64("user_id", userID),
		zap.Int("message_id", sent.MessageID))

	e.notifyOperator(ctx, ConfirmationText(userID, msg.ID), msg.ID)

	return Result{Kind: ResultOK, Sent: sent, UserID: userID}
}

// ConfirmationText is posted under an operator reply once it reached the user.
// Its wording is understood by correlation.ExtractIDs, so it can be replied to.
func ConfirmationText(userID int64, operatorMessageID int) string {
	return fmt.Sprintf("✅ Message sent to user #ID%d (message #%d)", userID, operatorMessageID)
}

func (e *Executor) notifyOperator(ctx context.Context, text string, replyTo int) {
	msg := tgbotapi.NewMessage(e.operatorChatID, text)
	msg.ReplyToMessageID = replyTo
	if err := e.send(ctx, msg); err != nil {
		e.logger.Error("Failed to notify operator",
			zap.Error(err),
			zap.Int64("chat_id", e.operatorChatID))
	}
}

func (e *Executor) typing(ctx context.Context, chatID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := e.sender.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
	return err
}

func (e *Executor) send(ctx context.Context, msg tgbotapi.MessageConfig) error {
	if err := ctx.Err(); err != nil {
		return &RelayError{ChatID: msg.ChatID, Err: err}
	}
	if _, err := e.sender.Send(msg); err != nil {
		return &RelayError{ChatID: msg.ChatID, Err: err}
	}
	return nil
}

func kindName(kind models.AttachmentKind) string {
	if kind == models.AttachmentNone {
		return "text"
	}
	return string(kind)
}
