package bot

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xaenox/support-bot/internal/metrics"
	"github.com/xaenox/support-bot/internal/relay"
	"github.com/xaenox/support-bot/internal/router"
	"github.com/xaenox/support-bot/pkg/config"
)

type Bot struct {
	api      *tgbotapi.BotAPI
	sender   relay.Sender
	router   router.Router
	executor *relay.Executor
	metrics  *metrics.Metrics
	cfg      config.Config
	logger   *zap.Logger

	wg sync.WaitGroup
}

func New(cfg config.Config, m *metrics.Metrics, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	api.Debug = cfg.Telegram.Debug

	b := newBot(api, cfg, m, logger)
	b.api = api
	logger.Info("Authorized on account", zap.String("username", api.Self.UserName))
	return b, nil
}

func newBot(sender relay.Sender, cfg config.Config, m *metrics.Metrics, logger *zap.Logger) *Bot {
	if m == nil {
		m = metrics.New()
	}
	return &Bot{
		sender:   sender,
		router:   router.New(cfg.Messages.RestartButton),
		executor: relay.NewExecutor(sender, cfg, logger),
		metrics:  m,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start polls for updates until ctx is cancelled, handling each message in its
// own goroutine. It returns after in-flight handlers have finished.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.Telegram.PollTimeout

	updates := b.api.GetUpdatesChan(u)
	b.logger.Info("Support bot started", zap.Int64("admin_chat_id", b.cfg.Telegram.AdminChatID))

	// Handlers outlive ctx so that events in flight at shutdown still finish.
	handlerCtx := context.WithoutCancel(ctx)

	defer b.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			message := b.messageOf(update)
			if message == nil {
				continue
			}

			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.handleMessage(handlerCtx, message)
			}()
		}
	}
}

// messageOf returns the message of an update. Channel posts are only
// accepted from the operator chat, which may be a channel.
func (b *Bot) messageOf(update tgbotapi.Update) *tgbotapi.Message {
	if update.Message != nil {
		return update.Message
	}
	if post := update.ChannelPost; post != nil && post.Chat != nil && post.Chat.ID == b.cfg.Telegram.AdminChatID {
		return post
	}
	return nil
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	msg, ok := toInbound(message)
	logger := b.logger.With(
		zap.String("event_id", uuid.NewString()),
		zap.Int64("chat_id", msg.ChatID),
		zap.Int("message_id", msg.ID))

	if !ok && msg.ChatID == b.cfg.Telegram.AdminChatID {
		logger.Debug("Skipping operator message without text or supported attachment")
		return
	}

	action := b.router.Route(router.Event{
		ChatID:         msg.ChatID,
		OperatorChatID: b.cfg.Telegram.AdminChatID,
		IsReply:        msg.IsReply(),
		Text:           message.Text,
		Command:        message.Command(),
	})
	b.metrics.ObserveEvent(action.String())
	logger.Info("Routing message",
		zap.Stringer("action", action),
		zap.Bool("is_reply", msg.IsReply()))

	executor := b.executor.WithLogger(logger)
	switch action {
	case router.ActionRestart:
		b.handleStart(logger, msg.ChatID)
	case router.ActionUser:
		if message.From == nil {
			logger.Warn("Dropping user message without sender")
			return
		}
		res := executor.UserToOperator(ctx, msg, toIdentity(message.From))
		b.metrics.ObserveRelay("to_operator", res.Kind.String())
	case router.ActionAdmin:
		res := executor.OperatorToUser(ctx, msg)
		b.metrics.ObserveRelay("to_user", res.Kind.String())
	case router.ActionIgnore:
		logger.Debug("Ignoring non-reply message in operator chat")
	}
}

func (b *Bot) handleStart(logger *zap.Logger, chatID int64) {
	msg := tgbotapi.NewMessage(chatID, b.cfg.Messages.Welcome)
	msg.ReplyMarkup = relay.RestartKeyboard(b.cfg.Messages.RestartButton)
	if _, err := b.sender.Send(msg); err != nil {
		logger.Error("Failed to send welcome message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}
