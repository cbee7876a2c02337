package tg

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Spok95/skedule/internal/observability"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Считаем системными: 5xx, 429, timeout. 400-ки и типичные телеграм-валидации в Sentry не шлём.
func isSystemErr(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "429") || strings.Contains(s, "502") ||
		strings.Contains(s, "503") || strings.Contains(s, "timeout")
}

// sender: то, что нужно от *tgbotapi.BotAPI.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

func Send(bot sender, msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	m, err := bot.Send(msg)
	if isSystemErr(err) {
		observability.CaptureErr(err)
	}
	return m, err
}

// Notifier рассылает текст напрямую через Bot API, по сообщению на чат.
type Notifier struct {
	bot sender
	log *zap.Logger
}

func NewNotifier(token string, log *zap.Logger) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return newNotifier(bot, log), nil
}

func newNotifier(bot sender, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{bot: bot, log: log}
}

// Deliver отправляет всем; ошибки по отдельным чатам собираются в одну.
func (n *Notifier) Deliver(ctx context.Context, text string, telegramIDs []int64, silent bool) error {
	var errs []error
	for _, id := range telegramIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(id, text)
		msg.DisableNotification = silent
		if _, err := Send(n.bot, msg); err != nil {
			n.log.Warn("telegram send failed", zap.Int64("chat_id", id), zap.Error(err))
			errs = append(errs, fmt.Errorf("chat %d: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// LogNotifier только пишет в лог; для локального запуска.
type LogNotifier struct {
	Log *zap.Logger
}

func (n LogNotifier) Deliver(_ context.Context, text string, telegramIDs []int64, silent bool) error {
	n.Log.Info("deliver",
		zap.String("text", text), zap.Int64s("telegram_ids", telegramIDs), zap.Bool("silent", silent))
	return nil
}
