package tg

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeBot struct {
	sent []tgbotapi.MessageConfig
	fail map[int64]bool
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m := c.(tgbotapi.MessageConfig)
	if b.fail[m.ChatID] {
		return tgbotapi.Message{}, errors.New("Bad Request: chat not found")
	}
	b.sent = append(b.sent, m)
	return tgbotapi.Message{}, nil
}

func TestNotifier_SilentFlag(t *testing.T) {
	bot := &fakeBot{}
	n := newNotifier(bot, nil)
	if err := n.Deliver(context.Background(), "link", []int64{1, 2}, true); err != nil {
		t.Fatal(err)
	}
	if len(bot.sent) != 2 {
		t.Fatalf("ожидали 2 сообщения, получили %d", len(bot.sent))
	}
	for _, m := range bot.sent {
		if !m.DisableNotification || m.Text != "link" {
			t.Fatalf("сообщение %#v", m)
		}
	}
}

func TestNotifier_CollectsErrors(t *testing.T) {
	bot := &fakeBot{fail: map[int64]bool{2: true}}
	err := newNotifier(bot, nil).Deliver(context.Background(), "x", []int64{1, 2, 3}, false)
	if err == nil {
		t.Fatal("ожидали ошибку для чата 2")
	}
	if len(bot.sent) != 2 {
		t.Fatalf("остальные чаты должны получить сообщение, отправлено %d", len(bot.sent))
	}
}

func TestIsSystemErr(t *testing.T) {
	if isSystemErr(errors.New("Bad Request: chat not found")) {
		t.Fatal("400 не системная ошибка")
	}
	if !isSystemErr(errors.New("Too Many Requests: retry after 5 (429)")) {
		t.Fatal("429 системная ошибка")
	}
}
