package notifier

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"PriceSentinel/internal/logger"
	"PriceSentinel/internal/model"
)

// Handler answers one inbound message. A false result sends nothing.
type Handler func(ctx context.Context, ev model.Event) (string, bool)

// telegramUpdate is one entry from getUpdates.
type telegramUpdate struct {
	UpdateID int `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

type updatesResponse struct {
	OK          bool             `json:"ok"`
	Description string           `json:"description"`
	Result      []telegramUpdate `json:"result"`
}

var retryDelay = 5 * time.Second

// StartPolling long-polls getUpdates and runs handler for each text message
// in its own goroutine, replying to the originating chat. It blocks until ctx
// is cancelled and in-flight handlers have returned.
func (t *TelegramBot) StartPolling(ctx context.Context, handler Handler) {
	var wg sync.WaitGroup
	sem := make(chan struct{}, t.cfg.MaxConcurrent)
	offset := 0

	defer func() {
		wg.Wait()
		t.log.Info("polling stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		updates, err := t.getUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			t.log.Warn("polling request failed", logger.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(retryDelay):
			}
			continue
		}

		for _, update := range updates {
			offset = update.UpdateID + 1
			if update.Message == nil || strings.TrimSpace(update.Message.Text) == "" {
				continue
			}
			ev := model.Event{ChatID: update.Message.Chat.ID, Text: update.Message.Text}

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				t.dispatch(ctx, handler, ev)
			}()
		}
	}
}

func (t *TelegramBot) dispatch(ctx context.Context, handler Handler, ev model.Event) {
	t.log.Info("received message", logger.Any("chat_id", ev.ChatID), logger.Int("length", len(ev.Text)))
	reply, ok := handler(ctx, ev)
	if !ok || reply == "" {
		return
	}
	err := t.Send(ctx, ev.ChatID, reply)
	if err == nil {
		return
	}
	t.log.Error("send reply", logger.Error(err), logger.Any("chat_id", ev.ChatID))
	if err := t.Send(ctx, ev.ChatID, sendFailureText(err)); err != nil {
		t.log.Error("send failure notice", logger.Error(err), logger.Any("chat_id", ev.ChatID))
	}
}

// sendFailureText is the short notice sent when a reply cannot be delivered.
func sendFailureText(err error) string {
	msg := err.Error()
	if r := []rune(msg); len(r) > 512 {
		msg = string(r[:512])
	}
	return "Sorry, I encountered an error: " + msg
}

func (t *TelegramBot) getUpdates(ctx context.Context, offset int) ([]telegramUpdate, error) {
	// The HTTP deadline must outlast the server-side long-poll wait.
	ctx, cancel := context.WithTimeout(ctx, t.cfg.PollTimeout+5*time.Second)
	defer cancel()

	var out updatesResponse
	resp, err := t.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"offset":  fmt.Sprint(offset),
			"timeout": fmt.Sprint(int(t.cfg.PollTimeout.Seconds())),
		}).
		SetResult(&out).
		SetError(&out).
		Get("/getUpdates")
	if err != nil {
		return nil, err
	}
	if resp.IsError() || !out.OK {
		return nil, fmt.Errorf("getUpdates: status %d: %s", resp.StatusCode(), out.Description)
	}
	return out.Result, nil
}
