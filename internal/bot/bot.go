package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"manamate/internal/transport"
)

// Bot consumes transport events and answers commands, one goroutine per
// message.
type Bot struct {
	transport  transport.Transport
	dispatcher *Dispatcher
	logger     *log.Logger

	startedAt time.Time
	ready     atomic.Bool
	handled   atomic.Int64
	wg        sync.WaitGroup
}

// New creates a Bot.
func New(t transport.Transport, d *Dispatcher, logger *log.Logger) *Bot {
	return &Bot{
		transport:  t,
		dispatcher: d,
		logger:     logger.With("component", "bot"),
		startedAt:  time.Now(),
	}
}

// Ready reports whether the transport is connected.
func (b *Bot) Ready() bool {
	return b.ready.Load()
}

// Handled returns how many commands were answered.
func (b *Bot) Handled() int64 {
	return b.handled.Load()
}

// Uptime returns how long the bot has existed.
func (b *Bot) Uptime() time.Duration {
	return time.Since(b.startedAt)
}

// Run starts the transport and handles events until the event stream ends
// or ctx is cancelled. In-flight messages are finished before it returns.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.transport.Start(ctx); err != nil {
		return fmt.Errorf("start transport: %w", err)
	}
	defer b.wg.Wait()

	events := b.transport.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				b.ready.Store(false)
				return nil
			}
			b.handleEvent(ctx, ev)
		}
	}
}

func (b *Bot) handleEvent(ctx context.Context, ev transport.Event) {
	switch ev.Type {
	case transport.EventQR:
		b.logger.Info("📱 pairing code available, scan it to connect", "code", ev.Code)
	case transport.EventReady:
		b.ready.Store(true)
		commands := b.dispatcher.Commands()
		sort.Strings(commands)
		b.logger.Info("✅ client ready", "commands", strings.Join(commands, " "))
	case transport.EventDisconnected:
		b.ready.Store(false)
		b.logger.Warn("🔌 client disconnected", "reason", ev.Reason)
	case transport.EventMessage:
		if ev.Message == nil {
			return
		}
		b.wg.Add(1)
		go func(msg *transport.Message) {
			defer b.wg.Done()
			b.handleMessage(ctx, msg)
		}(ev.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *transport.Message) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("💥 panic handling message", "chat", msg.ChatID, "panic", r)
		}
	}()

	resp, ok := b.dispatcher.Dispatch(ctx, msg.Body)
	if !ok {
		return
	}
	defer func() {
		if err := resp.Release(); err != nil {
			b.logger.Warn("⚠️ could not release reply image", "err", err)
		}
	}()

	out := transport.Outgoing{
		ChatID:     msg.ChatID,
		ReplyTo:    msg.ID,
		Text:       resp.Text,
		Attachment: resp.Attachment(),
	}
	if err := b.transport.Send(ctx, out); err != nil {
		b.logger.Error("❌ send failed", "chat", msg.ChatID, "err", err)
		return
	}
	b.handled.Add(1)
}
