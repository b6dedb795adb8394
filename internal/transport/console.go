package transport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/google/uuid"
)

// ConsoleChatID is the chat every console message belongs to.
const ConsoleChatID = "console"

var (
	botColor        = color.New(color.FgCyan, color.Bold)
	attachmentColor = color.New(color.FgYellow)
)

// Console is a local transport: each input line is a message and replies
// are printed to the output. It publishes a random pairing code so the
// pairing page can be tried without a real chat network.
type Console struct {
	in     io.Reader
	out    io.Writer
	cell   *PairingCell
	logger *log.Logger

	events chan Event
	done   chan struct{}

	mu        sync.Mutex // guards out and started
	started   bool
	closeOnce sync.Once
}

// NewConsole creates a console transport. cell may be nil.
func NewConsole(in io.Reader, out io.Writer, cell *PairingCell, logger *log.Logger) *Console {
	return &Console{
		in:     in,
		out:    out,
		cell:   cell,
		logger: logger.With("component", "console"),
		events: make(chan Event, 16),
		done:   make(chan struct{}),
	}
}

// Events implements Transport.
func (c *Console) Events() <-chan Event {
	return c.events
}

// Start implements Transport. It emits a pairing code, then ready, then one
// message per non-empty input line, and disconnected at end of input.
func (c *Console) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return fmt.Errorf("console already started")
	}
	c.started = true

	go c.readLoop(ctx)
	return nil
}

func (c *Console) readLoop(ctx context.Context) {
	defer close(c.events)

	code := "manamate-" + uuid.NewString()
	if c.cell != nil {
		c.cell.Set(code)
	}
	if !c.emit(ctx, Event{Type: EventQR, Code: code}) {
		return
	}
	if !c.emit(ctx, Event{Type: EventReady}) {
		return
	}

	scanner := bufio.NewScanner(c.in)
	seq := 0
	for scanner.Scan() {
		body := strings.TrimSpace(scanner.Text())
		if body == "" {
			continue
		}
		seq++
		msg := &Message{
			ID:        strconv.Itoa(seq),
			ChatID:    ConsoleChatID,
			From:      "you",
			Body:      body,
			Timestamp: time.Now(),
		}
		if !c.emit(ctx, Event{Type: EventMessage, Message: msg}) {
			return
		}
	}

	reason := "end of input"
	if err := scanner.Err(); err != nil {
		reason = err.Error()
	}
	c.emit(ctx, Event{Type: EventDisconnected, Reason: reason})
}

func (c *Console) emit(ctx context.Context, ev Event) bool {
	select {
	case c.events <- ev:
		return true
	case <-ctx.Done():
		return false
	case <-c.done:
		return false
	}
}

// Send implements Transport.
func (c *Console) Send(ctx context.Context, msg Outgoing) error {
	select {
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := botColor.Fprintf(c.out, "🤖 [%s] ", msg.ChatID); err != nil {
		return fmt.Errorf("write reply: %w", err)
	}
	if _, err := fmt.Fprintln(c.out, msg.Text); err != nil {
		return fmt.Errorf("write reply: %w", err)
	}
	if msg.Attachment != "" {
		if _, err := attachmentColor.Fprintf(c.out, "📎 %s\n", msg.Attachment); err != nil {
			return fmt.Errorf("write reply: %w", err)
		}
	}
	return nil
}

// Close implements Transport.
func (c *Console) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.cell != nil {
			c.cell.Clear()
		}
	})
	return nil
}
