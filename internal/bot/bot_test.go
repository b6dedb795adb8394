package bot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manamate/internal/catalog"
	"manamate/internal/config"
	"manamate/internal/logging"
	"manamate/internal/testhelpers"
	"manamate/internal/resolver"
	"manamate/internal/transport"
	"manamate/internal/workspace"
)

type resolveFunc func(ctx context.Context, raw string) (*resolver.Reply, error)

func (f resolveFunc) Resolve(ctx context.Context, raw string) (*resolver.Reply, error) {
	return f(ctx, raw)
}

type healthFunc func(ctx context.Context) (*catalog.Health, error)

func (f healthFunc) Health(ctx context.Context) (*catalog.Health, error) {
	return f(ctx)
}

func healthy(context.Context) (*catalog.Health, error) {
	return &catalog.Health{
		Status:    "healthy",
		Version:   "2.0",
		UpdatedAt: time.Date(2026, 10, 18, 9, 5, 3, 0, time.UTC),
	}, nil
}

func newTestDispatcher(res resolveFunc, health healthFunc) *Dispatcher {
	d := NewDispatcher(config.DefaultConfig().Bot, res, health, logging.Discard())
	d.location = time.UTC
	return d
}

func noResolve(t *testing.T) resolveFunc {
	return func(context.Context, string) (*resolver.Reply, error) {
		t.Error("resolver must not be called")
		return nil, errors.New("unexpected")
	}
}

func TestDispatch_FixedCommands(t *testing.T) {
	d := newTestDispatcher(noResolve(t), healthy)

	tests := []struct {
		body     string
		contains string
	}{
		{"!ping", "pong"},
		{"  !ping  ", "pong"},
		{"!PING", "Comando desconhecido"},
		{"!Ping", "Comando desconhecido"},
		{"!AJUDA", "Comando desconhecido"},
		{"!ajuda", "Comandos disponíveis"},
		{"!help", "!carta [nome]"},
		{"!oi", "Eu sou o ManaMate"},
		{"!foo", "Comando desconhecido"},
		{"!", "Comando desconhecido"},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			resp, ok := d.Dispatch(context.Background(), tt.body)
			require.True(t, ok)
			assert.Contains(t, resp.Text, tt.contains)
			assert.Empty(t, resp.Attachment())
			assert.NoError(t, resp.Release())
		})
	}
}

func TestDispatch_IgnoresNonCommands(t *testing.T) {
	d := newTestDispatcher(noResolve(t), healthy)
	for _, body := range []string{"", "hello", "carta raio", "ping!"} {
		resp, ok := d.Dispatch(context.Background(), body)
		assert.False(t, ok, body)
		assert.Nil(t, resp)
	}
}

func TestDispatch_Status(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		d := newTestDispatcher(noResolve(t), healthy)
		resp, ok := d.Dispatch(context.Background(), "!status")
		require.True(t, ok)
		assert.Contains(t, resp.Text, "✅ Status: healthy")
		assert.Contains(t, resp.Text, "📈 Versão: 2.0")
		assert.Contains(t, resp.Text, "18/10/2026, 09:05:03")
		assert.Contains(t, resp.Text, "funcionando normalmente")
	})

	t.Run("degraded", func(t *testing.T) {
		d := newTestDispatcher(noResolve(t), func(context.Context) (*catalog.Health, error) {
			return &catalog.Health{Status: "degraded", Version: "2.0"}, nil
		})
		resp, _ := d.Dispatch(context.Background(), "!status")
		assert.Contains(t, resp.Text, "pode estar com problemas")
		assert.NotContains(t, resp.Text, "Última atualização")
	})

	t.Run("error", func(t *testing.T) {
		d := newTestDispatcher(noResolve(t), func(context.Context) (*catalog.Health, error) {
			return nil, catalog.ErrUnavailable
		})
		resp, _ := d.Dispatch(context.Background(), "!status")
		assert.Equal(t, statusErrorText, resp.Text)
	})
}

func TestDispatch_CardErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", resolver.ErrValidation, usageText},
		{"not found", fmt.Errorf("%w: %q", resolver.ErrNotFound, "xyzzy"), notFoundText},
		{"unavailable", resolver.ErrServiceUnavailable, unavailableText},
		{"workspace", resolver.ErrWorkspace, searchErrorText},
		{"anything else", errors.New("boom"), searchErrorText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDispatcher(func(context.Context, string) (*resolver.Reply, error) {
				return nil, tt.err
			}, healthy)
			resp, ok := d.Dispatch(context.Background(), "!carta xyzzy")
			require.True(t, ok)
			assert.Equal(t, tt.want, resp.Text)
			assert.Empty(t, resp.Attachment())
		})
	}
}

func TestDispatch_CardForwardsArgument(t *testing.T) {
	var got []string
	d := newTestDispatcher(func(_ context.Context, raw string) (*resolver.Reply, error) {
		got = append(got, raw)
		return nil, resolver.ErrNotFound
	}, healthy)

	d.Dispatch(context.Background(), "!carta lightning bolt")
	d.Dispatch(context.Background(), "!carta\tfire")
	d.Dispatch(context.Background(), "!carta")

	assert.Equal(t, []string{"lightning bolt", "fire", ""}, got)
}

// fakeTransport delivers queued events and records what was sent, checking
// that attachments still exist at send time.
type fakeTransport struct {
	events chan transport.Event

	mu      sync.Mutex
	sent    []transport.Outgoing
	missing []string
	sendErr error
}

func newFakeTransport(events ...transport.Event) *fakeTransport {
	ch := make(chan transport.Event, len(events))
	for _, ev := range events {
		ch <- ev
	}
	close(ch)
	return &fakeTransport{events: ch}
}

func (f *fakeTransport) Start(context.Context) error   { return nil }
func (f *fakeTransport) Events() <-chan transport.Event { return f.events }
func (f *fakeTransport) Close() error                   { return nil }

func (f *fakeTransport) Send(_ context.Context, msg transport.Outgoing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg.Attachment != "" {
		if _, err := os.Stat(msg.Attachment); err != nil {
			f.missing = append(f.missing, msg.Attachment)
		}
	}
	f.sent = append(f.sent, msg)
	return f.sendErr
}

func message(id, body string) transport.Event {
	return transport.Event{Type: transport.EventMessage, Message: &transport.Message{ID: id, ChatID: "chat-1", Body: body}}
}

func TestBot_Run(t *testing.T) {
	logger := logging.Discard()
	ws := workspace.New(filepath.Join(t.TempDir(), "temp"), logger)

	d := newTestDispatcher(func(_ context.Context, raw string) (*resolver.Reply, error) {
		asset, err := ws.NewAsset("card", ".jpg")
		if err != nil {
			return nil, err
		}
		reply := &resolver.Reply{
			Kind: resolver.KindSingleCardImage,
			Card: &catalog.Card{Name: "Lightning Bolt"},
		}
		reply.Attach(ws, asset)
		return reply, nil
	}, healthy)

	ft := newFakeTransport(
		transport.Event{Type: transport.EventQR, Code: "abc"},
		transport.Event{Type: transport.EventReady},
		message("1", "!ping"),
		message("2", "just chatting"),
		message("3", "!carta raio"),
		message("4", "!nope"),
		transport.Event{Type: transport.EventMessage},
		transport.Event{Type: transport.EventDisconnected, Reason: "logout"},
	)

	b := New(ft, d, logger)
	require.NoError(t, b.Run(context.Background()))

	ft.mu.Lock()
	defer ft.mu.Unlock()

	require.Len(t, ft.sent, 3, "one reply per handled command, none for plain chat")
	byID := map[string]transport.Outgoing{}
	for _, out := range ft.sent {
		assert.Equal(t, "chat-1", out.ChatID)
		byID[out.ReplyTo] = out
	}
	assert.Equal(t, "pong", byID["1"].Text)
	assert.Contains(t, byID["3"].Text, "Lightning Bolt")
	assert.NotEmpty(t, byID["3"].Attachment)
	assert.Contains(t, byID["4"].Text, "Comando desconhecido")

	assert.Empty(t, ft.missing, "attachment must exist when sent")
	assert.Empty(t, testhelpers.DirFiles(t, ws.Dir()), "attachment released after send")

	assert.EqualValues(t, 3, b.Handled())
	assert.False(t, b.Ready())
}

func TestBot_ReleasesOnSendFailure(t *testing.T) {
	logger := logging.Discard()
	ws := workspace.New(filepath.Join(t.TempDir(), "temp"), logger)

	d := newTestDispatcher(func(context.Context, string) (*resolver.Reply, error) {
		asset, err := ws.NewAsset("composite", ".png")
		if err != nil {
			return nil, err
		}
		reply := &resolver.Reply{Kind: resolver.KindMultiCardSummary, Names: []string{"Fireball"}, Total: 1}
		reply.Attach(ws, asset)
		return reply, nil
	}, healthy)

	ft := newFakeTransport(message("1", "!carta fire"))
	ft.sendErr = transport.ErrClosed

	b := New(ft, d, logger)
	require.NoError(t, b.Run(context.Background()))

	assert.Empty(t, testhelpers.DirFiles(t, ws.Dir()))
	assert.EqualValues(t, 0, b.Handled())
}

func TestBot_StopsOnContextCancel(t *testing.T) {
	ft := &fakeTransport{events: make(chan transport.Event)}
	b := New(ft, newTestDispatcher(noResolve(t), healthy), logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	ft.events <- transport.Event{Type: transport.EventReady}
	assert.Eventually(t, b.Ready, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
