package bot

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/log"

	"manamate/internal/catalog"
	"manamate/internal/config"
	"manamate/internal/resolver"
)

// Resolver answers card queries.
type Resolver interface {
	Resolve(ctx context.Context, raw string) (*resolver.Reply, error)
}

// HealthChecker reports the card catalog's status.
type HealthChecker interface {
	Health(ctx context.Context) (*catalog.Health, error)
}

// Response is the single reply to a handled command.
type Response struct {
	Text string
	// Reply carries the image, if any. It is released with the Response.
	Reply *resolver.Reply
}

// Attachment returns the path of the image to send, or "".
func (r *Response) Attachment() string {
	if r.Reply != nil && r.Reply.Image != nil {
		return r.Reply.Image.Path
	}
	return ""
}

// Release frees the response's image.
func (r *Response) Release() error {
	if r.Reply == nil {
		return nil
	}
	return r.Reply.Release()
}

// CommandFunc handles one command; args is the text after the command token.
type CommandFunc func(ctx context.Context, args string) *Response

// Dispatcher routes prefixed messages to command handlers.
type Dispatcher struct {
	prefix   string
	name     string
	commands map[string]CommandFunc
	resolver Resolver
	health   HealthChecker
	location *time.Location
	logger   *log.Logger
}

// NewDispatcher creates the command table.
func NewDispatcher(cfg config.BotSettings, res Resolver, health HealthChecker, logger *log.Logger) *Dispatcher {
	d := &Dispatcher{
		prefix:   cfg.Prefix,
		name:     cfg.Name,
		resolver: res,
		health:   health,
		location: time.Local,
		logger:   logger.With("component", "dispatcher"),
	}
	help := func(context.Context, string) *Response { return &Response{Text: helpText()} }
	d.commands = map[string]CommandFunc{
		d.prefix + "ajuda":  help,
		d.prefix + "help":   help,
		d.prefix + "ping":   func(context.Context, string) *Response { return &Response{Text: pongText} },
		d.prefix + "oi":     func(context.Context, string) *Response { return &Response{Text: greetingText(d.name)} },
		d.prefix + "status": d.status,
		d.prefix + "carta":  d.card,
	}
	return d
}

// Commands returns the registered command tokens.
func (d *Dispatcher) Commands() []string {
	names := make([]string, 0, len(d.commands))
	for name := range d.commands {
		names = append(names, name)
	}
	return names
}

// Dispatch handles one message body. It reports false when the message is
// not a command and must be ignored.
func (d *Dispatcher) Dispatch(ctx context.Context, body string) (*Response, bool) {
	body = strings.TrimSpace(body)
	if !strings.HasPrefix(body, d.prefix) {
		return nil, false
	}

	token, args := body, ""
	if i := strings.IndexFunc(body, unicode.IsSpace); i >= 0 {
		token, args = body[:i], body[i+1:]
	}

	cmd, ok := d.commands[token]
	if !ok {
		d.logger.Debug("unknown command", "command", token)
		return &Response{Text: unknownText}, true
	}
	d.logger.Info("📨 command", "command", token)
	return cmd(ctx, strings.TrimSpace(args)), true
}

func (d *Dispatcher) status(ctx context.Context, _ string) *Response {
	health, err := d.health.Health(ctx)
	if err != nil {
		d.logger.Error("❌ status check failed", "err", err)
		return &Response{Text: statusErrorText}
	}
	return &Response{Text: statusText(health, d.location)}
}

func (d *Dispatcher) card(ctx context.Context, args string) *Response {
	reply, err := d.resolver.Resolve(ctx, args)
	if err != nil {
		kind := resolver.KindOf(err)
		if kind == resolver.KindInternalError {
			d.logger.Error("❌ card lookup failed", "query", args, "err", err)
		} else {
			d.logger.Info("card lookup unresolved", "query", args, "kind", kind)
		}
		return &Response{Text: errorText(err)}
	}
	return &Response{Text: reply.Text(), Reply: reply}
}
