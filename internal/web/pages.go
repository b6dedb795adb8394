package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/a-h/templ"
	datastar "github.com/starfederation/datastar-go/datastar"
)

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0-RC.4/bundles/datastar.js"

// pairingPanel renders the fragment the SSE stream replaces. The image URL
// carries the code's timestamp so browsers refetch it when it changes.
func pairingPanel(code string, updated time.Time) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if code == "" {
			_, err := io.WriteString(w, `<div id="pairing"><p class="paired">✅ Nenhum pareamento pendente.</p></div>`)
			return err
		}
		_, err := fmt.Fprintf(w,
			`<div id="pairing"><p>📱 Escaneie o código abaixo para conectar.</p><img src="/qr?v=%d" alt="QR code" width="264" height="264"></div>`,
			updated.UnixNano())
		return err
	})
}

func homePage(name string, panel templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		title := templ.EscapeString(name)
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<script type="module" src="%s"></script>
</head>
<body>
<main data-on-load="@get('/sse/pairing')">
<h1>🎴 %s</h1>
`, title, datastarScript, title); err != nil {
			return err
		}
		if err := panel.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `
<p><a href="/status">status</a></p>
</main>
</body>
</html>
`)
		return err
	})
}

// Home renders the pairing page.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	code, _ := h.pairing.Get()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := homePage(h.name, pairingPanel(code, h.pairing.UpdatedAt())).Render(r.Context(), w); err != nil {
		h.logger.Error("❌ failed to render home page", "err", err)
	}
}

// StreamPairing pushes a fresh pairing panel whenever the code changes.
func (h *Handler) StreamPairing(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	updates := h.pairing.Subscribe()
	defer h.pairing.Unsubscribe(updates)
	h.logger.Debug("📡 pairing stream opened", "remote", r.RemoteAddr)

	if err := h.patchPanel(r.Context(), sse); err != nil {
		return
	}

	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.logger.Debug("📡 pairing stream closed", "remote", r.RemoteAddr)
			return
		case <-updates:
			if err := h.patchPanel(r.Context(), sse); err != nil {
				return
			}
		case <-keepalive.C:
			if err := sse.Send("keepalive", []string{fmt.Sprintf(`{"time":"%s"}`, time.Now().Format(time.RFC3339))}); err != nil {
				h.logger.Debug("📡 keepalive failed, closing", "err", err)
				return
			}
		}
	}
}

func (h *Handler) patchPanel(ctx context.Context, sse *datastar.ServerSentEventGenerator) error {
	code, _ := h.pairing.Get()
	html, err := templ.ToGoHTML(ctx, pairingPanel(code, h.pairing.UpdatedAt()))
	if err != nil {
		h.logger.Error("❌ failed to render pairing panel", "err", err)
		return err
	}
	if err := sse.PatchElements(string(html), datastar.WithSelector("#pairing")); err != nil {
		h.logger.Debug("📡 patch failed", "err", err)
		return err
	}
	return nil
}
