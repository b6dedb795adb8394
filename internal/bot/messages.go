package bot

import (
	"fmt"
	"strings"
	"time"

	"manamate/internal/catalog"
	"manamate/internal/resolver"
)

// Fixed replies.
const (
	pongText    = "pong"
	unknownText = "❓ Comando desconhecido. Digite !ajuda para ver os comandos disponíveis."
	usageText   = "❓ Informe o nome da carta. Exemplo: !carta raio"

	notFoundText    = "❌ Nenhuma carta encontrada com esse nome. Tente escrever o nome da carta em português ou inglês."
	unavailableText = "⚠️ A API do Scryfall está indisponível no momento. Tente novamente em alguns minutos."
	searchErrorText = "❌ Erro ao buscar carta. Por favor, tente novamente."
	statusErrorText = "❌ Erro ao verificar o status da API do Scryfall."
)

// statusTimeLayout renders dates the way pt-BR users read them.
const statusTimeLayout = "02/01/2006, 15:04:05"

func helpText() string {
	return "Olá! Sou um bot para buscar cartas de Magic: The Gathering! 🎴\n\n" +
		"Comandos disponíveis:\n" +
		"!carta [nome] - Busca uma carta (em português ou inglês)\n" +
		"!ajuda ou !help - Mostra esta mensagem de ajuda\n" +
		"!ping - Responde com pong\n" +
		"!oi - Responde com uma saudação\n" +
		"!status - Verifica o status da API\n\n" +
		"Dica: Para cartas em português, use acentos e caracteres especiais. Para cartas em inglês, use o nome em inglês."
}

func greetingText(name string) string {
	return fmt.Sprintf("Olá! Eu sou o %s, seu assistente para buscar cartas de Magic: The Gathering! 🎴\n\n", name) +
		"Comandos disponíveis:\n" +
		"!carta [nome] - Busca uma carta (em português ou inglês)\n" +
		"!ajuda ou !help - Mostra ajuda detalhada\n" +
		"!ping - Responde com pong\n" +
		"!oi - Mostra esta mensagem\n" +
		"!status - Verifica o status da API\n\n" +
		"Como posso ajudar?"
}

func statusText(h *catalog.Health, loc *time.Location) string {
	var b strings.Builder
	b.WriteString("📊 Status da API do Scryfall:\n\n")
	fmt.Fprintf(&b, "✅ Status: %s\n", h.Status)
	fmt.Fprintf(&b, "📈 Versão: %s\n", h.Version)
	if !h.UpdatedAt.IsZero() {
		fmt.Fprintf(&b, "🔄 Última atualização: %s\n", h.UpdatedAt.In(loc).Format(statusTimeLayout))
	}
	if h.Healthy() {
		b.WriteString("\n✨ A API está funcionando normalmente!")
	} else {
		b.WriteString("\n⚠️ A API pode estar com problemas.")
	}
	return b.String()
}

// errorText maps a resolver failure to the reply the user sees.
func errorText(err error) string {
	switch resolver.KindOf(err) {
	case resolver.KindValidationError:
		return usageText
	case resolver.KindNotFound:
		return notFoundText
	case resolver.KindServiceUnavailable:
		return unavailableText
	default:
		return searchErrorText
	}
}
