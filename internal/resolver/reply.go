package resolver

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"manamate/internal/catalog"
	"manamate/internal/workspace"
)

// Kind classifies the outcome of Resolve.
type Kind int

const (
	KindSingleCardImage Kind = iota + 1
	KindMultiCardSummary
	KindNotFound
	KindServiceUnavailable
	KindValidationError
	KindInternalError
)

func (k Kind) String() string {
	switch k {
	case KindSingleCardImage:
		return "single_card_image"
	case KindMultiCardSummary:
		return "multi_card_summary"
	case KindNotFound:
		return "not_found"
	case KindServiceUnavailable:
		return "service_unavailable"
	case KindValidationError:
		return "validation_error"
	case KindInternalError:
		return "internal_error"
	default:
		return "unknown"
	}
}

// KindOf maps an error returned by Resolve to its outcome kind.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrValidation):
		return KindValidationError
	case errors.Is(err, ErrServiceUnavailable):
		return KindServiceUnavailable
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindInternalError
	}
}

// Reply is a successful resolution: either one card's image (alias shortcut)
// or a summary of the first few search matches with a composite image.
type Reply struct {
	Kind Kind

	// Card is set for KindSingleCardImage.
	Card *catalog.Card

	// Summary fields, set for KindMultiCardSummary.
	Names     []string
	Total     int
	Language  string
	English   bool
	SearchURL string

	// Image may be nil when a summary's composite could not be built.
	Image *workspace.Asset

	release     func(*workspace.Asset) error
	releaseOnce sync.Once
}

// Attach sets the reply's image, to be released back to ws.
func (r *Reply) Attach(ws *workspace.Manager, image *workspace.Asset) {
	r.Image = image
	r.release = ws.Release
}

// Release frees the reply's image. It is safe to call more than once.
func (r *Reply) Release() error {
	var err error
	r.releaseOnce.Do(func() {
		if r.Image != nil && r.release != nil {
			err = r.release(r.Image)
		}
	})
	return err
}

// Text renders the message that accompanies the image.
func (r *Reply) Text() string {
	switch r.Kind {
	case KindSingleCardImage:
		if r.Card == nil {
			return ""
		}
		if r.Card.ScryfallURI != "" {
			return fmt.Sprintf("*%s*\n%s", r.Card.Name, r.Card.ScryfallURI)
		}
		return fmt.Sprintf("*%s*", r.Card.Name)

	case KindMultiCardSummary:
		var b strings.Builder
		if r.English {
			fmt.Fprintf(&b, "Não encontrei em português, mas encontrei %s em inglês. ", cartas(r.Total))
		} else {
			fmt.Fprintf(&b, "Encontrei %s. ", cartas(r.Total))
		}
		if len(r.Names) == 1 {
			b.WriteString("Aqui está a primeira:\n\n")
		} else {
			fmt.Fprintf(&b, "Aqui estão as primeiras %d:\n\n", len(r.Names))
		}
		for i, name := range r.Names {
			fmt.Fprintf(&b, "%d. *%s*", i+1, name)
			if r.English {
				b.WriteString(" (em inglês)")
			}
			b.WriteString("\n")
		}
		if r.Image == nil {
			b.WriteString("\n⚠️ Não consegui montar a imagem das cartas.\n")
		}
		fmt.Fprintf(&b, "\nPara ver todas as %s encontradas, acesse:\n%s", cartas(r.Total), r.SearchURL)
		return b.String()
	}
	return ""
}

func cartas(n int) string {
	if n == 1 {
		return "1 carta"
	}
	return fmt.Sprintf("%d cartas", n)
}
