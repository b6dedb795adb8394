package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"manamate/internal/catalog"
	"manamate/internal/workspace"
)

// Catalog is the subset of the card catalog client the resolver needs.
type Catalog interface {
	Health(ctx context.Context) (*catalog.Health, error)
	GetExact(ctx context.Context, name string) (*catalog.Card, error)
	Search(ctx context.Context, term, lang string) (*catalog.SearchResult, error)
}

// Fetcher downloads one image into the workspace.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*workspace.Asset, error)
}

// Compositor joins several images into one strip.
type Compositor interface {
	Composite(ctx context.Context, urls []string) (*workspace.Asset, error)
}

// Options tunes a Resolver.
type Options struct {
	// Alias maps a normalized query to an exact card name.
	Alias func(query string) (string, bool)
	// SummaryLimit caps the cards listed and composited in a summary.
	SummaryLimit int
	// WebURL is the base of the human-facing search deep link.
	WebURL string
}

// Resolver turns free-text card queries into replies.
type Resolver struct {
	catalog    Catalog
	fetcher    Fetcher
	compositor Compositor
	ws         *workspace.Manager
	opts       Options
	logger     *log.Logger
}

// New creates a Resolver.
func New(cat Catalog, fetcher Fetcher, compositor Compositor, ws *workspace.Manager, opts Options, logger *log.Logger) *Resolver {
	if opts.SummaryLimit < 1 {
		opts.SummaryLimit = 3
	}
	if opts.WebURL == "" {
		opts.WebURL = "https://scryfall.com"
	}
	if opts.Alias == nil {
		opts.Alias = func(string) (string, bool) { return "", false }
	}
	return &Resolver{
		catalog:    cat,
		fetcher:    fetcher,
		compositor: compositor,
		ws:         ws,
		opts:       opts,
		logger:     logger.With("component", "resolver"),
	}
}

// Resolve runs the lookup pipeline: validation, catalog health, the alias
// shortcut, then a name search in each language until one has results.
// The caller owns the returned Reply and must Release it.
func (r *Resolver) Resolve(ctx context.Context, raw string) (*Reply, error) {
	q, err := NewQuery(raw)
	if err != nil {
		return nil, err
	}

	// Catalog calls finish under their own timeout even if the caller goes away
	cctx := context.WithoutCancel(ctx)

	health, err := r.catalog.Health(cctx)
	if err != nil {
		r.logger.Warn("⚠️ catalog health check failed", "err", err)
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	if !health.Healthy() {
		r.logger.Warn("⚠️ catalog reports degraded status", "status", health.Status)
		return nil, fmt.Errorf("%w: status %q", ErrServiceUnavailable, health.Status)
	}

	if target, ok := r.opts.Alias(q.Text()); ok {
		reply, err := r.resolveExact(ctx, target)
		if err == nil {
			r.logger.Info("🎯 alias resolved", "query", q.Text(), "card", target)
			return reply, nil
		}
		r.logger.Info("↪️ alias lookup failed, falling back to search", "query", q.Text(), "card", target, "err", err)
	}

	term := q.Term()
	for i, lang := range q.Languages() {
		result, err := r.catalog.Search(cctx, term, lang)
		if err != nil {
			r.logger.Warn("⚠️ search failed, trying next language", "term", term, "lang", lang, "err", err)
			continue
		}
		if result.Empty() {
			r.logger.Debug("no results", "term", term, "lang", lang)
			continue
		}
		return r.summarize(ctx, q, lang, i > 0, result)
	}

	return nil, fmt.Errorf("%w: %q", ErrNotFound, q.Text())
}

func (r *Resolver) resolveExact(ctx context.Context, name string) (*Reply, error) {
	card, err := r.catalog.GetExact(context.WithoutCancel(ctx), name)
	if err != nil {
		return nil, err
	}

	var asset *workspace.Asset
	urls := card.NormalImages()
	switch len(urls) {
	case 0:
		return nil, fmt.Errorf("card %q has no image", card.Name)
	case 1:
		asset, err = r.fetcher.Fetch(ctx, urls[0])
	default:
		asset, err = r.compositor.Composite(ctx, urls)
	}
	if err != nil {
		return nil, fmt.Errorf("image for %q: %w", card.Name, err)
	}

	reply := &Reply{
		Kind:  KindSingleCardImage,
		Card:  card,
		Names: []string{card.Name},
		Total: 1,
	}
	reply.Attach(r.ws, asset)
	return reply, nil
}

func (r *Resolver) summarize(ctx context.Context, q Query, lang string, english bool, result *catalog.SearchResult) (*Reply, error) {
	cards := result.Data
	if len(cards) > r.opts.SummaryLimit {
		cards = cards[:r.opts.SummaryLimit]
	}

	names := make([]string, 0, len(cards))
	urls := make([]string, 0, len(cards))
	for i := range cards {
		names = append(names, cards[i].DisplayName())
		if u := cards[i].PrimaryImage(); u != "" {
			urls = append(urls, u)
		}
	}

	reply := &Reply{
		Kind:      KindMultiCardSummary,
		Names:     names,
		Total:     result.Total(),
		Language:  lang,
		English:   english,
		SearchURL: catalog.WebSearchURL(r.opts.WebURL, q.Text(), lang),
	}

	if len(urls) == 0 {
		r.logger.Warn("⚠️ no images in search results, replying with text only", "term", q.Term(), "lang", lang)
		return reply, nil
	}

	image, err := r.compositor.Composite(ctx, urls)
	switch {
	case err == nil:
		reply.Attach(r.ws, image)
	case errors.Is(err, workspace.ErrUnavailable):
		return nil, fmt.Errorf("%w: %v", ErrWorkspace, err)
	default:
		r.logger.Warn("⚠️ composite failed, replying with text only", "term", q.Term(), "lang", lang, "err", err)
	}

	r.logger.Info("🔎 search resolved", "query", q.Text(), "lang", lang, "total", reply.Total, "shown", len(names))
	return reply, nil
}
