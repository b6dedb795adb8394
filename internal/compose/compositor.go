package compose

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"manamate/internal/workspace"
)

// Cell size of one card in the strip.
const (
	CellWidth  = 750
	CellHeight = 1045
)

// Compositor builds horizontal strip images from card image URLs.
type Compositor struct {
	ws      *workspace.Manager
	fetcher *Fetcher
	logger  *log.Logger
}

// NewCompositor creates a compositor that downloads through fetcher.
func NewCompositor(ws *workspace.Manager, fetcher *Fetcher, logger *log.Logger) *Compositor {
	return &Compositor{
		ws:      ws,
		fetcher: fetcher,
		logger:  logger.With("component", "compositor"),
	}
}

// Composite downloads every URL and lays the images left to right in input
// order on a transparent canvas of CellWidth*len(urls) × CellHeight. Any failed
// download fails the whole call. Per-card downloads are always released; the
// returned asset belongs to the caller.
func (c *Compositor) Composite(ctx context.Context, urls []string) (*workspace.Asset, error) {
	if len(urls) == 0 {
		return nil, ErrNoImages
	}

	// Reserve every slot up front so cleanup knows what to remove even if a
	// download never starts.
	parts := make([]*workspace.Asset, len(urls))
	defer func() {
		c.ws.ReleaseAll(parts...)
	}()
	for i := range urls {
		asset, err := c.ws.NewAsset(fmt.Sprintf("card-%d", i), ".jpg")
		if err != nil {
			return nil, err
		}
		parts[i] = asset
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, url := range urls {
		g.Go(func() error {
			return c.fetcher.FetchTo(gctx, url, parts[i])
		})
	}
	if err := g.Wait(); err != nil {
		c.logger.Warn("⚠️ composite aborted", "images", len(urls), "err", err)
		return nil, err
	}

	canvas := imaging.New(CellWidth*len(urls), CellHeight, color.NRGBA{0, 0, 0, 0})
	for i, part := range parts {
		img, err := imaging.Open(part.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: decode image %d: %v", ErrDownload, i, err)
		}
		img = imaging.Fit(img, CellWidth, CellHeight, imaging.Lanczos)
		canvas = imaging.Paste(canvas, img, image.Pt(CellWidth*i, 0))
	}

	out, err := c.ws.NewAsset("composite", ".png")
	if err != nil {
		return nil, err
	}
	if err := imaging.Save(canvas, out.Path); err != nil {
		c.ws.Release(out)
		return nil, fmt.Errorf("%w: save composite: %v", workspace.ErrUnavailable, err)
	}

	c.logger.Debug("🖼️ composite ready", "images", len(urls), "asset", out.Name())
	return out, nil
}
