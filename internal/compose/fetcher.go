// Package compose downloads card images into the workspace and lays several
// of them out side by side in one strip image.
package compose

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"manamate/internal/workspace"
)

// Fetcher downloads remote images into workspace assets.
type Fetcher struct {
	ws         *workspace.Manager
	httpClient *http.Client
	userAgent  string
	logger     *log.Logger
}

// NewFetcher creates a fetcher with its own bounded timeout.
func NewFetcher(ws *workspace.Manager, timeout time.Duration, userAgent string, logger *log.Logger) *Fetcher {
	return &Fetcher{
		ws: ws,
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("stopped after 5 redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
		logger:    logger.With("component", "fetcher"),
	}
}

// Fetch downloads url into a new asset. The caller owns the returned asset.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*workspace.Asset, error) {
	asset, err := f.ws.NewAsset("card", ".jpg")
	if err != nil {
		return nil, err
	}
	if err := f.FetchTo(ctx, url, asset); err != nil {
		return nil, err
	}
	return asset, nil
}

// FetchTo downloads url into an already reserved asset. On failure the asset
// is released.
func (f *Fetcher) FetchTo(ctx context.Context, url string, asset *workspace.Asset) (err error) {
	defer func() {
		if err != nil {
			f.ws.Release(asset)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDownload, url, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDownload, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s: HTTP %d", ErrDownload, url, resp.StatusCode)
	}

	file, err := os.Create(asset.Path)
	if err != nil {
		return fmt.Errorf("%w: %v", workspace.ErrUnavailable, err)
	}
	if _, err := io.Copy(file, resp.Body); err != nil {
		file.Close()
		return fmt.Errorf("%w: %s: %v", ErrDownload, url, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("%w: %v", workspace.ErrUnavailable, err)
	}

	f.logger.Debug("⬇️ downloaded image", "url", url, "asset", asset.Name())
	return nil
}
