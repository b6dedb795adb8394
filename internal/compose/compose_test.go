package compose

import (
	"context"
	"errors"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"manamate/internal/logging"
	"manamate/internal/testhelpers"
	"manamate/internal/workspace"
)

var (
	red   = color.NRGBA{R: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
)

// newImageServer serves solid images at /red, /green, /blue and /big,
// garbage at /garbage and 404 everywhere else.
func newImageServer(t *testing.T) *httptest.Server {
	t.Helper()
	images := map[string][]byte{
		"/red":   testhelpers.SolidPNG(t, 100, 140, red),
		"/green": testhelpers.SolidPNG(t, 100, 140, green),
		"/blue":  testhelpers.SolidPNG(t, 100, 140, blue),
		"/big":   testhelpers.SolidPNG(t, 1500, 2090, red),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/garbage" {
			w.Write([]byte("definitely not an image"))
			return
		}
		body, ok := images[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestCompositor(t *testing.T) (*Compositor, *workspace.Manager) {
	t.Helper()
	logger := logging.Discard()
	ws := workspace.New(filepath.Join(t.TempDir(), "temp"), logger)
	fetcher := NewFetcher(ws, 5*time.Second, "test-agent", logger)
	return NewCompositor(ws, fetcher, logger), ws
}

func assertNRGBA(t *testing.T, img image.Image, x, y int, want color.NRGBA) {
	t.Helper()
	got := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	assert.Equal(t, want, got, "pixel at (%d,%d)", x, y)
}

func TestComposite_Geometry(t *testing.T) {
	srv := newImageServer(t)

	tests := []struct {
		name   string
		paths  []string
		colors []color.NRGBA
	}{
		{"one image", []string{"/red"}, []color.NRGBA{red}},
		{"three images", []string{"/red", "/green", "/blue"}, []color.NRGBA{red, green, blue}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ws := newTestCompositor(t)

			urls := make([]string, len(tt.paths))
			for i, p := range tt.paths {
				urls[i] = srv.URL + p
			}

			out, err := c.Composite(context.Background(), urls)
			require.NoError(t, err)

			img, err := imaging.Open(out.Path)
			require.NoError(t, err)
			assert.Equal(t, CellWidth*len(urls), img.Bounds().Dx())
			assert.Equal(t, CellHeight, img.Bounds().Dy())

			for i, want := range tt.colors {
				offset := CellWidth * i
				assertNRGBA(t, img, offset, 0, want)
				assertNRGBA(t, img, offset+99, 139, want)
				// Outside the pasted image the canvas stays transparent
				assertNRGBA(t, img, offset+100, 0, color.NRGBA{})
				assertNRGBA(t, img, offset, 140, color.NRGBA{})
			}

			// Only the output remains until the caller releases it
			assert.Equal(t, []string{out.Name()}, testhelpers.DirFiles(t, ws.Dir()))
			require.NoError(t, ws.Release(out))
			assert.Empty(t, testhelpers.DirFiles(t, ws.Dir()))
		})
	}
}

func TestComposite_FitsLargeImagesIntoCell(t *testing.T) {
	srv := newImageServer(t)
	c, ws := newTestCompositor(t)

	out, err := c.Composite(context.Background(), []string{srv.URL + "/big", srv.URL + "/blue"})
	require.NoError(t, err)
	defer ws.Release(out)

	img, err := imaging.Open(out.Path)
	require.NoError(t, err)
	assert.Equal(t, 2*CellWidth, img.Bounds().Dx())
	assert.Equal(t, CellHeight, img.Bounds().Dy())
	// The oversized card must not spill into the second cell
	assertNRGBA(t, img, CellWidth, 0, blue)
}

func TestComposite_Failures(t *testing.T) {
	srv := newImageServer(t)

	tests := []struct {
		name  string
		paths []string
	}{
		{"one missing image", []string{"/red", "/missing", "/blue"}},
		{"undecodable image", []string{"/red", "/garbage"}},
		{"all missing", []string{"/a", "/b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ws := newTestCompositor(t)

			urls := make([]string, len(tt.paths))
			for i, p := range tt.paths {
				urls[i] = srv.URL + p
			}

			out, err := c.Composite(context.Background(), urls)
			assert.Nil(t, out)
			assert.True(t, errors.Is(err, ErrDownload), "got %v", err)
			assert.Empty(t, testhelpers.DirFiles(t, ws.Dir()), "partial downloads must be cleaned up")
		})
	}
}

func TestComposite_NoImages(t *testing.T) {
	c, ws := newTestCompositor(t)

	_, err := c.Composite(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrNoImages))
	assert.Empty(t, testhelpers.DirFiles(t, ws.Dir()))
}

func TestComposite_WorkspaceUnavailable(t *testing.T) {
	srv := newImageServer(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	logger := logging.Discard()
	ws := workspace.New(filepath.Join(blocker, "temp"), logger)
	c := NewCompositor(ws, NewFetcher(ws, time.Second, "", logger), logger)

	_, err := c.Composite(context.Background(), []string{srv.URL + "/red"})
	assert.True(t, errors.Is(err, workspace.ErrUnavailable))
}

func TestFetcher_Fetch(t *testing.T) {
	srv := newImageServer(t)
	logger := logging.Discard()
	ws := workspace.New(filepath.Join(t.TempDir(), "temp"), logger)
	var gotUA string
	uaSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		http.Redirect(w, r, srv.URL+"/red", http.StatusFound)
	}))
	defer uaSrv.Close()

	f := NewFetcher(ws, 5*time.Second, "MTGWhatsAppBot/1.0", logger)

	t.Run("success follows redirects", func(t *testing.T) {
		asset, err := f.Fetch(context.Background(), uaSrv.URL+"/card")
		require.NoError(t, err)
		assert.Equal(t, "MTGWhatsAppBot/1.0", gotUA)

		img, err := imaging.Open(asset.Path)
		require.NoError(t, err)
		assert.Equal(t, 100, img.Bounds().Dx())
		require.NoError(t, ws.Release(asset))
	})

	t.Run("failure leaves nothing behind", func(t *testing.T) {
		asset, err := f.Fetch(context.Background(), srv.URL+"/missing")
		assert.Nil(t, asset)
		assert.True(t, errors.Is(err, ErrDownload))
		assert.Empty(t, testhelpers.DirFiles(t, ws.Dir()))
	})
}
