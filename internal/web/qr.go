package web

import (
	"fmt"
	"net/http"
	"os"

	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"
)

// QR serves the current pairing code as a PNG QR code, or 404 when no
// pairing is pending.
func (h *Handler) QR(w http.ResponseWriter, r *http.Request) {
	code, ok := h.pairing.Get()
	if !ok {
		http.Error(w, "No pairing code available", http.StatusNotFound)
		return
	}

	png, err := h.qrPNGFor(code)
	if err != nil {
		h.logger.Error("❌ failed to render QR code", "err", err)
		http.Error(w, "Failed to render QR code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// qrPNGFor renders code once and reuses the PNG until the code changes.
func (h *Handler) qrPNGFor(code string) ([]byte, error) {
	h.qrMu.Lock()
	defer h.qrMu.Unlock()

	if h.qrCode == code && h.qrPNG != nil {
		return h.qrPNG, nil
	}

	png, err := h.renderQR(code)
	if err != nil {
		return nil, err
	}
	h.qrCode, h.qrPNG = code, png
	return png, nil
}

func (h *Handler) renderQR(code string) ([]byte, error) {
	qrc, err := qrcode.NewWith(code,
		qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionMedium),
		qrcode.WithEncodingMode(qrcode.EncModeByte),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	// The standard writer only writes to files
	asset, err := h.ws.NewAsset("qr", ".png")
	if err != nil {
		return nil, err
	}
	defer h.ws.Release(asset)

	qw, err := standard.New(asset.Path,
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
		standard.WithQRWidth(8),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create writer: %w", err)
	}
	if err := qrc.Save(qw); err != nil {
		return nil, fmt.Errorf("failed to save QR code: %w", err)
	}

	data, err := os.ReadFile(asset.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read QR code file: %w", err)
	}
	return data, nil
}
