package assembly

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// WriteQR renders the site URL as a QR code for the outro overlay.
func WriteQR(url, path string) error {
	if err := qrcode.WriteFile(url, qrcode.Medium, 512, path); err != nil {
		return fmt.Errorf("qr encode: %w", err)
	}
	return nil
}
