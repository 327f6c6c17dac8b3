package assembly

import (
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
)

// PosterFrame downscales the first captured frame of the first shot into a
// thumbnail shown while the video loads.
func PosterFrame(firstShotDir, outputPath string, maxWidth int) error {
	src, err := openFrame(filepath.Join(firstShotDir, "frame_0000.jpg"))
	if err != nil {
		return err
	}

	bounds := src.Bounds()
	if bounds.Dx() <= maxWidth {
		return writeJPEG(src, outputPath)
	}

	h := bounds.Dy() * maxWidth / bounds.Dx()
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	return writeJPEG(dst, outputPath)
}

func openFrame(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frame: %w", err)
	}
	defer f.Close()

	img, err := jpeg.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return img, nil
}

func writeJPEG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create poster: %w", err)
	}
	defer f.Close()

	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 85}); err != nil {
		return fmt.Errorf("encode poster: %w", err)
	}
	return nil
}
