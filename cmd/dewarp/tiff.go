package main

import (
	"image"
	"os"

	"golang.org/x/image/tiff"

	"pagedewarp/internal/tiffmeta"
)

// writeTIFF encodes img as a TIFF file and stamps its DPI resolution tags,
// reusing golang.org/x/image/tiff for the pixel encode (already part of the
// teacher's stack via cmd/aligntest) and internal/tiffmeta for the
// resolution tag patch the standard encoder doesn't expose.
func writeTIFF(path string, img image.Image, dpi float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return tiffmeta.WriteDPITag(path, dpi)
}
