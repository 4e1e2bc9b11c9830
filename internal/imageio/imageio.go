// Package imageio loads input chart images from disk.
package imageio

import (
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"os"

	"github.com/PranavKarne/GNN-HF/internal/ecg"
)

// Load reads and decodes the image at path. Any failure (missing file,
// unsupported format, truncated data) is an *ecg.ImageReadError.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ecg.ImageReadError{Path: path, Err: err}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &ecg.ImageReadError{Path: path, Err: err}
	}
	return img, nil
}
