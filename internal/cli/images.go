package cli

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/RevCBH/swarm/internal/api"
)

// loadImages reads each path and encodes it for a prompt. Dimensions are
// attached when the format is one the image package can decode.
func loadImages(paths []string) ([]api.Image, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	images := make([]api.Image, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
		img := api.Image{Data: base64.StdEncoding.EncodeToString(data)}
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			img.Dimension = &api.ImageDimension{Width: cfg.Width, Height: cfg.Height}
		}
		images = append(images, img)
	}
	return images, nil
}

func readAll(r io.Reader) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	return io.ReadAll(r)
}
