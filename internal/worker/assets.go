package worker

import (
	"context"
	"fmt"
	"image"

	"github.com/MR-Munggaran/belajar-sertif/internal/render"
	"github.com/MR-Munggaran/belajar-sertif/internal/storage"
)

// NewStorageImageLoader adapts object storage into the render engine's
// background-image loader: references are object keys in the bucket.
func NewStorageImageLoader(client *storage.Client) render.Loader {
	return func(ctx context.Context, ref string) (image.Image, error) {
		obj, err := client.GetObject(ctx, ref)
		if err != nil {
			return nil, err
		}
		defer obj.Close()

		img, _, err := image.Decode(obj)
		if err != nil {
			if _, statErr := obj.Stat(); statErr != nil && storage.IsNoSuchKey(statErr) {
				return nil, fmt.Errorf("background object %q does not exist", ref)
			}
			return nil, fmt.Errorf("decode background %q: %w", ref, err)
		}
		return img, nil
	}
}
