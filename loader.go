package shoal

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png"
	"io/fs"
	"path"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ImageLoader loads and decodes the image at path. Loaders may be called
// concurrently for different paths.
type ImageLoader func(ctx context.Context, path string) (image.Image, error)

// FSImageLoader returns a loader reading from fsys. PNG, WebP and BMP are
// decoded. Leading slashes and an "assets/" prefix are stripped so paths
// written for a web root resolve against the content directory.
func FSImageLoader(fsys fs.FS) ImageLoader {
	return func(ctx context.Context, p string) (image.Image, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := fs.ReadFile(fsys, cleanAssetPath(p))
		if err != nil {
			return nil, err
		}
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", p, err)
		}
		return img, nil
	}
}

// cleanAssetPath normalises an asset path for fs.FS lookups.
func cleanAssetPath(p string) string {
	if p == "" {
		return ""
	}
	s := strings.ReplaceAll(p, "\\", "/")
	s = strings.TrimLeft(s, "/")
	s = strings.TrimPrefix(s, "assets/")
	return path.Clean(s)
}
