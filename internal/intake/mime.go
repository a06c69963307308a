package intake

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"
)

// DetectMimeType resolves a MIME type from the file extension. Pasted
// screenshots typically arrive as image/png; unknown extensions fall back to
// application/octet-stream rather than failing intake.
func DetectMimeType(filename string) string {
	ext := filepath.Ext(filename)
	if detected := mime.TypeByExtension(ext); detected != "" {
		return detected
	}
	return "application/octet-stream"
}

// probeImageDimensions reads just the image header of a spooled file. Failures
// are not fatal; dimensions are display metadata only.
func probeImageDimensions(path, mimeType string) (*int, *int) {
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, nil
	}
	width, height := cfg.Width, cfg.Height
	return &width, &height
}
