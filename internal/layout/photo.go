package layout

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	// registered decoders for the photo formats the exporters can embed
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
)

// Photo is a decoded profile picture
type Photo struct {
	MIME   string
	Format string
	Data   []byte
	Width  int
	Height int
}

// ParsePhoto decodes a data URL of the form data:image/<fmt>;base64,<payload>.
// Only formats every exporter can embed (png, jpeg, gif) are accepted.
func ParsePhoto(dataURL string) (*Photo, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(dataURL), "data:")
	if !ok {
		return nil, fmt.Errorf("photo is not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("photo data URL has no payload")
	}
	mime, encoding, _ := strings.Cut(meta, ";")
	if encoding != "base64" {
		return nil, fmt.Errorf("photo data URL must be base64 encoded")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode photo payload: %w", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read photo image: %w", err)
	}

	return &Photo{
		MIME:   strings.ToLower(mime),
		Format: format,
		Data:   data,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

// DataURL re-encodes the photo for inline HTML use
func (p *Photo) DataURL() string {
	return "data:image/" + p.Format + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}
