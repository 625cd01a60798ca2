package gallery

import (
	"fmt"
	"strconv"
	"strings"
)

// Tag is a label attached to an image.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Image is the backend's image record. Timestamps are kept as the strings the
// backend sends.
type Image struct {
	ID            int64  `json:"id"`
	UserID        int64  `json:"user_id"`
	Filename      string `json:"filename"`
	Description   string `json:"description,omitempty"`
	FilePath      string `json:"file_path"`
	ThumbnailPath string `json:"thumbnail_path,omitempty"`
	UploadTime    string `json:"upload_time,omitempty"`
	CaptureTime   string `json:"capture_time,omitempty"`
	Location      string `json:"location,omitempty"`
	Resolution    string `json:"resolution,omitempty"`
	AIDescription string `json:"ai_description,omitempty"`
	Tags          []Tag  `json:"tags,omitempty"`
}

// Dimensions parses the "WxH" resolution field.
func (img *Image) Dimensions() (w, h int, err error) {
	return ParseResolution(img.Resolution)
}

// ParseResolution parses "WxH". "0x0" (unknown) is an error.
func ParseResolution(s string) (w, h int, err error) {
	ws, hs, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid resolution %q", s)
	}
	w, err = strconv.Atoi(strings.TrimSpace(ws))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid resolution %q: %w", s, err)
	}
	h, err = strconv.Atoi(strings.TrimSpace(hs))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid resolution %q: %w", s, err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid resolution %q", s)
	}
	return w, h, nil
}
