package core

import (
	"context"
)

// Attachment represents a debug artifact captured when a step fails
type Attachment struct {
	Name        string `json:"name"`        // Descriptive name: screenshot, source
	ContentType string `json:"contentType"` // MIME type: image/png, application/xml
	Path        string `json:"path"`        // File path the artifact was written to
	Body        []byte `json:"-"`           // In-memory content (not serialized to JSON)
}

// Common attachment names
const (
	AttachmentScreenshot = "screenshot"
	AttachmentSource     = "source"
)

// Common content types
const (
	ContentTypePNG = "image/png"
	ContentTypeXML = "application/xml"
)

// NewScreenshotAttachment creates a screenshot attachment
func NewScreenshotAttachment(path string, data []byte) Attachment {
	return Attachment{
		Name:        AttachmentScreenshot,
		ContentType: ContentTypePNG,
		Path:        path,
		Body:        data,
	}
}

// NewSourceAttachment creates a UI tree attachment
func NewSourceAttachment(path string, data []byte) Attachment {
	return Attachment{
		Name:        AttachmentSource,
		ContentType: ContentTypeXML,
		Path:        path,
		Body:        data,
	}
}

// CaptureFailureArtifacts grabs a screenshot and the UI tree from s.
// Capture errors are ignored: a failed step is reported either way.
func CaptureFailureArtifacts(ctx context.Context, s Session) []Attachment {
	if s == nil {
		return nil
	}
	var out []Attachment
	if png, err := s.Screenshot(ctx); err == nil && len(png) > 0 {
		out = append(out, NewScreenshotAttachment("", png))
	}
	if src, err := s.Source(ctx); err == nil && src != "" {
		out = append(out, NewSourceAttachment("", []byte(src)))
	}
	return out
}
