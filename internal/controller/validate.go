package controller

import (
	"github.com/and161185/socialclient/internal/model"
	"github.com/and161185/socialclient/internal/view"
)

// Field limits the API enforces, counted in characters.
const (
	minPassword    = 6
	maxCommentText = 2000
)

func validateImage(up *model.Upload) error {
	if up.Filename == "" {
		return invalid("No file selected")
	}
	ct := view.ImageContentType(up.Filename)
	if ct == "" {
		return invalid("Unsupported image format")
	}
	if len(up.Data) == 0 {
		return invalid("Empty file")
	}
	if up.ContentType == "" {
		up.ContentType = ct
	}
	return nil
}

func validateDraft(d *model.PostDraft) error {
	d.Text = trimmed(d.Text)
	if d.Text == "" {
		return invalid("Post text is required")
	}
	if d.Image != nil {
		return validateImage(d.Image)
	}
	return nil
}
