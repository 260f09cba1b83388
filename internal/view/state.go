// Package view holds the in-memory ViewState and the HTML renderers built on it.
package view

import "github.com/and161185/socialclient/internal/model"

// Notice kinds.
const (
	NoticeInfo  = "info"
	NoticeError = "error"
)

// Notice is a transient message shown once as a toast.
type Notice struct {
	Kind string
	Text string
}

// Draft is an editor image kept between a preview and the save that follows it.
type Draft struct {
	PostID int64 // 0 for a new post
	Text   string
	Image  *model.Upload
}

// State is the client snapshot. Slices are replaced wholesale on every fetch, never patched.
type State struct {
	CurrentUser *model.User
	Feed        []model.FeedItem
	Detail      *model.PostDetail
	Notice      *Notice
	Draft       *Draft
}

// Clone returns a copy that shares no mutable storage with s.
func (s State) Clone() State {
	out := s
	if s.CurrentUser != nil {
		u := *s.CurrentUser
		out.CurrentUser = &u
	}
	if s.Feed != nil {
		out.Feed = append([]model.FeedItem(nil), s.Feed...)
	}
	if s.Detail != nil {
		d := *s.Detail
		d.Comments = append([]model.Comment(nil), s.Detail.Comments...)
		out.Detail = &d
	}
	if s.Notice != nil {
		n := *s.Notice
		out.Notice = &n
	}
	if s.Draft != nil {
		d := *s.Draft
		out.Draft = &d
	}
	return out
}

// CanModify reports whether viewer owns the post and may edit or delete it.
func CanModify(viewer *model.User, post model.FeedItem) bool {
	return viewer != nil && viewer.ID == post.AuthorID
}

// CanComment reports whether the comment form is offered.
func CanComment(viewer *model.User) bool { return viewer != nil }
