// Package model defines the client-side entities decoded from the social API.
package model

import "time"

// Session is the locally held credential. An empty Token means "absent".
type Session struct {
	Token     string
	ExpiresAt time.Time // hint only; zero when the token carries no expiry
}

// User is the signed-in account as returned by GET /users/me.
type User struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatar_url"`
	CreatedAt string  `json:"created_at"`
}

// FeedItem is a post summary as shown in the list view.
type FeedItem struct {
	ID              int64   `json:"id"`
	AuthorID        int64   `json:"author_id"`
	AuthorName      string  `json:"author_name"`
	AuthorAvatarURL *string `json:"author_avatar_url"`
	Text            string  `json:"text"`
	ImageURL        *string `json:"image_url"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       *string `json:"updated_at"`
	LikesCount      int     `json:"likes_count"`
	CommentsCount   int     `json:"comments_count"`
	LikedByMe       bool    `json:"liked_by_me"`
}

// Comment is a single comment under a post, in server order.
type Comment struct {
	ID              int64   `json:"id"`
	PostID          int64   `json:"post_id"`
	AuthorID        int64   `json:"author_id"`
	AuthorName      string  `json:"author_name"`
	AuthorAvatarURL *string `json:"author_avatar_url"`
	Text            string  `json:"text"`
	CreatedAt       string  `json:"created_at"`
}

// PostDetail is one open post with its comments.
// LikedByMe is authoritative; Post.LikedByMe is not filled by the detail endpoint.
type PostDetail struct {
	Post      FeedItem  `json:"post"`
	Comments  []Comment `json:"comments"`
	LikedByMe bool      `json:"liked_by_me"`
}

// Upload is an image chosen by the user for a post or avatar.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// PostDraft is the editor payload for create/update.
type PostDraft struct {
	Text        string
	Image       *Upload
	RemoveImage bool
}

// StringOr dereferences an optional string field.
func StringOr(p *string, def string) string {
	if p == nil || *p == "" {
		return def
	}
	return *p
}
