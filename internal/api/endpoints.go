package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/and161185/socialclient/internal/model"
)

type tokenOut struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out tokenOut
	in := map[string]string{"email": email, "password": password}
	if err := c.Do(ctx, http.MethodPost, "/auth/login", JSON(in), &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// Register creates an account and returns its first bearer token.
func (c *Client) Register(ctx context.Context, name, email, password string) (string, error) {
	var out tokenOut
	in := map[string]string{"name": name, "email": email, "password": password}
	if err := c.Do(ctx, http.MethodPost, "/auth/register", JSON(in), &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

// Me loads the signed-in user.
func (c *Client) Me(ctx context.Context) (model.User, error) {
	var u model.User
	err := c.Do(ctx, http.MethodGet, "/users/me", nil, &u)
	return u, err
}

// UpdateAvatar uploads a new avatar image and returns the updated user.
func (c *Client) UpdateAvatar(ctx context.Context, up model.Upload) (model.User, error) {
	var u model.User
	body := Multipart{Files: map[string]*model.Upload{"file": &up}}
	err := c.Do(ctx, http.MethodPut, "/users/me/avatar", body, &u)
	return u, err
}

// Feed loads the feed in server order.
func (c *Client) Feed(ctx context.Context) ([]model.FeedItem, error) {
	var items []model.FeedItem
	if err := c.Do(ctx, http.MethodGet, "/feed", nil, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.FeedItem{}
	}
	return items, nil
}

// Post loads one post with its comments.
func (c *Client) Post(ctx context.Context, id int64) (model.PostDetail, error) {
	var d model.PostDetail
	err := c.Do(ctx, http.MethodGet, postPath(id), nil, &d)
	return d, err
}

// CreatePost publishes a draft and returns the new post id.
func (c *Client) CreatePost(ctx context.Context, d model.PostDraft) (int64, error) {
	var out model.FeedItem
	body := Multipart{
		Fields: map[string]string{"text": d.Text},
		Files:  map[string]*model.Upload{"image": d.Image},
	}
	if err := c.Do(ctx, http.MethodPost, "/posts", body, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

// UpdatePost replaces the text and image of a post. A new image wins over RemoveImage.
func (c *Client) UpdatePost(ctx context.Context, id int64, d model.PostDraft) error {
	body := Multipart{
		Fields: map[string]string{
			"text":         d.Text,
			"remove_image": strconv.FormatBool(d.RemoveImage && d.Image == nil),
		},
		Files: map[string]*model.Upload{"image": d.Image},
	}
	return c.Do(ctx, http.MethodPut, postPath(id), body, nil)
}

// DeletePost removes a post owned by the viewer.
func (c *Client) DeletePost(ctx context.Context, id int64) error {
	return c.Do(ctx, http.MethodDelete, postPath(id), nil, nil)
}

// AddComment posts a comment under id.
func (c *Client) AddComment(ctx context.Context, id int64, text string) error {
	in := map[string]string{"text": text}
	return c.Do(ctx, http.MethodPost, postPath(id)+"/comments", JSON(in), nil)
}

// Like marks the post as liked by the viewer.
func (c *Client) Like(ctx context.Context, id int64) error {
	return c.Do(ctx, http.MethodPost, postPath(id)+"/like", nil, nil)
}

// Unlike removes the viewer's like.
func (c *Client) Unlike(ctx context.Context, id int64) error {
	return c.Do(ctx, http.MethodDelete, postPath(id)+"/like", nil, nil)
}

func postPath(id int64) string { return fmt.Sprintf("/posts/%d", id) }
