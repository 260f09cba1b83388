package controller

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/and161185/socialclient/internal/errs"
	"github.com/and161185/socialclient/internal/model"
	"github.com/and161185/socialclient/internal/view"
)

// Load is the page entry transition: refresh the session user, drop any open post
// and fetch the feed.
func (c *Controller) Load(ctx context.Context) Outcome {
	start := time.Now()
	c.update(func(st *view.State) { st.Detail = nil })
	if err := c.resync(ctx, sliceUser|sliceFeed); err != nil {
		return c.fail("load", start, err)
	}
	return c.done("load", start, "", nil)
}

// OpenPost enters the "detail open" state, either from a feed click or a direct /post/{id} URL.
func (c *Controller) OpenPost(ctx context.Context, id int64) Outcome {
	start := time.Now()
	if err := c.open(ctx, id); err != nil {
		return c.fail("open", start, err)
	}
	return c.done("open", start, "", nil)
}

func (c *Controller) open(ctx context.Context, id int64) error {
	d, err := c.api.Post(ctx, id)
	if err != nil {
		return err
	}
	c.update(func(st *view.State) { st.Detail = &d })
	return nil
}

// ClosePost destroys the open PostDetail.
func (c *Controller) ClosePost() {
	c.update(func(st *view.State) { st.Detail = nil })
}

// Login exchanges credentials for a token, stores it and resyncs everything.
func (c *Controller) Login(ctx context.Context, email, password string) Outcome {
	start := time.Now()
	email = trimmed(email)
	if email == "" || password == "" {
		return c.fail("login", start, invalid("Email and password are required"))
	}
	if !c.begin(keyAuth) {
		return c.ignored("login", keyAuth)
	}
	defer c.end(keyAuth)

	tok, err := c.api.Login(ctx, email, password)
	if err != nil {
		return c.fail("login", start, err)
	}
	if err := c.sessions.SetToken(ctx, tok); err != nil {
		return c.fail("login", start, fmt.Errorf("store session: %w", err))
	}
	return c.afterMutation(ctx, "login", start, sliceUser|sliceDetail|sliceFeed, "/", nil)
}

// Register creates an account and signs in with the returned token.
func (c *Controller) Register(ctx context.Context, name, email, password string) Outcome {
	start := time.Now()
	name, email = trimmed(name), trimmed(email)
	switch {
	case name == "" || email == "" || password == "":
		return c.fail("register", start, invalid("Name, email and password are required"))
	case utf8.RuneCountInString(password) < minPassword:
		return c.fail("register", start, invalid("Password must be at least 6 characters"))
	}
	if !c.begin(keyAuth) {
		return c.ignored("register", keyAuth)
	}
	defer c.end(keyAuth)

	tok, err := c.api.Register(ctx, name, email, password)
	if err != nil {
		return c.fail("register", start, err)
	}
	if err := c.sessions.SetToken(ctx, tok); err != nil {
		return c.fail("register", start, fmt.Errorf("store session: %w", err))
	}
	return c.afterMutation(ctx, "register", start, sliceUser|sliceDetail|sliceFeed, "/", nil)
}

// Logout destroys the session and refetches the now anonymous views.
func (c *Controller) Logout(ctx context.Context) Outcome {
	start := time.Now()
	if err := c.sessions.Clear(ctx); err != nil {
		return c.fail("logout", start, fmt.Errorf("clear session: %w", err))
	}
	c.update(func(st *view.State) {
		st.CurrentUser = nil
		st.Draft = nil
	})
	return c.afterMutation(ctx, "logout", start, sliceDetail|sliceFeed, "/", nil)
}

// ToggleLike flips the like state the viewer currently sees for the post. The direction
// comes from the rendered liked flag; a second trigger while the first is in flight is ignored.
func (c *Controller) ToggleLike(ctx context.Context, id int64, renderedLiked bool) Outcome {
	start := time.Now()
	if _, out, ok := c.requireUser(ctx, "like", start); !ok {
		return out
	}
	key := PostKey(id)
	if !c.begin(key) {
		return c.ignored("like", key)
	}
	defer c.end(key)

	var err error
	if renderedLiked {
		err = c.api.Unlike(ctx, id)
	} else {
		err = c.api.Like(ctx, id)
	}
	if err != nil {
		return c.fail("like", start, err)
	}
	return c.afterMutation(ctx, "like", start, sliceDetail|sliceFeed, "", nil)
}

// AddComment validates and posts a comment, then resyncs detail and feed counts.
func (c *Controller) AddComment(ctx context.Context, id int64, text string) Outcome {
	start := time.Now()
	text = trimmed(text)
	if text == "" {
		return c.fail("comment", start, invalid("Comment text is required"))
	}
	if utf8.RuneCountInString(text) > maxCommentText {
		return c.fail("comment", start, invalid("Comment is too long"))
	}
	if _, out, ok := c.requireUser(ctx, "comment", start); !ok {
		return out
	}
	key := PostKey(id)
	if !c.begin(key) {
		return c.ignored("comment", key)
	}
	defer c.end(key)

	if err := c.api.AddComment(ctx, id, text); err != nil {
		return c.fail("comment", start, err)
	}
	return c.afterMutation(ctx, "comment", start, sliceDetail|sliceFeed, fmt.Sprintf("/post/%d", id), nil)
}

// DeletePost removes a post the viewer owns. Deleting someone else's post is refused
// locally when the post is known, and by the API otherwise.
func (c *Controller) DeletePost(ctx context.Context, id int64) Outcome {
	start := time.Now()
	u, out, ok := c.requireUser(ctx, "delete", start)
	if !ok {
		return out
	}
	if p, known := c.knownPost(id); known && !view.CanModify(u, p) {
		return c.fail("delete", start, errs.ErrForbidden)
	}
	key := PostKey(id)
	if !c.begin(key) {
		return c.ignored("delete", key)
	}
	defer c.end(key)

	if err := c.api.DeletePost(ctx, id); err != nil {
		return c.fail("delete", start, err)
	}
	c.update(func(st *view.State) {
		if st.Detail != nil && st.Detail.Post.ID == id {
			st.Detail = nil
		}
	})
	return c.afterMutation(ctx, "delete", start, sliceDetail|sliceFeed, "/", &view.Notice{Kind: view.NoticeInfo, Text: "Post deleted"})
}

// UpdateAvatar uploads a new avatar and resyncs every slice that shows it.
func (c *Controller) UpdateAvatar(ctx context.Context, up model.Upload) Outcome {
	start := time.Now()
	if _, out, ok := c.requireUser(ctx, "avatar", start); !ok {
		return out
	}
	if err := validateImage(&up); err != nil {
		return c.fail("avatar", start, err)
	}
	if !c.begin(keyAvatar) {
		return c.ignored("avatar", keyAvatar)
	}
	defer c.end(keyAvatar)

	if _, err := c.api.UpdateAvatar(ctx, up); err != nil {
		return c.fail("avatar", start, err)
	}
	return c.afterMutation(ctx, "avatar", start, sliceUser|sliceDetail|sliceFeed, "", &view.Notice{Kind: view.NoticeInfo, Text: "Avatar updated"})
}

// NewPost is the entry transition into the empty editor.
func (c *Controller) NewPost(ctx context.Context) (view.EditorData, Outcome) {
	start := time.Now()
	if _, out, ok := c.requireUser(ctx, "editor", start); !ok {
		return view.EditorData{}, out
	}
	ed := view.EditorData{}
	c.update(func(st *view.State) {
		if st.Draft != nil && st.Draft.PostID == 0 {
			ed.Text, ed.Preview = st.Draft.Text, st.Draft.Image
		}
	})
	return ed, c.done("editor", start, "", nil)
}

// EditPost is the entry transition into the editor for an existing post; only its author may enter.
func (c *Controller) EditPost(ctx context.Context, id int64) (view.EditorData, Outcome) {
	start := time.Now()
	u, out, ok := c.requireUser(ctx, "editor", start)
	if !ok {
		return view.EditorData{}, out
	}
	d, err := c.api.Post(ctx, id)
	if err != nil {
		return view.EditorData{}, c.fail("editor", start, err)
	}
	if !view.CanModify(u, d.Post) {
		return view.EditorData{}, c.fail("editor", start, errs.ErrForbidden)
	}
	ed := view.EditorData{PostID: id, Text: d.Post.Text, ImageURL: model.StringOr(d.Post.ImageURL, "")}
	c.update(func(st *view.State) {
		if st.Draft != nil && st.Draft.PostID == id {
			ed.Text, ed.Preview = st.Draft.Text, st.Draft.Image
		}
	})
	return ed, c.done("editor", start, "", nil)
}

// Preview keeps the chosen image as a local draft so the editor can show it before saving.
// No request is sent.
func (c *Controller) Preview(ctx context.Context, postID int64, text string, image *model.Upload, removeImage bool) (view.EditorData, Outcome) {
	start := time.Now()
	if _, out, ok := c.requireUser(ctx, "preview", start); !ok {
		return view.EditorData{}, out
	}
	ed := view.EditorData{PostID: postID, Text: text, RemoveImage: removeImage}
	if image != nil {
		if err := validateImage(image); err != nil {
			return ed, c.fail("preview", start, err)
		}
	}
	c.update(func(st *view.State) {
		if image == nil && st.Draft != nil && st.Draft.PostID == postID {
			image = st.Draft.Image
		}
		st.Draft = &view.Draft{PostID: postID, Text: text, Image: image}
		if postID != 0 && st.Detail != nil && st.Detail.Post.ID == postID {
			ed.ImageURL = model.StringOr(st.Detail.Post.ImageURL, "")
		}
	})
	ed.Preview = image
	return ed, c.done("preview", start, "", nil)
}

// CreatePost publishes the draft and opens the new post.
func (c *Controller) CreatePost(ctx context.Context, d model.PostDraft) Outcome {
	start := time.Now()
	if _, out, ok := c.requireUser(ctx, "create", start); !ok {
		return out
	}
	d = c.withDraftImage(0, d)
	if err := validateDraft(&d); err != nil {
		return c.fail("create", start, err)
	}
	if !c.begin(keyEditor) {
		return c.ignored("create", keyEditor)
	}
	defer c.end(keyEditor)

	id, err := c.api.CreatePost(ctx, d)
	if err != nil {
		return c.fail("create", start, err)
	}
	c.update(func(st *view.State) { st.Draft = nil })
	if err := c.open(ctx, id); err != nil {
		out := c.fail("create.resync", start, err)
		out.Status, out.Redirect = Done, fmt.Sprintf("/post/%d", id)
		return out
	}
	return c.afterMutation(ctx, "create", start, sliceFeed, fmt.Sprintf("/post/%d", id), nil)
}

// UpdatePost saves the editor for an existing post and resyncs detail and feed.
func (c *Controller) UpdatePost(ctx context.Context, id int64, d model.PostDraft) Outcome {
	start := time.Now()
	u, out, ok := c.requireUser(ctx, "update", start)
	if !ok {
		return out
	}
	if p, known := c.knownPost(id); known && !view.CanModify(u, p) {
		return c.fail("update", start, errs.ErrForbidden)
	}
	d = c.withDraftImage(id, d)
	if err := validateDraft(&d); err != nil {
		return c.fail("update", start, err)
	}
	key := PostKey(id)
	if !c.begin(key) {
		return c.ignored("update", key)
	}
	defer c.end(key)

	if err := c.api.UpdatePost(ctx, id, d); err != nil {
		return c.fail("update", start, err)
	}
	c.update(func(st *view.State) { st.Draft = nil })
	if err := c.open(ctx, id); err != nil {
		out := c.fail("update.resync", start, err)
		out.Status, out.Redirect = Done, fmt.Sprintf("/post/%d", id)
		return out
	}
	return c.afterMutation(ctx, "update", start, sliceFeed, fmt.Sprintf("/post/%d", id), nil)
}

// withDraftImage reuses a previewed image when the save carries none.
func (c *Controller) withDraftImage(postID int64, d model.PostDraft) model.PostDraft {
	if d.Image != nil {
		return d
	}
	c.update(func(st *view.State) {
		if st.Draft != nil && st.Draft.PostID == postID && st.Draft.Image != nil {
			img := *st.Draft.Image
			d.Image = &img
		}
	})
	return d
}
