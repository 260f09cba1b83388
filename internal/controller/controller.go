// Package controller binds user actions to API calls followed by a resync of every
// affected ViewState slice.
//
// Each mutating action runs idle -> in-flight -> (success -> resync -> idle) | (failure -> idle).
// A repeat trigger for a key that is still in flight is ignored without issuing a request.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/socialclient/internal/api"
	"github.com/and161185/socialclient/internal/errs"
	"github.com/and161185/socialclient/internal/model"
	"github.com/and161185/socialclient/internal/view"
)

// API is the remote surface the controller drives. *api.Client implements it.
type API interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, name, email, password string) (string, error)
	Me(ctx context.Context) (model.User, error)
	UpdateAvatar(ctx context.Context, up model.Upload) (model.User, error)
	Feed(ctx context.Context) ([]model.FeedItem, error)
	Post(ctx context.Context, id int64) (model.PostDetail, error)
	CreatePost(ctx context.Context, d model.PostDraft) (int64, error)
	UpdatePost(ctx context.Context, id int64, d model.PostDraft) error
	DeletePost(ctx context.Context, id int64) error
	AddComment(ctx context.Context, id int64, text string) error
	Like(ctx context.Context, id int64) error
	Unlike(ctx context.Context, id int64) error
}

var _ API = (*api.Client)(nil)

// Sessions is the token store as seen by the controller.
type Sessions interface {
	Token(ctx context.Context) (string, bool, error)
	SetToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Status is the terminal state of one triggered action.
type Status int

const (
	Done Status = iota
	Failed
	Ignored
)

func (s Status) String() string {
	switch s {
	case Done:
		return "done"
	case Failed:
		return "failed"
	case Ignored:
		return "ignored"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Outcome is what an action reports back to the front-end. Failures are already
// recorded as the pending notice; Err is kept for exit codes and logs.
type Outcome struct {
	Status   Status
	Redirect string
	Notice   *view.Notice
	Err      error
}

// Controller owns the ViewState. The mutex is never held across network I/O.
type Controller struct {
	api      API
	sessions Sessions
	log      *zap.Logger

	mu       sync.Mutex
	state    view.State
	inflight map[string]struct{}
}

// New constructs a Controller.
func New(a API, sessions Sessions, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{api: a, sessions: sessions, log: log, inflight: map[string]struct{}{}}
}

// State returns a copy of the current ViewState.
func (c *Controller) State() view.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Snapshot returns a copy of the ViewState for rendering and consumes the pending notice.
func (c *Controller) Snapshot() view.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.state.Clone()
	c.state.Notice = nil
	return st
}

// InFlight reports whether an action for key is running.
func (c *Controller) InFlight(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inflight[key]
	return ok
}

// PostKey is the in-flight key of post-scoped actions.
func PostKey(id int64) string { return fmt.Sprintf("post:%d", id) }

const (
	keyAuth   = "auth"
	keyAvatar = "avatar"
	keyEditor = "editor"
)

func (c *Controller) begin(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inflight[key]; busy {
		return false
	}
	c.inflight[key] = struct{}{}
	return true
}

func (c *Controller) end(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, key)
}

func (c *Controller) update(fn func(st *view.State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.state)
}

func (c *Controller) viewer() *model.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.CurrentUser == nil {
		return nil
	}
	u := *c.state.CurrentUser
	return &u
}

// knownPost finds a post in the open detail or the feed.
func (c *Controller) knownPost(id int64) (model.FeedItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d := c.state.Detail; d != nil && d.Post.ID == id {
		return d.Post, true
	}
	for _, it := range c.state.Feed {
		if it.ID == id {
			return it, true
		}
	}
	return model.FeedItem{}, false
}

// ---- outcomes ----

type validationError struct{ msg string }

func (e *validationError) Error() string { return e.msg }
func (e *validationError) Unwrap() error { return errs.ErrValidation }

func invalid(msg string) error { return &validationError{msg: msg} }

// Notice texts for failures that carry no server message.
const (
	msgLoginRequired = "Please log in to continue"
	msgNotOwner      = "You can only change your own posts"
	msgPostNotFound  = "Post not found"
)

func (c *Controller) done(action string, start time.Time, redirect string, notice *view.Notice) Outcome {
	if notice != nil {
		c.update(func(st *view.State) { st.Notice = notice })
	}
	c.log.Info("action",
		zap.String("action", action),
		zap.String("status", Done.String()),
		zap.Duration("dur", time.Since(start)),
	)
	return Outcome{Status: Done, Redirect: redirect, Notice: notice}
}

func (c *Controller) ignored(action, key string) Outcome {
	c.log.Debug("action",
		zap.String("action", action),
		zap.String("status", Ignored.String()),
		zap.String("key", key),
	)
	return Outcome{Status: Ignored, Err: errs.ErrInFlight}
}

// fail maps err onto the error taxonomy, records the notice and leaves every other slice untouched.
func (c *Controller) fail(action string, start time.Time, err error) Outcome {
	out := Outcome{Status: Failed, Err: err}
	text := api.GenericMessage
	var ve *validationError
	switch {
	case errors.As(err, &ve):
		text = ve.msg
	case errors.Is(err, errs.ErrAuthRequired):
		text = msgLoginRequired
		if re, ok := api.IsRemote(err); ok && re.Status != 0 && re.Message != api.GenericMessage {
			text = re.Message
		}
		out.Redirect = "/login"
		c.update(func(st *view.State) { st.CurrentUser = nil })
	case errors.Is(err, errs.ErrForbidden):
		text = msgNotOwner
		out.Redirect = "/"
	case errors.Is(err, errs.ErrNotFound):
		text = msgPostNotFound
		out.Redirect = "/"
	default:
		if re, ok := api.IsRemote(err); ok {
			text = re.Message
		}
	}
	out.Notice = &view.Notice{Kind: view.NoticeError, Text: text}
	c.update(func(st *view.State) { st.Notice = out.Notice })

	c.log.Warn("action",
		zap.String("action", action),
		zap.String("status", Failed.String()),
		zap.Duration("dur", time.Since(start)),
		zap.Error(err),
	)
	return out
}

// ---- resync ----

type slice uint8

const (
	sliceUser slice = 1 << iota
	sliceFeed
	sliceDetail
)

// resync refetches each requested slice in order user, detail, feed. The detail slice is
// refetched only while a post is open; a detail that vanished (404) is closed.
func (c *Controller) resync(ctx context.Context, which slice) error {
	var firstErr error
	keep := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	if which&sliceUser != 0 {
		if err := c.syncUser(ctx); err != nil {
			keep(err)
		}
	}
	if which&sliceDetail != 0 {
		var openID int64
		c.update(func(st *view.State) {
			if st.Detail != nil {
				openID = st.Detail.Post.ID
			}
		})
		if openID != 0 {
			d, err := c.api.Post(ctx, openID)
			switch {
			case err == nil:
				c.update(func(st *view.State) {
					if st.Detail != nil && st.Detail.Post.ID == openID {
						st.Detail = &d
					}
				})
			case errors.Is(err, errs.ErrNotFound):
				c.update(func(st *view.State) { st.Detail = nil })
			default:
				keep(err)
			}
		}
	}
	if which&sliceFeed != 0 {
		items, err := c.api.Feed(ctx)
		if err != nil {
			keep(err)
		} else {
			c.update(func(st *view.State) { st.Feed = items })
		}
	}
	return firstErr
}

// syncUser refreshes CurrentUser when a session exists. A rejected token has already been
// cleared by the API client, so the user simply becomes anonymous.
func (c *Controller) syncUser(ctx context.Context) error {
	_, ok, err := c.sessions.Token(ctx)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	if !ok {
		c.update(func(st *view.State) { st.CurrentUser = nil })
		return nil
	}
	u, err := c.api.Me(ctx)
	if errors.Is(err, errs.ErrAuthRequired) {
		c.update(func(st *view.State) { st.CurrentUser = nil })
		return nil
	}
	if err != nil {
		return err
	}
	c.update(func(st *view.State) { st.CurrentUser = &u })
	return nil
}

// afterMutation resyncs and converts a resync failure into a notice without undoing success.
func (c *Controller) afterMutation(ctx context.Context, action string, start time.Time, which slice, redirect string, notice *view.Notice) Outcome {
	if err := c.resync(ctx, which); err != nil {
		out := c.fail(action+".resync", start, err)
		out.Status = Done
		if out.Redirect == "" {
			out.Redirect = redirect
		}
		return out
	}
	return c.done(action, start, redirect, notice)
}

// requireUser resolves the viewer for a gated action. Without a loaded user the stored
// token decides: it is resolved through GET /users/me, and only its absence or rejection
// fails with ErrAuthRequired.
func (c *Controller) requireUser(ctx context.Context, action string, start time.Time) (*model.User, Outcome, bool) {
	if u := c.viewer(); u != nil {
		return u, Outcome{}, true
	}
	if err := c.syncUser(ctx); err != nil {
		return nil, c.fail(action, start, err), false
	}
	u := c.viewer()
	if u == nil {
		return nil, c.fail(action, start, errs.ErrAuthRequired), false
	}
	return u, Outcome{}, true
}

func trimmed(s string) string { return strings.TrimSpace(s) }
