package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/and161185/socialclient/internal/model"
)

// run dispatches one subcommand.
func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "register":
		return a.cmdRegister(ctx, args)
	case "login":
		return a.cmdLogin(ctx, args)
	case "logout":
		return a.check(a.ctl.Logout(ctx))
	case "status":
		return a.cmdStatus(ctx)
	case "me":
		if err := a.signedIn(ctx); err != nil {
			return err
		}
		a.printJSON(a.ctl.State().CurrentUser)
		return nil
	case "feed":
		if err := a.check(a.ctl.Load(ctx)); err != nil {
			return err
		}
		a.printJSON(a.ctl.State().Feed)
		return nil
	case "show":
		return a.cmdShow(ctx, args)
	case "like":
		return a.cmdLike(ctx, args)
	case "comment":
		return a.cmdComment(ctx, args)
	case "post":
		return a.cmdPost(ctx, args)
	case "edit":
		return a.cmdEdit(ctx, args)
	case "rm":
		return a.cmdRm(ctx, args)
	case "avatar":
		return a.cmdAvatar(ctx, args)
	}
	return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
}

func newFlagSet(name string, errOut io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(errOut)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%s: %w", fs.Name(), errUsage)
	}
	return nil
}

// password reads "-" from stdin so it stays out of shell history.
func password(p string) (string, error) {
	if p != "-" {
		return p, nil
	}
	b, err := readAll("-")
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}

// textArg picks -text, or the contents of -file ('-'=stdin).
func textArg(text, file string) (string, error) {
	if file == "" {
		return text, nil
	}
	b, err := readAll(file)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func imageArg(path string) (*model.Upload, error) {
	if path == "" {
		return nil, nil
	}
	b, err := readAll(path)
	if err != nil {
		return nil, err
	}
	return &model.Upload{Filename: filepath.Base(path), Data: b}, nil
}

func postIDFlag(fs *flag.FlagSet) *int64 {
	return fs.Int64("id", 0, "post id")
}

func needID(cmd string, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%s: need -id: %w", cmd, errUsage)
	}
	return nil
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	fs := newFlagSet("register", a.errOut)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email")
	p := fs.String("p", "", "password ('-'=stdin)")
	if err := parse(fs, args); err != nil {
		return err
	}
	pw, err := password(*p)
	if err != nil {
		return err
	}
	if err := a.check(a.ctl.Register(ctx, *name, *email, pw)); err != nil {
		return err
	}
	a.ok()
	return nil
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := newFlagSet("login", a.errOut)
	email := fs.String("email", "", "email")
	p := fs.String("p", "", "password ('-'=stdin)")
	if err := parse(fs, args); err != nil {
		return err
	}
	pw, err := password(*p)
	if err != nil {
		return err
	}
	if err := a.check(a.ctl.Login(ctx, *email, pw)); err != nil {
		return err
	}
	a.ok()
	return nil
}

type statusOut struct {
	Backend   string     `json:"backend"`
	SignedIn  bool       `json:"signed_in"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Expired   bool       `json:"expired,omitempty"`
}

// cmdStatus reports the stored session without contacting the API.
func (a *app) cmdStatus(ctx context.Context) error {
	sess, ok, err := a.store.Session(ctx)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	st := statusOut{Backend: a.backend, SignedIn: ok}
	if ok && !sess.ExpiresAt.IsZero() {
		exp := sess.ExpiresAt.UTC()
		st.ExpiresAt = &exp
		st.Expired = time.Now().After(exp)
	}
	a.printJSON(st)
	return nil
}

func (a *app) cmdShow(ctx context.Context, args []string) error {
	fs := newFlagSet("show", a.errOut)
	id := postIDFlag(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := needID("show", *id); err != nil {
		return err
	}
	if err := a.check(a.ctl.OpenPost(ctx, *id)); err != nil {
		return err
	}
	a.printJSON(a.ctl.State().Detail)
	return nil
}

type likeOut struct {
	ID         int64 `json:"id"`
	LikedByMe  bool  `json:"liked_by_me"`
	LikesCount int   `json:"likes_count"`
}

// cmdLike toggles from the like state the server reports for the viewer.
func (a *app) cmdLike(ctx context.Context, args []string) error {
	fs := newFlagSet("like", a.errOut)
	id := postIDFlag(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := needID("like", *id); err != nil {
		return err
	}
	if err := a.signedIn(ctx); err != nil {
		return err
	}
	if err := a.check(a.ctl.OpenPost(ctx, *id)); err != nil {
		return err
	}
	liked := a.ctl.State().Detail.LikedByMe
	if err := a.check(a.ctl.ToggleLike(ctx, *id, liked)); err != nil {
		return err
	}
	st := a.ctl.State()
	out := likeOut{ID: *id}
	if st.Detail != nil {
		out.LikedByMe, out.LikesCount = st.Detail.LikedByMe, st.Detail.Post.LikesCount
	}
	a.printJSON(out)
	return nil
}

func (a *app) cmdComment(ctx context.Context, args []string) error {
	fs := newFlagSet("comment", a.errOut)
	id := postIDFlag(fs)
	text := fs.String("text", "", "comment text")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := needID("comment", *id); err != nil {
		return err
	}
	if err := a.signedIn(ctx); err != nil {
		return err
	}
	if err := a.check(a.ctl.AddComment(ctx, *id, *text)); err != nil {
		return err
	}
	a.ok()
	return nil
}

func (a *app) cmdPost(ctx context.Context, args []string) error {
	fs := newFlagSet("post", a.errOut)
	text := fs.String("text", "", "post text")
	file := fs.String("file", "", "read text from file ('-'=stdin)")
	image := fs.String("image", "", "image file")
	if err := parse(fs, args); err != nil {
		return err
	}
	body, err := textArg(*text, *file)
	if err != nil {
		return err
	}
	img, err := imageArg(*image)
	if err != nil {
		return err
	}
	if err := a.signedIn(ctx); err != nil {
		return err
	}
	if err := a.check(a.ctl.CreatePost(ctx, model.PostDraft{Text: body, Image: img})); err != nil {
		return err
	}
	if d := a.ctl.State().Detail; d != nil {
		a.printJSON(d.Post)
	}
	return nil
}

func (a *app) cmdEdit(ctx context.Context, args []string) error {
	fs := newFlagSet("edit", a.errOut)
	id := postIDFlag(fs)
	text := fs.String("text", "", "post text")
	file := fs.String("file", "", "read text from file ('-'=stdin)")
	image := fs.String("image", "", "replacement image file")
	remove := fs.Bool("remove-image", false, "drop the current image")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := needID("edit", *id); err != nil {
		return err
	}
	body, err := textArg(*text, *file)
	if err != nil {
		return err
	}
	img, err := imageArg(*image)
	if err != nil {
		return err
	}
	if err := a.signedIn(ctx); err != nil {
		return err
	}
	if err := a.check(a.ctl.OpenPost(ctx, *id)); err != nil {
		return err
	}
	if err := a.check(a.ctl.UpdatePost(ctx, *id, model.PostDraft{Text: body, Image: img, RemoveImage: *remove})); err != nil {
		return err
	}
	if d := a.ctl.State().Detail; d != nil {
		a.printJSON(d.Post)
	}
	return nil
}

func (a *app) cmdRm(ctx context.Context, args []string) error {
	fs := newFlagSet("rm", a.errOut)
	id := postIDFlag(fs)
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := needID("rm", *id); err != nil {
		return err
	}
	if err := a.signedIn(ctx); err != nil {
		return err
	}
	if err := a.check(a.ctl.OpenPost(ctx, *id)); err != nil {
		return err
	}
	if err := a.check(a.ctl.DeletePost(ctx, *id)); err != nil {
		return err
	}
	a.ok()
	return nil
}

func (a *app) cmdAvatar(ctx context.Context, args []string) error {
	fs := newFlagSet("avatar", a.errOut)
	file := fs.String("file", "", "image file")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("avatar: need -file: %w", errUsage)
	}
	up, err := imageArg(*file)
	if err != nil {
		return err
	}
	if err := a.signedIn(ctx); err != nil {
		return err
	}
	if err := a.check(a.ctl.UpdateAvatar(ctx, *up)); err != nil {
		return err
	}
	a.printJSON(a.ctl.State().CurrentUser)
	return nil
}
