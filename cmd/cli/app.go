package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/and161185/socialclient/internal/api"
	"github.com/and161185/socialclient/internal/controller"
	"github.com/and161185/socialclient/internal/errs"
	"github.com/and161185/socialclient/internal/session"
	"github.com/and161185/socialclient/internal/view"
)

var errUsage = errors.New("usage")

// app is one CLI invocation: a session store, the controller over it and the output streams.
type app struct {
	backend string
	store   *session.Store
	ctl     *controller.Controller
	out     io.Writer
	errOut  io.Writer
}

func newApp(ctx context.Context, cfg config, out, errOut io.Writer, log *zap.Logger) (*app, func(), error) {
	slot, release, err := session.Open(ctx, session.Options{
		Backend:     cfg.store,
		Dir:         cfg.dir,
		RedisURL:    cfg.redisURL,
		RedisPrefix: "socialctl:",
		DSN:         cfg.dsn,
		Migrate:     cfg.migrate,
		Passphrase:  cfg.passphrase,
	})
	if err != nil {
		return nil, nil, err
	}
	store := session.NewStore(slot)
	client := api.New(cfg.api, store, api.WithLogger(log))
	return &app{
		backend: cfg.store,
		store:   store,
		ctl:     controller.New(client, store, log),
		out:     out,
		errOut:  errOut,
	}, release, nil
}

func (a *app) printJSON(v any) {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func (a *app) ok() { fmt.Fprintln(a.out, "ok") }

// actionError carries the user-facing notice of a failed action.
type actionError struct {
	msg string
	err error
}

func (e *actionError) Error() string { return e.msg }
func (e *actionError) Unwrap() error { return e.err }

// check turns an Outcome into an error. A successful action whose resync failed is reported
// as a warning only.
func (a *app) check(out controller.Outcome) error {
	switch out.Status {
	case controller.Failed:
		msg := api.GenericMessage
		if out.Notice != nil {
			msg = out.Notice.Text
		}
		return &actionError{msg: msg, err: out.Err}
	case controller.Ignored:
		return errs.ErrInFlight
	}
	if out.Notice != nil && out.Notice.Kind == view.NoticeError {
		fmt.Fprintln(a.errOut, "warning:", out.Notice.Text)
	}
	return nil
}

// signedIn loads the session user and feed; commands that act as the user start here.
func (a *app) signedIn(ctx context.Context) error {
	if err := a.check(a.ctl.Load(ctx)); err != nil {
		return err
	}
	if a.ctl.State().CurrentUser == nil {
		return &actionError{msg: "not signed in", err: errs.ErrAuthRequired}
	}
	return nil
}
