// Package webui serves the local single-user web front-end: full pages rendered from the
// controller's ViewState and POST form actions that redirect back with 303.
package webui

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"go.uber.org/zap"

	"github.com/and161185/socialclient/internal/controller"
	"github.com/and161185/socialclient/internal/model"
	"github.com/and161185/socialclient/internal/view"
)

// maxBody bounds one form upload held in memory by the local server.
const maxBody = 64 << 20

// Server holds the handlers' dependencies.
type Server struct {
	ctl *controller.Controller
	r   *view.Renderer
	log *zap.Logger
}

// NewApp builds the fiber application with middleware, health check and all routes.
func NewApp(name string, ctl *controller.Controller, r *view.Renderer, log *zap.Logger) *fiber.App {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{ctl: ctl, r: r, log: log}

	app := fiber.New(fiber.Config{
		AppName:               name,
		BodyLimit:             maxBody,
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})

	app.Use(Recover(log))
	app.Use(Logging(log))
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": name})
	})

	app.Get("/", s.home)
	app.Get("/login", s.loginPage)
	app.Get("/register", s.registerPage)
	app.Get("/post/:id", s.postPage)
	app.Get("/posts/new", s.newPostPage)
	app.Get("/posts/:id/edit", s.editPostPage)

	ui := app.Group("/ui")
	ui.Post("/login", s.login)
	ui.Post("/register", s.register)
	ui.Post("/logout", s.logout)
	ui.Post("/avatar", s.avatar)
	ui.Post("/editor/preview", s.preview)
	ui.Post("/posts", s.createPost)
	ui.Post("/posts/:id", s.updatePost)
	ui.Post("/posts/:id/like", s.like)
	ui.Post("/posts/:id/comments", s.comment)
	ui.Post("/posts/:id/delete", s.deletePost)

	return app
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code, msg := fiber.StatusInternalServerError, fiber.ErrInternalServerError.Message
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code, msg = fe.Code, fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		s.log.Error("handler", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(code).SendString(msg)
}

// render writes a full page built from the current ViewState.
func (s *Server) render(c *fiber.Ctx, kind string, ed *view.EditorData) error {
	var buf bytes.Buffer
	if err := s.r.Page(&buf, view.PageData{Kind: kind, State: s.ctl.Snapshot(), Editor: ed}); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

// finish redirects after a form action: the outcome's target first, then fallback.
func finish(c *fiber.Ctx, out controller.Outcome, fallback string) error {
	to := out.Redirect
	if to == "" {
		to = fallback
	}
	if to == "" {
		to = "/"
	}
	return c.Redirect(to, fiber.StatusSeeOther)
}

// localPath accepts only same-site absolute paths as redirect targets.
func localPath(p string) string {
	if strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") {
		return p
	}
	return ""
}

func postID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.ErrNotFound
	}
	return int64(id), nil
}

// formUpload reads an optional file part. A missing or unnamed part yields nil.
func formUpload(c *fiber.Ctx, field string) (*model.Upload, error) {
	fh, err := c.FormFile(field)
	if err != nil || fh.Filename == "" {
		return nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &model.Upload{Filename: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: data}, nil
}
