package webui

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/and161185/socialclient/internal/controller"
	"github.com/and161185/socialclient/internal/view"
)

func (s *Server) home(c *fiber.Ctx) error {
	s.ctl.Load(c.UserContext())
	return s.render(c, view.PageHome, nil)
}

func (s *Server) loginPage(c *fiber.Ctx) error {
	s.ctl.Load(c.UserContext())
	return s.render(c, view.PageLogin, nil)
}

func (s *Server) registerPage(c *fiber.Ctx) error {
	s.ctl.Load(c.UserContext())
	return s.render(c, view.PageRegister, nil)
}

// postPage is the deep link: the feed plus the open post.
func (s *Server) postPage(c *fiber.Ctx) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	s.ctl.Load(c.UserContext())
	if out := s.ctl.OpenPost(c.UserContext(), id); out.Status == controller.Failed && out.Redirect != "" {
		return c.Redirect(out.Redirect, fiber.StatusSeeOther)
	}
	return s.render(c, view.PageHome, nil)
}

func (s *Server) newPostPage(c *fiber.Ctx) error {
	s.ctl.Load(c.UserContext())
	ed, out := s.ctl.NewPost(c.UserContext())
	if out.Status == controller.Failed {
		return finish(c, out, "/")
	}
	return s.render(c, view.PageEditor, &ed)
}

func (s *Server) editPostPage(c *fiber.Ctx) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	s.ctl.Load(c.UserContext())
	ed, out := s.ctl.EditPost(c.UserContext(), id)
	if out.Status == controller.Failed {
		return finish(c, out, fmt.Sprintf("/post/%d", id))
	}
	return s.render(c, view.PageEditor, &ed)
}
