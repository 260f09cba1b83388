package webui

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/and161185/socialclient/internal/controller"
	"github.com/and161185/socialclient/internal/model"
)

func (s *Server) login(c *fiber.Ctx) error {
	out := s.ctl.Login(c.UserContext(), c.FormValue("email"), c.FormValue("password"))
	if out.Status != controller.Done {
		return finish(c, controller.Outcome{Redirect: "/login"}, "")
	}
	return finish(c, out, "/")
}

func (s *Server) register(c *fiber.Ctx) error {
	out := s.ctl.Register(c.UserContext(), c.FormValue("name"), c.FormValue("email"), c.FormValue("password"))
	if out.Status != controller.Done {
		return finish(c, controller.Outcome{Redirect: "/register"}, "")
	}
	return finish(c, out, "/")
}

func (s *Server) logout(c *fiber.Ctx) error {
	return finish(c, s.ctl.Logout(c.UserContext()), "/")
}

func (s *Server) avatar(c *fiber.Ctx) error {
	up, err := formUpload(c, "file")
	if err != nil {
		return err
	}
	if up == nil {
		up = &model.Upload{}
	}
	return finish(c, s.ctl.UpdateAvatar(c.UserContext(), *up), "/")
}

func (s *Server) like(c *fiber.Ctx) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	liked, _ := strconv.ParseBool(c.FormValue("liked"))
	out := s.ctl.ToggleLike(c.UserContext(), id, liked)
	return finish(c, out, localPath(c.FormValue("return")))
}

func (s *Server) comment(c *fiber.Ctx) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	out := s.ctl.AddComment(c.UserContext(), id, c.FormValue("text"))
	return finish(c, out, fmt.Sprintf("/post/%d", id))
}

func (s *Server) deletePost(c *fiber.Ctx) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	return finish(c, s.ctl.DeletePost(c.UserContext(), id), "/")
}

func (s *Server) draft(c *fiber.Ctx) (model.PostDraft, error) {
	img, err := formUpload(c, "image")
	if err != nil {
		return model.PostDraft{}, err
	}
	remove, _ := strconv.ParseBool(c.FormValue("remove_image"))
	return model.PostDraft{Text: c.FormValue("text"), Image: img, RemoveImage: remove}, nil
}

func (s *Server) createPost(c *fiber.Ctx) error {
	d, err := s.draft(c)
	if err != nil {
		return err
	}
	out := s.ctl.CreatePost(c.UserContext(), d)
	if out.Status == controller.Failed && out.Redirect == "" {
		return c.Redirect("/posts/new", fiber.StatusSeeOther)
	}
	return finish(c, out, "/")
}

func (s *Server) updatePost(c *fiber.Ctx) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	d, err := s.draft(c)
	if err != nil {
		return err
	}
	out := s.ctl.UpdatePost(c.UserContext(), id, d)
	if out.Status == controller.Failed && out.Redirect == "" {
		return c.Redirect(fmt.Sprintf("/posts/%d/edit", id), fiber.StatusSeeOther)
	}
	return finish(c, out, fmt.Sprintf("/post/%d", id))
}

// preview stores the draft and returns to the editor, which shows the chosen image.
func (s *Server) preview(c *fiber.Ctx) error {
	d, err := s.draft(c)
	if err != nil {
		return err
	}
	id, _ := strconv.ParseInt(c.FormValue("post_id"), 10, 64)
	_, out := s.ctl.Preview(c.UserContext(), id, d.Text, d.Image, d.RemoveImage)
	if out.Redirect != "" {
		return finish(c, out, "")
	}
	if id > 0 {
		return c.Redirect(fmt.Sprintf("/posts/%d/edit", id), fiber.StatusSeeOther)
	}
	return c.Redirect("/posts/new", fiber.StatusSeeOther)
}
