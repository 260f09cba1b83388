package view

import (
	"bytes"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/and161185/socialclient/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer turns State slices into HTML fragments. It holds no state besides its templates,
// so the same input always yields the same output.
type Renderer struct {
	tmpl      *template.Template
	mediaBase string
}

// NewRenderer parses the templates. mediaBase prefixes server-relative media paths
// such as /uploads/x.png (normally the API base URL).
func NewRenderer(mediaBase string) (*Renderer, error) {
	r := &Renderer{mediaBase: strings.TrimRight(mediaBase, "/")}
	t, err := template.New("view").Funcs(template.FuncMap{
		"str":      func(p *string) string { return model.StringOr(p, "") },
		"media":    r.mediaURL,
		"initial":  initial,
		"likeArgs": likeArgs,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.tmpl = t
	return r, nil
}

// MustRenderer is NewRenderer for callers that cannot continue without templates.
func MustRenderer(mediaBase string) *Renderer {
	r, err := NewRenderer(mediaBase)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Renderer) mediaURL(p string) string {
	if strings.HasPrefix(p, "/") && r.mediaBase != "" {
		return r.mediaBase + p
	}
	return p
}

func initial(name string) string {
	c, _ := utf8.DecodeRuneInString(strings.TrimSpace(name))
	if c == utf8.RuneError {
		return "?"
	}
	return strings.ToUpper(string(c))
}

type likeData struct {
	ID     int64
	Liked  bool
	Count  int
	Return string
}

func likeArgs(id int64, liked bool, count int, ret string) likeData {
	return likeData{ID: id, Liked: liked, Count: count, Return: ret}
}

func (r *Renderer) fragment(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

// Profile renders the session panel; nil user renders the signed-out variant.
func (r *Renderer) Profile(u *model.User) (template.HTML, error) {
	return r.fragment("profile", u)
}

// Feed renders the ordered feed; an empty feed renders the empty-state message and no list.
func (r *Renderer) Feed(items []model.FeedItem) (template.HTML, error) {
	return r.fragment("feed", items)
}

// Detail renders the open post. Owner controls and the comment form depend on viewer.
func (r *Renderer) Detail(viewer *model.User, d *model.PostDetail) (template.HTML, error) {
	data := struct {
		Detail     *model.PostDetail
		CanModify  bool
		CanComment bool
	}{Detail: d, CanComment: CanComment(viewer)}
	if d != nil {
		data.CanModify = CanModify(viewer, d.Post)
	}
	return r.fragment("detail", data)
}

// Toast renders the notice slot; nil renders it hidden.
func (r *Renderer) Toast(n *Notice) (template.HTML, error) {
	return r.fragment("toast", n)
}

// Login renders the login form.
func (r *Renderer) Login() (template.HTML, error) { return r.fragment("login", nil) }

// Register renders the registration form.
func (r *Renderer) Register() (template.HTML, error) { return r.fragment("register", nil) }

// EditorData feeds the post editor.
type EditorData struct {
	PostID      int64 // 0 for a new post
	Text        string
	ImageURL    string // current image of an existing post
	Preview     *model.Upload
	RemoveImage bool
}

// Editor renders the create/edit form with an inline preview of a chosen image.
func (r *Renderer) Editor(e EditorData) (template.HTML, error) {
	data := struct {
		EditorData
		Action     string
		Cancel     string
		PreviewURL template.URL
	}{EditorData: e, Action: "/ui/posts", Cancel: "/"}
	if e.PostID != 0 {
		data.Action = fmt.Sprintf("/ui/posts/%d", e.PostID)
		data.Cancel = fmt.Sprintf("/post/%d", e.PostID)
	}
	data.PreviewURL = PreviewURL(e.Preview)
	return r.fragment("editor", data)
}

// PreviewURL builds a data: URL for an image upload, empty for anything else.
func PreviewURL(up *model.Upload) template.URL {
	if up == nil || len(up.Data) == 0 {
		return ""
	}
	ct := ImageContentType(up.Filename)
	if ct == "" {
		return ""
	}
	return template.URL("data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(up.Data))
}

// ImageContentType maps an allowed image extension to its MIME type; "" when not allowed.
func ImageContentType(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return ""
	}
	switch strings.ToLower(filename[i:]) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	}
	return ""
}

// Page kinds.
const (
	PageHome     = "home"
	PageLogin    = "login"
	PageRegister = "register"
	PageEditor   = "editor"
)

// PageData describes one full page.
type PageData struct {
	Kind   string
	State  State
	Editor *EditorData
}

// Page writes a complete HTML document for p.
func (r *Renderer) Page(w io.Writer, p PageData) error {
	profile, err := r.Profile(p.State.CurrentUser)
	if err != nil {
		return err
	}
	toast, err := r.Toast(p.State.Notice)
	if err != nil {
		return err
	}

	var main template.HTML
	title := "Feed"
	switch p.Kind {
	case PageLogin:
		title = "Log in"
		main, err = r.Login()
	case PageRegister:
		title = "Register"
		main, err = r.Register()
	case PageEditor:
		title = "New post"
		ed := EditorData{}
		if p.Editor != nil {
			ed = *p.Editor
		}
		if ed.PostID != 0 {
			title = "Edit post"
		}
		main, err = r.Editor(ed)
	default:
		var feed, detail template.HTML
		if feed, err = r.Feed(p.State.Feed); err != nil {
			return err
		}
		if detail, err = r.Detail(p.State.CurrentUser, p.State.Detail); err != nil {
			return err
		}
		main = feed + detail
	}
	if err != nil {
		return err
	}

	return r.tmpl.ExecuteTemplate(w, "page", struct {
		Title   string
		Kind    string
		Profile template.HTML
		Main    template.HTML
		Toast   template.HTML
	}{Title: title, Kind: p.Kind, Profile: profile, Main: main, Toast: toast})
}
