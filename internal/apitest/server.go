// Package apitest runs an in-memory stand-in for the social HTTP API in tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// Call is one request observed by the server.
type Call struct {
	Method string
	Path   string
	Auth   string
}

type user struct {
	ID        int64
	Name      string
	Email     string
	Password  string
	AvatarURL *string
	CreatedAt string
}

type post struct {
	ID        int64
	AuthorID  int64
	Text      string
	ImageURL  *string
	CreatedAt string
	UpdatedAt *string
}

type comment struct {
	ID        int64
	PostID    int64
	AuthorID  int64
	Text      string
	CreatedAt string
}

// Server mirrors the API contract: snake_case JSON, {"detail": ...} errors.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	seq      int64
	users    map[int64]*user
	tokens   map[string]int64
	posts    map[int64]*post
	comments []*comment
	likes    map[[2]int64]bool
	calls    []Call
	failNext map[string]int // "METHOD /path" -> status
}

// New starts a server closed with t.Cleanup.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		users:    map[int64]*user{},
		tokens:   map[string]int64{},
		posts:    map[int64]*post{},
		likes:    map[[2]int64]bool{},
		failNext: map[string]int{},
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/register", s.register)
	mux.HandleFunc("POST /auth/login", s.login)
	mux.HandleFunc("GET /users/me", s.me)
	mux.HandleFunc("PUT /users/me/avatar", s.avatar)
	mux.HandleFunc("GET /feed", s.feed)
	mux.HandleFunc("POST /posts", s.createPost)
	mux.HandleFunc("GET /posts/{id}", s.getPost)
	mux.HandleFunc("PUT /posts/{id}", s.updatePost)
	mux.HandleFunc("DELETE /posts/{id}", s.deletePost)
	mux.HandleFunc("POST /posts/{id}/comments", s.addComment)
	mux.HandleFunc("POST /posts/{id}/like", s.like)
	mux.HandleFunc("DELETE /posts/{id}/like", s.unlike)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls = append(s.calls, Call{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization")})
		key := r.Method + " " + r.URL.Path
		status, fail := s.failNext[key]
		delete(s.failNext, key)
		s.mu.Unlock()
		if fail {
			writeErr(w, status, "injected failure")
			return
		}
		mux.ServeHTTP(w, r)
	})
}

// FailNext makes the next request to "METHOD /path" answer with status.
func (s *Server) FailNext(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext[method+" "+path] = status
}

// Calls returns the observed requests in arrival order.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// ResetCalls forgets observed requests.
func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}

// SeedUser creates an account and returns its id and a valid token.
func (s *Server) SeedUser(name, email, password string) (int64, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.addUserLocked(name, email, password)
	return u.ID, s.issueLocked(u.ID)
}

// SeedPost creates a post by authorID and returns its id.
func (s *Server) SeedPost(authorID int64, text string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	p := &post{ID: s.seq, AuthorID: authorID, Text: text, CreatedAt: stamp(s.seq)}
	s.posts[p.ID] = p
	return p.ID
}

// LikesCount reports the server-side like count of a post.
func (s *Server) LikesCount(postID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.likesLocked(postID)
}

func (s *Server) addUserLocked(name, email, password string) *user {
	s.seq++
	u := &user{ID: s.seq, Name: name, Email: strings.ToLower(email), Password: password, CreatedAt: stamp(s.seq)}
	s.users[u.ID] = u
	return u
}

func (s *Server) issueLocked(uid int64) string {
	s.seq++
	tok := fmt.Sprintf("tok-%d-%d", uid, s.seq)
	s.tokens[tok] = uid
	return tok
}

func stamp(n int64) string {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(n) * time.Minute).Format(time.RFC3339)
}

// ---- handlers ----

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in struct{ Name, Email, Password string }
	if json.NewDecoder(r.Body).Decode(&in) != nil || in.Name == "" || len(in.Password) < 6 {
		writeValidation(w, "invalid registration payload")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == strings.ToLower(in.Email) {
			writeErr(w, http.StatusBadRequest, "Email already in use")
			return
		}
	}
	u := s.addUserLocked(in.Name, in.Email, in.Password)
	writeJSON(w, http.StatusOK, map[string]string{"token": s.issueLocked(u.ID)})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in struct{ Email, Password string }
	_ = json.NewDecoder(r.Body).Decode(&in)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == strings.ToLower(in.Email) && u.Password == in.Password {
			writeJSON(w, http.StatusOK, map[string]string{"token": s.issueLocked(u.ID)})
			return
		}
	}
	writeErr(w, http.StatusBadRequest, "Invalid email or password")
}

// viewerLocked resolves the bearer token; required=true answers 401 itself.
func (s *Server) viewerLocked(w http.ResponseWriter, r *http.Request, required bool) (*user, bool) {
	tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if tok == "" {
		if required {
			writeErr(w, http.StatusUnauthorized, "Authorization required")
			return nil, false
		}
		return nil, true
	}
	uid, ok := s.tokens[tok]
	if !ok {
		if required {
			writeErr(w, http.StatusUnauthorized, "Invalid token")
			return nil, false
		}
		return nil, true
	}
	return s.users[uid], true
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.viewerLocked(w, r, true)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, userOut(u))
}

func (s *Server) avatar(w http.ResponseWriter, r *http.Request) {
	url, ok := s.upload(w, r, "file")
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.viewerLocked(w, r, true)
	if !ok {
		return
	}
	if url == nil {
		writeErr(w, http.StatusBadRequest, "No file selected")
		return
	}
	u.AvatarURL = url
	writeJSON(w, http.StatusOK, userOut(u))
}

func (s *Server) feed(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	viewer, _ := s.viewerLocked(w, r, false)
	ids := make([]int64, 0, len(s.posts))
	for id := range s.posts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	out := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.postOutLocked(s.posts[id], viewer))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.postLocked(w, r)
	if !ok {
		return
	}
	viewer, _ := s.viewerLocked(w, r, false)
	comments := []map[string]any{}
	for _, c := range s.comments {
		if c.PostID != p.ID {
			continue
		}
		a := s.users[c.AuthorID]
		comments = append(comments, map[string]any{
			"id": c.ID, "post_id": c.PostID, "author_id": c.AuthorID,
			"author_name": a.Name, "author_avatar_url": a.AvatarURL,
			"text": c.Text, "created_at": c.CreatedAt,
		})
	}
	postOut := s.postOutLocked(p, nil)
	liked := viewer != nil && s.likes[[2]int64{p.ID, viewer.ID}]
	writeJSON(w, http.StatusOK, map[string]any{"post": postOut, "comments": comments, "liked_by_me": liked})
}

func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	url, ok := s.upload(w, r, "image")
	if !ok {
		return
	}
	text := strings.TrimSpace(r.FormValue("text"))
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.viewerLocked(w, r, true)
	if !ok {
		return
	}
	if text == "" {
		writeErr(w, http.StatusBadRequest, "Post text is required")
		return
	}
	s.seq++
	p := &post{ID: s.seq, AuthorID: u.ID, Text: text, ImageURL: url, CreatedAt: stamp(s.seq)}
	s.posts[p.ID] = p
	writeJSON(w, http.StatusOK, s.postOutLocked(p, nil))
}

func (s *Server) updatePost(w http.ResponseWriter, r *http.Request) {
	url, ok := s.upload(w, r, "image")
	if !ok {
		return
	}
	text := strings.TrimSpace(r.FormValue("text"))
	remove, _ := strconv.ParseBool(r.FormValue("remove_image"))
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.viewerLocked(w, r, true)
	if !ok {
		return
	}
	if text == "" {
		writeErr(w, http.StatusBadRequest, "Post text is required")
		return
	}
	p, ok := s.postLocked(w, r)
	if !ok {
		return
	}
	if p.AuthorID != u.ID {
		writeErr(w, http.StatusForbidden, "Access denied")
		return
	}
	switch {
	case url != nil:
		p.ImageURL = url
	case remove:
		p.ImageURL = nil
	}
	p.Text = text
	now := stamp(s.seq + 1)
	p.UpdatedAt = &now
	writeJSON(w, http.StatusOK, s.postOutLocked(p, nil))
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.viewerLocked(w, r, true)
	if !ok {
		return
	}
	p, ok := s.postLocked(w, r)
	if !ok {
		return
	}
	if p.AuthorID != u.ID {
		writeErr(w, http.StatusForbidden, "Access denied")
		return
	}
	delete(s.posts, p.ID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) addComment(w http.ResponseWriter, r *http.Request) {
	var in struct{ Text string }
	_ = json.NewDecoder(r.Body).Decode(&in)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.viewerLocked(w, r, true)
	if !ok {
		return
	}
	if strings.TrimSpace(in.Text) == "" {
		writeValidation(w, "String should have at least 1 character")
		return
	}
	p, ok := s.postLocked(w, r)
	if !ok {
		return
	}
	s.seq++
	c := &comment{ID: s.seq, PostID: p.ID, AuthorID: u.ID, Text: strings.TrimSpace(in.Text), CreatedAt: stamp(s.seq)}
	s.comments = append(s.comments, c)
	writeJSON(w, http.StatusOK, map[string]any{"id": c.ID, "post_id": c.PostID, "author_id": u.ID, "author_name": u.Name, "text": c.Text, "created_at": c.CreatedAt})
}

func (s *Server) like(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.viewerLocked(w, r, true)
	if !ok {
		return
	}
	p, ok := s.postLocked(w, r)
	if !ok {
		return
	}
	key := [2]int64{p.ID, u.ID}
	if s.likes[key] {
		writeErr(w, http.StatusBadRequest, "Already liked")
		return
	}
	s.likes[key] = true
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) unlike(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.viewerLocked(w, r, true)
	if !ok {
		return
	}
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	delete(s.likes, [2]int64{id, u.ID})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ---- helpers ----

func (s *Server) postLocked(w http.ResponseWriter, r *http.Request) (*post, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeValidation(w, "Input should be a valid integer")
		return nil, false
	}
	p, ok := s.posts[id]
	if !ok {
		writeErr(w, http.StatusNotFound, "Post not found")
		return nil, false
	}
	return p, true
}

func (s *Server) likesLocked(postID int64) int {
	n := 0
	for k := range s.likes {
		if k[0] == postID {
			n++
		}
	}
	return n
}

func (s *Server) postOutLocked(p *post, viewer *user) map[string]any {
	a := s.users[p.AuthorID]
	comments := 0
	for _, c := range s.comments {
		if c.PostID == p.ID {
			comments++
		}
	}
	liked := viewer != nil && s.likes[[2]int64{p.ID, viewer.ID}]
	return map[string]any{
		"id": p.ID, "author_id": p.AuthorID, "author_name": a.Name, "author_avatar_url": a.AvatarURL,
		"text": p.Text, "image_url": p.ImageURL, "created_at": p.CreatedAt, "updated_at": p.UpdatedAt,
		"likes_count": s.likesLocked(p.ID), "comments_count": comments, "liked_by_me": liked,
	}
}

// upload reads an optional image part; the extension allow-list matches the real API.
func (s *Server) upload(w http.ResponseWriter, r *http.Request, field string) (*string, bool) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeErr(w, http.StatusBadRequest, "multipart form expected")
		return nil, false
	}
	f, hdr, err := r.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, true
	}
	if err != nil {
		writeErr(w, http.StatusBadRequest, "bad file")
		return nil, false
	}
	defer f.Close()
	switch strings.ToLower(filepath.Ext(hdr.Filename)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		writeErr(w, http.StatusBadRequest, "Unsupported image format")
		return nil, false
	}
	b, _ := io.ReadAll(f)
	if len(b) == 0 {
		writeErr(w, http.StatusBadRequest, "Empty file")
		return nil, false
	}
	url := "/uploads/" + hdr.Filename
	return &url, true
}

func userOut(u *user) map[string]any {
	return map[string]any{"id": u.ID, "name": u.Name, "email": u.Email, "avatar_url": u.AvatarURL, "created_at": u.CreatedAt}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeValidation(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"detail": []map[string]any{{"loc": []string{"body"}, "msg": msg, "type": "value_error"}},
	})
}
