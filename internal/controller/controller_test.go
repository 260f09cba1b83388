package controller

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/socialclient/internal/api"
	"github.com/and161185/socialclient/internal/apitest"
	"github.com/and161185/socialclient/internal/errs"
	"github.com/and161185/socialclient/internal/model"
	"github.com/and161185/socialclient/internal/session"
	"github.com/and161185/socialclient/internal/view"
)

type harness struct {
	srv   *apitest.Server
	store *session.Store
	ctl   *Controller
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	srv := apitest.New(t)
	store := session.NewStore(session.NewMemory())
	log := zaptest.NewLogger(t)
	client := api.New(srv.URL, store, api.WithLogger(log))
	return &harness{srv: srv, store: store, ctl: New(client, store, log)}
}

// signIn seeds a user, stores its token and loads the page.
func (h *harness) signIn(t *testing.T, name, email string) int64 {
	t.Helper()
	uid, tok := h.srv.SeedUser(name, email, "secret")
	require.NoError(t, h.store.SetToken(context.Background(), tok))
	require.Equal(t, Done, h.ctl.Load(context.Background()).Status)
	return uid
}

func paths(calls []apitest.Call) []string {
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.Method+" "+c.Path)
	}
	return out
}

func TestLogin_StoresTokenAndShowsProfile(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.srv.SeedUser("Ann", "a@x.com", "secret")
	ctx := context.Background()

	out := h.ctl.Login(ctx, "a@x.com", "secret")
	require.Equal(t, Done, out.Status)
	require.Equal(t, "/", out.Redirect)

	tok, ok, err := h.store.Token(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, tok)

	st := h.ctl.State()
	require.NotNil(t, st.CurrentUser)
	require.Equal(t, "Ann", st.CurrentUser.Name)
	require.Contains(t, paths(h.srv.Calls()), "GET /users/me")

	html, err := view.MustRenderer("").Profile(st.CurrentUser)
	require.NoError(t, err)
	require.Contains(t, string(html), "Ann")
	require.Contains(t, string(html), "a@x.com")
	require.NotContains(t, string(html), "loginLink")
	require.NotContains(t, string(html), "registerLink")
}

func TestLogin_WrongPasswordLeavesStateUntouched(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.srv.SeedUser("Ann", "a@x.com", "secret")
	ctx := context.Background()
	require.Equal(t, Done, h.ctl.Load(ctx).Status)
	before := h.ctl.State()

	out := h.ctl.Login(ctx, "a@x.com", "nope")
	require.Equal(t, Failed, out.Status)
	require.ErrorIs(t, out.Err, errs.ErrRemote)
	require.Equal(t, "Invalid email or password", out.Notice.Text)

	after := h.ctl.State()
	require.Equal(t, before.Feed, after.Feed)
	require.Nil(t, after.CurrentUser)
	_, ok, _ := h.store.Token(ctx)
	require.False(t, ok)
}

func TestLogin_EmptyFieldsRejectedLocally(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	out := h.ctl.Login(context.Background(), " ", "")
	require.Equal(t, Failed, out.Status)
	require.ErrorIs(t, out.Err, errs.ErrValidation)
	require.Empty(t, h.srv.Calls())
}

func TestRegister_SignsIn(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	out := h.ctl.Register(ctx, "Bob", "b@x.com", "short")
	require.Equal(t, Failed, out.Status)
	require.ErrorIs(t, out.Err, errs.ErrValidation)
	require.Empty(t, h.srv.Calls())

	out = h.ctl.Register(ctx, "Bob", "b@x.com", "password123")
	require.Equal(t, Done, out.Status)
	st := h.ctl.State()
	require.NotNil(t, st.CurrentUser)
	require.Equal(t, "b@x.com", st.CurrentUser.Email)

	out = h.ctl.Register(ctx, "Bob", "b@x.com", "password123")
	require.Equal(t, Failed, out.Status)
	require.Equal(t, "Email already in use", out.Notice.Text)
}

func TestLoad_StaleTokenClearsSession(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	uid, _ := h.srv.SeedUser("Ann", "a@x.com", "secret")
	h.srv.SeedPost(uid, "hello")
	require.NoError(t, h.store.SetToken(ctx, "revoked"))

	out := h.ctl.Load(ctx)
	require.Equal(t, Done, out.Status)
	st := h.ctl.State()
	require.Nil(t, st.CurrentUser)
	require.Len(t, st.Feed, 1)

	_, ok, err := h.store.Token(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestToggleLike_ResyncsDetailAndFeed(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	uid := h.signIn(t, "Ann", "a@x.com")
	id := h.srv.SeedPost(uid, "likeable")
	require.Equal(t, Done, h.ctl.Load(ctx).Status)
	require.Equal(t, Done, h.ctl.OpenPost(ctx, id).Status)

	st := h.ctl.State()
	require.False(t, st.Detail.LikedByMe)
	base := st.Detail.Post.LikesCount
	h.srv.ResetCalls()

	out := h.ctl.ToggleLike(ctx, id, st.Detail.LikedByMe)
	require.Equal(t, Done, out.Status)
	require.Equal(t, []string{
		fmt.Sprintf("POST /posts/%d/like", id),
		fmt.Sprintf("GET /posts/%d", id),
		"GET /feed",
	}, paths(h.srv.Calls()))

	st = h.ctl.State()
	require.True(t, st.Detail.LikedByMe)
	require.Equal(t, base+1, st.Detail.Post.LikesCount)
	require.True(t, st.Feed[0].LikedByMe)
	require.Equal(t, base+1, st.Feed[0].LikesCount)
}

func TestToggleLike_TwiceRestoresCount(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	uid := h.signIn(t, "Ann", "a@x.com")
	other, _ := h.srv.SeedUser("Bob", "b@x.com", "secret")

	for _, author := range []int64{uid, other} {
		id := h.srv.SeedPost(author, "post")
		require.Equal(t, Done, h.ctl.Load(ctx).Status)
		require.Equal(t, Done, h.ctl.OpenPost(ctx, id).Status)
		orig := h.ctl.State().Detail.Post.LikesCount

		require.Equal(t, Done, h.ctl.ToggleLike(ctx, id, h.ctl.State().Detail.LikedByMe).Status)
		require.Equal(t, Done, h.ctl.ToggleLike(ctx, id, h.ctl.State().Detail.LikedByMe).Status)

		st := h.ctl.State()
		require.Equal(t, orig, st.Detail.Post.LikesCount)
		require.False(t, st.Detail.LikedByMe)
		for _, it := range st.Feed {
			if it.ID == id {
				require.Equal(t, orig, it.LikesCount)
			}
		}
	}
}

func TestToggleLike_RequiresSession(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	out := h.ctl.ToggleLike(context.Background(), 1, false)
	require.Equal(t, Failed, out.Status)
	require.Equal(t, "/login", out.Redirect)
	require.ErrorIs(t, out.Err, errs.ErrAuthRequired)
	require.Empty(t, h.srv.Calls())
}

func TestToggleLike_FailureLeavesStateAndNotifies(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	uid := h.signIn(t, "Ann", "a@x.com")
	id := h.srv.SeedPost(uid, "post")
	require.Equal(t, Done, h.ctl.Load(ctx).Status)
	before := h.ctl.State()

	h.srv.FailNext(http.MethodPost, fmt.Sprintf("/posts/%d/like", id), http.StatusInternalServerError)
	h.srv.ResetCalls()
	out := h.ctl.ToggleLike(ctx, id, false)
	require.Equal(t, Failed, out.Status)
	require.Equal(t, "injected failure", out.Notice.Text)
	require.Len(t, h.srv.Calls(), 1, "no resync and no retry after a failure")

	after := h.ctl.Snapshot()
	require.Equal(t, before.Feed, after.Feed)
	require.Equal(t, before.CurrentUser, after.CurrentUser)
	require.Equal(t, "injected failure", after.Notice.Text)
	require.Nil(t, h.ctl.State().Notice, "notice is shown once")
	require.False(t, h.ctl.InFlight(PostKey(id)))
}

func TestAddComment_EmptyRejectedBeforeRequest(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	uid := h.signIn(t, "Ann", "a@x.com")
	id := h.srv.SeedPost(uid, "post")
	h.srv.ResetCalls()

	for _, text := range []string{"", "   \n\t"} {
		out := h.ctl.AddComment(ctx, id, text)
		require.Equal(t, Failed, out.Status)
		require.ErrorIs(t, out.Err, errs.ErrValidation)
		require.Equal(t, "Comment text is required", out.Notice.Text)
	}
	require.Empty(t, h.srv.Calls())
}

func TestAddComment_ResyncsCounts(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	uid := h.signIn(t, "Ann", "a@x.com")
	id := h.srv.SeedPost(uid, "post")
	require.Equal(t, Done, h.ctl.Load(ctx).Status)
	require.Equal(t, Done, h.ctl.OpenPost(ctx, id).Status)

	out := h.ctl.AddComment(ctx, id, "  nice  ")
	require.Equal(t, Done, out.Status)
	require.Equal(t, fmt.Sprintf("/post/%d", id), out.Redirect)

	st := h.ctl.State()
	require.Len(t, st.Detail.Comments, 1)
	require.Equal(t, "nice", st.Detail.Comments[0].Text)
	require.Equal(t, 1, st.Detail.Post.CommentsCount)
	require.Equal(t, 1, st.Feed[0].CommentsCount)
}

func TestDeletePost_NonOwnerRefusedLocally(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	owner, _ := h.srv.SeedUser("Owner", "o@x.com", "secret")
	id := h.srv.SeedPost(owner, "not yours")
	h.signIn(t, "Ann", "a@x.com")
	require.Equal(t, Done, h.ctl.OpenPost(ctx, id).Status)
	h.srv.ResetCalls()

	out := h.ctl.DeletePost(ctx, id)
	require.Equal(t, Failed, out.Status)
	require.ErrorIs(t, out.Err, errs.ErrForbidden)
	require.Equal(t, "/", out.Redirect)
	require.Empty(t, h.srv.Calls())
	require.NotNil(t, h.ctl.State().Detail)
}

func TestDeletePost_UnknownPostForbiddenByAPI(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	owner, _ := h.srv.SeedUser("Owner", "o@x.com", "secret")
	h.signIn(t, "Ann", "a@x.com")
	id := h.srv.SeedPost(owner, "seeded after load")

	out := h.ctl.DeletePost(ctx, id)
	require.Equal(t, Failed, out.Status)
	require.ErrorIs(t, out.Err, errs.ErrForbidden)
	require.Equal(t, msgNotOwner, out.Notice.Text)
}

func TestDeletePost_OwnerClosesDetail(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	uid := h.signIn(t, "Ann", "a@x.com")
	id := h.srv.SeedPost(uid, "bye")
	require.Equal(t, Done, h.ctl.Load(ctx).Status)
	require.Equal(t, Done, h.ctl.OpenPost(ctx, id).Status)

	out := h.ctl.DeletePost(ctx, id)
	require.Equal(t, Done, out.Status)
	require.Equal(t, "Post deleted", out.Notice.Text)
	st := h.ctl.State()
	require.Nil(t, st.Detail)
	require.Empty(t, st.Feed)
}

func TestOpenPost_NotFound(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	out := h.ctl.OpenPost(context.Background(), 404)
	require.Equal(t, Failed, out.Status)
	require.Equal(t, "/", out.Redirect)
	require.Equal(t, msgPostNotFound, out.Notice.Text)
	require.Nil(t, h.ctl.State().Detail)
}

func TestLoad_ClosesDetail(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	uid := h.signIn(t, "Ann", "a@x.com")
	id := h.srv.SeedPost(uid, "x")
	require.Equal(t, Done, h.ctl.OpenPost(ctx, id).Status)
	require.NotNil(t, h.ctl.State().Detail)

	require.Equal(t, Done, h.ctl.Load(ctx).Status)
	require.Nil(t, h.ctl.State().Detail)

	require.Equal(t, Done, h.ctl.OpenPost(ctx, id).Status)
	h.ctl.ClosePost()
	require.Nil(t, h.ctl.State().Detail)
}

func TestLogout_ClearsSessionAndUser(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	h.signIn(t, "Ann", "a@x.com")

	out := h.ctl.Logout(ctx)
	require.Equal(t, Done, out.Status)
	require.Nil(t, h.ctl.State().CurrentUser)
	_, ok, err := h.store.Token(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEditPost_OwnerOnly(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	owner, _ := h.srv.SeedUser("Owner", "o@x.com", "secret")
	theirs := h.srv.SeedPost(owner, "theirs")
	uid := h.signIn(t, "Ann", "a@x.com")
	mine := h.srv.SeedPost(uid, "mine")

	_, out := h.ctl.EditPost(ctx, theirs)
	require.Equal(t, Failed, out.Status)
	require.Equal(t, "/", out.Redirect)
	require.ErrorIs(t, out.Err, errs.ErrForbidden)

	ed, out := h.ctl.EditPost(ctx, mine)
	require.Equal(t, Done, out.Status)
	require.Equal(t, mine, ed.PostID)
	require.Equal(t, "mine", ed.Text)
}

func TestEditor_RequiresSession(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	_, out := h.ctl.NewPost(context.Background())
	require.Equal(t, "/login", out.Redirect)
	_, out = h.ctl.EditPost(context.Background(), 1)
	require.Equal(t, "/login", out.Redirect)
	require.Empty(t, h.srv.Calls())
}

func TestCreatePost_PreviewThenSaveUsesDraftImage(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	h.signIn(t, "Ann", "a@x.com")
	img := &model.Upload{Filename: "cat.png", Data: []byte("png-bytes")}
	h.srv.ResetCalls()

	ed, out := h.ctl.Preview(context.Background(), 0, "hello", img, false)
	require.Equal(t, Done, out.Status)
	require.NotNil(t, ed.Preview)
	require.Empty(t, h.srv.Calls(), "preview is local")

	ed, out = h.ctl.NewPost(context.Background())
	require.Equal(t, Done, out.Status)
	require.Equal(t, "hello", ed.Text)
	require.NotNil(t, ed.Preview)

	out = h.ctl.CreatePost(ctx, model.PostDraft{Text: "hello"})
	require.Equal(t, Done, out.Status)
	require.True(t, strings.HasPrefix(out.Redirect, "/post/"))

	st := h.ctl.State()
	require.Nil(t, st.Draft)
	require.NotNil(t, st.Detail)
	require.Equal(t, "hello", st.Detail.Post.Text)
	require.Equal(t, "/uploads/cat.png", model.StringOr(st.Detail.Post.ImageURL, ""))
	require.Len(t, st.Feed, 1)
}

func TestCreatePost_Validation(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	h.signIn(t, "Ann", "a@x.com")
	h.srv.ResetCalls()

	out := h.ctl.CreatePost(ctx, model.PostDraft{Text: "  "})
	require.ErrorIs(t, out.Err, errs.ErrValidation)
	out = h.ctl.CreatePost(ctx, model.PostDraft{Text: "x", Image: &model.Upload{Filename: "a.bmp", Data: []byte{1}}})
	require.ErrorIs(t, out.Err, errs.ErrValidation)
	require.Equal(t, "Unsupported image format", out.Notice.Text)
	_, out = h.ctl.Preview(context.Background(), 0, "x", &model.Upload{Filename: "a.png"}, false)
	require.Equal(t, "Empty file", out.Notice.Text)
	require.Empty(t, h.srv.Calls())
}

func TestUpdatePost_RemoveImage(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	h.signIn(t, "Ann", "a@x.com")
	out := h.ctl.CreatePost(ctx, model.PostDraft{Text: "v1", Image: &model.Upload{Filename: "a.jpg", Data: []byte("x")}})
	require.Equal(t, Done, out.Status)
	id := h.ctl.State().Detail.Post.ID

	out = h.ctl.UpdatePost(ctx, id, model.PostDraft{Text: "v2", RemoveImage: true})
	require.Equal(t, Done, out.Status)
	st := h.ctl.State()
	require.Equal(t, "v2", st.Detail.Post.Text)
	require.Nil(t, st.Detail.Post.ImageURL)
	require.Equal(t, "v2", st.Feed[0].Text)
}

func TestUpdateAvatar(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	uid := h.signIn(t, "Ann", "a@x.com")
	h.srv.SeedPost(uid, "p")
	h.srv.ResetCalls()

	out := h.ctl.UpdateAvatar(ctx, model.Upload{Filename: "me.txt", Data: []byte("x")})
	require.ErrorIs(t, out.Err, errs.ErrValidation)
	require.Empty(t, h.srv.Calls())

	out = h.ctl.UpdateAvatar(ctx, model.Upload{Filename: "me.gif", Data: []byte("gif")})
	require.Equal(t, Done, out.Status)
	st := h.ctl.State()
	require.Equal(t, "/uploads/me.gif", model.StringOr(st.CurrentUser.AvatarURL, ""))
	require.Equal(t, "/uploads/me.gif", model.StringOr(st.Feed[0].AuthorAvatarURL, ""))
}

func TestNetworkFailure_GenericNotice(t *testing.T) {
	t.Parallel()
	store := session.NewStore(session.NewMemory())
	require.NoError(t, store.SetToken(context.Background(), "tok"))
	ctl := New(api.New("http://127.0.0.1:1", store, api.WithHTTPClient(&http.Client{Timeout: time.Second})), store, zaptest.NewLogger(t))

	out := ctl.Load(context.Background())
	require.Equal(t, Failed, out.Status)
	require.ErrorIs(t, out.Err, errs.ErrNetwork)
	require.Equal(t, api.GenericMessage, out.Notice.Text)
}

// blockingAPI parks Like until released so a second trigger lands while the first is in flight.
type blockingAPI struct {
	API
	entered chan struct{}
	release chan struct{}
	likes   atomic.Int32
}

func (b *blockingAPI) Like(ctx context.Context, id int64) error {
	b.likes.Add(1)
	b.entered <- struct{}{}
	<-b.release
	return b.API.Like(ctx, id)
}

func TestToggleLike_RepeatWhileInFlightIgnored(t *testing.T) {
	t.Parallel()
	srv := apitest.New(t)
	uid, tok := srv.SeedUser("Ann", "a@x.com", "secret")
	id := srv.SeedPost(uid, "post")
	other := srv.SeedPost(uid, "other")
	store := session.NewStore(session.NewMemory())
	ctx := context.Background()
	require.NoError(t, store.SetToken(ctx, tok))

	log := zaptest.NewLogger(t)
	b := &blockingAPI{
		API:     api.New(srv.URL, store, api.WithLogger(log)),
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	ctl := New(b, store, log)
	require.Equal(t, Done, ctl.Load(ctx).Status)

	done := make(chan Outcome, 1)
	go func() { done <- ctl.ToggleLike(ctx, id, false) }()
	<-b.entered
	require.True(t, ctl.InFlight(PostKey(id)))

	out := ctl.ToggleLike(ctx, id, false)
	require.Equal(t, Ignored, out.Status)
	require.ErrorIs(t, out.Err, errs.ErrInFlight)
	require.EqualValues(t, 1, b.likes.Load())

	require.False(t, ctl.InFlight(PostKey(other)))

	close(b.release)
	require.Equal(t, Done, (<-done).Status)
	require.False(t, ctl.InFlight(PostKey(id)))
	require.Equal(t, 1, srv.LikesCount(id))
	require.True(t, ctl.State().Feed[1].LikedByMe)

	require.Equal(t, Done, ctl.ToggleLike(ctx, other, false).Status)
	require.EqualValues(t, 2, b.likes.Load())
}

func TestGatedAction_StoredTokenWithoutLoad(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	uid, tok := h.srv.SeedUser("Ann", "a@x.com", "secret")
	id := h.srv.SeedPost(uid, "post")
	require.NoError(t, h.store.SetToken(ctx, tok))

	out := h.ctl.ToggleLike(ctx, id, false)
	require.Equal(t, Done, out.Status)
	require.Equal(t, []string{
		"GET /users/me",
		fmt.Sprintf("POST /posts/%d/like", id),
		"GET /feed",
	}, paths(h.srv.Calls()))
	require.Equal(t, 1, h.srv.LikesCount(id))
	require.Equal(t, "Ann", h.ctl.State().CurrentUser.Name)

	ed, out := New(h.ctl.api, h.store, zaptest.NewLogger(t)).NewPost(ctx)
	require.Equal(t, Done, out.Status)
	require.Zero(t, ed.PostID)
}

func TestGatedAction_RejectedStoredToken(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	require.NoError(t, h.store.SetToken(ctx, "revoked"))

	out := h.ctl.AddComment(ctx, 1, "hi")
	require.Equal(t, Failed, out.Status)
	require.Equal(t, "/login", out.Redirect)
	require.ErrorIs(t, out.Err, errs.ErrAuthRequired)
	require.Equal(t, []string{"GET /users/me"}, paths(h.srv.Calls()))
	_, ok, err := h.store.Token(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCreatePost_LongTextAndLargeImageSent(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	h.signIn(t, "Ann", "a@x.com")

	text := strings.Repeat("a", 5001)
	img := &model.Upload{Filename: "big.png", Data: make([]byte, 9<<20)}
	out := h.ctl.CreatePost(ctx, model.PostDraft{Text: text, Image: img})
	require.Equal(t, Done, out.Status)
	require.Equal(t, text, h.ctl.State().Detail.Post.Text)
}

func TestRegister_PasswordLengthInCharacters(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()

	out := h.ctl.Register(ctx, "Ann", "a@x.com", "пар")
	require.Equal(t, Failed, out.Status)
	require.ErrorIs(t, out.Err, errs.ErrValidation)
	require.Empty(t, h.srv.Calls())

	out = h.ctl.Register(ctx, "Ann", "a@x.com", "пароль")
	require.Equal(t, Done, out.Status)
}

func TestAddComment_TooLongRejectedBeforeRequest(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	uid := h.signIn(t, "Ann", "a@x.com")
	id := h.srv.SeedPost(uid, "post")
	h.srv.ResetCalls()

	out := h.ctl.AddComment(ctx, id, strings.Repeat("ж", 2001))
	require.Equal(t, Failed, out.Status)
	require.ErrorIs(t, out.Err, errs.ErrValidation)
	require.Equal(t, "Comment is too long", out.Notice.Text)
	require.Empty(t, h.srv.Calls())

	require.Equal(t, Done, h.ctl.AddComment(ctx, id, strings.Repeat("ж", 2000)).Status)
}
