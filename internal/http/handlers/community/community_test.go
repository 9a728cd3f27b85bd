package community

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/mindwell/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mindwell/internal/models"
	"github.com/magabrotheeeer/mindwell/internal/services/community"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) List(ctx context.Context) ([]models.CommunityPost, error) {
	args := m.Called(ctx)
	posts, _ := args.Get(0).([]models.CommunityPost)
	return posts, args.Error(1)
}

func (m *ServiceMock) Create(ctx context.Context, userID, author, content string) (models.CommunityPost, error) {
	args := m.Called(ctx, userID, author, content)
	return args.Get(0).(models.CommunityPost), args.Error(1)
}

func (m *ServiceMock) Delete(ctx context.Context, postID int64, userID, role string) error {
	return m.Called(ctx, postID, userID, role).Error(0)
}

func (m *ServiceMock) ToggleLike(ctx context.Context, postID int64, userID string) (models.LikeResult, error) {
	args := m.Called(ctx, postID, userID)
	return args.Get(0).(models.LikeResult), args.Error(1)
}

// router собирает маршруты так же, как API, но без аутентификации:
// пользователь кладётся в контекст заранее.
func router(h *Handler, userID, role string) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), middlewarectx.UserID, userID)
			ctx = context.WithValue(ctx, middlewarectx.Role, role)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Get("/posts", h.List)
	r.Post("/posts", h.Create)
	r.Delete("/posts/{id}", h.Delete)
	r.Post("/posts/{id}/like", h.Like)
	return r
}

func newHandler(svc Service) *Handler {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)
}

func TestHandler_Delete(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		role     string
		err      error
		called   bool
		wantCode int
	}{
		{name: "owner", path: "/posts/7", role: "user", called: true, wantCode: http.StatusOK},
		{name: "stranger", path: "/posts/7", role: "user", err: community.ErrForbidden, called: true, wantCode: http.StatusForbidden},
		{name: "missing", path: "/posts/7", role: "admin", err: community.ErrPostNotFound, called: true, wantCode: http.StatusNotFound},
		{name: "bad id", path: "/posts/abc", role: "user", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.called {
				svc.On("Delete", mock.Anything, int64(7), "u-1", tt.role).Return(tt.err).Once()
			}
			rec := httptest.NewRecorder()
			router(newHandler(svc), "u-1", tt.role).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, tt.path, nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_CreateAndLike(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Create", mock.Anything, "u-1", "", "hello").
		Return(models.CommunityPost{ID: 1, Author: models.AnonymousAuthor, Content: "hello"}, nil).Once()
	svc.On("ToggleLike", mock.Anything, int64(1), "u-1").
		Return(models.LikeResult{PostID: 1, Liked: true, Likes: 1}, nil).Once()

	h := router(newHandler(svc), "u-1", "user")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(`{"content":"hello"}`)))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"author":"Anonymous"`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/posts/1/like", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"liked":true`)
	assert.Contains(t, rec.Body.String(), `"likes":1`)

	svc.AssertExpectations(t)
}

func TestHandler_ListEmpty(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("List", mock.Anything).Return(nil, nil).Once()

	rec := httptest.NewRecorder()
	router(newHandler(svc), "", "").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"OK","data":[]}`, rec.Body.String())
}
