package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/mindwell/internal/http/middlewarectx"
	"github.com/magabrotheeeer/mindwell/internal/models"
	"github.com/magabrotheeeer/mindwell/internal/services/wellness"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Create(ctx context.Context, userID, title, content string) (models.Journal, error) {
	args := m.Called(ctx, userID, title, content)
	return args.Get(0).(models.Journal), args.Error(1)
}

func (m *ServiceMock) List(ctx context.Context, userID string, page, perPage int) (models.JournalPage, error) {
	args := m.Called(ctx, userID, page, perPage)
	return args.Get(0).(models.JournalPage), args.Error(1)
}

func (m *ServiceMock) Get(ctx context.Context, userID string, id int64) (*models.Journal, error) {
	args := m.Called(ctx, userID, id)
	j, _ := args.Get(0).(*models.Journal)
	return j, args.Error(1)
}

func newRouter(svc Service) http.Handler {
	h := New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(context.WithValue(req.Context(), middlewarectx.UserID, "u-1")))
		})
	})
	r.Post("/entry", h.Create)
	r.Get("/entries", h.List)
	r.Get("/entry/{id}", h.Get)
	return r
}

func TestHandler_Create(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		title    string
		content  string
		err      error
		wantCode int
		wantErr  string
	}{
		{name: "created", body: `{"title":"Day","content":"Good day"}`, title: "Day", content: "Good day", wantCode: http.StatusCreated},
		{name: "missing title", body: `{"content":"text"}`, title: "", content: "text", err: fmt.Errorf("x: %w", wellness.ErrTitleRequired), wantCode: http.StatusBadRequest, wantErr: "title_required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			svc.On("Create", mock.Anything, "u-1", tt.title, tt.content).
				Return(models.Journal{ID: 1, Title: tt.title, Content: tt.content, Sentiment: "positive"}, tt.err).Once()

			rec := httptest.NewRecorder()
			newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/entry", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantErr != "" {
				var got map[string]any
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
				assert.Equal(t, tt.wantErr, got["code"])
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_List(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("List", mock.Anything, "u-1", 1, 10).Return(models.JournalPage{CurrentPage: 1}, nil).Once()
	svc.On("List", mock.Anything, "u-1", 2, 50).Return(models.JournalPage{Total: 60, Pages: 2, CurrentPage: 2}, nil).Once()

	r := newRouter(svc)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/entries", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"entries":[]`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/entries?page=2&per_page=50", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pages":2`)

	svc.AssertExpectations(t)
}

func TestHandler_Get_ForeignEntryIsNotFound(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Get", mock.Anything, "u-1", int64(9)).Return(nil, wellness.ErrJournalNotFound).Once()

	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/entry/9", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "journal_not_found")
	svc.AssertExpectations(t)
}
