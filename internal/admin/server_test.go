package admin

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/internal/task/repositoryimpl"
	"github.com/kazz187/taskboard/pkg/cerr"
)

type failingInitializer struct{}

func (failingInitializer) Initialize(context.Context) error {
	return errors.New("disk full")
}

func router(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Use(cerr.NewJSONResponseChiMiddleware())
	r.Route("/admin", s.Register)
	return r
}

func TestInitializeDatabase(t *testing.T) {
	repo, err := repositoryimpl.OpenSQLiteRepository(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	defer repo.Close()
	h := router(NewServer(repo))

	for range 2 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/database/initialize", nil))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"message":"Database tables created successfully."}`, rec.Body.String())
	}

	tasks, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestInitializeDatabaseFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	router(NewServer(failingInitializer{})).ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/admin/database/initialize", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "An error occurred while initializing the database.")
	assert.NotContains(t, rec.Body.String(), "disk full")
}
