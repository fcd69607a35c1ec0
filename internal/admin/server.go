package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/pkg/cerr"
)

type MessageResponse struct {
	Message string `json:"message"`
}

type Server struct {
	initializers []task.Initializer
}

// NewServer takes the stores whose schema is created on demand. Stores that
// need no schema are simply not passed.
func NewServer(initializers ...task.Initializer) *Server {
	return &Server{initializers: initializers}
}

func (s *Server) Register(r chi.Router) {
	r.Post("/database/initialize", s.InitializeDatabase)
}

// InitializeDatabase creates missing tables. It is idempotent.
func (s *Server) InitializeDatabase(_ http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	for _, in := range s.initializers {
		if err := in.Initialize(ctx); err != nil {
			cerr.SetNewJSONError(ctx, cerr.Internal,
				"An error occurred while initializing the database.", err)
			return
		}
	}
	cerr.SetJSONResponseWithStatus(ctx, http.StatusCreated,
		MessageResponse{Message: "Database tables created successfully."})
}
