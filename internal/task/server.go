package task

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kazz187/taskboard/pkg/cerr"
)

const maxBodyBytes = 1 << 20

type Server struct {
	service *Service
}

func NewServer(service *Service) *Server {
	return &Server{service: service}
}

// Register mounts the task routes on r. r must be wrapped by
// cerr.NewJSONResponseChiMiddleware.
func (s *Server) Register(r chi.Router) {
	r.Get("/", s.ListTasks)
	r.Post("/", s.CreateTask)
	r.Get("/{id}", s.GetTask)
	r.Patch("/{id}", s.UpdateTask)
}

func (s *Server) ListTasks(_ http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tasks, err := s.service.List(ctx)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if tasks == nil {
		tasks = []Task{}
	}
	cerr.SetJSONResponse(ctx, tasks)
}

func (s *Server) CreateTask(_ http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var in CreateInput
	if err := decodeBody(r, &in); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	t, err := s.service.Create(ctx, in)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponseWithStatus(ctx, http.StatusCreated, t)
}

func (s *Server) GetTask(_ http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := parseID(r)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	t, err := s.service.Get(ctx, id)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, t)
}

func (s *Server) UpdateTask(_ http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := parseID(r)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	var p Patch
	if err := decodeBody(r, &p); err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	if p.Empty() {
		cerr.SetNewJSONError(ctx, cerr.InvalidArgument, "No fields to update.", nil)
		return
	}
	t, err := s.service.Update(ctx, id, p)
	if err != nil {
		cerr.SetJSONError(ctx, err)
		return
	}
	cerr.SetJSONResponse(ctx, t)
}

func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("invalid task id %q", raw), err)
	}
	return id, nil
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return cerr.NewError(cerr.InvalidArgument, "invalid request body", err)
	}
	return nil
}
