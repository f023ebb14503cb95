// Package server exposes the admin HTTP API: ingestion, queue inspection,
// dead letters, unmatchable records, and group lookups.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/openprocure/procurement-pipeline/internal/model"
	"github.com/openprocure/procurement-pipeline/internal/queue"
	"github.com/openprocure/procurement-pipeline/internal/store"
)

// Server is the admin HTTP server.
type Server struct {
	store store.Store
	queue queue.Queue
	port  int
}

// New creates a Server.
func New(st store.Store, q queue.Queue, port int) *Server {
	return &Server{store: st, queue: q, port: port}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/ingest/tenders", s.ingestTender)
		r.Post("/ingest/bodies", s.ingestBody)
		r.Get("/queues", s.listQueues)
		r.Get("/deadletters", s.listDeadLetters)
		r.Get("/unmatchable", s.listUnmatchable)
		r.Get("/groups/{kind}/{id}", s.getGroup)
	})

	return r
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	zap.L().Info("starting server", zap.Int("port", s.port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server: listen")
	}
	return nil
}

// ingestTender stores one parsed tender and queues it for cleaning.
func (s *Server) ingestTender(w http.ResponseWriter, r *http.Request) {
	var parsed model.ParsedTender
	if err := json.NewDecoder(r.Body).Decode(&parsed); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if parsed.ID == "" || parsed.Source == "" {
		writeError(w, http.StatusBadRequest, "id and source are required")
		return
	}

	if err := s.store.PutParsedTender(r.Context(), &parsed); err != nil {
		zap.L().Error("ingest tender failed", zap.String("id", parsed.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "store write failed")
		return
	}
	if err := s.queue.Publish(r.Context(), queue.TopicCleanTender, parsed.ID); err != nil {
		zap.L().Error("ingest tender publish failed", zap.String("id", parsed.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "queue publish failed")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted", "id": parsed.ID})
}

// ingestBody stores one parsed body and queues it for cleaning.
func (s *Server) ingestBody(w http.ResponseWriter, r *http.Request) {
	var parsed model.ParsedBody
	if err := json.NewDecoder(r.Body).Decode(&parsed); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if parsed.ID == "" || parsed.Source == "" {
		writeError(w, http.StatusBadRequest, "id and source are required")
		return
	}

	if err := s.store.PutParsedBody(r.Context(), &parsed); err != nil {
		zap.L().Error("ingest body failed", zap.String("id", parsed.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "store write failed")
		return
	}
	if err := s.queue.Publish(r.Context(), queue.TopicCleanBody, parsed.ID); err != nil {
		zap.L().Error("ingest body publish failed", zap.String("id", parsed.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "queue publish failed")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted", "id": parsed.ID})
}

// listQueues reports pending depth per topic.
func (s *Server) listQueues(w http.ResponseWriter, r *http.Request) {
	depths := map[string]int{}
	for _, topic := range queue.Topics() {
		n, err := s.queue.Depth(r.Context(), topic)
		if err != nil {
			zap.L().Error("queue depth failed", zap.String("topic", topic), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "queue depth failed")
			return
		}
		depths[topic] = n
	}
	writeJSON(w, http.StatusOK, depths)
}

func (s *Server) listDeadLetters(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("topic")
	letters, err := s.queue.ListDeadLetters(r.Context(), topic, queryLimit(r))
	if err != nil {
		zap.L().Error("list dead letters failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list failed")
		return
	}
	if letters == nil {
		letters = []queue.DeadLetter{}
	}
	writeJSON(w, http.StatusOK, letters)
}

func (s *Server) listUnmatchable(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.ListUnmatchable(r.Context(), queryLimit(r))
	if err != nil {
		zap.L().Error("list unmatchable failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list failed")
		return
	}
	if records == nil {
		records = []store.UnmatchableRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// getGroup returns a group's master record and member bindings.
func (s *Server) getGroup(w http.ResponseWriter, r *http.Request) {
	kind := model.Kind(chi.URLParam(r, "kind"))
	if kind != model.KindTender && kind != model.KindBody {
		writeError(w, http.StatusBadRequest, "kind must be tender or body")
		return
	}
	groupID := chi.URLParam(r, "id")

	members, err := s.store.GroupMembers(r.Context(), kind, groupID)
	if err != nil {
		zap.L().Error("group members failed", zap.String("group_id", groupID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if len(members) == 0 {
		writeError(w, http.StatusNotFound, "unknown group")
		return
	}

	rec, err := s.store.GetMaster(r.Context(), kind, groupID)
	if err != nil {
		zap.L().Error("master lookup failed", zap.String("group_id", groupID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"group_id": groupID,
		"kind":     kind,
		"master":   rec,
		"members":  members,
	})
}

func queryLimit(r *http.Request) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
	}
	return 0
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
