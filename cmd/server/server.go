package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/liamcoop/talky/internal/logger"
	"github.com/liamcoop/talky/talkshow"
)

const (
	internalErrorDetail = "Une erreur interne est survenue"
	maxRequestBodyBytes = 1 << 20
)

type Server struct {
	service      *talkshow.Service
	exposeErrors bool
	router       *chi.Mux
}

func NewServer(service *talkshow.Service, exposeErrors bool) *Server {
	s := &Server{
		service:      service,
		exposeErrors: exposeErrors,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(recoverer)
	r.Use(cors.Handler(cors.Options{
		// Reflect the request origin; "*" is not valid alongside credentials.
		AllowOriginFunc:  func(r *http.Request, origin string) bool { return true },
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Post("/generate", s.handleGenerate)

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Generate handler
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		respondError(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	if req.Details == nil {
		respondError(w, http.StatusUnprocessableEntity, "details must be an object")
		return
	}

	result, err := s.service.Run(r.Context(), talkshow.RawDetails(req.Details))
	if err != nil {
		runID := ""
		var runErr *talkshow.RunError
		if errors.As(err, &runErr) {
			runID = runErr.ID
		}
		logger.Error("generate failed",
			"run_id", runID,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		respondError(w, http.StatusInternalServerError, s.internalDetail(runID, err))
		return
	}

	respondJSON(w, http.StatusOK, GenerateResponse{Message: result.Message})
}

func (s *Server) internalDetail(runID string, err error) string {
	if s.exposeErrors {
		return fmt.Sprintf("%s: %v", internalErrorDetail, err)
	}
	if runID == "" {
		return internalErrorDetail
	}
	return fmt.Sprintf("%s (ref %s)", internalErrorDetail, runID)
}

// recoverer turns a panic into a 500 with a JSON detail.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.Error("panic recovered",
				"request_id", middleware.GetReqID(r.Context()),
				"panic", fmt.Sprint(rec),
			)
			respondError(w, http.StatusInternalServerError, internalErrorDetail)
		}()

		next.ServeHTTP(w, r)
	})
}

// Helper functions
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, detail string) {
	switch {
	case status >= 500:
		logger.ErrorHttp5xx()
	case status >= 400:
		logger.WarnHttp4xx()
	}
	respondJSON(w, status, ErrorResponse{Detail: detail})
}
