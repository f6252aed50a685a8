package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"vidscribe/internal/api"
	"vidscribe/internal/config"
	"vidscribe/internal/logging"
	"vidscribe/internal/pipeline"
	"vidscribe/internal/services"
)

const (
	serviceName     = "video-processing"
	maxRequestBody  = 1 << 20
	requestIDHeader = "X-Request-ID"
)

// videoProcessor is the slice of the orchestrator the HTTP handlers drive.
type videoProcessor interface {
	Submit(ctx context.Context, req pipeline.Request) (*pipeline.Task, error)
	Cancel(videoID string) bool
	ActiveVideoIDs() []string
}

type apiServer struct {
	bind      string
	token     string
	logger    *slog.Logger
	daemon    *Daemon
	processor videoProcessor
	projects  *api.ProjectService

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	if cfg == nil || d == nil {
		return nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil
	}

	srv := &apiServer{
		bind:      bind,
		token:     cfg.Paths.APIToken,
		logger:    logger,
		daemon:    d,
		processor: d.orchestrator,
		projects:  api.NewProjectService(d.store, d.orchestrator),
	}
	srv.server = &http.Server{
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /process-video", s.authMiddleware(s.handleProcessVideo))
	mux.HandleFunc("GET /status", s.authMiddleware(s.handleStatus))
	mux.HandleFunc("GET /projects", s.authMiddleware(s.handleProjects))
	mux.HandleFunc("GET /projects/{id}", s.authMiddleware(s.handleProject))
	mux.HandleFunc("GET /videos/{id}", s.authMiddleware(s.handleVideo))
	mux.HandleFunc("POST /videos/{id}/cancel", s.authMiddleware(s.handleCancel))
	return mux
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, api.HealthResponse{Status: "healthy", Service: serviceName})
}

func (s *apiServer) handleProcessVideo(w http.ResponseWriter, r *http.Request) {
	var cmd pipeline.Command
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := decoder.Decode(&cmd); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
	if requestID == "" {
		requestID = uuid.NewString()
	}
	w.Header().Set(requestIDHeader, requestID)
	ctx := services.WithRequestID(r.Context(), requestID)

	task, err := s.processor.Submit(ctx, cmd.Request())
	if err != nil {
		status := services.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			logging.WithContext(ctx, s.log()).Error("process-video request failed", logging.Error(err))
		}
		s.writeError(w, status, err.Error())
		return
	}
	s.writeJSON(w, http.StatusAccepted, api.NewProcessVideoResponse(task.VideoID))
}

func (s *apiServer) handleStatus(w http.ResponseWriter, _ *http.Request) {
	if s.daemon == nil {
		s.writeError(w, http.StatusServiceUnavailable, "daemon unavailable")
		return
	}
	status := s.daemon.Status()
	s.writeJSON(w, http.StatusOK, api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		DatabasePath: status.DatabasePath,
		LockFilePath: status.LockFilePath,
		BrokerActive: status.BrokerActive,
		ActiveVideos: status.ActiveVideos,
		Dependencies: api.FromDependencyStatuses(status.Dependencies),
	})
}

func (s *apiServer) handleProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.projects.ListProjects(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if projects == nil {
		projects = []api.Project{}
	}
	s.writeJSON(w, http.StatusOK, projects)
}

func (s *apiServer) handleProject(w http.ResponseWriter, r *http.Request) {
	project, err := s.projects.DescribeProject(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if project == nil {
		s.writeError(w, http.StatusNotFound, "project not found")
		return
	}
	s.writeJSON(w, http.StatusOK, project)
}

func (s *apiServer) handleVideo(w http.ResponseWriter, r *http.Request) {
	video, err := s.projects.DescribeVideo(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if video == nil {
		s.writeError(w, http.StatusNotFound, "video not found")
		return
	}
	s.writeJSON(w, http.StatusOK, video)
}

func (s *apiServer) handleCancel(w http.ResponseWriter, r *http.Request) {
	videoID := r.PathValue("id")
	if !s.processor.Cancel(videoID) {
		s.writeError(w, http.StatusNotFound, "no active run for video")
		return
	}
	s.log().Info("video cancellation requested", logging.String(logging.FieldVideoID, videoID))
	s.writeJSON(w, http.StatusAccepted, api.CancelResponse{VideoID: videoID, Status: "cancelling"})
}

// authMiddleware validates bearer tokens. If no token is configured all
// requests pass through. The health probe is never wrapped.
func (s *apiServer) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	if s.token == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.token {
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return logging.NewComponentLogger(s.logger, "api-server")
	}
	return logging.NewNop()
}
