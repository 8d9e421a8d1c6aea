// Package admin serves the read/remove HTTP surface of a running housekeeper.
package admin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"housekeeper/internal/housekeeper"
	"housekeeper/internal/journal"
	"housekeeper/internal/shared"
)

const (
	defaultRunsLimit = 50
	maxRunsLimit     = 500
)

// Scheduler is the part of *housekeeper.Housekeeper the admin API uses.
type Scheduler interface {
	Tasks() []housekeeper.TaskInfo
	ShowTasks(w io.Writer) error
	Remove(name string) bool
	Heartbeat() int64
	IsRunning() bool
}

// RunLister returns recent task executions.
type RunLister interface {
	Recent(ctx context.Context, limit int) ([]journal.Entry, error)
}

// Deps groups the collaborators. Runs and Metrics are optional.
type Deps struct {
	Scheduler Scheduler
	Runs      RunLister
	Metrics   http.Handler
	Logger    *slog.Logger
}

// TaskDTO is the JSON form of housekeeper.TaskInfo.
type TaskDTO struct {
	Name            string    `json:"name"`
	Kind            string    `json:"kind"`
	IntervalSeconds int64     `json:"interval_seconds"`
	NextDue         time.Time `json:"next_due"`
}

// Server wraps the gin router in an http.Server.
type Server struct {
	srv *http.Server
	log *slog.Logger
}

// New builds the server listening on addr.
func New(addr string, deps Deps) *Server {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "admin"))
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(deps, log),
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}
}

// Start serves in a background goroutine. Listener errors other than
// http.ErrServerClosed are logged.
func (s *Server) Start() {
	go func() {
		s.log.Info("admin server listening", slog.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("admin server", slog.Any("error", err))
		}
	}()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// NewRouter registers the admin routes.
func NewRouter(deps Deps, log *slog.Logger) *gin.Engine {
	h := &handlers{deps: deps, log: log}

	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", h.health)
	r.GET("/tasks", h.showTasks)

	api := r.Group("/api")
	api.GET("/tasks", h.listTasks)
	api.DELETE("/tasks/:name", h.removeTask)
	api.GET("/runs", h.listRuns)

	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics))
	}
	return r
}

type handlers struct {
	deps Deps
	log  *slog.Logger
}

func (h *handlers) health(c *gin.Context) {
	status, code := "ok", http.StatusOK
	if !h.deps.Scheduler.IsRunning() {
		status, code = "stopped", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":    status,
		"heartbeat": h.deps.Scheduler.Heartbeat(),
	})
}

func (h *handlers) showTasks(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.deps.Scheduler.ShowTasks(&buf); err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
}

func (h *handlers) listTasks(c *gin.Context) {
	tasks := h.deps.Scheduler.Tasks()
	out := make([]TaskDTO, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, TaskDTO{
			Name:            t.Name,
			Kind:            t.Kind.String(),
			IntervalSeconds: int64(t.Interval / time.Second),
			NextDue:         t.NextDue,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *handlers) removeTask(c *gin.Context) {
	name := c.Param("name")
	if !h.deps.Scheduler.Remove(name) {
		h.fail(c, fmt.Errorf("%w: task %q", shared.ErrNotFound, name))
		return
	}
	h.log.Info("task removed via admin", slog.String("task", name))
	c.Status(http.StatusNoContent)
}

func (h *handlers) listRuns(c *gin.Context) {
	if h.deps.Runs == nil {
		h.fail(c, fmt.Errorf("%w: run journal is disabled", shared.ErrNotFound))
		return
	}

	limit := defaultRunsLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxRunsLimit {
			h.fail(c, fmt.Errorf("%w: limit must be between 1 and %d", shared.ErrValidation, maxRunsLimit))
			return
		}
		limit = n
	}

	runs, err := h.deps.Runs.Recent(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, runs)
}

func (h *handlers) fail(c *gin.Context, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		h.log.Error("admin request failed",
			slog.String("path", c.FullPath()),
			slog.Any("error", err))
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch shared.KindOf(err) {
	case shared.KindNotFound:
		return http.StatusNotFound
	case shared.KindValidation:
		return http.StatusBadRequest
	case shared.KindConflict:
		return http.StatusConflict
	case shared.KindCanceled:
		return 499
	default:
		return http.StatusInternalServerError
	}
}
