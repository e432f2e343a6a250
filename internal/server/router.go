package server

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ladrtools/proverd/internal/metrics"
	"github.com/ladrtools/proverd/internal/program"
	"github.com/ladrtools/proverd/internal/run"
	"github.com/ladrtools/proverd/internal/supervise"
)

// Router provides embeddable HTTP handlers for managing runs.
// Endpoints:
//   POST {basePath}/start              body: {program, input, options}
//   GET  {basePath}/status/:id
//   GET  {basePath}/processes
//   POST {basePath}/pause/:id
//   POST {basePath}/resume/:id
//   POST {basePath}/kill/:id
//   GET  {basePath}/exits/:program
//   GET  {basePath}/metrics           (when enabled)
// basePath may be empty or start with '/'; no trailing slash.

type Router struct {
	sup      *supervise.Supervisor
	basePath string
	metrics  bool
}

// NewRouter constructs a new Router with configurable basePath.
func NewRouter(sup *supervise.Supervisor, basePath string, withMetrics bool) *Router {
	return &Router{sup: sup, basePath: sanitizeBase(basePath), metrics: withMetrics}
}

// Handler returns an http.Handler powered by gin that can be mounted in any server/mux.
func (r *Router) Handler() http.Handler {
	g := gin.New()
	g.Use(gin.Recovery())
	group := g.Group(r.basePath)
	group.POST("/start", r.handleStart)
	group.GET("/status/:id", r.handleStatus)
	group.GET("/processes", r.handleList)
	group.POST("/pause/:id", r.handlePause)
	group.POST("/resume/:id", r.handleResume)
	group.POST("/kill/:id", r.handleKill)
	group.GET("/exits/:program", r.handleExits)
	if r.metrics {
		group.GET("/metrics", gin.WrapH(metrics.Handler()))
	}
	return g
}

// NewServer starts a standalone HTTP server on addr using this router.
// The listener is bound before returning so address errors surface here.
func NewServer(addr, basePath string, sup *supervise.Supervisor, withMetrics bool) (*http.Server, error) {
	r := NewRouter(sup, basePath, withMetrics)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() { _ = server.Serve(ln) }()
	return server, nil
}

// --- Handlers ---

type errorResp struct {
	Error string `json:"error"`
}

type actionResp struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type startReq struct {
	Program string         `json:"program"`
	Input   string         `json:"input"`
	Options map[string]any `json:"options,omitempty"`
}

type startResp struct {
	ProcessID uint64 `json:"process_id"`
}

func (r *Router) handleStart(c *gin.Context) {
	var req startReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	prog, err := program.Parse(req.Program)
	if err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: err.Error()})
		return
	}
	if req.Input == "" {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "input required"})
		return
	}
	id, err := r.sup.Create(prog, req.Input, req.Options)
	if err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, startResp{ProcessID: id})
}

func (r *Router) handleStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	rec, err := r.sup.Status(id)
	if err != nil {
		writeActionError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, rec)
}

func (r *Router) handleList(c *gin.Context) {
	recs := r.sup.List()
	ids := make([]uint64, len(recs))
	for i, rec := range recs {
		ids[i] = rec.ID
	}
	writeJSON(c, http.StatusOK, ids)
}

func (r *Router) handlePause(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := r.sup.Pause(id); err != nil {
		writeActionError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, actionResp{Status: "success", Message: "Process paused"})
}

func (r *Router) handleResume(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := r.sup.Resume(id); err != nil {
		writeActionError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, actionResp{Status: "success", Message: "Process resumed"})
}

func (r *Router) handleKill(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := r.sup.Kill(id); err != nil {
		writeActionError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, actionResp{Status: "success", Message: "Process termination signal sent"})
}

func (r *Router) handleExits(c *gin.Context) {
	prog, err := program.Parse(c.Param("program"))
	if err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: err.Error()})
		return
	}
	writeJSON(c, http.StatusOK, program.ExitTable(prog))
}

func parseID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		writeJSON(c, http.StatusBadRequest, errorResp{Error: "invalid process id"})
		return 0, false
	}
	return id, true
}

// writeActionError maps supervisor errors to HTTP status codes: unknown ids
// are 404, illegal actions and unsupported platforms are 400.
func writeActionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, run.ErrNotFound):
		writeJSON(c, http.StatusNotFound, errorResp{Error: "Process not found"})
	case run.IsInvalidState(err), errors.Is(err, run.ErrUnsupported):
		writeJSON(c, http.StatusBadRequest, errorResp{Error: err.Error()})
	default:
		writeJSON(c, http.StatusInternalServerError, errorResp{Error: err.Error()})
	}
}
