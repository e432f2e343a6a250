package proverd

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	cfg "github.com/ladrtools/proverd/internal/config"
	"github.com/ladrtools/proverd/internal/history"
	"github.com/ladrtools/proverd/internal/history/factory"
	"github.com/ladrtools/proverd/internal/logger"
	"github.com/ladrtools/proverd/internal/metrics"
	"github.com/ladrtools/proverd/internal/program"
	"github.com/ladrtools/proverd/internal/run"
	iapi "github.com/ladrtools/proverd/internal/server"
	"github.com/ladrtools/proverd/internal/stats"
	"github.com/ladrtools/proverd/internal/supervise"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Program = program.Type

const (
	Prover9      = program.Prover9
	Mace4        = program.Mace4
	Isofilter    = program.Isofilter
	Isofilter2   = program.Isofilter2
	Interpformat = program.Interpformat
	Prooftrans   = program.Prooftrans
)

type State = run.State

type Record = run.Record

type ResourceUsage = run.ResourceUsage

type Stats = stats.Stats

type HistorySink = history.Sink

type Option = supervise.Option

var (
	ErrNotFound    = run.ErrNotFound
	ErrUnsupported = run.ErrUnsupported
)

// Supervisor is a thin facade over internal/supervise.Supervisor.
// It provides a stable public API for embedding.

type Supervisor struct{ inner *supervise.Supervisor }

func New(binDir string, opts ...Option) *Supervisor {
	return &Supervisor{inner: supervise.New(binDir, opts...)}
}

var (
	WithPollInterval = supervise.WithPollInterval
	WithKillGrace    = supervise.WithKillGrace
	WithLogger       = supervise.WithLogger
	WithHistorySinks = supervise.WithHistorySinks
)

func (s *Supervisor) Start(p Program, input string, options map[string]any) (uint64, error) {
	return s.inner.Create(p, input, options)
}
func (s *Supervisor) Status(id uint64) (Record, error) { return s.inner.Status(id) }
func (s *Supervisor) List() []Record                   { return s.inner.List() }
func (s *Supervisor) Pause(id uint64) error            { return s.inner.Pause(id) }
func (s *Supervisor) Resume(id uint64) error           { return s.inner.Resume(id) }
func (s *Supervisor) Kill(id uint64) error             { return s.inner.Kill(id) }
func (s *Supervisor) Wait(ctx context.Context, id uint64) (Record, error) {
	return s.inner.Wait(ctx, id)
}
func (s *Supervisor) Shutdown(ctx context.Context) error { return s.inner.Shutdown(ctx) }

// ExitTable returns the exit code label table for a program.
func ExitTable(p Program) map[int]string { return program.ExitTable(p) }

// ParseProgram resolves a program name to its Program value.
func ParseProgram(name string) (Program, error) { return program.Parse(name) }

type Config = cfg.Config

func LoadConfig(path string) (Config, error) { return cfg.Load(path) }

type LoggerConfig = logger.Config

var NewLogger = logger.New

// NewHistorySink opens a history sink from a DSN (sqlite path,
// postgres:// or clickhouse:// URL).
func NewHistorySink(dsn string) (HistorySink, error) { return factory.NewSinkFromDSN(dsn) }

// NewHTTPServer starts an HTTP server exposing the internal API using the given supervisor.
func NewHTTPServer(addr, basePath string, s *Supervisor, withMetrics bool) (*http.Server, error) {
	return iapi.NewServer(addr, basePath, s.inner, withMetrics)
}

// Metrics helpers (public facade)

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.Register(prometheus.DefaultRegisterer) }
func MetricsHandler() http.Handler                  { return metrics.Handler() }
