// Package bootstrap downloads and runs a throwaway ArangoDB server for
// integration tests.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/unifiedui/arango-client/pkg/arango"
)

const (
	binaryName = "arangod"

	// DefaultPollInterval is the delay between readiness probes.
	DefaultPollInterval = 500 * time.Millisecond
	// DefaultStartupTimeout bounds WaitReady.
	DefaultStartupTimeout = 60 * time.Second
)

// ErrNotRunning is returned by Stop when no server was started.
var ErrNotRunning = errors.New("server is not running")

// Config holds the configuration for a bootstrap server.
type Config struct {
	Version string
	// DownloadURL may contain one %s, replaced by Version.
	DownloadURL    string
	InstallDir     string
	Port           int
	StartupTimeout time.Duration
	PollInterval   time.Duration
	ExtraArgs      []string
	HTTPClient     *http.Client
	Logger         *zerolog.Logger
}

// Server is one local arangod process with its own data directory.
type Server struct {
	cfg        Config
	httpClient *http.Client
	logger     zerolog.Logger
	db         *arango.Database

	mu      sync.Mutex
	cmd     *exec.Cmd
	dataDir string
	// done is closed when the process exits; waitErr is set before.
	done    chan struct{}
	waitErr error
}

// New creates a Server; nothing is downloaded or started yet.
func New(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.InstallDir == "" {
		return nil, fmt.Errorf("install dir is required")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", cfg.Port)
	}

	c := *cfg
	if c.StartupTimeout <= 0 {
		c.StartupTimeout = DefaultStartupTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Minute}
	}

	logger := zerolog.Nop()
	if c.Logger != nil {
		logger = *c.Logger
	}

	db, err := arango.NewDatabase(&arango.ConnectionConfig{
		URL:        fmt.Sprintf("http://127.0.0.1:%d", c.Port),
		HTTPClient: &http.Client{Timeout: 2 * time.Second},
	})
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:        c,
		httpClient: httpClient,
		logger:     logger,
		db:         db,
	}, nil
}

// URL returns the server URL.
func (s *Server) URL() string {
	return fmt.Sprintf("http://127.0.0.1:%d", s.cfg.Port)
}

// Database returns a client for the server.
func (s *Server) Database() *arango.Database {
	return s.db
}

// DataDir returns the data directory of the running server.
func (s *Server) DataDir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dataDir
}

// Args returns the arangod arguments for a data directory.
func (s *Server) Args(dataDir string) []string {
	args := []string{
		"--server.endpoint", fmt.Sprintf("tcp://127.0.0.1:%d", s.cfg.Port),
		"--database.directory", dataDir,
	}
	return append(args, s.cfg.ExtraArgs...)
}

// Start launches arangod on a fresh, empty data directory and blocks until
// the version endpoint answers.
func (s *Server) Start(ctx context.Context) error {
	binary, err := s.BinaryPath()
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.cmd != nil {
		s.mu.Unlock()
		return fmt.Errorf("server already started")
	}

	dataDir, err := os.MkdirTemp("", "arangodb-data-")
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	cmd := exec.Command(binary, s.Args(dataDir)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		s.mu.Unlock()
		_ = os.RemoveAll(dataDir)
		return fmt.Errorf("failed to start %s: %w", binary, err)
	}

	done := make(chan struct{})
	s.cmd, s.dataDir, s.done = cmd, dataDir, done
	s.mu.Unlock()

	go func() {
		err := cmd.Wait()
		s.mu.Lock()
		s.waitErr = err
		s.mu.Unlock()
		close(done)
	}()

	s.logger.Info().
		Int("pid", cmd.Process.Pid).
		Int("port", s.cfg.Port).
		Str("data_dir", dataDir).
		Msg("arangod started")

	if err := s.WaitReady(ctx); err != nil {
		_ = s.Stop()
		return err
	}
	return nil
}

// WaitReady polls the version endpoint until it answers, the process exits
// or the startup timeout passes.
func (s *Server) WaitReady(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StartupTimeout)
	defer cancel()

	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		info, err := s.db.Version(ctx)
		if err == nil {
			s.logger.Info().Str("version", info.Version).Msg("arangod ready")
			return nil
		}
		s.logger.Debug().Err(err).Msg("arangod not ready yet")

		select {
		case <-ctx.Done():
			return fmt.Errorf("server did not become ready: %w", ctx.Err())
		case <-done:
			s.mu.Lock()
			err := s.waitErr
			s.mu.Unlock()
			return fmt.Errorf("server exited during startup: %v", err)
		case <-ticker.C:
		}
	}
}

// Stop kills the process and removes its data directory.
func (s *Server) Stop() error {
	s.mu.Lock()
	cmd, dataDir, done := s.cmd, s.dataDir, s.done
	s.cmd, s.dataDir, s.done = nil, "", nil
	s.mu.Unlock()

	if cmd == nil {
		return ErrNotRunning
	}

	var errs []error
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		errs = append(errs, fmt.Errorf("failed to kill arangod: %w", err))
	}
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		errs = append(errs, fmt.Errorf("arangod did not exit"))
	}
	if err := os.RemoveAll(dataDir); err != nil {
		errs = append(errs, fmt.Errorf("failed to remove data directory: %w", err))
	}

	s.logger.Info().Str("data_dir", dataDir).Msg("arangod stopped")
	return errors.Join(errs...)
}
