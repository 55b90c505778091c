// Package server exposes the allow-list check over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Mohsinsiddi/swapctl/internal/config"
	"github.com/Mohsinsiddi/swapctl/internal/logging"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	Addr string
	// Caller reads the swapper contracts.
	Caller ethereum.ContractCaller
	// Candidates are probed when a request names no contract.
	Candidates []common.Address
	Log        logrus.FieldLogger
	// Registry receives the server metrics. Defaults to a private registry.
	Registry *prometheus.Registry
	// AllowOrigins restricts CORS; empty allows every origin.
	AllowOrigins []string
	// ReadTimeout bounds the reads of one contract. Defaults to
	// config.ReadTimeout.
	ReadTimeout time.Duration
}

// Server is the HTTP endpoint.
type Server struct {
	caller     ethereum.ContractCaller
	candidates []common.Address
	timeout    time.Duration
	log        logrus.FieldLogger
	metrics    *metrics
	engine     *gin.Engine
	http       *http.Server
}

// New builds the router.
func New(opts Options) *Server {
	log := logging.OrDiscard(opts.Log)
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	timeout := opts.ReadTimeout
	if timeout <= 0 {
		timeout = config.ReadTimeout
	}

	s := &Server{
		caller:     opts.Caller,
		candidates: opts.Candidates,
		timeout:    timeout,
		log:        log,
		metrics:    newMetrics(reg),
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(requestLogger(log))
	router.Use(instrument(s.metrics))
	router.Use(corsMiddleware(opts.AllowOrigins))
	router.Use(gin.CustomRecovery(func(c *gin.Context, err any) {
		log.WithField("panic", err).Error("handler panicked")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}))
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, CheckResponse{Error: "Method not allowed"})
	})

	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	router.POST("/api/checkAllowance", s.checkAllowance)

	s.engine = router
	addr := opts.Addr
	if addr == "" {
		addr = config.DefaultServerAddr
	}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: config.ReadTimeout,
	}
	return s
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return cors.Default()
	}
	cfg := cors.DefaultConfig()
	cfg.AllowOrigins = origins
	return cors.New(cfg)
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Addr returns the listen address.
func (s *Server) Addr() string { return s.http.Addr }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.http.Addr).Info("server listening")
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
