package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/miradorstack/churn-api/internal/config"
	"github.com/miradorstack/churn-api/internal/metrics"
	"github.com/miradorstack/churn-api/internal/models"
	"github.com/miradorstack/churn-api/internal/schema"
	"github.com/miradorstack/churn-api/internal/utils"
)

// Scorer is the domain behaviour the HTTP surface exposes.
type Scorer interface {
	Score(ctx context.Context, body []byte) (models.ChurnResponse, error)
	Catalog() models.LabelCatalog
}

type validationResponse struct {
	Error  string              `json:"error"`
	Fields []schema.FieldError `json:"fields"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewRouter builds the gin engine serving /health, /labels and /predict.
func NewRouter(cfg config.ServerConfig, scorer Scorer, logger *slog.Logger) (*gin.Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	corsCfg := corsConfig(cfg.AllowedOrigins)
	if err := corsCfg.Validate(); err != nil {
		return nil, fmt.Errorf("cors: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
	router.Use(cors.New(corsCfg))

	h := &handlers{scorer: scorer, logger: logger}
	router.GET("/health", h.health)
	router.GET("/labels", h.labels)
	router.POST("/predict", h.predict)

	return router, nil
}

type handlers struct {
	scorer Scorer
	logger *slog.Logger
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthStatus{Status: "ok"})
}

func (h *handlers) labels(c *gin.Context) {
	c.JSON(http.StatusOK, h.scorer.Catalog())
}

func (h *handlers) predict(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "unable to read request body"})
		return
	}

	resp, err := h.scorer.Score(c.Request.Context(), body)
	if err != nil {
		var verr *schema.ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusUnprocessableEntity, validationResponse{Error: "validation failed", Fields: verr.Fields})
		case utils.IsInference(err):
			c.JSON(http.StatusInternalServerError, errorResponse{Error: "inference failed"})
		default:
			h.logger.Error("predict failed", slog.Any("error", err))
			c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		status := c.Writer.Status()
		metrics.ObserveHTTPRequest(c.Request.Method, route, status)

		level := slog.LevelDebug
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		} else if route == "/predict" {
			level = slog.LevelInfo
		}
		logger.LogAttrs(c.Request.Context(), level, "http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}

// HTTPServer wraps the HTTP listener and its lifecycle helpers.
type HTTPServer struct {
	server   *http.Server
	listener net.Listener
}

// NewHTTPServer binds handler to the configured HTTP address.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) (*HTTPServer, error) {
	lis, err := net.Listen("tcp", cfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.HTTPAddress, err)
	}
	return &HTTPServer{
		server: &http.Server{
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  120 * time.Second,
		},
		listener: lis,
	}, nil
}

// Start serves HTTP until Shutdown is invoked.
func (s *HTTPServer) Start() error {
	if err := s.server.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Address exposes the bound listener address.
func (s *HTTPServer) Address() string {
	return s.listener.Addr().String()
}
