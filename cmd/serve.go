package cmd

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vibast-solutions/ms-go-tablelocks/app/controller"
	"github.com/vibast-solutions/ms-go-tablelocks/app/metrics"
	"github.com/vibast-solutions/ms-go-tablelocks/app/service"
	"github.com/vibast-solutions/ms-go-tablelocks/app/store"
	"github.com/vibast-solutions/ms-go-tablelocks/config"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const serviceName = "ms-go-tablelocks"
const serviceVersion = "1.0.0"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  "Start the HTTP (Echo) server for the table locks service.",
	Run:   runServe,
}

// init registers the serve command.
func init() {
	rootCmd.AddCommand(serveCmd)
}

// runServe wires dependencies and starts the HTTP server.
func runServe(_ *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	instanceID := uuid.NewString()
	logger := newLogger(cfg).WithField("instance", instanceID)

	lockStore := store.NewLockStore(store.NewSystemClock())
	prom := metrics.NewProm("tablelocks", lockStore.ActiveCount)
	tables := service.NewTableLockService(lockStore, logger, prom)
	tableController := controller.NewTableController(tables)

	e := setupHTTPServer(tableController, logger, instanceID, time.Now())

	go func() {
		httpAddr := net.JoinHostPort(cfg.HTTPHost, cfg.HTTPPort)
		logger.Infof("Starting HTTP server on %s", httpAddr)
		if err := e.Start(httpAddr); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP shutdown error: %v", err)
	}

	logger.Info("Server stopped")
}

// newLogger builds the base logrus logger from config.
func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// setupHTTPServer configures the Echo HTTP server and routes.
func setupHTTPServer(tableController *controller.TableController, logger logrus.FieldLogger, instanceID string, started time.Time) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	e.HTTPErrorHandler = newHTTPErrorHandler(logger)

	tables := e.Group("/api/tables")
	tables.POST("/lock", tableController.Lock)
	tables.POST("/unlock", tableController.Unlock)
	tables.GET("/:tableId/status", tableController.Status)
	tables.GET("/locks", tableController.ActiveLocks)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"uptime":    int64(time.Since(started).Seconds()),
		})
	})

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"service":  serviceName,
			"version":  serviceVersion,
			"instance": instanceID,
			"endpoints": map[string]string{
				"POST /api/tables/lock":           "Acquire a table lock",
				"POST /api/tables/unlock":         "Release a table lock",
				"GET /api/tables/:tableId/status": "Check whether a table is locked",
				"GET /api/tables/locks":           "List all active locks",
				"GET /health":                     "Service health",
				"GET /metrics":                    "Prometheus metrics",
			},
		})
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}

// newHTTPErrorHandler maps routing and unexpected errors to the JSON error
// shape used by the rest of the API.
func newHTTPErrorHandler(logger logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := "Internal server error."

		if he, ok := err.(*echo.HTTPError); ok {
			switch he.Code {
			case http.StatusNotFound, http.StatusMethodNotAllowed:
				// Unknown routes and wrong methods share one external shape.
				code = http.StatusNotFound
				message = "Endpoint not found."
			case http.StatusInternalServerError:
			default:
				code = he.Code
				if msg, ok := he.Message.(string); ok {
					message = msg
				}
			}
		}

		if code == http.StatusInternalServerError {
			logger.WithError(err).Error("request failed")
		}

		if jsonErr := c.JSON(code, echo.Map{"success": false, "message": message}); jsonErr != nil {
			logger.WithError(jsonErr).Error("failed to write error response")
		}
	}
}
