package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-choices/components/optionsapi"
)

func (a *app) cmdServe() *cli.Command {
	var (
		addr         string
		recordsPath  string
		routePath    string
		searchFields []string
	)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Serve option records over HTTP for remote sources",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "HTTP server address",
				Value:       ":8080",
				Sources:     cli.EnvVars("CHOICES_ADDR"),
				Destination: &addr,
			},
			&cli.StringFlag{
				Name:        "records",
				Aliases:     []string{"r"},
				Usage:       "Records file: a JSON array, or one value|label per line",
				Required:    true,
				Destination: &recordsPath,
			},
			&cli.StringFlag{
				Name:        "route",
				Usage:       "Route path of the options endpoint",
				Value:       "/api/options",
				Destination: &routePath,
			},
			&cli.StringSliceFlag{
				Name:        "search-field",
				Usage:       "Record path matched by the search parameter",
				Value:       []string{"label"},
				Destination: &searchFields,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			records, err := readRecords(recordsPath)
			if err != nil {
				return err
			}
			router, pattern, err := newRouter(a.log(),
				optionsapi.WithRecords(records),
				optionsapi.WithRoutePath(routePath),
				optionsapi.WithSearchFields(searchFields...),
			)
			if err != nil {
				return err
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				a.log().Info("serving options", "addr", addr, "route", pattern, "records", len(records))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return goerr.Wrap(err, "server failed", goerr.V("addr", addr))
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()
			a.log().Info("shutting down")
			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shut down server")
			}
			return nil
		},
	}
}

func newRouter(logger *slog.Logger, opts ...optionsapi.OptionFn) (chi.Router, string, error) {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(requestLogger(logger))
	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	pattern, err := optionsapi.New(opts...).RegisterRoutes(router, "/")
	if err != nil {
		return nil, "", err
	}
	return router, pattern, nil
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request served",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

func readRecords(path string) ([]map[string]any, error) {
	// #nosec G304 - path is provided by the operator
	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open records", goerr.V("path", path))
	}
	defer func() { _ = f.Close() }()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return optionsapi.LoadRecords(f)
	}
	return optionsapi.LoadLines(f)
}
