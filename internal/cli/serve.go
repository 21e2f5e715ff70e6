package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matzehuels/asciifolio/pkg/ascii"
	"github.com/matzehuels/asciifolio/pkg/config"
	"github.com/matzehuels/asciifolio/pkg/errors"
	"github.com/matzehuels/asciifolio/pkg/schedule"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr    string
	noCache bool
}

// serveCommand creates the page server.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the portfolio page with ASCII art rendered server-side",
		Long: `Serve the portfolio page with every configured target rendered into its
wrapper and the initial project filter applied, so the page is complete
before any script runs. Static assets are served from the assets directory.

A .env file in the working directory is loaded first. PORT overrides the
configured address.

Endpoints:
  GET /                 the page (?filter=, ?w=, ?h= override the defaults)
  GET /ascii/{target}   one target as text or PNG (?format=txt|png, ?w=, ?h=)
  GET /healthz          liveness`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
				c.Logger.Warn("could not read .env", "err", err)
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			ctx := withLogger(cmd.Context(), c.Logger)
			addr := resolveAddr(cfg.Server.Addr, opts.addr, os.Getenv("PORT"))
			return runServe(ctx, cfg, addr, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default $PORT or from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the image source cache")

	return cmd
}

// resolveAddr picks the listen address: flag, then $PORT, then config.
func resolveAddr(configured, flag, port string) string {
	switch {
	case flag != "":
		return flag
	case port != "":
		return ":" + port
	default:
		return configured
	}
}

func runServe(ctx context.Context, cfg config.Config, addr string, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	loader, store, err := newLoader(ctx, cfg, cfg.Server.Assets, opts.noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           newServer(cfg, loader, logger).routes(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	printSuccess("Serving %s", StyleValue.Render(cfg.Server.Page))
	printKeyValue("Address", StyleLink.Render("http://"+displayAddr(addr)))
	printKeyValue("Targets", strconv.Itoa(len(cfg.Targets)))
	printKeyValue("Cache", cfg.Cache.Backend)

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info("server stopped")
		return ctx.Err()
	}
}

func displayAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}

// =============================================================================
// Handlers
// =============================================================================

type server struct {
	cfg    config.Config
	loader ascii.Loader
	logger *log.Logger
}

func newServer(cfg config.Config, loader ascii.Loader, logger *log.Logger) *server {
	return &server{cfg: cfg, loader: loader, logger: logger}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, "ok\n")
	})
	r.Get("/ascii/{target}", s.handleArt)
	r.Handle("/*", http.FileServer(http.Dir(s.cfg.Server.Assets)))
	return r
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"took", time.Since(start).Round(time.Microsecond),
			"id", middleware.GetReqID(r.Context()))
	})
}

func (s *server) handlePage(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("filter")
	if key != "" {
		if err := errors.ValidateFilterKey(key); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	vp, err := viewportFromQuery(r, s.cfg.Server.Viewport())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	ctx := withLogger(r.Context(), s.logger)
	res, err := prerenderPageFile(ctx, s.cfg, s.loader, s.cfg.Server.Page, key, vp)
	if os.IsNotExist(err) {
		err = errors.Wrap(errors.ErrCodeNotFound, err, "page %s", s.cfg.Server.Page)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	for _, o := range res.Outcomes {
		if o.Err != nil {
			s.logger.Warn("target not rendered", "target", o.ID, "err", o.Err)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, res.HTML)
}

func (s *server) handleArt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "target")
	var target config.Target
	found := false
	for _, t := range s.cfg.Targets {
		if t.ID == id {
			target, found = t, true
			break
		}
	}
	if !found {
		s.fail(w, r, errors.New(errors.ErrCodeTargetNotFound, "unknown target: %s", id))
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = formatText
	}
	if format != formatText && format != formatPNG {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s (must be 'txt' or 'png')", format))
		return
	}
	vp, err := viewportFromQuery(r, s.cfg.Server.Viewport())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	ft := newFileTarget(format)
	job := target.Job()
	job.Target = ft

	sched := schedule.NewManual()
	renderer := ascii.NewRenderer(s.loader, sched, s.logger)
	if _, err := renderer.Render(r.Context(), s.cfg.Render, job, vp); err != nil {
		s.fail(w, r, err)
		return
	}
	sched.Settle(schedule.FrameInterval, maxSettleFrames)

	if format == formatPNG {
		w.Header().Set("Content-Type", "image/png")
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	if err := ft.writeTo(w); err != nil {
		s.logger.Error("write response", "target", id, "err", err)
	}
}

// fail logs err and answers with the status its code maps to.
func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "err", err)
	}
	http.Error(w, errors.UserMessage(err), status)
}

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound, errors.ErrCodeTargetNotFound, errors.ErrCodeImageNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidFilter, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNetwork, errors.ErrCodeTimeout:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// viewportFromQuery reads the optional w and h query parameters.
func viewportFromQuery(r *http.Request, def ascii.Viewport) (ascii.Viewport, error) {
	vp := def
	for _, p := range []struct {
		name string
		dst  *float64
	}{{"w", &vp.Width}, {"h", &vp.Height}} {
		raw := r.URL.Query().Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return def, errors.New(errors.ErrCodeInvalidInput, "invalid %s: %q", p.name, raw)
		}
		*p.dst = v
	}
	return vp, nil
}
