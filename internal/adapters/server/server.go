// Package server exposes the cache and the client interface over HTTP with echo.
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.trai.ch/swcache/internal/core/domain"
	"go.trai.ch/swcache/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	maxBodySize       = 8 << 20
	bodyLimit         = "8M"
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second

	// NetworkErrorBody is the body of the generic offline answer.
	NetworkErrorBody = "Network error"
)

// Resolver answers an intercepted request.
type Resolver interface {
	Resolve(ctx context.Context, req *domain.Request) (*domain.Response, error)
}

// Commands answers client commands.
type Commands interface {
	Reply(ctx context.Context, cmd domain.Command) *domain.Message
}

// Syncer runs sync tags.
type Syncer interface {
	Sync(ctx context.Context, tag domain.SyncTag) error
}

// Notifier shows notifications and handles clicks.
type Notifier interface {
	Show(ctx context.Context, p domain.Push) (domain.Notification, error)
	Click(ctx context.Context, click domain.NotificationClick) error
}

// Options configures the optional parts of the surface.
type Options struct {
	Listen  string
	Origin  *url.URL
	Clients http.Handler
	Metrics http.Handler
}

// Server is the HTTP surface of the proxy.
type Server struct {
	echo     *echo.Echo
	resolver Resolver
	commands Commands
	syncer   Syncer
	notifier Notifier
	logger   ports.Logger
	listen   string
	origin   *url.URL
}

// New creates a Server and registers its routes.
func New(
	resolver Resolver,
	commands Commands,
	syncer Syncer,
	notifier Notifier,
	logger ports.Logger,
	opts Options,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:     e,
		resolver: resolver,
		commands: commands,
		syncer:   syncer,
		notifier: notifier,
		logger:   logger,
		listen:   opts.Listen,
		origin:   opts.Origin,
	}

	sw := e.Group("/sw")
	if opts.Clients != nil {
		sw.GET("/clients", echo.WrapHandler(opts.Clients))
	}
	sw.POST("/commands", s.handleCommand)
	sw.POST("/sync/:tag", s.handleSync)
	sw.POST("/push", s.handlePush)
	sw.POST("/notifications/click", s.handleNotificationClick)
	if opts.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(opts.Metrics))
	}
	e.Any("/*", s.intercept, middleware.BodyLimit(bodyLimit))

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Serve listens on the configured address until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.listen)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrServerFailed.Error()), "listen", s.listen)
	}
	s.logger.Info("listening on " + lis.Addr().String())

	srv := &http.Server{
		Handler:           s.echo,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return zerr.Wrap(err, domain.ErrServerFailed.Error())
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return zerr.Wrap(err, domain.ErrServerFailed.Error())
	}
}

func (s *Server) handleCommand(c echo.Context) error {
	var cmd domain.Command
	if err := c.Bind(&cmd); err != nil {
		return c.JSON(http.StatusBadRequest, domain.ErrorMessage(domain.ErrInvalidCommand))
	}
	reply := s.commands.Reply(c.Request().Context(), cmd)
	if reply == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, reply)
}

func (s *Server) handleSync(c echo.Context) error {
	tag := domain.SyncTag(c.Param("tag"))
	if !slices.Contains(domain.SyncTags(), tag) {
		return c.JSON(http.StatusNotFound, domain.ErrorMessage(domain.ErrUnknownSyncTag))
	}
	if err := s.syncer.Sync(c.Request().Context(), tag); err != nil {
		s.logger.Error(err)
		return c.JSON(http.StatusInternalServerError, domain.ErrorMessage(err))
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handlePush(c echo.Context) error {
	var p domain.Push
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, domain.ErrorMessage(domain.ErrInvalidCommand))
	}
	n, err := s.notifier.Show(c.Request().Context(), p)
	if err != nil {
		// Nobody may be listening; the notification itself is still valid.
		s.logger.Error(err)
	}
	return c.JSON(http.StatusOK, n)
}

func (s *Server) handleNotificationClick(c echo.Context) error {
	var click domain.NotificationClick
	if err := c.Bind(&click); err != nil {
		return c.JSON(http.StatusBadRequest, domain.ErrorMessage(domain.ErrInvalidCommand))
	}
	if err := s.notifier.Click(c.Request().Context(), click); err != nil {
		s.logger.Error(err)
		return c.JSON(http.StatusInternalServerError, domain.ErrorMessage(err))
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) intercept(c echo.Context) error {
	req, err := s.normalize(c.Request())
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he
		}
		return c.String(http.StatusBadRequest, err.Error())
	}

	resp, err := s.resolver.Resolve(c.Request().Context(), req)
	if err != nil {
		s.logger.Error(err)
		return c.String(http.StatusRequestTimeout, NetworkErrorBody)
	}
	return writeResponse(c, resp)
}

// normalize maps an incoming request onto a domain request. Absolute-form targets keep their
// URL; origin-form targets are resolved against the origin.
func (s *Server) normalize(r *http.Request) (*domain.Request, error) {
	var u *url.URL
	switch {
	case r.URL.IsAbs():
		clone := *r.URL
		u = &clone
	case s.origin != nil:
		u = s.origin.ResolveReference(&url.URL{Path: r.URL.Path, RawPath: r.URL.RawPath, RawQuery: r.URL.RawQuery})
	default:
		u = &url.URL{Scheme: "http", Host: r.Host, Path: r.URL.Path, RawPath: r.URL.RawPath, RawQuery: r.URL.RawQuery}
	}

	req := &domain.Request{
		Method:      r.Method,
		URL:         u,
		Destination: destination(r.Header.Get("Sec-Fetch-Dest")),
		Header:      r.Header.Clone(),
	}

	if r.Body != nil && r.Method != http.MethodGet && r.Method != http.MethodHead {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
		if err != nil {
			var he *echo.HTTPError
			if errors.As(err, &he) {
				return nil, he
			}
			return nil, zerr.Wrap(err, "failed to read request body")
		}
		if len(body) > maxBodySize {
			return nil, echo.ErrStatusRequestEntityTooLarge
		}
		req.Body = body
	}
	return req, nil
}

func destination(v string) domain.Destination {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" || v == "empty" {
		return domain.DestinationNone
	}
	return domain.Destination(v)
}

func writeResponse(c echo.Context, resp *domain.Response) error {
	h := c.Response().Header()
	for k, vs := range resp.Header {
		for _, v := range vs {
			h.Add(k, v)
		}
	}
	c.Response().WriteHeader(resp.Status)
	if c.Request().Method == http.MethodHead || len(resp.Body) == 0 {
		return nil
	}
	_, err := c.Response().Write(resp.Body)
	return err
}
