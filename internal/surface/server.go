package surface

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// AttachFunc takes ownership of a newly connected surface. Returning an
// error refuses it and the connection is closed.
type AttachFunc func(s Surface) error

// Server serves the panel page and accepts surface connections:
//
//	GET /                 rendered page (browser surfaces)
//	GET /assets/*path     page assets
//	GET /surface/:kind    websocket, kind is panel or sidebar
//	GET /metrics          prometheus metrics
type Server struct {
	engine   *gin.Engine
	upgrader websocket.Upgrader
	attach   AttachFunc
	page     string
	logger   *zap.Logger
}

func NewServer(attach AttachFunc, gatherer prometheus.Gatherer, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	page, err := LoadPage(webFS, "web/panel.html", assetURL)
	if err != nil {
		return nil, err
	}
	assets, err := fs.Sub(webFS, "web")
	if err != nil {
		return nil, fmt.Errorf("open page assets: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine:   engine,
		upgrader: websocket.Upgrader{ReadBufferSize: 64 * 1024, WriteBufferSize: 64 * 1024},
		attach:   attach,
		page:     page,
		logger:   logger,
	}

	engine.GET("/", s.handlePage)
	engine.StaticFS("/assets", http.FS(assets))
	engine.GET("/surface/:kind", s.handleSurface)
	if gatherer != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Serve listens on addr until ctx is done
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.ServeListener(ctx, ln)
}

func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: s.engine, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("surface server listening", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handlePage(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(s.page))
}

func (s *Server) handleSurface(c *gin.Context) {
	kind, err := ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	ws, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("failed to upgrade surface connection", zap.Error(err))
		return
	}

	conn := NewConn(kind, ws, s.logger)
	if err := s.attach(conn); err != nil {
		s.logger.Info("surface refused", zap.String("kind", string(kind)), zap.Error(err))
		_ = conn.Close()
		return
	}
	s.logger.Info("surface attached", zap.String("kind", string(kind)))
}
