package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mqy/minichat/auth"
	"github.com/mqy/minichat/room"
)

const shutdownTimeout = 5 * time.Second

type Config struct {
	Addr           string
	CORSOrigin     string
	DisableMetrics bool
}

// Server is the HTTP surface of the room.
type Server struct {
	conf       *Config
	router     *gin.Engine
	httpServer *http.Server
	lis        net.Listener
}

func NewServer(svc *room.Service, authClient auth.Client, conf *Config) *Server {
	if authClient == nil {
		authClient = &auth.HeaderClient{}
	}

	router := gin.New()
	router.Use(recovery(), accessLog())
	if conf.CORSOrigin != "" {
		router.Use(cors(conf.CORSOrigin))
	}
	if !conf.DisableMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
			prometheus.DefaultGatherer,
			promhttp.HandlerOpts{},
		)))
	}
	setupRoutes(router, &handlers{svc: svc, authClient: authClient})

	return &Server{
		conf:       conf,
		router:     router,
		httpServer: &http.Server{Handler: h2c.NewHandler(router, &http2.Server{})},
	}
}

// Handler returns the router without the h2c wrapper.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Listen binds the server address. It is called before Run so that a busy port
// fails the start up.
func (s *Server) Listen() error {
	lis, err := net.Listen("tcp", s.conf.Addr)
	if err != nil {
		return fmt.Errorf("listen %s error: %v", s.conf.Addr, err)
	}
	s.lis = lis
	return nil
}

// Addr returns the bound address, after Listen.
func (s *Server) Addr() string {
	if s.lis == nil {
		return s.conf.Addr
	}
	return s.lis.Addr().String()
}

// Run serves until ctx is done, then shuts down and notifies stopNotifyCh.
func (s *Server) Run(ctx context.Context, stopNotifyCh chan<- struct{}) {
	errC := make(chan error, 1)
	go func() {
		glog.Infof("http server is listening %v", s.Addr())
		if err := s.httpServer.Serve(s.lis); errors.Is(err, http.ErrServerClosed) {
			glog.Infof("http server closed")
		} else if err != nil {
			glog.Errorf("error serve http: %v", err)
			errC <- err
		}
	}()

	select {
	case <-ctx.Done():
	case <-errC:
	}

	ctx2, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx2); err != nil {
		glog.Errorf("http server shutdown: %v", err)
	}
	glog.Infof("http server shutdown done")
	stopNotifyCh <- struct{}{}
}
