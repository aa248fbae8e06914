package httpserver

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tinytelemetry/balloonwatch/internal/model"
)

// StatusReporter exposes the state of the polling loop.
type StatusReporter interface {
	Status() model.PollStatus
}

// HistoryConfig bounds the historical readings attached to responses.
type HistoryConfig struct {
	Window time.Duration
	Limit  int
}

// Server provides the relay HTTP API.
type Server struct {
	addr      string
	store     model.SnapshotQuerier
	status    StatusReporter
	history   HistoryConfig
	server    *http.Server
	listener  net.Listener
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
	now       func() time.Time
}

// NewServer creates a new HTTP API server. status may be nil.
func NewServer(addr string, store model.SnapshotQuerier, status StatusReporter, history HistoryConfig) *Server {
	if addr == "" {
		addr = "0.0.0.0:3000"
	}
	if history.Window <= 0 {
		history.Window = model.DefaultHistoryWindow
	}
	if history.Limit <= 0 {
		history.Limit = model.DefaultHistoryLimit
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:    addr,
		store:   store,
		status:  status,
		history: history,
		ctx:     ctx,
		cancel:  cancel,
		now:     time.Now,
	}
}

// Handler builds the gin engine with all routes registered.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", s.handleLatest)
	r.GET("/api/health", s.handleHealth)
	r.GET("/api/history", s.handleHistory)

	return r
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	s.server = &http.Server{
		Handler:           s.Handler(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener
	s.startTime = s.now()

	go s.server.Serve(listener)
	return nil
}

// Addr returns the bound address once started, or the configured one.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// latestResponse mirrors the upstream envelope so the dashboard can point at
// the relay unchanged.
type latestResponse struct {
	Weather   *model.WeatherSnapshot `json:"weather,omitempty"`
	Balloons  model.BalloonList      `json:"balloons"`
	FetchedAt time.Time              `json:"fetched_at"`
}

func (s *Server) handleLatest(c *gin.Context) {
	snap, err := s.store.LatestSnapshot()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read latest snapshot"})
		return
	}
	if snap == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no snapshot collected yet"})
		return
	}

	hist, err := s.store.HistoricalReadings(s.now(), s.history.Window, s.history.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read historical readings"})
		return
	}

	c.JSON(http.StatusOK, latestResponse{
		Weather:   snap.Weather,
		Balloons:  model.BalloonList{Readings: snap.Readings, Historical: hist},
		FetchedAt: snap.FetchedAt,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	count, err := s.store.SnapshotCount()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read health metrics"})
		return
	}

	body := gin.H{
		"status":         "ok",
		"uptime":         s.now().Sub(s.startTime).String(),
		"snapshot_count": count,
	}
	if s.status != nil {
		st := s.status.Status()
		body["polls"] = st.Polls
		body["poll_failures"] = st.Failures
		body["last_poll_error"] = st.LastError
		if !st.LastSuccess.IsZero() {
			body["last_success"] = st.LastSuccess
		}
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleHistory(c *gin.Context) {
	window := s.history.Window
	if raw := c.Query("hours"); raw != "" {
		hours, err := strconv.ParseFloat(raw, 64)
		if err != nil || hours <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "hours must be a positive number"})
			return
		}
		window = time.Duration(hours * float64(time.Hour))
	}

	hist, err := s.store.HistoricalReadings(s.now(), window, s.history.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read historical readings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"window":              window.String(),
		"count":               len(hist),
		"historical_balloons": hist,
	})
}
