// Package admin serves the browser dashboard and the HTTP control surface.
package admin

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"droneops-telemetry/internal/logging"
	"droneops-telemetry/internal/session"
	"droneops-telemetry/internal/sim"
	"droneops-telemetry/internal/telemetry"
)

const shutdownTimeout = 5 * time.Second

//go:embed templates/index.html
var content embed.FS

// Server exposes the simulator over HTTP.
type Server struct {
	Sim     *sim.Simulator
	hub     *Hub
	metrics http.Handler
	tpl     *template.Template
	router  *mux.Router
}

// NewServer builds the router. hub and metrics may be nil, in which case
// /ws and /metrics are not registered.
func NewServer(s *sim.Simulator, hub *Hub, metrics http.Handler) *Server {
	tpl := template.Must(template.New("index.html").ParseFS(content, "templates/index.html"))
	srv := &Server{Sim: s, hub: hub, metrics: metrics, tpl: tpl}
	srv.routes()
	return srv
}

func (s *Server) routes() {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/telemetry", s.handleTelemetry).Methods(http.MethodGet)
	r.HandleFunc("/history", s.handleHistory).Methods(http.MethodGet)
	r.HandleFunc("/controls", s.handleControls).Methods(http.MethodGet)
	r.HandleFunc("/controls/run", s.handleRun).Methods(http.MethodPost)
	r.HandleFunc("/controls/interval", s.handleInterval).Methods(http.MethodPost)
	if s.hub != nil {
		r.HandleFunc("/ws", s.hub.ServeWS)
	}
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics).Methods(http.MethodGet)
	}
	s.router = r
}

// Handler returns the router.
func (s *Server) Handler() http.Handler { return s.router }

// Start listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if s.hub != nil {
		_ = s.hub.Close()
	}
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// controlState is the JSON view of the session controls.
type controlState struct {
	Running         bool    `json:"running"`
	IntervalSeconds float64 `json:"interval_seconds"`
	MinSeconds      float64 `json:"min_seconds"`
	MaxSeconds      float64 `json:"max_seconds"`
}

func stateOf(sess *session.Session) controlState {
	lo, hi := sess.Bounds()
	return controlState{
		Running:         sess.Running(),
		IntervalSeconds: sess.Interval().Seconds(),
		MinSeconds:      lo.Seconds(),
		MaxSeconds:      hi.Seconds(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.Sim.Session()
	data := struct {
		SessionID string
		Controls  controlState
		Capacity  int
		Battery   telemetry.Bounds
		Latitude  telemetry.Bounds
		Longitude telemetry.Bounds
	}{sess.ID(), stateOf(sess), sess.Capacity(), telemetry.BatteryRange, telemetry.LatitudeRange, telemetry.LongitudeRange}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tpl.Execute(w, data); err != nil {
		logging.FromContext(r.Context()).Error("render index", "err", err)
	}
}

func (s *Server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	frame, ok := s.Sim.Latest()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.Session().History())
}

func (s *Server) handleControls(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stateOf(s.Sim.Session()))
}

// handleRun sets the run flag from ?running=, or toggles it when absent.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	sess := s.Sim.Session()
	raw := r.URL.Query().Get("running")
	if raw == "" {
		sess.Toggle()
	} else {
		running, err := strconv.ParseBool(raw)
		if err != nil {
			http.Error(w, "invalid running value", http.StatusBadRequest)
			return
		}
		sess.SetRunning(running)
	}
	logging.FromContext(r.Context()).Info("run flag updated", "running", sess.Running())
	writeJSON(w, http.StatusOK, stateOf(sess))
}

func (s *Server) handleInterval(w http.ResponseWriter, r *http.Request) {
	sess := s.Sim.Session()
	secs, err := strconv.Atoi(r.URL.Query().Get("seconds"))
	if err != nil {
		http.Error(w, "seconds must be an integer", http.StatusBadRequest)
		return
	}
	if _, err := sess.SetInterval(time.Duration(secs) * time.Second); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	logging.FromContext(r.Context()).Info("refresh interval updated", "interval", sess.Interval())
	writeJSON(w, http.StatusOK, stateOf(sess))
}
