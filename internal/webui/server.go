// Package webui serves the jbodctl web verb: a websocket push of the
// planner's audit trail plus a Prometheus /metrics endpoint, grounded on
// miretskiy-rollingstone's cmd/server (which pushes simulator state over
// the same kind of connection instead of a plan's snapshots).
package webui

import (
	"context"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jbodctl/jbodctl/internal/model"
	"github.com/jbodctl/jbodctl/internal/planner"
	"github.com/jbodctl/jbodctl/internal/util"
	"github.com/jbodctl/jbodctl/internal/webui/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The web UI is meant for operators reaching the planning host over
	// a LAN, not for embedding in a third-party page.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ClientMessage is a command sent from the browser over the websocket.
type ClientMessage struct {
	Type string `json:"type"` // "run", "reset"
}

// ServerMessage is a frame pushed to the browser.
type ServerMessage struct {
	Type     string         `json:"type"` // "status", "snapshot", "plan", "error"
	Running  bool           `json:"running"`
	Step     int            `json:"step,omitempty"`
	Action   string         `json:"action,omitempty"`
	Snapshot model.Snapshot `json:"snapshot,omitempty"`
	Plan     *model.Plan    `json:"plan,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// safeConn serializes concurrent writers against one websocket
// connection, since gorilla/websocket forbids concurrent writes.
type safeConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *safeConn) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(v)
}

// runState wraps one plan run: the world view it plans against, the
// result once Plan has finished, and the replay position the UI is
// pushing out to connected browsers.
type runState struct {
	mu        sync.Mutex
	world     model.WorldView
	opts      planner.Options
	result    planner.Result
	hasResult bool
	running   bool
	replayAt  int
}

func newRunState(world model.WorldView, opts planner.Options) *runState {
	return &runState{world: world, opts: opts}
}

// setInput swaps the world view/options a future run will plan
// against; it does not affect a run already in progress.
func (s *runState) setInput(world model.WorldView, opts planner.Options) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.world = world
	s.opts = opts
}

func (s *runState) start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	s.hasResult = false
	s.replayAt = 0
	return true
}

func (s *runState) finish(result planner.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = result
	s.hasResult = true
	s.running = false
}

func (s *runState) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.hasResult = false
	s.replayAt = 0
}

func (s *runState) isRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// nextSnapshot returns the next unreplayed snapshot, if any, and whether
// the whole trail has now been pushed out.
func (s *runState) nextSnapshot() (model.Snapshot, bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasResult || s.replayAt >= len(s.result.Snapshots) {
		return model.Snapshot{}, false, true
	}
	snap := s.result.Snapshots[s.replayAt]
	s.replayAt++
	done := s.replayAt >= len(s.result.Snapshots)
	return snap, true, done
}

// input returns the world view/options the next run should plan
// against.
func (s *runState) input() (model.WorldView, planner.Options) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world, s.opts
}

func (s *runState) plan() (model.Plan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasResult {
		return model.Plan{}, false
	}
	return s.result.Plan, true
}

// Server serves the websocket audit-trail stream and the Prometheus
// scrape endpoint for one planner run.
type Server struct {
	state    *runState
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	tick     time.Duration
	homeTmpl *template.Template
}

// Config configures a Server.
type Config struct {
	World        model.WorldView
	Options      planner.Options
	ReplayTick   time.Duration // pace of the simulated live replay, default 500ms
}

// New builds a Server ready to be mounted on an http.ServeMux.
func New(cfg Config) *Server {
	tick := cfg.ReplayTick
	if tick <= 0 {
		tick = 500 * time.Millisecond
	}
	reg := prometheus.NewRegistry()
	return &Server{
		state:    newRunState(cfg.World, cfg.Options),
		metrics:  metrics.New(reg),
		registry: reg,
		tick:     tick,
		homeTmpl: template.Must(template.New("home").Parse(homePage)),
	}
}

// UpdateInput swaps the world view/options the next "run" command will
// plan against, letting the web verb's --watch flag live-reload options
// without tearing down the listening HTTP server.
func (s *Server) UpdateInput(world model.WorldView, opts planner.Options) {
	s.state.setInput(world, opts)
}

// Handler returns the mux serving "/", "/ws", and "/metrics".
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.serveHome)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return mux
}

func (s *Server) serveHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.homeTmpl.Execute(w, nil); err != nil {
		util.ErrorLog("failed to render web UI home page: %v", err)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		util.ErrorLog("websocket upgrade failed: %v", err)
		return
	}
	sc := &safeConn{conn: conn}
	defer conn.Close()

	if err := sc.writeJSON(ServerMessage{Type: "status", Running: s.state.isRunning()}); err != nil {
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	for {
		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		switch msg.Type {
		case "run":
			if s.state.start() {
				go s.runPlan(ctx, sc)
			}
		case "reset":
			s.state.reset()
			_ = sc.writeJSON(ServerMessage{Type: "status", Running: false})
		}
	}
}

// runPlan executes the planner once and then replays its audit trail to
// the browser at s.tick pace, mirroring rollingstone's ticker-driven
// uiUpdateLoop but pushing precomputed snapshots instead of stepping a
// live simulation.
func (s *Server) runPlan(ctx context.Context, sc *safeConn) {
	world, planOpts := s.state.input()
	result, err := planner.Plan(world, planOpts)
	if err != nil {
		s.state.reset()
		_ = sc.writeJSON(ServerMessage{Type: "error", Error: err.Error()})
		return
	}
	s.state.finish(result)
	s.metrics.ObservePlan(result.Plan)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap, ok, done := s.state.nextSnapshot()
			if !ok {
				plan, _ := s.state.plan()
				_ = sc.writeJSON(ServerMessage{Type: "plan", Running: false, Plan: &plan})
				return
			}
			s.metrics.ObserveSnapshot(snap)
			msg := ServerMessage{Type: "snapshot", Running: true, Step: snap.Step, Action: snap.Action, Snapshot: snap}
			if err := sc.writeJSON(msg); err != nil {
				return
			}
			if done {
				plan, _ := s.state.plan()
				_ = sc.writeJSON(ServerMessage{Type: "plan", Running: false, Plan: &plan})
				return
			}
		}
	}
}

// ListenAndServe starts an HTTP server on addr serving the web UI until
// ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() {
		util.InfoLog("web UI listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

const homePage = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>jbodctl</title>
</head>
<body>
  <h1>jbodctl</h1>
  <p id="status">idle</p>
  <pre id="log"></pre>
  <script>
    const ws = new WebSocket("ws://" + location.host + "/ws");
    const status = document.getElementById("status");
    const log = document.getElementById("log");
    ws.onmessage = (ev) => {
      const msg = JSON.parse(ev.data);
      status.textContent = msg.type + (msg.running ? " (running)" : "");
      if (msg.type === "snapshot") {
        log.textContent += "step " + msg.step + ": " + msg.action + "\n";
      }
      if (msg.type === "plan") {
        log.textContent += "plan complete: " + JSON.stringify(msg.plan.Summary) + "\n";
      }
    };
    window.run = () => ws.send(JSON.stringify({type: "run"}));
    window.reset = () => ws.send(JSON.stringify({type: "reset"}));
  </script>
  <button onclick="run()">Run</button>
  <button onclick="reset()">Reset</button>
</body>
</html>
`
