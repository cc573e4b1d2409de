// Package server steps a search in front of a browser.
//
// GET /next advances a shared stepper by one expansion and POST /reset starts it over.
// POST /init swaps the displayed map for a generated one.
// GET /ws runs a private stepper for the connecting client and pushes one snapshot per
// publish interval until the search is done.
package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	astar "github.com/pdrpinto/gridastar"
	"github.com/pdrpinto/gridastar/grid"
	"golang.org/x/sync/errgroup"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 1 * time.Second
	// Time to wait for the peer to acknowledge the close message.
	closeGracePeriod = 500 * time.Millisecond
)

//go:embed static/index.html
var indexHTML []byte

var upgrader = websocket.Upgrader{}

type snapshot struct {
	Step        int                `json:"step"`
	Rows        int                `json:"rows"`
	Cols        int                `json:"cols"`
	Walls       []grid.Coord       `json:"walls"`
	Open        []grid.Coord       `json:"open,omitempty"`
	Closed      []grid.Coord       `json:"closed,omitempty"`
	Current     *grid.Coord        `json:"current,omitempty"`
	Start       grid.Coord         `json:"start"`
	Goal        grid.Coord         `json:"goal"`
	Done        bool               `json:"done"`
	Found       bool               `json:"found"`
	Path        []grid.Coord       `json:"path,omitempty"`
	Cost        int                `json:"cost"`
	Relaxations []astar.Relaxation `json:"relaxations,omitempty"`
}

// Server owns the grid on display and the shared stepper behind /next.
type Server struct {
	rootCtx  context.Context
	addr     string
	interval time.Duration
	options  []astar.Option
	logger   *log.Logger

	mu      sync.Mutex
	board   board
	stepper *astar.Stepper
}

// board is a grid with its walls listed once for every snapshot.
type board struct {
	graph *grid.Grid
	walls []grid.Coord
}

func newBoard(graph *grid.Grid) board {
	var walls []grid.Coord
	graph.Each(func(c grid.Coord, marker rune) {
		if marker != grid.Start && !graph.Passable(c) {
			walls = append(walls, c)
		}
	})
	return board{graph: graph, walls: walls}
}

// New prepares a server for graph. The grid is only read.
func New(
	ctx context.Context,
	addr string,
	graph *grid.Grid,
	interval time.Duration,
	logger *log.Logger,
	options ...astar.Option,
) (*Server, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("publish interval %v must be positive", interval)
	}
	stepper, err := astar.NewStepper(ctx, graph, options...)
	if err != nil {
		return nil, err
	}

	return &Server{
		rootCtx:  ctx,
		addr:     addr,
		board:    newBoard(graph),
		interval: interval,
		options:  options,
		logger:   logger,
		stepper:  stepper,
	}, nil
}

// Handler returns the routes.
func (server *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/", server.serveIndex).Methods(http.MethodGet)
	router.HandleFunc("/next", server.serveNext).Methods(http.MethodGet)
	router.HandleFunc("/reset", server.serveReset).Methods(http.MethodPost)
	router.HandleFunc("/init", server.serveInit).Methods(http.MethodPost)
	router.HandleFunc("/ws", server.serveWebsocket)
	return router
}

// Serve listens until the root context is cancelled.
func (server *Server) Serve() error {
	ln, err := net.Listen("tcp", server.addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	srv := &http.Server{Handler: server.Handler()}
	go func() {
		<-server.rootCtx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	server.logger.Printf("visualiser: http://%s", ln.Addr())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func (server *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (server *Server) serveNext(w http.ResponseWriter, r *http.Request) {
	server.mu.Lock()
	st, err := server.stepper.Step()
	b := server.board
	server.mu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(b.convert(st))
}

func (server *Server) serveReset(w http.ResponseWriter, r *http.Request) {
	server.mu.Lock()
	graph := server.board.graph
	server.mu.Unlock()
	server.restart(w, graph)
}

// serveInit replaces the map with a generated one. Query parameters rows, cols,
// clusters, steps, density and seed override the defaults; bad values are ignored.
func (server *Server) serveInit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := grid.DefaultGenerateOptions()
	if v, err := strconv.Atoi(q.Get("rows")); err == nil && v > 1 {
		opts.Rows = v
	}
	if v, err := strconv.Atoi(q.Get("cols")); err == nil && v > 1 {
		opts.Cols = v
	}
	if v, err := strconv.Atoi(q.Get("clusters")); err == nil && v >= 0 {
		opts.Clusters = v
	}
	if v, err := strconv.Atoi(q.Get("steps")); err == nil && v >= 0 {
		opts.Steps = v
	}
	if v, err := strconv.ParseFloat(q.Get("density"), 64); err == nil && v >= 0 && v <= 1 {
		opts.Density = v
	}
	seed := time.Now().UnixNano()
	if v, err := strconv.ParseInt(q.Get("seed"), 10, 64); err == nil {
		seed = v
	}

	graph, err := grid.Generate(rand.New(rand.NewSource(seed)), opts)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	server.restart(w, graph)
}

func (server *Server) restart(w http.ResponseWriter, graph *grid.Grid) {
	stepper, err := astar.NewStepper(server.rootCtx, graph, server.options...)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	server.mu.Lock()
	if server.board.graph != graph {
		server.board = newBoard(graph)
	}
	server.stepper = stepper
	server.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "rows": graph.Rows(), "cols": graph.MaxWidth()})
}

// serveWebsocket streams a private search to the client.
func (server *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	server.mu.Lock()
	b := server.board
	server.mu.Unlock()

	stepper, err := astar.NewStepper(r.Context(), b.graph, server.options...)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		server.logger.Println("upgrade:", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		defer cancel()
		return server.readMessages(groupCtx, ws)
	})
	group.Go(func() error {
		defer ws.Close()
		return server.publish(groupCtx, ws, b, stepper)
	})
	if err := group.Wait(); err != nil {
		server.logger.Println("websocket:", err)
	}
}

// readMessages drains the client so close and pong frames are processed.
// Errors from websocket reads are permanent.
func (server *Server) readMessages(ctx context.Context, ws *websocket.Conn) error {
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			if ctx.Err() != nil || !isUnexpected(err) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
	}
}

func (server *Server) publish(ctx context.Context, ws *websocket.Conn, b board, stepper *astar.Stepper) error {
	ticker := channerics.NewTicker(ctx.Done(), server.interval)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker:
			st, err := stepper.Step()
			if err != nil {
				return err
			}
			if err = ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return fmt.Errorf("failed to set deadline: %w", err)
			}
			if err = ws.WriteJSON(b.convert(st)); err != nil {
				if isUnexpected(err) {
					return fmt.Errorf("publish failed: %w", err)
				}
				return nil
			}
			if st.Done {
				server.closeWebsocket(ctx, ws)
				return nil
			}
		}
	}
}

// closeWebsocket sends a normal close and waits for the peer's reply, which ends ctx
// through the reader, or for the grace period.
func (server *Server) closeWebsocket(ctx context.Context, ws *websocket.Conn) {
	_ = ws.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))

	grace := time.NewTimer(closeGracePeriod)
	defer grace.Stop()
	select {
	case <-ctx.Done():
	case <-grace.C:
	}
}

func (b board) convert(st astar.StepSnapshot) snapshot {
	s := snapshot{
		Step:        st.StepIndex,
		Rows:        b.graph.Rows(),
		Cols:        b.graph.MaxWidth(),
		Walls:       b.walls,
		Open:        setToList(st.Open),
		Closed:      setToList(st.Closed),
		Start:       b.graph.Start,
		Goal:        b.graph.Destination,
		Done:        st.Done,
		Found:       st.Found,
		Path:        st.Path,
		Cost:        st.TotalCost,
		Relaxations: st.Relaxations,
	}
	if st.Expanded {
		current := st.Current
		s.Current = &current
	}
	return s
}

// setToList flattens a coordinate set in row-major order.
func setToList(m map[grid.Coord]bool) []grid.Coord {
	res := make([]grid.Coord, 0, len(m))
	for p, ok := range m {
		if ok {
			res = append(res, p)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Row != res[j].Row {
			return res[i].Row < res[j].Row
		}
		return res[i].Col < res[j].Col
	})
	return res
}

func isUnexpected(err error) bool {
	return err != nil && websocket.IsUnexpectedCloseError(
		err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	)
}
