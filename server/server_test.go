package server

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	astar "github.com/pdrpinto/gridastar"
	"github.com/pdrpinto/gridastar/grid"
	. "github.com/smartystreets/goconvey/convey"
)

func newTestServer(t *testing.T) *httptest.Server {
	g, err := grid.Parse([]string{"S  ", "## ", "  E"})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	srv, err := New(ctx, "127.0.0.1:0", g, time.Millisecond, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getNext(ts *httptest.Server) (snapshot, int) {
	var snap snapshot
	res, err := http.Get(ts.URL + "/next")
	So(err, ShouldBeNil)
	defer res.Body.Close()
	if res.StatusCode == http.StatusOK {
		So(json.NewDecoder(res.Body).Decode(&snap), ShouldBeNil)
	}
	return snap, res.StatusCode
}

func post(ts *httptest.Server, path string) int {
	res, err := http.Post(ts.URL+path, "application/json", nil)
	So(err, ShouldBeNil)
	res.Body.Close()
	return res.StatusCode
}

func TestNew(t *testing.T) {
	Convey("When the publish interval is not positive", t, func() {
		g, err := grid.Parse([]string{"SE"})
		So(err, ShouldBeNil)
		_, err = New(context.Background(), ":0", g, 0, log.New(io.Discard, "", 0))
		So(err, ShouldNotBeNil)
	})

	Convey("When the grid is nil", t, func() {
		_, err := New(context.Background(), ":0", nil, time.Second, log.New(io.Discard, "", 0))
		So(err, ShouldEqual, astar.ErrNilGrid)
	})
}

func TestRoutes(t *testing.T) {
	Convey("Given a server over the detour map", t, func() {
		ts := newTestServer(t)

		Convey("The index page is served", func() {
			res, err := http.Get(ts.URL + "/")
			So(err, ShouldBeNil)
			defer res.Body.Close()
			body, err := io.ReadAll(res.Body)
			So(err, ShouldBeNil)
			So(res.StatusCode, ShouldEqual, http.StatusOK)
			So(string(body), ShouldContainSubstring, "<canvas")
		})

		Convey("Stepping /next reaches the destination", func() {
			first, code := getNext(ts)
			So(code, ShouldEqual, http.StatusOK)
			So(first.Step, ShouldEqual, 1)
			So(first.Rows, ShouldEqual, 3)
			So(first.Cols, ShouldEqual, 3)
			So(first.Walls, ShouldResemble, []grid.Coord{{Row: 1, Col: 0}, {Row: 1, Col: 1}})
			So(first.Current, ShouldResemble, &grid.Coord{Row: 0, Col: 0})
			So(first.Closed, ShouldResemble, []grid.Coord{{Row: 0, Col: 0}})
			So(first.Open, ShouldResemble, []grid.Coord{{Row: 0, Col: 1}})

			var last snapshot
			for i := 0; i < 20 && !last.Done; i++ {
				last, _ = getNext(ts)
			}
			So(last.Done, ShouldBeTrue)
			So(last.Found, ShouldBeTrue)
			So(last.Step, ShouldEqual, 5)
			So(last.Cost, ShouldEqual, 34)
			So(last.Path, ShouldResemble, []grid.Coord{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 1, Col: 2}, {Row: 2, Col: 2}})

			Convey("Reset starts the search over", func() {
				So(post(ts, "/reset"), ShouldEqual, http.StatusOK)
				again, _ := getNext(ts)
				So(again.Step, ShouldEqual, 1)
				So(again.Done, ShouldBeFalse)
			})
		})

		Convey("Init swaps in a generated map", func() {
			So(post(ts, "/init?rows=5&cols=7&density=0&seed=3"), ShouldEqual, http.StatusOK)
			snap, _ := getNext(ts)
			So(snap.Rows, ShouldEqual, 5)
			So(snap.Cols, ShouldEqual, 7)
			So(snap.Walls, ShouldBeEmpty)

			for i := 0; i < 100 && !snap.Done; i++ {
				snap, _ = getNext(ts)
			}
			So(snap.Found, ShouldBeTrue)
			So(snap.Path[0], ShouldResemble, snap.Start)
			So(snap.Path[len(snap.Path)-1], ShouldResemble, snap.Goal)
		})

		Convey("Wrong methods are refused", func() {
			So(post(ts, "/next"), ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestWebsocket(t *testing.T) {
	Convey("When a client connects to /ws", t, func() {
		ts := newTestServer(t)
		url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

		ws, _, err := websocket.DefaultDialer.Dial(url, nil)
		So(err, ShouldBeNil)
		defer ws.Close()

		var snaps []snapshot
		for {
			var snap snapshot
			if err := ws.ReadJSON(&snap); err != nil {
				break
			}
			snaps = append(snaps, snap)
			if snap.Done {
				break
			}
		}

		So(len(snaps), ShouldEqual, 5)
		for i, snap := range snaps {
			So(snap.Step, ShouldEqual, i+1)
		}
		last := snaps[len(snaps)-1]
		So(last.Found, ShouldBeTrue)
		So(last.Cost, ShouldEqual, 34)

		Convey("The stream does not advance the shared stepper", func() {
			snap, _ := getNext(ts)
			So(snap.Step, ShouldEqual, 1)
		})
	})
}

func TestCloseWebsocket(t *testing.T) {
	Convey("When the connection context ends the grace period is cut short", t, func() {
		srv := &Server{logger: log.New(io.Discard, "", 0)}
		elapsed := make(chan time.Duration, 1)
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ws, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				return
			}
			defer ws.Close()

			ctx, cancel := context.WithCancel(r.Context())
			cancel()
			began := time.Now()
			srv.closeWebsocket(ctx, ws)
			elapsed <- time.Since(began)
		}))
		defer ts.Close()

		ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
		So(err, ShouldBeNil)
		defer ws.Close()

		So(<-elapsed, ShouldBeLessThan, closeGracePeriod)

		_, _, err = ws.ReadMessage()
		So(websocket.IsCloseError(err, websocket.CloseNormalClosure), ShouldBeTrue)
	})
}
