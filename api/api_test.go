package api

import (
	"encoding/json"
	"image/png"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/hoshinonyaruko/cobrinha/engine"
	"github.com/hoshinonyaruko/cobrinha/input"
	"github.com/hoshinonyaruko/cobrinha/memimg"
	"github.com/hoshinonyaruko/cobrinha/render"
	"github.com/hoshinonyaruko/cobrinha/snake"
	"github.com/hoshinonyaruko/cobrinha/structs"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	engine *engine.Engine
	frames *memimg.Frames
	static string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	renderer, err := render.NewRenderer(10, render.DefaultPalette)
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	frames := memimg.NewFrames()
	session := snake.NewSession(structs.Grid{Cols: 10, Rows: 10}, snake.WithRand(rand.New(rand.NewSource(3))))
	eng := engine.New(session, engine.Config{Speed: 1, MaxSpeed: 20}, NewDisplay(renderer, frames, nil, t.TempDir()))
	t.Cleanup(eng.Close)
	eng.Reset()

	static := t.TempDir()
	router := NewRouter(Server{
		Game:      eng,
		Input:     input.NewAdapter(eng),
		Frames:    frames,
		StaticDir: static,
	})
	return &testServer{router: router, engine: eng, frames: frames, static: static}
}

func (s *testServer) do(method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	s.router.ServeHTTP(w, req)
	return w
}

func decodeSnapshot(t *testing.T, w *httptest.ResponseRecorder) structs.Snapshot {
	t.Helper()
	var snap structs.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("invalid snapshot %s: %v", w.Body.String(), err)
	}
	return snap
}

func TestStartPauseReset(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/start")
	if w.Code != http.StatusOK || !decodeSnapshot(t, w).Running {
		t.Fatalf("POST /start = %d %s", w.Code, w.Body.String())
	}

	w = s.do(http.MethodPost, "/pause")
	if decodeSnapshot(t, w).Running {
		t.Error("POST /pause should pause a running game")
	}
	w = s.do(http.MethodPost, "/pause")
	if !decodeSnapshot(t, w).Running {
		t.Error("POST /pause should resume a paused game")
	}

	s.engine.Tick()
	w = s.do(http.MethodPost, "/reset")
	snap := decodeSnapshot(t, w)
	if snap.Running {
		t.Error("POST /reset should leave the game paused")
	}
	if len(snap.Snake) != 1 || snap.Snake[0] != (structs.Cell{X: 5, Y: 5}) {
		t.Errorf("snake after reset = %v", snap.Snake)
	}
}

func TestSpeedHandler(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		query string
		code  int
		speed int
	}{
		{"value=12", http.StatusOK, 12},
		{"value=500", http.StatusOK, 20},
		{"value=0", http.StatusOK, 1},
		{"value=fast", http.StatusBadRequest, 0},
		{"", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		w := s.do(http.MethodPost, "/speed?"+tt.query)
		if w.Code != tt.code {
			t.Errorf("POST /speed?%s = %d, want %d", tt.query, w.Code, tt.code)
			continue
		}
		if tt.code != http.StatusOK {
			continue
		}
		var body struct {
			Speed int `json:"speed"`
		}
		json.Unmarshal(w.Body.Bytes(), &body)
		if body.Speed != tt.speed {
			t.Errorf("POST /speed?%s speed = %d, want %d", tt.query, body.Speed, tt.speed)
		}
	}
}

func TestKeyHandler(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/key?key=ArrowLeft")
	var ev input.Event
	json.Unmarshal(w.Body.Bytes(), &ev)
	if w.Code != http.StatusOK || ev.Accepted {
		t.Errorf("reverse key = %d %+v, want rejected", w.Code, ev)
	}

	w = s.do(http.MethodPost, "/key?key=ArrowUp")
	json.Unmarshal(w.Body.Bytes(), &ev)
	if !ev.Accepted {
		t.Errorf("ArrowUp = %+v, want accepted", ev)
	}
	s.engine.Tick()
	if d := s.engine.Snapshot().Direction; d != structs.Up {
		t.Errorf("direction after tick = %v, want up", d)
	}

	if w := s.do(http.MethodPost, "/key"); w.Code != http.StatusBadRequest {
		t.Errorf("POST /key without key = %d, want 400", w.Code)
	}

	// 空格切换运行状态
	s.do(http.MethodPost, "/key?key=%20")
	if !s.engine.Running() {
		t.Error("space key should start the game")
	}
}

func TestSwipeHandlers(t *testing.T) {
	s := newTestServer(t)

	if w := s.do(http.MethodPost, "/touch-start?x=10&y=10"); w.Code != http.StatusOK {
		t.Fatalf("touch-start = %d", w.Code)
	}
	w := s.do(http.MethodPost, "/touch-end?x=12&y=80")
	var ev input.Event
	json.Unmarshal(w.Body.Bytes(), &ev)
	if !ev.Accepted || ev.Direction == nil || *ev.Direction != structs.Down {
		t.Errorf("swipe down = %+v", ev)
	}

	if w := s.do(http.MethodPost, "/touch-start?x=abc&y=1"); w.Code != http.StatusBadRequest {
		t.Errorf("touch-start with bad x = %d, want 400", w.Code)
	}
}

func TestStateAndFrames(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/state")
	snap := decodeSnapshot(t, w)
	if snap.Grid.Cols != 10 || snap.Food == nil {
		t.Errorf("state = %+v", snap)
	}

	w = s.do(http.MethodGet, "/frame.png")
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("GET /frame.png = %d %s", w.Code, w.Header().Get("Content-Type"))
	}
	img, err := png.Decode(w.Body)
	if err != nil {
		t.Fatalf("frame is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 100 {
		t.Errorf("frame width = %d, want 100", img.Bounds().Dx())
	}

	w = s.do(http.MethodGet, "/thumbnail?width=40")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /thumbnail = %d", w.Code)
	}
	thumb, err := png.Decode(w.Body)
	if err != nil || thumb.Bounds().Dx() != 40 {
		t.Errorf("thumbnail decode err=%v", err)
	}

	if w := s.do(http.MethodGet, "/thumbnail?width=-1"); w.Code != http.StatusBadRequest {
		t.Errorf("GET /thumbnail?width=-1 = %d, want 400", w.Code)
	}
	if w := s.do(http.MethodGet, "/frame.png?name="+memimg.GameOver); w.Code != http.StatusNotFound {
		t.Errorf("game over frame before game over = %d, want 404", w.Code)
	}
}

func TestRenderMapHandler(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/render-map")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /render-map = %d %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "/static/"+frameFileName) {
		t.Errorf("image_url missing: %s", w.Body.String())
	}
	if _, err := os.Stat(filepath.Join(s.static, frameFileName)); err != nil {
		t.Errorf("frame not saved: %v", err)
	}

	w = s.do(http.MethodGet, "/static/"+frameFileName)
	if w.Code != http.StatusOK {
		t.Errorf("GET /static/%s = %d", frameFileName, w.Code)
	}
}
