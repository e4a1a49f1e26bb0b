// Package preview streams sampled frames of a compiled show to browser
// clients over websockets so a show can be eyeballed without fixtures.
package preview

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/bluewatersql/twinklr-sub004/internal/show"
	"github.com/bluewatersql/twinklr-sub004/internal/timeline"
)

// Frame is one sampled instant of the show: per-fixture channel values.
type Frame struct {
	FrameID  uint64                        `json:"frame_id"`
	TimeMS   int64                         `json:"time_ms"`
	Fixtures map[string]map[string]float64 `json:"fixtures"`
}

// State owns the compiled show and the connected clients.
type State struct {
	mu        sync.RWMutex
	show      *show.Show
	fps       int
	frameID   uint64
	startTime time.Time
	clients   map[*websocket.Conn]bool
}

// NewState wraps a compiled show for streaming.
func NewState(s *show.Show, fps int) *State {
	if fps <= 0 {
		fps = 30
	}
	return &State{
		show:      s,
		fps:       fps,
		startTime: time.Now(),
		clients:   map[*websocket.Conn]bool{},
	}
}

// Sample evaluates the show at absolute time tMS. Transition segments
// shadow step segments inside their overlap; gaps produce no fixture
// entries.
func (s *State) Sample(tMS int64) Frame {
	fixtures := map[string]map[string]float64{}
	covering := map[string]*timeline.Segment{}

	segs := s.show.Segments
	for i := range segs {
		seg := &segs[i]
		if seg.Target == "" || !seg.Covers(tMS) {
			continue
		}
		prev, ok := covering[seg.Target]
		// transitions shadow steps over the shared window
		if !ok || (prev.Kind != timeline.KindTransition && seg.Kind == timeline.KindTransition) {
			covering[seg.Target] = seg
		}
	}

	for target, seg := range covering {
		local := 0.0
		if d := seg.DurationMS(); d > 0 {
			local = float64(tMS-seg.StartMS) / float64(d)
		}
		values := map[string]float64{}
		for ch, v := range seg.Channels {
			values[ch] = v.Eval(local)
		}
		fixtures[target] = values
	}

	return Frame{TimeMS: tMS, Fixtures: fixtures}
}

// RunLoop samples and broadcasts frames at the configured fps until the
// context is cancelled. Playback loops over the show duration.
func (s *State) RunLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second / time.Duration(s.fps))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			elapsed := time.Since(s.startTime).Milliseconds()
			if d := s.show.DurationMS; d > 0 {
				elapsed = elapsed % d
			}
			f := s.Sample(elapsed)
			s.mu.Lock()
			s.frameID++
			f.FrameID = s.frameID
			s.mu.Unlock()
			s.broadcast(f)
		}
	}
}

func (s *State) broadcast(f Frame) {
	payload, err := json.Marshal(f)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			delete(s.clients, conn)
			conn.Close()
		}
	}
}

// HandleFramesWS upgrades the connection and registers it for frame
// broadcasts.
func (s *State) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()
	log.Info().Str("remote", conn.RemoteAddr().String()).Msg("preview client connected")

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// HandleHealth reports playback state as JSON.
func (s *State) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resp := map[string]any{
		"frame_id":    s.frameID,
		"uptime_s":    time.Since(s.startTime).Seconds(),
		"duration_ms": s.show.DurationMS,
		"segments":    len(s.show.Segments),
		"fps":         s.fps,
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// Mux returns the preview HTTP routes.
func (s *State) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/frames", s.HandleFramesWS)
	mux.HandleFunc("/health", s.HandleHealth)
	return mux
}
