package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"tilecast/internal/core/domain"
	"tilecast/internal/core/ports"
)

type stubCallService struct {
	mu          sync.Mutex
	frames      map[domain.CallID]domain.Frame
	subscribers []func(domain.Frame)
}

func newStubCallService() *stubCallService {
	return &stubCallService{frames: make(map[domain.CallID]domain.Frame)}
}

func (s *stubCallService) Reconcile(context.Context, domain.CallID, ports.GridProps) domain.Frame {
	return domain.Frame{}
}

func (s *stubCallService) TogglePin(context.Context, domain.CallID, domain.UID) (domain.Frame, error) {
	return domain.Frame{}, nil
}

func (s *stubCallService) Frame(_ context.Context, callID domain.CallID) (domain.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	frame, ok := s.frames[callID]
	if !ok {
		return domain.Frame{}, domain.ErrCallNotFound
	}
	return frame, nil
}

func (s *stubCallService) SetRenderTarget(context.Context, domain.CallID, domain.UID, domain.RenderTarget) error {
	return nil
}

func (s *stubCallService) Subscribe(callID domain.CallID, fn func(domain.Frame)) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.frames[callID]; !ok {
		return nil, domain.ErrCallNotFound
	}
	s.subscribers = append(s.subscribers, fn)
	return func() {}, nil
}

func (s *stubCallService) End(context.Context, domain.CallID) error {
	return nil
}

func (s *stubCallService) emit(frame domain.Frame) {
	s.mu.Lock()
	fns := append([]func(domain.Frame){}, s.subscribers...)
	s.mu.Unlock()
	for _, fn := range fns {
		fn(frame)
	}
}

func startFeedServer(t *testing.T, calls ports.CallService) *httptest.Server {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	server := NewServer(calls, 50*time.Millisecond, time.Second, zaptest.NewLogger(t).Sugar())
	router.GET("/api/v1/calls/:id/feed", server.HandleFeed)

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func feedURL(ts *httptest.Server, callID string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/calls/" + callID + "/feed"
}

func TestFeed_SendsInitialFrameThenUpdates(t *testing.T) {
	calls := newStubCallService()
	calls.frames["call-1"] = domain.Frame{
		Tiles:  []domain.Tile{{UID: domain.LocalUID, IsLocal: true}},
		Layout: domain.LayoutSpec{Mode: domain.LayoutGrid, ColumnsNarrow: 1, ColumnsWide: 1},
	}
	ts := startFeedServer(t, calls)

	conn, _, err := websocket.DefaultDialer.Dial(feedURL(ts, "call-1"), nil)
	require.NoError(t, err)
	defer conn.Close()

	var initial domain.Frame
	require.NoError(t, conn.ReadJSON(&initial))
	require.Len(t, initial.Tiles, 1)
	assert.Equal(t, domain.LocalUID, initial.Tiles[0].UID)

	update := domain.Frame{
		Tiles: []domain.Tile{
			{UID: domain.LocalUID, IsLocal: true},
			{UID: "user-a", Pinnable: true},
		},
		Layout: domain.LayoutSpec{Mode: domain.LayoutGrid, ColumnsNarrow: 1, ColumnsWide: 2},
	}
	// The subscription is registered before the upgrade completes, but give
	// the handler a beat to enter its select loop.
	require.Eventually(t, func() bool {
		calls.mu.Lock()
		defer calls.mu.Unlock()
		return len(calls.subscribers) == 1
	}, time.Second, 10*time.Millisecond)
	calls.emit(update)

	var got domain.Frame
	conn.SetReadDeadline(time.Now().Add(time.Second))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, update, got)
}

func TestFeed_UnknownCallRejectsUpgrade(t *testing.T) {
	ts := startFeedServer(t, newStubCallService())

	_, resp, err := websocket.DefaultDialer.Dial(feedURL(ts, "ghost"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFeed_SlowClientSkipsFramesInsteadOfStalling(t *testing.T) {
	calls := newStubCallService()
	calls.frames["call-1"] = domain.Frame{
		Tiles: []domain.Tile{{UID: domain.LocalUID, IsLocal: true}},
	}
	ts := startFeedServer(t, calls)

	conn, _, err := websocket.DefaultDialer.Dial(feedURL(ts, "call-1"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		calls.mu.Lock()
		defer calls.mu.Unlock()
		return len(calls.subscribers) == 1
	}, time.Second, 10*time.Millisecond)

	// Flood far past the channel buffer without reading; emit must never
	// block the frame producer.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			calls.emit(domain.Frame{Overflow: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("emitting frames blocked on a slow client")
	}
}
