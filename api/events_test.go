package api_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listerineh/payplay-app/api"
)

// openStream connects to a room's event stream over a real HTTP server
// (httptest.NewRecorder cannot serve a long-lived flushing response).
func openStream(t *testing.T, f *fixture, roomID, actor string) (*http.Response, context.CancelFunc) {
	t.Helper()

	srv := httptest.NewServer(f.router)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/rooms/"+roomID+"/events", nil)
	require.NoError(t, err)
	if actor != "" {
		req.Header.Set("X-User-Id", actor)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp, cancel
}

// readEventNames scans SSE frames until every wanted event name has been
// seen at least once, or the stream ends (the request context deadline
// closes it). Returns what was seen either way.
func readEventNames(body *http.Response, want ...string) map[string]bool {
	missing := make(map[string]bool, len(want))
	for _, name := range want {
		missing[name] = true
	}

	seen := make(map[string]bool)
	scanner := bufio.NewScanner(body.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if name, ok := strings.CutPrefix(line, "event: "); ok {
			seen[name] = true
			delete(missing, name)
		}
		if len(missing) == 0 {
			break
		}
	}
	return seen
}

func TestStreamEvents_ChangeEventAfterMutation(t *testing.T) {
	f := newFixture(t)
	created := f.createRoom(t)

	resp, cancel := openStream(t, f, created.ID, "u-ben")
	defer cancel()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))

	// The subscription exists before the response headers are sent, so a
	// mutation performed after connecting must produce a change frame.
	_, err := f.service.AddComment(context.Background(), created.ID, "u-ben", "count me in")
	require.NoError(t, err)

	seen := readEventNames(resp, "change")
	assert.True(t, seen["change"], "expected a change event after the mutation, saw %v", seen)
}

func TestStreamEvents_PeriodicTicks(t *testing.T) {
	f := newFixture(t, api.WithTickInterval(20*time.Millisecond))
	created := f.createRoom(t)

	resp, cancel := openStream(t, f, created.ID, "u-ana")
	defer cancel()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Ticks arrive without any mutation, carrying an RFC3339 timestamp.
	scanner := bufio.NewScanner(resp.Body)
	var gotTick, gotData bool
	for scanner.Scan() && !(gotTick && gotData) {
		line := scanner.Text()
		if line == "event: tick" {
			gotTick = true
		}
		if stamp, ok := strings.CutPrefix(line, "data: "); ok {
			_, err := time.Parse(time.RFC3339, stamp)
			assert.NoError(t, err)
			gotData = true
		}
	}
	assert.True(t, gotTick, "expected at least one tick frame")
	assert.True(t, gotData, "expected a data line with a timestamp")
}

func TestStreamEvents_Rejections(t *testing.T) {
	f := newFixture(t)
	created := f.createRoom(t)

	// Missing identity header.
	rec := f.do(t, http.MethodGet, "/api/rooms/"+created.ID+"/events", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Unknown room fails before the stream opens.
	rec = f.do(t, http.MethodGet, "/api/rooms/nope/events", "u-ana", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
