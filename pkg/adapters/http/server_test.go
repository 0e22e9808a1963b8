package http

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/stepviz"
	"github.com/aretw0/stepviz/pkg/domain"
	"github.com/aretw0/stepviz/pkg/observability"
	"github.com/aretw0/stepviz/pkg/player"
	"github.com/aretw0/stepviz/pkg/session"
)

func newTestHandler(t *testing.T, delay time.Duration) http.Handler {
	t.Helper()
	metrics := observability.NewMetrics()
	eng := stepviz.New(
		stepviz.WithDelay(delay),
		stepviz.WithBasePeriod(time.Hour),
		stepviz.WithLifecycleHooks(metrics.Hooks()),
	)
	surfaces := session.NewManager(session.WithFactory(eng.SurfaceFactory()))
	t.Cleanup(func() { _ = surfaces.Close(context.Background()) })
	return NewServer(eng, surfaces, WithMetrics(metrics.Handler())).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeFrame(t *testing.T, w *httptest.ResponseRecorder) player.Frame {
	t.Helper()
	var f player.Frame
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &f), w.Body.String())
	return f
}

func TestServer_Health(t *testing.T) {
	h := newTestHandler(t, 0)
	w := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/algorithms", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"queens"`)
}

func TestServer_LoadSequenceAndFrame(t *testing.T) {
	h := newTestHandler(t, 0)

	w := do(t, h, http.MethodPost, "/surfaces/a/sequence", `{"algorithm":"queens","size":"4"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	f := decodeFrame(t, w)
	assert.Equal(t, player.StateReady, f.State)
	assert.Equal(t, 0, f.Index)
	assert.Greater(t, f.Length, 1)
	require.NotNil(t, f.Step)

	w = do(t, h, http.MethodGet, "/surfaces/a/frame", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, f, decodeFrame(t, w))

	w = do(t, h, http.MethodGet, "/surfaces/", "")
	assert.JSONEq(t, `{"surfaces":["a"]}`, w.Body.String())
}

func TestServer_LoadSequenceRejectsBadParams(t *testing.T) {
	h := newTestHandler(t, 0)

	w := do(t, h, http.MethodPost, "/surfaces/a/sequence", `{"algorithm":"queens","bogus":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/surfaces/a/sequence", `{"algorithm":"tsp"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPost, "/surfaces/a/sequence", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_Commands(t *testing.T) {
	h := newTestHandler(t, 0)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/surfaces/a/sequence", `{"algorithm":"queens","size":4}`).Code)

	f := decodeFrame(t, do(t, h, http.MethodPost, "/surfaces/a/commands/forward", ""))
	assert.Equal(t, 1, f.Index)
	assert.Equal(t, player.StatePaused, f.State)

	f = decodeFrame(t, do(t, h, http.MethodPost, "/surfaces/a/commands/jump?index=100000", ""))
	assert.Equal(t, f.Length-1, f.Index)

	f = decodeFrame(t, do(t, h, http.MethodPost, "/surfaces/a/commands/backward", ""))
	assert.Equal(t, f.Length-2, f.Index)

	f = decodeFrame(t, do(t, h, http.MethodPost, "/surfaces/a/commands/speed?value=2.5", ""))
	assert.Equal(t, 2.5, f.Speed)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/surfaces/a/commands/speed?value=0", "").Code)

	f = decodeFrame(t, do(t, h, http.MethodPost, "/surfaces/a/commands/direction?value=backward", ""))
	assert.Equal(t, "backward", f.Direction)

	f = decodeFrame(t, do(t, h, http.MethodPost, "/surfaces/a/commands/play", ""))
	assert.Equal(t, player.StatePlaying, f.State)
	f = decodeFrame(t, do(t, h, http.MethodPost, "/surfaces/a/commands/pause", ""))
	assert.Equal(t, player.StatePaused, f.State)

	f = decodeFrame(t, do(t, h, http.MethodPost, "/surfaces/a/commands/resize?size=5", ""))
	assert.Equal(t, 5, f.Size)
	assert.Equal(t, player.StateReady, f.State)
	before := f

	w := do(t, h, http.MethodPost, "/surfaces/a/commands/resize?size=99", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, before, decodeFrame(t, do(t, h, http.MethodGet, "/surfaces/a/frame", "")))

	f = decodeFrame(t, do(t, h, http.MethodPost, "/surfaces/a/commands/rewind", ""))
	assert.Equal(t, 0, f.Index)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/surfaces/a/commands/dance", "").Code)

	f = decodeFrame(t, do(t, h, http.MethodPost, "/surfaces/a/commands/reset", ""))
	assert.Equal(t, player.StateIdle, f.State)
	assert.Equal(t, http.StatusConflict, do(t, h, http.MethodPost, "/surfaces/a/commands/play", "").Code)
}

func TestServer_CommandUnknownSurface(t *testing.T) {
	h := newTestHandler(t, 0)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/surfaces/nope/commands/play", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/surfaces/nope/frame", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/surfaces/nope", "").Code)
}

func TestServer_Tree(t *testing.T) {
	h := newTestHandler(t, 0)

	for _, k := range []string{"5", "3", "8"} {
		w := do(t, h, http.MethodPost, "/surfaces/t/tree", `{"op":"insert","arg":"`+k+`"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	var resp TreeResponse
	w := do(t, h, http.MethodPost, "/surfaces/t/tree", `{"op":"search","arg":"4"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []int{3, 5, 8}, resp.Inorder)

	last := decodeFrame(t, do(t, h, http.MethodPost, "/surfaces/t/commands/jump?index=1000", ""))
	require.NotNil(t, last.Step)
	assert.Equal(t, domain.KindNotFound, last.Step.Kind)

	w = do(t, h, http.MethodPost, "/surfaces/t/tree", `{"op":"delete","arg":"5"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []int{3, 8}, resp.Inorder)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/surfaces/t/tree", `{"op":"rotate","arg":"1"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/surfaces/t/tree", `{"op":"insert","arg":"x"}`).Code)
}

func TestServer_LiveCompletes(t *testing.T) {
	h := newTestHandler(t, 0)

	w := do(t, h, http.MethodPost, "/surfaces/l/live", `{"algorithm":"bubble-sort","values":[3,1,2]}`)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var f player.LiveFrame
	require.Eventually(t, func() bool {
		w := do(t, h, http.MethodGet, "/surfaces/l/live", "")
		f = player.LiveFrame{}
		return json.Unmarshal(w.Body.Bytes(), &f) == nil && !f.Running && f.Outcome != nil
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, domain.RunCompleted, f.Outcome.Status)
	assert.Equal(t, []int{1, 2, 3}, f.Outcome.Values)
}

func TestServer_LiveConflictAndStop(t *testing.T) {
	h := newTestHandler(t, time.Hour)

	require.Equal(t, http.StatusAccepted, do(t, h, http.MethodPost, "/surfaces/l/live", `{"algorithm":"quick","size":6}`).Code)
	assert.Equal(t, http.StatusConflict, do(t, h, http.MethodPost, "/surfaces/l/live", `{"algorithm":"heap","size":6}`).Code)

	w := do(t, h, http.MethodDelete, "/surfaces/l/live", "")
	require.Equal(t, http.StatusOK, w.Code)
	var out domain.RunOutcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, domain.RunCancelled, out.Status)

	assert.Equal(t, http.StatusConflict, do(t, h, http.MethodDelete, "/surfaces/l/live", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/surfaces/l/live", `{"algorithm":"binary","values":[3,1]}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/surfaces/l/live", `{"algorithm":"bogo"}`).Code)
}

func TestServer_Events(t *testing.T) {
	h := newTestHandler(t, 0)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/surfaces/e/sequence", `{"algorithm":"permutations","values":[1,2]}`).Code)

	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/surfaces/e/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := make(chan string, 16)
	go func() {
		defer close(events)
		sc := bufio.NewScanner(resp.Body)
		var event string
		for sc.Scan() {
			line := sc.Text()
			switch {
			case strings.HasPrefix(line, "event: "):
				event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: ") && event == "frame":
				events <- strings.TrimPrefix(line, "data: ")
			}
		}
	}()

	next := func() player.Frame {
		select {
		case data := <-events:
			var f player.Frame
			require.NoError(t, json.Unmarshal([]byte(data), &f))
			return f
		case <-time.After(2 * time.Second):
			t.Fatal("no frame event")
		}
		return player.Frame{}
	}

	assert.Equal(t, 0, next().Index)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/surfaces/e/commands/forward", "").Code)
	assert.Equal(t, 1, next().Index)
}

func TestServer_Metrics(t *testing.T) {
	h := newTestHandler(t, 0)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/surfaces/m/sequence", `{"algorithm":"queens","size":4}`).Code)

	w := do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "stepviz_sequences_total")
}

func TestServer_DeleteSurface(t *testing.T) {
	h := newTestHandler(t, 0)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/surfaces/d/sequence", `{"algorithm":"queens","size":4}`).Code)
	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/surfaces/d", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/surfaces/d/frame", "").Code)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{domain.ErrSurfaceNotFound, http.StatusNotFound},
		{domain.ErrInvalidParams, http.StatusBadRequest},
		{domain.ErrUnknownAlgorithm, http.StatusBadRequest},
		{domain.ErrAlreadyRunning, http.StatusConflict},
		{domain.ErrNoSequence, http.StatusConflict},
		{fmt.Errorf("stop: %w", domain.ErrNotRunning), http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, StatusFor(tc.err), tc.err.Error())
	}
}
