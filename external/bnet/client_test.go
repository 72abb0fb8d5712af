package bnet

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/overmind/internal/domain/identity"
	"github.com/riskibarqy/overmind/internal/domain/ladder"
	"github.com/riskibarqy/overmind/internal/platform/logging"
	"github.com/riskibarqy/overmind/internal/platform/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

var serral = identity.Locator{Region: 2, Realm: 1, ProfileID: 315071}

const summaryPath = "/sc2/profile/2/1/315071/ladder/summary"

const summaryBody = `{
	"showCaseEntries": [
		{"ladderId": "290001", "team": {"localizedGameMode": "2v2"}},
		{"ladderId": "292783", "team": {"localizedGameMode": "1v1"}}
	]
}`

const ladderBody = `{
	"currentLadderMembership": {"ladderId": "292783", "localizedGameMode": "1v1 Grandmaster"},
	"ladderTeams": [
		{"teamMembers": [{"id": "1337", "realm": 1, "region": 2, "displayName": "Clem"}], "mmr": 7100},
		{
			"teamMembers": [{"id": "315071", "realm": 1, "region": 2, "displayName": "Serral", "clanTag": "ENCE", "favoriteRace": "zerg"}],
			"previousRank": 3, "points": 1290, "wins": 210, "losses": 40, "mmr": 7020, "joinTimestamp": 1700000000
		}
	]
}`

type fakeBattleNet struct {
	mu       sync.Mutex
	routes   map[string][]func(ctx *fasthttp.RequestCtx)
	tokens   atomic.Int32
	requests atomic.Int32
	issued   string
}

func newFakeBattleNet() *fakeBattleNet {
	return &fakeBattleNet{routes: map[string][]func(ctx *fasthttp.RequestCtx){}, issued: "token-1"}
}

// on queues handlers for path. The last handler repeats once the queue drains.
func (f *fakeBattleNet) on(path string, handlers ...func(ctx *fasthttp.RequestCtx)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[path] = append(f.routes[path], handlers...)
}

func (f *fakeBattleNet) handle(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	if path == "/oauth/token" {
		n := f.tokens.Add(1)
		ctx.SetContentType("application/json")
		if n == 1 {
			ctx.SetBodyString(`{"access_token":"token-1","token_type":"bearer","expires_in":86399}`)
			return
		}
		ctx.SetBodyString(`{"access_token":"token-2","token_type":"bearer","expires_in":86399}`)
		return
	}

	f.requests.Add(1)
	f.mu.Lock()
	queue := f.routes[path]
	if len(queue) == 0 {
		f.mu.Unlock()
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		return
	}
	handler := queue[0]
	if len(queue) > 1 {
		f.routes[path] = queue[1:]
	}
	f.mu.Unlock()
	handler(ctx)
}

func respond(status int, body string) func(ctx *fasthttp.RequestCtx) {
	return func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(status)
		ctx.SetContentType("application/json")
		ctx.SetBodyString(body)
	}
}

type recordedSleeps struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (r *recordedSleeps) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	r.waits = append(r.waits, d)
	r.mu.Unlock()
	return nil
}

func newTestClient(t *testing.T, server *fakeBattleNet, mutate func(cfg *ClientConfig)) (*Client, *recordedSleeps) {
	t.Helper()

	ln := fasthttputil.NewInmemoryListener()
	go func() {
		_ = fasthttp.Serve(ln, server.handle)
	}()
	t.Cleanup(func() { _ = ln.Close() })

	sleeps := &recordedSleeps{}
	cfg := ClientConfig{
		HTTPClient: &fasthttp.Client{
			Dial: func(string) (net.Conn, error) { return ln.Dial() },
		},
		BaseURL:        "http://bnet.test",
		TokenURL:       "http://bnet.test/oauth/token",
		ClientID:       "client",
		ClientSecret:   "s3cr3t",
		Timeout:        2 * time.Second,
		MaxRetries:     3,
		Logger:         logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: false},
		Sleep:          sleeps.sleep,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewClient(cfg), sleeps
}

func TestClient_Fetch_FindsShowcasedOneVOneRow(t *testing.T) {
	t.Parallel()

	server := newFakeBattleNet()
	server.on(summaryPath, respond(fasthttp.StatusOK, summaryBody))
	server.on(summaryPath[:len(summaryPath)-len("/summary")]+"/292783", respond(fasthttp.StatusOK, ladderBody))
	client, _ := newTestClient(t, server, nil)

	result := client.Fetch(context.Background(), serral)
	require.Equal(t, ladder.StatusFound, result.Status, "err=%v", result.Err)

	snapshot := result.Snapshot
	assert.Equal(t, serral, snapshot.Locator)
	assert.Equal(t, int64(292783), snapshot.LadderID)
	assert.Equal(t, "Serral", snapshot.DisplayName)
	assert.Equal(t, "ENCE", snapshot.ClanTag)
	assert.Equal(t, identity.RaceZerg, snapshot.FavoriteRace)
	assert.Equal(t, 2, snapshot.Rank)
	assert.Equal(t, 7020, snapshot.MMR)
	assert.Equal(t, 1290, snapshot.Points)
	assert.Equal(t, 3, snapshot.PreviousRank)
	assert.Equal(t, 210, snapshot.Wins)
	assert.Equal(t, 40, snapshot.Losses)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), snapshot.JoinedAt)
	assert.True(t, snapshot.Ranked)
	assert.Equal(t, int32(1), server.tokens.Load())
}

func TestClient_Fetch_NotFoundCases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		routes func(server *fakeBattleNet)
	}{
		{
			name:   "profile 404",
			routes: func(*fakeBattleNet) {},
		},
		{
			name: "no 1v1 showcase",
			routes: func(server *fakeBattleNet) {
				server.on(summaryPath, respond(fasthttp.StatusOK, `{"showCaseEntries":[{"ladderId":"1","team":{"localizedGameMode":"2v2"}}]}`))
			},
		},
		{
			name: "profile missing from ladder",
			routes: func(server *fakeBattleNet) {
				server.on(summaryPath, respond(fasthttp.StatusOK, summaryBody))
				server.on("/sc2/profile/2/1/315071/ladder/292783", respond(fasthttp.StatusOK, `{"ladderTeams":[]}`))
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := newFakeBattleNet()
			tc.routes(server)
			client, _ := newTestClient(t, server, nil)

			result := client.Fetch(context.Background(), serral)
			assert.Equal(t, ladder.StatusNotFound, result.Status)
			assert.False(t, result.Snapshot.Ranked)
			assert.Equal(t, serral, result.Snapshot.Locator)
		})
	}
}

func TestClient_Fetch_RetriesRateLimitWithRetryAfter(t *testing.T) {
	t.Parallel()

	server := newFakeBattleNet()
	server.on(summaryPath,
		func(ctx *fasthttp.RequestCtx) {
			ctx.Response.Header.Set(fasthttp.HeaderRetryAfter, "2")
			ctx.SetStatusCode(fasthttp.StatusTooManyRequests)
		},
		respond(fasthttp.StatusTooManyRequests, ""),
		respond(fasthttp.StatusOK, summaryBody),
	)
	server.on("/sc2/profile/2/1/315071/ladder/292783", respond(fasthttp.StatusOK, ladderBody))
	client, sleeps := newTestClient(t, server, nil)

	result := client.Fetch(context.Background(), serral)
	require.Equal(t, ladder.StatusFound, result.Status, "err=%v", result.Err)
	assert.Equal(t, []time.Duration{2 * time.Second, DefaultRateLimitWait}, sleeps.waits)
}

func TestClient_Fetch_TransientFailureAfterRetries(t *testing.T) {
	t.Parallel()

	server := newFakeBattleNet()
	server.on(summaryPath, respond(fasthttp.StatusBadGateway, "upstream unavailable"))
	client, sleeps := newTestClient(t, server, nil)

	result := client.Fetch(context.Background(), serral)
	require.Equal(t, ladder.StatusFailed, result.Status)
	assert.Equal(t, ladder.FailureTransient, result.Kind)
	assert.Equal(t, int32(4), server.requests.Load())
	assert.Len(t, sleeps.waits, 3)
	for _, wait := range sleeps.waits {
		assert.Equal(t, DefaultTransientWait, wait)
	}
}

func TestClient_Fetch_RefreshesTokenOnUnauthorized(t *testing.T) {
	t.Parallel()

	server := newFakeBattleNet()
	server.on(summaryPath,
		respond(fasthttp.StatusUnauthorized, ""),
		func(ctx *fasthttp.RequestCtx) {
			if string(ctx.Request.Header.Peek("Authorization")) != "Bearer token-2" {
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}
			ctx.SetContentType("application/json")
			ctx.SetBodyString(summaryBody)
		},
	)
	server.on("/sc2/profile/2/1/315071/ladder/292783", respond(fasthttp.StatusOK, ladderBody))
	client, _ := newTestClient(t, server, nil)

	result := client.Fetch(context.Background(), serral)
	require.Equal(t, ladder.StatusFound, result.Status, "err=%v", result.Err)
	assert.Equal(t, int32(2), server.tokens.Load())
}

func TestClient_Fetch_RepeatedUnauthorizedFails(t *testing.T) {
	t.Parallel()

	server := newFakeBattleNet()
	server.on(summaryPath, respond(fasthttp.StatusUnauthorized, ""))
	client, _ := newTestClient(t, server, nil)

	result := client.Fetch(context.Background(), serral)
	require.Equal(t, ladder.StatusFailed, result.Status)
	assert.Equal(t, ladder.FailureUnauthorized, result.Kind)
	assert.Equal(t, int32(2), server.requests.Load())
}

func TestClient_Fetch_DecodeFailure(t *testing.T) {
	t.Parallel()

	server := newFakeBattleNet()
	server.on(summaryPath, respond(fasthttp.StatusOK, `{"showCaseEntries": "nope"`))
	client, _ := newTestClient(t, server, nil)

	result := client.Fetch(context.Background(), serral)
	require.Equal(t, ladder.StatusFailed, result.Status)
	assert.Equal(t, ladder.FailureDecode, result.Kind)
	assert.Equal(t, int32(1), server.requests.Load())
}

func TestClient_Fetch_CircuitOpensAfterTransientFailures(t *testing.T) {
	t.Parallel()

	server := newFakeBattleNet()
	server.on(summaryPath, respond(fasthttp.StatusServiceUnavailable, ""))
	client, _ := newTestClient(t, server, func(cfg *ClientConfig) {
		cfg.MaxRetries = 0
		cfg.CircuitBreaker = resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		}
	})

	for i := 0; i < 2; i++ {
		result := client.Fetch(context.Background(), serral)
		require.Equal(t, ladder.FailureTransient, result.Kind)
	}

	result := client.Fetch(context.Background(), serral)
	require.Equal(t, ladder.StatusFailed, result.Status)
	assert.Equal(t, ladder.FailureCircuitOpen, result.Kind)
	assert.Equal(t, int32(2), server.requests.Load())
}

func TestClient_Fetch_Canceled(t *testing.T) {
	t.Parallel()

	server := newFakeBattleNet()
	server.on(summaryPath, respond(fasthttp.StatusOK, summaryBody))
	client, _ := newTestClient(t, server, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := client.Fetch(ctx, serral)
	require.Equal(t, ladder.StatusFailed, result.Status)
	assert.Equal(t, ladder.FailureCanceled, result.Kind)
	assert.Equal(t, int32(0), server.requests.Load())
}

func TestFlexInt_AcceptsStringsAndNumbers(t *testing.T) {
	t.Parallel()

	for raw, want := range map[string]int64{`"315071"`: 315071, `42`: 42, `null`: 0, `""`: 0, `7.0`: 7} {
		var v flexInt
		require.NoError(t, v.UnmarshalJSON([]byte(raw)), raw)
		assert.Equal(t, want, int64(v), raw)
	}

	var v flexInt
	assert.Error(t, v.UnmarshalJSON([]byte(`"abc"`)))
}
