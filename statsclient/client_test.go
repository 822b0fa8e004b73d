// File: /statsclient/client_test.go
package statsclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordHitPostsWireFormat(t *testing.T) {
	var received EndpointHit
	calls := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/hit", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		calls++
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := New(server.URL, "main-service")
	at := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	client.RecordHit(context.Background(), "/events/7", "10.0.0.1", at)

	require.Equal(t, 1, calls)
	assert.Equal(t, "main-service", received.App)
	assert.Equal(t, "/events/7", received.URI)
	assert.Equal(t, "10.0.0.1", received.IP)
	assert.Equal(t, at, time.Time(received.Timestamp))
}

func TestRecordHitSwallowsFailures(t *testing.T) {
	client := New("http://127.0.0.1:1", "main-service")

	// Must not panic or block the caller.
	client.RecordHit(context.Background(), "/events/7", "10.0.0.1", time.Now())
}

func TestViewsFetchesStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/stats", r.URL.Path)
		assert.Equal(t, []string{"/events/1", "/events/2"}, r.URL.Query()["uris"])
		assert.Equal(t, "false", r.URL.Query().Get("unique"))

		json.NewEncoder(w).Encode([]ViewStats{
			{App: "main-service", URI: "/events/1", Hits: 5},
		})
	}))
	defer server.Close()

	client := New(server.URL, "main-service")
	views, err := client.Views(context.Background(), time.Now().Add(-time.Hour), time.Now(),
		[]string{"/events/1", "/events/2"}, false)
	require.NoError(t, err)

	assert.Equal(t, int64(5), views["/events/1"])
	// URIs with no hits are simply absent.
	_, ok := views["/events/2"]
	assert.False(t, ok)
}

func TestViewsEmptyURIList(t *testing.T) {
	client := New("http://127.0.0.1:1", "main-service")

	views, err := client.Views(context.Background(), time.Now(), time.Now(), nil, false)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestViewsErrorOnBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(server.URL, "main-service")
	_, err := client.Views(context.Background(), time.Now(), time.Now(), []string{"/events/1"}, false)
	assert.Error(t, err)
}

func TestViewsServedFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	backendCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		backendCalls++
		json.NewEncoder(w).Encode([]ViewStats{
			{App: "main-service", URI: "/events/1", Hits: 7},
		})
	}))
	defer server.Close()

	client := New(server.URL, "main-service").WithCache(cache, time.Minute)
	uris := []string{"/events/1", "/events/2"}

	first, err := client.Views(context.Background(), time.Now().Add(-time.Hour), time.Now(), uris, false)
	require.NoError(t, err)
	require.Equal(t, 1, backendCalls)
	assert.Equal(t, int64(7), first["/events/1"])

	second, err := client.Views(context.Background(), time.Now().Add(-time.Hour), time.Now(), uris, false)
	require.NoError(t, err)
	assert.Equal(t, 1, backendCalls, "second lookup should come from cache")
	assert.Equal(t, int64(7), second["/events/1"])
	// Zero-hit URIs are cached as zero and stay answerable.
	assert.Equal(t, int64(0), second["/events/2"])
}

func TestViewsUniqueBypassesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	backendCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		backendCalls++
		json.NewEncoder(w).Encode([]ViewStats{})
	}))
	defer server.Close()

	client := New(server.URL, "main-service").WithCache(cache, time.Minute)

	for i := 0; i < 2; i++ {
		_, err := client.Views(context.Background(), time.Now().Add(-time.Hour), time.Now(),
			[]string{"/events/1"}, true)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, backendCalls)
}

func TestViewsPartialCacheMissGoesToBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("views:/events/1", "3"))
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	backendCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		backendCalls++
		json.NewEncoder(w).Encode([]ViewStats{
			{App: "main-service", URI: "/events/1", Hits: 3},
			{App: "main-service", URI: "/events/9", Hits: 1},
		})
	}))
	defer server.Close()

	client := New(server.URL, "main-service").WithCache(cache, time.Minute)

	views, err := client.Views(context.Background(), time.Now().Add(-time.Hour), time.Now(),
		[]string{"/events/1", "/events/9"}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, backendCalls, "a partially cached set must be refetched")
	assert.Equal(t, int64(1), views["/events/9"])
}

func TestDateTimeRoundTrip(t *testing.T) {
	at := DateTime(time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC))

	data, err := json.Marshal(at)
	require.NoError(t, err)
	assert.Equal(t, `"2025-06-01 12:30:00"`, string(data))

	var back DateTime
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, time.Time(at), time.Time(back))
}
