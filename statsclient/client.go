// File: /statsclient/client.go
package statsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const timestampLayout = "2006-01-02 15:04:05"

// DateTime marshals to the "yyyy-MM-dd HH:mm:ss" wire format the stats
// service expects.
type DateTime time.Time

func (d DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(d).Format(timestampLayout))
}

func (d *DateTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := time.Parse(timestampLayout, raw)
	if err != nil {
		return err
	}
	*d = DateTime(parsed)
	return nil
}

type EndpointHit struct {
	App       string   `json:"app"`
	URI       string   `json:"uri"`
	IP        string   `json:"ip"`
	Timestamp DateTime `json:"timestamp"`
}

type ViewStats struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}

// Client talks to the stats service. The optional Redis cache sits in front
// of the /stats call; hit recording always goes straight through.
type Client struct {
	baseURL  string
	appName  string
	http     *http.Client
	cache    *redis.Client
	cacheTTL time.Duration
}

func New(baseURL, appName string) *Client {
	return &Client{
		baseURL: baseURL,
		appName: appName,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// WithCache enables short-TTL view-count caching. A zero TTL leaves caching
// off.
func (c *Client) WithCache(cache *redis.Client, ttl time.Duration) *Client {
	if cache != nil && ttl > 0 {
		c.cache = cache
		c.cacheTTL = ttl
	}
	return c
}

// RecordHit is fire-and-forget: a failing collector must never fail the
// request being served, so errors are only logged.
func (c *Client) RecordHit(ctx context.Context, uri, ip string, at time.Time) {
	hit := EndpointHit{
		App:       c.appName,
		URI:       uri,
		IP:        ip,
		Timestamp: DateTime(at),
	}

	body, err := json.Marshal(hit)
	if err != nil {
		log.Printf("stats: failed to encode hit for %s: %v", uri, err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/hit", bytes.NewReader(body))
	if err != nil {
		log.Printf("stats: failed to build hit request for %s: %v", uri, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("stats: failed to record hit for %s: %v", uri, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		log.Printf("stats: hit for %s rejected with status %d", uri, resp.StatusCode)
	}
}

// Views returns aggregated hit counts per URI. URIs absent from the stats
// response are simply missing from the map; callers default them to zero.
func (c *Client) Views(ctx context.Context, start, end time.Time, uris []string, unique bool) (map[string]int64, error) {
	if len(uris) == 0 {
		return map[string]int64{}, nil
	}

	// Unique counts depend on the querying window in a way the flat per-URI
	// cache cannot represent, so only plain counts are cached.
	if c.cache != nil && !unique {
		if cached, ok := c.cachedViews(ctx, uris); ok {
			return cached, nil
		}
	}

	stats, err := c.fetchStats(ctx, start, end, uris, unique)
	if err != nil {
		return nil, err
	}

	views := make(map[string]int64, len(stats))
	for _, stat := range stats {
		views[stat.URI] = stat.Hits
	}

	if c.cache != nil && !unique {
		c.storeViews(ctx, uris, views)
	}

	return views, nil
}

func (c *Client) fetchStats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]ViewStats, error) {
	params := url.Values{}
	params.Set("start", start.Format(timestampLayout))
	params.Set("end", end.Format(timestampLayout))
	for _, uri := range uris {
		params.Add("uris", uri)
	}
	params.Set("unique", strconv.FormatBool(unique))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stats service returned status %d", resp.StatusCode)
	}

	var stats []ViewStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func cacheKey(uri string) string {
	return "views:" + uri
}

// cachedViews answers from Redis only when every URI is present, so a partial
// cache never hides fresher counts for the missing ones.
func (c *Client) cachedViews(ctx context.Context, uris []string) (map[string]int64, bool) {
	keys := make([]string, len(uris))
	for i, uri := range uris {
		keys[i] = cacheKey(uri)
	}

	values, err := c.cache.MGet(ctx, keys...).Result()
	if err != nil {
		log.Printf("stats: view cache read failed: %v", err)
		return nil, false
	}

	views := make(map[string]int64, len(uris))
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			return nil, false
		}
		hits, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, false
		}
		views[uris[i]] = hits
	}
	return views, true
}

func (c *Client) storeViews(ctx context.Context, uris []string, views map[string]int64) {
	for _, uri := range uris {
		// URIs with no recorded hits are cached as zero so the full set
		// stays answerable from cache.
		if err := c.cache.Set(ctx, cacheKey(uri), strconv.FormatInt(views[uri], 10), c.cacheTTL).Err(); err != nil {
			log.Printf("stats: view cache write failed for %s: %v", uri, err)
			return
		}
	}
}
