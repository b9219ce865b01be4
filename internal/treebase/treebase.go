// Package treebase fetches study exports from the TreeBASE PhyloWS API,
// with an on-disk cache so repeated conversions of the same study do not
// hammer the service.
package treebase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
)

// httpClient performs requests; tests may replace it with a mock transport.
var httpClient = &http.Client{Timeout: 30 * time.Second}

// Cache structures
type cachedEntry struct {
	Document    string `json:"document"`
	RetrievedAt int64  `json:"retrieved_at"`
}

var (
	cacheMu       sync.RWMutex
	cache         map[string]cachedEntry
	cacheLoaded   bool
	cacheFilePath string
	cacheEnabled  = true
)

// cacheTTLSecs overrides the TTL when non-negative. The CLI sets it from
// configuration through SetCacheTTLSeconds.
var cacheTTLSecs int64 = -1

// cache TTL in seconds (default 7 days)
func cacheTTL() int64 {
	if cacheTTLSecs >= 0 {
		return cacheTTLSecs
	}
	if s := os.Getenv("TREEBASE_CACHE_TTL_SECONDS"); s != "" {
		if v, err := time.ParseDuration(s + "s"); err == nil {
			return int64(v.Seconds())
		}
	}
	return int64(7 * 24 * 3600)
}

// SetCacheTTLSeconds overrides the cache TTL. Zero expires everything
// immediately; a negative value restores the default behavior.
func SetCacheTTLSeconds(secs int64) {
	cacheTTLSecs = secs
}

// SetCacheFilePath overrides where the cache is stored on disk.
func SetCacheFilePath(path string) {
	cacheMu.Lock()
	cacheFilePath = path
	cache = nil
	cacheLoaded = false
	cacheMu.Unlock()
}

// SetCacheEnabled turns the cache off entirely, for callers that need a
// fresh copy regardless of age.
func SetCacheEnabled(enabled bool) {
	cacheEnabled = enabled
}

// FlushCache drops the in-memory cache and removes the cache file.
func FlushCache() error {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	cache = nil
	cacheLoaded = false
	err := os.Remove(defaultCachePath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func defaultCachePath() string {
	if cacheFilePath != "" {
		return cacheFilePath
	}
	if dir, err := os.UserCacheDir(); err == nil {
		p := filepath.Join(dir, "nexus2fasta")
		_ = os.MkdirAll(p, 0o755)
		return filepath.Join(p, "treebase_cache.json")
	}
	return filepath.Join(os.TempDir(), "nexus2fasta_treebase_cache.json")
}

func loadCache() {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if cacheLoaded {
		return
	}
	path := defaultCachePath()
	cache = make(map[string]cachedEntry)
	data, err := os.ReadFile(path)
	if err != nil {
		cacheLoaded = true
		return
	}
	_ = json.Unmarshal(data, &cache)
	cacheLoaded = true
}

func saveCache() {
	cacheMu.RLock()
	defer cacheMu.RUnlock()
	path := defaultCachePath()
	b, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(path, b, 0o644)
}

func getCached(id string) (string, bool) {
	if !cacheEnabled {
		return "", false
	}
	loadCache()
	cacheMu.RLock()
	defer cacheMu.RUnlock()
	e, ok := cache[id]
	if !ok {
		return "", false
	}
	ttl := cacheTTL()
	if ttl > 0 && time.Now().Unix()-e.RetrievedAt > ttl {
		return "", false
	}
	return e.Document, true
}

func setCached(id, doc string) {
	if !cacheEnabled || id == "" || doc == "" {
		return
	}
	loadCache()
	cacheMu.Lock()
	cache[id] = cachedEntry{Document: doc, RetrievedAt: time.Now().Unix()}
	cacheMu.Unlock()
	saveCache()
}

// NormalizeStudyID canonicalizes the study identifier forms TreeBASE users
// paste: "1925", "S1925", "s1925" and "TB2:S1925" all become "S1925".
func NormalizeStudyID(id string) (string, error) {
	s := strings.TrimSpace(id)
	if p := strings.ToUpper(s); strings.HasPrefix(p, "TB2:") {
		s = s[len("TB2:"):]
	}
	if s != "" && (s[0] == 'S' || s[0] == 's') {
		s = s[1:]
	}
	if s == "" {
		return "", fmt.Errorf("invalid study ID %q", id)
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return "", fmt.Errorf("invalid study ID %q", id)
		}
	}
	return "S" + s, nil
}

// FetchStudy downloads the NEXUS export of a TreeBASE study. The id may be
// in any form NormalizeStudyID accepts. Cached documents are served without
// a network round trip until they expire.
func FetchStudy(ctx context.Context, id string) (string, error) {
	sid, err := NormalizeStudyID(id)
	if err != nil {
		return "", err
	}

	if v, ok := getCached(sid); ok {
		return v, nil
	}

	url := fmt.Sprintf("https://treebase.org/treebase-web/phylows/study/TB2:%s?format=nexus", sid)

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return "", err
		}
		req.Header.Set("User-Agent", "nexus2fasta/1.0")
		resp, err := httpClient.Do(req)
		if err != nil {
			lastErr = err
			if serr := sleepCtx(ctx, time.Duration(attempt*300)*time.Millisecond); serr != nil {
				return "", serr
			}
			continue
		}
		if resp.StatusCode == 200 {
			data, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return "", err
			}
			doc := string(data)
			// TreeBASE answers some bad IDs with an HTML error page and
			// status 200; never cache or return those.
			if !strings.HasPrefix(strings.TrimSpace(doc), "#NEXUS") {
				return "", fmt.Errorf("treebase returned a non-NEXUS document for study %s", sid)
			}
			setCached(sid, doc)
			return doc, nil
		}
		if resp.StatusCode == 429 || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("treebase returned status %d", resp.StatusCode)
			delay := retryDelay(resp, attempt)
			resp.Body.Close()
			if serr := sleepCtx(ctx, delay); serr != nil {
				return "", serr
			}
			continue
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return "", fmt.Errorf("treebase returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if lastErr != nil {
		return "", fmt.Errorf("fetching study %s: %w", sid, lastErr)
	}
	return "", fmt.Errorf("fetching study %s failed", sid)
}

// retryDelay honors a Retry-After header when the server sends one,
// otherwise backs off a little harder on each attempt.
func retryDelay(resp *http.Response, attempt int) time.Duration {
	if s := resp.Header.Get("Retry-After"); s != "" {
		if secs, err := strconv.Atoi(s); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return time.Duration(attempt*500) * time.Millisecond
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
