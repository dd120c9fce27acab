// Package testutil provides testing utilities for the wanted-missing client.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"sync"

	"github.com/arrfetch/sonarr-wanted/pkg/wanted"
)

// TestAPIKey is the key the mock server accepts by default.
const TestAPIKey = "test-api-key"

// MockSonarr is a configurable mock Sonarr server. It serves the
// wanted-missing endpoint paginated from a fixture episode set, sorted by
// series title ascending the way the real server does, and tracks which
// pages were requested.
type MockSonarr struct {
	server   *httptest.Server
	mu       sync.RWMutex
	apiKey   string
	episodes []wanted.Episode
	handlers map[string]http.HandlerFunc

	failStatus    int
	malformedBody string

	// Tracking
	RequestCount int
	PageRequests map[int]int
}

// NewMockSonarr creates a new mock server guarding its endpoints with
// TestAPIKey.
func NewMockSonarr() *MockSonarr {
	mock := &MockSonarr{
		apiKey:       TestAPIKey,
		handlers:     make(map[string]http.HandlerFunc),
		PageRequests: make(map[int]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.mu.Unlock()

		if r.Header.Get("X-Api-Key") != mock.apiKey {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "Unauthorized"}`))
			return
		}

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		switch r.URL.Path {
		case "/api/wanted/missing":
			mock.missingHandler(w, r)
		case "/api/system/status":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"version": "2.0.0.5344"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockSonarr) URL() string {
	return m.server.URL
}

// Host returns the mock server hostname without the port.
func (m *MockSonarr) Host() string {
	u, _ := url.Parse(m.server.URL)
	return u.Hostname()
}

// Port returns the mock server port.
func (m *MockSonarr) Port() int {
	u, _ := url.Parse(m.server.URL)
	port, _ := strconv.Atoi(u.Port())
	return port
}

// Close shuts down the mock server.
func (m *MockSonarr) Close() {
	m.server.Close()
}

// Reset clears tracking counters and failure injection.
func (m *MockSonarr) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.PageRequests = make(map[int]int)
	m.failStatus = 0
	m.malformedBody = ""
}

// SetEpisodes replaces the fixture episode set.
func (m *MockSonarr) SetEpisodes(episodes []wanted.Episode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.episodes = episodes
}

// FailWith makes the wanted-missing endpoint answer with the given HTTP
// status until Reset.
func (m *MockSonarr) FailWith(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failStatus = status
}

// RespondMalformed makes the wanted-missing endpoint answer 200 with the
// given raw body until Reset.
func (m *MockSonarr) RespondMalformed(body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.malformedBody = body
}

// SetHandler sets a custom handler for a specific path.
func (m *MockSonarr) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// GetRequestCount returns the total number of requests received.
func (m *MockSonarr) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetPageRequests returns how often the given listing page was requested.
func (m *MockSonarr) GetPageRequests(page int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.PageRequests[page]
}

// missingHandler pages through the fixture set per the request query.
func (m *MockSonarr) missingHandler(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if err != nil || pageSize < 1 {
		pageSize = 10
	}

	m.mu.Lock()
	m.PageRequests[page]++
	failStatus := m.failStatus
	malformed := m.malformedBody
	episodes := make([]wanted.Episode, len(m.episodes))
	copy(episodes, m.episodes)
	m.mu.Unlock()

	if failStatus > 0 {
		w.WriteHeader(failStatus)
		w.Write([]byte(`{"error": "injected failure"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if malformed != "" {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(malformed))
		return
	}

	sort.SliceStable(episodes, func(i, j int) bool {
		return episodes[i].Series.Title < episodes[j].Series.Title
	})

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(episodes) {
		start = len(episodes)
	}
	if end > len(episodes) {
		end = len(episodes)
	}

	body, _ := json.Marshal(map[string]any{
		"totalRecords": len(episodes),
		"records":      episodes[start:end],
	})
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// Episode builds a fixture episode.
func Episode(seriesID int64, title string, season, episode int) wanted.Episode {
	return wanted.Episode{
		SeriesID:      seriesID,
		SeasonNumber:  &season,
		EpisodeNumber: &episode,
		Series: wanted.Series{
			Title:  title,
			Status: "continuing",
		},
	}
}

// EndedEpisode builds a fixture episode whose series has ended.
func EndedEpisode(seriesID int64, title string, season, episode int) wanted.Episode {
	ep := Episode(seriesID, title, season, episode)
	ep.Series.Status = "ended"
	return ep
}
