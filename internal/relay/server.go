package relay

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// maxItemBytes bounds a single signaling event; SDP blobs stay well under it.
const maxItemBytes = 64 * 1024

// Item is one mailbox entry: an opaque value under a server-assigned key.
type Item struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// Server keeps append-only mailboxes in memory and serves them over HTTP.
type Server struct {
	log     *zap.Logger
	metrics *serverMetrics

	mu        sync.RWMutex
	mailboxes map[string][]Item
}

// NewServer constructs a relay server, registering its metrics with reg
// (the default registerer when nil).
func NewServer(log *zap.Logger, reg prometheus.Registerer) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		log:       log,
		metrics:   newServerMetrics(reg),
		mailboxes: make(map[string][]Item),
	}
}

// Handler returns the HTTP mux for the relay and its metrics endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/mail/", s.handleMail)
	mux.HandleFunc("/rooms/", s.handleRoom)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// handleRoom is the admin surface: DELETE discards every mailbox in a room
// once a conversation space is finished with.
func (s *Server) handleRoom(w http.ResponseWriter, r *http.Request) {
	room := strings.TrimPrefix(r.URL.Path, "/rooms/")
	if room == "" || strings.Contains(room, "..") {
		http.Error(w, "bad room", http.StatusBadRequest)
		return
	}
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.DropRoom(room)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMail(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/mail/")
	if path == "" || strings.Contains(path, "..") {
		http.Error(w, "bad mailbox path", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodPost:
		s.handlePublish(w, r, path)
	case http.MethodGet:
		s.handleFetch(w, path)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request, path string) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxItemBytes+1))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(body) > maxItemBytes {
		http.Error(w, "item too large", http.StatusRequestEntityTooLarge)
		return
	}
	if !json.Valid(body) {
		http.Error(w, "item must be JSON", http.StatusBadRequest)
		return
	}

	item := Item{Key: uuid.NewString(), Value: body}
	s.mu.Lock()
	if _, ok := s.mailboxes[path]; !ok {
		s.metrics.mailboxes.Inc()
	}
	s.mailboxes[path] = append(s.mailboxes[path], item)
	s.mu.Unlock()

	s.metrics.published.Inc()
	s.log.Debug("published item", zap.String("path", path), zap.String("key", item.Key))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(struct {
		Key string `json:"key"`
	}{Key: item.Key})
}

func (s *Server) handleFetch(w http.ResponseWriter, path string) {
	s.mu.RLock()
	items := append([]Item(nil), s.mailboxes[path]...)
	s.mu.RUnlock()

	s.metrics.delivered.Add(float64(len(items)))

	w.Header().Set("Content-Type", "application/json")
	if items == nil {
		items = []Item{}
	}
	_ = json.NewEncoder(w).Encode(items)
}

// DropRoom discards every mailbox under the room prefix. Housekeeping only;
// clients never rely on it.
func (s *Server) DropRoom(room string) {
	prefix := room + "/"
	dropped := 0
	s.mu.Lock()
	for path := range s.mailboxes {
		if strings.HasPrefix(path, prefix) {
			delete(s.mailboxes, path)
			s.metrics.mailboxes.Dec()
			dropped++
		}
	}
	s.mu.Unlock()
	s.log.Info("dropped room", zap.String("room", room), zap.Int("mailboxes", dropped))
}
