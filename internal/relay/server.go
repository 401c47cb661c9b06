package relay

import (
	"bufio"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"parley/internal/domain"
)

// Server is an in-memory store-and-forward relay. It holds published pre-key
// bundles and per-recipient envelope queues, and notifies WebSocket
// subscribers when new mail arrives.
type Server struct {
	log      *logrus.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	bundles map[domain.Username]domain.PreKeyBundle
	queues  map[domain.Username][]domain.Envelope
	subs    map[domain.Username]map[*websocket.Conn]struct{}
}

// NewServer returns an empty relay. A nil logger discards output.
func NewServer(log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Server{
		log:     log,
		bundles: make(map[domain.Username]domain.PreKeyBundle),
		queues:  make(map[domain.Username][]domain.Envelope),
		subs:    make(map[domain.Username]map[*websocket.Conn]struct{}),
	}
}

// Handler returns the relay's HTTP routes.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/v1/bundles", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/v1/bundles/{username}", s.handleFetchBundle).Methods(http.MethodGet)
	r.HandleFunc("/v1/messages/{username}", s.handleSend).Methods(http.MethodPost)
	r.HandleFunc("/v1/messages/{username}", s.handleFetch).Methods(http.MethodGet)
	r.HandleFunc("/v1/messages/{username}/ack", s.handleAck).Methods(http.MethodPost)
	r.HandleFunc("/v1/ws/{username}", s.handleSubscribe).Methods(http.MethodGet)
	r.Use(s.accessLog)
	return r
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var b domain.PreKeyBundle
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if b.Username == "" {
		http.Error(w, "missing username", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.bundles[b.Username] = b
	s.mu.Unlock()
	s.log.WithField("username", b.Username).Info("registered bundle")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFetchBundle(w http.ResponseWriter, r *http.Request) {
	username := domain.Username(mux.Vars(r)["username"])
	s.mu.RLock()
	b, ok := s.bundles[username]
	s.mu.RUnlock()
	if !ok {
		http.Error(w, "unknown user", http.StatusNotFound)
		return
	}
	writeJSON(w, b)
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	to := domain.Username(mux.Vars(r)["username"])
	var env domain.Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	env.To = to
	if env.Timestamp == 0 {
		env.Timestamp = time.Now().Unix()
	}
	s.mu.Lock()
	s.queues[to] = append(s.queues[to], env)
	queued := len(s.queues[to])
	conns := make([]*websocket.Conn, 0, len(s.subs[to]))
	for conn := range s.subs[to] {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(domain.Notification{Queued: queued}); err != nil {
			s.dropSubscriber(to, conn)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	username := domain.Username(mux.Vars(r)["username"])
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "bad limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	s.mu.RLock()
	q := s.queues[username]
	if limit > 0 && limit < len(q) {
		q = q[:limit]
	}
	out := append([]domain.Envelope(nil), q...)
	s.mu.RUnlock()
	writeJSON(w, out)
}

func (s *Server) handleAck(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	username := domain.Username(mux.Vars(r)["username"])
	var body struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if body.Count < 0 {
		http.Error(w, "bad count", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	q := s.queues[username]
	if body.Count >= len(q) {
		delete(s.queues, username)
	} else {
		s.queues[username] = q[body.Count:]
	}
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	username := domain.Username(mux.Vars(r)["username"])
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	if s.subs[username] == nil {
		s.subs[username] = make(map[*websocket.Conn]struct{})
	}
	s.subs[username][conn] = struct{}{}
	queued := len(s.queues[username])
	s.mu.Unlock()

	s.log.WithField("username", username).Info("subscriber connected")

	// Tell a reconnecting client about mail that arrived while it was away.
	if queued > 0 {
		if err := conn.WriteJSON(domain.Notification{Queued: queued}); err != nil {
			s.dropSubscriber(username, conn)
			return
		}
	}

	// Reads only detect disconnects; subscribers never send payloads.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.dropSubscriber(username, conn)
				return
			}
		}
	}()
}

func (s *Server) dropSubscriber(username domain.Username, conn *websocket.Conn) {
	s.mu.Lock()
	if set, ok := s.subs[username]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(s.subs, username)
		}
	}
	s.mu.Unlock()
	_ = conn.Close()
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"remote":   r.RemoteAddr,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Debug("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack is required for the WebSocket upgrade to pass through the logger.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	return h.Hijack()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
