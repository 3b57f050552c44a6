// Package session holds the per-conversation state of the app: the message
// transcript shown to the user, the interaction history ledger, and the
// running analytics counters. Sessions are in-memory only and die with the
// process.
package session

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"datachat-backend/internal/db"
	"datachat-backend/internal/schema"
)

const (
	// historyCap and historyKeep bound the interaction ledger: once an
	// insert would push the ledger past historyCap entries, only the most
	// recent historyKeep survive.
	historyCap  = 100
	historyKeep = 50
)

const welcomeText = "Hi! Connect a database and ask me anything about your data."

// Message is one entry of the conversation transcript. Assistant messages
// may carry the extracted SQL, its re-executed result, and a chart hint.
type Message struct {
	ID            string        `json:"id"`
	Role          string        `json:"role"` // "user" or "assistant"
	Content       string        `json:"content"`
	Timestamp     time.Time     `json:"timestamp"`
	SQLQuery      string        `json:"sql_query,omitempty"`
	Result        *db.ResultSet `json:"result,omitempty"`
	ExecutionTime float64       `json:"execution_time,omitempty"`
	IsError       bool          `json:"is_error,omitempty"`
	Chart         *schema.Chart `json:"chart,omitempty"`
}

// HistoryEntry is one completed interaction in the ledger, kept separately
// from the transcript so exports survive a transcript clear.
type HistoryEntry struct {
	Question      string    `json:"question"`
	Response      string    `json:"response"`
	SQLQuery      string    `json:"sql_query"`
	ExecutionTime float64   `json:"execution_time"`
	Timestamp     time.Time `json:"timestamp"`
}

// Analytics are the session's running counters. TotalResponseTime accumulates
// wall-clock seconds of every agent round trip, successful or not.
type Analytics struct {
	TotalQueries      int     `json:"total_queries"`
	SuccessfulQueries int     `json:"successful_queries"`
	TotalResponseTime float64 `json:"total_response_time"`
}

// SuccessRate is the percentage of successful interactions, 0 when nothing
// has been asked yet.
func (a Analytics) SuccessRate() float64 {
	if a.TotalQueries == 0 {
		return 0
	}
	return float64(a.SuccessfulQueries) / float64(a.TotalQueries) * 100
}

// AvgResponseTime is the mean agent round-trip time in seconds, 0 when
// nothing has been asked yet.
func (a Analytics) AvgResponseTime() float64 {
	if a.TotalQueries == 0 {
		return 0
	}
	return a.TotalResponseTime / float64(a.TotalQueries)
}

// Session is one user conversation: its database connection, transcript,
// ledger, and counters. One interaction runs at a time per session.
type Session struct {
	ID string

	mu        sync.Mutex
	database  *db.Database
	dbPath    string
	messages  []Message
	history   []HistoryEntry
	analytics Analytics
}

func newSession(id string) *Session {
	s := &Session{ID: id}
	s.messages = []Message{welcomeMessage()}
	return s
}

func welcomeMessage() Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      "assistant",
		Content:   welcomeText,
		Timestamp: time.Now(),
	}
}

// Lock serializes interactions on this session. Handlers hold it for the
// duration of one question-answer cycle.
func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// The methods below assume the caller holds the session lock.

// Database returns the session's connection, nil before the first connect.
func (s *Session) Database() *db.Database { return s.database }

// DBPath returns the path of the connected database, empty before connect.
func (s *Session) DBPath() string { return s.dbPath }

// SetDatabase swaps the session's connection, closing the previous one.
// It reports the path of the replaced connection so callers can invalidate
// agents bound to it.
func (s *Session) SetDatabase(database *db.Database) string {
	previous := s.dbPath
	if s.database != nil {
		s.database.Close()
	}
	s.database = database
	if database != nil {
		s.dbPath = database.Path()
	} else {
		s.dbPath = ""
	}
	return previous
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// AppendUserMessage records the user's question. A question identical to the
// immediately preceding user message is dropped, guarding against transport
// retries submitting the same turn twice.
func (s *Session) AppendUserMessage(content string) bool {
	if n := len(s.messages); n > 0 {
		last := s.messages[n-1]
		if last.Role == "user" && last.Content == content {
			return false
		}
	}
	s.messages = append(s.messages, Message{
		ID:        uuid.NewString(),
		Role:      "user",
		Content:   content,
		Timestamp: time.Now(),
	})
	return true
}

// AppendAssistantMessage records an assistant turn and returns it with its
// assigned ID and timestamp.
func (s *Session) AppendAssistantMessage(msg Message) Message {
	msg.ID = uuid.NewString()
	msg.Role = "assistant"
	msg.Timestamp = time.Now()
	s.messages = append(s.messages, msg)
	return msg
}

// ClearMessages resets the transcript to the welcome message. The history
// ledger and analytics are deliberately untouched.
func (s *Session) ClearMessages() {
	s.messages = []Message{welcomeMessage()}
}

// AppendHistory adds a completed interaction to the ledger, evicting down to
// the most recent entries when the ledger would exceed its cap.
func (s *Session) AppendHistory(entry HistoryEntry) {
	s.history = append(s.history, entry)
	if len(s.history) > historyCap {
		kept := make([]HistoryEntry, historyKeep)
		copy(kept, s.history[len(s.history)-historyKeep:])
		s.history = kept
	}
}

// History returns a copy of the interaction ledger.
func (s *Session) History() []HistoryEntry {
	out := make([]HistoryEntry, len(s.history))
	copy(out, s.history)
	return out
}

// RecordOutcome updates the analytics counters for one finished interaction.
// Failed interactions still count toward totals and response time.
func (s *Session) RecordOutcome(success bool, responseTime float64) {
	s.analytics.TotalQueries++
	if success {
		s.analytics.SuccessfulQueries++
	}
	s.analytics.TotalResponseTime += responseTime
}

// Analytics returns the current counters.
func (s *Session) Analytics() Analytics { return s.analytics }

// LatestResult returns the result set of the most recent assistant message
// that carries one, scanning the transcript backwards.
func (s *Session) LatestResult() (*db.ResultSet, bool) {
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Result != nil {
			return s.messages[i].Result, true
		}
	}
	return nil, false
}

// Manager owns all live sessions, keyed by ID.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Create mints a new session with a fresh ID.
func (m *Manager) Create() *Session {
	id := uuid.NewString()
	s := newSession(id)
	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return s
}

// Get looks up a session by ID.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// GetOrCreate returns the session with the given ID, creating a new one when
// the ID is empty or unknown.
func (m *Manager) GetOrCreate(id string) *Session {
	if strings.TrimSpace(id) != "" {
		if s, ok := m.Get(id); ok {
			return s
		}
	}
	return m.Create()
}

// Remove closes and drops a session.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.Lock()
		s.SetDatabase(nil)
		s.Unlock()
	}
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
