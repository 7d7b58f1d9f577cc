package sessions

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"reelscout/models"
)

var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrInvalidToken       = errors.New("invalid token")
	ErrStorageDirRequired = errors.New("storage directory not provided")
)

const (
	// DefaultSessionDuration is the default lifetime of a session.
	DefaultSessionDuration = 30 * 24 * time.Hour

	// PersistentSessionDuration is the lifetime of a "remember me" session.
	PersistentSessionDuration = 100 * 365 * 24 * time.Hour

	// TokenLength is the number of random bytes used for session tokens.
	TokenLength = 32

	// cleanupInterval is how often expired sessions are purged.
	cleanupInterval = time.Hour
)

// Service manages session tokens for authenticated accounts.
type Service struct {
	mu              sync.RWMutex
	path            string
	sessions        map[string]models.Session
	sessionDuration time.Duration
}

// NewService creates a new sessions service with persistence. storageDir is
// the directory where sessions.json will be stored; when empty, sessions
// live only in memory.
func NewService(storageDir string, sessionDuration time.Duration) (*Service, error) {
	if sessionDuration <= 0 {
		sessionDuration = DefaultSessionDuration
	}

	svc := &Service{
		sessions:        make(map[string]models.Session),
		sessionDuration: sessionDuration,
	}

	if strings.TrimSpace(storageDir) != "" {
		if err := os.MkdirAll(storageDir, 0o755); err != nil {
			return nil, fmt.Errorf("create sessions dir: %w", err)
		}
		svc.path = filepath.Join(storageDir, "sessions.json")

		if err := svc.load(); err != nil {
			return nil, err
		}
	}

	go svc.cleanupLoop()

	return svc, nil
}

// Create generates a new session for the given account.
func (s *Service) Create(accountID string, isAdmin bool, userAgent, ipAddress string) (models.Session, error) {
	return s.CreateWithDuration(accountID, isAdmin, userAgent, ipAddress, s.sessionDuration)
}

// CreatePersistent generates a new "remember me" session for the given account.
func (s *Service) CreatePersistent(accountID string, isAdmin bool, userAgent, ipAddress string) (models.Session, error) {
	return s.CreateWithDuration(accountID, isAdmin, userAgent, ipAddress, PersistentSessionDuration)
}

// CreateWithDuration generates a new session with a custom duration.
func (s *Service) CreateWithDuration(accountID string, isAdmin bool, userAgent, ipAddress string, duration time.Duration) (models.Session, error) {
	token, err := generateToken()
	if err != nil {
		return models.Session{}, err
	}

	now := time.Now().UTC()
	session := models.Session{
		Token:     token,
		AccountID: accountID,
		IsAdmin:   isAdmin,
		ExpiresAt: now.Add(duration),
		CreatedAt: now,
		UserAgent: userAgent,
		IPAddress: ipAddress,
	}

	s.mu.Lock()
	s.sessions[token] = session
	if err := s.saveLocked(); err != nil {
		delete(s.sessions, token)
		s.mu.Unlock()
		return models.Session{}, err
	}
	s.mu.Unlock()

	return session, nil
}

// Validate checks if a token is valid and returns the associated session.
func (s *Service) Validate(token string) (models.Session, error) {
	if token == "" {
		return models.Session{}, ErrInvalidToken
	}

	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return models.Session{}, ErrSessionNotFound
	}
	if session.IsExpired() {
		// Leave the expired entry for the cleanup loop to purge
		return models.Session{}, ErrSessionExpired
	}

	return session, nil
}

// Revoke invalidates a session token.
func (s *Service) Revoke(token string) error {
	if token == "" {
		return ErrInvalidToken
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[token]; !ok {
		return ErrSessionNotFound
	}

	delete(s.sessions, token)
	return s.saveLocked()
}

// RevokeAllForAccount invalidates every session belonging to an account,
// e.g. after a password change.
func (s *Service) RevokeAllForAccount(accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, session := range s.sessions {
		if session.AccountID == accountID {
			delete(s.sessions, token)
		}
	}
	return s.saveLocked()
}

// Count returns the number of live sessions. Used in tests.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// cleanupLoop periodically removes expired sessions.
func (s *Service) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for range ticker.C {
		s.mu.Lock()
		removed := 0
		for token, session := range s.sessions {
			if session.IsExpired() {
				delete(s.sessions, token)
				removed++
			}
		}
		if removed > 0 {
			_ = s.saveLocked()
		}
		s.mu.Unlock()
	}
}

func (s *Service) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open sessions file: %w", err)
	}
	defer file.Close()

	var stored []models.Session
	if err := json.NewDecoder(file).Decode(&stored); err != nil {
		return fmt.Errorf("decode sessions: %w", err)
	}

	s.sessions = make(map[string]models.Session, len(stored))
	for _, session := range stored {
		if session.Token == "" || session.IsExpired() {
			continue
		}
		s.sessions[session.Token] = session
	}

	return nil
}

func (s *Service) saveLocked() error {
	if s.path == "" {
		return nil
	}

	stored := make([]models.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		stored = append(stored, session)
	}

	tmp := s.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create sessions temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(stored); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode sessions: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close sessions temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace sessions file: %w", err)
	}

	return nil
}

func generateToken() (string, error) {
	buf := make([]byte, TokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
