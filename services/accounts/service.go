package accounts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-password/password"
	"golang.org/x/crypto/bcrypt"

	"reelscout/models"
)

var (
	ErrStorageDirRequired  = errors.New("storage directory not provided")
	ErrUsernameRequired    = errors.New("username is required")
	ErrPasswordRequired    = errors.New("password is required")
	ErrAccountNotFound     = errors.New("account not found")
	ErrUsernameExists      = errors.New("username already exists")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrCannotDeleteAdmin   = errors.New("cannot delete the admin account")
	ErrCannotDeleteLastAcct = errors.New("cannot delete the last account")
)

// DefaultAdminPassword is the initial password for the bootstrap admin
// account. Users should be warned to change it immediately.
const DefaultAdminPassword = "admin"

// apiKeyLength is the length of generated per-account API keys.
const apiKeyLength = 40

// Service manages persistence of user accounts.
type Service struct {
	mu       sync.RWMutex
	path     string
	accounts map[string]models.Account
}

// NewService creates an accounts service storing data inside the provided directory.
func NewService(storageDir string) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}

	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create accounts dir: %w", err)
	}

	svc := &Service{
		path:     filepath.Join(storageDir, "accounts.json"),
		accounts: make(map[string]models.Account),
	}

	if err := svc.load(); err != nil {
		return nil, err
	}

	if err := svc.ensureAdminAccount(); err != nil {
		return nil, err
	}

	return svc, nil
}

// List returns all accounts, admin first, then by creation time.
func (s *Service) List() []models.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]models.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		accounts = append(accounts, a)
	}

	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].IsAdmin != accounts[j].IsAdmin {
			return accounts[i].IsAdmin
		}
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})

	return accounts
}

// Get returns the account with the given ID if present.
func (s *Service) Get(id string) (models.Account, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Account{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	return account, ok
}

// GetByUsername returns the account with the given username if present.
func (s *Service) GetByUsername(username string) (models.Account, bool) {
	username = strings.TrimSpace(strings.ToLower(username))
	if username == "" {
		return models.Account{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if strings.ToLower(a.Username) == username {
			return a, true
		}
	}
	return models.Account{}, false
}

// Exists reports whether an account with the provided ID is registered.
func (s *Service) Exists(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.accounts[id]
	return ok
}

// Create registers a new account with the provided username and password.
func (s *Service) Create(username, passwd string) (models.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.Account{}, ErrUsernameRequired
	}

	passwd = strings.TrimSpace(passwd)
	if passwd == "" {
		return models.Account{}, ErrPasswordRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Usernames are unique case-insensitively
	lowerUsername := strings.ToLower(username)
	for _, a := range s.accounts {
		if strings.ToLower(a.Username) == lowerUsername {
			return models.Account{}, ErrUsernameExists
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(passwd), bcrypt.DefaultCost)
	if err != nil {
		return models.Account{}, fmt.Errorf("hash password: %w", err)
	}

	id := uuid.NewString()
	now := time.Now().UTC()
	account := models.Account{
		ID:           id,
		Username:     username,
		PasswordHash: string(hash),
		IsAdmin:      false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.accounts[id] = account

	if err := s.saveLocked(); err != nil {
		delete(s.accounts, id)
		return models.Account{}, err
	}

	return account, nil
}

// Authenticate verifies the username and password, returning the account if valid.
func (s *Service) Authenticate(username, passwd string) (models.Account, error) {
	username = strings.TrimSpace(username)
	passwd = strings.TrimSpace(passwd)

	if username == "" || passwd == "" {
		return models.Account{}, ErrInvalidCredentials
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	lowerUsername := strings.ToLower(username)
	var account models.Account
	found := false
	for _, a := range s.accounts {
		if strings.ToLower(a.Username) == lowerUsername {
			account = a
			found = true
			break
		}
	}

	if !found {
		// Run a bcrypt comparison anyway to keep timing uniform
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$dummy"), []byte(passwd))
		return models.Account{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(passwd)); err != nil {
		return models.Account{}, ErrInvalidCredentials
	}

	return account, nil
}

// AuthenticateAPIKey returns the account owning the given API key.
func (s *Service) AuthenticateAPIKey(apiKey string) (models.Account, bool) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return models.Account{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if a.APIKey != "" && a.APIKey == apiKey {
			return a, true
		}
	}
	return models.Account{}, false
}

// ResetAPIKey generates a fresh API key for an account and returns it.
// Any previously issued key stops working.
func (s *Service) ResetAPIKey(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrAccountNotFound
	}

	key, err := password.Generate(apiKeyLength, 10, 0, false, true)
	if err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return "", ErrAccountNotFound
	}

	account.APIKey = key
	account.UpdatedAt = time.Now().UTC()
	s.accounts[id] = account

	if err := s.saveLocked(); err != nil {
		return "", err
	}
	return key, nil
}

// Rename changes the username for an account.
func (s *Service) Rename(id, newUsername string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrAccountNotFound
	}

	newUsername = strings.TrimSpace(newUsername)
	if newUsername == "" {
		return ErrUsernameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}

	lowerUsername := strings.ToLower(newUsername)
	for _, a := range s.accounts {
		if a.ID != id && strings.ToLower(a.Username) == lowerUsername {
			return ErrUsernameExists
		}
	}

	account.Username = newUsername
	account.UpdatedAt = time.Now().UTC()
	s.accounts[id] = account

	return s.saveLocked()
}

// UpdatePassword changes the password for an account.
func (s *Service) UpdatePassword(id, newPassword string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrAccountNotFound
	}

	newPassword = strings.TrimSpace(newPassword)
	if newPassword == "" {
		return ErrPasswordRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	account.PasswordHash = string(hash)
	account.UpdatedAt = time.Now().UTC()
	s.accounts[id] = account

	return s.saveLocked()
}

// Delete removes an account by ID. The admin account cannot be deleted.
func (s *Service) Delete(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrAccountNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}

	if account.IsAdmin {
		return ErrCannotDeleteAdmin
	}

	if len(s.accounts) <= 1 {
		return ErrCannotDeleteLastAcct
	}

	delete(s.accounts, id)

	return s.saveLocked()
}

// GetAdminAccount returns the admin account.
func (s *Service) GetAdminAccount() (models.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if a.IsAdmin {
			return a, true
		}
	}
	return models.Account{}, false
}

// HasDefaultPassword checks if the admin account still has the default password.
func (s *Service) HasDefaultPassword() bool {
	admin, ok := s.GetAdminAccount()
	if !ok {
		return false
	}

	err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(DefaultAdminPassword))
	return err == nil
}

// ensureAdminAccount creates the admin account if it doesn't exist.
func (s *Service) ensureAdminAccount() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if a.IsAdmin {
			return nil
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash default password: %w", err)
	}

	now := time.Now().UTC()
	admin := models.Account{
		ID:           "admin",
		Username:     models.AdminUsername,
		PasswordHash: string(hash),
		IsAdmin:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.accounts[admin.ID] = admin

	return s.saveLocked()
}

func (s *Service) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open accounts file: %w", err)
	}
	defer file.Close()

	dec := json.NewDecoder(file)
	var stored []models.AccountStorage
	if err := dec.Decode(&stored); err != nil {
		return fmt.Errorf("decode accounts: %w", err)
	}

	s.accounts = make(map[string]models.Account, len(stored))
	for _, accountStorage := range stored {
		if strings.TrimSpace(accountStorage.ID) == "" {
			continue
		}
		account := accountStorage.ToAccount()
		if account.CreatedAt.IsZero() {
			account.CreatedAt = time.Now().UTC()
		}
		if account.UpdatedAt.IsZero() {
			account.UpdatedAt = account.CreatedAt
		}
		s.accounts[account.ID] = account
	}

	return nil
}

func (s *Service) saveLocked() error {
	storage := make([]models.AccountStorage, 0, len(s.accounts))
	for _, account := range s.accounts {
		storage = append(storage, account.ToStorage())
	}

	sort.Slice(storage, func(i, j int) bool {
		if storage[i].IsAdmin != storage[j].IsAdmin {
			return storage[i].IsAdmin
		}
		return storage[i].CreatedAt.Before(storage[j].CreatedAt)
	})

	tmp := s.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create accounts temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(storage); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode accounts: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync accounts: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close accounts temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace accounts file: %w", err)
	}

	return nil
}
