package models

import "time"

// AdminUsername is the default username for the bootstrap admin account.
const AdminUsername = "admin"

// Account represents a signed-up user. Admin accounts can manage other
// accounts; regular accounts only see their own favorites, ratings,
// and watchlist.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // bcrypt hash, never serialized in API responses
	APIKey       string    `json:"-"` // opaque key for non-interactive clients
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AccountStorage is the on-disk representation. Unlike Account it carries
// the password hash and API key for persistence.
type AccountStorage struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	APIKey       string    `json:"apiKey,omitempty"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ToStorage converts an Account to its persistence form.
func (a Account) ToStorage() AccountStorage {
	return AccountStorage{
		ID:           a.ID,
		Username:     a.Username,
		PasswordHash: a.PasswordHash,
		APIKey:       a.APIKey,
		IsAdmin:      a.IsAdmin,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// ToAccount converts an AccountStorage back to an Account.
func (as AccountStorage) ToAccount() Account {
	return Account{
		ID:           as.ID,
		Username:     as.Username,
		PasswordHash: as.PasswordHash,
		APIKey:       as.APIKey,
		IsAdmin:      as.IsAdmin,
		CreatedAt:    as.CreatedAt,
		UpdatedAt:    as.UpdatedAt,
	}
}
