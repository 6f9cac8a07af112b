// Package session holds the signed-in user's credentials, persists them as
// one group, and announces when they stop being usable.
package session

import (
	"bytes"
	"encoding/json"
	"time"

	"golang.org/x/oauth2"
)

// UserID is a server-issued user identifier. The server may send it as a
// JSON number or string.
type UserID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = UserID(n.String())
	return nil
}

// User is the signed-in account.
type User struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Session is the credential group written at login.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         User
}

// Complete reports whether every part of the group is present.
func (s Session) Complete() bool {
	return s.AccessToken != "" &&
		s.RefreshToken != "" &&
		!s.ExpiresAt.IsZero() &&
		s.User.ID != ""
}

// Expired reports whether the access token is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Token returns the bearer token for request authorization.
func (s Session) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: s.RefreshToken,
		Expiry:       s.ExpiresAt,
	}
}
