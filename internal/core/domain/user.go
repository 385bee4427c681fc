package domain

import "sort"

// UserStore is the fixed mapping from username to shared digest secret.
//
// It is provisioned once at start-up and never mutated afterwards, so it is
// safe for concurrent reads without locking.
type UserStore struct {
	secrets map[string]string
}

// NewUserStore copies users into a new read-only store.
func NewUserStore(users map[string]string) *UserStore {
	secrets := make(map[string]string, len(users))
	for name, secret := range users {
		secrets[name] = secret
	}
	return &UserStore{secrets: secrets}
}

// Secret returns the shared secret for username.
func (s *UserStore) Secret(username string) (string, bool) {
	if s == nil {
		return "", false
	}
	secret, ok := s.secrets[username]
	return secret, ok
}

// Len returns the number of provisioned users.
func (s *UserStore) Len() int {
	if s == nil {
		return 0
	}
	return len(s.secrets)
}

// Usernames returns the provisioned usernames in sorted order.
func (s *UserStore) Usernames() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.secrets))
	for name := range s.secrets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
