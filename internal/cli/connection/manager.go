package connection

import (
	"fmt"

	"github.com/yndnr/pagegate/internal/cli/config"
)

// Manager hands out clients for one resolved profile.
type Manager struct {
	profile config.Profile
	http    *HTTPClient
}

// NewManager creates a manager for the given profile.
func NewManager(profile config.Profile) *Manager {
	return &Manager{profile: profile}
}

// Profile returns the resolved profile.
func (m *Manager) Profile() config.Profile {
	return m.profile
}

// HTTP returns the page server client. The same client is reused so the
// digest challenge carries over between requests.
func (m *Manager) HTTP() *HTTPClient {
	if m.http == nil {
		m.http = NewHTTPClient(m.profile.Server, m.profile.Username, m.profile.Password)
	}
	return m.http
}

// Ops returns an unauthenticated client for the ops endpoint.
func (m *Manager) Ops() (*HTTPClient, error) {
	if m.profile.Ops == "" {
		return nil, fmt.Errorf("no ops address configured")
	}
	return NewHTTPClient(m.profile.Ops, "", ""), nil
}

// Socket returns a new admin socket client.
func (m *Manager) Socket() (*SocketClient, error) {
	if m.profile.Socket == "" {
		return nil, fmt.Errorf("no admin socket configured")
	}
	return NewSocketClient(m.profile.Socket), nil
}
