package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Nethaiah/commitlens/models"
)

// SessionProvider resolves the session of an incoming request. A nil
// session with a nil error means the request is unauthenticated.
type SessionProvider interface {
	GetSession(r *http.Request) (*models.Session, error)
}

// ViewerIdentity is the subset of the GitHub client needed to identify
// the configured token's user.
type ViewerIdentity interface {
	FetchViewerLogin(ctx context.Context) (string, error)
}

// sessionTTL bounds how long a resolved viewer identity is reused, so
// a rotated or revoked token stops authenticating within minutes
// rather than on process restart.
const sessionTTL = 5 * time.Minute

// ViewerSessionProvider authenticates every request as the user behind
// the configured API token. Suitable for single-user deployments where
// OAuth is handled elsewhere; the viewer identity is cached for
// sessionTTL and re-resolved after that.
type ViewerSessionProvider struct {
	client ViewerIdentity
	now    func() time.Time

	mu        sync.Mutex
	session   *models.Session
	fetchedAt time.Time
}

// NewViewerSessionProvider creates a provider backed by the viewer
// identity query.
func NewViewerSessionProvider(client ViewerIdentity) *ViewerSessionProvider {
	return &ViewerSessionProvider{client: client, now: time.Now}
}

// GetSession returns the token user's session, or nil when the viewer
// identity cannot be resolved.
func (p *ViewerSessionProvider) GetSession(r *http.Request) (*models.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session != nil && p.now().Sub(p.fetchedAt) < sessionTTL {
		return p.session, nil
	}

	login, err := p.client.FetchViewerLogin(r.Context())
	if err != nil {
		p.session = nil
		return nil, err
	}
	p.session = &models.Session{
		User: models.User{ID: login, Name: login, Login: login},
	}
	p.fetchedAt = p.now()
	return p.session, nil
}
