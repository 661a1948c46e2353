package client

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"

	"github.com/amit-3245/campus-complaint-portal/internal/listing"
	"github.com/amit-3245/campus-complaint-portal/internal/models"
)

var ErrNoSession = errors.New("not logged in")

// Desk holds the signed-in session and the fetched complaint lists.
// State only changes through its mutation methods, one per API call;
// query methods hand out copies. Safe for concurrent use.
type Desk struct {
	api *Client

	mu      sync.RWMutex
	user    *models.User
	token   string
	all     []models.Complaint
	mine    []models.Complaint
	hasAll  bool
	hasMine bool
}

func NewDesk(api *Client) *Desk {
	return &Desk{api: api}
}

// --- Session mutations ---

func (d *Desk) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	s, err := d.api.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return d.startSession(s), nil
}

func (d *Desk) Login(ctx context.Context, email, password string) (*models.User, error) {
	s, err := d.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return d.startSession(s), nil
}

// UseToken restores a previously saved token. Call LoadProfile to fetch
// the user it belongs to.
func (d *Desk) UseToken(token string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reset()
	d.token = token
}

// Logout drops the token locally. Tokens are not revoked server-side.
func (d *Desk) Logout() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reset()
}

// LoadProfile refreshes the current user. A rejected token ends the session.
func (d *Desk) LoadProfile(ctx context.Context) (*models.User, error) {
	token := d.Token()
	if token == "" {
		return nil, ErrNoSession
	}

	u, err := d.api.Profile(ctx, token)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			d.Logout()
		}
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.token != token {
		return nil, ErrNoSession
	}
	d.user = u
	cp := *u
	return &cp, nil
}

// --- Complaint mutations ---

func (d *Desk) RefreshAll(ctx context.Context) error {
	token := d.Token()
	if token == "" {
		return ErrNoSession
	}
	list, err := d.api.ListAll(ctx, token)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.all, d.hasAll = list, true
	return nil
}

func (d *Desk) RefreshMine(ctx context.Context) error {
	token := d.Token()
	if token == "" {
		return ErrNoSession
	}
	list, err := d.api.ListMine(ctx, token)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.mine, d.hasMine = list, true
	return nil
}

// Submit creates a complaint and puts it at the front of the cached lists.
func (d *Desk) Submit(ctx context.Context, in NewComplaint) (*models.Complaint, error) {
	token := d.Token()
	if token == "" {
		return nil, ErrNoSession
	}
	c, err := d.api.CreateComplaint(ctx, token, in)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.mine = slices.Insert(d.mine, 0, *c)
	if d.hasAll {
		d.all = slices.Insert(d.all, 0, *c)
	}
	cp := *c
	return &cp, nil
}

// SetStatus updates a complaint's status and patches it in both caches.
func (d *Desk) SetStatus(ctx context.Context, id, status string) (*models.Complaint, error) {
	token := d.Token()
	if token == "" {
		return nil, ErrNoSession
	}
	c, err := d.api.UpdateStatus(ctx, token, id, status)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	patch := func(list []models.Complaint) {
		for i := range list {
			if list[i].ID == c.ID {
				list[i].Status = c.Status
				list[i].UpdatedAt = c.UpdatedAt
			}
		}
	}
	patch(d.all)
	patch(d.mine)
	cp := *c
	return &cp, nil
}

// Remove deletes a complaint and drops it from both caches.
func (d *Desk) Remove(ctx context.Context, id string) (string, error) {
	token := d.Token()
	if token == "" {
		return "", ErrNoSession
	}
	msg, err := d.api.Delete(ctx, token, id)
	if err != nil {
		return "", err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	drop := func(c models.Complaint) bool { return c.ID == id }
	d.all = slices.DeleteFunc(d.all, drop)
	d.mine = slices.DeleteFunc(d.mine, drop)
	return msg, nil
}

// --- Queries ---

// User returns a copy of the signed-in user, or nil.
func (d *Desk) User() *models.User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.user == nil {
		return nil
	}
	cp := *d.user
	return &cp
}

func (d *Desk) Token() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.token
}

// Loaded reports which lists have been fetched this session.
func (d *Desk) Loaded() (all, mine bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.hasAll, d.hasMine
}

func (d *Desk) IsAdmin() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.user != nil && d.user.IsAdmin()
}

// All filters and sorts the cached admin list.
func (d *Desk) All(cr listing.Criteria, key listing.SortKey) []models.Complaint {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return detach(listing.Apply(d.all, cr, key))
}

// Mine filters and sorts the caller's cached complaints.
func (d *Desk) Mine(cr listing.Criteria, key listing.SortKey) []models.Complaint {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return detach(listing.Apply(d.mine, cr, key))
}

// Counts tallies the admin list when loaded, otherwise the caller's own.
func (d *Desk) Counts() map[string]int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.hasAll {
		return listing.CountByStatus(d.all)
	}
	return listing.CountByStatus(d.mine)
}

func (d *Desk) startSession(s *Session) *models.User {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reset()
	u := s.User
	d.user = &u
	d.token = s.Token
	cp := u
	return &cp
}

// reset must be called with mu held.
func (d *Desk) reset() {
	d.user = nil
	d.token = ""
	d.all, d.mine = nil, nil
	d.hasAll, d.hasMine = false, false
}

// detach copies owner records so callers cannot reach cached state.
func detach(list []models.Complaint) []models.Complaint {
	for i := range list {
		if list[i].User != nil {
			owner := *list[i].User
			list[i].User = &owner
		}
	}
	return list
}
