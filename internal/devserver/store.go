package devserver

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jinzhu/copier"

	"github.com/kingrea/leads-admin/internal/lead"
	"github.com/kingrea/leads-admin/internal/session"
)

var (
	errNotFound   = errors.New("lead not found")
	errBadLogin   = errors.New("invalid credentials")
	errValidation = errors.New("validation failed")
)

// Account is a user the dev server accepts at /auth/login.
type Account struct {
	session.User
	Password string
}

// Store is the in-memory lead table behind the dev server.
type Store struct {
	mu       sync.Mutex
	accounts map[string]Account
	leads    []lead.Lead
	nextID   int64
	clock    func() time.Time
}

// NewStore returns an empty store.
func NewStore(clock func() time.Time) *Store {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Store{accounts: map[string]Account{}, nextID: 1, clock: clock}
}

// SeededStore returns a store with the demo account (test@example.com /
// password, organisation 1) and a few leads in two organisations.
func SeededStore(clock func() time.Time) *Store {
	s := NewStore(clock)
	s.AddAccount(Account{
		User:     session.User{ID: 1, Name: "Test User", Email: "test@example.com", OrganisationID: 1},
		Password: "password",
	})
	s.AddAccount(Account{
		User:     session.User{ID: 2, Name: "Other Org", Email: "other@example.com", OrganisationID: 2},
		Password: "password",
	})
	seed := []struct {
		org int64
		p   lead.CreateLeadPayload
	}{
		{1, lead.CreateLeadPayload{FullName: "Jane Doe", Position: "Eng", Company: "Acme", Location: "Lisbon", ProfileURL: "https://www.linkedin.com/in/janedoe", Followers: 540, Connections: 500, Education: "IST", PersonalMessage: "Hi Jane", MessageLength: 7, GeneratedAt: "2024-05-01T09:00:00Z", TotalLeads: 3}},
		{1, lead.CreateLeadPayload{FullName: "Bob Stone", Position: "Sales Director", Company: "Globex", Location: "Berlin", ProfileURL: "https://www.linkedin.com/in/bobstone", Followers: 1200, Connections: 500, Education: "TU Berlin", PersonalMessage: "Hello Bob", MessageLength: 9, GeneratedAt: "2024-05-01T09:00:00Z", TotalLeads: 3}},
		{1, lead.CreateLeadPayload{FullName: "Ana Lima", Position: "Engineering Manager", Company: "Initech", Location: "Porto", ProfileURL: "https://www.linkedin.com/in/analima", Followers: 310, Connections: 280, Education: "FEUP", PersonalMessage: "Olá Ana", MessageLength: 7, GeneratedAt: "2024-05-01T09:00:00Z", TotalLeads: 3}},
		{2, lead.CreateLeadPayload{FullName: "Carl Weiss", Position: "CTO", Company: "Umbrella", Location: "Vienna", GeneratedAt: "2024-05-02T09:00:00Z", TotalLeads: 1}},
	}
	for _, item := range seed {
		_, _ = s.Create(item.org, item.p)
	}
	return s
}

// AddAccount registers a login.
func (s *Store) AddAccount(a Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[strings.ToLower(strings.TrimSpace(a.Email))] = a
}

// Authenticate checks credentials.
func (s *Store) Authenticate(email, password string) (session.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[strings.ToLower(strings.TrimSpace(email))]
	if !ok || acct.Password != password {
		return session.User{}, errBadLogin
	}
	return acct.User, nil
}

// List returns the leads owned by org in creation order.
func (s *Store) List(org int64) []lead.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]lead.Lead, 0, len(s.leads))
	for _, l := range s.leads {
		if l.OrganisationID == org {
			out = append(out, l)
		}
	}
	return out
}

// Create validates p and stores a new lead for org.
func (s *Store) Create(org int64, p lead.CreateLeadPayload) (lead.Lead, error) {
	if err := validatePayload(p); err != nil {
		return lead.Lead{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var l lead.Lead
	if err := copier.Copy(&l, &p); err != nil {
		return lead.Lead{}, fmt.Errorf("copy payload: %w", err)
	}
	now := s.clock()
	l.ID = s.nextID
	l.OrganisationID = org
	l.CreatedAt = now
	l.UpdatedAt = now
	s.nextID++
	s.leads = append(s.leads, l)
	return l, nil
}

// Update applies u to lead id when it belongs to org.
func (s *Store) Update(org, id int64, u lead.UpdatePayload) (lead.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexFor(org, id)
	if idx < 0 {
		return lead.Lead{}, errNotFound
	}
	next := s.leads[idx]
	u.Apply(&next)
	if err := validatePayload(lead.PayloadFrom(next)); err != nil {
		return lead.Lead{}, err
	}
	next.UpdatedAt = s.clock()
	s.leads[idx] = next
	return next, nil
}

// Delete removes lead id when it belongs to org.
func (s *Store) Delete(org, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexFor(org, id)
	if idx < 0 {
		return errNotFound
	}
	s.leads = append(s.leads[:idx], s.leads[idx+1:]...)
	return nil
}

func (s *Store) indexFor(org, id int64) int {
	for i, l := range s.leads {
		if l.ID == id && l.OrganisationID == org {
			return i
		}
	}
	return -1
}

func validatePayload(p lead.CreateLeadPayload) error {
	if strings.TrimSpace(p.FullName) == "" {
		return fmt.Errorf("%w: full_name is required", errValidation)
	}
	if p.Followers < 0 || p.Connections < 0 || p.MessageLength < 0 {
		return fmt.Errorf("%w: counts must not be negative", errValidation)
	}
	return nil
}
