package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cellarstock/inventory-auth/internal/core/domain"
	"github.com/cellarstock/inventory-auth/internal/core/ports"
)

var _ ports.SessionManager = (*SessionManager)(nil)

// SessionManager implements ports.SessionManager on top of an IdentityStore.
//
// Mutating operations are serialized by mu. The busy indicator counts
// in-flight operations, so it stays true while a second operation waits for
// the first one. A freshly built manager is busy until Hydrate completes.
type SessionManager struct {
	store        ports.IdentityStore
	auditor      ports.Auditor
	log          zerolog.Logger
	now          func() time.Time
	newID        func() string
	afterHydrate func(ctx context.Context)

	mu       sync.Mutex
	stateMu  sync.RWMutex
	current  *domain.Account
	inflight atomic.Int32
	hydrated atomic.Bool
}

// Option configures a SessionManager.
type Option func(*SessionManager)

// WithAuditor sends lifecycle outcomes to a.
func WithAuditor(a ports.Auditor) Option {
	return func(m *SessionManager) { m.auditor = a }
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *SessionManager) { m.now = now }
}

// WithIDGenerator overrides account id generation.
func WithIDGenerator(gen func() string) Option {
	return func(m *SessionManager) { m.newID = gen }
}

// WithPostHydrationHook runs hook after the persisted session has been read
// and before the manager reports itself ready.
func WithPostHydrationHook(hook func(ctx context.Context)) Option {
	return func(m *SessionManager) { m.afterHydrate = hook }
}

// DelayHook returns a post-hydration hook that waits for d or until ctx is done.
func DelayHook(d time.Duration) func(ctx context.Context) {
	return func(ctx context.Context) {
		if d <= 0 {
			return
		}
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
		}
	}
}

// NewSessionManager builds a manager in the hydrating state. Call Hydrate
// once at process start.
func NewSessionManager(store ports.IdentityStore, log zerolog.Logger, opts ...Option) *SessionManager {
	m := &SessionManager{
		store: store,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.inflight.Store(1)
	return m
}

// Hydrate restores the persisted session, if any. A missing, unreadable or
// malformed record leaves the manager signed out. Only the first call has
// any effect.
func (m *SessionManager) Hydrate(ctx context.Context) {
	if !m.hydrated.CompareAndSwap(false, true) {
		return
	}
	m.mu.Lock()
	defer func() {
		m.mu.Unlock()
		m.inflight.Add(-1)
	}()

	acc, err := m.readSession(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("discarding persisted session")
		acc = nil
	}
	m.setCurrent(acc)

	if m.afterHydrate != nil {
		m.afterHydrate(ctx)
	}

	if acc != nil {
		m.log.Info().Str("account_id", acc.ID).Str("username", acc.Username).Msg("session restored")
	} else {
		m.log.Info().Msg("no session to restore")
	}
}

// State returns a snapshot of the current session and busy indicator.
func (m *SessionManager) State() domain.SessionState {
	busy := m.inflight.Load() > 0
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return domain.SessionState{Account: m.current.Clone(), Busy: busy}
}

// Register creates an account. The first account in an empty store becomes
// admin; every later one is staff. The new account becomes the session.
func (m *SessionManager) Register(ctx context.Context, username, credential string) (*domain.Account, error) {
	defer m.begin()()

	if username == "" {
		return nil, domain.ErrInvalidInput
	}

	users, err := m.loadUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	for _, u := range users {
		if u.Username == username {
			m.log.Warn().Str("username", username).Msg("username already taken")
			return nil, domain.ErrUsernameTaken
		}
	}

	role := domain.RoleStaff
	if len(users) == 0 {
		role = domain.RoleAdmin
	}

	acc := &domain.Account{
		ID:         m.newID(),
		Username:   username,
		Credential: credential,
		Role:       role,
		CreatedAt:  m.now(),
	}

	if err := m.saveUsers(ctx, append(cloneAccounts(users), acc)); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if err := m.writeSession(ctx, acc); err != nil {
		m.restoreUsers(ctx, users)
		return nil, fmt.Errorf("register: %w", err)
	}
	m.setCurrent(acc)
	m.record(domain.EventRegister, acc)

	m.log.Info().Str("account_id", acc.ID).Str("username", acc.Username).Str("role", string(acc.Role)).Msg("account registered")
	return acc.Clone(), nil
}

// Login signs in the account whose username and credential both match.
// Unknown usernames and wrong credentials fail identically; the previous
// session is left untouched on failure.
func (m *SessionManager) Login(ctx context.Context, username, credential string) (*domain.Account, error) {
	defer m.begin()()

	users, err := m.loadUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	var match *domain.Account
	for _, u := range users {
		if u.Username == username && u.Credential == credential {
			match = u
			break
		}
	}
	if match == nil {
		m.record(domain.EventLoginFailed, &domain.Account{Username: username})
		m.log.Warn().Str("username", username).Msg("login rejected")
		return nil, domain.ErrInvalidCredentials
	}

	if err := m.writeSession(ctx, match); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	m.setCurrent(match)
	m.record(domain.EventLogin, match)

	m.log.Info().Str("account_id", match.ID).Str("username", match.Username).Msg("logged in")
	return match.Clone(), nil
}

// Logout clears the session and its persisted record. Calling it while
// signed out is a no-op. The in-memory session is only dropped once the
// persisted record is gone.
func (m *SessionManager) Logout(ctx context.Context) error {
	defer m.begin()()

	if err := m.store.Delete(ctx, ports.KeyCurrentSession); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	prev := m.swapCurrent(nil)
	if prev != nil {
		m.record(domain.EventLogout, prev)
		m.log.Info().Str("account_id", prev.ID).Str("username", prev.Username).Msg("logged out")
	}
	return nil
}

// UpdateProfile merges update onto the session account, stamps
// ProfileUpdatedAt, writes the result back to the users record and replaces
// the session with it.
func (m *SessionManager) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.Account, error) {
	defer m.begin()()

	cur := m.currentAccount()
	if cur == nil {
		return nil, domain.ErrNotAuthenticated
	}

	merged := cur.Clone()
	if update.Credential != nil {
		merged.Credential = *update.Credential
	}
	if update.DisplayName != nil {
		merged.DisplayName = *update.DisplayName
	}
	ts := m.now()
	merged.ProfileUpdatedAt = &ts

	users, err := m.loadUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	updated := cloneAccounts(users)
	for i, u := range updated {
		if u.ID == merged.ID {
			updated[i] = merged
		}
	}
	if err := m.saveUsers(ctx, updated); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if err := m.writeSession(ctx, merged); err != nil {
		m.restoreUsers(ctx, users)
		return nil, fmt.Errorf("update profile: %w", err)
	}
	m.setCurrent(merged)
	m.record(domain.EventProfileUpdate, merged)

	m.log.Info().Str("account_id", merged.ID).Msg("profile updated")
	return merged.Clone(), nil
}

// AssignRole changes the role of another (or the same) account. Only an
// admin session may call it.
func (m *SessionManager) AssignRole(ctx context.Context, accountID string, role domain.Role) (*domain.Account, error) {
	defer m.begin()()

	cur := m.currentAccount()
	if cur == nil {
		return nil, domain.ErrNotAuthenticated
	}
	if cur.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	users, err := m.loadUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("assign role: %w", err)
	}
	updated := cloneAccounts(users)
	var target *domain.Account
	for _, u := range updated {
		if u.ID == accountID {
			target = u
			break
		}
	}
	if target == nil {
		return nil, domain.ErrAccountNotFound
	}
	target.Role = role

	if err := m.saveUsers(ctx, updated); err != nil {
		return nil, fmt.Errorf("assign role: %w", err)
	}
	if target.ID == cur.ID {
		if err := m.writeSession(ctx, target); err != nil {
			m.restoreUsers(ctx, users)
			return nil, fmt.Errorf("assign role: %w", err)
		}
		m.setCurrent(target)
	}
	m.record(domain.EventRoleAssign, target)

	m.log.Info().
		Str("account_id", target.ID).
		Str("role", string(role)).
		Str("assigned_by", cur.ID).
		Msg("role assigned")
	return target.Clone(), nil
}

// ListAccounts returns every stored account. Admin only.
func (m *SessionManager) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.currentAccount()
	if cur == nil {
		return nil, domain.ErrNotAuthenticated
	}
	if cur.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	users, err := m.loadUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return users, nil
}

// begin marks an operation in flight and takes the write lock. The returned
// func releases both and must run even when the operation fails.
func (m *SessionManager) begin() func() {
	m.inflight.Add(1)
	m.mu.Lock()
	return func() {
		m.mu.Unlock()
		m.inflight.Add(-1)
	}
}

func (m *SessionManager) currentAccount() *domain.Account {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.current.Clone()
}

func (m *SessionManager) setCurrent(acc *domain.Account) {
	m.swapCurrent(acc)
}

func (m *SessionManager) swapCurrent(acc *domain.Account) *domain.Account {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	prev := m.current
	m.current = acc.Clone()
	return prev
}

func (m *SessionManager) record(kind domain.AuthEventKind, acc *domain.Account) {
	if m.auditor == nil {
		return
	}
	m.auditor.Record(domain.AuthEvent{
		Kind:      kind,
		AccountID: acc.ID,
		Username:  acc.Username,
		Role:      acc.Role,
		Timestamp: m.now(),
	})
}

// restoreUsers puts back the users record read at the start of an operation
// whose session write failed.
func (m *SessionManager) restoreUsers(ctx context.Context, users []*domain.Account) {
	if err := m.saveUsers(ctx, users); err != nil {
		m.log.Error().Err(err).Msg("failed to roll back users record")
	}
}

func cloneAccounts(users []*domain.Account) []*domain.Account {
	out := make([]*domain.Account, len(users))
	for i, u := range users {
		out[i] = u.Clone()
	}
	return out
}

func (m *SessionManager) loadUsers(ctx context.Context) ([]*domain.Account, error) {
	raw, found, err := m.store.Get(ctx, ports.KeyUsers)
	if err != nil {
		return nil, fmt.Errorf("read users: %w", err)
	}
	if !found {
		return nil, nil
	}
	var users []*domain.Account
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (m *SessionManager) saveUsers(ctx context.Context, users []*domain.Account) error {
	if users == nil {
		users = []*domain.Account{}
	}
	raw, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	if err := m.store.Set(ctx, ports.KeyUsers, raw); err != nil {
		return fmt.Errorf("write users: %w", err)
	}
	return nil
}

func (m *SessionManager) readSession(ctx context.Context) (*domain.Account, error) {
	raw, found, err := m.store.Get(ctx, ports.KeyCurrentSession)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if !found {
		return nil, nil
	}
	var acc domain.Account
	if err := json.Unmarshal(raw, &acc); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if acc.ID == "" || acc.Username == "" || !acc.Role.Valid() {
		return nil, fmt.Errorf("decode session: %w", domain.ErrInvalidInput)
	}
	return &acc, nil
}

func (m *SessionManager) writeSession(ctx context.Context, acc *domain.Account) error {
	raw, err := json.Marshal(acc)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := m.store.Set(ctx, ports.KeyCurrentSession, raw); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}
