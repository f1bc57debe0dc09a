package directory

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"langpal/internal/chat"
	"langpal/internal/model"
	"langpal/internal/store"
)

// Storage keys shared with the original mobile client.
const (
	usersKey   = "LP_USERS_V1"
	currentKey = "LP_CURRENT_V1"
)

var (
	// ErrUsernameTaken is returned by SignUp on a case-insensitive
	// username collision.
	ErrUsernameTaken = errors.New("directory: username already taken")

	// ErrInvalidCredentials is returned by Login unless an account matches
	// both username and password exactly.
	ErrInvalidCredentials = errors.New("directory: invalid credentials")
)

// Patch carries the profile fields UpdateCurrentUser may change. Username
// and password are deliberately absent: they are immutable after signup and
// silently dropped by the original app, here they simply cannot be
// expressed. Nil fields are left untouched.
type Patch struct {
	FirstName *string
	LastName  *string
	DOB       *string
	Native    *string
	Learning  *string
	Gender    *string
	Pronouns  *string
	AvatarURI *string
}

// Directory owns the registered account list and the active session. The
// full list lives in memory and is rewritten to LP_USERS_V1 on every
// mutation; the session snapshot lives under LP_CURRENT_V1.
type Directory struct {
	store store.KVStore

	mu      sync.RWMutex
	users   []model.Account
	current *model.Account

	// usernameAvailable results, memoized per instance and cleared on
	// every mutating operation.
	availCache map[string]bool
}

// New loads the account list and session snapshot from the store. Absent
// keys mean a fresh install: empty directory, logged out.
func New(ctx context.Context, kv store.KVStore) (*Directory, error) {
	d := &Directory{store: kv, availCache: make(map[string]bool)}

	if _, err := store.LoadJSON(ctx, kv, usersKey, &d.users); err != nil {
		return nil, err
	}
	var current model.Account
	found, err := store.LoadJSON(ctx, kv, currentKey, &current)
	if err != nil {
		return nil, err
	}
	if found {
		d.current = &current
	}
	return d, nil
}

// SignUp registers a new account and makes it the active session. The id is
// generated when the caller leaves it empty. Fails with ErrUsernameTaken on
// a case-insensitive collision; uniqueness is enforced here only, since the
// username never changes afterwards.
func (d *Directory) SignUp(ctx context.Context, account model.Account) (*model.Account, error) {
	if strings.TrimSpace(account.Username) == "" {
		return nil, errors.New("directory: username is required")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.availableLocked(account.Username) {
		return nil, ErrUsernameTaken
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	}

	next := append(append([]model.Account{}, d.users...), account)
	if err := d.persistUsersLocked(ctx, next); err != nil {
		return nil, err
	}
	if err := d.persistCurrentLocked(ctx, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// Login sets the session to the account matching both fields exactly.
// The username comparison is case-sensitive, matching the source app even
// though signup uniqueness is case-insensitive.
func (d *Directory) Login(ctx context.Context, username, password string) (*model.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.users {
		if d.users[i].Username == username && d.users[i].Password == password {
			account := d.users[i]
			if err := d.persistCurrentLocked(ctx, &account); err != nil {
				return nil, err
			}
			return &account, nil
		}
	}
	return nil, ErrInvalidCredentials
}

// Logout clears the session pointer only; the account list is untouched.
func (d *Directory) Logout(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.persistCurrentLocked(ctx, nil)
}

// UpdateCurrentUser merges the patch into the active account and persists
// both the list and the refreshed session snapshot. No-op when logged out.
func (d *Directory) UpdateCurrentUser(ctx context.Context, patch Patch) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.current == nil {
		return nil
	}
	next := *d.current
	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&next.FirstName, patch.FirstName)
	apply(&next.LastName, patch.LastName)
	apply(&next.DOB, patch.DOB)
	apply(&next.Native, patch.Native)
	apply(&next.Learning, patch.Learning)
	apply(&next.Gender, patch.Gender)
	apply(&next.Pronouns, patch.Pronouns)
	apply(&next.AvatarURI, patch.AvatarURI)

	users := make([]model.Account, len(d.users))
	copy(users, d.users)
	for i := range users {
		if users[i].ID == next.ID {
			users[i] = next
		}
	}
	if err := d.persistUsersLocked(ctx, users); err != nil {
		return err
	}
	return d.persistCurrentLocked(ctx, &next)
}

// DeleteAccount removes every conversation that includes the active
// account, drops the account from the directory and clears the session.
// The chat cleanup is best effort: a failed key removal is logged and the
// deletion continues. No-op when logged out.
func (d *Directory) DeleteAccount(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.current == nil {
		return nil
	}
	userID := d.current.ID

	keys, err := d.store.Keys(ctx, "chat-")
	if err != nil {
		log.Printf("directory: failed to enumerate chats for deletion: %v", err)
	}
	for _, key := range keys {
		canonical, ok := chat.CanonicalFromStorage(key)
		if !ok || !chat.Includes(canonical, userID) {
			continue
		}
		if err := d.store.Delete(ctx, key); err != nil {
			log.Printf("directory: failed to remove %s: %v", key, err)
		}
	}

	users := make([]model.Account, 0, len(d.users))
	for _, u := range d.users {
		if u.ID != userID {
			users = append(users, u)
		}
	}
	if err := d.persistUsersLocked(ctx, users); err != nil {
		return err
	}
	return d.persistCurrentLocked(ctx, nil)
}

// UsernameAvailable reports whether no registered account uses the name,
// compared case-insensitively. Results are cached until the next mutation.
func (d *Directory) UsernameAvailable(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.availableLocked(name)
}

// Current returns a copy of the active session account, or nil when logged
// out.
func (d *Directory) Current() *model.Account {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.current == nil {
		return nil
	}
	account := *d.current
	return &account
}

// Users returns a copy of the registered account list.
func (d *Directory) Users() []model.Account {
	d.mu.RLock()
	defer d.mu.RUnlock()
	users := make([]model.Account, len(d.users))
	copy(users, d.users)
	return users
}

// Lookup finds an account by id.
func (d *Directory) Lookup(id string) (*model.Account, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for i := range d.users {
		if d.users[i].ID == id {
			account := d.users[i]
			return &account, true
		}
	}
	return nil, false
}

func (d *Directory) availableLocked(name string) bool {
	lower := strings.ToLower(name)
	if avail, ok := d.availCache[lower]; ok {
		return avail
	}
	avail := true
	for i := range d.users {
		if strings.ToLower(d.users[i].Username) == lower {
			avail = false
			break
		}
	}
	d.availCache[lower] = avail
	return avail
}

// persistUsersLocked writes the list, swaps the in-memory copy and clears
// the availability cache.
func (d *Directory) persistUsersLocked(ctx context.Context, users []model.Account) error {
	if err := store.SaveJSON(ctx, d.store, usersKey, users); err != nil {
		return err
	}
	d.users = users
	d.availCache = make(map[string]bool)
	return nil
}

func (d *Directory) persistCurrentLocked(ctx context.Context, account *model.Account) error {
	if account == nil {
		if err := d.store.Delete(ctx, currentKey); err != nil {
			return err
		}
		d.current = nil
		return nil
	}
	if err := store.SaveJSON(ctx, d.store, currentKey, account); err != nil {
		return err
	}
	copied := *account
	d.current = &copied
	return nil
}
