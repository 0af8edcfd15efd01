// ABOUTME: Shared state for the account family
// ABOUTME: Pessimistic mutators that refresh or merge only after the remote call succeeds
package state

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/harperreed/keyaccounts/crmerr"
	"github.com/harperreed/keyaccounts/models"
)

// AccountsRemote is the remote family the account store drives.
type AccountsRemote interface {
	GetAll(ctx context.Context) ([]models.Account, error)
	Create(ctx context.Context, acct models.Account) (string, error)
	Update(ctx context.Context, id string, patch models.AccountPatch) (models.Account, error)
	Delete(ctx context.Context, id string) error
}

// AccountSnapshot is an immutable view of the account store.
type AccountSnapshot struct {
	Accounts []models.Account
	Loading  bool
	// Err is the latest failure message, empty when there is none.
	Err string
}

// Find returns the cached account with the given id.
func (s AccountSnapshot) Find(id string) (models.Account, bool) {
	return findByID(s.Accounts, id, accountID)
}

func cloneAccountSnapshot(s AccountSnapshot) AccountSnapshot {
	s.Accounts = cloneRecords(s.Accounts, models.Account.Clone)
	return s
}

func accountID(a models.Account) string { return a.ID }

type AccountStore struct {
	remote AccountsRemote
	cell   *cell[AccountSnapshot]
	logger *log.Logger
}

// NewAccountStore creates a store that reports Loading until its first
// refresh or sign-out.
func NewAccountStore(remote AccountsRemote) *AccountStore {
	return &AccountStore{
		remote: remote,
		cell: &cell[AccountSnapshot]{
			snap:  AccountSnapshot{Loading: true},
			clone: cloneAccountSnapshot,
		},
		logger: log.Default().WithPrefix("accounts"),
	}
}

func (s *AccountStore) Snapshot() AccountSnapshot {
	return s.cell.get()
}

// Subscribe registers fn for every state change and returns an unsubscribe func.
func (s *AccountStore) Subscribe(fn func(AccountSnapshot)) func() {
	return s.cell.subscribe(fn)
}

// ClearError dismisses the current error.
func (s *AccountStore) ClearError() {
	s.cell.update(func(snap AccountSnapshot) AccountSnapshot {
		snap.Err = ""
		return snap
	})
}

func (s *AccountStore) fail(op string, err error, fallback string) error {
	msg := crmerr.Message(err, fallback)
	s.logger.Error(fallback, "op", op, "err", err)
	s.cell.update(func(snap AccountSnapshot) AccountSnapshot {
		snap.Err = msg
		return snap
	})
	return err
}

// Refresh refetches every account and replaces the cache wholesale.
func (s *AccountStore) Refresh(ctx context.Context) error {
	s.cell.update(func(snap AccountSnapshot) AccountSnapshot {
		snap.Loading = true
		snap.Err = ""
		return snap
	})

	accounts, err := s.remote.GetAll(ctx)
	if err != nil {
		s.cell.update(func(snap AccountSnapshot) AccountSnapshot {
			snap.Loading = false
			return snap
		})
		return s.fail("refresh", err, "Failed to fetch accounts")
	}

	s.cell.update(func(snap AccountSnapshot) AccountSnapshot {
		snap.Accounts = accounts
		snap.Loading = false
		return snap
	})
	return nil
}

// Add creates the account and refreshes, since the store only returns the new
// identifier. A failed refresh after a successful create still returns the id;
// its message is left in the error slot.
func (s *AccountStore) Add(ctx context.Context, acct models.Account) (string, error) {
	s.ClearError()

	id, err := s.remote.Create(ctx, acct)
	if err != nil {
		return "", s.fail("add", err, "Failed to create account")
	}

	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn("refresh after create failed", "id", id, "err", err)
	}
	return id, nil
}

// Update patches the account and replaces the cached entry with the record
// the store returns.
func (s *AccountStore) Update(ctx context.Context, id string, patch models.AccountPatch) (models.Account, error) {
	s.ClearError()

	updated, err := s.remote.Update(ctx, id, patch)
	if err != nil {
		return models.Account{}, s.fail("update", err, "Failed to update account")
	}

	s.cell.update(func(snap AccountSnapshot) AccountSnapshot {
		snap.Accounts = replaceByID(snap.Accounts, id, accountID, updated)
		return snap
	})
	return updated.Clone(), nil
}

// Remove deletes the account. The remote call is made even when the id is not
// cached.
func (s *AccountStore) Remove(ctx context.Context, id string) error {
	s.ClearError()

	if err := s.remote.Delete(ctx, id); err != nil {
		return s.fail("remove", err, "Failed to delete account")
	}

	s.cell.update(func(snap AccountSnapshot) AccountSnapshot {
		snap.Accounts = removeByID(snap.Accounts, id, accountID)
		return snap
	})
	return nil
}

// ToggleReadiness flips the cached transformation-readiness flag of an account.
func (s *AccountStore) ToggleReadiness(ctx context.Context, id string) (models.Account, error) {
	acct, ok := s.Snapshot().Find(id)
	if !ok {
		return models.Account{}, s.fail("toggle", crmerr.NotFound("accounts.toggle", "Account not found"), "Failed to update account")
	}

	ready := !acct.TransformationReadiness
	return s.Update(ctx, id, models.AccountPatch{TransformationReadiness: &ready})
}

// Bind ties the store to session. Signing out clears the cache without a
// fetch; signing in refreshes. Callbacks run synchronously on the goroutine
// that changed the session. The current session state is applied immediately.
func (s *AccountStore) Bind(ctx context.Context, session *Session) func() {
	apply := func(u *User) {
		if u == nil {
			s.cell.update(func(snap AccountSnapshot) AccountSnapshot {
				snap.Accounts = nil
				snap.Loading = false
				return snap
			})
			return
		}
		// Refresh records its own failure in the error slot.
		_ = s.Refresh(ctx)
	}

	unsub := session.Subscribe(apply)
	apply(session.Current())
	return unsub
}
