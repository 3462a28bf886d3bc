package components

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/core-banking-ledger/internal/domain/account"
	"github.com/core-banking-ledger/internal/domain/audit"
	"github.com/core-banking-ledger/internal/domain/ledger"
	"github.com/core-banking-ledger/internal/domain/outbox"
	"github.com/core-banking-ledger/internal/domain/probe"
	"github.com/core-banking-ledger/internal/domain/shared"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// memState is one version of the database. Transactions work on a clone and
// savepoints are clones taken at SAVEPOINT time.
type memState struct {
	accounts  map[int64]*account.Account
	customers map[int64]bool
	branches  map[int64]bool
	entries   []*ledger.Entry
	outbox    []*outbox.Message
	audits    []*audit.Entry
	probe     decimal.Decimal

	nextAccount int64
	nextLog     int64
	nextOutbox  int64
	nextAudit   int64
}

func (s *memState) clone() *memState {
	c := *s
	c.accounts = make(map[int64]*account.Account, len(s.accounts))
	for no, acc := range s.accounts {
		cp := *acc
		c.accounts[no] = &cp
	}
	c.entries = append([]*ledger.Entry(nil), s.entries...)
	c.outbox = append([]*outbox.Message(nil), s.outbox...)
	c.audits = append([]*audit.Entry(nil), s.audits...)
	return &c
}

// memStore serializes transactions, so concurrent callers queue on Begin the
// way row locks would make them queue in Postgres.
type memStore struct {
	txMu sync.Mutex

	mu             sync.Mutex
	committed      *memState
	outsideAudits  []*audit.Entry
	lockCalls      [][]int64
	failRollbackTo map[string]error
	failEntryFor   map[int64]error
	released       []string
	commitErr      error
}

func newMemStore() *memStore {
	return &memStore{
		committed: &memState{
			accounts:    map[int64]*account.Account{},
			customers:   map[int64]bool{1: true},
			branches:    map[int64]bool{1: true},
			probe:       decimal.Zero,
			nextAccount: 100,
		},
		failRollbackTo: map[string]error{},
		failEntryFor:   map[int64]error{},
	}
}

func (s *memStore) addAccount(no int64, customerID int64, balance string, status account.Status) {
	s.committed.accounts[no] = &account.Account{
		Number:     no,
		CustomerID: customerID,
		BranchID:   1,
		Type:       account.TypeSaving,
		Balance:    decimal.RequireFromString(balance),
		Status:     status,
	}
}

func (s *memStore) balance(no int64) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.committed.accounts[no].Balance
}

func (s *memStore) entries() []*ledger.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*ledger.Entry(nil), s.committed.entries...)
}

func (s *memStore) outboxMessages() []*outbox.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*outbox.Message(nil), s.committed.outbox...)
}

// audits returns transactional audit rows followed by rollback audits written outside a transaction
func (s *memStore) audits() []*audit.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := append([]*audit.Entry(nil), s.committed.audits...)
	return append(all, s.outsideAudits...)
}

func (s *memStore) auditActions() []string {
	var actions []string
	for _, a := range s.audits() {
		actions = append(actions, a.Action)
	}
	return actions
}

func (s *memStore) releasedSavepoints() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.released...)
}

func (s *memStore) probeCounter() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.committed.probe
}

func (s *memStore) Begin(ctx context.Context) (pgx.Tx, error) {
	s.txMu.Lock()
	s.mu.Lock()
	work := s.committed.clone()
	s.mu.Unlock()
	return &fakeTx{store: s, work: work, savepoints: map[string]*memState{}}, nil
}

// fakeTx implements the parts of pgx.Tx the engine touches. Anything else panics on the nil embed.
type fakeTx struct {
	pgx.Tx
	store      *memStore
	work       *memState
	savepoints map[string]*memState
	done       bool
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	switch {
	case strings.Contains(sql, "set_config"):
		return pgconn.NewCommandTag("SELECT 1"), nil
	case strings.HasPrefix(sql, "SAVEPOINT "):
		t.savepoints[strings.TrimPrefix(sql, "SAVEPOINT ")] = t.work.clone()
		return pgconn.NewCommandTag("SAVEPOINT"), nil
	case strings.HasPrefix(sql, "ROLLBACK TO SAVEPOINT "):
		name := strings.TrimPrefix(sql, "ROLLBACK TO SAVEPOINT ")
		t.store.mu.Lock()
		injected := t.store.failRollbackTo[name]
		t.store.mu.Unlock()
		if injected != nil {
			return pgconn.CommandTag{}, injected
		}
		snapshot, ok := t.savepoints[name]
		if !ok {
			return pgconn.CommandTag{}, fmt.Errorf("savepoint %q does not exist", name)
		}
		t.work = snapshot.clone()
		return pgconn.NewCommandTag("ROLLBACK"), nil
	case strings.HasPrefix(sql, "RELEASE SAVEPOINT "):
		name := strings.TrimPrefix(sql, "RELEASE SAVEPOINT ")
		if _, ok := t.savepoints[name]; !ok {
			return pgconn.CommandTag{}, fmt.Errorf("savepoint %q does not exist", name)
		}
		delete(t.savepoints, name)
		t.store.mu.Lock()
		t.store.released = append(t.store.released, name)
		t.store.mu.Unlock()
		return pgconn.NewCommandTag("RELEASE"), nil
	}
	return pgconn.CommandTag{}, fmt.Errorf("unexpected statement %q", sql)
}

func (t *fakeTx) Commit(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	defer t.store.txMu.Unlock()

	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.store.commitErr != nil {
		return t.store.commitErr
	}
	t.store.committed = t.work
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.store.txMu.Unlock()
	return nil
}

func asFakeTx(tx pgx.Tx) *fakeTx {
	return tx.(*fakeTx)
}

// memAccounts implements account.Repository; engine calls always come through WithTx
type memAccounts struct {
	store *memStore
	tx    *fakeTx
}

func (r *memAccounts) WithTx(tx pgx.Tx) account.Repository {
	return &memAccounts{store: r.store, tx: asFakeTx(tx)}
}

func (r *memAccounts) state() *memState {
	if r.tx == nil {
		panic("account repository used outside a transaction")
	}
	return r.tx.work
}

func (r *memAccounts) Create(ctx context.Context, acc *account.Account) error {
	st := r.state()
	st.nextAccount++
	acc.Number = st.nextAccount
	cp := *acc
	st.accounts[acc.Number] = &cp
	return nil
}

func (r *memAccounts) GetByNumber(ctx context.Context, number int64) (*account.Account, error) {
	acc, ok := r.state().accounts[number]
	if !ok {
		return nil, account.ErrAccountNotFound{Number: number}
	}
	cp := *acc
	return &cp, nil
}

func (r *memAccounts) List(ctx context.Context, filter account.ListFilter) ([]*account.Account, error) {
	return nil, errors.New("not supported")
}

func (r *memAccounts) LockForUpdate(ctx context.Context, number int64) (*account.Account, error) {
	r.store.mu.Lock()
	r.store.lockCalls = append(r.store.lockCalls, []int64{number})
	r.store.mu.Unlock()
	return r.GetByNumber(ctx, number)
}

func (r *memAccounts) LockManyForUpdate(ctx context.Context, numbers []int64) (map[int64]*account.Account, error) {
	ordered := append([]int64(nil), numbers...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })
	r.store.mu.Lock()
	r.store.lockCalls = append(r.store.lockCalls, ordered)
	r.store.mu.Unlock()

	locked := make(map[int64]*account.Account, len(numbers))
	for _, no := range ordered {
		if acc, ok := r.state().accounts[no]; ok {
			cp := *acc
			locked[no] = &cp
		}
	}
	return locked, nil
}

func (r *memAccounts) AdjustBalance(ctx context.Context, number int64, delta decimal.Decimal) (decimal.Decimal, error) {
	acc, ok := r.state().accounts[number]
	if !ok {
		return decimal.Zero, account.ErrAccountNotFound{Number: number}
	}
	acc.Balance = acc.Balance.Add(delta)
	return acc.Balance, nil
}

func (r *memAccounts) GetBalance(ctx context.Context, number int64) (decimal.Decimal, error) {
	acc, ok := r.state().accounts[number]
	if !ok {
		return decimal.Zero, account.ErrAccountNotFound{Number: number}
	}
	return acc.Balance, nil
}

func (r *memAccounts) UpdateStatus(ctx context.Context, number int64, status account.Status) error {
	acc, ok := r.state().accounts[number]
	if !ok {
		return account.ErrAccountNotFound{Number: number}
	}
	acc.Status = status
	return nil
}

func (r *memAccounts) CustomerExists(ctx context.Context, customerID int64) (bool, error) {
	return r.state().customers[customerID], nil
}

func (r *memAccounts) BranchExists(ctx context.Context, branchID int64) (bool, error) {
	return r.state().branches[branchID], nil
}

func (r *memAccounts) CountNegative(ctx context.Context, numbers []int64) (int, error) {
	count := 0
	seen := map[int64]bool{}
	for _, no := range numbers {
		if acc, ok := r.state().accounts[no]; ok && !seen[no] && acc.Balance.IsNegative() {
			count++
		}
		seen[no] = true
	}
	return count, nil
}

type memLedger struct {
	store *memStore
	tx    *fakeTx
}

func (r *memLedger) WithTx(tx pgx.Tx) ledger.Repository {
	return &memLedger{store: r.store, tx: asFakeTx(tx)}
}

func (r *memLedger) Create(ctx context.Context, entry *ledger.Entry) error {
	r.store.mu.Lock()
	injected := r.store.failEntryFor[entry.AccountNo]
	r.store.mu.Unlock()
	if injected != nil {
		return injected
	}
	st := r.tx.work
	st.nextLog++
	entry.ID = st.nextLog
	st.entries = append(st.entries, entry)
	return nil
}

func (r *memLedger) List(ctx context.Context, limit int) ([]*ledger.Entry, error) {
	return nil, errors.New("not supported")
}

func (r *memLedger) ListByAccount(ctx context.Context, accountNo int64, direction ledger.Direction, limit int) ([]*ledger.Entry, error) {
	return nil, errors.New("not supported")
}

type memOutbox struct {
	store *memStore
	tx    *fakeTx
}

func (r *memOutbox) WithTx(tx pgx.Tx) outbox.Repository {
	return &memOutbox{store: r.store, tx: asFakeTx(tx)}
}

func (r *memOutbox) Create(ctx context.Context, msg *outbox.Message) error {
	st := r.tx.work
	st.nextOutbox++
	msg.ID = st.nextOutbox
	st.outbox = append(st.outbox, msg)
	return nil
}

func (r *memOutbox) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	return nil, errors.New("not supported")
}

func (r *memOutbox) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	return errors.New("not supported")
}

func (r *memOutbox) IncrementAttempts(ctx context.Context, id int64) error {
	return errors.New("not supported")
}

type memAudit struct {
	store *memStore
	tx    *fakeTx
}

func (r *memAudit) WithTx(tx pgx.Tx) audit.Repository {
	return &memAudit{store: r.store, tx: asFakeTx(tx)}
}

func (r *memAudit) Create(ctx context.Context, entry *audit.Entry) error {
	if r.tx != nil {
		r.tx.work.nextAudit++
		entry.ID = r.tx.work.nextAudit
		r.tx.work.audits = append(r.tx.work.audits, entry)
		return nil
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.outsideAudits = append(r.store.outsideAudits, entry)
	return nil
}

func (r *memAudit) List(ctx context.Context, filter audit.ListFilter) ([]*audit.Entry, error) {
	return r.store.audits(), nil
}

type memProbe struct {
	store *memStore
	tx    *fakeTx
}

func (r *memProbe) WithTx(tx pgx.Tx) probe.Repository {
	return &memProbe{store: r.store, tx: asFakeTx(tx)}
}

func (r *memProbe) Counter(ctx context.Context) (decimal.Decimal, error) {
	if r.tx != nil {
		return r.tx.work.probe, nil
	}
	return r.store.probeCounter(), nil
}

func (r *memProbe) Add(ctx context.Context, delta decimal.Decimal) (decimal.Decimal, error) {
	if r.tx == nil {
		return decimal.Zero, errors.New("probe updates need a transaction")
	}
	r.tx.work.probe = r.tx.work.probe.Add(delta)
	return r.tx.work.probe, nil
}

func (s *memStore) repositories() Repositories {
	return Repositories{
		Accounts: &memAccounts{store: s},
		Ledger:   &memLedger{store: s},
		Outbox:   &memOutbox{store: s},
		Audit:    &memAudit{store: s},
		Probe:    &memProbe{store: s},
	}
}
