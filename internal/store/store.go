// Package store is the in-process entity store all pipeline components read
// from and write to. Writes go through single-writer transactions.
package store

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/fadilmartias/hiring-pipeline/internal/model"
	"github.com/google/uuid"
)

// ChangeSet lists every entity written by one committed transaction.
type ChangeSet struct {
	Clients        []model.Client
	Roles          []model.Role
	Requirements   []model.Requirement
	TAs            []model.TA
	Candidates     []model.Candidate
	Schedules      []model.ScheduleRecord
	Feedback       []model.FeedbackRecord
	Verifications  []model.VerificationSession
	RequirementIDs []uuid.UUID
}

// Empty reports whether nothing was written.
func (c ChangeSet) Empty() bool {
	return len(c.Clients)+len(c.Roles)+len(c.Requirements)+len(c.TAs)+
		len(c.Candidates)+len(c.Schedules)+len(c.Feedback)+len(c.Verifications) == 0
}

// Persister writes committed state to durable storage. Persist runs inside
// the write lock before the in-memory apply; an error aborts the commit.
type Persister interface {
	Persist(ctx context.Context, changes ChangeSet) error
	PersistAudit(ctx context.Context, entry model.AuditEntry) error
}

// CommitHook observes a transaction after it has been applied.
type CommitHook func(changes ChangeSet)

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithPersister(p Persister) Option {
	return func(s *Store) {
		s.persister = p
	}
}

func WithCommitHook(hook CommitHook) Option {
	return func(s *Store) {
		if hook != nil {
			s.hooks = append(s.hooks, hook)
		}
	}
}

// Store holds every entity of the pipeline.
type Store struct {
	mu sync.RWMutex

	clients       *table[model.Client]
	roles         *table[model.Role]
	requirements  *table[model.Requirement]
	tas           *table[model.TA]
	candidates    *table[model.Candidate]
	schedules     *table[model.ScheduleRecord]
	feedback      *table[model.FeedbackRecord]
	verifications *table[model.VerificationSession]
	revisions     map[uuid.UUID]uint64

	auditMu sync.Mutex
	audit   []model.AuditEntry

	persister Persister
	hooks     []CommitHook
	logger    *slog.Logger
}

// New builds an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		clients:       newTable[model.Client](nil),
		roles:         newTable[model.Role](nil),
		requirements:  newTable(model.Requirement.Clone),
		tas:           newTable(model.TA.Clone),
		candidates:    newTable(model.Candidate.Clone),
		schedules:     newTable(model.ScheduleRecord.Clone),
		feedback:      newTable(model.FeedbackRecord.Clone),
		verifications: newTable(model.VerificationSession.Clone),
		revisions:     map[uuid.UUID]uint64{},
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Update runs fn as one atomic unit. Writes staged by fn become visible only
// if fn and the commit checks succeed.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	changes, err := s.locked(func() (ChangeSet, error) {
		tx := s.begin(false)
		if err := fn(tx); err != nil {
			return ChangeSet{}, err
		}
		return s.commit(ctx, tx, true)
	})
	if err != nil {
		return err
	}
	s.notify(changes)
	return nil
}

// locked runs fn under the write lock. The lock is released even if fn
// panics.
func (s *Store) locked(fn func() (ChangeSet, error)) (ChangeSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// View runs fn against a consistent read-only snapshot.
func (s *Store) View(fn func(tx *Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.begin(true))
}

// Read is View for callbacks that cannot fail.
func (s *Store) Read(fn func(tx *Tx)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.begin(true))
}

// Hydrate loads previously persisted state without writing it back.
func (s *Store) Hydrate(ctx context.Context, snapshot ChangeSet, audit []model.AuditEntry) error {
	changes, err := s.locked(func() (ChangeSet, error) {
		tx := s.begin(false)
		for _, v := range snapshot.Clients {
			tx.PutClient(v)
		}
		for _, v := range snapshot.Roles {
			tx.PutRole(v)
		}
		for _, v := range snapshot.Requirements {
			tx.PutRequirement(v)
		}
		for _, v := range snapshot.TAs {
			tx.PutTA(v)
		}
		for _, v := range snapshot.Candidates {
			tx.PutCandidate(v)
		}
		for _, v := range snapshot.Schedules {
			tx.PutSchedule(v)
		}
		for _, v := range snapshot.Feedback {
			tx.PutFeedback(v)
		}
		for _, v := range snapshot.Verifications {
			tx.PutVerification(v)
		}
		return s.commit(ctx, tx, false)
	})
	if err != nil {
		return err
	}

	s.auditMu.Lock()
	s.audit = append(s.audit, audit...)
	sort.SliceStable(s.audit, func(i, j int) bool { return s.audit[i].At.Before(s.audit[j].At) })
	s.auditMu.Unlock()

	s.notify(changes)
	return nil
}

// Revision returns a counter that changes whenever the requirement, one of
// its candidates, or its TA is written.
func (s *Store) Revision(requirementID uuid.UUID) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revisions[requirementID]
}

// AppendAudit records an audit entry. It is independent of transactions so
// that failed attempts are recorded too.
func (s *Store) AppendAudit(ctx context.Context, entry model.AuditEntry) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	s.auditMu.Lock()
	s.audit = append(s.audit, entry)
	s.auditMu.Unlock()

	if s.persister != nil {
		if err := s.persister.PersistAudit(ctx, entry); err != nil {
			s.logger.Error("persist audit entry", "action", entry.Action, "error", err)
		}
	}
}

// Audit returns audit entries matching filter (nil matches all) in append order.
func (s *Store) Audit(filter func(model.AuditEntry) bool) []model.AuditEntry {
	s.auditMu.Lock()
	defer s.auditMu.Unlock()
	out := make([]model.AuditEntry, 0, len(s.audit))
	for _, entry := range s.audit {
		if filter == nil || filter(entry) {
			out = append(out, entry)
		}
	}
	return out
}

func (s *Store) begin(readOnly bool) *Tx {
	return &Tx{
		readOnly:      readOnly,
		clients:       newStaged(s.clients),
		roles:         newStaged(s.roles),
		requirements:  newStaged(s.requirements),
		tas:           newStaged(s.tas),
		candidates:    newStaged(s.candidates),
		schedules:     newStaged(s.schedules),
		feedback:      newStaged(s.feedback),
		verifications: newStaged(s.verifications),
	}
}

func (s *Store) commit(ctx context.Context, tx *Tx, persist bool) (ChangeSet, error) {
	touched := tx.touchedRequirements()
	if err := s.recompute(tx, touched); err != nil {
		s.logger.Error("store invariant violated", "error", err)
		return ChangeSet{}, err
	}
	changes := tx.changes(touched)
	if changes.Empty() {
		return changes, nil
	}
	if persist && s.persister != nil {
		if err := s.persister.Persist(ctx, changes); err != nil {
			return ChangeSet{}, err
		}
	}
	tx.apply()
	for _, id := range touched {
		s.revisions[id]++
	}
	return changes, nil
}

func (s *Store) notify(changes ChangeSet) {
	if changes.Empty() {
		return
	}
	for _, hook := range s.hooks {
		hook(changes)
	}
}
