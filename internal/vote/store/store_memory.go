package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"voteauth/internal/vote/models"
	id "voteauth/pkg/domain"
	"voteauth/pkg/platform/sentinel"
)

// In-memory stores back small elections and tests. They keep the same
// locking scope the PostgreSQL implementation gets from row locks:
// per-voter and per-kind, never global.

// InMemoryRecordStore keeps voter records in a map.
type InMemoryRecordStore struct {
	mu      sync.RWMutex
	records map[id.StudentID]*models.Record
}

// NewInMemoryRecordStore constructs an empty record store.
func NewInMemoryRecordStore() *InMemoryRecordStore {
	return &InMemoryRecordStore{records: make(map[id.StudentID]*models.Record)}
}

func (s *InMemoryRecordStore) Get(_ context.Context, studentID id.StudentID) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.records[studentID]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, fmt.Errorf("record %s: %w", studentID, sentinel.ErrNotFound)
}

func (s *InMemoryRecordStore) GetOrInitialize(_ context.Context, studentID id.StudentID, revision id.Revision) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.records[studentID]; ok {
		copied := *r
		return &copied, nil
	}
	r := models.NewRecord(studentID, revision, time.Now())
	s.records[studentID] = r
	copied := *r
	return &copied, nil
}

func (s *InMemoryRecordStore) Check(_ context.Context, studentID id.StudentID, revision id.Revision) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[studentID]
	if !ok {
		return fmt.Errorf("record %s: %w", studentID, sentinel.ErrNotFound)
	}
	return r.CheckPresented(revision)
}

// consume transitions a record to USED, creating it if absent. Callers
// hold the issuer's voter lock.
func (s *InMemoryRecordStore) consume(studentID id.StudentID, revision id.Revision, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[studentID]
	if !ok {
		r = models.NewRecord(studentID, revision, now)
		s.records[studentID] = r
	}
	return r.Consume(revision, now)
}

// InMemoryCodeStore keeps per-kind code pools. Each pool has its own
// lock so claims against different kinds proceed independently.
type InMemoryCodeStore struct {
	mu    sync.Mutex
	pools map[id.KindCode]*codePool
}

type codePool struct {
	mu    sync.Mutex
	codes []*models.AuthCode
}

// NewInMemoryCodeStore constructs an empty code store.
func NewInMemoryCodeStore() *InMemoryCodeStore {
	return &InMemoryCodeStore{pools: make(map[id.KindCode]*codePool)}
}

func (s *InMemoryCodeStore) pool(kind id.KindCode) *codePool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pools[kind]
	if !ok {
		p = &codePool{}
		s.pools[kind] = p
	}
	return p
}

func (s *InMemoryCodeStore) Add(_ context.Context, codes []models.AuthCode) error {
	for _, c := range codes {
		copied := c
		p := s.pool(c.Kind)
		p.mu.Lock()
		p.codes = append(p.codes, &copied)
		p.mu.Unlock()
	}
	return nil
}

func (s *InMemoryCodeStore) CountAvailable(_ context.Context, kind id.KindCode) (int, error) {
	p := s.pool(kind)
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.codes {
		if !c.Issued {
			n++
		}
	}
	return n, nil
}

// claimOne flips the first unissued code of the kind. Exactly one
// caller can win a given code; losers move on to the next or get
// ErrExhausted.
func (s *InMemoryCodeStore) claimOne(kind id.KindCode, now time.Time) (*models.AuthCode, error) {
	p := s.pool(kind)
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.codes {
		if !c.Issued {
			if err := c.MarkIssued(now); err != nil {
				return nil, err
			}
			copied := *c
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("kind %s: %w", kind, sentinel.ErrExhausted)
}

// MemoryIssuer composes the in-memory stores into the atomic issuance
// step. A striped per-voter lock serializes concurrent requests for the
// same credential; the code pools serialize per kind on their own.
type MemoryIssuer struct {
	records *InMemoryRecordStore
	codes   *InMemoryCodeStore
	voters  sync.Map // id.StudentID -> *sync.Mutex
}

// NewMemoryIssuer constructs an issuer over the given memory stores.
func NewMemoryIssuer(records *InMemoryRecordStore, codes *InMemoryCodeStore) *MemoryIssuer {
	return &MemoryIssuer{records: records, codes: codes}
}

func (i *MemoryIssuer) voterLock(studentID id.StudentID) *sync.Mutex {
	v, _ := i.voters.LoadOrStore(studentID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (i *MemoryIssuer) Issue(ctx context.Context, studentID id.StudentID, revision id.Revision, kind id.KindCode, now time.Time) (*models.AuthCode, error) {
	lock := i.voterLock(studentID)
	lock.Lock()
	defer lock.Unlock()

	// Re-validate under the voter lock; the pipeline's earlier check
	// may have raced with another station.
	if err := i.records.Check(ctx, studentID, revision); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, err
	}

	code, err := i.codes.claimOne(kind, now)
	if err != nil {
		// Exhausted: the record stays untouched so the voter can retry
		// once more codes are provisioned.
		return nil, err
	}

	if err := i.records.consume(studentID, revision, now); err != nil {
		// Unreachable while the voter lock is held; kept as a guard so
		// a future locking bug cannot silently hand out codes.
		return nil, fmt.Errorf("record consume after claim: %w", err)
	}
	return code, nil
}
