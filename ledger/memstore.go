package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
)

type record struct {
	kind Kind
	data []byte
}

// MemStore is an in-memory Store with copy-on-write transactions. Used by
// tests and by callers that do not need persistence.
type MemStore struct {
	mu       sync.Mutex
	accounts map[solana.PublicKey]record
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{accounts: make(map[solana.PublicKey]record)}
}

// Update runs fn in a transaction. Writes are staged in an overlay and only
// applied to the base map when fn returns nil.
func (s *MemStore) Update(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{base: s.accounts, staged: make(map[solana.PublicKey]*record)}
	if err := fn(tx); err != nil {
		return err
	}
	for addr, rec := range tx.staged {
		if rec == nil {
			delete(s.accounts, addr)
		} else {
			s.accounts[addr] = *rec
		}
	}
	return nil
}

// View runs fn against a read-only snapshot. Writes through the Tx fail.
func (s *MemStore) View(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&memTx{base: s.accounts, readOnly: true})
}

// memTx overlays staged writes on the base map. A nil staged entry marks a
// closed account.
type memTx struct {
	base     map[solana.PublicKey]record
	staged   map[solana.PublicKey]*record
	readOnly bool
}

func (tx *memTx) lookup(addr solana.PublicKey) (record, bool) {
	if rec, ok := tx.staged[addr]; ok {
		if rec == nil {
			return record{}, false
		}
		return *rec, true
	}
	rec, ok := tx.base[addr]
	return rec, ok
}

func (tx *memTx) Create(addr solana.PublicKey, kind Kind, rec any) error {
	if tx.readOnly {
		return fmt.Errorf("create %s: read-only transaction", addr)
	}
	if _, ok := tx.lookup(addr); ok {
		return ErrAccountExists
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s record: %w", kind, err)
	}
	tx.staged[addr] = &record{kind: kind, data: data}
	return nil
}

func (tx *memTx) Read(addr solana.PublicKey, rec any) error {
	stored, ok := tx.lookup(addr)
	if !ok {
		return ErrAccountNotFound
	}
	if err := json.Unmarshal(stored.data, rec); err != nil {
		return fmt.Errorf("decode %s record: %w", stored.kind, err)
	}
	return nil
}

func (tx *memTx) Write(addr solana.PublicKey, rec any) error {
	if tx.readOnly {
		return fmt.Errorf("write %s: read-only transaction", addr)
	}
	stored, ok := tx.lookup(addr)
	if !ok {
		return ErrAccountNotFound
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s record: %w", stored.kind, err)
	}
	tx.staged[addr] = &record{kind: stored.kind, data: data}
	return nil
}

func (tx *memTx) Close(addr solana.PublicKey) error {
	if tx.readOnly {
		return fmt.Errorf("close %s: read-only transaction", addr)
	}
	if _, ok := tx.lookup(addr); !ok {
		return ErrAccountNotFound
	}
	tx.staged[addr] = nil
	return nil
}

func (tx *memTx) Exists(addr solana.PublicKey) bool {
	_, ok := tx.lookup(addr)
	return ok
}

func (tx *memTx) KindOf(addr solana.PublicKey) (Kind, error) {
	stored, ok := tx.lookup(addr)
	if !ok {
		return "", ErrAccountNotFound
	}
	return stored.kind, nil
}
