package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gagliardetto/solana-go"
	bolt "go.etcd.io/bbolt"
)

var accountsBucket = []byte("accounts")

// boltEnvelope is the on-disk account record.
type boltEnvelope struct {
	Kind Kind            `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// BoltStore is a Store backed by a bbolt database file. bbolt's update
// transactions give the commit-or-rollback semantics the program engine
// relies on.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (creating if needed) the database at path.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open account store %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(accountsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create accounts bucket: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// Close releases the underlying database file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Update(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(btx *bolt.Tx) error {
		return fn(&boltTx{bucket: btx.Bucket(accountsBucket)})
	})
}

func (s *BoltStore) View(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(btx *bolt.Tx) error {
		return fn(&boltTx{bucket: btx.Bucket(accountsBucket)})
	})
}

type boltTx struct {
	bucket *bolt.Bucket
}

func (tx *boltTx) Create(addr solana.PublicKey, kind Kind, rec any) error {
	if tx.bucket.Get(addr.Bytes()) != nil {
		return ErrAccountExists
	}
	return tx.put(addr, kind, rec)
}

func (tx *boltTx) Read(addr solana.PublicKey, rec any) error {
	raw := tx.bucket.Get(addr.Bytes())
	if raw == nil {
		return ErrAccountNotFound
	}
	var env boltEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode envelope at %s: %w", addr, err)
	}
	if err := json.Unmarshal(env.Data, rec); err != nil {
		return fmt.Errorf("decode %s record: %w", env.Kind, err)
	}
	return nil
}

func (tx *boltTx) Write(addr solana.PublicKey, rec any) error {
	raw := tx.bucket.Get(addr.Bytes())
	if raw == nil {
		return ErrAccountNotFound
	}
	var env boltEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode envelope at %s: %w", addr, err)
	}
	return tx.put(addr, env.Kind, rec)
}

func (tx *boltTx) Close(addr solana.PublicKey) error {
	if tx.bucket.Get(addr.Bytes()) == nil {
		return ErrAccountNotFound
	}
	return tx.bucket.Delete(addr.Bytes())
}

func (tx *boltTx) Exists(addr solana.PublicKey) bool {
	return tx.bucket.Get(addr.Bytes()) != nil
}

func (tx *boltTx) KindOf(addr solana.PublicKey) (Kind, error) {
	raw := tx.bucket.Get(addr.Bytes())
	if raw == nil {
		return "", ErrAccountNotFound
	}
	var env boltEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", fmt.Errorf("decode envelope at %s: %w", addr, err)
	}
	return env.Kind, nil
}

func (tx *boltTx) put(addr solana.PublicKey, kind Kind, rec any) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s record: %w", kind, err)
	}
	raw, err := json.Marshal(boltEnvelope{Kind: kind, Data: data})
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	return tx.bucket.Put(addr.Bytes(), raw)
}
