package persistence

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	log "github.com/sirupsen/logrus"
)

var stateKey = []byte("remote/selected_room")

type BadgerOptions struct {
	Dir      string
	InMemory bool
}

// BadgerStateRepository keeps the state record in a badger database for
// boards whose flash is mounted without a writable plain file.
type BadgerStateRepository struct {
	db *badger.DB
}

func NewBadgerStateRepository(opts BadgerOptions) (*BadgerStateRepository, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("persistence: badger dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(opts.Dir).
		WithLogger(badgerLogger{}).
		WithSyncWrites(true)
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStateRepository{db: db}, nil
}

func (r *BadgerStateRepository) Load(_ context.Context) (int, bool, error) {
	var val []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(stateKey)
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if len(val) != RecordSize {
		return 0, false, fmt.Errorf("%w: %d bytes", ErrCorruptRecord, len(val))
	}
	return int(int32(binary.NativeEndian.Uint32(val))), true, nil
}

func (r *BadgerStateRepository) Save(_ context.Context, index int) error {
	var buf [RecordSize]byte
	binary.NativeEndian.PutUint32(buf[:], uint32(int32(index)))
	if err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(stateKey, buf[:])
	}); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func (r *BadgerStateRepository) Close() error {
	return r.db.Close()
}

// badgerLogger routes badger warnings and errors through logrus.
type badgerLogger struct{}

func (badgerLogger) Errorf(f string, v ...interface{})   { log.Errorf("[badger] "+f, v...) }
func (badgerLogger) Warningf(f string, v ...interface{}) { log.Warnf("[badger] "+f, v...) }
func (badgerLogger) Infof(string, ...interface{})        {}
func (badgerLogger) Debugf(string, ...interface{})       {}
