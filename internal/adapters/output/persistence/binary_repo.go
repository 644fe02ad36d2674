package persistence

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
)

// RecordSize is the size of the persisted state record: one int32 in native
// byte order.
const RecordSize = 4

var ErrCorruptRecord = errors.New("state record has unexpected size")

type BinaryStateRepository struct {
	filepath string
	mu       sync.Mutex
}

func NewBinaryStateRepository(filepath string) *BinaryStateRepository {
	return &BinaryStateRepository{filepath: filepath}
}

func (r *BinaryStateRepository) Load(ctx context.Context) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	if len(data) != RecordSize {
		return 0, false, fmt.Errorf("%w: %d bytes", ErrCorruptRecord, len(data))
	}
	return int(int32(binary.NativeEndian.Uint32(data))), true, nil
}

// Save overwrites the record in place and returns only after the data is
// synced and the file closed.
func (r *BinaryStateRepository) Save(ctx context.Context, index int) error {
	if index < math.MinInt32 || index > math.MaxInt32 {
		return fmt.Errorf("index %d does not fit the state record", index)
	}
	var buf [RecordSize]byte
	binary.NativeEndian.PutUint32(buf[:], uint32(int32(index)))

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.filepath, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteAt(buf[:], 0); err != nil {
		f.Close()
		return err
	}
	if err := f.Truncate(RecordSize); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
