// Package id hands out ULIDs for journaled positions.
package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns a ULID stamped with the current time.
func New() string {
	return At(time.Now())
}

// At returns a ULID stamped with t, so IDs of positions sort by the time
// they closed. A zero t falls back to the current time. IDs minted for the
// same millisecond keep increasing.
func At(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}

	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(t.UTC()), mono)
	if err != nil {
		// only possible for a timestamp past year 10889
		panic(err)
	}
	return id.String()
}
