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
	mu      sync.Mutex
	entropy io.Reader
)

func init() {
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	// Monotonic entropy keeps ids generated within the same millisecond
	// lexicographically increasing.
	entropy = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns a ULID string. ULIDs sort by creation time, so offer and
// closed-trade listings keep submission order even after a store round-trip.
func New() string {
	mu.Lock()
	defer mu.Unlock()

	u, err := ulid.New(ulid.Timestamp(time.Now().UTC()), entropy)
	if err != nil {
		panic(err)
	}
	return u.String()
}
