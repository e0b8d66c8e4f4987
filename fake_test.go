package passhash

import (
	"bytes"
	"sync"
	"sync/atomic"
	"time"
)

// fakeCrypto is a deterministic Crypto. RandomBytes fills the n bytes with the
// 1-based call number; DeriveKey delegates to SystemCrypto unless told to fail.
type fakeCrypto struct {
	randErr     error
	randShort   bool
	deriveErr   error
	derivePanic bool
	deriveLen   int

	randCalls   atomic.Int32
	deriveCalls atomic.Int32
	equalCalls  atomic.Int32

	mu         sync.Mutex
	equalPairs [][2][]byte
}

func (f *fakeCrypto) RandomBytes(n int) ([]byte, error) {
	call := f.randCalls.Add(1)
	if f.randErr != nil {
		return nil, f.randErr
	}
	if f.randShort {
		n--
	}
	return bytes.Repeat([]byte{byte(call)}, n), nil
}

func (f *fakeCrypto) DeriveKey(password, salt []byte, iterations, keyLen int) ([]byte, error) {
	f.deriveCalls.Add(1)
	if f.derivePanic {
		panic("kdf exploded")
	}
	if f.deriveErr != nil {
		return nil, f.deriveErr
	}
	if f.deriveLen > 0 {
		keyLen = f.deriveLen
	}
	return SystemCrypto{}.DeriveKey(password, salt, iterations, keyLen)
}

func (f *fakeCrypto) Equal(a, b []byte) bool {
	f.equalCalls.Add(1)
	f.mu.Lock()
	f.equalPairs = append(f.equalPairs, [2][]byte{a, b})
	f.mu.Unlock()
	return SystemCrypto{}.Equal(a, b)
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}
