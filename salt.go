package passhash

import (
	"bytes"
	"fmt"
)

func (h *Hasher) resolveSalt(salt []byte) ([]byte, error) {
	if salt != nil {
		return bytes.Clone(salt), nil
	}

	s, err := h.crypto.RandomBytes(h.params.SaltLength)
	if err != nil {
		return nil, randomnessError(err)
	}
	if len(s) != h.params.SaltLength {
		return nil, randomnessError(fmt.Errorf("short read: got %d of %d bytes", len(s), h.params.SaltLength))
	}
	return s, nil
}
