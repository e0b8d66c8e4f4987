package passhash

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAsync(t *testing.T) {
	ctx := context.Background()
	h := MustNew()

	out := <-h.HashAsync(ctx, []byte("correct horse"), saltSeq32)
	require.NoError(t, out.Err)
	assert.Equal(t, correctHorseSeqHex, out.Record.Hash)

	ch := h.HashAsync(ctx, []byte("pw"), nil)
	<-ch
	_, open := <-ch
	assert.False(t, open)
}

func TestHashAsync_Error(t *testing.T) {
	h := MustNew(WithCrypto(&fakeCrypto{randErr: errors.New("boom")}))

	out := <-h.HashAsync(context.Background(), []byte("pw"), nil)
	assert.Nil(t, out.Record)
	assert.ErrorIs(t, out.Err, ErrRandomnessUnavailable)
}

func TestHashBatch(t *testing.T) {
	ctx := context.Background()
	h := MustNew(WithIterations(MinIterations), WithMaxConcurrent(3))

	passwords := [][]byte{[]byte("a"), []byte("b"), []byte("c"), []byte("a"), []byte("e"), []byte("f"), []byte("g")}
	records, err := h.HashBatch(ctx, passwords)
	require.NoError(t, err)
	require.Len(t, records, len(passwords))

	seen := map[string]bool{}
	for i, rec := range records {
		require.NotNil(t, rec)
		assert.False(t, seen[rec.Hash], "hashes must be unique thanks to fresh salts")
		seen[rec.Hash] = true

		ok, err := h.CompareHex(ctx, passwords[i], rec.Salt, rec.Hash)
		require.NoError(t, err)
		assert.True(t, ok, "record %d out of order", i)
	}
}

func TestHashBatch_Empty(t *testing.T) {
	records, err := MustNew().HashBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestHashBatch_JoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	h := MustNew(WithCrypto(&fakeCrypto{randErr: boom}))

	records, err := h.HashBatch(context.Background(), [][]byte{[]byte("a"), []byte("b")})
	assert.Nil(t, records)
	require.ErrorIs(t, err, ErrRandomnessUnavailable)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "password 0")
	assert.Contains(t, err.Error(), "password 1")
}

func TestHashBatch_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := MustNew(WithMaxConcurrent(1))
	// Hold the Hasher's only slot so no task can finish before cancellation
	// is observed by the scheduler.
	require.NoError(t, h.acquire(context.Background()))
	defer h.release()

	records, err := h.HashBatch(ctx, [][]byte{[]byte("a"), []byte("b"), []byte("c")})
	assert.Nil(t, records)
	assert.ErrorIs(t, err, ErrCanceled)
	assert.ErrorIs(t, err, context.Canceled)
}
