package passhash

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const correctHorseSeqRecord = "$pbkdf2-sha256$i=10000$AAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8$" +
	"2aaf07f4784f63a278ed37cf759d4595412c3ca0ffe44a8a05ce440eed65efed"

func TestRecord_String(t *testing.T) {
	rec := &Record{Salt: saltSeq32, Hash: correctHorseSeqHex, Iterations: DefaultIterations}
	assert.Equal(t, correctHorseSeqRecord, rec.String())
}

func TestParseRecord(t *testing.T) {
	rec, err := ParseRecord(correctHorseSeqRecord)
	require.NoError(t, err)
	assert.Equal(t, saltSeq32, rec.Salt)
	assert.Equal(t, correctHorseSeqHex, rec.Hash)
	assert.Equal(t, DefaultIterations, rec.Iterations)

	upper, err := ParseRecord(strings.ToUpper(correctHorseSeqRecord[:17]) + correctHorseSeqRecord[17:])
	assert.Error(t, err, "scheme is case sensitive")
	assert.Nil(t, upper)

	rec, err = ParseRecord("$pbkdf2-sha256$i=1000$$" + strings.Repeat("AB", MinKeyLength))
	require.NoError(t, err)
	assert.Empty(t, rec.Salt)
	assert.Equal(t, strings.Repeat("ab", MinKeyLength), rec.Hash)
}

func TestParseRecord_Malformed(t *testing.T) {
	tests := []string{
		"",
		"plain",
		"pbkdf2-sha256$i=10000$AAEC$abcd",
		"$pbkdf2-sha256$i=10000$AAEC",
		"$pbkdf2-sha256$i=10000$AAEC$abcd$extra",
		"$argon2id$i=10000$AAEC$abcd",
		"$pbkdf2-sha256$10000$AAEC$abcd",
		"$pbkdf2-sha256$i=ten$AAEC$abcd",
		"$pbkdf2-sha256$i=10000x$AAEC$abcd",
		"$pbkdf2-sha256$i=0$AAEC$abcd",
		"$pbkdf2-sha256$i=-3$AAEC$abcd",
		"$pbkdf2-sha256$i=10000$!!!$abcd",
		"$pbkdf2-sha256$i=10000$AAEC$xyz1",
		"$pbkdf2-sha256$i=10000$AAEC$abc",
		"$pbkdf2-sha256$i=10000$AAEC$",
		"$pbkdf2-sha256$i=999$AAEC$" + strings.Repeat("ab", DefaultKeyLength),
		"$pbkdf2-sha256$i=1000001$AAEC$" + strings.Repeat("ab", DefaultKeyLength),
		"$pbkdf2-sha256$i=10000$AAEC$" + strings.Repeat("ab", MinKeyLength-1),
		"$pbkdf2-sha256$i=10000$AAEC$" + strings.Repeat("ab", MaxKeyLength+1),
		"$pbkdf2-sha256$i=10000$AAEC$" + strings.Repeat("00", 64<<10),
	}

	for _, in := range tests {
		name := in
		if len(name) > 64 {
			name = name[:64]
		}
		t.Run(name, func(t *testing.T) {
			rec, err := ParseRecord(in)
			assert.Nil(t, rec)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestRecord_HashBytes_Invalid(t *testing.T) {
	_, err := (&Record{Hash: "zz"}).HashBytes()
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestHasher_Verify(t *testing.T) {
	ctx := context.Background()
	h := MustNew()

	ok, err := h.Verify(ctx, []byte("correct horse"), correctHorseSeqRecord)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(ctx, []byte("wrong horse"), correctHorseSeqRecord)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = h.Verify(ctx, []byte("correct horse"), "garbage")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestHasher_Verify_UsesRecordParameters(t *testing.T) {
	ctx := context.Background()
	old := MustNew(WithIterations(2000), WithKeyLength(20))
	current := MustNew()

	rec, err := old.Hash(ctx, []byte("pw"), nil)
	require.NoError(t, err)

	ok, err := current.Verify(ctx, []byte("pw"), rec.String())
	require.NoError(t, err)
	assert.True(t, ok)

	assert.True(t, current.NeedsRehash(rec.String()))
	assert.False(t, old.NeedsRehash(rec.String()))
}

func TestHasher_NeedsRehash(t *testing.T) {
	ctx := context.Background()
	h := MustNew()

	fresh, err := h.Hash(ctx, []byte("pw"), nil)
	require.NoError(t, err)
	shortSalt, err := h.Hash(ctx, []byte("pw"), []byte("short"))
	require.NoError(t, err)

	assert.False(t, h.NeedsRehash(fresh.String()))
	assert.False(t, h.NeedsRehash(correctHorseSeqRecord))
	assert.True(t, h.NeedsRehash(shortSalt.String()))
	assert.True(t, h.NeedsRehash("not a record"))
	assert.True(t, MustNew(WithIterations(20000)).NeedsRehash(fresh.String()))
}

func TestParseRecord_Bounds(t *testing.T) {
	salt := "AAECAwQFBgcICQoLDA0ODw"

	tests := []struct {
		name    string
		iter    int
		keyLen  int
		wantErr bool
	}{
		{"minimum iterations", MinIterations, DefaultKeyLength, false},
		{"maximum iterations", MaxIterations, DefaultKeyLength, false},
		{"iterations below minimum", MinIterations - 1, DefaultKeyLength, true},
		{"iterations above maximum", MaxIterations + 1, DefaultKeyLength, true},
		{"shortest key", DefaultIterations, MinKeyLength, false},
		{"longest key", DefaultIterations, MaxKeyLength, false},
		{"key too short", DefaultIterations, MinKeyLength - 1, true},
		{"key too long", DefaultIterations, MaxKeyLength + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := fmt.Sprintf("$pbkdf2-sha256$i=%d$%s$%s", tt.iter, salt, strings.Repeat("0f", tt.keyLen))
			rec, err := ParseRecord(in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidArgument)
				assert.Nil(t, rec)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.iter, rec.Iterations)
		})
	}
}

func TestHasher_Verify_RejectsWeakRecord(t *testing.T) {
	ctx := context.Background()
	fc := &fakeCrypto{}
	h := MustNew(WithCrypto(fc))

	// PBKDF2-HMAC-SHA256("pw", "s", 1, 4) and the same with a 32-byte output.
	tests := []string{
		"$pbkdf2-sha256$i=1$cw$48891523",
		"$pbkdf2-sha256$i=1$cw$48891523bd04e433c0ebbb355dfab3be9c8b26eec738298c1f60d4905e940c83",
		"$pbkdf2-sha256$i=10000$cw$48891523",
	}

	for _, in := range tests {
		ok, err := h.Verify(ctx, []byte("pw"), in)
		assert.ErrorIs(t, err, ErrInvalidArgument, in)
		assert.False(t, ok, in)
	}
	assert.Zero(t, fc.deriveCalls.Load(), "rejected records must not be derived")
}
