package passhash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoded(t *testing.T) {
	e := NewEncoded(MustNew(WithIterations(MinIterations)))

	hashed, err := e.Hash("Secret123!")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(hashed), "$pbkdf2-sha256$i=1000$"))

	assert.True(t, e.Verify(string(hashed), "Secret123!"))
	assert.False(t, e.Verify(string(hashed), "Secret123?"))
	assert.False(t, e.Verify("", "Secret123!"))
	assert.False(t, e.Verify("$pbkdf2-sha256$broken", "Secret123!"))

	again, err := e.Hash("Secret123!")
	require.NoError(t, err)
	assert.NotEqual(t, hashed, again)
}

func TestEncoded_DefaultHasher(t *testing.T) {
	e := NewEncoded(nil)
	assert.True(t, e.Verify(correctHorseSeqRecord, "correct horse"))
}

func TestEncoded_PropagatesRandomnessFailure(t *testing.T) {
	e := NewEncoded(MustNew(WithCrypto(&fakeCrypto{randShort: true})))

	_, err := e.Hash("pw")
	assert.ErrorIs(t, err, ErrRandomnessUnavailable)
}
