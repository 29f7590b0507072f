package crypto

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SHA-256 of "test chunk data"
const testDataHash = "34fa0947d659ce6343cbfe6be3a1ca882f6b21b35232210f194791d545440c40"

func TestHashBytes(t *testing.T) {
	assert.Equal(t, testDataHash, HashBytes([]byte("test chunk data")))
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", HashBytes(nil))
}

func TestHashReader_MatchesHashBytes(t *testing.T) {
	got, err := HashReader(strings.NewReader("test chunk data"))

	require.NoError(t, err)
	assert.Equal(t, testDataHash, got)
}

func TestHashReader_PropagatesError(t *testing.T) {
	_, err := HashReader(io.MultiReader(strings.NewReader("x"), errReader{}))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestCompareHash(t *testing.T) {
	assert.True(t, CompareHash(testDataHash, HashBytes([]byte("test chunk data"))))
	assert.False(t, CompareHash(testDataHash, HashBytes([]byte("other"))))
}

func TestDigestReader(t *testing.T) {
	payload := []byte("test chunk data")
	dr := NewDigestReader(bytes.NewReader(payload))

	var out bytes.Buffer
	_, err := io.Copy(&out, dr)

	require.NoError(t, err)
	assert.Equal(t, payload, out.Bytes())
	assert.Equal(t, testDataHash, dr.Sum())
	assert.Equal(t, int64(len(payload)), dr.Size())
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }
