package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
)

func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func HashReader(r io.Reader) (string, error) {
	hasher := sha256.New()

	if _, err := io.Copy(hasher, r); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

func CompareHash(expected, computed string) bool {
	return expected == computed
}

// DigestReader hashes and counts everything read through it.
type DigestReader struct {
	r      io.Reader
	hasher hash.Hash
	n      int64
}

func NewDigestReader(r io.Reader) *DigestReader {
	hasher := sha256.New()
	return &DigestReader{
		r:      io.TeeReader(r, hasher),
		hasher: hasher,
	}
}

func (d *DigestReader) Read(p []byte) (int, error) {
	n, err := d.r.Read(p)
	d.n += int64(n)
	return n, err
}

// Sum returns the hex SHA-256 of the bytes read so far.
func (d *DigestReader) Sum() string {
	return hex.EncodeToString(d.hasher.Sum(nil))
}

func (d *DigestReader) Size() int64 {
	return d.n
}
