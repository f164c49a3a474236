package confidential

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bw6-761/fr"
	"github.com/consensys/gnark-crypto/ecc/bw6-761/fr/mimc"
	"github.com/tuneinsight/lattigo/v4/rlwe"
)

// Ciphertext is a sealed numeric value bound to the field it was encrypted
// for. The raw ciphertext is reachable only from within this package.
type Ciphertext struct {
	Field FieldID
	ct    *rlwe.Ciphertext
}

// MarshalField serializes c for storage: field id length, field id, MiMC
// binding digest, then the ciphertext itself.
func MarshalField(c *Ciphertext) ([]byte, error) {
	raw, err := c.ct.MarshalBinary()
	if err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	var l [2]byte
	binary.BigEndian.PutUint16(l[:], uint16(len(c.Field)))
	buf.Write(l[:])
	buf.WriteString(string(c.Field))
	buf.Write(bindingDigest(c.Field, raw))
	buf.Write(raw)
	return buf.Bytes(), nil
}

// UnmarshalField parses a stored blob and verifies it is still bound to the
// expected field. A blob copied between rows or fields, or modified in
// place, fails with ErrIntegrity.
func UnmarshalField(field FieldID, data []byte) (*Ciphertext, error) {
	if len(data) < 2 {
		return nil, ErrIntegrity
	}
	fl := int(binary.BigEndian.Uint16(data[:2]))
	rest := data[2:]
	if len(rest) < fl+fr.Bytes {
		return nil, ErrIntegrity
	}
	stored := FieldID(rest[:fl])
	digest := rest[fl : fl+fr.Bytes]
	raw := rest[fl+fr.Bytes:]
	if stored != field {
		return nil, ErrIntegrity
	}
	if !bytes.Equal(digest, bindingDigest(field, raw)) {
		return nil, ErrIntegrity
	}
	ct := new(rlwe.Ciphertext)
	if err := ct.UnmarshalBinary(raw); err != nil {
		return nil, fmt.Errorf("ciphertext decode: %w", err)
	}
	return &Ciphertext{Field: field, ct: ct}, nil
}

// bindingDigest commits the ciphertext bytes to their field id.
func bindingDigest(field FieldID, raw []byte) []byte {
	pre := sha256.New()
	var l [2]byte
	binary.BigEndian.PutUint16(l[:], uint16(len(field)))
	pre.Write(l[:])
	pre.Write([]byte(field))
	pre.Write(raw)

	// left-pad the sha256 digest into one canonical field-element block
	var block [fr.Bytes]byte
	copy(block[fr.Bytes-sha256.Size:], pre.Sum(nil))
	h := mimc.NewMiMC()
	_, _ = h.Write(block[:])
	return h.Sum(nil)
}
