package instance

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// fingerprintKey is the BLAKE3 key for instance fingerprints: the ASCII
// domain name zero-padded to 32 bytes. Changing it changes every lock name.
var fingerprintKey = [32]byte{
	'm', 'j', 'h', 'n', 'k', 'n', '.', 'i', 'n', 's', 't', 'a', 'n', 'c', 'e',
}

// Fingerprint returns a stable hex digest of args. Each argument is length
// prefixed so that ("ab", "c") and ("a", "bc") hash differently.
func Fingerprint(args ...string) string {
	// NewKeyed only fails for keys that are not 32 bytes long.
	hasher, err := blake3.NewKeyed(fingerprintKey[:])
	if err != nil {
		panic("instance: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	var prefix [8]byte
	for _, arg := range args {
		binary.BigEndian.PutUint64(prefix[:], uint64(len(arg)))
		hasher.Write(prefix[:])
		hasher.Write([]byte(arg))
	}
	return hex.EncodeToString(hasher.Sum(nil))
}
