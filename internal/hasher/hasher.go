package hasher

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/cespare/xxhash/v2"
)

// Hash32 is the 32-bit content fingerprint used to skip reprocessing
// artwork whose bytes have not changed. The 64-bit xxHash is folded by
// XORing its halves.
func Hash32(data []byte) uint32 {
	return fold(xxhash.Sum64(data))
}

// ContentHash computes the xxHash64 of data and returns a hex string
// truncated to the given length. Texture files are named with 16 hex
// chars.
func ContentHash(data []byte, hexLen int) string {
	full := hex.EncodeToString(binary.BigEndian.AppendUint64(nil, xxhash.Sum64(data)))
	if hexLen > 0 && hexLen < len(full) {
		return full[:hexLen]
	}
	return full
}

func fold(v uint64) uint32 {
	return uint32(v>>32) ^ uint32(v)
}
