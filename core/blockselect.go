package core

import (
	"crypto/sha256"
	"encoding/binary"
)

// SelectBlockIndex implements the block-selection PRF:
//
//	index = SHA256("BLOCK_SELECT" || epoch_be32 || file_root ||
//	               client_pubkey)[0..6] as big-endian u48, mod num_blocks
//
// It forces hosts to hold every block of a file, not just sampled ones,
// since neither the client nor a spot-checker can predict which block will
// be demanded ahead of the epoch/file/pubkey triple being fixed.
func SelectBlockIndex(epoch uint32, fileRoot Hex32, clientPubkey Hex32, numBlocks int) (int, error) {
	if numBlocks <= 0 {
		return 0, NewError(TagInvalidField, "blockselect: numBlocks must be positive")
	}
	h := sha256.New()
	h.Write([]byte("BLOCK_SELECT"))
	var eb [4]byte
	binary.BigEndian.PutUint32(eb[:], epoch)
	h.Write(eb[:])
	h.Write([]byte(fileRoot))
	h.Write([]byte(clientPubkey))
	sum := h.Sum(nil)

	var u48 uint64
	for i := 0; i < 6; i++ {
		u48 = u48<<8 | uint64(sum[i])
	}
	return int(u48 % uint64(numBlocks)), nil
}
