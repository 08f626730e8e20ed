package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/akashic/core"
)

// Key prefixes for different data types
const (
	documentPrefix        = "docrec"
	documentCreatedPrefix = "docrecc"
	documentIDSeq         = "docrecseq"
)

// makeDocumentKey generates a key for a submission by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentPrefix, id))
}

// makeDocumentCreatedKey generates a composite key for the creation-time index.
// Format: prefix:timestamp:id
func makeDocumentCreatedKey(createdAt time.Time, id core.ID) []byte {
	prefix := documentCreatedPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for timestamp + 8 bytes for ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(createdAt.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// documentIDFromCreatedKey extracts the submission ID from a creation-time
// index key.
func documentIDFromCreatedKey(key []byte) (core.ID, error) {
	prefixSize := len(documentCreatedPrefix) + 1
	if len(key) != prefixSize+16 {
		return 0, fmt.Errorf("malformed created index key of length %d", len(key))
	}
	return core.ID(binary.BigEndian.Uint64(key[prefixSize+8:])), nil
}
