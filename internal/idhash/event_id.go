package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeEventID computes a deterministic event id using SHA256.
// Formula: SHA256(wallet_address|signature|timestamp_ms)
// Returns hex-encoded hash (64 characters).
//
// The same observed transaction always hashes to the same id, so replaying
// a feed never duplicates stored events.
func ComputeEventID(walletAddress, signature string, timestampMs int64) string {
	data := fmt.Sprintf("%s|%s|%d", walletAddress, signature, timestampMs)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
