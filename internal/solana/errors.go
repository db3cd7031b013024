package solana

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRateLimited marks a call rejected because the endpoint throttled or
	// blocked us. It is the only error class that triggers endpoint rotation.
	ErrRateLimited = errors.New("endpoint rate limited")

	// ErrAllEndpointsFailed is reported when every configured endpoint has
	// been tried for a single logical call. Distinct from "zero holders".
	ErrAllEndpointsFailed = errors.New("all endpoints failed")
)

// IsRateLimited reports whether err is a rate-limit/blocked failure.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// rateLimitf builds a rate-limit classified error.
func rateLimitf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrRateLimited)...)
}

// classifyRPCError maps a JSON-RPC error onto the rotation taxonomy.
// Providers report throttling either through HTTP status or through RPC
// error messages; anything else is fatal to the call and must not rotate.
func classifyRPCError(e *rpcError) error {
	msg := strings.ToLower(e.Message)
	if strings.Contains(msg, "429") ||
		strings.Contains(msg, "403") ||
		strings.Contains(msg, "rate") ||
		strings.Contains(msg, "blocked") {
		return rateLimitf("rpc error %d: %s", e.Code, e.Message)
	}
	return e
}
