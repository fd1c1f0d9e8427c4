package consts

import "time"

// Timeouts and intervals.
const (
	DefaultStallTimeout  = 60 * time.Second
	SearchRequestTimeout = 15 * time.Second
	ThumbFetchTimeout    = 10 * time.Second
	StallCheckInterval   = time.Second
)

// DefaultMaxConcurrent is the default ceiling on simultaneous transfers (0 = unlimited).
const DefaultMaxConcurrent = 2
