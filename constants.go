package parjson

import "time"

const (
	// Planner thresholds
	DefaultMinParallelTokens = 4096 // Below this many tokens parsing stays on one worker
	DefaultMinParallelEvents = 4096 // Below this many events serialization stays on one worker
	MaxThreads               = 256

	// Size limits
	DefaultMaxJSONSize     = 1 << 30
	DefaultMaxNestingDepth = 512
	MaxPathLength          = 4096

	// Writer buffers
	DefaultSegmentBufferSize = 4096
	// Rough output bytes per event, used to pre-size segment buffers
	bytesPerEventHint = 8
)

// Operations slower than this are logged as warnings
const SlowOperationThreshold = 100 * time.Millisecond
