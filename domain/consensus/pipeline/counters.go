package pipeline

import "sync/atomic"

// ProcessingCounters tracks the work done by the header processing
// pipeline. All fields are updated atomically, so a snapshot may be
// taken at any time without stopping the worker.
type ProcessingCounters struct {
	blocksSubmitted  uint64
	headersProcessed uint64
	depCounts        uint64
	mergesetCounts   uint64
	inputRejects     uint64
}

// NewProcessingCounters instantiates a new ProcessingCounters
func NewProcessingCounters() *ProcessingCounters {
	return &ProcessingCounters{}
}

// AddBlocksSubmitted increases the number of blocks submitted
// for processing
func (pc *ProcessingCounters) AddBlocksSubmitted(amount uint64) {
	atomic.AddUint64(&pc.blocksSubmitted, amount)
}

// AddHeadersProcessed increases the number of headers the pipeline
// fully committed
func (pc *ProcessingCounters) AddHeadersProcessed(amount uint64) {
	atomic.AddUint64(&pc.headersProcessed, amount)
}

// AddDepCounts increases the accumulated number of direct
// dependencies (parents) over all processed headers
func (pc *ProcessingCounters) AddDepCounts(amount uint64) {
	atomic.AddUint64(&pc.depCounts, amount)
}

// AddMergesetCounts increases the accumulated mergeset size over all
// processed headers
func (pc *ProcessingCounters) AddMergesetCounts(amount uint64) {
	atomic.AddUint64(&pc.mergesetCounts, amount)
}

// AddInputRejects increases the number of submitted blocks that were
// rejected due to input-level rule violations
func (pc *ProcessingCounters) AddInputRejects(amount uint64) {
	atomic.AddUint64(&pc.inputRejects, amount)
}

// ProcessingCountersSnapshot is a point-in-time copy of a
// ProcessingCounters
type ProcessingCountersSnapshot struct {
	BlocksSubmitted  uint64
	HeadersProcessed uint64
	DepCounts        uint64
	MergesetCounts   uint64
	InputRejects     uint64
}

// Snapshot returns a point-in-time copy of the counters
func (pc *ProcessingCounters) Snapshot() *ProcessingCountersSnapshot {
	return &ProcessingCountersSnapshot{
		BlocksSubmitted:  atomic.LoadUint64(&pc.blocksSubmitted),
		HeadersProcessed: atomic.LoadUint64(&pc.headersProcessed),
		DepCounts:        atomic.LoadUint64(&pc.depCounts),
		MergesetCounts:   atomic.LoadUint64(&pc.mergesetCounts),
		InputRejects:     atomic.LoadUint64(&pc.inputRejects),
	}
}
