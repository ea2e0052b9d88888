package headerprocessor

import (
	"github.com/dagnet/dagd/domain/consensus/model/externalapi"
)

// BlockTask is a unit of work submitted to the header processing
// worker. It is either a header to process or an exit signal.
type BlockTask interface {
	isBlockTask()
}

// ProcessBlockTask requests the worker to validate and insert the
// given header.
type ProcessBlockTask struct {
	Header *externalapi.DomainBlockHeader
}

func (*ProcessBlockTask) isBlockTask() {}

// ExitTask requests the worker to drain nothing further and stop.
// Tasks queued before the ExitTask are still processed in order.
type ExitTask struct{}

func (*ExitTask) isBlockTask() {}
