package headerprocessor_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	consensusdatabase "github.com/dagnet/dagd/domain/consensus/database"
	"github.com/dagnet/dagd/domain/consensus/datastructures/blockheaderstore"
	"github.com/dagnet/dagd/domain/consensus/datastructures/blockrelationstore"
	"github.com/dagnet/dagd/domain/consensus/datastructures/blockstatusstore"
	"github.com/dagnet/dagd/domain/consensus/datastructures/ghostdagdatastore"
	"github.com/dagnet/dagd/domain/consensus/datastructures/reachabilitydatastore"
	"github.com/dagnet/dagd/domain/consensus/model"
	"github.com/dagnet/dagd/domain/consensus/model/externalapi"
	"github.com/dagnet/dagd/domain/consensus/pipeline"
	"github.com/dagnet/dagd/domain/consensus/pipeline/headerprocessor"
	"github.com/dagnet/dagd/domain/consensus/processes/dagtopologymanager"
	"github.com/dagnet/dagd/domain/consensus/processes/ghostdagmanager"
	"github.com/dagnet/dagd/domain/consensus/processes/reachabilitymanager"
	"github.com/dagnet/dagd/domain/consensus/utils/consensushashing"
	"github.com/dagnet/dagd/domain/dagconfig"
	"github.com/dagnet/dagd/infrastructure/db/database/ldb"
)

type testPipeline struct {
	processor        *headerprocessor.HeaderProcessor
	tasks            chan headerprocessor.BlockTask
	counters         *pipeline.ProcessingCounters
	blockStatusStore model.BlockStatusStore
	databaseContext  model.DBManager
	params           *dagconfig.Params
}

// setupTestPipeline wires a header processor over a real database with
// a task queue of the given capacity, without spawning the worker.
func setupTestPipeline(t *testing.T, queueSize int) *testPipeline {
	t.Helper()

	db, err := ldb.NewLevelDB(t.TempDir())
	if err != nil {
		t.Fatalf("NewLevelDB: %+v", err)
	}
	t.Cleanup(func() {
		err := db.Close()
		if err != nil {
			t.Fatalf("Close: %+v", err)
		}
	})
	databaseContext := consensusdatabase.New(db)
	params := &dagconfig.SimnetParams

	blockHeaderStore, err := blockheaderstore.New(databaseContext, 100)
	if err != nil {
		t.Fatalf("blockheaderstore.New: %+v", err)
	}
	blockStatusStore := blockstatusstore.New(100)
	blockRelationStore := blockrelationstore.New(100)
	ghostdagDataStore := ghostdagdatastore.New(100)
	reachabilityDataStore := reachabilitydatastore.New(100)

	reachabilityManager := reachabilitymanager.New(
		databaseContext, ghostdagDataStore, reachabilityDataStore)
	dagTopologyManager := dagtopologymanager.New(
		databaseContext, reachabilityManager, blockRelationStore)
	ghostdagManager := ghostdagmanager.New(
		databaseContext, dagTopologyManager, ghostdagDataStore, blockHeaderStore, params.K)

	dbTx, err := databaseContext.Begin()
	if err != nil {
		t.Fatalf("Begin: %+v", err)
	}
	defer dbTx.RollbackUnlessClosed()
	err = reachabilityManager.Init(dbTx)
	if err != nil {
		t.Fatalf("reachabilityManager.Init: %+v", err)
	}
	err = dbTx.Commit()
	if err != nil {
		t.Fatalf("Commit: %+v", err)
	}

	counters := pipeline.NewProcessingCounters()
	tasks := make(chan headerprocessor.BlockTask, queueSize)
	processor := headerprocessor.New(
		databaseContext,
		params.GenesisHeader,
		blockHeaderStore,
		blockStatusStore,
		blockRelationStore,
		ghostdagDataStore,
		ghostdagManager,
		reachabilityManager,
		counters,
		tasks)

	err = processor.ProcessGenesisIfNeeded()
	if err != nil {
		t.Fatalf("ProcessGenesisIfNeeded: %+v", err)
	}

	return &testPipeline{
		processor:        processor,
		tasks:            tasks,
		counters:         counters,
		blockStatusStore: blockStatusStore,
		databaseContext:  databaseContext,
		params:           params,
	}
}

// TestWorkerBackpressure submits more tasks than the queue capacity
// from a separate goroutine while the worker is not yet running. The
// submitter must block once the queue is full, resume when the worker
// drains, and every accepted task must eventually be processed.
func TestWorkerBackpressure(t *testing.T) {
	queueSize := 1
	tp := setupTestPipeline(t, queueSize)

	blockAmount := 5
	headers := make([]*externalapi.DomainBlockHeader, blockAmount)
	hashes := make([]*externalapi.DomainHash, blockAmount)
	parent := tp.params.GenesisHash()
	for i := 0; i < blockAmount; i++ {
		headers[i] = &externalapi.DomainBlockHeader{
			ParentHashes:       []*externalapi.DomainHash{parent},
			Bits:               tp.params.GenesisHeader.Bits,
			TimeInMilliseconds: int64(i + 1),
		}
		hashes[i] = consensushashing.HeaderHash(headers[i])
		parent = hashes[i]
	}

	var submitted uint64
	submitDone := make(chan struct{})
	go func() {
		defer close(submitDone)
		for _, header := range headers {
			tp.tasks <- &headerprocessor.ProcessBlockTask{Header: header}
			atomic.AddUint64(&submitted, 1)
		}
		tp.tasks <- &headerprocessor.ExitTask{}
	}()

	// Without a running worker the submitter can complete at most
	// queueSize sends before blocking on the full queue.
	for atomic.LoadUint64(&submitted) < uint64(queueSize) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
	if got := atomic.LoadUint64(&submitted); got != uint64(queueSize) {
		t.Fatalf("expected the submitter to block after %d sends but "+
			"%d sends completed", queueSize, got)
	}

	var workerDone sync.WaitGroup
	workerDone.Add(1)
	go func() {
		defer workerDone.Done()
		tp.processor.Worker()
	}()

	select {
	case <-submitDone:
	case <-time.After(time.Minute):
		t.Fatalf("the submitter is still blocked with a running worker")
	}
	workerDone.Wait()

	// No accepted task was dropped: every block was fully processed.
	for i, hash := range hashes {
		status, err := tp.blockStatusStore.Get(tp.databaseContext, hash)
		if err != nil {
			t.Fatalf("Get status of block #%d: %+v", i+1, err)
		}
		if status != model.StatusHeaderOnly {
			t.Fatalf("expected block #%d to have status %s but got %s",
				i+1, model.StatusHeaderOnly, status)
		}
	}
	snapshot := tp.counters.Snapshot()
	expectedHeadersProcessed := uint64(blockAmount + 1) // including genesis
	if snapshot.HeadersProcessed != expectedHeadersProcessed {
		t.Fatalf("expected %d processed headers but got %d",
			expectedHeadersProcessed, snapshot.HeadersProcessed)
	}
}
