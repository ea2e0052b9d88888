package consensus

import (
	"sync"
	"sync/atomic"

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
	"github.com/dagnet/dagd/domain/consensus/services"
	"github.com/dagnet/dagd/domain/dagconfig"
	infrastructuredatabase "github.com/dagnet/dagd/infrastructure/db/database"
	"github.com/pkg/errors"
)

const (
	// defaultBlockTaskQueueSize is the capacity of the header
	// processing task queue. Submissions beyond this capacity block
	// the caller until the worker catches up.
	defaultBlockTaskQueueSize = 2000

	// defaultCacheSize is the number of items each store keeps in
	// its in-memory cache.
	defaultCacheSize = 100000
)

// Consensus is the entry point of the blockDAG consensus core. It
// wires the stores, managers and the header processing pipeline
// together, and exposes read services that may be used concurrently
// with block processing.
type Consensus struct {
	databaseContext model.DBManager
	params          *dagconfig.Params

	blockHeaderStore      model.BlockHeaderStore
	blockStatusStore      model.BlockStatusStore
	blockRelationStore    model.BlockRelationStore
	ghostdagDataStore     model.GHOSTDAGDataStore
	reachabilityDataStore model.ReachabilityDataStore

	reachabilityManager model.ReachabilityManager
	dagTopologyManager  model.DAGTopologyManager
	ghostdagManager     model.GHOSTDAGManager

	headerProcessor *headerprocessor.HeaderProcessor
	tasks           chan headerprocessor.BlockTask
	counters        *pipeline.ProcessingCounters

	statusesService     *services.StatusesService
	relationsService    *services.RelationsService
	reachabilityService *services.ReachabilityService
	ghostdagService     *services.GHOSTDAGService

	started      uint32
	shuttingDown uint32
	exitOnce     sync.Once
	workerDone   sync.WaitGroup
}

// New instantiates a new Consensus over the given database with the
// given network parameters
func New(db infrastructuredatabase.Database, params *dagconfig.Params) (*Consensus, error) {
	databaseContext := consensusdatabase.New(db)

	blockHeaderStore, err := blockheaderstore.New(databaseContext, defaultCacheSize)
	if err != nil {
		return nil, err
	}
	blockStatusStore := blockstatusstore.New(defaultCacheSize)
	blockRelationStore := blockrelationstore.New(defaultCacheSize)
	ghostdagDataStore := ghostdagdatastore.New(defaultCacheSize)
	reachabilityDataStore := reachabilitydatastore.New(defaultCacheSize)

	reachabilityManager := reachabilitymanager.New(
		databaseContext,
		ghostdagDataStore,
		reachabilityDataStore)
	dagTopologyManager := dagtopologymanager.New(
		databaseContext,
		reachabilityManager,
		blockRelationStore)
	ghostdagManager := ghostdagmanager.New(
		databaseContext,
		dagTopologyManager,
		ghostdagDataStore,
		blockHeaderStore,
		params.K)

	counters := pipeline.NewProcessingCounters()
	tasks := make(chan headerprocessor.BlockTask, defaultBlockTaskQueueSize)

	headerProcessor := headerprocessor.New(
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

	return &Consensus{
		databaseContext:       databaseContext,
		params:                params,
		blockHeaderStore:      blockHeaderStore,
		blockStatusStore:      blockStatusStore,
		blockRelationStore:    blockRelationStore,
		ghostdagDataStore:     ghostdagDataStore,
		reachabilityDataStore: reachabilityDataStore,
		reachabilityManager:   reachabilityManager,
		dagTopologyManager:    dagTopologyManager,
		ghostdagManager:       ghostdagManager,
		headerProcessor:       headerProcessor,
		tasks:                 tasks,
		counters:              counters,
		statusesService:       services.NewStatusesService(databaseContext, blockStatusStore),
		relationsService:      services.NewRelationsService(databaseContext, blockRelationStore),
		reachabilityService:   services.NewReachabilityService(reachabilityManager),
		ghostdagService:       services.NewGHOSTDAGService(ghostdagManager),
	}, nil
}

// Init initializes the consensus: it verifies the reachability index,
// processes the genesis block if the database is fresh, and spawns the
// header processing worker. Init must be called exactly once before
// any block is submitted.
func (c *Consensus) Init() error {
	if !atomic.CompareAndSwapUint32(&c.started, 0, 1) {
		return errors.New("consensus was already initialized")
	}

	dbTx, err := c.databaseContext.Begin()
	if err != nil {
		return err
	}
	defer dbTx.RollbackUnlessClosed()

	err = c.reachabilityManager.Init(dbTx)
	if err != nil {
		return err
	}
	err = dbTx.Commit()
	if err != nil {
		return err
	}

	err = c.headerProcessor.ProcessGenesisIfNeeded()
	if err != nil {
		return err
	}

	c.workerDone.Add(1)
	spawn("header-processor-worker", func() {
		defer c.workerDone.Done()
		c.headerProcessor.Worker()
	})

	log.Infof("Consensus initialized for %s with genesis %s",
		c.params.Name, c.params.GenesisHash())
	return nil
}

// ValidateAndInsertBlock submits the given block header for
// processing. Headers are processed asynchronously and strictly in
// submission order. When the task queue is full this call blocks,
// applying backpressure on the submitter.
func (c *Consensus) ValidateAndInsertBlock(header *externalapi.DomainBlockHeader) error {
	if atomic.LoadUint32(&c.started) == 0 {
		return errors.New("consensus is not initialized")
	}
	if atomic.LoadUint32(&c.shuttingDown) != 0 {
		return errors.New("consensus is shutting down")
	}

	c.counters.AddBlocksSubmitted(1)
	c.tasks <- &headerprocessor.ProcessBlockTask{Header: header.Clone()}
	return nil
}

// SignalExit asks the header processing worker to stop and waits for
// it to drain all previously submitted tasks. SignalExit is idempotent.
func (c *Consensus) SignalExit() {
	c.exitOnce.Do(func() {
		atomic.StoreUint32(&c.shuttingDown, 1)
		if atomic.LoadUint32(&c.started) == 0 {
			return
		}
		log.Infof("Signaling consensus to exit")
		c.tasks <- &headerprocessor.ExitTask{}
		c.workerDone.Wait()
	})
}

// Release shuts the pipeline down and hands back the reachability and
// GHOSTDAG stores, so their data can be consumed after the consensus
// instance itself is gone.
func (c *Consensus) Release() (model.ReachabilityDataStore, model.GHOSTDAGDataStore) {
	c.SignalExit()
	return c.reachabilityDataStore, c.ghostdagDataStore
}

// StatusesService returns a read-only view of block statuses
func (c *Consensus) StatusesService() *services.StatusesService {
	return c.statusesService
}

// RelationsService returns a read-only view of block relations
func (c *Consensus) RelationsService() *services.RelationsService {
	return c.relationsService
}

// ReachabilityService returns a read-only view of reachability queries
func (c *Consensus) ReachabilityService() *services.ReachabilityService {
	return c.reachabilityService
}

// GHOSTDAGService returns a read-only view of GHOSTDAG block data
func (c *Consensus) GHOSTDAGService() *services.GHOSTDAGService {
	return c.ghostdagService
}

// Counters returns the pipeline's processing counters
func (c *Consensus) Counters() *pipeline.ProcessingCounters {
	return c.counters
}
