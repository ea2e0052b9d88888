package headerprocessor

import (
	"github.com/dagnet/dagd/domain/consensus/database"
	"github.com/dagnet/dagd/domain/consensus/model"
	"github.com/dagnet/dagd/domain/consensus/model/externalapi"
	"github.com/dagnet/dagd/domain/consensus/pipeline"
	"github.com/dagnet/dagd/domain/consensus/ruleerrors"
	"github.com/dagnet/dagd/domain/consensus/utils/consensushashing"
	"github.com/pkg/errors"
)

var headersSelectedTipKey = database.MakeBucket(nil).Key([]byte("headers-selected-tip"))

// HeaderProcessor is the single writer of the consensus stores. It
// owns the receiving side of the task channel and processes headers
// strictly in submission order.
type HeaderProcessor struct {
	databaseContext model.DBManager
	genesisHeader   *externalapi.DomainBlockHeader
	genesisHash     *externalapi.DomainHash

	blockHeaderStore    model.BlockHeaderStore
	blockStatusStore    model.BlockStatusStore
	blockRelationStore  model.BlockRelationStore
	ghostdagDataStore   model.GHOSTDAGDataStore
	ghostdagManager     model.GHOSTDAGManager
	reachabilityManager model.ReachabilityManager

	counters *pipeline.ProcessingCounters
	tasks    <-chan BlockTask
}

// New instantiates a new HeaderProcessor
func New(
	databaseContext model.DBManager,
	genesisHeader *externalapi.DomainBlockHeader,
	blockHeaderStore model.BlockHeaderStore,
	blockStatusStore model.BlockStatusStore,
	blockRelationStore model.BlockRelationStore,
	ghostdagDataStore model.GHOSTDAGDataStore,
	ghostdagManager model.GHOSTDAGManager,
	reachabilityManager model.ReachabilityManager,
	counters *pipeline.ProcessingCounters,
	tasks <-chan BlockTask) *HeaderProcessor {

	return &HeaderProcessor{
		databaseContext:     databaseContext,
		genesisHeader:       genesisHeader,
		genesisHash:         consensushashing.HeaderHash(genesisHeader),
		blockHeaderStore:    blockHeaderStore,
		blockStatusStore:    blockStatusStore,
		blockRelationStore:  blockRelationStore,
		ghostdagDataStore:   ghostdagDataStore,
		ghostdagManager:     ghostdagManager,
		reachabilityManager: reachabilityManager,
		counters:            counters,
		tasks:               tasks,
	}
}

// Worker is the header processing loop. It consumes tasks one at a
// time until an ExitTask is received or the task channel is closed.
//
// Rule errors indicate a bad submitted block. They are logged and the
// worker moves on to the next task. Any other error means the stores
// may no longer be coherent, so the worker panics and brings the
// process down.
func (hp *HeaderProcessor) Worker() {
	for task := range hp.tasks {
		switch task := task.(type) {
		case *ProcessBlockTask:
			err := hp.processHeader(task.Header)
			if err != nil {
				if ruleerrors.IsRuleError(err) {
					hp.counters.AddInputRejects(1)
					log.Warnf("Rejected block header: %s", err)
					continue
				}
				log.Criticalf("Failed to process block header: %s", err)
				panic(errors.Wrap(err, "header processing failure"))
			}
		case *ExitTask:
			log.Infof("Header processor received an exit signal")
			return
		default:
			panic(errors.Errorf("unknown block task type %T", task))
		}
	}
}

// ProcessGenesisIfNeeded inserts the genesis block if it was not
// processed before. It must be called before the Worker is spawned.
func (hp *HeaderProcessor) ProcessGenesisIfNeeded() error {
	exists, err := hp.blockStatusStore.Exists(hp.databaseContext, hp.genesisHash)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	log.Infof("Processing genesis block %s", hp.genesisHash)
	return hp.commitHeader(hp.genesisHash, hp.genesisHeader)
}

func (hp *HeaderProcessor) processHeader(header *externalapi.DomainBlockHeader) error {
	blockHash := consensushashing.HeaderHash(header)

	// A block that was already processed is simply skipped. This makes
	// block submission idempotent.
	exists, err := hp.blockStatusStore.Exists(hp.databaseContext, blockHash)
	if err != nil {
		return err
	}
	if exists {
		log.Debugf("Block %s was already processed. Skipping it", blockHash)
		return nil
	}

	err = hp.validateParents(blockHash, header)
	if err != nil {
		return err
	}

	return hp.commitHeader(blockHash, header)
}

// validateParents performs the input-level checks on the header's
// parents. All violations surface as rule errors.
func (hp *HeaderProcessor) validateParents(blockHash *externalapi.DomainHash,
	header *externalapi.DomainBlockHeader) error {

	if len(header.ParentHashes) == 0 {
		if blockHash.Equal(hp.genesisHash) {
			return nil
		}
		return ruleerrors.Errorf(ruleerrors.ErrNoParents, "block %s has no parents", blockHash)
	}

	missingParents := []*externalapi.DomainHash{}
	for _, parentHash := range header.ParentHashes {
		parentExists, err := hp.blockStatusStore.Exists(hp.databaseContext, parentHash)
		if err != nil {
			return err
		}
		if !parentExists {
			missingParents = append(missingParents, parentHash)
			continue
		}

		parentStatus, err := hp.blockStatusStore.Get(hp.databaseContext, parentHash)
		if err != nil {
			return err
		}
		if parentStatus == model.StatusInvalid {
			return ruleerrors.Errorf(ruleerrors.ErrKnownInvalid,
				"parent %s of block %s is invalid", parentHash, blockHash)
		}
	}
	if len(missingParents) > 0 {
		return ruleerrors.Errorf(ruleerrors.ErrMissingParents,
			"block %s has missing parents: %s", blockHash, missingParents)
	}
	return nil
}

// commitHeader writes the header and all of its derived consensus data
// in a single database transaction. The block status is written last,
// so a block with a status always has complete topology data.
func (hp *HeaderProcessor) commitHeader(blockHash *externalapi.DomainHash,
	header *externalapi.DomainBlockHeader) error {

	dbTx, err := hp.databaseContext.Begin()
	if err != nil {
		return err
	}
	defer dbTx.RollbackUnlessClosed()

	err = hp.blockHeaderStore.Insert(dbTx, blockHash, header)
	if err != nil {
		return err
	}

	err = hp.blockRelationStore.Insert(dbTx, blockHash, header.ParentHashes)
	if err != nil {
		return err
	}

	ghostdagData, err := hp.ghostdagManager.GHOSTDAG(blockHash, header.ParentHashes)
	if err != nil {
		return err
	}
	err = hp.ghostdagDataStore.Insert(dbTx, blockHash, ghostdagData)
	if err != nil {
		return err
	}

	err = hp.reachabilityManager.AddBlock(dbTx, blockHash, ghostdagData.SelectedParent, ghostdagData.MergeSet())
	if err != nil {
		return err
	}

	err = hp.maybeUpdateHeadersSelectedTip(dbTx, blockHash)
	if err != nil {
		return err
	}

	err = hp.blockStatusStore.Set(dbTx, blockHash, model.StatusHeaderOnly)
	if err != nil {
		return err
	}

	err = dbTx.Commit()
	if err != nil {
		return err
	}

	hp.counters.AddHeadersProcessed(1)
	hp.counters.AddDepCounts(uint64(len(header.ParentHashes)))
	hp.counters.AddMergesetCounts(uint64(len(ghostdagData.MergeSetBlues) + len(ghostdagData.MergeSetReds)))
	return nil
}

// maybeUpdateHeadersSelectedTip advances the headers selected tip to
// the given block if it wins the selected parent rule against the
// current tip, and moves the reachability reindex root towards it.
func (hp *HeaderProcessor) maybeUpdateHeadersSelectedTip(dbTx model.DBTransaction,
	blockHash *externalapi.DomainHash) error {

	hasTip, err := hp.databaseContext.Has(headersSelectedTipKey)
	if err != nil {
		return err
	}

	if !hasTip {
		return dbTx.Put(headersSelectedTipKey, blockHash.ByteSlice())
	}

	currentTipBytes, err := hp.databaseContext.Get(headersSelectedTipKey)
	if err != nil {
		return err
	}
	currentTip, err := externalapi.NewDomainHashFromByteSlice(currentTipBytes)
	if err != nil {
		return err
	}

	newTip, err := hp.ghostdagManager.ChooseSelectedParent(blockHash, currentTip)
	if err != nil {
		return err
	}
	if newTip.Equal(currentTip) {
		return nil
	}

	err = dbTx.Put(headersSelectedTipKey, newTip.ByteSlice())
	if err != nil {
		return err
	}

	return hp.reachabilityManager.UpdateReindexRoot(dbTx, newTip)
}
