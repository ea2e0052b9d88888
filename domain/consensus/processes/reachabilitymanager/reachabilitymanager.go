package reachabilitymanager

import (
	"github.com/dagnet/dagd/domain/consensus/model"
	"github.com/dagnet/dagd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// reachabilityManager maintains a structure that allows to answer
// reachability queries in sub-linear time
type reachabilityManager struct {
	databaseContext       model.DBReader
	reachabilityDataStore model.ReachabilityDataStore
	ghostdagDataStore     model.GHOSTDAGDataStore

	reindexWindow uint64
	reindexSlack  uint64
}

// New instantiates a new reachabilityManager
func New(
	databaseContext model.DBReader,
	ghostdagDataStore model.GHOSTDAGDataStore,
	reachabilityDataStore model.ReachabilityDataStore,
) model.ReachabilityManager {
	return &reachabilityManager{
		databaseContext:       databaseContext,
		ghostdagDataStore:     ghostdagDataStore,
		reachabilityDataStore: reachabilityDataStore,
		reindexWindow:         defaultReindexWindow,
		reindexSlack:          defaultReindexSlack,
	}
}

// Init verifies that the reachability data store is in a usable state.
// The tree itself is rooted at the genesis block, which is inserted via
// AddBlock during genesis processing, so there is nothing to allocate
// ahead of time. Init is idempotent.
func (rt *reachabilityManager) Init(_ model.DBTransaction) error {
	hasReindexRoot, err := rt.reachabilityDataStore.HasReindexRoot(rt.databaseContext)
	if err != nil {
		return err
	}
	if !hasReindexRoot {
		return nil
	}

	reindexRoot, err := rt.reindexRoot()
	if err != nil {
		return err
	}
	hasData, err := rt.reachabilityDataStore.HasReachabilityData(rt.databaseContext, reindexRoot)
	if err != nil {
		return err
	}
	if !hasData {
		return errors.Errorf("reachability reindex root %s has no reachability data", reindexRoot)
	}
	return nil
}

// AddBlock adds the block with the given blockHash into the reachability tree.
//
// The block is inserted as a reachability tree child of its selected
// parent, and is registered in the future covering set of every block
// in its mergeset.
func (rt *reachabilityManager) AddBlock(dbTx model.DBTransaction, blockHash *externalapi.DomainHash,
	selectedParent *externalapi.DomainHash, mergeSet []*externalapi.DomainHash) error {

	// Allocate a new reachability tree node
	err := rt.stageNewTreeNode(dbTx, blockHash)
	if err != nil {
		return err
	}

	// If this is the genesis node, make it the root of the tree and
	// the initial reindex root. The new tree node already spans the
	// whole allocation space.
	if selectedParent == nil {
		return rt.stageReindexRoot(dbTx, blockHash)
	}

	reindexRoot, err := rt.reindexRoot()
	if err != nil {
		return err
	}

	// Insert the node into the selected parent's reachability tree
	err = rt.addChild(dbTx, selectedParent, blockHash, reindexRoot)
	if err != nil {
		return err
	}

	// Add the block to the futureCoveringSets of all the blocks
	// in the mergeset
	for _, current := range mergeSet {
		err = rt.insertToFutureCoveringSet(dbTx, current, blockHash)
		if err != nil {
			return err
		}
	}

	return nil
}

// UpdateReindexRoot advances the reindex root towards the given
// selected tip, concentrating the interval allocation around the
// chain it is expected to grow from.
func (rt *reachabilityManager) UpdateReindexRoot(dbTx model.DBTransaction,
	selectedTip *externalapi.DomainHash) error {

	return rt.updateReindexRoot(dbTx, selectedTip)
}

// IsDAGAncestorOf returns true if blockHashA is an ancestor of
// blockHashB in the DAG. Note that every block is considered an
// ancestor of itself.
//
// The complexity of this method is O(log(|FutureCoveringSet|))
func (rt *reachabilityManager) IsDAGAncestorOf(blockHashA *externalapi.DomainHash,
	blockHashB *externalapi.DomainHash) (bool, error) {

	// First, check if blockHashB is blockHashA's reachability tree descendant
	isReachabilityTreeAncestorOf, err := rt.IsReachabilityTreeAncestorOf(blockHashA, blockHashB)
	if err != nil {
		return false, err
	}
	if isReachabilityTreeAncestorOf {
		return true, nil
	}

	// Otherwise, use blockHashA's future covering set to determine whether
	// blockHashB is in blockHashA's non-tree future
	return rt.futureCoveringSetHasAncestorOf(blockHashA, blockHashB)
}

// insertToFutureCoveringSet inserts the given futureBlock into the
// future covering set of the given blockHash. The set is kept ordered
// by interval, which allows both this insertion and future queries to
// use binary search.
func (rt *reachabilityManager) insertToFutureCoveringSet(dbTx model.DBTransaction,
	blockHash *externalapi.DomainHash, futureBlock *externalapi.DomainHash) error {

	futureCoveringSet, err := rt.futureCoveringSet(blockHash)
	if err != nil {
		return err
	}

	ancestorIndex, ok, err := rt.findAncestorIndexOfNode(futureCoveringSet, futureBlock)
	if err != nil {
		return err
	}

	if !ok {
		newSet := append([]*externalapi.DomainHash{futureBlock}, futureCoveringSet...)
		return rt.stageFutureCoveringSet(dbTx, blockHash, newSet)
	}

	candidate := futureCoveringSet[ancestorIndex]
	candidateIsAncestorOfFutureBlock, err := rt.IsReachabilityTreeAncestorOf(candidate, futureBlock)
	if err != nil {
		return err
	}
	if candidateIsAncestorOfFutureBlock {
		// candidate is an ancestor of futureBlock, no need to insert
		return nil
	}

	futureBlockIsAncestorOfCandidate, err := rt.IsReachabilityTreeAncestorOf(futureBlock, candidate)
	if err != nil {
		return err
	}
	if futureBlockIsAncestorOfCandidate {
		// futureBlock is an ancestor of candidate, and can thus replace it
		newSet := externalapi.CloneHashes(futureCoveringSet)
		newSet[ancestorIndex] = futureBlock
		return rt.stageFutureCoveringSet(dbTx, blockHash, newSet)
	}

	// Insert futureBlock in the correct index to maintain the order
	newSet := make([]*externalapi.DomainHash, 0, len(futureCoveringSet)+1)
	newSet = append(newSet, futureCoveringSet[:ancestorIndex+1]...)
	newSet = append(newSet, futureBlock)
	newSet = append(newSet, futureCoveringSet[ancestorIndex+1:]...)
	return rt.stageFutureCoveringSet(dbTx, blockHash, newSet)
}

// futureCoveringSetHasAncestorOf resolves whether the given blockHash
// is in the subtree of any node in the future covering set of this
// block.
//
// See insertToFutureCoveringSet for the complementary insertion behavior.
func (rt *reachabilityManager) futureCoveringSetHasAncestorOf(blockHash *externalapi.DomainHash,
	futureBlock *externalapi.DomainHash) (bool, error) {

	futureCoveringSet, err := rt.futureCoveringSet(blockHash)
	if err != nil {
		return false, err
	}

	ancestorIndex, ok, err := rt.findAncestorIndexOfNode(futureCoveringSet, futureBlock)
	if err != nil {
		return false, err
	}

	if !ok {
		// No candidate to contain futureBlock
		return false, nil
	}

	candidate := futureCoveringSet[ancestorIndex]
	return rt.IsReachabilityTreeAncestorOf(candidate, futureBlock)
}

// findAncestorOfNode finds the reachability tree ancestor of `node`
// among the given `candidates`.
func (rt *reachabilityManager) findAncestorOfNode(candidates []*externalapi.DomainHash,
	node *externalapi.DomainHash) (*externalapi.DomainHash, bool) {

	ancestorIndex, ok, err := rt.findAncestorIndexOfNode(candidates, node)
	if err != nil {
		return nil, false
	}
	if !ok {
		return nil, false
	}

	candidate := candidates[ancestorIndex]
	isAncestor, err := rt.IsReachabilityTreeAncestorOf(candidate, node)
	if err != nil || !isAncestor {
		return nil, false
	}
	return candidate, true
}

// findAncestorIndexOfNode finds the index of the reachability tree
// ancestor of `node` among the given ordered slice of `candidates`.
// It does so by finding the index of the block with the maximum start
// that is below the given block.
func (rt *reachabilityManager) findAncestorIndexOfNode(candidates []*externalapi.DomainHash,
	node *externalapi.DomainHash) (int, bool, error) {

	nodeInterval, err := rt.interval(node)
	if err != nil {
		return 0, false, err
	}
	end := nodeInterval.End

	low := 0
	high := len(candidates)
	for low < high {
		middle := (low + high) / 2
		middleInterval, err := rt.interval(candidates[middle])
		if err != nil {
			return 0, false, err
		}

		if end < middleInterval.Start {
			high = middle
		} else {
			low = middle + 1
		}
	}

	if low == 0 {
		return 0, false, nil
	}
	return low - 1, true, nil
}
