package services

import (
	"github.com/dagnet/dagd/domain/consensus/model"
	"github.com/dagnet/dagd/domain/consensus/model/externalapi"
)

// The services in this package are thin read-only facades over the
// consensus stores and managers. They are safe for concurrent use by
// any number of readers while the header processing worker writes.

// StatusesService provides concurrent read access to block statuses
type StatusesService struct {
	databaseContext  model.DBReader
	blockStatusStore model.BlockStatusStore
}

// NewStatusesService instantiates a new StatusesService
func NewStatusesService(databaseContext model.DBReader,
	blockStatusStore model.BlockStatusStore) *StatusesService {

	return &StatusesService{
		databaseContext:  databaseContext,
		blockStatusStore: blockStatusStore,
	}
}

// Get returns the status of the given blockHash
func (ss *StatusesService) Get(blockHash *externalapi.DomainHash) (model.BlockStatus, error) {
	return ss.blockStatusStore.Get(ss.databaseContext, blockHash)
}

// Has returns whether the given blockHash has a status
func (ss *StatusesService) Has(blockHash *externalapi.DomainHash) (bool, error) {
	return ss.blockStatusStore.Exists(ss.databaseContext, blockHash)
}

// RelationsService provides concurrent read access to block relations
type RelationsService struct {
	databaseContext    model.DBReader
	blockRelationStore model.BlockRelationStore
}

// NewRelationsService instantiates a new RelationsService
func NewRelationsService(databaseContext model.DBReader,
	blockRelationStore model.BlockRelationStore) *RelationsService {

	return &RelationsService{
		databaseContext:    databaseContext,
		blockRelationStore: blockRelationStore,
	}
}

// Parents returns the DAG parents of the given blockHash
func (rs *RelationsService) Parents(blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	blockRelations, err := rs.blockRelationStore.BlockRelation(rs.databaseContext, blockHash)
	if err != nil {
		return nil, err
	}
	return blockRelations.Parents, nil
}

// Children returns the DAG children of the given blockHash
func (rs *RelationsService) Children(blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	blockRelations, err := rs.blockRelationStore.BlockRelation(rs.databaseContext, blockHash)
	if err != nil {
		return nil, err
	}
	return blockRelations.Children, nil
}

// ReachabilityService provides concurrent read access to reachability
// queries
type ReachabilityService struct {
	reachabilityManager model.ReachabilityManager
}

// NewReachabilityService instantiates a new ReachabilityService
func NewReachabilityService(reachabilityManager model.ReachabilityManager) *ReachabilityService {
	return &ReachabilityService{
		reachabilityManager: reachabilityManager,
	}
}

// IsDAGAncestorOf returns whether blockHashA is an ancestor of
// blockHashB in the DAG
func (rs *ReachabilityService) IsDAGAncestorOf(blockHashA,
	blockHashB *externalapi.DomainHash) (bool, error) {

	return rs.reachabilityManager.IsDAGAncestorOf(blockHashA, blockHashB)
}

// IsChainAncestorOf returns whether blockHashA is an ancestor of
// blockHashB in the selected parent chain
func (rs *ReachabilityService) IsChainAncestorOf(blockHashA,
	blockHashB *externalapi.DomainHash) (bool, error) {

	return rs.reachabilityManager.IsReachabilityTreeAncestorOf(blockHashA, blockHashB)
}

// GHOSTDAGService provides concurrent read access to GHOSTDAG block data
type GHOSTDAGService struct {
	ghostdagManager model.GHOSTDAGManager
}

// NewGHOSTDAGService instantiates a new GHOSTDAGService
func NewGHOSTDAGService(ghostdagManager model.GHOSTDAGManager) *GHOSTDAGService {
	return &GHOSTDAGService{
		ghostdagManager: ghostdagManager,
	}
}

// BlockData returns the GHOSTDAG data of the given blockHash
func (gs *GHOSTDAGService) BlockData(blockHash *externalapi.DomainHash) (*model.BlockGHOSTDAGData, error) {
	return gs.ghostdagManager.BlockData(blockHash)
}
