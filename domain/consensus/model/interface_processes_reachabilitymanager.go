package model

import "github.com/dagnet/dagd/domain/consensus/model/externalapi"

// ReachabilityManager maintains a structure that allows to answer
// reachability queries in sub-linear time
type ReachabilityManager interface {
	Init(dbTx DBTransaction) error
	AddBlock(dbTx DBTransaction, blockHash *externalapi.DomainHash,
		selectedParent *externalapi.DomainHash, mergeSet []*externalapi.DomainHash) error
	UpdateReindexRoot(dbTx DBTransaction, selectedTip *externalapi.DomainHash) error
	IsDAGAncestorOf(blockHashA *externalapi.DomainHash, blockHashB *externalapi.DomainHash) (bool, error)
	IsReachabilityTreeAncestorOf(blockHashA *externalapi.DomainHash, blockHashB *externalapi.DomainHash) (bool, error)
}
