package model

import "github.com/dagnet/dagd/domain/consensus/model/externalapi"

// ReachabilityDataStore represents a store of ReachabilityData
type ReachabilityDataStore interface {
	Insert(dbTx DBTransaction, blockHash *externalapi.DomainHash, reachabilityData *ReachabilityData) error
	UpdateReindexRoot(dbTx DBTransaction, reachabilityReindexRoot *externalapi.DomainHash) error
	ReachabilityData(dbContext DBReader, blockHash *externalapi.DomainHash) (*ReachabilityData, error)
	HasReachabilityData(dbContext DBReader, blockHash *externalapi.DomainHash) (bool, error)
	ReindexRoot(dbContext DBReader) (*externalapi.DomainHash, error)
	HasReindexRoot(dbContext DBReader) (bool, error)
}
