package model

import "github.com/dagnet/dagd/domain/consensus/model/externalapi"

// GHOSTDAGDataStore represents a store of BlockGHOSTDAGData.
//
// The store is append-only: a block's GHOSTDAG data is written at most
// once and never changes afterwards.
type GHOSTDAGDataStore interface {
	Insert(dbTx DBTransaction, blockHash *externalapi.DomainHash, blockGHOSTDAGData *BlockGHOSTDAGData) error
	Get(dbContext DBReader, blockHash *externalapi.DomainHash) (*BlockGHOSTDAGData, error)
	Has(dbContext DBReader, blockHash *externalapi.DomainHash) (bool, error)
}
