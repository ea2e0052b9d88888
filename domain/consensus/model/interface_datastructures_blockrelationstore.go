package model

import "github.com/dagnet/dagd/domain/consensus/model/externalapi"

// BlockRelationStore represents a store of BlockRelations
type BlockRelationStore interface {
	Insert(dbTx DBTransaction, blockHash *externalapi.DomainHash, parentHashes []*externalapi.DomainHash) error
	BlockRelation(dbContext DBReader, blockHash *externalapi.DomainHash) (*BlockRelations, error)
	Has(dbContext DBReader, blockHash *externalapi.DomainHash) (bool, error)
}
