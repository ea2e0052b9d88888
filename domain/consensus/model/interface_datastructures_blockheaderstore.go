package model

import "github.com/dagnet/dagd/domain/consensus/model/externalapi"

// BlockHeaderStore represents a store of block headers
type BlockHeaderStore interface {
	Insert(dbTx DBTransaction, blockHash *externalapi.DomainHash, blockHeader *externalapi.DomainBlockHeader) error
	BlockHeader(dbContext DBReader, blockHash *externalapi.DomainHash) (*externalapi.DomainBlockHeader, error)
	HasBlockHeader(dbContext DBReader, blockHash *externalapi.DomainHash) (bool, error)
	Count(dbContext DBReader) (uint64, error)
}
