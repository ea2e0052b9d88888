package model

import "github.com/dagnet/dagd/domain/consensus/model/externalapi"

// BlockStatusStore represents a store of BlockStatuses
type BlockStatusStore interface {
	Set(dbTx DBTransaction, blockHash *externalapi.DomainHash, blockStatus BlockStatus) error
	Get(dbContext DBReader, blockHash *externalapi.DomainHash) (BlockStatus, error)
	Exists(dbContext DBReader, blockHash *externalapi.DomainHash) (bool, error)
}
