package model

import "github.com/dagnet/dagd/domain/consensus/model/externalapi"

// GHOSTDAGManager resolves and manages GHOSTDAG block data
type GHOSTDAGManager interface {
	GHOSTDAG(blockHash *externalapi.DomainHash,
		parentHashes []*externalapi.DomainHash) (*BlockGHOSTDAGData, error)
	BlockData(blockHash *externalapi.DomainHash) (*BlockGHOSTDAGData, error)
	ChooseSelectedParent(blockHashA *externalapi.DomainHash,
		blockHashB *externalapi.DomainHash) (*externalapi.DomainHash, error)
	Less(blockHashA *externalapi.DomainHash, blockHashB *externalapi.DomainHash) (bool, error)
}
