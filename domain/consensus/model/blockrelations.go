package model

import "github.com/dagnet/dagd/domain/consensus/model/externalapi"

// BlockRelations represents a block's parent/child edges in the DAG
type BlockRelations struct {
	Parents  []*externalapi.DomainHash
	Children []*externalapi.DomainHash
}

// Clone returns a clone of BlockRelations
func (br *BlockRelations) Clone() *BlockRelations {
	return &BlockRelations{
		Parents:  externalapi.CloneHashes(br.Parents),
		Children: externalapi.CloneHashes(br.Children),
	}
}

// Equal returns whether br equals to other
func (br *BlockRelations) Equal(other *BlockRelations) bool {
	if br == nil || other == nil {
		return br == other
	}

	if !externalapi.HashesEqual(br.Parents, other.Parents) {
		return false
	}

	if !externalapi.HashesEqual(br.Children, other.Children) {
		return false
	}

	return true
}
