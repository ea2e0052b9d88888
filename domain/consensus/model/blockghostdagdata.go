package model

import (
	"math/big"

	"github.com/dagnet/dagd/domain/consensus/model/externalapi"
)

// KType defines the size of GHOSTDAG consensus algorithm K parameter.
type KType byte

// BlockGHOSTDAGData represents GHOSTDAG data for some block
type BlockGHOSTDAGData struct {
	BlueScore          uint64
	BlueWork           *big.Int
	SelectedParent     *externalapi.DomainHash
	MergeSetBlues      []*externalapi.DomainHash
	MergeSetReds       []*externalapi.DomainHash
	BluesAnticoneSizes map[externalapi.DomainHash]KType
}

// Clone returns a clone of BlockGHOSTDAGData
func (bgd *BlockGHOSTDAGData) Clone() *BlockGHOSTDAGData {
	if bgd == nil {
		return nil
	}

	bluesAnticoneSizesClone := make(map[externalapi.DomainHash]KType, len(bgd.BluesAnticoneSizes))
	for hash, anticoneSize := range bgd.BluesAnticoneSizes {
		bluesAnticoneSizesClone[hash] = anticoneSize
	}

	return &BlockGHOSTDAGData{
		BlueScore:          bgd.BlueScore,
		BlueWork:           new(big.Int).Set(bgd.BlueWork),
		SelectedParent:     bgd.SelectedParent,
		MergeSetBlues:      externalapi.CloneHashes(bgd.MergeSetBlues),
		MergeSetReds:       externalapi.CloneHashes(bgd.MergeSetReds),
		BluesAnticoneSizes: bluesAnticoneSizesClone,
	}
}

// Equal returns whether bgd equals to other
func (bgd *BlockGHOSTDAGData) Equal(other *BlockGHOSTDAGData) bool {
	if bgd == nil || other == nil {
		return bgd == other
	}

	if bgd.BlueScore != other.BlueScore {
		return false
	}

	if bgd.BlueWork.Cmp(other.BlueWork) != 0 {
		return false
	}

	if !bgd.SelectedParent.Equal(other.SelectedParent) {
		return false
	}

	if !externalapi.HashesEqual(bgd.MergeSetBlues, other.MergeSetBlues) {
		return false
	}

	if !externalapi.HashesEqual(bgd.MergeSetReds, other.MergeSetReds) {
		return false
	}

	if len(bgd.BluesAnticoneSizes) != len(other.BluesAnticoneSizes) {
		return false
	}

	for hash, size := range bgd.BluesAnticoneSizes {
		otherSize, exists := other.BluesAnticoneSizes[hash]
		if !exists || size != otherSize {
			return false
		}
	}

	return true
}

// MergeSet returns the entire merge set of the block, blues and reds alike.
// The item order within the returned slice is undefined.
func (bgd *BlockGHOSTDAGData) MergeSet() []*externalapi.DomainHash {
	mergeSet := make([]*externalapi.DomainHash, 0, len(bgd.MergeSetBlues)+len(bgd.MergeSetReds))
	mergeSet = append(mergeSet, bgd.MergeSetBlues...)
	mergeSet = append(mergeSet, bgd.MergeSetReds...)
	return mergeSet
}
