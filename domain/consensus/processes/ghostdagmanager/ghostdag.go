package ghostdagmanager

import (
	"math/big"

	"github.com/dagnet/dagd/domain/consensus/model"
	"github.com/dagnet/dagd/domain/consensus/model/externalapi"
	"github.com/dagnet/dagd/util/difficulty"
	"github.com/pkg/errors"
)

type chainBlockData struct {
	hash      *externalapi.DomainHash
	blockData *model.BlockGHOSTDAGData
}

// GHOSTDAG runs the GHOSTDAG protocol and calculates the block
// BlockGHOSTDAGData by the given parents. The function calculates
// mergeset blues by iterating over the blocks in the anticone of the
// new block's selected parent (which is the parent with the
// highest blue work) and adds any block to the blue set if by adding
// it these conditions will not be violated:
//
//  1. The anticone-size of the block is not greater than K.
//  2. For every blue block in the blue set of the new block, the
//     anticone-size of that block after adding the candidate is not
//     greater than K.
//
// A block that violates either condition is marked red.
func (gm *ghostdagManager) GHOSTDAG(blockHash *externalapi.DomainHash,
	parentHashes []*externalapi.DomainHash) (*model.BlockGHOSTDAGData, error) {

	if len(parentHashes) == 0 {
		return gm.genesisGHOSTDAGData(), nil
	}

	newBlockData := &model.BlockGHOSTDAGData{
		BlueWork:           new(big.Int),
		MergeSetBlues:      make([]*externalapi.DomainHash, 0),
		MergeSetReds:       make([]*externalapi.DomainHash, 0),
		BluesAnticoneSizes: make(map[externalapi.DomainHash]model.KType),
	}

	selectedParent, err := gm.findSelectedParent(parentHashes)
	if err != nil {
		return nil, err
	}
	newBlockData.SelectedParent = selectedParent

	// The selected parent is always the first block of the blue set,
	// and it has nothing of the new block's blue set in its anticone.
	newBlockData.MergeSetBlues = append(newBlockData.MergeSetBlues, selectedParent)
	newBlockData.BluesAnticoneSizes[*selectedParent] = 0

	mergeSetWithoutSelectedParent, err := gm.mergeSetWithoutSelectedParent(selectedParent, parentHashes)
	if err != nil {
		return nil, err
	}

	for _, blueCandidate := range mergeSetWithoutSelectedParent {
		isBlue, candidateAnticoneSize, candidateBluesAnticoneSizes, err :=
			gm.checkBlueCandidate(newBlockData, blueCandidate)
		if err != nil {
			return nil, err
		}

		if isBlue {
			// No k-cluster violation found, we can now set the candidate block as blue
			newBlockData.MergeSetBlues = append(newBlockData.MergeSetBlues, blueCandidate)
			newBlockData.BluesAnticoneSizes[*blueCandidate] = candidateAnticoneSize
			for blue, blueAnticoneSize := range candidateBluesAnticoneSizes {
				newBlockData.BluesAnticoneSizes[blue] = blueAnticoneSize + 1
			}
		} else {
			newBlockData.MergeSetReds = append(newBlockData.MergeSetReds, blueCandidate)
		}
	}

	selectedParentGHOSTDAGData, err := gm.ghostdagDataStore.Get(gm.databaseContext, selectedParent)
	if err != nil {
		return nil, err
	}
	newBlockData.BlueScore = selectedParentGHOSTDAGData.BlueScore + uint64(len(newBlockData.MergeSetBlues))

	// The new block's blue work is the sum of the works of all the
	// blue blocks in its mergeset, on top of the selected parent's
	// accumulated blue work.
	newBlockData.BlueWork.Set(selectedParentGHOSTDAGData.BlueWork)
	for _, blue := range newBlockData.MergeSetBlues {
		header, err := gm.blockHeaderStore.BlockHeader(gm.databaseContext, blue)
		if err != nil {
			return nil, err
		}
		newBlockData.BlueWork.Add(newBlockData.BlueWork, difficulty.CalcWork(header.Bits))
	}

	return newBlockData, nil
}

func (gm *ghostdagManager) genesisGHOSTDAGData() *model.BlockGHOSTDAGData {
	return &model.BlockGHOSTDAGData{
		BlueScore:          0,
		BlueWork:           new(big.Int),
		SelectedParent:     nil,
		MergeSetBlues:      make([]*externalapi.DomainHash, 0),
		MergeSetReds:       make([]*externalapi.DomainHash, 0),
		BluesAnticoneSizes: make(map[externalapi.DomainHash]model.KType),
	}
}

func (gm *ghostdagManager) checkBlueCandidate(newBlockData *model.BlockGHOSTDAGData,
	blueCandidate *externalapi.DomainHash) (isBlue bool, candidateAnticoneSize model.KType,
	candidateBluesAnticoneSizes map[externalapi.DomainHash]model.KType, err error) {

	// The maximum length of the blue set is K+1 (the K-sized anticone
	// plus the selected parent), so once it is reached no more blocks
	// can be blue.
	if uint64(len(newBlockData.MergeSetBlues)) == uint64(gm.k)+1 {
		return false, 0, nil, nil
	}

	candidateBluesAnticoneSizes = make(map[externalapi.DomainHash]model.KType, gm.k)

	// Iterate over the new block's selected parent chain, from the new
	// block down, until we find a chain block that is an ancestor of
	// blueCandidate. The blues of chain blocks below that point are all
	// in blueCandidate's past and cannot be in its anticone.
	chainBlock := chainBlockData{
		hash:      nil, // not yet added to the DAG
		blockData: newBlockData,
	}

	for {
		isBlue, isRed, err := gm.checkBlueCandidateWithChainBlock(newBlockData, chainBlock,
			blueCandidate, candidateBluesAnticoneSizes, &candidateAnticoneSize)
		if err != nil {
			return false, 0, nil, err
		}
		if isBlue {
			return true, candidateAnticoneSize, candidateBluesAnticoneSizes, nil
		}
		if isRed {
			return false, 0, nil, nil
		}

		selectedParentGHOSTDAGData, err := gm.ghostdagDataStore.Get(
			gm.databaseContext, chainBlock.blockData.SelectedParent)
		if err != nil {
			return false, 0, nil, err
		}
		chainBlock = chainBlockData{
			hash:      chainBlock.blockData.SelectedParent,
			blockData: selectedParentGHOSTDAGData,
		}
	}
}

func (gm *ghostdagManager) checkBlueCandidateWithChainBlock(newBlockData *model.BlockGHOSTDAGData,
	chainBlock chainBlockData, blueCandidate *externalapi.DomainHash,
	candidateBluesAnticoneSizes map[externalapi.DomainHash]model.KType,
	candidateAnticoneSize *model.KType) (isBlue, isRed bool, err error) {

	// If blueCandidate is in the future of chainBlock, it means
	// that all remaining blues are in the past of chainBlock and thus
	// in the past of blueCandidate. In this case we know for sure that
	// the anticone of blueCandidate will not exceed K, and we can mark
	// it as blue.
	//
	// The new block is always in the future of blueCandidate, so there's
	// no point in checking it.
	if chainBlock.hash != nil {
		isAncestorOfBlueCandidate, err := gm.dagTopologyManager.IsAncestorOf(chainBlock.hash, blueCandidate)
		if err != nil {
			return false, false, err
		}
		if isAncestorOfBlueCandidate {
			return true, false, nil
		}
	}

	for _, block := range chainBlock.blockData.MergeSetBlues {
		// Skip blocks that exist in the past of blueCandidate.
		isAncestorOfBlueCandidate, err := gm.dagTopologyManager.IsAncestorOf(block, blueCandidate)
		if err != nil {
			return false, false, err
		}
		if isAncestorOfBlueCandidate {
			continue
		}

		// Here we know that block is in the anticone of blueCandidate.
		candidateBluesAnticoneSizes[*block], err = gm.blueAnticoneSize(block, newBlockData)
		if err != nil {
			return false, false, err
		}
		*candidateAnticoneSize++

		if uint64(*candidateAnticoneSize) > uint64(gm.k) {
			// k-cluster violation: the candidate's blue anticone
			// exceeded k.
			return false, true, nil
		}

		if uint64(candidateBluesAnticoneSizes[*block]) == uint64(gm.k) {
			// k-cluster violation: a block in candidate's blue
			// anticone already has k blue blocks in its own
			// anticone.
			return false, true, nil
		}

		// This is a sanity check that validates that a blue
		// block's anticone is not already larger than K.
		if uint64(candidateBluesAnticoneSizes[*block]) > uint64(gm.k) {
			return false, false, errors.New("found blue anticone size larger than k")
		}
	}

	return false, false, nil
}

// blueAnticoneSize returns the blue anticone size of 'block' from the
// worldview of 'context'. Expects 'block' to be in the blue set of
// 'context'.
func (gm *ghostdagManager) blueAnticoneSize(block *externalapi.DomainHash,
	context *model.BlockGHOSTDAGData) (model.KType, error) {

	for current := context; current != nil; {
		if blueAnticoneSize, ok := current.BluesAnticoneSizes[*block]; ok {
			return blueAnticoneSize, nil
		}
		if current.SelectedParent == nil {
			break
		}

		next, err := gm.ghostdagDataStore.Get(gm.databaseContext, current.SelectedParent)
		if err != nil {
			return 0, err
		}
		current = next
	}
	return 0, errors.Errorf("block %s is not in blue set of the given context", block)
}
