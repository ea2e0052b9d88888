package ghostdagmanager

import (
	"github.com/dagnet/dagd/domain/consensus/model"
	"github.com/dagnet/dagd/domain/consensus/model/externalapi"
)

func (gm *ghostdagManager) findSelectedParent(parentHashes []*externalapi.DomainHash) (
	*externalapi.DomainHash, error) {

	var selectedParent *externalapi.DomainHash
	for _, hash := range parentHashes {
		if selectedParent == nil {
			selectedParent = hash
			continue
		}
		isGreater, err := gm.Less(selectedParent, hash)
		if err != nil {
			return nil, err
		}
		if isGreater {
			selectedParent = hash
		}
	}
	return selectedParent, nil
}

// ChooseSelectedParent chooses the better of the two given blocks as
// a selected parent: the block with the greater blue work, ties broken
// by the greater hash.
func (gm *ghostdagManager) ChooseSelectedParent(blockHashA *externalapi.DomainHash,
	blockHashB *externalapi.DomainHash) (*externalapi.DomainHash, error) {

	isALess, err := gm.Less(blockHashA, blockHashB)
	if err != nil {
		return nil, err
	}
	if isALess {
		return blockHashB, nil
	}
	return blockHashA, nil
}

// Less returns true if blockHashA is less than blockHashB in GHOSTDAG
// order: first by blue work, ties broken by hash.
func (gm *ghostdagManager) Less(blockHashA *externalapi.DomainHash,
	blockHashB *externalapi.DomainHash) (bool, error) {

	blockAGHOSTDAGData, err := gm.ghostdagDataStore.Get(gm.databaseContext, blockHashA)
	if err != nil {
		return false, err
	}
	blockBGHOSTDAGData, err := gm.ghostdagDataStore.Get(gm.databaseContext, blockHashB)
	if err != nil {
		return false, err
	}

	return gm.less(blockHashA, blockAGHOSTDAGData, blockHashB, blockBGHOSTDAGData), nil
}

func (gm *ghostdagManager) less(blockHashA *externalapi.DomainHash, blockAGHOSTDAGData *model.BlockGHOSTDAGData,
	blockHashB *externalapi.DomainHash, blockBGHOSTDAGData *model.BlockGHOSTDAGData) bool {

	switch blockAGHOSTDAGData.BlueWork.Cmp(blockBGHOSTDAGData.BlueWork) {
	case -1:
		return true
	case 1:
		return false
	case 0:
		return blockHashA.Less(blockHashB)
	default:
		panic("big.Int.Cmp is defined to always return -1, 0 or 1")
	}
}
