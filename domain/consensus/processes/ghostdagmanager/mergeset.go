package ghostdagmanager

import (
	"sort"

	"github.com/dagnet/dagd/domain/consensus/model/externalapi"
	"github.com/dagnet/dagd/domain/consensus/utils/hashset"
)

// mergeSetWithoutSelectedParent returns the mergeset of the block
// whose selected parent and parents are the given ones, excluding the
// selected parent itself. The result is sorted in GHOSTDAG order
// (ascending blue work, ties broken by hash), which makes the blue
// classification loop deterministic.
func (gm *ghostdagManager) mergeSetWithoutSelectedParent(selectedParent *externalapi.DomainHash,
	blockParents []*externalapi.DomainHash) ([]*externalapi.DomainHash, error) {

	mergeSetMap := hashset.New()
	mergeSetSlice := make([]*externalapi.DomainHash, 0, len(blockParents))
	selectedParentPast := hashset.New()
	queue := []*externalapi.DomainHash{}

	// Queueing all parents (other than the selected parent itself) for
	// breadth-first search, and adding them to the mergeset.
	for _, parent := range blockParents {
		if mergeSetMap.Contains(parent) || selectedParent.Equal(parent) {
			continue
		}
		mergeSetMap.Add(parent)
		mergeSetSlice = append(mergeSetSlice, parent)
		queue = append(queue, parent)
	}

	for len(queue) > 0 {
		var current *externalapi.DomainHash
		current, queue = queue[0], queue[1:]

		// For each parent of the current block we check whether it is in
		// the past of the selected parent. If not, we add it to the
		// resulting anticone set and queue it for further processing.
		currentParents, err := gm.dagTopologyManager.Parents(current)
		if err != nil {
			return nil, err
		}
		for _, parent := range currentParents {
			if mergeSetMap.Contains(parent) || selectedParentPast.Contains(parent) {
				continue
			}

			isAncestorOfSelectedParent, err := gm.dagTopologyManager.IsAncestorOf(parent, selectedParent)
			if err != nil {
				return nil, err
			}
			if isAncestorOfSelectedParent {
				selectedParentPast.Add(parent)
				continue
			}

			mergeSetMap.Add(parent)
			mergeSetSlice = append(mergeSetSlice, parent)
			queue = append(queue, parent)
		}
	}

	err := gm.sortMergeSet(mergeSetSlice)
	if err != nil {
		return nil, err
	}

	return mergeSetSlice, nil
}

func (gm *ghostdagManager) sortMergeSet(mergeSetSlice []*externalapi.DomainHash) error {
	var err error
	sort.Slice(mergeSetSlice, func(i, j int) bool {
		if err != nil {
			return false
		}
		isLess, lessErr := gm.Less(mergeSetSlice[i], mergeSetSlice[j])
		if lessErr != nil {
			err = lessErr
			return false
		}
		return isLess
	})
	return err
}
