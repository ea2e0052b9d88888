package model

import (
	"fmt"

	"github.com/dagnet/dagd/domain/consensus/model/externalapi"
)

// ReachabilityData holds all of the reachability data of a specific block:
// its position in the reachability tree and the set of tree nodes in its
// future that are not covered by its own subtree.
type ReachabilityData struct {
	TreeNode          *ReachabilityTreeNode
	FutureCoveringSet FutureCoveringTreeNodeSet
}

// Clone returns a clone of ReachabilityData
func (rd *ReachabilityData) Clone() *ReachabilityData {
	return &ReachabilityData{
		TreeNode:          rd.TreeNode.Clone(),
		FutureCoveringSet: rd.FutureCoveringSet.Clone(),
	}
}

// Equal returns whether rd equals to other
func (rd *ReachabilityData) Equal(other *ReachabilityData) bool {
	if rd == nil || other == nil {
		return rd == other
	}

	if !rd.TreeNode.Equal(other.TreeNode) {
		return false
	}

	if !rd.FutureCoveringSet.Equal(other.FutureCoveringSet) {
		return false
	}

	return true
}

// ReachabilityTreeNode is a node in the reachability tree, a subtree of the
// DAG where every block has exactly one chosen tree parent out of its DAG
// parents. Ancestry in the tree is resolvable in constant time via the
// allocated interval.
type ReachabilityTreeNode struct {
	Children []*externalapi.DomainHash
	Parent   *externalapi.DomainHash

	// Interval is the index interval containing all intervals of
	// blocks in this node's subtree
	Interval *ReachabilityInterval
}

// Clone returns a clone of ReachabilityTreeNode
func (rtn *ReachabilityTreeNode) Clone() *ReachabilityTreeNode {
	return &ReachabilityTreeNode{
		Children: externalapi.CloneHashes(rtn.Children),
		Parent:   rtn.Parent,
		Interval: rtn.Interval.Clone(),
	}
}

// Equal returns whether rtn equals to other
func (rtn *ReachabilityTreeNode) Equal(other *ReachabilityTreeNode) bool {
	if rtn == nil || other == nil {
		return rtn == other
	}

	if !externalapi.HashesEqual(rtn.Children, other.Children) {
		return false
	}

	if !rtn.Parent.Equal(other.Parent) {
		return false
	}

	if !rtn.Interval.Equal(other.Interval) {
		return false
	}

	return true
}

// ReachabilityInterval is an interval to be used within the tree allocation
// mechanism. The interval is inclusive on both ends.
type ReachabilityInterval struct {
	Start uint64
	End   uint64
}

// Clone returns a clone of ReachabilityInterval
func (ri *ReachabilityInterval) Clone() *ReachabilityInterval {
	return &ReachabilityInterval{
		Start: ri.Start,
		End:   ri.End,
	}
}

// Equal returns whether ri equals to other
func (ri *ReachabilityInterval) Equal(other *ReachabilityInterval) bool {
	if ri == nil || other == nil {
		return ri == other
	}

	if ri.Start != other.Start {
		return false
	}

	if ri.End != other.End {
		return false
	}

	return true
}

func (ri *ReachabilityInterval) String() string {
	return fmt.Sprintf("[%d,%d]", ri.Start, ri.End)
}

// FutureCoveringTreeNodeSet represents a collection of blocks in the future
// of a certain block. Once a block B is added to the DAG, every block A_i in
// B's selected parent anticone must be updated to include B in its
// FutureCoveringTreeNodeSet.
//
// Note: Intervals are kept in order, i.e. for any i < j:
// items[i].end < items[j].start
type FutureCoveringTreeNodeSet []*externalapi.DomainHash

// Clone returns a clone of FutureCoveringTreeNodeSet
func (fctns FutureCoveringTreeNodeSet) Clone() FutureCoveringTreeNodeSet {
	return externalapi.CloneHashes(fctns)
}

// Equal returns whether fctns equals to other
func (fctns FutureCoveringTreeNodeSet) Equal(other FutureCoveringTreeNodeSet) bool {
	return externalapi.HashesEqual(fctns, other)
}
