package reachabilitymanager

import (
	"math"

	"github.com/dagnet/dagd/domain/consensus/database"
	"github.com/dagnet/dagd/domain/consensus/model"
	"github.com/dagnet/dagd/domain/consensus/model/externalapi"
)

// stageNewTreeNode inserts a fresh tree node for the given blockHash.
// The node initially spans the whole allocation space. When the node
// is inserted as a child of an existing node, addChild reallocates its
// interval.
func (rt *reachabilityManager) stageNewTreeNode(dbTx model.DBTransaction,
	blockHash *externalapi.DomainHash) error {

	data := &model.ReachabilityData{
		TreeNode: &model.ReachabilityTreeNode{
			Children: []*externalapi.DomainHash{},
			Parent:   nil,
			Interval: newReachabilityInterval(1, math.MaxUint64-1),
		},
		FutureCoveringSet: model.FutureCoveringTreeNodeSet{},
	}
	return rt.reachabilityDataStore.Insert(dbTx, blockHash, data)
}

func (rt *reachabilityManager) stageData(dbTx model.DBTransaction,
	blockHash *externalapi.DomainHash, data *model.ReachabilityData) error {

	return rt.reachabilityDataStore.Insert(dbTx, blockHash, data)
}

func (rt *reachabilityManager) dataForModification(blockHash *externalapi.DomainHash) (*model.ReachabilityData, error) {
	data, err := rt.data(blockHash)
	if err != nil && !database.IsNotFoundError(err) {
		return nil, err
	}
	if data != nil {
		return data, nil
	}

	return &model.ReachabilityData{
		TreeNode: &model.ReachabilityTreeNode{
			Children: []*externalapi.DomainHash{},
			Parent:   nil,
			Interval: nil,
		},
		FutureCoveringSet: model.FutureCoveringTreeNodeSet{},
	}, nil
}

func (rt *reachabilityManager) stageFutureCoveringSet(dbTx model.DBTransaction,
	blockHash *externalapi.DomainHash, set model.FutureCoveringTreeNodeSet) error {

	data, err := rt.dataForModification(blockHash)
	if err != nil {
		return err
	}
	data.FutureCoveringSet = set
	return rt.stageData(dbTx, blockHash, data)
}

func (rt *reachabilityManager) stageReindexRoot(dbTx model.DBTransaction,
	blockHash *externalapi.DomainHash) error {

	return rt.reachabilityDataStore.UpdateReindexRoot(dbTx, blockHash)
}

func (rt *reachabilityManager) addChildAndStage(dbTx model.DBTransaction,
	node, child *externalapi.DomainHash) error {

	data, err := rt.dataForModification(node)
	if err != nil {
		return err
	}
	data.TreeNode.Children = append(data.TreeNode.Children, child)
	return rt.stageData(dbTx, node, data)
}

func (rt *reachabilityManager) stageParent(dbTx model.DBTransaction,
	node, parent *externalapi.DomainHash) error {

	data, err := rt.dataForModification(node)
	if err != nil {
		return err
	}
	data.TreeNode.Parent = parent
	return rt.stageData(dbTx, node, data)
}

func (rt *reachabilityManager) stageInterval(dbTx model.DBTransaction,
	node *externalapi.DomainHash, interval *model.ReachabilityInterval) error {

	data, err := rt.dataForModification(node)
	if err != nil {
		return err
	}
	data.TreeNode.Interval = interval
	return rt.stageData(dbTx, node, data)
}
