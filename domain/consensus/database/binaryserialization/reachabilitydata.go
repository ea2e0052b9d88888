package binaryserialization

import (
	"github.com/dagnet/dagd/domain/consensus/model"
	"github.com/dagnet/dagd/domain/consensus/model/externalapi"
)

// SerializeReachabilityData serializes reachability data to a slice of bytes
func SerializeReachabilityData(reachabilityData *model.ReachabilityData) []byte {
	s := newSerializer()

	treeNode := reachabilityData.TreeNode
	s.putHashes(treeNode.Children)
	s.putBool(treeNode.Parent != nil)
	if treeNode.Parent != nil {
		s.putHash(treeNode.Parent)
	}
	s.putUint64(treeNode.Interval.Start)
	s.putUint64(treeNode.Interval.End)

	s.putHashes(reachabilityData.FutureCoveringSet)
	return s.bytes()
}

// DeserializeReachabilityData deserializes a slice of bytes to reachability data
func DeserializeReachabilityData(reachabilityDataBytes []byte) (*model.ReachabilityData, error) {
	d := newDeserializer(reachabilityDataBytes)

	children, err := d.readHashes()
	if err != nil {
		return nil, err
	}
	hasParent, err := d.readBool()
	if err != nil {
		return nil, err
	}
	var parent *externalapi.DomainHash
	if hasParent {
		parent, err = d.readHash()
		if err != nil {
			return nil, err
		}
	}
	intervalStart, err := d.readUint64()
	if err != nil {
		return nil, err
	}
	intervalEnd, err := d.readUint64()
	if err != nil {
		return nil, err
	}

	futureCoveringSet, err := d.readHashes()
	if err != nil {
		return nil, err
	}
	if err := d.done(); err != nil {
		return nil, err
	}

	return &model.ReachabilityData{
		TreeNode: &model.ReachabilityTreeNode{
			Children: children,
			Parent:   parent,
			Interval: &model.ReachabilityInterval{
				Start: intervalStart,
				End:   intervalEnd,
			},
		},
		FutureCoveringSet: futureCoveringSet,
	}, nil
}
