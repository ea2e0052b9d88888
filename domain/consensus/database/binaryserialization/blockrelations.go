package binaryserialization

import (
	"github.com/dagnet/dagd/domain/consensus/model"
)

// SerializeBlockRelations serializes block relations to a slice of bytes
func SerializeBlockRelations(blockRelations *model.BlockRelations) []byte {
	s := newSerializer()
	s.putHashes(blockRelations.Parents)
	s.putHashes(blockRelations.Children)
	return s.bytes()
}

// DeserializeBlockRelations deserializes a slice of bytes to block relations
func DeserializeBlockRelations(blockRelationsBytes []byte) (*model.BlockRelations, error) {
	d := newDeserializer(blockRelationsBytes)

	parents, err := d.readHashes()
	if err != nil {
		return nil, err
	}
	children, err := d.readHashes()
	if err != nil {
		return nil, err
	}
	if err := d.done(); err != nil {
		return nil, err
	}

	return &model.BlockRelations{
		Parents:  parents,
		Children: children,
	}, nil
}
