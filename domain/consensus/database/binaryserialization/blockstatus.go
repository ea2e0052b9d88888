package binaryserialization

import (
	"github.com/dagnet/dagd/domain/consensus/model"
	"github.com/pkg/errors"
)

// SerializeBlockStatus serializes a block status to a slice of bytes
func SerializeBlockStatus(blockStatus model.BlockStatus) []byte {
	return []byte{byte(blockStatus)}
}

// DeserializeBlockStatus deserializes a slice of bytes to a block status
func DeserializeBlockStatus(blockStatusBytes []byte) (model.BlockStatus, error) {
	if len(blockStatusBytes) != 1 {
		return 0, errors.Errorf("block status should be 1 byte, got %d", len(blockStatusBytes))
	}
	return model.BlockStatus(blockStatusBytes[0]), nil
}
