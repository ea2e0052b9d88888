package binaryserialization

import (
	"math/big"
	"sort"

	"github.com/dagnet/dagd/domain/consensus/model"
	"github.com/dagnet/dagd/domain/consensus/model/externalapi"
)

// SerializeGHOSTDAGData serializes GHOSTDAG data to a slice of bytes.
//
// The serialization is deterministic: map entries are written in
// ascending hash order, so equal data always yields equal bytes.
func SerializeGHOSTDAGData(blockGHOSTDAGData *model.BlockGHOSTDAGData) []byte {
	s := newSerializer()

	s.putUint64(blockGHOSTDAGData.BlueScore)
	s.putLengthPrefixedBytes(blockGHOSTDAGData.BlueWork.Bytes())

	s.putBool(blockGHOSTDAGData.SelectedParent != nil)
	if blockGHOSTDAGData.SelectedParent != nil {
		s.putHash(blockGHOSTDAGData.SelectedParent)
	}

	s.putHashes(blockGHOSTDAGData.MergeSetBlues)
	s.putHashes(blockGHOSTDAGData.MergeSetReds)

	bluesAnticoneSizesKeys := make([]*externalapi.DomainHash, 0, len(blockGHOSTDAGData.BluesAnticoneSizes))
	for hash := range blockGHOSTDAGData.BluesAnticoneSizes {
		hashCopy := hash
		bluesAnticoneSizesKeys = append(bluesAnticoneSizesKeys, &hashCopy)
	}
	sort.Slice(bluesAnticoneSizesKeys, func(i, j int) bool {
		return bluesAnticoneSizesKeys[i].Less(bluesAnticoneSizesKeys[j])
	})

	s.putUint64(uint64(len(bluesAnticoneSizesKeys)))
	for _, hash := range bluesAnticoneSizesKeys {
		s.putHash(hash)
		s.putByte(byte(blockGHOSTDAGData.BluesAnticoneSizes[*hash]))
	}

	return s.bytes()
}

// DeserializeGHOSTDAGData deserializes a slice of bytes to GHOSTDAG data
func DeserializeGHOSTDAGData(ghostdagDataBytes []byte) (*model.BlockGHOSTDAGData, error) {
	d := newDeserializer(ghostdagDataBytes)

	blueScore, err := d.readUint64()
	if err != nil {
		return nil, err
	}
	blueWorkBytes, err := d.readLengthPrefixedBytes()
	if err != nil {
		return nil, err
	}
	blueWork := new(big.Int).SetBytes(blueWorkBytes)

	hasSelectedParent, err := d.readBool()
	if err != nil {
		return nil, err
	}
	var selectedParent *externalapi.DomainHash
	if hasSelectedParent {
		selectedParent, err = d.readHash()
		if err != nil {
			return nil, err
		}
	}

	mergeSetBlues, err := d.readHashes()
	if err != nil {
		return nil, err
	}
	mergeSetReds, err := d.readHashes()
	if err != nil {
		return nil, err
	}

	bluesAnticoneSizesLength, err := d.readUint64()
	if err != nil {
		return nil, err
	}
	bluesAnticoneSizes := make(map[externalapi.DomainHash]model.KType, bluesAnticoneSizesLength)
	for i := uint64(0); i < bluesAnticoneSizesLength; i++ {
		hash, err := d.readHash()
		if err != nil {
			return nil, err
		}
		anticoneSize, err := d.readByte()
		if err != nil {
			return nil, err
		}
		bluesAnticoneSizes[*hash] = model.KType(anticoneSize)
	}

	if err := d.done(); err != nil {
		return nil, err
	}

	return &model.BlockGHOSTDAGData{
		BlueScore:          blueScore,
		BlueWork:           blueWork,
		SelectedParent:     selectedParent,
		MergeSetBlues:      mergeSetBlues,
		MergeSetReds:       mergeSetReds,
		BluesAnticoneSizes: bluesAnticoneSizes,
	}, nil
}
