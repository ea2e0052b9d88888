package binaryserialization

import (
	"encoding/binary"
	"math/big"
	"testing"

	"github.com/dagnet/dagd/domain/consensus/model"
	"github.com/dagnet/dagd/domain/consensus/model/externalapi"
)

func hashForTest(b byte) *externalapi.DomainHash {
	return externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{b})
}

func TestGHOSTDAGDataSerialization(t *testing.T) {
	tests := []struct {
		name              string
		blockGHOSTDAGData *model.BlockGHOSTDAGData
	}{
		{
			name: "genesis data with a nil selected parent",
			blockGHOSTDAGData: &model.BlockGHOSTDAGData{
				BlueScore:          0,
				BlueWork:           new(big.Int),
				SelectedParent:     nil,
				MergeSetBlues:      []*externalapi.DomainHash{},
				MergeSetReds:       []*externalapi.DomainHash{},
				BluesAnticoneSizes: map[externalapi.DomainHash]model.KType{},
			},
		},
		{
			name: "data with blues, reds and anticone sizes",
			blockGHOSTDAGData: &model.BlockGHOSTDAGData{
				BlueScore:      1234,
				BlueWork:       big.NewInt(1 << 40),
				SelectedParent: hashForTest(1),
				MergeSetBlues:  []*externalapi.DomainHash{hashForTest(1), hashForTest(2)},
				MergeSetReds:   []*externalapi.DomainHash{hashForTest(3)},
				BluesAnticoneSizes: map[externalapi.DomainHash]model.KType{
					*hashForTest(1): 0,
					*hashForTest(2): 1,
				},
			},
		},
	}

	for _, test := range tests {
		serialized := SerializeGHOSTDAGData(test.blockGHOSTDAGData)
		deserialized, err := DeserializeGHOSTDAGData(serialized)
		if err != nil {
			t.Fatalf("%s: DeserializeGHOSTDAGData: %+v", test.name, err)
		}
		if !deserialized.Equal(test.blockGHOSTDAGData) {
			t.Errorf("%s: expected the deserialized data to equal the original", test.name)
		}
	}

	// The serialization must be deterministic since it is compared
	// verbatim during repeated inserts.
	data := tests[1].blockGHOSTDAGData
	first := SerializeGHOSTDAGData(data)
	for i := 0; i < 10; i++ {
		if string(SerializeGHOSTDAGData(data)) != string(first) {
			t.Fatalf("expected repeated serializations to be byte-identical")
		}
	}
}

func TestReachabilityDataSerialization(t *testing.T) {
	tests := []struct {
		name             string
		reachabilityData *model.ReachabilityData
	}{
		{
			name: "tree root with no parent",
			reachabilityData: &model.ReachabilityData{
				TreeNode: &model.ReachabilityTreeNode{
					Children: []*externalapi.DomainHash{},
					Parent:   nil,
					Interval: &model.ReachabilityInterval{Start: 1, End: 1<<64 - 2},
				},
				FutureCoveringSet: model.FutureCoveringTreeNodeSet{},
			},
		},
		{
			name: "inner tree node with children and a future covering set",
			reachabilityData: &model.ReachabilityData{
				TreeNode: &model.ReachabilityTreeNode{
					Children: []*externalapi.DomainHash{hashForTest(2), hashForTest(3)},
					Parent:   hashForTest(1),
					Interval: &model.ReachabilityInterval{Start: 100, End: 1000},
				},
				FutureCoveringSet: model.FutureCoveringTreeNodeSet{hashForTest(4), hashForTest(5)},
			},
		},
	}

	for _, test := range tests {
		serialized := SerializeReachabilityData(test.reachabilityData)
		deserialized, err := DeserializeReachabilityData(serialized)
		if err != nil {
			t.Fatalf("%s: DeserializeReachabilityData: %+v", test.name, err)
		}
		if !deserialized.Equal(test.reachabilityData) {
			t.Errorf("%s: expected the deserialized data to equal the original", test.name)
		}
	}
}

// TestDeserializationRejectsCorruptLengthPrefix corrupts a length
// prefix to huge values and checks that deserialization returns an
// error rather than panicking on an overflowed bounds check.
func TestDeserializationRejectsCorruptLengthPrefix(t *testing.T) {
	data := &model.BlockGHOSTDAGData{
		BlueScore:          7,
		BlueWork:           big.NewInt(77777),
		SelectedParent:     hashForTest(1),
		MergeSetBlues:      []*externalapi.DomainHash{hashForTest(1)},
		MergeSetReds:       []*externalapi.DomainHash{},
		BluesAnticoneSizes: map[externalapi.DomainHash]model.KType{*hashForTest(1): 0},
	}
	serialized := SerializeGHOSTDAGData(data)

	// The blue work length prefix sits right after the 8-byte blue score.
	corruptLengths := []uint64{1<<64 - 1, 1 << 63, uint64(len(serialized)) + 1}
	for _, corruptLength := range corruptLengths {
		corrupted := make([]byte, len(serialized))
		copy(corrupted, serialized)
		binary.LittleEndian.PutUint64(corrupted[8:16], corruptLength)

		_, err := DeserializeGHOSTDAGData(corrupted)
		if err == nil {
			t.Fatalf("expected deserialization with length prefix %d to fail",
				corruptLength)
		}
	}
}

func TestDeserializationRejectsTrailingBytes(t *testing.T) {
	blockRelations := &model.BlockRelations{
		Parents:  []*externalapi.DomainHash{hashForTest(1)},
		Children: []*externalapi.DomainHash{},
	}

	serialized := SerializeBlockRelations(blockRelations)
	_, err := DeserializeBlockRelations(append(serialized, 0xde, 0xad))
	if err == nil {
		t.Fatalf("expected deserialization of data with trailing bytes to fail")
	}
}
