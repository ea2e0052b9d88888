package model

// BlockStatus represents the validation state of the block.
type BlockStatus byte

// Clone returns a clone of BlockStatus
func (bs BlockStatus) Clone() BlockStatus {
	return bs
}

// Equal returns whether bs equals to other
func (bs BlockStatus) Equal(other BlockStatus) bool {
	return bs == other
}

const (
	// StatusInvalid indicates that the block is invalid.
	StatusInvalid BlockStatus = iota

	// StatusValid indicates that the block has been fully validated.
	StatusValid

	// StatusHeaderOnly indicates that the block transactions are not held
	// (pruned or wasn't added yet), but the header was validated and
	// its topology was committed to the DAG.
	StatusHeaderOnly
)

var blockStatusStrings = map[BlockStatus]string{
	StatusInvalid:    "Invalid",
	StatusValid:      "Valid",
	StatusHeaderOnly: "HeaderOnly",
}

func (bs BlockStatus) String() string {
	return blockStatusStrings[bs]
}
