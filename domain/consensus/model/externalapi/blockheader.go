package externalapi

// DomainBlockHeader represents the header part of a block
type DomainBlockHeader struct {
	Version            uint16
	ParentHashes       []*DomainHash
	HashMerkleRoot     DomainHash
	TimeInMilliseconds int64
	Bits               uint32
	Nonce              uint64
}

// Clone returns a clone of DomainBlockHeader
func (header *DomainBlockHeader) Clone() *DomainBlockHeader {
	return &DomainBlockHeader{
		Version:            header.Version,
		ParentHashes:       CloneHashes(header.ParentHashes),
		HashMerkleRoot:     header.HashMerkleRoot,
		TimeInMilliseconds: header.TimeInMilliseconds,
		Bits:               header.Bits,
		Nonce:              header.Nonce,
	}
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Equal and Clone accordingly.
var _ = DomainBlockHeader{0, []*DomainHash{}, DomainHash{}, 0, 0, 0}

// Equal returns whether header equals to other
func (header *DomainBlockHeader) Equal(other *DomainBlockHeader) bool {
	if header == nil || other == nil {
		return header == other
	}

	if header.Version != other.Version {
		return false
	}

	if !HashesEqual(header.ParentHashes, other.ParentHashes) {
		return false
	}

	if !header.HashMerkleRoot.Equal(&other.HashMerkleRoot) {
		return false
	}

	if header.TimeInMilliseconds != other.TimeInMilliseconds {
		return false
	}

	if header.Bits != other.Bits {
		return false
	}

	if header.Nonce != other.Nonce {
		return false
	}

	return true
}
