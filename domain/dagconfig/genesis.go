package dagconfig

import (
	"github.com/dagnet/dagd/domain/consensus/model/externalapi"
)

// genesisMerkleRoot is the merkle root committed to by the main network
// genesis block. The genesis block carries no transactions, so this is the
// hash of an empty payload coinbase.
var genesisMerkleRoot = externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{
	0x4a, 0x5e, 0x1e, 0x4b, 0xaa, 0xb8, 0x9f, 0x3a,
	0x32, 0x51, 0x8a, 0x88, 0xc3, 0x1b, 0xc8, 0x7f,
	0x61, 0x8f, 0x76, 0x67, 0x3e, 0x2c, 0xc7, 0x7a,
	0xb2, 0x12, 0x7b, 0x7a, 0xfd, 0xed, 0xa3, 0x3b,
})

// genesisHeader is the header of the main network genesis block. It has no
// parents, making it the sole root of the DAG.
var genesisHeader = externalapi.DomainBlockHeader{
	Version:            1,
	ParentHashes:       []*externalapi.DomainHash{},
	HashMerkleRoot:     *genesisMerkleRoot,
	TimeInMilliseconds: 0x17a7662c7f0,
	Bits:               0x207fffff,
	Nonce:              0x2,
}

// simnetGenesisHeader is the header of the simulation network genesis block.
var simnetGenesisHeader = externalapi.DomainBlockHeader{
	Version:            1,
	ParentHashes:       []*externalapi.DomainHash{},
	HashMerkleRoot:     *genesisMerkleRoot,
	TimeInMilliseconds: 0x17a7662c7f0,
	Bits:               0x207fffff,
	Nonce:              0x0,
}
