package dagconfig

import (
	"math/big"

	"github.com/dagnet/dagd/domain/consensus/model"
	"github.com/dagnet/dagd/domain/consensus/model/externalapi"
	"github.com/dagnet/dagd/domain/consensus/utils/consensushashing"
)

// bigOne is 1 represented as a big.Int. It is defined here to avoid
// the overhead of creating it multiple times.
var bigOne = big.NewInt(1)

// mainPowMax is the highest proof of work value a block can have for the
// main network. It is the value 2^255 - 1.
var mainPowMax = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne)

// simnetPowMax is the highest proof of work value a block can have for the
// simulation test network. It is the value 2^255 - 1.
var simnetPowMax = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne)

// Params defines a network by its parameters. These parameters may be
// used by applications to differentiate networks as well as addresses
// and keys for one network from those intended for use on another network.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// K defines the K parameter for GHOSTDAG consensus algorithm.
	// See glossary for further details.
	K model.KType

	// GenesisHeader defines the first block of the DAG.
	GenesisHeader *externalapi.DomainBlockHeader

	// PowMax defines the highest allowed proof of work value for a
	// block as a uint256.
	PowMax *big.Int
}

// GenesisHash returns the hash of the network's genesis block.
func (p *Params) GenesisHash() *externalapi.DomainHash {
	return consensushashing.HeaderHash(p.GenesisHeader)
}

// MainnetParams defines the network parameters for the main network.
var MainnetParams = Params{
	Name:          "dagnet-mainnet",
	K:             18,
	GenesisHeader: &genesisHeader,
	PowMax:        mainPowMax,
}

// SimnetParams defines the network parameters for the simulation test
// network. This network is similar to the normal test network except it is
// intended for private use within a group of individuals doing simulation
// testing.
var SimnetParams = Params{
	Name:          "dagnet-simnet",
	K:             1,
	GenesisHeader: &simnetGenesisHeader,
	PowMax:        simnetPowMax,
}
