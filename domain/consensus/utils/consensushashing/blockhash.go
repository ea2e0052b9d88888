package consensushashing

import (
	"encoding/binary"

	"github.com/dagnet/dagd/domain/consensus/model/externalapi"
	"github.com/dagnet/dagd/domain/consensus/utils/hashes"
)

// HeaderHash returns the given header hash
func HeaderHash(header *externalapi.DomainBlockHeader) *externalapi.DomainHash {
	// Encode the header and hash everything prior to the number of
	// transactions.
	writer := hashes.NewHashWriter()
	serializeHeader(writer, header)
	return writer.Finalize()
}

func serializeHeader(w *hashes.HashWriter, header *externalapi.DomainBlockHeader) {
	var scratch [8]byte

	binary.LittleEndian.PutUint16(scratch[:2], header.Version)
	w.InfallibleWrite(scratch[:2])

	binary.LittleEndian.PutUint64(scratch[:], uint64(len(header.ParentHashes)))
	w.InfallibleWrite(scratch[:])
	for _, parentHash := range header.ParentHashes {
		w.InfallibleWrite(parentHash.ByteSlice())
	}

	w.InfallibleWrite(header.HashMerkleRoot.ByteSlice())

	binary.LittleEndian.PutUint64(scratch[:], uint64(header.TimeInMilliseconds))
	w.InfallibleWrite(scratch[:])

	binary.LittleEndian.PutUint32(scratch[:4], header.Bits)
	w.InfallibleWrite(scratch[:4])

	binary.LittleEndian.PutUint64(scratch[:], header.Nonce)
	w.InfallibleWrite(scratch[:])
}
