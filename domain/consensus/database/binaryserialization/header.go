package binaryserialization

import (
	"github.com/dagnet/dagd/domain/consensus/model/externalapi"
)

// SerializeHeader serializes a block header to a slice of bytes
func SerializeHeader(header *externalapi.DomainBlockHeader) []byte {
	s := newSerializer()
	s.putUint16(header.Version)
	s.putHashes(header.ParentHashes)
	s.putHash(&header.HashMerkleRoot)
	s.putUint64(uint64(header.TimeInMilliseconds))
	s.putUint32(header.Bits)
	s.putUint64(header.Nonce)
	return s.bytes()
}

// DeserializeHeader deserializes a slice of bytes to a block header
func DeserializeHeader(headerBytes []byte) (*externalapi.DomainBlockHeader, error) {
	d := newDeserializer(headerBytes)

	version, err := d.readUint16()
	if err != nil {
		return nil, err
	}
	parentHashes, err := d.readHashes()
	if err != nil {
		return nil, err
	}
	hashMerkleRoot, err := d.readHash()
	if err != nil {
		return nil, err
	}
	timeInMilliseconds, err := d.readUint64()
	if err != nil {
		return nil, err
	}
	bits, err := d.readUint32()
	if err != nil {
		return nil, err
	}
	nonce, err := d.readUint64()
	if err != nil {
		return nil, err
	}
	if err := d.done(); err != nil {
		return nil, err
	}

	return &externalapi.DomainBlockHeader{
		Version:            version,
		ParentHashes:       parentHashes,
		HashMerkleRoot:     *hashMerkleRoot,
		TimeInMilliseconds: int64(timeInMilliseconds),
		Bits:               bits,
		Nonce:              nonce,
	}, nil
}
