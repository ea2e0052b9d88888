package binaryserialization

import (
	"encoding/binary"

	"github.com/dagnet/dagd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// All serializers in this package use little-endian fixed-width integers
// and length-prefixed repeated fields. The format is stable so that the
// same bytes always round-trip to the same domain object.

// SerializeHash serializes hash to a slice of bytes
func SerializeHash(hash *externalapi.DomainHash) []byte {
	return hash.ByteSlice()
}

// DeserializeHash deserializes a slice of bytes to a hash
func DeserializeHash(hashBytes []byte) (*externalapi.DomainHash, error) {
	return externalapi.NewDomainHashFromByteSlice(hashBytes)
}

// SerializeHashes serializes a slice of hashes to a slice of bytes
func SerializeHashes(hashes []*externalapi.DomainHash) []byte {
	buff := make([]byte, 8, 8+len(hashes)*externalapi.DomainHashSize)
	binary.LittleEndian.PutUint64(buff[:8], uint64(len(hashes)))
	for _, hash := range hashes {
		buff = append(buff, hash.ByteSlice()...)
	}
	return buff
}

type serializer struct {
	buff []byte
}

func newSerializer() *serializer {
	return &serializer{}
}

func (s *serializer) bytes() []byte {
	return s.buff
}

func (s *serializer) putByte(value byte) {
	s.buff = append(s.buff, value)
}

func (s *serializer) putBool(value bool) {
	if value {
		s.putByte(1)
	} else {
		s.putByte(0)
	}
}

func (s *serializer) putUint16(value uint16) {
	var scratch [2]byte
	binary.LittleEndian.PutUint16(scratch[:], value)
	s.buff = append(s.buff, scratch[:]...)
}

func (s *serializer) putUint32(value uint32) {
	var scratch [4]byte
	binary.LittleEndian.PutUint32(scratch[:], value)
	s.buff = append(s.buff, scratch[:]...)
}

func (s *serializer) putUint64(value uint64) {
	var scratch [8]byte
	binary.LittleEndian.PutUint64(scratch[:], value)
	s.buff = append(s.buff, scratch[:]...)
}

func (s *serializer) putRawBytes(value []byte) {
	s.buff = append(s.buff, value...)
}

func (s *serializer) putLengthPrefixedBytes(value []byte) {
	s.putUint64(uint64(len(value)))
	s.putRawBytes(value)
}

func (s *serializer) putHash(hash *externalapi.DomainHash) {
	s.putRawBytes(hash.ByteSlice())
}

func (s *serializer) putHashes(hashes []*externalapi.DomainHash) {
	s.putUint64(uint64(len(hashes)))
	for _, hash := range hashes {
		s.putHash(hash)
	}
}

type deserializer struct {
	buff   []byte
	offset int
}

func newDeserializer(buff []byte) *deserializer {
	return &deserializer{buff: buff}
}

func (d *deserializer) readBytes(length int) ([]byte, error) {
	if length < 0 || d.offset+length > len(d.buff) {
		return nil, errors.Errorf("unexpected end of data "+
			"(offset: %d, length: %d, total: %d)", d.offset, length, len(d.buff))
	}
	value := d.buff[d.offset : d.offset+length]
	d.offset += length
	return value, nil
}

func (d *deserializer) readByte() (byte, error) {
	bytes, err := d.readBytes(1)
	if err != nil {
		return 0, err
	}
	return bytes[0], nil
}

func (d *deserializer) readBool() (bool, error) {
	value, err := d.readByte()
	if err != nil {
		return false, err
	}
	if value > 1 {
		return false, errors.Errorf("invalid bool value %d", value)
	}
	return value == 1, nil
}

func (d *deserializer) readUint16() (uint16, error) {
	bytes, err := d.readBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(bytes), nil
}

func (d *deserializer) readUint32() (uint32, error) {
	bytes, err := d.readBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(bytes), nil
}

func (d *deserializer) readUint64() (uint64, error) {
	bytes, err := d.readBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(bytes), nil
}

func (d *deserializer) readLengthPrefixedBytes() ([]byte, error) {
	length, err := d.readUint64()
	if err != nil {
		return nil, err
	}
	// Check against the remaining data while still a uint64. Converting
	// an untrusted length to int first could overflow the bounds check
	// in readBytes and panic instead of returning an error.
	if length > uint64(len(d.buff)-d.offset) {
		return nil, errors.Errorf("length prefix %d exceeds remaining data "+
			"(offset: %d, total: %d)", length, d.offset, len(d.buff))
	}
	return d.readBytes(int(length))
}

func (d *deserializer) readHash() (*externalapi.DomainHash, error) {
	hashBytes, err := d.readBytes(externalapi.DomainHashSize)
	if err != nil {
		return nil, err
	}
	return externalapi.NewDomainHashFromByteSlice(hashBytes)
}

func (d *deserializer) readHashes() ([]*externalapi.DomainHash, error) {
	length, err := d.readUint64()
	if err != nil {
		return nil, err
	}
	if length > uint64(len(d.buff)-d.offset)/externalapi.DomainHashSize {
		return nil, errors.Errorf("hash count %d exceeds remaining data", length)
	}
	hashes := make([]*externalapi.DomainHash, length)
	for i := uint64(0); i < length; i++ {
		hash, err := d.readHash()
		if err != nil {
			return nil, err
		}
		hashes[i] = hash
	}
	return hashes, nil
}

// done errors if any bytes are left unconsumed.
func (d *deserializer) done() error {
	if d.offset != len(d.buff) {
		return errors.Errorf("serialized data has %d trailing bytes", len(d.buff)-d.offset)
	}
	return nil
}
