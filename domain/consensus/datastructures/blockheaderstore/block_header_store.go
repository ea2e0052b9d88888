package blockheaderstore

import (
	"encoding/binary"
	"sync"

	"github.com/dagnet/dagd/domain/consensus/database"
	"github.com/dagnet/dagd/domain/consensus/database/binaryserialization"
	"github.com/dagnet/dagd/domain/consensus/model"
	"github.com/dagnet/dagd/domain/consensus/model/externalapi"
	"github.com/dagnet/dagd/domain/consensus/utils/lrucache"
	"github.com/pkg/errors"
)

var bucket = database.MakeBucket([]byte("block-headers"))
var countKey = database.MakeBucket(nil).Key([]byte("block-headers-count"))

// blockHeaderStore represents a store of block headers
type blockHeaderStore struct {
	mtx   sync.RWMutex
	cache *lrucache.LRUCache
	count uint64
}

// New instantiates a new BlockHeaderStore
func New(dbContext model.DBReader, cacheSize int) (model.BlockHeaderStore, error) {
	blockHeaderStore := &blockHeaderStore{
		cache: lrucache.New(cacheSize),
	}

	err := blockHeaderStore.initializeCount(dbContext)
	if err != nil {
		return nil, err
	}

	return blockHeaderStore, nil
}

func (bhs *blockHeaderStore) initializeCount(dbContext model.DBReader) error {
	hasCount, err := dbContext.Has(countKey)
	if err != nil {
		return err
	}
	if !hasCount {
		bhs.count = 0
		return nil
	}

	countBytes, err := dbContext.Get(countKey)
	if err != nil {
		return err
	}
	if len(countBytes) != 8 {
		return errors.Errorf("header count should be 8 bytes, got %d", len(countBytes))
	}
	bhs.count = binary.LittleEndian.Uint64(countBytes)
	return nil
}

// Insert inserts the given blockHeader for the given blockHash
func (bhs *blockHeaderStore) Insert(dbTx model.DBTransaction,
	blockHash *externalapi.DomainHash, blockHeader *externalapi.DomainBlockHeader) error {

	bhs.mtx.Lock()
	defer bhs.mtx.Unlock()

	exists, err := bhs.hasBlockHeader(dbTx, blockHash)
	if err != nil {
		return err
	}
	if exists {
		return errors.Errorf("block header %s already exists", blockHash)
	}

	err = dbTx.Put(bhs.hashAsKey(blockHash), binaryserialization.SerializeHeader(blockHeader))
	if err != nil {
		return err
	}

	newCount := bhs.count + 1
	var countBytes [8]byte
	binary.LittleEndian.PutUint64(countBytes[:], newCount)
	err = dbTx.Put(countKey, countBytes[:])
	if err != nil {
		return err
	}

	bhs.count = newCount
	bhs.cache.Add(blockHash, blockHeader.Clone())
	return nil
}

// BlockHeader gets the block header associated with the given blockHash
func (bhs *blockHeaderStore) BlockHeader(dbContext model.DBReader,
	blockHash *externalapi.DomainHash) (*externalapi.DomainBlockHeader, error) {

	bhs.mtx.RLock()
	defer bhs.mtx.RUnlock()

	return bhs.blockHeader(dbContext, blockHash)
}

// HasBlockHeader returns whether a block header for the given blockHash exists
func (bhs *blockHeaderStore) HasBlockHeader(dbContext model.DBReader,
	blockHash *externalapi.DomainHash) (bool, error) {

	bhs.mtx.RLock()
	defer bhs.mtx.RUnlock()

	return bhs.hasBlockHeader(dbContext, blockHash)
}

// Count returns the number of block headers in the store
func (bhs *blockHeaderStore) Count(_ model.DBReader) (uint64, error) {
	bhs.mtx.RLock()
	defer bhs.mtx.RUnlock()

	return bhs.count, nil
}

func (bhs *blockHeaderStore) blockHeader(dbContext model.DBReader,
	blockHash *externalapi.DomainHash) (*externalapi.DomainBlockHeader, error) {

	if header, ok := bhs.cache.Get(blockHash); ok {
		return header.(*externalapi.DomainBlockHeader).Clone(), nil
	}

	headerBytes, err := dbContext.Get(bhs.hashAsKey(blockHash))
	if err != nil {
		return nil, err
	}

	header, err := binaryserialization.DeserializeHeader(headerBytes)
	if err != nil {
		return nil, err
	}
	bhs.cache.Add(blockHash, header)
	return header.Clone(), nil
}

func (bhs *blockHeaderStore) hasBlockHeader(dbContext model.DBReader,
	blockHash *externalapi.DomainHash) (bool, error) {

	if bhs.cache.Has(blockHash) {
		return true, nil
	}
	return dbContext.Has(bhs.hashAsKey(blockHash))
}

func (bhs *blockHeaderStore) hashAsKey(hash *externalapi.DomainHash) model.DBKey {
	return bucket.Key(hash.ByteSlice())
}
