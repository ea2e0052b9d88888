package blockstatusstore

import (
	"sync"

	"github.com/dagnet/dagd/domain/consensus/database"
	"github.com/dagnet/dagd/domain/consensus/database/binaryserialization"
	"github.com/dagnet/dagd/domain/consensus/model"
	"github.com/dagnet/dagd/domain/consensus/model/externalapi"
	"github.com/dagnet/dagd/domain/consensus/utils/lrucache"
)

var bucket = database.MakeBucket([]byte("block-statuses"))

// blockStatusStore represents a store of BlockStatuses
type blockStatusStore struct {
	mtx   sync.RWMutex
	cache *lrucache.LRUCache
}

// New instantiates a new BlockStatusStore
func New(cacheSize int) model.BlockStatusStore {
	return &blockStatusStore{
		cache: lrucache.New(cacheSize),
	}
}

// Set sets the status of the given blockHash. Overwrites any previous
// status, so an invalid block may later be upgraded and vice versa.
func (bss *blockStatusStore) Set(dbTx model.DBTransaction,
	blockHash *externalapi.DomainHash, blockStatus model.BlockStatus) error {

	bss.mtx.Lock()
	defer bss.mtx.Unlock()

	err := dbTx.Put(bss.hashAsKey(blockHash), binaryserialization.SerializeBlockStatus(blockStatus))
	if err != nil {
		return err
	}
	bss.cache.Add(blockHash, blockStatus)
	return nil
}

// Get gets the status of the given blockHash
func (bss *blockStatusStore) Get(dbContext model.DBReader,
	blockHash *externalapi.DomainHash) (model.BlockStatus, error) {

	bss.mtx.RLock()
	defer bss.mtx.RUnlock()

	if status, ok := bss.cache.Get(blockHash); ok {
		return status.(model.BlockStatus), nil
	}

	statusBytes, err := dbContext.Get(bss.hashAsKey(blockHash))
	if err != nil {
		return 0, err
	}

	status, err := binaryserialization.DeserializeBlockStatus(statusBytes)
	if err != nil {
		return 0, err
	}
	bss.cache.Add(blockHash, status)
	return status, nil
}

// Exists returns true if the blockStatusStore contains the given blockHash
func (bss *blockStatusStore) Exists(dbContext model.DBReader,
	blockHash *externalapi.DomainHash) (bool, error) {

	bss.mtx.RLock()
	defer bss.mtx.RUnlock()

	if bss.cache.Has(blockHash) {
		return true, nil
	}
	return dbContext.Has(bss.hashAsKey(blockHash))
}

func (bss *blockStatusStore) hashAsKey(hash *externalapi.DomainHash) model.DBKey {
	return bucket.Key(hash.ByteSlice())
}
