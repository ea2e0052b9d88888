package ghostdagdatastore

import (
	"sync"

	"github.com/dagnet/dagd/domain/consensus/database"
	"github.com/dagnet/dagd/domain/consensus/database/binaryserialization"
	"github.com/dagnet/dagd/domain/consensus/model"
	"github.com/dagnet/dagd/domain/consensus/model/externalapi"
	"github.com/dagnet/dagd/domain/consensus/utils/lrucache"
	"github.com/pkg/errors"
)

var bucket = database.MakeBucket([]byte("block-ghostdag-data"))

// ghostdagDataStore represents a store of BlockGHOSTDAGData.
//
// The store is append-only. Re-inserting a block with data equal to what
// is already stored is a no-op, which makes block processing idempotent.
// Re-inserting with different data indicates a consensus bug and fails.
type ghostdagDataStore struct {
	mtx   sync.RWMutex
	cache *lrucache.LRUCache
}

// New instantiates a new GHOSTDAGDataStore
func New(cacheSize int) model.GHOSTDAGDataStore {
	return &ghostdagDataStore{
		cache: lrucache.New(cacheSize),
	}
}

// Insert inserts the given blockGHOSTDAGData for the given blockHash
func (gds *ghostdagDataStore) Insert(dbTx model.DBTransaction,
	blockHash *externalapi.DomainHash, blockGHOSTDAGData *model.BlockGHOSTDAGData) error {

	gds.mtx.Lock()
	defer gds.mtx.Unlock()

	existingData, err := gds.get(dbTx, blockHash)
	if err != nil && !database.IsNotFoundError(err) {
		return err
	}
	if existingData != nil {
		if !existingData.Equal(blockGHOSTDAGData) {
			return errors.Errorf("ghostdag data for block %s already exists "+
				"and differs from the data being inserted", blockHash)
		}
		return nil
	}

	err = dbTx.Put(gds.hashAsKey(blockHash), binaryserialization.SerializeGHOSTDAGData(blockGHOSTDAGData))
	if err != nil {
		return err
	}
	gds.cache.Add(blockHash, blockGHOSTDAGData.Clone())
	return nil
}

// Get gets the blockGHOSTDAGData associated with the given blockHash
func (gds *ghostdagDataStore) Get(dbContext model.DBReader,
	blockHash *externalapi.DomainHash) (*model.BlockGHOSTDAGData, error) {

	gds.mtx.RLock()
	defer gds.mtx.RUnlock()

	return gds.get(dbContext, blockHash)
}

// Has returns whether blockGHOSTDAGData exists for the given blockHash
func (gds *ghostdagDataStore) Has(dbContext model.DBReader,
	blockHash *externalapi.DomainHash) (bool, error) {

	gds.mtx.RLock()
	defer gds.mtx.RUnlock()

	if gds.cache.Has(blockHash) {
		return true, nil
	}
	return dbContext.Has(gds.hashAsKey(blockHash))
}

func (gds *ghostdagDataStore) get(dbContext model.DBReader,
	blockHash *externalapi.DomainHash) (*model.BlockGHOSTDAGData, error) {

	if blockGHOSTDAGData, ok := gds.cache.Get(blockHash); ok {
		return blockGHOSTDAGData.(*model.BlockGHOSTDAGData).Clone(), nil
	}

	blockGHOSTDAGDataBytes, err := dbContext.Get(gds.hashAsKey(blockHash))
	if err != nil {
		return nil, err
	}

	blockGHOSTDAGData, err := binaryserialization.DeserializeGHOSTDAGData(blockGHOSTDAGDataBytes)
	if err != nil {
		return nil, err
	}
	gds.cache.Add(blockHash, blockGHOSTDAGData)
	return blockGHOSTDAGData.Clone(), nil
}

func (gds *ghostdagDataStore) hashAsKey(hash *externalapi.DomainHash) model.DBKey {
	return bucket.Key(hash.ByteSlice())
}
