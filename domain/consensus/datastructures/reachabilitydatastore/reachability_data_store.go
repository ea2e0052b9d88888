package reachabilitydatastore

import (
	"sync"

	"github.com/dagnet/dagd/domain/consensus/database"
	"github.com/dagnet/dagd/domain/consensus/database/binaryserialization"
	"github.com/dagnet/dagd/domain/consensus/model"
	"github.com/dagnet/dagd/domain/consensus/model/externalapi"
	"github.com/dagnet/dagd/domain/consensus/utils/lrucache"
)

var reachabilityDataBucket = database.MakeBucket([]byte("reachability-data"))
var reachabilityReindexRootKey = database.MakeBucket(nil).Key([]byte("reachability-reindex-root"))

// reachabilityDataStore represents a store of ReachabilityData
type reachabilityDataStore struct {
	mtx                   sync.RWMutex
	reachabilityDataCache *lrucache.LRUCache
	reindexRootCache      *externalapi.DomainHash
}

// New instantiates a new ReachabilityDataStore
func New(cacheSize int) model.ReachabilityDataStore {
	return &reachabilityDataStore{
		reachabilityDataCache: lrucache.New(cacheSize),
	}
}

// Insert inserts the given reachabilityData for the given blockHash
func (rds *reachabilityDataStore) Insert(dbTx model.DBTransaction,
	blockHash *externalapi.DomainHash, reachabilityData *model.ReachabilityData) error {

	rds.mtx.Lock()
	defer rds.mtx.Unlock()

	err := dbTx.Put(rds.reachabilityDataBlockHashAsKey(blockHash),
		binaryserialization.SerializeReachabilityData(reachabilityData))
	if err != nil {
		return err
	}
	rds.reachabilityDataCache.Add(blockHash, reachabilityData.Clone())
	return nil
}

// UpdateReindexRoot updates the reachability reindex root
func (rds *reachabilityDataStore) UpdateReindexRoot(dbTx model.DBTransaction,
	reachabilityReindexRoot *externalapi.DomainHash) error {

	rds.mtx.Lock()
	defer rds.mtx.Unlock()

	err := dbTx.Put(reachabilityReindexRootKey, binaryserialization.SerializeHash(reachabilityReindexRoot))
	if err != nil {
		return err
	}
	rds.reindexRootCache = reachabilityReindexRoot
	return nil
}

// ReachabilityData returns the reachabilityData associated with the given blockHash
func (rds *reachabilityDataStore) ReachabilityData(dbContext model.DBReader,
	blockHash *externalapi.DomainHash) (*model.ReachabilityData, error) {

	rds.mtx.RLock()
	defer rds.mtx.RUnlock()

	if reachabilityData, ok := rds.reachabilityDataCache.Get(blockHash); ok {
		return reachabilityData.(*model.ReachabilityData).Clone(), nil
	}

	reachabilityDataBytes, err := dbContext.Get(rds.reachabilityDataBlockHashAsKey(blockHash))
	if err != nil {
		return nil, err
	}

	reachabilityData, err := binaryserialization.DeserializeReachabilityData(reachabilityDataBytes)
	if err != nil {
		return nil, err
	}
	rds.reachabilityDataCache.Add(blockHash, reachabilityData)
	return reachabilityData.Clone(), nil
}

// HasReachabilityData returns whether reachabilityData exists for the given blockHash
func (rds *reachabilityDataStore) HasReachabilityData(dbContext model.DBReader,
	blockHash *externalapi.DomainHash) (bool, error) {

	rds.mtx.RLock()
	defer rds.mtx.RUnlock()

	if rds.reachabilityDataCache.Has(blockHash) {
		return true, nil
	}
	return dbContext.Has(rds.reachabilityDataBlockHashAsKey(blockHash))
}

// ReindexRoot returns the current reachability reindex root.
//
// The reindexRootCache field is only ever assigned under the write
// lock (in UpdateReindexRoot); a cold read falls through to the
// database without populating it.
func (rds *reachabilityDataStore) ReindexRoot(dbContext model.DBReader) (*externalapi.DomainHash, error) {
	rds.mtx.RLock()
	defer rds.mtx.RUnlock()

	if rds.reindexRootCache != nil {
		return rds.reindexRootCache, nil
	}

	reindexRootBytes, err := dbContext.Get(reachabilityReindexRootKey)
	if err != nil {
		return nil, err
	}

	return binaryserialization.DeserializeHash(reindexRootBytes)
}

// HasReindexRoot returns whether a reachability reindex root was set
func (rds *reachabilityDataStore) HasReindexRoot(dbContext model.DBReader) (bool, error) {
	rds.mtx.RLock()
	defer rds.mtx.RUnlock()

	if rds.reindexRootCache != nil {
		return true, nil
	}
	return dbContext.Has(reachabilityReindexRootKey)
}

func (rds *reachabilityDataStore) reachabilityDataBlockHashAsKey(hash *externalapi.DomainHash) model.DBKey {
	return reachabilityDataBucket.Key(hash.ByteSlice())
}
