package blockrelationstore

import (
	"sync"

	"github.com/dagnet/dagd/domain/consensus/database"
	"github.com/dagnet/dagd/domain/consensus/database/binaryserialization"
	"github.com/dagnet/dagd/domain/consensus/model"
	"github.com/dagnet/dagd/domain/consensus/model/externalapi"
	"github.com/dagnet/dagd/domain/consensus/utils/lrucache"
	"github.com/pkg/errors"
)

var bucket = database.MakeBucket([]byte("block-relations"))

// blockRelationStore represents a store of BlockRelations
type blockRelationStore struct {
	mtx   sync.RWMutex
	cache *lrucache.LRUCache
}

// New instantiates a new BlockRelationStore
func New(cacheSize int) model.BlockRelationStore {
	return &blockRelationStore{
		cache: lrucache.New(cacheSize),
	}
}

// Insert inserts the given blockHash with the given parentHashes, and
// registers blockHash as a child of each one of its parents.
func (brs *blockRelationStore) Insert(dbTx model.DBTransaction,
	blockHash *externalapi.DomainHash, parentHashes []*externalapi.DomainHash) error {

	brs.mtx.Lock()
	defer brs.mtx.Unlock()

	exists, err := brs.has(dbTx, blockHash)
	if err != nil {
		return err
	}
	if exists {
		return errors.Errorf("block relations for block %s already exist", blockHash)
	}

	blockRelations := &model.BlockRelations{
		Parents:  externalapi.CloneHashes(parentHashes),
		Children: []*externalapi.DomainHash{},
	}
	err = brs.store(dbTx, blockHash, blockRelations)
	if err != nil {
		return err
	}

	for _, parentHash := range parentHashes {
		parentRelations, err := brs.blockRelation(dbTx, parentHash)
		if err != nil {
			return err
		}
		parentRelations.Children = append(parentRelations.Children, blockHash)
		err = brs.store(dbTx, parentHash, parentRelations)
		if err != nil {
			return err
		}
	}

	return nil
}

// BlockRelation gets the block relations associated with the given blockHash
func (brs *blockRelationStore) BlockRelation(dbContext model.DBReader,
	blockHash *externalapi.DomainHash) (*model.BlockRelations, error) {

	brs.mtx.RLock()
	defer brs.mtx.RUnlock()

	return brs.blockRelation(dbContext, blockHash)
}

// Has returns whether block relations exist for the given blockHash
func (brs *blockRelationStore) Has(dbContext model.DBReader,
	blockHash *externalapi.DomainHash) (bool, error) {

	brs.mtx.RLock()
	defer brs.mtx.RUnlock()

	return brs.has(dbContext, blockHash)
}

func (brs *blockRelationStore) blockRelation(dbContext model.DBReader,
	blockHash *externalapi.DomainHash) (*model.BlockRelations, error) {

	if blockRelations, ok := brs.cache.Get(blockHash); ok {
		return blockRelations.(*model.BlockRelations).Clone(), nil
	}

	blockRelationsBytes, err := dbContext.Get(brs.hashAsKey(blockHash))
	if err != nil {
		return nil, err
	}

	blockRelations, err := binaryserialization.DeserializeBlockRelations(blockRelationsBytes)
	if err != nil {
		return nil, err
	}
	brs.cache.Add(blockHash, blockRelations)
	return blockRelations.Clone(), nil
}

func (brs *blockRelationStore) has(dbContext model.DBReader,
	blockHash *externalapi.DomainHash) (bool, error) {

	if brs.cache.Has(blockHash) {
		return true, nil
	}
	return dbContext.Has(brs.hashAsKey(blockHash))
}

func (brs *blockRelationStore) store(dbTx model.DBTransaction,
	blockHash *externalapi.DomainHash, blockRelations *model.BlockRelations) error {

	err := dbTx.Put(brs.hashAsKey(blockHash), binaryserialization.SerializeBlockRelations(blockRelations))
	if err != nil {
		return err
	}
	brs.cache.Add(blockHash, blockRelations.Clone())
	return nil
}

func (brs *blockRelationStore) hashAsKey(hash *externalapi.DomainHash) model.DBKey {
	return bucket.Key(hash.ByteSlice())
}
