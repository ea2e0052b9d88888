package ghostdagdatastore_test

import (
	"math/big"
	"sync"
	"testing"

	consensusdatabase "github.com/dagnet/dagd/domain/consensus/database"
	"github.com/dagnet/dagd/domain/consensus/datastructures/ghostdagdatastore"
	"github.com/dagnet/dagd/domain/consensus/model"
	"github.com/dagnet/dagd/domain/consensus/model/externalapi"
	"github.com/dagnet/dagd/infrastructure/db/database/ldb"
	"github.com/pkg/errors"
)

func setupDBManager(t *testing.T) model.DBManager {
	t.Helper()

	db, err := ldb.NewLevelDB(t.TempDir())
	if err != nil {
		t.Fatalf("NewLevelDB: %+v", err)
	}
	t.Cleanup(func() {
		err := db.Close()
		if err != nil {
			t.Fatalf("Close: %+v", err)
		}
	})
	return consensusdatabase.New(db)
}

func insertData(t *testing.T, databaseContext model.DBManager, store model.GHOSTDAGDataStore,
	blockHash *externalapi.DomainHash, blockGHOSTDAGData *model.BlockGHOSTDAGData) error {

	t.Helper()

	dbTx, err := databaseContext.Begin()
	if err != nil {
		t.Fatalf("Begin: %+v", err)
	}
	defer dbTx.RollbackUnlessClosed()

	err = store.Insert(dbTx, blockHash, blockGHOSTDAGData)
	if err != nil {
		return err
	}
	return dbTx.Commit()
}

func TestGHOSTDAGDataStoreIsAppendOnly(t *testing.T) {
	databaseContext := setupDBManager(t)
	store := ghostdagdatastore.New(10)

	selectedParent := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{1})
	blockHash := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{2})
	blockGHOSTDAGData := &model.BlockGHOSTDAGData{
		BlueScore:      5,
		BlueWork:       big.NewInt(1000),
		SelectedParent: selectedParent,
		MergeSetBlues:  []*externalapi.DomainHash{selectedParent},
		MergeSetReds:   []*externalapi.DomainHash{},
		BluesAnticoneSizes: map[externalapi.DomainHash]model.KType{
			*selectedParent: 0,
		},
	}

	err := insertData(t, databaseContext, store, blockHash, blockGHOSTDAGData)
	if err != nil {
		t.Fatalf("Insert: %+v", err)
	}

	gotData, err := store.Get(databaseContext, blockHash)
	if err != nil {
		t.Fatalf("Get: %+v", err)
	}
	if !gotData.Equal(blockGHOSTDAGData) {
		t.Fatalf("expected the stored data to equal the inserted data")
	}

	// Re-inserting equal data is a no-op.
	err = insertData(t, databaseContext, store, blockHash, blockGHOSTDAGData.Clone())
	if err != nil {
		t.Fatalf("Insert (equal data): %+v", err)
	}

	// Re-inserting different data is a consensus violation.
	differingData := blockGHOSTDAGData.Clone()
	differingData.BlueScore++
	err = insertData(t, databaseContext, store, blockHash, differingData)
	if err == nil {
		t.Fatalf("expected inserting different data for an existing block to fail")
	}

	has, err := store.Has(databaseContext, blockHash)
	if err != nil {
		t.Fatalf("Has: %+v", err)
	}
	if !has {
		t.Fatalf("expected the inserted block to exist")
	}

	unknownHash := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{0xaa})
	has, err = store.Has(databaseContext, unknownHash)
	if err != nil {
		t.Fatalf("Has: %+v", err)
	}
	if has {
		t.Fatalf("expected an unknown block to not exist")
	}
}

// TestGHOSTDAGDataStoreConcurrentColdReads hammers the read path of a
// store whose in-memory cache is cold, so every reader deserializes
// from the database and populates the cache concurrently with the
// others. Run with -race to verify the cache serializes its mutations.
func TestGHOSTDAGDataStoreConcurrentColdReads(t *testing.T) {
	databaseContext := setupDBManager(t)

	blockAmount := 20
	hashes := make([]*externalapi.DomainHash, blockAmount)
	writerStore := ghostdagdatastore.New(blockAmount)
	for i := 0; i < blockAmount; i++ {
		hashes[i] = externalapi.NewDomainHashFromByteArray(
			&[externalapi.DomainHashSize]byte{byte(i + 1)})
		data := &model.BlockGHOSTDAGData{
			BlueScore:          uint64(i),
			BlueWork:           big.NewInt(int64(i)),
			SelectedParent:     nil,
			MergeSetBlues:      []*externalapi.DomainHash{},
			MergeSetReds:       []*externalapi.DomainHash{},
			BluesAnticoneSizes: map[externalapi.DomainHash]model.KType{},
		}
		err := insertData(t, databaseContext, writerStore, hashes[i], data)
		if err != nil {
			t.Fatalf("Insert: %+v", err)
		}
	}

	// A fresh store over the same database starts with a cold cache.
	store := ghostdagdatastore.New(blockAmount)

	readerAmount := 8
	errChan := make(chan error, readerAmount)
	var wg sync.WaitGroup
	for reader := 0; reader < readerAmount; reader++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < blockAmount; i++ {
				data, err := store.Get(databaseContext, hashes[i])
				if err != nil {
					errChan <- err
					return
				}
				if data.BlueScore != uint64(i) {
					errChan <- errors.Errorf("expected blue score %d but got %d",
						i, data.BlueScore)
					return
				}
				has, err := store.Has(databaseContext, hashes[i])
				if err != nil {
					errChan <- err
					return
				}
				if !has {
					errChan <- errors.Errorf("expected block %s to exist", hashes[i])
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errChan)
	for err := range errChan {
		t.Fatalf("concurrent read: %+v", err)
	}
}
