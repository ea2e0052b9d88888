package blockheaderstore_test

import (
	"testing"

	consensusdatabase "github.com/dagnet/dagd/domain/consensus/database"
	"github.com/dagnet/dagd/domain/consensus/datastructures/blockheaderstore"
	"github.com/dagnet/dagd/domain/consensus/model"
	"github.com/dagnet/dagd/domain/consensus/model/externalapi"
	"github.com/dagnet/dagd/infrastructure/db/database/ldb"
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

func insertHeader(t *testing.T, databaseContext model.DBManager, store model.BlockHeaderStore,
	blockHash *externalapi.DomainHash, header *externalapi.DomainBlockHeader) error {

	t.Helper()

	dbTx, err := databaseContext.Begin()
	if err != nil {
		t.Fatalf("Begin: %+v", err)
	}
	defer dbTx.RollbackUnlessClosed()

	err = store.Insert(dbTx, blockHash, header)
	if err != nil {
		return err
	}
	return dbTx.Commit()
}

func TestBlockHeaderStoreCountIsPersisted(t *testing.T) {
	databaseContext := setupDBManager(t)

	store, err := blockheaderstore.New(databaseContext, 10)
	if err != nil {
		t.Fatalf("New: %+v", err)
	}

	for i := byte(1); i <= 3; i++ {
		blockHash := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{i})
		header := &externalapi.DomainBlockHeader{
			Version: 1,
			Nonce:   uint64(i),
		}
		err := insertHeader(t, databaseContext, store, blockHash, header)
		if err != nil {
			t.Fatalf("Insert: %+v", err)
		}
	}

	count, err := store.Count(databaseContext)
	if err != nil {
		t.Fatalf("Count: %+v", err)
	}
	if count != 3 {
		t.Fatalf("expected a count of 3 but got %d", count)
	}

	// A new store instance over the same database must pick the
	// persisted count up.
	reopenedStore, err := blockheaderstore.New(databaseContext, 10)
	if err != nil {
		t.Fatalf("New: %+v", err)
	}
	count, err = reopenedStore.Count(databaseContext)
	if err != nil {
		t.Fatalf("Count: %+v", err)
	}
	if count != 3 {
		t.Fatalf("expected a count of 3 after reopening but got %d", count)
	}
}

func TestBlockHeaderStoreRejectsDuplicates(t *testing.T) {
	databaseContext := setupDBManager(t)

	store, err := blockheaderstore.New(databaseContext, 10)
	if err != nil {
		t.Fatalf("New: %+v", err)
	}

	blockHash := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{1})
	header := &externalapi.DomainBlockHeader{Version: 1, Nonce: 7}

	err = insertHeader(t, databaseContext, store, blockHash, header)
	if err != nil {
		t.Fatalf("Insert: %+v", err)
	}
	err = insertHeader(t, databaseContext, store, blockHash, header)
	if err == nil {
		t.Fatalf("expected inserting the same block header twice to fail")
	}

	gotHeader, err := store.BlockHeader(databaseContext, blockHash)
	if err != nil {
		t.Fatalf("BlockHeader: %+v", err)
	}
	if !gotHeader.Equal(header) {
		t.Fatalf("expected the stored header to equal the inserted header")
	}
	count, err := store.Count(databaseContext)
	if err != nil {
		t.Fatalf("Count: %+v", err)
	}
	if count != 1 {
		t.Fatalf("expected a count of 1 but got %d", count)
	}
}
