package blockrelationstore_test

import (
	"testing"

	consensusdatabase "github.com/dagnet/dagd/domain/consensus/database"
	"github.com/dagnet/dagd/domain/consensus/datastructures/blockrelationstore"
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

func insertRelation(t *testing.T, databaseContext model.DBManager, store model.BlockRelationStore,
	blockHash *externalapi.DomainHash, parentHashes []*externalapi.DomainHash) error {

	t.Helper()

	dbTx, err := databaseContext.Begin()
	if err != nil {
		t.Fatalf("Begin: %+v", err)
	}
	defer dbTx.RollbackUnlessClosed()

	err = store.Insert(dbTx, blockHash, parentHashes)
	if err != nil {
		return err
	}
	return dbTx.Commit()
}

func TestBlockRelationStoreTracksChildren(t *testing.T) {
	databaseContext := setupDBManager(t)
	store := blockrelationstore.New(10)

	genesis := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{0})
	blockA := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{1})
	blockB := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{2})

	err := insertRelation(t, databaseContext, store, genesis, []*externalapi.DomainHash{})
	if err != nil {
		t.Fatalf("Insert: %+v", err)
	}
	err = insertRelation(t, databaseContext, store, blockA, []*externalapi.DomainHash{genesis})
	if err != nil {
		t.Fatalf("Insert: %+v", err)
	}
	err = insertRelation(t, databaseContext, store, blockB, []*externalapi.DomainHash{genesis})
	if err != nil {
		t.Fatalf("Insert: %+v", err)
	}

	genesisRelations, err := store.BlockRelation(databaseContext, genesis)
	if err != nil {
		t.Fatalf("BlockRelation: %+v", err)
	}
	if !externalapi.HashesEqual(genesisRelations.Children, []*externalapi.DomainHash{blockA, blockB}) {
		t.Fatalf("expected the genesis children to be [%s %s] but got %s",
			blockA, blockB, genesisRelations.Children)
	}

	blockARelations, err := store.BlockRelation(databaseContext, blockA)
	if err != nil {
		t.Fatalf("BlockRelation: %+v", err)
	}
	if !externalapi.HashesEqual(blockARelations.Parents, []*externalapi.DomainHash{genesis}) {
		t.Fatalf("expected the parents of %s to be [%s] but got %s",
			blockA, genesis, blockARelations.Parents)
	}
	if len(blockARelations.Children) != 0 {
		t.Fatalf("expected %s to have no children but got %s", blockA, blockARelations.Children)
	}

	// A block's relations are written exactly once.
	err = insertRelation(t, databaseContext, store, blockA, []*externalapi.DomainHash{genesis})
	if err == nil {
		t.Fatalf("expected inserting relations for an existing block to fail")
	}

	has, err := store.Has(databaseContext, blockB)
	if err != nil {
		t.Fatalf("Has: %+v", err)
	}
	if !has {
		t.Fatalf("expected %s to have relations", blockB)
	}
}
