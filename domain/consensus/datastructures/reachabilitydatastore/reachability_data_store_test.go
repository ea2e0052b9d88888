package reachabilitydatastore_test

import (
	"sync"
	"testing"

	consensusdatabase "github.com/dagnet/dagd/domain/consensus/database"
	"github.com/dagnet/dagd/domain/consensus/datastructures/reachabilitydatastore"
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

func commitWrite(t *testing.T, databaseContext model.DBManager, write func(model.DBTransaction) error) {
	t.Helper()

	dbTx, err := databaseContext.Begin()
	if err != nil {
		t.Fatalf("Begin: %+v", err)
	}
	defer dbTx.RollbackUnlessClosed()

	err = write(dbTx)
	if err != nil {
		t.Fatalf("write: %+v", err)
	}
	err = dbTx.Commit()
	if err != nil {
		t.Fatalf("Commit: %+v", err)
	}
}

// TestReachabilityDataStoreConcurrentColdReads reads the reindex root
// and reachability data from a fresh store whose caches are cold, from
// many goroutines at once. Run with -race to verify the read path does
// not mutate shared state without synchronization.
func TestReachabilityDataStoreConcurrentColdReads(t *testing.T) {
	databaseContext := setupDBManager(t)

	root := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{1})
	rootData := &model.ReachabilityData{
		TreeNode: &model.ReachabilityTreeNode{
			Children: []*externalapi.DomainHash{},
			Parent:   nil,
			Interval: &model.ReachabilityInterval{Start: 1, End: 100},
		},
		FutureCoveringSet: model.FutureCoveringTreeNodeSet{},
	}

	writerStore := reachabilitydatastore.New(10)
	commitWrite(t, databaseContext, func(dbTx model.DBTransaction) error {
		err := writerStore.Insert(dbTx, root, rootData)
		if err != nil {
			return err
		}
		return writerStore.UpdateReindexRoot(dbTx, root)
	})

	// A fresh store over the same database starts with cold caches.
	store := reachabilitydatastore.New(10)

	readerAmount := 8
	errChan := make(chan error, readerAmount)
	var wg sync.WaitGroup
	for reader := 0; reader < readerAmount; reader++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reindexRoot, err := store.ReindexRoot(databaseContext)
			if err != nil {
				errChan <- err
				return
			}
			if !reindexRoot.Equal(root) {
				errChan <- errors.Errorf("expected reindex root %s but got %s",
					root, reindexRoot)
				return
			}
			data, err := store.ReachabilityData(databaseContext, root)
			if err != nil {
				errChan <- err
				return
			}
			if !data.Equal(rootData) {
				errChan <- errors.Errorf("expected the read reachability data "+
					"to equal the inserted data")
				return
			}
		}()
	}
	wg.Wait()
	close(errChan)
	for err := range errChan {
		t.Fatalf("concurrent read: %+v", err)
	}
}
