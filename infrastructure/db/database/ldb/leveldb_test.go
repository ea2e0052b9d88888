package ldb

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/dagnet/dagd/infrastructure/db/database"
	"github.com/pkg/errors"
)

func prepareDatabaseForTest(t *testing.T) *LevelDB {
	ldb, err := NewLevelDB(t.TempDir())
	if err != nil {
		t.Fatalf("NewLevelDB: %+v", err)
	}
	t.Cleanup(func() {
		err := ldb.Close()
		if err != nil {
			t.Fatalf("Close: %+v", err)
		}
	})
	return ldb
}

func TestLevelDBPutGetHasDelete(t *testing.T) {
	ldb := prepareDatabaseForTest(t)

	key := database.MakeBucket([]byte("test")).Key([]byte("key"))
	value := []byte("value")

	has, err := ldb.Has(key)
	if err != nil {
		t.Fatalf("Has: %+v", err)
	}
	if has {
		t.Fatalf("unexpectedly found a key that was never put")
	}
	_, err = ldb.Get(key)
	if !database.IsNotFoundError(err) {
		t.Fatalf("expected ErrNotFound but got %+v", err)
	}

	err = ldb.Put(key, value)
	if err != nil {
		t.Fatalf("Put: %+v", err)
	}
	got, err := ldb.Get(key)
	if err != nil {
		t.Fatalf("Get: %+v", err)
	}
	if !bytes.Equal(got, value) {
		t.Fatalf("expected value %s but got %s", value, got)
	}

	err = ldb.Delete(key)
	if err != nil {
		t.Fatalf("Delete: %+v", err)
	}
	has, err = ldb.Has(key)
	if err != nil {
		t.Fatalf("Has: %+v", err)
	}
	if has {
		t.Fatalf("unexpectedly found a deleted key")
	}

	// Deleting a non-existent key is not an error
	err = ldb.Delete(key)
	if err != nil {
		t.Fatalf("Delete of a non-existent key: %+v", err)
	}
}

func TestLevelDBTransactionIsolationAndRollback(t *testing.T) {
	ldb := prepareDatabaseForTest(t)

	bucket := database.MakeBucket([]byte("test"))
	preexistingKey := bucket.Key([]byte("preexisting"))
	err := ldb.Put(preexistingKey, []byte("before"))
	if err != nil {
		t.Fatalf("Put: %+v", err)
	}

	tx, err := ldb.Begin()
	if err != nil {
		t.Fatalf("Begin: %+v", err)
	}
	defer tx.RollbackUnlessClosed()

	// The snapshot sees data from before the transaction began
	got, err := tx.Get(preexistingKey)
	if err != nil {
		t.Fatalf("Get: %+v", err)
	}
	if !bytes.Equal(got, []byte("before")) {
		t.Fatalf("expected value %s but got %s", "before", got)
	}

	// Writes within the transaction are buffered in a batch and are
	// not visible through the snapshot
	batchedKey := bucket.Key([]byte("batched"))
	err = tx.Put(batchedKey, []byte("batched-value"))
	if err != nil {
		t.Fatalf("Put: %+v", err)
	}
	has, err := tx.Has(batchedKey)
	if err != nil {
		t.Fatalf("Has: %+v", err)
	}
	if has {
		t.Fatalf("a batched write is unexpectedly visible through the snapshot")
	}

	err = tx.Rollback()
	if err != nil {
		t.Fatalf("Rollback: %+v", err)
	}
	has, err = ldb.Has(batchedKey)
	if err != nil {
		t.Fatalf("Has: %+v", err)
	}
	if has {
		t.Fatalf("a rolled-back write unexpectedly reached the database")
	}

	// A second transaction commits its writes
	tx, err = ldb.Begin()
	if err != nil {
		t.Fatalf("Begin: %+v", err)
	}
	defer tx.RollbackUnlessClosed()
	err = tx.Put(batchedKey, []byte("committed-value"))
	if err != nil {
		t.Fatalf("Put: %+v", err)
	}
	err = tx.Commit()
	if err != nil {
		t.Fatalf("Commit: %+v", err)
	}
	got, err = ldb.Get(batchedKey)
	if err != nil {
		t.Fatalf("Get: %+v", err)
	}
	if !bytes.Equal(got, []byte("committed-value")) {
		t.Fatalf("expected value %s but got %s", "committed-value", got)
	}

	// Closed transactions reject further operations
	err = tx.Put(batchedKey, []byte("too-late"))
	if err == nil {
		t.Fatalf("expected an error when putting into a closed transaction")
	}
}

func TestLevelDBCursor(t *testing.T) {
	ldb := prepareDatabaseForTest(t)

	bucket := database.MakeBucket([]byte("cursor-test"))
	otherBucket := database.MakeBucket([]byte("other"))
	entryAmount := 10
	for i := 0; i < entryAmount; i++ {
		key := bucket.Key([]byte(fmt.Sprintf("key%d", i)))
		err := ldb.Put(key, []byte(fmt.Sprintf("value%d", i)))
		if err != nil {
			t.Fatalf("Put: %+v", err)
		}
	}
	// An entry outside the bucket must not be seen by the cursor
	err := ldb.Put(otherBucket.Key([]byte("key0")), []byte("other-value"))
	if err != nil {
		t.Fatalf("Put: %+v", err)
	}

	cursor, err := ldb.Cursor(bucket)
	if err != nil {
		t.Fatalf("Cursor: %+v", err)
	}
	defer cursor.Close()

	seen := 0
	for cursor.Next() {
		key, err := cursor.Key()
		if err != nil {
			t.Fatalf("Key: %+v", err)
		}
		expectedSuffix := []byte(fmt.Sprintf("key%d", seen))
		if !bytes.Equal(key.Suffix(), expectedSuffix) {
			t.Fatalf("expected key suffix %s but got %s",
				expectedSuffix, key.Suffix())
		}
		value, err := cursor.Value()
		if err != nil {
			t.Fatalf("Value: %+v", err)
		}
		expectedValue := []byte(fmt.Sprintf("value%d", seen))
		if !bytes.Equal(value, expectedValue) {
			t.Fatalf("expected value %s but got %s", expectedValue, value)
		}
		seen++
	}
	if seen != entryAmount {
		t.Fatalf("expected the cursor to traverse %d entries but it "+
			"traversed %d", entryAmount, seen)
	}

	err = cursor.Seek(bucket.Key([]byte("key3")))
	if err != nil {
		t.Fatalf("Seek: %+v", err)
	}
	err = cursor.Seek(bucket.Key([]byte("no-such-key")))
	if !database.IsNotFoundError(err) {
		t.Fatalf("expected ErrNotFound but got %+v", err)
	}

	err = cursor.Close()
	if err != nil {
		t.Fatalf("Close: %+v", err)
	}
	err = cursor.Close()
	if err == nil {
		t.Fatalf("expected an error when closing an already closed cursor")
	}
}

func TestLevelDBTransactionCursorReadsFromSnapshot(t *testing.T) {
	ldb := prepareDatabaseForTest(t)

	bucket := database.MakeBucket([]byte("snapshot-test"))
	err := ldb.Put(bucket.Key([]byte("existing")), []byte("existing-value"))
	if err != nil {
		t.Fatalf("Put: %+v", err)
	}

	tx, err := ldb.Begin()
	if err != nil {
		t.Fatalf("Begin: %+v", err)
	}
	defer tx.RollbackUnlessClosed()

	err = tx.Put(bucket.Key([]byte("new")), []byte("new-value"))
	if err != nil {
		t.Fatalf("Put: %+v", err)
	}

	cursor, err := tx.Cursor(bucket)
	if err != nil {
		t.Fatalf("Cursor: %+v", err)
	}
	defer cursor.Close()

	keys := 0
	for cursor.Next() {
		keys++
	}
	if keys != 1 {
		t.Fatalf("expected the transaction cursor to see only the 1 "+
			"pre-transaction entry but it saw %d entries", keys)
	}
}

func TestLevelDBErrNotFoundWrapping(t *testing.T) {
	ldb := prepareDatabaseForTest(t)

	key := database.MakeBucket([]byte("test")).Key([]byte("missing"))
	_, err := ldb.Get(key)
	if !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("expected the error to wrap ErrNotFound but got %+v", err)
	}
}
