package consensus

import (
	"testing"

	"github.com/dagnet/dagd/domain/consensus/model"
	"github.com/dagnet/dagd/domain/consensus/model/externalapi"
	"github.com/dagnet/dagd/domain/consensus/utils/consensushashing"
	"github.com/dagnet/dagd/domain/dagconfig"
	"github.com/dagnet/dagd/infrastructure/db/database/ldb"
)

func setupTestConsensus(t *testing.T) *Consensus {
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

	consensus, err := New(db, &dagconfig.SimnetParams)
	if err != nil {
		t.Fatalf("New: %+v", err)
	}
	err = consensus.Init()
	if err != nil {
		t.Fatalf("Init: %+v", err)
	}
	return consensus
}

func buildTestHeader(parents []*externalapi.DomainHash, nonce uint64) *externalapi.DomainBlockHeader {
	return &externalapi.DomainBlockHeader{
		Version:            1,
		ParentHashes:       parents,
		HashMerkleRoot:     *externalapi.NewZeroHash(),
		TimeInMilliseconds: int64(nonce),
		Bits:               dagconfig.SimnetParams.GenesisHeader.Bits,
		Nonce:              nonce,
	}
}

func TestConsensusEndToEnd(t *testing.T) {
	consensus := setupTestConsensus(t)
	genesisHash := dagconfig.SimnetParams.GenesisHash()

	// Build a diamond over the genesis, extended by one chain block:
	//
	//          a
	//        /   \
	// genesis     c <- d
	//        \   /
	//          b
	headerA := buildTestHeader([]*externalapi.DomainHash{genesisHash}, 1)
	headerB := buildTestHeader([]*externalapi.DomainHash{genesisHash}, 2)
	hashA := consensushashing.HeaderHash(headerA)
	hashB := consensushashing.HeaderHash(headerB)
	headerC := buildTestHeader([]*externalapi.DomainHash{hashA, hashB}, 3)
	hashC := consensushashing.HeaderHash(headerC)
	headerD := buildTestHeader([]*externalapi.DomainHash{hashC}, 4)
	hashD := consensushashing.HeaderHash(headerD)

	for _, header := range []*externalapi.DomainBlockHeader{headerA, headerB, headerC, headerD} {
		err := consensus.ValidateAndInsertBlock(header)
		if err != nil {
			t.Fatalf("ValidateAndInsertBlock: %+v", err)
		}
	}

	// Resubmitting a block is allowed and has no effect.
	err := consensus.ValidateAndInsertBlock(headerA)
	if err != nil {
		t.Fatalf("ValidateAndInsertBlock (duplicate): %+v", err)
	}

	// A block with a missing parent is rejected by the pipeline.
	orphanParent := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{0xff})
	headerOrphan := buildTestHeader([]*externalapi.DomainHash{orphanParent}, 5)
	hashOrphan := consensushashing.HeaderHash(headerOrphan)
	err = consensus.ValidateAndInsertBlock(headerOrphan)
	if err != nil {
		t.Fatalf("ValidateAndInsertBlock (orphan): %+v", err)
	}

	// Drain the pipeline.
	consensus.SignalExit()

	// Submission after shutdown must fail.
	err = consensus.ValidateAndInsertBlock(headerD)
	if err == nil {
		t.Fatalf("expected ValidateAndInsertBlock to fail after shutdown")
	}

	// Statuses
	for _, blockHash := range []*externalapi.DomainHash{genesisHash, hashA, hashB, hashC, hashD} {
		status, err := consensus.StatusesService().Get(blockHash)
		if err != nil {
			t.Fatalf("StatusesService().Get(%s): %+v", blockHash, err)
		}
		if status != model.StatusHeaderOnly {
			t.Errorf("block %s: expected status %s but got %s", blockHash, model.StatusHeaderOnly, status)
		}
	}
	hasOrphan, err := consensus.StatusesService().Has(hashOrphan)
	if err != nil {
		t.Fatalf("StatusesService().Has: %+v", err)
	}
	if hasOrphan {
		t.Errorf("expected the orphan block to not have a status")
	}

	// Relations
	genesisChildren, err := consensus.RelationsService().Children(genesisHash)
	if err != nil {
		t.Fatalf("RelationsService().Children: %+v", err)
	}
	if !hashesContain(genesisChildren, hashA) || !hashesContain(genesisChildren, hashB) {
		t.Errorf("expected the genesis children %s to contain %s and %s", genesisChildren, hashA, hashB)
	}
	cParents, err := consensus.RelationsService().Parents(hashC)
	if err != nil {
		t.Fatalf("RelationsService().Parents: %+v", err)
	}
	if !externalapi.HashesEqual(cParents, []*externalapi.DomainHash{hashA, hashB}) {
		t.Errorf("expected the parents of %s to be [%s %s] but got %s", hashC, hashA, hashB, cParents)
	}

	// Reachability
	reachabilityTests := []struct {
		blockHashA, blockHashB *externalapi.DomainHash
		expectedAncestor       bool
	}{
		{genesisHash, hashD, true},
		{hashA, hashC, true},
		{hashB, hashC, true},
		{hashA, hashD, true},
		{hashB, hashD, true},
		{hashA, hashB, false},
		{hashB, hashA, false},
		{hashD, hashA, false},
	}
	for _, test := range reachabilityTests {
		isAncestor, err := consensus.ReachabilityService().IsDAGAncestorOf(test.blockHashA, test.blockHashB)
		if err != nil {
			t.Fatalf("IsDAGAncestorOf(%s, %s): %+v", test.blockHashA, test.blockHashB, err)
		}
		if isAncestor != test.expectedAncestor {
			t.Errorf("IsDAGAncestorOf(%s, %s): expected %t but got %t",
				test.blockHashA, test.blockHashB, test.expectedAncestor, isAncestor)
		}
	}

	// GHOSTDAG: with simnet's k=1, both sides of the diamond are blue.
	expectedBlueScores := []struct {
		blockHash *externalapi.DomainHash
		blueScore uint64
	}{
		{genesisHash, 0},
		{hashA, 1},
		{hashB, 1},
		{hashC, 3},
		{hashD, 4},
	}
	for _, expected := range expectedBlueScores {
		blockGHOSTDAGData, err := consensus.GHOSTDAGService().BlockData(expected.blockHash)
		if err != nil {
			t.Fatalf("GHOSTDAGService().BlockData(%s): %+v", expected.blockHash, err)
		}
		if blockGHOSTDAGData.BlueScore != expected.blueScore {
			t.Errorf("block %s: expected blue score %d but got %d",
				expected.blockHash, expected.blueScore, blockGHOSTDAGData.BlueScore)
		}
	}

	// Counters: the genesis and the four DAG blocks were processed,
	// the duplicate was skipped and the orphan was rejected.
	counters := consensus.Counters().Snapshot()
	if counters.HeadersProcessed != 5 {
		t.Errorf("expected 5 processed headers but got %d", counters.HeadersProcessed)
	}
	if counters.BlocksSubmitted != 6 {
		t.Errorf("expected 6 submitted blocks but got %d", counters.BlocksSubmitted)
	}
	if counters.InputRejects != 1 {
		t.Errorf("expected 1 input reject but got %d", counters.InputRejects)
	}
}

func TestConsensusIsDeterministic(t *testing.T) {
	buildDAG := func(t *testing.T) (*Consensus, []*externalapi.DomainHash) {
		consensus := setupTestConsensus(t)

		submit := func(parents []*externalapi.DomainHash, nonce uint64) *externalapi.DomainHash {
			header := buildTestHeader(parents, nonce)
			err := consensus.ValidateAndInsertBlock(header)
			if err != nil {
				t.Fatalf("ValidateAndInsertBlock: %+v", err)
			}
			return consensushashing.HeaderHash(header)
		}

		// A repeated diamond pattern: two siblings over the tip,
		// merged by a single block that becomes the next tip.
		hashes := []*externalapi.DomainHash{dagconfig.SimnetParams.GenesisHash()}
		tip := dagconfig.SimnetParams.GenesisHash()
		nonce := uint64(1)
		for round := 0; round < 4; round++ {
			left := submit([]*externalapi.DomainHash{tip}, nonce)
			right := submit([]*externalapi.DomainHash{tip}, nonce+1)
			tip = submit([]*externalapi.DomainHash{left, right}, nonce+2)
			nonce += 3
			hashes = append(hashes, left, right, tip)
		}
		consensus.SignalExit()
		return consensus, hashes
	}

	firstConsensus, firstHashes := buildDAG(t)
	secondConsensus, secondHashes := buildDAG(t)

	if !externalapi.HashesEqual(firstHashes, secondHashes) {
		t.Fatalf("expected both runs to produce the same block hashes")
	}

	for _, blockHash := range firstHashes {
		firstData, err := firstConsensus.GHOSTDAGService().BlockData(blockHash)
		if err != nil {
			t.Fatalf("BlockData(%s): %+v", blockHash, err)
		}
		secondData, err := secondConsensus.GHOSTDAGService().BlockData(blockHash)
		if err != nil {
			t.Fatalf("BlockData(%s): %+v", blockHash, err)
		}
		if !firstData.Equal(secondData) {
			t.Errorf("block %s: expected equal GHOSTDAG data in both runs", blockHash)
		}
	}
}

func TestConsensusInitGuards(t *testing.T) {
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

	consensus, err := New(db, &dagconfig.SimnetParams)
	if err != nil {
		t.Fatalf("New: %+v", err)
	}

	// Submission before Init must fail.
	header := buildTestHeader([]*externalapi.DomainHash{dagconfig.SimnetParams.GenesisHash()}, 1)
	err = consensus.ValidateAndInsertBlock(header)
	if err == nil {
		t.Fatalf("expected ValidateAndInsertBlock to fail before Init")
	}

	err = consensus.Init()
	if err != nil {
		t.Fatalf("Init: %+v", err)
	}

	// Init is one-shot.
	err = consensus.Init()
	if err == nil {
		t.Fatalf("expected a second Init to fail")
	}

	consensus.SignalExit()
}

func hashesContain(hashes []*externalapi.DomainHash, blockHash *externalapi.DomainHash) bool {
	for _, hash := range hashes {
		if hash.Equal(blockHash) {
			return true
		}
	}
	return false
}
