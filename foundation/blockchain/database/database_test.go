package database_test

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ardanlabs/starchain/foundation/blockchain/database"
	"github.com/ardanlabs/starchain/foundation/blockchain/signature"
	"github.com/ardanlabs/starchain/foundation/blockchain/storage/memory"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	owner1 = "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4"
	owner2 = "0xF01813E4B85e178A83e29B8E7bF26BD830a25f32"
)

// =============================================================================

func Test_Genesis(t *testing.T) {
	t.Log("Given the need to start a new chain.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen creating a database over empty storage.", testID)
		{
			db, err := database.New(memory.New(), nil)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to open database: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to open database.", success, testID)

			if db.Height() != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould have a height of 0, got %d.", failed, testID, db.Height())
			}
			t.Logf("\t%s\tTest %d:\tShould have a height of 0.", success, testID)

			genesis, err := db.BlockByHeight(0)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to get the genesis block: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to get the genesis block.", success, testID)

			if genesis.PrevBlockHash != signature.ZeroHash {
				t.Fatalf("\t%s\tTest %d:\tShould link genesis to the zero hash, got %s.", failed, testID, genesis.PrevBlockHash)
			}
			t.Logf("\t%s\tTest %d:\tShould link genesis to the zero hash.", success, testID)

			body, err := database.DecodeBody(genesis)
			if err != nil || string(body) != `{"data":"Genesis Block"}` {
				t.Fatalf("\t%s\tTest %d:\tShould have the genesis body, got %s: %v", failed, testID, body, err)
			}
			t.Logf("\t%s\tTest %d:\tShould have the genesis body.", success, testID)

			discrepancies, err := db.ValidateChain()
			if err != nil || len(discrepancies) != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould validate a genesis only chain: %v %v", failed, testID, discrepancies, err)
			}
			t.Logf("\t%s\tTest %d:\tShould validate a genesis only chain.", success, testID)

			stars, err := db.StarsByOwner(owner1)
			if err != nil || stars == nil || len(stars) != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould get an empty set of stars: %v %v", failed, testID, stars, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get an empty set of stars.", success, testID)
		}
	}
}

func Test_Append(t *testing.T) {
	type table struct {
		name    string
		stories []string
	}

	tt := []table{
		{name: "one", stories: []string{"first star"}},
		{name: "many", stories: []string{"a", "b", "c", "d", "e"}},
	}

	t.Log("Given the need to append blocks to the chain.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen appending %d blocks.", testID, len(tst.stories))
			{
				f := func(t *testing.T) {
					db, err := database.New(memory.New(), nil)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to open database: %v", failed, testID, err)
					}

					for _, story := range tst.stories {
						if _, err := db.Append(starBody(t, owner1, story)); err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be able to append a block: %v", failed, testID, err)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould be able to append blocks.", success, testID)

					if exp := len(tst.stories); db.Height() != exp {
						t.Fatalf("\t%s\tTest %d:\tShould have a height of %d, got %d.", failed, testID, exp, db.Height())
					}
					t.Logf("\t%s\tTest %d:\tShould have the right height.", success, testID)

					blocks, err := db.Copy()
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to copy the chain: %v", failed, testID, err)
					}

					for i, block := range blocks {
						if block.Height != uint64(i) {
							t.Fatalf("\t%s\tTest %d:\tShould have height %d, got %d.", failed, testID, i, block.Height)
						}
						if i > 0 && block.PrevBlockHash != blocks[i-1].Hash {
							t.Fatalf("\t%s\tTest %d:\tShould link blk[%d] to its parent.", failed, testID, i)
						}

						valid, err := db.ValidateBlock(uint64(i))
						if err != nil || !valid {
							t.Fatalf("\t%s\tTest %d:\tShould validate blk[%d]: %v", failed, testID, i, err)
						}

						byHash, err := db.BlockByHash(block.Hash)
						if err != nil || byHash != block {
							t.Fatalf("\t%s\tTest %d:\tShould find blk[%d] by hash: %v", failed, testID, i, err)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould have sequential, linked and valid blocks.", success, testID)

					if db.LatestBlock() != blocks[len(blocks)-1] {
						t.Fatalf("\t%s\tTest %d:\tShould get back the latest block.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get back the latest block.", success, testID)

					missing := uint64(len(blocks))
					if _, err := db.BlockByHeight(missing); !errors.Is(err, database.ErrNotFound) {
						t.Fatalf("\t%s\tTest %d:\tShould not find a missing height: %v", failed, testID, err)
					}
					if valid, err := db.ValidateBlock(missing); valid || !errors.Is(err, database.ErrNotFound) {
						t.Fatalf("\t%s\tTest %d:\tShould fail closed validating a missing height: %v", failed, testID, err)
					}
					if _, err := db.BlockByHash(signature.ZeroHash); !errors.Is(err, database.ErrNotFound) {
						t.Fatalf("\t%s\tTest %d:\tShould not find an unknown hash: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould report missing blocks as not found.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_StarsByOwner(t *testing.T) {
	t.Log("Given the need to query stars by owner.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen two owners register stars.", testID)
		{
			db, err := database.New(memory.New(), nil)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to open database: %v", failed, testID, err)
			}

			stories := []struct {
				owner string
				story string
			}{
				{owner1, "Found it in the summer of 2019"},
				{owner2, "Bill's star"},
				{owner1, "Ünïcödé ✓ story"},
			}
			for _, s := range stories {
				if _, err := db.Append(starBody(t, s.owner, s.story)); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to append a block: %v", failed, testID, err)
				}
			}

			stars, err := db.StarsByOwner(strings.ToLower(owner1))
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to query stars: %v", failed, testID, err)
			}

			if len(stars) != 2 {
				t.Fatalf("\t%s\tTest %d:\tShould get back 2 stars, got %d.", failed, testID, len(stars))
			}
			t.Logf("\t%s\tTest %d:\tShould get back 2 stars.", success, testID)

			if stars[0].Star.Story != stories[0].story || stars[1].Star.Story != stories[2].story {
				t.Logf("\t%s\tTest %d:\tgot: %q %q", failed, testID, stars[0].Star.Story, stars[1].Star.Story)
				t.Fatalf("\t%s\tTest %d:\tShould get back the decoded stories in chain order.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould get back the decoded stories in chain order.", success, testID)

			if *stars[0].Star.RA != 68.52 || *stars[0].Star.Dec != -13.45 {
				t.Fatalf("\t%s\tTest %d:\tShould get back the coordinates.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould get back the coordinates.", success, testID)

			none, err := db.StarsByOwner("0x0000000000000000000000000000000000000001")
			if err != nil || none == nil || len(none) != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould get an empty set for an unknown owner: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould get an empty set for an unknown owner.", success, testID)
		}
	}
}

func Test_Tamper(t *testing.T) {
	type table struct {
		name   string
		blocks int
		height uint64
		tamper func(b *database.Block)
		exp    []string
	}

	tt := []table{
		{
			name:   "body",
			blocks: 1,
			height: 1,
			tamper: func(b *database.Block) { b.Body = flip(b.Body) },
			exp:    []string{"Error - Block Height: 1 - Has been Tampered."},
		},
		{
			name:   "body-middle",
			blocks: 3,
			height: 2,
			tamper: func(b *database.Block) { b.Body = flip(b.Body) },
			exp:    []string{"Error - Block Height: 2 - Has been Tampered."},
		},
		{
			name:   "timestamp",
			blocks: 2,
			height: 0,
			tamper: func(b *database.Block) { b.TimeStamp++ },
			exp:    []string{"Error - Block Height: 0 - Has been Tampered."},
		},
		{
			name:   "link-rehashed",
			blocks: 3,
			height: 3,
			tamper: func(b *database.Block) {
				b.PrevBlockHash = signature.Hash("unrelated")
				b.Hash = b.ComputeHash()
			},
			exp: []string{"Error - Block Height: 3 - Previous Hash don't match."},
		},
		{
			name:   "link",
			blocks: 3,
			height: 2,
			tamper: func(b *database.Block) { b.PrevBlockHash = signature.Hash("unrelated") },
			exp: []string{
				"Error - Block Height: 2 - Has been Tampered.",
				"Error - Block Height: 2 - Previous Hash don't match.",
			},
		},
	}

	t.Log("Given the need to detect tampering with stored blocks.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen tampering with the %s of blk[%d].", testID, tst.name, tst.height)
			{
				f := func(t *testing.T) {
					strg := newTamperStorage()

					db, err := database.New(strg, nil)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to open database: %v", failed, testID, err)
					}

					for i := 0; i < tst.blocks; i++ {
						if _, err := db.Append(starBody(t, owner1, "story")); err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be able to append a block: %v", failed, testID, err)
						}
					}

					strg.tamper(tst.height, tst.tamper)

					block, err := db.BlockByHeight(tst.height)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to get the block: %v", failed, testID, err)
					}

					valid, err := db.ValidateBlock(tst.height)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to validate the block: %v", failed, testID, err)
					}
					if valid != block.IsIntact() {
						t.Fatalf("\t%s\tTest %d:\tShould agree with the block's own hash check.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould validate the block: %v.", success, testID, valid)

					discrepancies, err := db.ValidateChain()
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to validate the chain: %v", failed, testID, err)
					}

					got := make([]string, len(discrepancies))
					for i, d := range discrepancies {
						got[i] = d.String()
					}

					if strings.Join(got, "\n") != strings.Join(tst.exp, "\n") {
						t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, got)
						t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, tst.exp)
						t.Fatalf("\t%s\tTest %d:\tShould report the right discrepancies.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould report the right discrepancies.", success, testID)

					for _, d := range discrepancies {
						if d.Height != tst.height {
							t.Fatalf("\t%s\tTest %d:\tShould only name height %d, got %d.", failed, testID, tst.height, d.Height)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould only name the tampered height.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_ConcurrentAppend(t *testing.T) {
	const appends = 50

	t.Log("Given the need to append blocks from many goroutines.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen appending %d blocks concurrently.", testID, appends)
		{
			db, err := database.New(memory.New(), nil)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to open database: %v", failed, testID, err)
			}

			body := starBody(t, owner1, "concurrent")

			var wg sync.WaitGroup
			errs := make(chan error, appends)
			for i := 0; i < appends; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, err := db.Append(body); err != nil {
						errs <- err
					}
					db.Copy()
				}()
			}
			wg.Wait()
			close(errs)

			for err := range errs {
				t.Fatalf("\t%s\tTest %d:\tShould be able to append concurrently: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to append concurrently.", success, testID)

			if db.Height() != appends {
				t.Fatalf("\t%s\tTest %d:\tShould have a height of %d, got %d.", failed, testID, appends, db.Height())
			}
			t.Logf("\t%s\tTest %d:\tShould have the right height.", success, testID)

			discrepancies, err := db.ValidateChain()
			if err != nil || len(discrepancies) != 0 {
				t.Fatalf("\t%s\tTest %d:\tShould have a consistent chain: %v %v", failed, testID, discrepancies, err)
			}
			t.Logf("\t%s\tTest %d:\tShould have a consistent chain.", success, testID)
		}
	}
}

func Test_LoadStorage(t *testing.T) {
	t.Log("Given the need to open a database over existing storage.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen the storage already holds a chain.", testID)
		{
			strg := newTamperStorage()

			db, err := database.New(strg, nil)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to open database: %v", failed, testID, err)
			}

			block, err := db.Append(starBody(t, owner1, "kept"))
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to append a block: %v", failed, testID, err)
			}

			db, err = database.New(strg, nil)
			if err != nil {
				t.Fatalf("\t%s\tTest %d:\tShould be able to reopen database: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould be able to reopen database.", success, testID)

			if db.Height() != 1 || db.LatestBlock() != block {
				t.Fatalf("\t%s\tTest %d:\tShould load the existing chain without a new genesis.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould load the existing chain without a new genesis.", success, testID)

			strg.tamper(1, func(b *database.Block) { b.Body = flip(b.Body) })

			if _, err := database.New(strg, nil); err == nil {
				t.Fatalf("\t%s\tTest %d:\tShould refuse to load a tampered chain.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould refuse to load a tampered chain.", success, testID)
		}
	}
}

func Test_Encoding(t *testing.T) {
	t.Log("Given the need to encode block bodies.")
	{
		testID := 0
		t.Logf("\tTest %d:\tWhen encoding stories and star records.", testID)
		{
			for _, story := range []string{"", "plain", "line\nbreak", "✓ utf8"} {
				got, err := database.DecodeStory(database.EncodeStory(story))
				if err != nil || got != story {
					t.Fatalf("\t%s\tTest %d:\tShould round trip story %q, got %q: %v", failed, testID, story, got, err)
				}
			}
			t.Logf("\t%s\tTest %d:\tShould round trip stories.", success, testID)

			ra := 1.5
			if _, err := database.StarBody(owner1, database.Star{RA: &ra}); !errors.Is(err, database.ErrInvalidPayload) {
				t.Fatalf("\t%s\tTest %d:\tShould reject a star without dec: %v", failed, testID, err)
			}
			if _, err := database.StarBody(owner1, database.Star{Dec: &ra}); !errors.Is(err, database.ErrInvalidPayload) {
				t.Fatalf("\t%s\tTest %d:\tShould reject a star without ra: %v", failed, testID, err)
			}
			t.Logf("\t%s\tTest %d:\tShould reject stars without coordinates.", success, testID)

			b1 := database.Seal(1, 1700000000, signature.ZeroHash, "0x00")
			b2 := database.Seal(1, 1700000000, signature.ZeroHash, "0x00")
			if b1.Hash != b2.Hash || !b1.IsIntact() {
				t.Fatalf("\t%s\tTest %d:\tShould seal deterministically.", failed, testID)
			}
			t.Logf("\t%s\tTest %d:\tShould seal deterministically.", success, testID)
		}
	}
}

func Test_DiscrepancyJSON(t *testing.T) {
	exp := []database.Discrepancy{
		{Height: 1, Kind: database.Tampered},
		{Height: 2, Kind: database.BrokenLink},
	}

	data, err := json.Marshal(exp)
	if err != nil {
		t.Fatalf("Should be able to marshal the discrepancies: %s", err)
	}

	if !strings.Contains(string(data), `"kind":"tampered"`) {
		t.Fatalf("Should write the kind as text: %s", data)
	}

	var got []database.Discrepancy
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Should be able to unmarshal the discrepancies: %s", err)
	}

	if len(got) != 2 || got[0] != exp[0] || got[1] != exp[1] {
		t.Fatalf("Should get back the same discrepancies: %+v", got)
	}

	var d database.Discrepancy
	if err := json.Unmarshal([]byte(`{"height":3,"kind":"melted"}`), &d); err == nil {
		t.Fatalf("Should reject an unknown kind.")
	}
}

// =============================================================================

func starBody(t *testing.T, owner string, story string) string {
	ra := 68.52
	dec := -13.45

	body, err := database.StarBody(owner, database.Star{RA: &ra, Dec: &dec, Cen: "Orion", Story: story})
	if err != nil {
		t.Fatalf("Should be able to encode the star body: %v", err)
	}

	return body
}

// flip changes the last hex digit of the string.
func flip(s string) string {
	b := []byte(s)
	if b[len(b)-1] == '0' {
		b[len(b)-1] = '1'
	} else {
		b[len(b)-1] = '0'
	}
	return string(b)
}

// tamperStorage wraps the memory storage so a test can alter what is
// handed back for a given height.
type tamperStorage struct {
	*memory.Memory

	mu      sync.Mutex
	changes map[uint64]func(b *database.Block)
}

func newTamperStorage() *tamperStorage {
	return &tamperStorage{
		Memory:  memory.New(),
		changes: make(map[uint64]func(b *database.Block)),
	}
}

func (ts *tamperStorage) tamper(height uint64, fn func(b *database.Block)) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.changes[height] = fn
}

func (ts *tamperStorage) GetBlock(height uint64) (database.Block, error) {
	block, err := ts.Memory.GetBlock(height)
	if err != nil {
		return block, err
	}

	ts.mu.Lock()
	fn, exists := ts.changes[height]
	ts.mu.Unlock()

	if exists {
		fn(&block)
	}

	return block, nil
}

func (ts *tamperStorage) ForEach() database.Iterator {
	return &tamperIterator{storage: ts}
}

type tamperIterator struct {
	storage *tamperStorage
	current uint64
	eoc     bool
}

func (ti *tamperIterator) Next() (database.Block, error) {
	if ti.eoc {
		return database.Block{}, database.ErrNotFound
	}

	block, err := ti.storage.GetBlock(ti.current)
	if err != nil {
		ti.eoc = true
	}
	ti.current++

	return block, err
}

func (ti *tamperIterator) Done() bool {
	return ti.eoc
}
