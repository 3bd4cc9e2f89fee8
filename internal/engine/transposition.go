package engine

import (
	"sync"
	"sync/atomic"

	"github.com/maxflowmincut/FlareChessEngine/internal/board"
)

// TTFlag records which kind of bound a stored score represents, since
// alpha-beta only proves an exact score when neither bound fails.
type TTFlag uint8

const (
	TTExact      TTFlag = iota
	TTLowerBound               // score is a fail-high: true value is >= this
	TTUpperBound               // score is a fail-low: true value is <= this
)

// ttShardCount shards the table's locking so Lazy SMP workers probing and
// storing concurrently rarely contend on the same mutex. Power of 2 so the
// shard for an index is a mask, not a division.
const (
	ttShardCount = 256
	ttShardMask  = ttShardCount - 1
)

// TTEntry is one transposition table slot.
type TTEntry struct {
	Key      uint64     // full hash, checked on probe to rule out index collisions
	BestMove board.Move
	Score    int16
	Depth    int8
	Flag     TTFlag
	Age      uint8 // search generation, for replacement
}

// TranspositionTable caches search results keyed by position hash across a
// fixed-size, power-of-2-sized entry array. Workers share one table and
// synchronize via per-shard locks rather than one table-wide lock.
type TranspositionTable struct {
	entries []TTEntry
	shards  [ttShardCount]sync.RWMutex
	size    uint64
	mask    uint64
	age     atomic.Uint32

	hits   atomic.Uint64
	probes atomic.Uint64
}

// NewTranspositionTable allocates a table sized to approximately sizeMB
// megabytes, rounded down to the nearest power of 2 entry count.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	const entrySize = 24 // sizeof(TTEntry): 17 bytes of fields padded to 8-byte alignment
	numEntries := roundDownToPowerOf2(uint64(sizeMB) * 1024 * 1024 / entrySize)

	return &TranspositionTable{
		entries: make([]TTEntry, numEntries),
		size:    numEntries,
		mask:    numEntries - 1,
	}
}

func roundDownToPowerOf2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// slot returns the entry index for hash and the shard guarding it.
func (tt *TranspositionTable) slot(hash uint64) (idx uint64, shard int) {
	idx = hash & tt.mask
	return idx, int(idx & ttShardMask)
}

// Probe looks up hash and reports whether a matching entry was found. The
// stored Key must match hash exactly: the index alone only narrows to a
// bucket, it doesn't prove identity.
func (tt *TranspositionTable) Probe(hash uint64) (TTEntry, bool) {
	tt.probes.Add(1)

	idx, shard := tt.slot(hash)

	tt.shards[shard].RLock()
	entry := tt.entries[idx]
	tt.shards[shard].RUnlock()

	if entry.Key == hash && entry.Depth > 0 {
		tt.hits.Add(1)
		return entry, true
	}
	return TTEntry{}, false
}

// Store writes hash's search result into the table, replacing the existing
// occupant only if it's from a past search (stale) or this result searched
// at least as deep. A deeper same-generation entry is worth more than a
// fresher shallow one, so it's kept.
func (tt *TranspositionTable) Store(hash uint64, depth int, score int, flag TTFlag, bestMove board.Move) {
	idx, shard := tt.slot(hash)
	currentAge := uint8(tt.age.Load())

	tt.shards[shard].Lock()
	entry := &tt.entries[idx]
	if entry.Age != currentAge || depth >= int(entry.Depth) {
		entry.Key = hash
		entry.BestMove = bestMove
		entry.Score = int16(score)
		entry.Depth = int8(depth)
		entry.Flag = flag
		entry.Age = currentAge
	}
	tt.shards[shard].Unlock()
}

// NewSearch advances the table's generation counter so Store's replacement
// policy treats all prior entries as stale once a new search begins.
func (tt *TranspositionTable) NewSearch() {
	tt.age.Add(1)
}

// Clear empties every entry and resets statistics.
func (tt *TranspositionTable) Clear() {
	for i := range tt.entries {
		tt.entries[i] = TTEntry{}
	}
	tt.age.Store(0)
	tt.hits.Store(0)
	tt.probes.Store(0)
}

// HashFull estimates table occupancy in permille by sampling its first
// entries rather than scanning the whole table, which would dominate the
// cost of an info line on a table sized in the hundreds of megabytes.
func (tt *TranspositionTable) HashFull() int {
	sampleSize := 1000
	if uint64(sampleSize) > tt.size {
		sampleSize = int(tt.size)
	}

	currentAge := uint8(tt.age.Load())
	used := 0
	for i := 0; i < sampleSize; i++ {
		if tt.entries[i].Depth > 0 && tt.entries[i].Age == currentAge {
			used++
		}
	}
	return (used * 1000) / sampleSize
}

// HitRate returns the fraction of probes that found a usable entry, as a
// percentage.
func (tt *TranspositionTable) HitRate() float64 {
	probes := tt.probes.Load()
	if probes == 0 {
		return 0
	}
	return float64(tt.hits.Load()) / float64(probes) * 100
}

// Size returns the table's entry count.
func (tt *TranspositionTable) Size() uint64 {
	return tt.size
}

// AdjustScoreFromTT converts a mate score stored relative to the node that
// stored it into one relative to ply: a stored table entry doesn't know how
// far from the root it will be reused, so mate distances are normalized to
// "ply 0" in the table and re-expanded here on read.
func AdjustScoreFromTT(score int, ply int) int {
	if score > MateScore-MaxPly {
		return score - ply
	}
	if score < -MateScore+MaxPly {
		return score + ply
	}
	return score
}

// AdjustScoreToTT is AdjustScoreFromTT's inverse, applied before Store.
func AdjustScoreToTT(score int, ply int) int {
	if score > MateScore-MaxPly {
		return score + ply
	}
	if score < -MateScore+MaxPly {
		return score - ply
	}
	return score
}
