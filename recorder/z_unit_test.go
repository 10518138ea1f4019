// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package recorder

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/zintix-labs/chainspin/stats"
	"github.com/zintix-labs/chainspin/store"
)

func settledSpin(id string, payout int64) (stats.Settle, *store.QueuedSpin) {
	grid := make([]int16, 15)
	for i := range grid {
		grid[i] = int16(i % 4)
	}
	spin := &store.QueuedSpin{
		ID:         id,
		Status:     store.Completed,
		BetPerLine: 1000,
		Paylines:   3,
		TotalBet:   3000,
		Winnings:   payout,
		Outcome: &store.SpinOutcome{
			Grid:        grid,
			TotalPayout: payout,
			Block:       7,
			BlockSeed:   "aabb",
			BetKey:      "ccdd",
		},
	}
	settle := stats.Settle{
		SpinID:    id,
		TotalBet:  3000,
		Winnings:  payout,
		NetProfit: payout - 3000,
		IsWin:     payout > 0,
		Tier:      stats.TierSmall,
		Multiple:  float64(payout) / 3000,
		Block:     7,
		At:        time.Now().UTC(),
	}
	return settle, spin
}

func TestJournalRoundtripPlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spins.jsonl")
	j, err := OpenSpinJournal(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	for i, payout := range []int64{0, 6000} {
		settle, spin := settledSpin(string(rune('a'+i)), payout)
		if err := j.Record(settle, spin); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}
	if j.Count() != 2 {
		t.Fatalf("count = %d, want 2", j.Count())
	}
	if err := j.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	entries, err := ReadJournal(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	e := entries[1]
	if e.SpinID != "b" || e.Winnings != 6000 || e.Block != 7 {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.BlockSeed != "aabb" || e.BetKey != "ccdd" || len(e.Grid) != 15 {
		t.Fatalf("verification fields missing: %+v", e)
	}
	// 離線重算派彩要用「該筆」的注額，所以注額必須跟著每一行走
	if e.BetPerLine != 1000 || e.Paylines != 3 {
		t.Fatalf("stake fields missing: %+v", e)
	}
	if e.Tier != "small" {
		t.Fatalf("tier = %q", e.Tier)
	}
}

func TestJournalRoundtripZstd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spins.jsonl.zst")
	j, err := OpenSpinJournal(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	settle, spin := settledSpin("z", 1500)
	if err := j.Record(settle, spin); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	entries, err := ReadJournal(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(entries) != 1 || entries[0].SpinID != "z" || entries[0].Winnings != 1500 {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestJournalWriterSink(t *testing.T) {
	var buf bytes.Buffer
	j, err := NewSpinJournal(&buf)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	settle, spin := settledSpin("w", 100)
	if err := j.Record(settle, spin); err != nil {
		t.Fatalf("record: %v", err)
	}

	var e JournalEntry
	if err := json.Unmarshal(buf.Bytes(), &e); err != nil {
		t.Fatalf("output not json lines: %v", err)
	}
	if e.SpinID != "w" {
		t.Fatalf("unexpected entry: %+v", e)
	}

	if _, err := NewSpinJournal(nil); err == nil {
		t.Fatalf("nil writer must fail")
	}
}

func TestJournalRequiresOutcome(t *testing.T) {
	j, err := NewSpinJournal(&bytes.Buffer{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	settle, spin := settledSpin("a", 100)
	if err := j.Record(settle, nil); err == nil {
		t.Fatalf("nil spin must fail")
	}
	spin.Outcome = nil
	if err := j.Record(settle, spin); err == nil {
		t.Fatalf("spin without outcome must fail")
	}
}

func TestJournalCloseSemantics(t *testing.T) {
	j, err := NewSpinJournal(&bytes.Buffer{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("double close: %v", err)
	}
	settle, spin := settledSpin("a", 100)
	if err := j.Record(settle, spin); err == nil {
		t.Fatalf("record after close must fail")
	}
}
