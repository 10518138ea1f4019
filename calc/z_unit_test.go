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

package calc

import (
	"testing"

	"github.com/zintix-labs/chainspin/spec"
)

// 測試機台：4 個符號（H1=0 H2=1 L1=2 L2=3），L2 全串長無賠付。
// 線 0 為中列、線 1 為上列、線 2 為下列。
func testMachine(t *testing.T) *spec.MachineConfig {
	t.Helper()
	strip := []string{"H1", "H2", "L1", "L2", "L1"}
	mc := &spec.MachineConfig{
		AppID:         9001,
		ChainID:       "test-chain",
		MinBet:        1000,
		MaxBet:        100000,
		MaxPaylines:   3,
		SymbolUsedStr: []string{"H1", "H2", "L1", "L2"},
		ReelStrips:    [][]string{strip, strip, strip, strip, strip},
		PayTable: [][]int64{
			{0, 0, 50, 200, 1000},
			{0, 0, 20, 80, 400},
			{0, 0, 5, 20, 100},
			{0, 0, 0, 0, 0},
		},
		Paylines: [][]int{
			{1, 1, 1, 1, 1},
			{0, 0, 0, 0, 0},
			{2, 2, 2, 2, 2},
		},
		WinTiers: spec.WinTierSetting{Small: 1, Medium: 5, Large: 20, Jackpot: 100},
	}
	if err := mc.Init(); err != nil {
		t.Fatalf("init machine config: %v", err)
	}
	return mc
}

const (
	symH1 int16 = 0
	symH2 int16 = 1
	symL1 int16 = 2
	symL2 int16 = 3
)

// gridOf 以 L2（無賠付）鋪底，再逐列覆寫指定 row。
func gridOf(rows map[int][]int16) []int16 {
	grid := make([]int16, spec.Columns*spec.Rows)
	for i := range grid {
		grid[i] = symL2
	}
	for row, syms := range rows {
		for reel, sym := range syms {
			grid[Idx(reel, row)] = sym
		}
	}
	return grid
}

func TestIdx(t *testing.T) {
	if Idx(0, 0) != 0 || Idx(0, 2) != 2 || Idx(1, 0) != 3 || Idx(4, 2) != 14 {
		t.Fatalf("flat index layout broken")
	}
}

func TestEvaluateLinesFiveOfAKind(t *testing.T) {
	mc := testMachine(t)
	grid := gridOf(map[int][]int16{
		1: {symH1, symH1, symH1, symH1, symH1},
	})
	wins, total := EvaluateLines(grid, mc, 100, 3)
	if len(wins) != 1 {
		t.Fatalf("wins = %d, want 1", len(wins))
	}
	w := wins[0]
	if w.Line != 0 || w.SymID != symH1 || w.Count != 5 {
		t.Fatalf("unexpected win: %+v", w)
	}
	if w.Payout != 100*1000 || total != w.Payout {
		t.Fatalf("payout = %d, total = %d, want %d", w.Payout, total, 100*1000)
	}
	if w.Pattern != [spec.Columns]int{1, 1, 1, 1, 1} {
		t.Fatalf("unexpected pattern: %v", w.Pattern)
	}
}

func TestEvaluateLinesRunBreaks(t *testing.T) {
	mc := testMachine(t)
	// 第三輪中斷：H1 H1 L1 H1 H1 不可計 4 連線
	grid := gridOf(map[int][]int16{
		1: {symH1, symH1, symL1, symH1, symH1},
	})
	wins, total := EvaluateLines(grid, mc, 100, 3)
	if len(wins) != 0 || total != 0 {
		t.Fatalf("expected no win, got %v (total %d)", wins, total)
	}
}

func TestEvaluateLinesRunOfFour(t *testing.T) {
	mc := testMachine(t)
	grid := gridOf(map[int][]int16{
		1: {symH1, symH1, symH1, symH1, symH2},
	})
	wins, total := EvaluateLines(grid, mc, 250, 3)
	if len(wins) != 1 || wins[0].Count != 4 {
		t.Fatalf("unexpected wins: %v", wins)
	}
	if total != 250*200 {
		t.Fatalf("total = %d, want %d", total, 250*200)
	}
}

func TestEvaluateLinesRunOfTwoNoWin(t *testing.T) {
	mc := testMachine(t)
	grid := gridOf(map[int][]int16{
		1: {symH1, symH1, symH2, symH2, symH2},
	})
	// 線 0 首符號 H1 只連了 2，後段的 H2 串不計
	wins, total := EvaluateLines(grid, mc, 100, 1)
	if len(wins) != 0 || total != 0 {
		t.Fatalf("expected no win, got %v (total %d)", wins, total)
	}
}

func TestEvaluateLinesZeroMultiplierSkipped(t *testing.T) {
	mc := testMachine(t)
	// L2 五連線但賠付表全 0，不得產生 WinningLine
	grid := gridOf(nil)
	wins, total := EvaluateLines(grid, mc, 100, 3)
	if len(wins) != 0 || total != 0 {
		t.Fatalf("expected no win, got %v (total %d)", wins, total)
	}
}

func TestEvaluateLinesIndependentLines(t *testing.T) {
	mc := testMachine(t)
	grid := gridOf(map[int][]int16{
		0: {symH2, symH2, symH2, symH2, symH2}, // 線 1（上列）
		1: {symH1, symH1, symH1, symH1, symH1}, // 線 0（中列）
	})
	wins, total := EvaluateLines(grid, mc, 100, 3)
	if len(wins) != 2 {
		t.Fatalf("wins = %d, want 2", len(wins))
	}
	want := int64(100*1000 + 100*400)
	if total != want {
		t.Fatalf("total = %d, want %d", total, want)
	}
	// 計分順序依線序
	if wins[0].Line != 0 || wins[1].Line != 1 {
		t.Fatalf("unexpected line order: %+v", wins)
	}
}

func TestEvaluateLinesRespectsPaylineCount(t *testing.T) {
	mc := testMachine(t)
	grid := gridOf(map[int][]int16{
		2: {symL1, symL1, symL1, symL1, symL1}, // 線 2（下列）
	})
	// 只買 1 線：下列的五連線不計
	if wins, total := EvaluateLines(grid, mc, 100, 1); len(wins) != 0 || total != 0 {
		t.Fatalf("expected no win with 1 payline, got %v (total %d)", wins, total)
	}
	// 線數超過線表：夾到線表長度
	wins, total := EvaluateLines(grid, mc, 100, 99)
	if len(wins) != 1 || wins[0].Line != 2 {
		t.Fatalf("unexpected wins: %v", wins)
	}
	if total != 100*100 {
		t.Fatalf("total = %d, want %d", total, 100*100)
	}
}
