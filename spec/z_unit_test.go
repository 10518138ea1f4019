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

package spec

import (
	"encoding/json"
	"testing"
)

func baseMachine() *MachineConfig {
	strip := []string{"H1", "H2", "L1", "L2", "L1"}
	return &MachineConfig{
		AppID:         9001,
		ChainID:       "test-chain",
		MinBet:        1000,
		MaxBet:        100000,
		MaxPaylines:   3,
		SymbolUsedStr: []string{"H1", "H2", "L1", "L2"},
		ReelStrips: [][]string{
			append([]string(nil), strip...),
			append([]string(nil), strip...),
			append([]string(nil), strip...),
			append([]string(nil), strip...),
			append([]string(nil), strip...),
		},
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
		WinTiers: WinTierSetting{Small: 1, Medium: 5, Large: 20, Jackpot: 100},
	}
}

func TestMachineConfigInitDerived(t *testing.T) {
	mc := baseMachine()
	if err := mc.Init(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mc.SymbolCount != 4 {
		t.Fatalf("symbol count = %d, want 4", mc.SymbolCount)
	}
	if len(mc.Reels) != Columns || len(mc.Reels[0]) != 5 {
		t.Fatalf("unexpected reels shape: %dx%d", len(mc.Reels), len(mc.Reels[0]))
	}
	// strip 是 [H1 H2 L1 L2 L1]，索引順序跟 SymbolUsedStr 一致
	want := []int16{0, 1, 2, 3, 2}
	for i, v := range mc.Reels[0] {
		if v != want[i] {
			t.Fatalf("reel[0][%d] = %d, want %d", i, v, want[i])
		}
	}
	if mc.ReelLength() != 5 {
		t.Fatalf("reel length = %d, want 5", mc.ReelLength())
	}
	// 重複 Init 是 no-op
	if err := mc.Init(); err != nil {
		t.Fatalf("second init: %v", err)
	}
}

func TestMachineConfigMultiplier(t *testing.T) {
	mc := baseMachine()
	if err := mc.Init(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cases := []struct {
		sym  int16
		run  int
		want int64
	}{
		{0, 3, 50},
		{0, 5, 1000},
		{1, 4, 80},
		{2, 5, 100},
		{3, 5, 0},  // 無賠付符號
		{0, 2, 0},  // 串長未設定
		{0, 0, 0},  // 串長越界
		{0, 6, 0},  // 串長越界
		{-1, 3, 0}, // 符號越界
		{4, 3, 0},  // 符號越界
	}
	for _, c := range cases {
		if got := mc.Multiplier(c.sym, c.run); got != c.want {
			t.Fatalf("Multiplier(%d, %d) = %d, want %d", c.sym, c.run, got, c.want)
		}
	}
}

func TestMachineConfigSymbolName(t *testing.T) {
	mc := baseMachine()
	if err := mc.Init(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := mc.SymbolName(1); got != "H2" {
		t.Fatalf("SymbolName(1) = %q, want H2", got)
	}
	if got := mc.SymbolName(-1); got != "?" {
		t.Fatalf("SymbolName(-1) = %q, want ?", got)
	}
	if got := mc.SymbolName(9); got != "?" {
		t.Fatalf("SymbolName(9) = %q, want ?", got)
	}
}

func TestMachineConfigInitFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*MachineConfig)
	}{
		{"zero min bet", func(mc *MachineConfig) { mc.MinBet = 0 }},
		{"min above max", func(mc *MachineConfig) { mc.MinBet = mc.MaxBet + 1 }},
		{"zero max paylines", func(mc *MachineConfig) { mc.MaxPaylines = 0 }},
		{"empty symbol used", func(mc *MachineConfig) { mc.SymbolUsedStr = nil }},
		{"wrong reel count", func(mc *MachineConfig) { mc.ReelStrips = mc.ReelStrips[:4] }},
		{"short strip", func(mc *MachineConfig) {
			for i := range mc.ReelStrips {
				mc.ReelStrips[i] = []string{"H1", "H2"}
			}
		}},
		{"unequal strips", func(mc *MachineConfig) { mc.ReelStrips[2] = []string{"H1", "H2", "L1", "L2"} }},
		{"pay table row count mismatch", func(mc *MachineConfig) { mc.PayTable = mc.PayTable[:3] }},
		{"pay table row too short", func(mc *MachineConfig) { mc.PayTable[0] = []int64{0, 0, 50} }},
		{"negative multiplier", func(mc *MachineConfig) { mc.PayTable[1][2] = -1 }},
		{"fewer paylines than max", func(mc *MachineConfig) { mc.Paylines = mc.Paylines[:2] }},
		{"payline wrong length", func(mc *MachineConfig) { mc.Paylines[0] = []int{1, 1, 1} }},
		{"payline row out of range", func(mc *MachineConfig) { mc.Paylines[0] = []int{0, 1, 3, 1, 0} }},
		{"unknown symbol in strip", func(mc *MachineConfig) { mc.ReelStrips[0][0] = "W9" }},
		{"symbol not in used list", func(mc *MachineConfig) { mc.ReelStrips[0][0] = "L5" }},
		{"duplicate symbol used", func(mc *MachineConfig) { mc.SymbolUsedStr = []string{"H1", "H2", "L1", "H1"} }},
		{"bad symbol name", func(mc *MachineConfig) { mc.SymbolUsedStr = []string{"H1", "H2", "L1", "XX"} }},
		{"win tiers not ascending", func(mc *MachineConfig) { mc.WinTiers.Medium = mc.WinTiers.Small }},
		{"win tiers non positive", func(mc *MachineConfig) { mc.WinTiers.Small = 0 }},
	}
	for _, c := range cases {
		mc := baseMachine()
		c.mutate(mc)
		if err := mc.Init(); err == nil {
			t.Fatalf("%s: expected error", c.name)
		}
	}
}

func TestGetMachineConfigByYAML(t *testing.T) {
	raw := []byte(`
app_id: 7001
chain_id: yaml-chain
min_bet: 1000
max_bet: 100000
max_paylines: 1
symbol_used: [H1, L1]
reels:
  - [H1, L1, H1]
  - [H1, L1, H1]
  - [H1, L1, H1]
  - [H1, L1, H1]
  - [H1, L1, H1]
pay_table:
  - [0, 0, 10, 40, 200]
  - [0, 0, 2, 8, 40]
paylines:
  - [1, 1, 1, 1, 1]
win_tiers:
  small: 1
  medium: 5
  large: 20
  jackpot: 100
`)
	mc, err := GetMachineConfigByYAML(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mc.AppID != 7001 || mc.ChainID != "yaml-chain" {
		t.Fatalf("unexpected identity: %+v", mc)
	}
	if mc.SymbolCount != 2 || mc.Multiplier(0, 5) != 200 {
		t.Fatalf("derived data not built: count=%d", mc.SymbolCount)
	}

	if _, err := GetMachineConfigByYAML([]byte("{ not yaml")); err == nil {
		t.Fatalf("expected yaml parse error")
	}
}

func TestGetMachineConfigByJSON(t *testing.T) {
	raw, err := json.Marshal(baseMachine())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	mc, err := GetMachineConfigByJSON(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mc.AppID != 9001 || mc.Multiplier(0, 3) != 50 {
		t.Fatalf("unexpected config: %+v", mc)
	}

	if _, err := GetMachineConfigByJSON([]byte("{")); err == nil {
		t.Fatalf("expected json parse error")
	}
}

func TestSymbolParseAndClass(t *testing.T) {
	sym, ok := ParseSymbol("W1")
	if !ok || sym != W1 {
		t.Fatalf("ParseSymbol(W1) = %v, %v", sym, ok)
	}
	if _, ok := ParseSymbol("W9"); ok {
		t.Fatalf("expected unknown symbol")
	}
	if W1.String() != "W1" || Symbol(99).String() != "?" {
		t.Fatalf("unexpected symbol names")
	}
	if !IsSymbolWild(W2) || IsSymbolWild(H1) {
		t.Fatalf("wild classification broken")
	}
	if !IsSymbolHigh(H4) || !IsSymbolLow(L5) || !IsSymbolScatter(C1) || !IsSymbolNone(Z3) {
		t.Fatalf("symbol class helpers broken")
	}
}
