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

package valid

import (
	"strings"
	"testing"

	"github.com/zintix-labs/chainspin/spec"
	"github.com/zintix-labs/chainspin/store"
)

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

func TestValidateBetBoundaries(t *testing.T) {
	mc := testMachine(t)
	cases := []struct {
		name  string
		bet   int64
		lines int
		ok    bool
	}{
		{"at min", 1000, 1, true},
		{"below min", 999, 1, false},
		{"at max", 100000, 1, true},
		{"above max", 100001, 1, false},
		{"zero lines", 1000, 0, false},
		{"negative lines", 1000, -1, false},
		{"at max lines", 1000, 3, true},
		{"above max lines", 1000, 4, false},
	}
	for _, c := range cases {
		res := ValidateBet(c.bet, c.lines, mc)
		if res.IsValid != c.ok {
			t.Fatalf("%s: IsValid = %v, want %v (%v)", c.name, res.IsValid, c.ok, res.Errors)
		}
	}
}

func TestValidateBetCollectsAllViolations(t *testing.T) {
	mc := testMachine(t)
	res := ValidateBet(1, 99, mc)
	if res.IsValid {
		t.Fatalf("expected invalid")
	}
	if len(res.Errors) != 2 {
		t.Fatalf("errors = %v, want 2 entries", res.Errors)
	}
	if res.First() == "" || !strings.Contains(res.First(), "min bet") {
		t.Fatalf("unexpected first error: %q", res.First())
	}
}

func TestValidateBetTableMaxWarning(t *testing.T) {
	mc := testMachine(t)

	res := ValidateBet(mc.MaxBet, mc.MaxPaylines, mc)
	if !res.IsValid {
		t.Fatalf("table max should be valid: %v", res.Errors)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("warnings = %v, want table-max warning", res.Warnings)
	}

	// 只有注額或只有線數拉滿時不警告
	if res := ValidateBet(mc.MaxBet, 1, mc); len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
	if res := ValidateBet(mc.MinBet, mc.MaxPaylines, mc); len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
}

func TestValidateBetNilConfig(t *testing.T) {
	res := ValidateBet(1000, 1, nil)
	if res.IsValid || len(res.Errors) != 1 {
		t.Fatalf("expected single config error, got %+v", res)
	}
}

func TestValidateBalance(t *testing.T) {
	// balance 10M, reserved 4M → 可用 6M
	if res := ValidateBalance(3_000_000, 2, 10_000_000, 4_000_000); !res.IsValid {
		t.Fatalf("exact available should pass: %v", res.Errors)
	}
	if res := ValidateBalance(3_000_001, 2, 10_000_000, 4_000_000); res.IsValid {
		t.Fatalf("need above available should fail")
	}
}

func TestValidateBalanceNegativeAvailableClamped(t *testing.T) {
	res := ValidateBalance(1, 1, 100, 200)
	if res.IsValid {
		t.Fatalf("expected failure")
	}
	if !strings.Contains(res.First(), "available 0") {
		t.Fatalf("available not clamped to 0: %q", res.First())
	}
}

func TestResultFirstEmpty(t *testing.T) {
	r := Result{IsValid: true}
	if r.First() != "" {
		t.Fatalf("First on clean result = %q", r.First())
	}
}

func TestReservedBalance(t *testing.T) {
	queue := []*store.QueuedSpin{
		{ID: "a", Status: store.Pending, TotalBet: 100},
		{ID: "b", Status: store.Waiting, TotalBet: 200},
		{ID: "c", Status: store.Claiming, TotalBet: 400},
		{ID: "d", Status: store.Completed, TotalBet: 800},
		{ID: "e", Status: store.Failed, TotalBet: 1600},
		{ID: "f", Status: store.Expired, TotalBet: 3200},
		nil,
	}
	if got := ReservedBalance(queue); got != 700 {
		t.Fatalf("reserved = %d, want 700 (non-terminal only)", got)
	}
	if got := ReservedBalance(nil); got != 0 {
		t.Fatalf("reserved on empty queue = %d", got)
	}
}
