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

// Package valid 提供下注合法性與餘額檢查的純函式。
//
// 這裡不觸碰任何狀態：queue 的彙總（保留餘額）由呼叫端丟進來。
// store 內部的重算邏輯與 ReservedBalance 必須同語意（有測試對齊），
// 避免兩邊標準漂移。
package valid

import (
	"fmt"

	"github.com/zintix-labs/chainspin/spec"
	"github.com/zintix-labs/chainspin/store"
)

// Result 彙總一次檢查的所有違規（不是只回第一個）。
// 呼叫端可以自行決定只呈現第一條。
type Result struct {
	IsValid  bool
	Errors   []string
	Warnings []string
}

func (r *Result) addErr(format string, a ...any) {
	r.IsValid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, a...))
}

func (r *Result) addWarn(format string, a ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, a...))
}

// First 回傳第一條錯誤訊息；無錯誤回空字串。
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0]
}

// ValidateBet 檢查單線注額與線數是否落在機台設定範圍內。
//
// 回傳所有違規：呼叫端（UI）常常要一次標紅多個欄位。
func ValidateBet(betPerLine int64, paylines int, cfg *spec.MachineConfig) Result {
	r := Result{IsValid: true}
	if cfg == nil {
		r.addErr("machine config is not loaded")
		return r
	}
	if betPerLine < cfg.MinBet {
		r.addErr("bet %d below min bet %d", betPerLine, cfg.MinBet)
	}
	if betPerLine > cfg.MaxBet {
		r.addErr("bet %d above max bet %d", betPerLine, cfg.MaxBet)
	}
	if paylines < 1 {
		r.addErr("paylines %d below 1", paylines)
	}
	if paylines > cfg.MaxPaylines {
		r.addErr("paylines %d above max %d", paylines, cfg.MaxPaylines)
	}
	if r.IsValid && betPerLine == cfg.MaxBet && paylines == cfg.MaxPaylines {
		r.addWarn("betting table maximum")
	}
	return r
}

// ValidateBalance 檢查可用餘額是否足以支付 betPerLine*paylines。
//
// 可用餘額 = balance - reserved；reserved 來自所有未結算 spin 的 totalBet。
// 當 reserved 超過 balance（鏈上餘額落後於本地佇列的瞬間）時視為 0 可用，
// 不得出現負數參與比較。
func ValidateBalance(betPerLine int64, paylines int, balance, reserved int64) Result {
	r := Result{IsValid: true}
	need := betPerLine * int64(paylines)
	avail := balance - reserved
	if avail < 0 {
		avail = 0
	}
	if avail < need {
		r.addErr("insufficient balance: need %d, available %d (balance %d, reserved %d)",
			need, avail, balance, reserved)
	}
	return r
}

// ReservedBalance 重算整條 queue 的保留餘額。
//
// 只計入未到終態（COMPLETED/FAILED/EXPIRED）的 spin。
// 每次 queue 變動後整段重算而不是增量修補：漏掉一次轉移就會讓
// 增量值永久漂移，重算的成本（queue 很短）遠低於對帳成本。
func ReservedBalance(queue []*store.QueuedSpin) int64 {
	var sum int64
	for _, s := range queue {
		if s == nil || s.Status.Terminal() {
			continue
		}
		sum += s.TotalBet
	}
	return sum
}
