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

package store

import (
	"time"

	"github.com/zintix-labs/chainspin/calc"
)

// Status 是單筆 spin 的生命週期狀態。
//
// 合法轉移：
//
//	PENDING → SUBMITTING → WAITING → CLAIMING → COMPLETED
//
// FAILED 可由任何非終態進入；EXPIRED 只由 WAITING 進入（watchdog）。
// COMPLETED / FAILED / EXPIRED 為終態，終態之後不得再轉移。
type Status uint8

const (
	Pending Status = iota
	Submitting
	Waiting
	Claiming
	Completed
	Failed
	Expired
)

var statusStr = map[Status]string{
	Pending:    "PENDING",
	Submitting: "SUBMITTING",
	Waiting:    "WAITING",
	Claiming:   "CLAIMING",
	Completed:  "COMPLETED",
	Failed:     "FAILED",
	Expired:    "EXPIRED",
}

func (s Status) String() string {
	if str, ok := statusStr[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// Terminal 回報狀態是否為終態。
func (s Status) Terminal() bool {
	return s == Completed || s == Failed || s == Expired
}

// canTransition 檢查 from → to 是否為合法轉移。
func canTransition(from, to Status) bool {
	if from.Terminal() {
		return false
	}
	switch to {
	case Submitting:
		return from == Pending
	case Waiting:
		return from == Submitting
	case Claiming:
		return from == Waiting
	case Completed:
		return from == Claiming
	case Failed:
		return true // 任何非終態皆可失敗
	case Expired:
		return from == Waiting
	default:
		return false
	}
}

// SubmitReceipt 是交易送出成功後鏈端回報的資訊。
type SubmitReceipt struct {
	BetKey      string `json:"bet_key"`      // 領獎用的不透明把手（hex）
	TxID        string `json:"tx_id"`        // 交易識別
	SubmitBlock uint64 `json:"submit_block"` // 送出時區塊高度
	ClaimBlock  uint64 `json:"claim_block"`  // 可領獎的區塊高度（>= SubmitBlock）
}

// SpinOutcome 是領獎步驟產出的最終結果，建立後不可變。
//
// 不變式：TotalPayout == sum(Lines[].Payout)。
type SpinOutcome struct {
	Grid        []int16            `json:"grid"` // 5x3 扁平盤面（reel 主序）
	Lines       []calc.WinningLine `json:"lines"`
	TotalPayout int64              `json:"total_payout"` // micro
	Block       uint64             `json:"block"`
	BlockSeed   string             `json:"block_seed"` // hex
	BetKey      string             `json:"bet_key"`    // hex
}

// QueuedSpin 是一筆 spin 請求在佇列中的完整狀態。
//
// 所有欄位只能透過 Store 的具名操作變更；終態的 spin 只會被
// 顯式的 cleanup（RemoveSpin / PruneSettled）移出佇列，不會被默默丟棄。
type QueuedSpin struct {
	ID         string    `json:"id"`
	Status     Status    `json:"status"`
	BetPerLine int64     `json:"bet_per_line"` // micro
	Paylines   int       `json:"paylines"`
	TotalBet   int64     `json:"total_bet"` // BetPerLine * Paylines，建立時定死
	At         time.Time `json:"at"`

	// 進到 WAITING 之後才有值
	Receipt *SubmitReceipt `json:"receipt,omitempty"`

	// 終態資料：COMPLETED 必有 Outcome；FAILED/EXPIRED 必有 Err
	Outcome  *SpinOutcome `json:"outcome,omitempty"`
	Winnings int64        `json:"winnings"` // micro
	Err      string       `json:"err,omitempty"`
}

// clone 回傳深拷貝，give-out 前一律 clone，避免外部改到佇列內部狀態。
func (q *QueuedSpin) clone() QueuedSpin {
	out := *q
	if q.Receipt != nil {
		r := *q.Receipt
		out.Receipt = &r
	}
	if q.Outcome != nil {
		o := *q.Outcome
		o.Grid = append([]int16(nil), q.Outcome.Grid...)
		o.Lines = append([]calc.WinningLine(nil), q.Outcome.Lines...)
		out.Outcome = &o
	}
	return out
}
