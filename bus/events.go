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

package bus

import (
	"time"

	"github.com/zintix-labs/chainspin/errs"
	"github.com/zintix-labs/chainspin/stats"
	"github.com/zintix-labs/chainspin/store"
)

// EventType 區分事件種類；訂閱以型別為 key。
type EventType uint8

const (
	EventSpinQueued EventType = iota
	EventSpinSubmitted
	EventSpinClaimed
	EventSpinCompleted
	EventSpinFailed
	EventSpinExpired
	EventBalanceUpdated
	EventWinTier
	EventError
)

var eventTypeStr = map[EventType]string{
	EventSpinQueued:     "spin_queued",
	EventSpinSubmitted:  "spin_submitted",
	EventSpinClaimed:    "spin_claimed",
	EventSpinCompleted:  "spin_completed",
	EventSpinFailed:     "spin_failed",
	EventSpinExpired:    "spin_expired",
	EventBalanceUpdated: "balance_updated",
	EventWinTier:        "win_tier",
	EventError:          "error",
}

func (t EventType) String() string {
	if s, ok := eventTypeStr[t]; ok {
		return s
	}
	return "unknown"
}

// Event 是所有事件 payload 的共同介面。
type Event interface {
	Type() EventType
}

// SpinQueued : spin 已通過驗證並進入佇列。
type SpinQueued struct {
	Spin store.QueuedSpin
}

func (SpinQueued) Type() EventType { return EventSpinQueued }

// SpinSubmitted : 交易已上鏈，進入等待開獎。
type SpinSubmitted struct {
	Spin store.QueuedSpin
}

func (SpinSubmitted) Type() EventType { return EventSpinSubmitted }

// SpinClaimed : 開獎成功取得鏈上結果。
type SpinClaimed struct {
	SpinID  string
	Outcome store.SpinOutcome
}

func (SpinClaimed) Type() EventType { return EventSpinClaimed }

// SpinCompleted : spin 已結算（終態 COMPLETED）。
type SpinCompleted struct {
	Spin   store.QueuedSpin
	Result stats.Settle
}

func (SpinCompleted) Type() EventType { return EventSpinCompleted }

// SpinFailed : spin 以 FAILED 終態收場。
type SpinFailed struct {
	Spin store.QueuedSpin
	Err  *errs.E
}

func (SpinFailed) Type() EventType { return EventSpinFailed }

// SpinExpired : 等待開獎逾時（watchdog）。
type SpinExpired struct {
	Spin store.QueuedSpin
	Err  *errs.E
}

func (SpinExpired) Type() EventType { return EventSpinExpired }

// BalanceUpdated : 鏈上餘額鏡像有變動。
type BalanceUpdated struct {
	Current     int64 // micro
	Reserved    int64
	Available   int64
	Delta       int64 // 相對前一次已知值
	LastUpdated time.Time
}

func (BalanceUpdated) Type() EventType { return EventBalanceUpdated }

// WinTier : 中獎級距事件（只在 IsWin 時另行發出）。
type WinTier struct {
	SpinID   string
	Tier     stats.Tier
	Multiple float64 // payout / totalBet
}

func (WinTier) Type() EventType { return EventWinTier }

// ErrorEvent : 引擎層錯誤（async pipeline 內被吃掉的錯誤由此對外）。
type ErrorEvent struct {
	Err *errs.E
}

func (ErrorEvent) Type() EventType { return EventError }
