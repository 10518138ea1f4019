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

// Package chainspin 提供鏈上老虎機 session 引擎的「組裝入口（assembler）」
// 與「運行入口（runtime entry）」。
//
// 引擎把四個地基組裝在一起：
//  1. Adapter：鏈端邊界（真鏈或 chainsim 沙盒），由呼叫端明確注入。
//  2. Store：session 狀態的單一事實來源（佇列、餘額、盤面）。
//  3. Bus：typed 事件匯流排，listener（UI、記錄器、統計）由此觀察。
//  4. MachineConfig：機台設定，Initialize 時向合約取一次後視為不可變。
//
// 設計重點：
//   - 引擎不持有任何 package-level 可變狀態；多個 Engine 實例互不相撞。
//   - Spin 是非同步的：呼叫同步完成驗證與入列後即回傳 spin id，
//     後續 SUBMITTING → WAITING → CLAIMING → COMPLETED 的推進由
//     pipeline goroutine 驅動，進度一律走事件與 Store 快照對外。
//   - 單筆 spin 失敗走 FAILED 終態事件，不影響引擎本身的可用性。
//
// 典型使用情境：
//   - 後端服務（HTTP）：server 包把 Engine 掛上 REST API。
//   - 沙盒試玩 / 統計驗證：cmd/play 以 chainsim 跑大量 spin 收斂 RTP。
package chainspin

import (
	"log/slog"
	"time"

	"github.com/zintix-labs/chainspin/adapter"
	"github.com/zintix-labs/chainspin/bus"
	"github.com/zintix-labs/chainspin/errs"
	"github.com/zintix-labs/chainspin/recorder"
	"github.com/zintix-labs/chainspin/spec"
	"github.com/zintix-labs/chainspin/stats"
	"github.com/zintix-labs/chainspin/store"
)

const (
	defaultBlockPoll   = 1 * time.Second
	defaultBalancePoll = 5 * time.Second
)

// Option 調整 Engine 的組裝參數。
type Option func(*Engine)

// WithLogger 指定結構化 logger（預設 slog.Default）。
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithWallet 指定下注錢包地址。
func WithWallet(addr string) Option {
	return func(e *Engine) { e.wallet = addr }
}

// WithBlockPollInterval 覆寫等待開獎時的區塊輪詢間隔（預設 1s）。
func WithBlockPollInterval(d time.Duration) Option {
	return func(e *Engine) { e.blockPoll = d }
}

// WithBalancePollInterval 覆寫餘額輪詢間隔（預設 5s；<=0 停用輪詢）。
func WithBalancePollInterval(d time.Duration) Option {
	return func(e *Engine) { e.balancePoll = d }
}

// WithWaitTimeout 啟用等待開獎的 watchdog：超過 d 仍未到 claim block
// 的 spin 轉入 EXPIRED 終態（預設 0：不逾時）。
func WithWaitTimeout(d time.Duration) Option {
	return func(e *Engine) { e.waitTimeout = d }
}

// WithJournal 掛上結算紀錄 journal（引擎不負責關閉它）。
func WithJournal(j *recorder.SpinJournal) Option {
	return func(e *Engine) { e.journal = j }
}

// New 組裝一個引擎。ad 為必要參數，缺了直接失敗。
//
// New 只做組裝，不碰網路；鏈端互動（取設定、查餘額）都在 Initialize。
func New(ad adapter.Adapter, opts ...Option) (*Engine, error) {
	if ad == nil {
		return nil, errs.NewFatal("chain adapter required")
	}
	e := &Engine{
		ad:          ad,
		st:          store.New(),
		bus:         bus.New(),
		report:      stats.NewSessionReport(),
		blockPoll:   defaultBlockPoll,
		balancePoll: defaultBalancePoll,
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	return e, nil
}

// Store 取底層 Store（快照與 OnChange 訂閱入口）。
func (e *Engine) Store() *store.Store { return e.st }

// Bus 取底層事件匯流排。
func (e *Engine) Bus() *bus.Bus { return e.bus }

// Config 取機台設定；Initialize 之前為 nil。
func (e *Engine) Config() *spec.MachineConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// Report 取 session 統計報表。
func (e *Engine) Report() *stats.SessionReport { return e.report }

// GetState 取目前 session 狀態快照。
func (e *Engine) GetState() store.GameState { return e.st.Snapshot() }

// PendingSpins 取所有未結算 spin 的快照。
func (e *Engine) PendingSpins() []store.QueuedSpin { return e.st.PendingSpins() }
