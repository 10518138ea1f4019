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

package chainspin

import (
	"github.com/zintix-labs/chainspin/bus"
	"github.com/zintix-labs/chainspin/errs"
	"github.com/zintix-labs/chainspin/stats"
	"github.com/zintix-labs/chainspin/store"
)

// 本檔是 Bus 的 typed 包裝：每個訂閱都回傳取消函式，
// 派發語意（同步、註冊順序）同 bus 套件的合約。

// OnSpinStart 訂閱「spin 已入列」。
func (e *Engine) OnSpinStart(fn func(store.QueuedSpin)) func() {
	return e.bus.On(bus.EventSpinQueued, func(ev bus.Event) {
		fn(ev.(bus.SpinQueued).Spin)
	})
}

// OnSpinSubmitted 訂閱「交易已上鏈」。
func (e *Engine) OnSpinSubmitted(fn func(store.QueuedSpin)) func() {
	return e.bus.On(bus.EventSpinSubmitted, func(ev bus.Event) {
		fn(ev.(bus.SpinSubmitted).Spin)
	})
}

// OnOutcome 訂閱「spin 已結算」。
func (e *Engine) OnOutcome(fn func(store.QueuedSpin, stats.Settle)) func() {
	return e.bus.On(bus.EventSpinCompleted, func(ev bus.Event) {
		c := ev.(bus.SpinCompleted)
		fn(c.Spin, c.Result)
	})
}

// OnSpinFailed 訂閱「spin 失敗終態」。
func (e *Engine) OnSpinFailed(fn func(store.QueuedSpin, *errs.E)) func() {
	return e.bus.On(bus.EventSpinFailed, func(ev bus.Event) {
		f := ev.(bus.SpinFailed)
		fn(f.Spin, f.Err)
	})
}

// OnSpinExpired 訂閱「spin 等待逾時」。
func (e *Engine) OnSpinExpired(fn func(store.QueuedSpin, *errs.E)) func() {
	return e.bus.On(bus.EventSpinExpired, func(ev bus.Event) {
		x := ev.(bus.SpinExpired)
		fn(x.Spin, x.Err)
	})
}

// OnBalanceUpdate 訂閱餘額鏡像變動。
func (e *Engine) OnBalanceUpdate(fn func(bus.BalanceUpdated)) func() {
	return e.bus.On(bus.EventBalanceUpdated, func(ev bus.Event) {
		fn(ev.(bus.BalanceUpdated))
	})
}

// OnWinTier 訂閱中獎級距事件。
func (e *Engine) OnWinTier(fn func(bus.WinTier)) func() {
	return e.bus.On(bus.EventWinTier, func(ev bus.Event) {
		fn(ev.(bus.WinTier))
	})
}

// OnError 訂閱引擎層錯誤。
func (e *Engine) OnError(fn func(*errs.E)) func() {
	return e.bus.On(bus.EventError, func(ev bus.Event) {
		fn(ev.(bus.ErrorEvent).Err)
	})
}

// OnStateChange 訂閱 Store 快照變更（高頻；UI 綁定用）。
func (e *Engine) OnStateChange(fn func(store.GameState)) func() {
	return e.st.OnChange(fn)
}
