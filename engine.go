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
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/zintix-labs/chainspin/adapter"
	"github.com/zintix-labs/chainspin/bus"
	"github.com/zintix-labs/chainspin/errs"
	"github.com/zintix-labs/chainspin/recorder"
	"github.com/zintix-labs/chainspin/spec"
	"github.com/zintix-labs/chainspin/stats"
	"github.com/zintix-labs/chainspin/store"
	"github.com/zintix-labs/chainspin/valid"
)

// Engine 是 session 引擎本體。由 New() 組裝，Initialize() 之後可服務。
//
// 併發語意：
//   - Spin 可被多 goroutine 同時呼叫；每筆 spin 有自己的 pipeline goroutine。
//   - 對外 give-out 一律是快照；事件 handler 內可安全回呼 Engine。
type Engine struct {
	// build-time 來源（只讀引用）
	ad      adapter.Adapter
	st      *store.Store
	bus     *bus.Bus
	log     *slog.Logger
	report  *stats.SessionReport
	journal *recorder.SpinJournal

	wallet      string
	blockPoll   time.Duration
	balancePoll time.Duration
	waitTimeout time.Duration

	// Initialize 之後有效
	mu          sync.Mutex
	cfg         *spec.MachineConfig
	tiers       *stats.TierTable
	lastBalance int64
	initialized atomic.Bool

	// 入列鎖：餘額驗證到 AddSpin 之間必須原子，否則兩筆併發 spin
	// 會讀到同一份 reserved 而雙雙通過驗證（超收）。
	enqMu sync.Mutex

	// lifecycle
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// errWaitExpired 是 waitForBlock 的 watchdog 逾時哨兵。
var errWaitExpired = errs.NewCode(errs.Timeout, "claim block wait expired")

// ============================================================
// ** 生命週期 **
// ============================================================

// Initialize 完成鏈端握手：準備 adapter、取機台設定、取初始餘額，
// 並啟動餘額輪詢。重複呼叫是 no-op。
func (e *Engine) Initialize(ctx context.Context) error {
	if e.initialized.Load() {
		return nil
	}
	if err := e.ad.Initialize(ctx); err != nil {
		return errs.Wrap(err, "adapter initialize")
	}

	cfg, err := e.ad.GetContractConfig(ctx)
	if err != nil {
		return errs.Wrap(err, "fetch contract config")
	}
	if cfg == nil {
		return errs.NewFatal("adapter returned nil contract config")
	}
	if err := cfg.Init(); err != nil {
		return err
	}

	bal, err := e.ad.GetBalance(ctx, e.wallet)
	if err != nil {
		return errs.WrapCode(err, errs.NetworkError, "fetch initial balance")
	}

	e.mu.Lock()
	e.cfg = cfg
	e.tiers = stats.NewTierTable(cfg.WinTiers)
	e.mu.Unlock()

	e.applyBalance(bal)
	e.initialized.Store(true)

	if e.balancePoll > 0 {
		e.wg.Add(1)
		go e.balanceLoop()
	}

	e.log.Info("engine initialized",
		"app_id", cfg.AppID,
		"chain_id", cfg.ChainID,
		"balance", bal,
		"wallet", e.wallet,
	)
	return nil
}

// Close 停掉引擎：擋下新的 Spin、取消所有 pipeline 並等它們結束。
// 可重複呼叫。journal 由掛上它的呼叫端負責關閉。
func (e *Engine) Close() {
	e.closeOnce.Do(func() { close(e.done) })
	e.wg.Wait()
}

// Closed 回報引擎是否已關閉。
func (e *Engine) Closed() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}

// Reset 把 session 還原到初始狀態。
//
// 進行中的 spin 採「遺棄」而非「取消」：pipeline 不會被打斷，但
// Reset 之後佇列已空，它對 Store 的後續轉移都會失敗並安靜收尾，
// 遲到的鏈上結果不會汙染新 session。事件訂閱與機台設定保留。
func (e *Engine) Reset() {
	e.st.Reset()
	e.mu.Lock()
	e.lastBalance = 0
	e.mu.Unlock()
	e.log.Info("session reset")
}

// ============================================================
// ** Spin 入口 **
// ============================================================

// Spin 發起一筆 spin。
//
// 同步部分：初始化檢查、注額驗證、可用餘額驗證、入列（PENDING）。
// 任一驗證失敗即回錯誤，不會產生 spin。成功後回傳 spin id，
// 後續生命週期由 pipeline goroutine 推進，進度走事件。
func (e *Engine) Spin(ctx context.Context, betPerLine int64, paylines int) (string, error) {
	if e.Closed() {
		return "", errs.NewFatal("engine closed")
	}
	if !e.initialized.Load() {
		return "", errs.NewCode(errs.NotInitialized, "call Initialize before Spin")
	}
	if err := ctx.Err(); err != nil {
		return "", errs.Wrap(err, "spin canceled")
	}

	cfg := e.Config()

	// 1. 校驗請求合法性
	if res := valid.ValidateBet(betPerLine, paylines, cfg); !res.IsValid {
		err := errs.NewCode(errs.InvalidBet, res.First())
		e.st.SetError(err.Message)
		e.bus.Emit(bus.ErrorEvent{Err: err})
		return "", err
	}

	// 2. 校驗可用餘額（balance - reserved）＋ 3. 入列 PENDING
	// 這兩步鎖在一起：驗證通過到入列（reserved 重算）之間
	// 不能讓另一筆 spin 插進來讀到舊的 reserved。
	e.enqMu.Lock()
	snap := e.st.Snapshot()
	if res := valid.ValidateBalance(betPerLine, paylines, snap.Balance, snap.Reserved); !res.IsValid {
		e.enqMu.Unlock()
		err := errs.NewCode(errs.InsufficientBalance, res.First())
		e.st.SetError(err.Message)
		e.bus.Emit(bus.ErrorEvent{Err: err})
		return "", err
	}

	q := &store.QueuedSpin{
		ID:         uuid.NewString(),
		Status:     store.Pending,
		BetPerLine: betPerLine,
		Paylines:   paylines,
		TotalBet:   betPerLine * int64(paylines),
		At:         time.Now(),
	}
	if err := e.st.AddSpin(q); err != nil {
		e.enqMu.Unlock()
		return "", err
	}
	e.enqMu.Unlock()
	e.st.SetBet(betPerLine, paylines)
	e.st.SetError("")

	if spin, ok := e.st.GetSpin(q.ID); ok {
		e.bus.Emit(bus.SpinQueued{Spin: spin})
	}

	// 4. 非同步推進
	e.wg.Add(1)
	go e.runPipeline(q.ID, betPerLine, paylines)
	return q.ID, nil
}

// ============================================================
// ** Pipeline **
// ============================================================

// runPipeline 把單筆 spin 從 PENDING 一路推到終態。
//
// 任何一步發現 Store 不認得這筆 spin（Reset 之後），就視為被遺棄，
// 安靜收尾、不發事件。
func (e *Engine) runPipeline(id string, betPerLine int64, paylines int) {
	defer e.wg.Done()

	ctx, cancel := e.pipelineContext()
	defer cancel()

	// SUBMITTING
	if err := e.st.Transition(id, store.Submitting, nil); err != nil {
		e.log.Debug("spin abandoned before submit", "spin_id", id)
		return
	}
	e.st.SetSpinning(true, id)

	receipt, err := e.ad.SubmitSpin(ctx, betPerLine, paylines, e.wallet)
	if err != nil {
		// 送注失敗一律視為可重試的交易失敗；分類由引擎決定，
		// 不信任 adapter 回的錯誤型別（鏈端實作常只回裸 error）。
		e.failSpin(id, errs.WrapCode(err, errs.TransactionFailed, "submit spin"))
		return
	}

	// WAITING
	if err := e.st.Transition(id, store.Waiting, func(q *store.QueuedSpin) {
		r := receipt
		q.Receipt = &r
	}); err != nil {
		e.log.Debug("spin abandoned after submit", "spin_id", id, "tx_id", receipt.TxID)
		return
	}
	e.st.SetWaitingForOutcome(true)
	if spin, ok := e.st.GetSpin(id); ok {
		e.bus.Emit(bus.SpinSubmitted{Spin: spin})
	}
	e.log.Info("spin submitted",
		"spin_id", id,
		"tx_id", receipt.TxID,
		"claim_block", receipt.ClaimBlock,
	)

	if err := e.waitForBlock(ctx, receipt.ClaimBlock); err != nil {
		if err == errWaitExpired {
			e.expireSpin(id, receipt.ClaimBlock)
			return
		}
		// 引擎關閉或 context 取消：遺棄，不發終態事件
		e.log.Debug("spin wait canceled", "spin_id", id)
		return
	}

	// CLAIMING
	if err := e.st.Transition(id, store.Claiming, nil); err != nil {
		e.log.Debug("spin abandoned before claim", "spin_id", id)
		return
	}

	outcome, err := e.ad.ClaimSpin(ctx, receipt.BetKey)
	if err != nil {
		// 同 submit：claim 失敗走同一條 FAILED 路徑，固定標成可重試
		e.failSpin(id, errs.WrapCode(err, errs.TransactionFailed, "claim spin"))
		return
	}
	e.bus.Emit(bus.SpinClaimed{SpinID: id, Outcome: outcome})

	e.settleSpin(id, outcome)
}

// pipelineContext 建立跟引擎生命週期綁定的 context：Close 時全部取消。
func (e *Engine) pipelineContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-e.done:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// waitForBlock 輪詢區塊高度直到 target。
// 回 nil 表示到了；errWaitExpired 表示 watchdog 逾時；其餘為取消。
func (e *Engine) waitForBlock(ctx context.Context, target uint64) error {
	var deadline <-chan time.Time
	if e.waitTimeout > 0 {
		t := time.NewTimer(e.waitTimeout)
		defer t.Stop()
		deadline = t.C
	}
	ticker := time.NewTicker(e.blockPoll)
	defer ticker.Stop()

	for {
		cur, err := e.ad.GetCurrentBlock(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// 單次查詢失敗不終止等待，下一輪重試
			e.log.Warn("block poll failed", "err", err)
		} else if cur >= target {
			return nil
		}

		select {
		case <-ticker.C:
		case <-deadline:
			return errWaitExpired
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// ============================================================
// ** 終態處理 **
// ============================================================

// settleSpin 完成結算：COMPLETED 轉移、更新盤面與餘額、發事件、
// 餵統計與 journal，最後接手 auto-spin 續轉。
func (e *Engine) settleSpin(id string, outcome store.SpinOutcome) {
	err := e.st.Transition(id, store.Completed, func(q *store.QueuedSpin) {
		o := outcome
		q.Outcome = &o
		q.Winnings = outcome.TotalPayout
	})
	if err != nil {
		e.log.Debug("spin abandoned before settle", "spin_id", id)
		return
	}

	e.st.SetVisibleGrid(outcome.Grid)
	e.st.SetWaitingForOutcome(false)
	e.st.SetSpinning(false, "")

	// 結算後的餘額以鏈上為準
	if bal, err := e.ad.GetBalance(context.Background(), e.wallet); err == nil {
		e.applyBalance(bal)
	} else {
		e.log.Warn("post-settle balance refresh failed", "err", err)
	}

	spin, ok := e.st.GetSpin(id)
	if !ok {
		return
	}

	e.mu.Lock()
	tiers := e.tiers
	e.mu.Unlock()
	tier, mult := tiers.Classify(outcome.TotalPayout, spin.TotalBet)

	settle := stats.Settle{
		SpinID:    id,
		TotalBet:  spin.TotalBet,
		Winnings:  outcome.TotalPayout,
		NetProfit: outcome.TotalPayout - spin.TotalBet,
		IsWin:     outcome.TotalPayout > 0,
		Tier:      tier,
		Multiple:  mult,
		Block:     outcome.Block,
		At:        time.Now(),
	}
	e.report.Add(settle)
	if e.journal != nil {
		if err := e.journal.Record(settle, &spin); err != nil {
			e.log.Warn("journal record failed", "spin_id", id, "err", err)
		}
	}

	e.bus.Emit(bus.SpinCompleted{Spin: spin, Result: settle})
	if settle.IsWin && tier != stats.TierNone {
		e.bus.Emit(bus.WinTier{SpinID: id, Tier: tier, Multiple: mult})
	}
	e.log.Info("spin completed",
		"spin_id", id,
		"payout", outcome.TotalPayout,
		"tier", tier.String(),
		"block", outcome.Block,
	)

	e.continueAutoSpin()
}

// failSpin 把 spin 收進 FAILED 終態並發事件。單筆失敗不影響引擎。
func (e *Engine) failSpin(id string, cause *errs.E) {
	err := e.st.Transition(id, store.Failed, func(q *store.QueuedSpin) {
		q.Err = cause.Error()
	})
	if err != nil {
		e.log.Debug("spin abandoned before fail", "spin_id", id)
		return
	}
	e.st.SetError(cause.Message)
	e.st.SetWaitingForOutcome(false)
	e.st.SetSpinning(false, "")
	e.st.StopAutoSpin()

	if spin, ok := e.st.GetSpin(id); ok {
		e.bus.Emit(bus.SpinFailed{Spin: spin, Err: cause})
	}
	e.bus.Emit(bus.ErrorEvent{Err: cause})
	e.log.Warn("spin failed",
		"spin_id", id,
		"code", errs.CodeOf(cause).String(),
		"recoverable", errs.IsRecoverable(cause),
		"err", cause,
	)
}

// expireSpin 把等不到 claim block 的 spin 收進 EXPIRED 終態。
func (e *Engine) expireSpin(id string, claimBlock uint64) {
	cause := errs.Codef(errs.Timeout, "claim block %d not reached within %s", claimBlock, e.waitTimeout)
	err := e.st.Transition(id, store.Expired, func(q *store.QueuedSpin) {
		q.Err = cause.Error()
	})
	if err != nil {
		e.log.Debug("spin abandoned before expire", "spin_id", id)
		return
	}
	e.st.SetError(cause.Message)
	e.st.SetWaitingForOutcome(false)
	e.st.SetSpinning(false, "")
	e.st.StopAutoSpin()

	if spin, ok := e.st.GetSpin(id); ok {
		e.bus.Emit(bus.SpinExpired{Spin: spin, Err: cause})
	}
	e.log.Warn("spin expired", "spin_id", id, "claim_block", claimBlock)
}

// ============================================================
// ** Auto-spin **
// ============================================================

// StartAutoSpin 以目前注額連續旋轉 count 次，回傳第一筆 spin id。
func (e *Engine) StartAutoSpin(ctx context.Context, count int, betPerLine int64, paylines int) (string, error) {
	if count <= 0 {
		return "", errs.Codef(errs.InvalidBet, "auto-spin count must be positive: %d", count)
	}
	e.st.StartAutoSpin(count)
	id, err := e.Spin(ctx, betPerLine, paylines)
	if err != nil {
		e.st.StopAutoSpin()
		return "", err
	}
	e.st.DecAutoSpin()
	return id, nil
}

// StopAutoSpin 停止 auto-spin。進行中的那一筆照常跑完。
func (e *Engine) StopAutoSpin() {
	e.st.StopAutoSpin()
}

// continueAutoSpin 在結算後接手下一筆 auto-spin。
func (e *Engine) continueAutoSpin() {
	snap := e.st.Snapshot()
	if !snap.AutoSpin || e.Closed() {
		return
	}
	if _, err := e.Spin(context.Background(), snap.CurrentBet, snap.CurrentLines); err != nil {
		// 驗證失敗（通常是餘額耗盡）就停，不空轉
		e.st.StopAutoSpin()
		e.log.Warn("auto-spin stopped", "err", err)
		return
	}
	e.st.DecAutoSpin()
}

// ============================================================
// ** 餘額 **
// ============================================================

// Balance 強制向鏈端刷新一次餘額並回傳。
func (e *Engine) Balance(ctx context.Context) (int64, error) {
	bal, err := e.ad.GetBalance(ctx, e.wallet)
	if err != nil {
		return 0, errs.WrapCode(err, errs.NetworkError, "fetch balance")
	}
	e.applyBalance(bal)
	return bal, nil
}

// applyBalance 更新餘額鏡像；有變動才發 BalanceUpdated。
func (e *Engine) applyBalance(bal int64) {
	e.mu.Lock()
	prev := e.lastBalance
	e.lastBalance = bal
	e.mu.Unlock()

	e.st.SetBalance(bal)
	if bal == prev {
		return
	}
	snap := e.st.Snapshot()
	e.bus.Emit(bus.BalanceUpdated{
		Current:     snap.Balance,
		Reserved:    snap.Reserved,
		Available:   snap.Available(),
		Delta:       bal - prev,
		LastUpdated: snap.LastUpdated,
	})
}

// balanceLoop 週期性刷新餘額鏡像，直到引擎關閉。
func (e *Engine) balanceLoop() {
	defer e.wg.Done()
	ticker := time.NewTicker(e.balancePoll)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), e.balancePoll)
			bal, err := e.ad.GetBalance(ctx, e.wallet)
			cancel()
			if err != nil {
				e.log.Warn("balance poll failed", "err", err)
				continue
			}
			e.applyBalance(bal)
		case <-e.done:
			return
		}
	}
}
