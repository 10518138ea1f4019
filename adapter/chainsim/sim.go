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

package chainsim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zintix-labs/chainspin/calc"
	"github.com/zintix-labs/chainspin/errs"
	"github.com/zintix-labs/chainspin/gen"
	"github.com/zintix-labs/chainspin/spec"
	"github.com/zintix-labs/chainspin/store"
)

// pendingBet 是一筆已送出、尚未（或已經）開獎的下注。
type pendingBet struct {
	addr       string
	betPerLine int64
	paylines   int
	totalBet   int64
	claimBlock uint64
	outcome    *store.SpinOutcome // 開獎後快取，保證 ClaimSpin 決定性
}

// Sim 是一台模擬鏈上的機台。實作 adapter.Adapter。
//
// 併發語意：所有方法都可被多 goroutine 同時呼叫（引擎的多條 spin
// pipeline 與餘額輪詢會交錯打進來），內部以單一 mutex 保護。
type Sim struct {
	cfg     *spec.MachineConfig
	simSeed int64

	mu       sync.Mutex
	block    uint64
	balances map[string]int64
	bets     map[string]*pendingBet // key: bet key (hex)
	ent      *entropy

	// 錯誤注入（測試腳本用，一次性）
	nextSubmitErr error
	nextClaimErr  error

	// 自動出塊
	claimDelay uint64
	interval   time.Duration
	done       chan struct{}
	closeOnce  sync.Once
	started    bool
}

// Option 調整 Sim 行為。
type Option func(*Sim)

// WithBlockInterval 啟用自動出塊（Initialize 之後每 d 出一塊）。
// 預設 0：只能靠 AdvanceBlocks 手動推進（測試的決定性模式）。
func WithBlockInterval(d time.Duration) Option {
	return func(s *Sim) { s.interval = d }
}

// WithBalance 預存一筆地址餘額（micro）。
func WithBalance(addr string, amount int64) Option {
	return func(s *Sim) { s.balances[addr] = amount }
}

// WithClaimDelay 覆寫送注到可開獎之間的塊數（預設 1）。
func WithClaimDelay(blocks uint64) Option {
	return func(s *Sim) { s.claimDelay = blocks }
}

// New 建立模擬鏈。cfg 必須已通過 Init；simSeed 決定整條鏈的亂數。
func New(cfg *spec.MachineConfig, simSeed int64, opts ...Option) (*Sim, error) {
	if cfg == nil {
		return nil, errs.NewFatal("machine config required")
	}
	if err := cfg.Init(); err != nil {
		return nil, err
	}
	s := &Sim{
		cfg:        cfg,
		simSeed:    simSeed,
		block:      1,
		balances:   map[string]int64{},
		bets:       map[string]*pendingBet{},
		ent:        newEntropy(simSeed),
		claimDelay: 1,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Initialize 啟動自動出塊（若有設定 interval）。
func (s *Sim) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	s.started = true
	if s.interval > 0 {
		go s.produce()
	}
	return nil
}

// Close 停止自動出塊。可重複呼叫。
func (s *Sim) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *Sim) produce() {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			s.AdvanceBlocks(1)
		case <-s.done:
			return
		}
	}
}

// AdvanceBlocks 手動推進 n 塊（測試/腳本用）。
func (s *Sim) AdvanceBlocks(n uint64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.block += n
	return s.block
}

// ScriptSubmitErr 讓下一次 SubmitSpin 失敗（一次性）。
func (s *Sim) ScriptSubmitErr(err error) {
	s.mu.Lock()
	s.nextSubmitErr = err
	s.mu.Unlock()
}

// ScriptClaimErr 讓下一次 ClaimSpin 失敗（一次性）。
func (s *Sim) ScriptClaimErr(err error) {
	s.mu.Lock()
	s.nextClaimErr = err
	s.mu.Unlock()
}

// Credit 入金（測試/腳本用）。
func (s *Sim) Credit(addr string, amount int64) {
	s.mu.Lock()
	s.balances[addr] += amount
	s.mu.Unlock()
}

// ============================================================
// ** adapter.Adapter 實作 **
// ============================================================

func (s *Sim) SubmitSpin(ctx context.Context, betPerLine int64, paylines int, walletAddr string) (store.SubmitReceipt, error) {
	if err := ctx.Err(); err != nil {
		return store.SubmitReceipt{}, errs.WrapCode(err, errs.NetworkError, "submit canceled")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nextSubmitErr != nil {
		err := s.nextSubmitErr
		s.nextSubmitErr = nil
		return store.SubmitReceipt{}, errs.WrapCode(err, errs.TransactionFailed, "submit rejected")
	}

	// 合約側的底線檢查（引擎應該早就擋掉，這裡是鏈端的最後防線）
	if betPerLine < s.cfg.MinBet || betPerLine > s.cfg.MaxBet {
		return store.SubmitReceipt{}, errs.Codef(errs.ContractError, "bet %d outside contract range", betPerLine)
	}
	if paylines < 1 || paylines > s.cfg.MaxPaylines {
		return store.SubmitReceipt{}, errs.Codef(errs.ContractError, "paylines %d outside contract range", paylines)
	}

	totalBet := betPerLine * int64(paylines)
	if s.balances[walletAddr] < totalBet {
		return store.SubmitReceipt{}, errs.Codef(errs.ContractError, "chain balance %d below bet %d", s.balances[walletAddr], totalBet)
	}

	// 送注即扣款（鏈上語意）；派彩在 claim 時入帳
	s.balances[walletAddr] -= totalBet

	key := s.ent.hex32()
	rcpt := store.SubmitReceipt{
		BetKey:      key,
		TxID:        uuid.NewString(),
		SubmitBlock: s.block,
		ClaimBlock:  s.block + s.claimDelay,
	}
	s.bets[key] = &pendingBet{
		addr:       walletAddr,
		betPerLine: betPerLine,
		paylines:   paylines,
		totalBet:   totalBet,
		claimBlock: rcpt.ClaimBlock,
	}
	return rcpt, nil
}

func (s *Sim) ClaimSpin(ctx context.Context, betKey string) (store.SpinOutcome, error) {
	if err := ctx.Err(); err != nil {
		return store.SpinOutcome{}, errs.WrapCode(err, errs.NetworkError, "claim canceled")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nextClaimErr != nil {
		err := s.nextClaimErr
		s.nextClaimErr = nil
		return store.SpinOutcome{}, errs.WrapCode(err, errs.TransactionFailed, "claim rejected")
	}

	bet, ok := s.bets[betKey]
	if !ok {
		return store.SpinOutcome{}, errs.Codef(errs.ContractError, "unknown bet key %s", shortKey(betKey))
	}
	if s.block < bet.claimBlock {
		return store.SpinOutcome{}, errs.Codef(errs.ContractError, "claim block %d not reached (current %d)", bet.claimBlock, s.block)
	}

	// 已開過獎：回同一份結果（決定性合約）
	if bet.outcome != nil {
		return *bet.outcome, nil
	}

	seed := blockSeedAt(s.simSeed, bet.claimBlock)
	grid, err := gen.GridFromSeed(seed, betKey, s.cfg)
	if err != nil {
		return store.SpinOutcome{}, err
	}
	lines, payout := calc.EvaluateLines(grid, s.cfg, bet.betPerLine, bet.paylines)

	out := store.SpinOutcome{
		Grid:        grid,
		Lines:       lines,
		TotalPayout: payout,
		Block:       bet.claimBlock,
		BlockSeed:   seed,
		BetKey:      betKey,
	}
	bet.outcome = &out
	s.balances[bet.addr] += payout
	return out, nil
}

func (s *Sim) GetBalance(ctx context.Context, addr string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, errs.WrapCode(err, errs.NetworkError, "balance query canceled")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balances[addr], nil
}

func (s *Sim) GetCurrentBlock(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, errs.WrapCode(err, errs.NetworkError, "block query canceled")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.block, nil
}

func (s *Sim) GetContractConfig(ctx context.Context) (*spec.MachineConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.WrapCode(err, errs.NetworkError, "config query canceled")
	}
	return s.cfg, nil
}

func shortKey(k string) string {
	if len(k) <= 8 {
		return k
	}
	return fmt.Sprintf("%s...", k[:8])
}
