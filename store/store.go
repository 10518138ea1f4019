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

// Package store 持有一個進行中 session 的單一事實來源（single source of truth）。
//
// 設計重點：
//   - 沒有任何 package-level 可變狀態：Store 由引擎顯式建構並持有，
//     多個引擎實例（多分頁、測試隔離）彼此不相撞。
//   - 所有變更都走具名操作；每個會動到 spin queue 的操作，最後一步
//     一定整段重算保留餘額（不做增量修補）。
//   - 操作以 mutex 保證原子性；通知（onChange）在釋放鎖之後、以
//     當下快照派發，handler 內再呼叫 Store 不會死鎖。
package store

import (
	"sync"
	"time"

	"github.com/zintix-labs/chainspin/errs"
	"github.com/zintix-labs/chainspin/spec"
)

// GameState 是 Store 對外的聚合視圖（快照，非活引用）。
type GameState struct {
	IsSpinning        bool         `json:"is_spinning"`
	CurrentSpinID     string       `json:"current_spin_id"`
	WaitingForOutcome bool         `json:"waiting_for_outcome"`
	SpinQueue         []QueuedSpin `json:"spin_queue"` // 插入順序
	VisibleGrid       []int16      `json:"visible_grid"`
	Balance           int64        `json:"balance"`  // micro
	Reserved          int64        `json:"reserved"` // micro，由未結算 spin 重算
	CurrentBet        int64        `json:"current_bet"`
	CurrentLines      int          `json:"current_lines"`
	AutoSpin          bool         `json:"auto_spin"`
	AutoSpinLeft      int          `json:"auto_spin_left"`
	LastError         string       `json:"last_error"`
	LastUpdated       time.Time    `json:"last_updated"`
}

// Available 回傳可用餘額；保留超過餘額的瞬間視為 0，不給出負數。
func (g *GameState) Available() int64 {
	avail := g.Balance - g.Reserved
	if avail < 0 {
		return 0
	}
	return avail
}

// Store 保存 session 的可變狀態。零值不可用，請用 New()。
type Store struct {
	mu sync.Mutex

	queue []*QueuedSpin
	byID  map[string]*QueuedSpin

	visibleGrid  []int16
	balance      int64
	reserved     int64
	currentBet   int64
	currentLines int

	isSpinning        bool
	currentSpinID     string
	waitingForOutcome bool

	autoSpin     bool
	autoSpinLeft int

	lastErr     string
	lastUpdated time.Time

	subs    map[int]func(GameState)
	nextSub int
}

// New 建立空的 Store（預設盤面為全 0 符號索引）。
func New() *Store {
	s := &Store{}
	s.resetLocked()
	s.subs = map[int]func(GameState){}
	return s
}

// ============================================================
// ** 訂閱 **
// ============================================================

// OnChange 註冊狀態變更回呼，回傳取消函式。
//
// 回呼收到的是快照；派發時不持鎖，回呼內可以安全地再呼叫 Store。
func (s *Store) OnChange(fn func(GameState)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// notifyLocked 在持鎖狀態下收集快照與 handler，回傳「釋放鎖後執行」的派發函式。
func (s *Store) notifyLocked() func() {
	snap := s.snapshotLocked()
	fns := make([]func(GameState), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	return func() {
		for _, fn := range fns {
			fn(snap)
		}
	}
}

// ============================================================
// ** Spin queue 操作 **
// ============================================================

// AddSpin 把一筆 spin 加到佇列尾端（插入順序即呈現順序）。
func (s *Store) AddSpin(q *QueuedSpin) error {
	s.mu.Lock()
	if _, dup := s.byID[q.ID]; dup {
		s.mu.Unlock()
		return errs.Warnf("spin id already queued: %s", q.ID)
	}
	cp := q.clone()
	s.queue = append(s.queue, &cp)
	s.byID[cp.ID] = &cp
	s.recomputeReservedLocked()
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
	return nil
}

// Transition 把指定 spin 推進到新狀態，並附帶該狀態的資料。
//
// 狀態機合法性在這裡把關（canTransition）：非法轉移回錯誤、不動狀態。
// mutate 在轉移合法後、持鎖狀態下執行，用來掛上該狀態的資料
// （例如 WAITING 掛 Receipt、COMPLETED 掛 Outcome）。
func (s *Store) Transition(id string, to Status, mutate func(*QueuedSpin)) error {
	s.mu.Lock()
	q, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return errs.Warnf("spin not found: %s", id)
	}
	if !canTransition(q.Status, to) {
		from := q.Status
		s.mu.Unlock()
		return errs.Warnf("illegal spin transition %s -> %s (id=%s)", from, to, id)
	}
	q.Status = to
	if mutate != nil {
		mutate(q)
	}
	s.recomputeReservedLocked()
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
	return nil
}

// RemoveSpin 將終態 spin 移出佇列；非終態 spin 不可移除。
func (s *Store) RemoveSpin(id string) error {
	s.mu.Lock()
	q, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return errs.Warnf("spin not found: %s", id)
	}
	if !q.Status.Terminal() {
		st := q.Status
		s.mu.Unlock()
		return errs.Warnf("refusing to remove non-terminal spin %s (status=%s)", id, st)
	}
	delete(s.byID, id)
	for i, v := range s.queue {
		if v.ID == id {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			break
		}
	}
	s.recomputeReservedLocked()
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
	return nil
}

// PruneSettled 清掉所有終態 spin，回傳移除筆數。
func (s *Store) PruneSettled() int {
	s.mu.Lock()
	kept := s.queue[:0]
	n := 0
	for _, q := range s.queue {
		if q.Status.Terminal() {
			delete(s.byID, q.ID)
			n++
			continue
		}
		kept = append(kept, q)
	}
	s.queue = kept
	s.recomputeReservedLocked()
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
	return n
}

// GetSpin 取指定 spin 的快照。
func (s *Store) GetSpin(id string) (QueuedSpin, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.byID[id]
	if !ok {
		return QueuedSpin{}, false
	}
	return q.clone(), true
}

// PendingSpins 取所有未結算 spin 的快照（插入順序）。
func (s *Store) PendingSpins() []QueuedSpin {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]QueuedSpin, 0, len(s.queue))
	for _, q := range s.queue {
		if !q.Status.Terminal() {
			out = append(out, q.clone())
		}
	}
	return out
}

// recomputeReservedLocked 整段重算保留餘額。
//
// 與 valid.ReservedBalance 同語意；漏掉一次狀態轉移時，
// 整段重算能自我修正，增量修補則會永久漂移。
func (s *Store) recomputeReservedLocked() {
	var sum int64
	for _, q := range s.queue {
		if !q.Status.Terminal() {
			sum += q.TotalBet
		}
	}
	s.reserved = sum
	s.lastUpdated = time.Now()
}

// ============================================================
// ** 其餘具名操作 **
// ============================================================

// SetBalance 更新鏈上餘額的本地鏡像。
func (s *Store) SetBalance(v int64) {
	s.mu.Lock()
	s.balance = v
	s.lastUpdated = time.Now()
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
}

// SetBet 更新目前選擇的單線注額與線數。
func (s *Store) SetBet(betPerLine int64, paylines int) {
	s.mu.Lock()
	s.currentBet = betPerLine
	s.currentLines = paylines
	s.lastUpdated = time.Now()
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
}

// SetSpinning 設定「有 spin 在跑」旗標與當前 spin id。
func (s *Store) SetSpinning(on bool, spinID string) {
	s.mu.Lock()
	s.isSpinning = on
	s.currentSpinID = spinID
	s.lastUpdated = time.Now()
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
}

// SetWaitingForOutcome 設定等待開獎旗標。
func (s *Store) SetWaitingForOutcome(on bool) {
	s.mu.Lock()
	s.waitingForOutcome = on
	s.lastUpdated = time.Now()
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
}

// SetVisibleGrid 更新可見盤面（拷貝後保存）。
func (s *Store) SetVisibleGrid(grid []int16) {
	s.mu.Lock()
	s.visibleGrid = append(s.visibleGrid[:0], grid...)
	s.lastUpdated = time.Now()
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
}

// SetError 記錄最後一筆錯誤訊息（空字串表示清除）。
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	s.lastErr = msg
	s.lastUpdated = time.Now()
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
}

// StartAutoSpin 啟動自動旋轉，count 為剩餘次數。
func (s *Store) StartAutoSpin(count int) {
	s.mu.Lock()
	s.autoSpin = count > 0
	s.autoSpinLeft = max(0, count)
	s.lastUpdated = time.Now()
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
}

// StopAutoSpin 停止自動旋轉。
func (s *Store) StopAutoSpin() {
	s.mu.Lock()
	s.autoSpin = false
	s.autoSpinLeft = 0
	s.lastUpdated = time.Now()
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
}

// DecAutoSpin 扣一次自動旋轉次數，歸零時自動關閉旗標；回傳剩餘次數。
func (s *Store) DecAutoSpin() int {
	s.mu.Lock()
	if s.autoSpinLeft > 0 {
		s.autoSpinLeft--
	}
	if s.autoSpinLeft == 0 {
		s.autoSpin = false
	}
	left := s.autoSpinLeft
	s.lastUpdated = time.Now()
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
	return left
}

// Reset 把 Store 還原到初始狀態（空佇列、零餘額、預設盤面、無錯誤）。
//
// 訂閱不清除：session teardown 之後，同一批 listener 通常還要觀察下一個 session。
func (s *Store) Reset() {
	s.mu.Lock()
	s.resetLocked()
	notify := s.notifyLocked()
	s.mu.Unlock()
	notify()
}

func (s *Store) resetLocked() {
	s.queue = nil
	s.byID = map[string]*QueuedSpin{}
	s.visibleGrid = make([]int16, spec.Columns*spec.Rows)
	s.balance = 0
	s.reserved = 0
	s.currentBet = 0
	s.currentLines = 0
	s.isSpinning = false
	s.currentSpinID = ""
	s.waitingForOutcome = false
	s.autoSpin = false
	s.autoSpinLeft = 0
	s.lastErr = ""
	s.lastUpdated = time.Time{}
}

// ============================================================
// ** 快照 **
// ============================================================

// Snapshot 取完整 GameState 快照。
func (s *Store) Snapshot() GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() GameState {
	queue := make([]QueuedSpin, 0, len(s.queue))
	for _, q := range s.queue {
		queue = append(queue, q.clone())
	}
	return GameState{
		IsSpinning:        s.isSpinning,
		CurrentSpinID:     s.currentSpinID,
		WaitingForOutcome: s.waitingForOutcome,
		SpinQueue:         queue,
		VisibleGrid:       append([]int16(nil), s.visibleGrid...),
		Balance:           s.balance,
		Reserved:          s.reserved,
		CurrentBet:        s.currentBet,
		CurrentLines:      s.currentLines,
		AutoSpin:          s.autoSpin,
		AutoSpinLeft:      s.autoSpinLeft,
		LastError:         s.lastErr,
		LastUpdated:       s.lastUpdated,
	}
}

// Balance 取目前餘額（micro）。
func (s *Store) Balance() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance
}

// Reserved 取目前保留餘額（micro）。
func (s *Store) Reserved() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reserved
}
