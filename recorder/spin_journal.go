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

package recorder

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/zintix-labs/chainspin/errs"
	"github.com/zintix-labs/chainspin/stats"
	"github.com/zintix-labs/chainspin/store"
)

// SpinJournal 遊戲紀錄員
//
// SpinJournal 把每一筆結算完成的 spin 以 JSON lines 寫進底層 writer，
// 做為事後稽核與公平性驗證（重算 grid）的依據。
// 輸出路徑以 .zst 結尾時自動啟用 zstd 壓縮。
type SpinJournal struct {
	mu     sync.Mutex
	sink   io.Writer
	zw     *zstd.Encoder
	closer io.Closer
	enc    *json.Encoder
	count  int
	closed bool
}

// JournalEntry 是一行紀錄。欄位足以離線重建並驗證該次結果：
// 用 BlockSeed 與 BetKey 重算 grid，必須等於記下的 Grid。
type JournalEntry struct {
	SpinID     string    `json:"spin_id"`
	At         time.Time `json:"at"`
	Block      uint64    `json:"block"`
	BetKey     string    `json:"bet_key"`
	BlockSeed  string    `json:"block_seed"`
	BetPerLine int64     `json:"bet_per_line"`
	Paylines   int       `json:"paylines"`
	TotalBet   int64     `json:"total_bet"`
	Winnings   int64     `json:"winnings"`
	Tier       string    `json:"tier"`
	Multiple   float64   `json:"multiple,omitempty"`
	Grid       []int16   `json:"grid"`
	LineWins   int       `json:"line_wins"`
}

// NewSpinJournal 包裝既有 writer（不負責關閉它）。
func NewSpinJournal(w io.Writer) (*SpinJournal, error) {
	if w == nil {
		return nil, errs.NewFatal("journal writer required")
	}
	j := &SpinJournal{sink: w}
	j.enc = json.NewEncoder(w)
	return j, nil
}

// OpenSpinJournal 建立（或截斷）檔案型 journal。
// path 以 .zst 結尾時走 zstd 壓縮。
func OpenSpinJournal(path string) (*SpinJournal, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errs.Wrap(err, fmt.Sprintf("can not create journal %q", path))
	}
	j := &SpinJournal{sink: f, closer: f}
	if strings.HasSuffix(strings.ToLower(path), ".zst") {
		zw, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, errs.Wrap(err, "can not create zstd writer")
		}
		j.zw = zw
		j.enc = json.NewEncoder(zw)
	} else {
		j.enc = json.NewEncoder(f)
	}
	return j, nil
}

// Record 寫入一筆結算結果。spin 必須帶有 Outcome。
func (j *SpinJournal) Record(settle stats.Settle, spin *store.QueuedSpin) error {
	if spin == nil || spin.Outcome == nil {
		return errs.NewWarn("journal record requires settled spin with outcome")
	}
	e := JournalEntry{
		SpinID:     settle.SpinID,
		At:         settle.At,
		Block:      spin.Outcome.Block,
		BetKey:     spin.Outcome.BetKey,
		BlockSeed:  spin.Outcome.BlockSeed,
		BetPerLine: spin.BetPerLine,
		Paylines:   spin.Paylines,
		TotalBet:   settle.TotalBet,
		Winnings:   settle.Winnings,
		Tier:       settle.Tier.String(),
		Multiple:   settle.Multiple,
		Grid:       spin.Outcome.Grid,
		LineWins:   len(spin.Outcome.Lines),
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return errs.NewWarn("journal already closed")
	}
	if err := j.enc.Encode(&e); err != nil {
		return errs.Wrap(err, "journal encode")
	}
	j.count++
	return nil
}

// Count 回傳已寫入的筆數。
func (j *SpinJournal) Count() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.count
}

// Close 沖刷並關閉底層資源。可重複呼叫。
func (j *SpinJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}
	j.closed = true
	if j.zw != nil {
		if err := j.zw.Close(); err != nil {
			return errs.Wrap(err, "journal zstd close")
		}
	}
	if j.closer != nil {
		if err := j.closer.Close(); err != nil {
			return errs.Wrap(err, "journal close")
		}
	}
	return nil
}

// ReadJournal 讀回一份 journal（測試與離線驗證用）。
// path 以 .zst 結尾時自動解壓。
func ReadJournal(path string) ([]JournalEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(err, fmt.Sprintf("can not open journal %q", path))
	}
	defer f.Close()

	var src io.Reader = f
	if strings.HasSuffix(strings.ToLower(path), ".zst") {
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, errs.Wrap(err, "can not create zstd reader")
		}
		defer zr.Close()
		src = zr
	}

	var out []JournalEntry
	dec := json.NewDecoder(src)
	for {
		var e JournalEntry
		if err := dec.Decode(&e); err == io.EOF {
			break
		} else if err != nil {
			return nil, errs.Wrap(err, "journal decode")
		}
		out = append(out, e)
	}
	return out, nil
}
