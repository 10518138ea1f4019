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

// Package gen 負責「由鏈上亂數重建盤面」。
//
// 盤面不是由引擎抽樣，而是由 (block seed, bet key) 決定性推導：
//
//	digest = SHA-256(blockSeed || betKey)
//	stop[r] = digest 取 8 bytes (big-endian uint64) mod reelLength
//	grid[r][row] = reel[r][(stop[r]+row) mod reelLength]
//
// 任何人拿著同一組 (seed, key, 滾輪設定) 離線重算，必得同一個盤面，
// 這是 provably-fair 驗證的基礎；沙盒鏈（adapter/chainsim）與
// cmd/verify 都走同一條路徑。
package gen

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"github.com/zintix-labs/chainspin/errs"
	"github.com/zintix-labs/chainspin/spec"
)

// GridFromSeed 由 block seed 與 bet key（皆為 hex 字串）重建盤面。
//
// 回傳扁平盤面（reel 主序，長度 Columns*Rows，cell 為符號索引）。
func GridFromSeed(blockSeed, betKey string, cfg *spec.MachineConfig) ([]int16, error) {
	seed, key, err := decodeEntropy(blockSeed, betKey)
	if err != nil {
		return nil, err
	}

	reelLen := cfg.ReelLength()
	if reelLen < spec.Rows {
		return nil, errs.NewFatal("machine config has no usable reels")
	}

	digest := entropyDigest(seed, key)
	grid := make([]int16, spec.Columns*spec.Rows)
	for r := 0; r < spec.Columns; r++ {
		stop := stopAt(digest, r, reelLen)
		reel := cfg.Reels[r]
		for row := 0; row < spec.Rows; row++ {
			grid[r*spec.Rows+row] = reel[(stop+row)%reelLen]
		}
	}
	return grid, nil
}

// Stops 回傳各輪停輪位置（除錯/驗證輸出用，與 GridFromSeed 同一套推導）。
func Stops(blockSeed, betKey string, cfg *spec.MachineConfig) ([spec.Columns]int, error) {
	var stops [spec.Columns]int
	seed, key, err := decodeEntropy(blockSeed, betKey)
	if err != nil {
		return stops, err
	}
	reelLen := cfg.ReelLength()
	if reelLen == 0 {
		return stops, errs.NewFatal("machine config has no usable reels")
	}
	digest := entropyDigest(seed, key)
	for r := 0; r < spec.Columns; r++ {
		stops[r] = stopAt(digest, r, reelLen)
	}
	return stops, nil
}

func decodeEntropy(blockSeed, betKey string) ([]byte, []byte, error) {
	seed, err := hex.DecodeString(blockSeed)
	if err != nil {
		return nil, nil, errs.WrapCode(err, errs.ContractError, "block seed is not valid hex")
	}
	if len(seed) == 0 {
		return nil, nil, errs.NewCode(errs.ContractError, "empty block seed")
	}
	key, err := hex.DecodeString(betKey)
	if err != nil {
		return nil, nil, errs.WrapCode(err, errs.ContractError, "bet key is not valid hex")
	}
	return seed, key, nil
}

func entropyDigest(seed, key []byte) []byte {
	h := sha256.New()
	h.Write(seed)
	h.Write(key)
	return h.Sum(nil)
}

// stopAt 取第 r 輪的停輪位置。
// digest 只有 32 bytes；第 5 輪的 8 bytes 以迴繞折疊取得。
func stopAt(digest []byte, r, reelLen int) int {
	var chunk [8]byte
	for i := 0; i < 8; i++ {
		chunk[i] = digest[(r*8+i)%len(digest)]
	}
	return int(binary.BigEndian.Uint64(chunk[:]) % uint64(reelLen))
}
