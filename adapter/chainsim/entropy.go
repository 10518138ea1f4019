// Package chainsim 是 Adapter 的沙盒實作：一條進程內的模擬鏈。
//
// 它滿足引擎需要的全部鏈端合約（出塊、餘額、送注、開獎），
// 但把「鏈上亂數」換成可重現的本地熵源：同一個 sim seed 下，
// 第 n 塊的 block seed 永遠相同，因此整條 spin 生命週期可以
// 在測試裡決定性重放。
package chainsim

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	r2 "math/rand/v2"
)

// entropy 是沙盒鏈的亂數來源（PCG + splitmix64 種子展開）。
//
// 只用於 bet key 等「每次呼叫都要新值」的場合；block seed 不走這裡，
// 而是由 (simSeed, blockNumber) 直接推導，跟呼叫順序無關。
type entropy struct {
	rng *r2.PCG
}

func newEntropy(seed int64) *entropy {
	x := uint64(seed) ^ 0x9e3779b97f4a7c15
	hi := splitmix64(x)
	lo := splitmix64(x ^ 0xDA942042E4DD58B5)
	return &entropy{rng: r2.NewPCG(hi, lo)}
}

// hex32 產出 32 bytes 的 hex 字串（bet key 用）。
func (e *entropy) hex32() string {
	var b [32]byte
	for i := 0; i < 32; i += 8 {
		binary.BigEndian.PutUint64(b[i:], e.rng.Uint64())
	}
	return hex.EncodeToString(b[:])
}

// blockSeedAt 推導第 n 塊的 block seed（hex）。
//
// 決定性且與狀態無關：重啟、重放、跨 goroutine 先後都不影響結果。
func blockSeedAt(simSeed int64, block uint64) string {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], uint64(simSeed))
	binary.BigEndian.PutUint64(buf[8:], block)
	sum := sha256.Sum256(buf[:])
	return hex.EncodeToString(sum[:])
}

// splitmix64 將輸入值混洗成新的 64-bit 狀態，用於種子展開。
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
