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

// Package adapter 定義引擎對鏈端的唯一邊界。
//
// 引擎只認得這個介面：正式實作對真鏈（交易簽署等細節在實作內部，
// 引擎視為不透明 RPC），沙盒實作是 chainsim。Adapter 由建構引擎的
// 呼叫端明確注入，引擎內不做任何「sandbox 旗標」之類的隱式分流。
package adapter

import (
	"context"

	"github.com/zintix-labs/chainspin/spec"
	"github.com/zintix-labs/chainspin/store"
)

// Adapter 是鏈端協作者必須滿足的合約。
//
// 所有會碰網路的方法都吃 ctx；實作必須尊重取消。
// 金額一律 micro-units。
type Adapter interface {
	// Initialize 準備底層連線；前置條件（例如錢包連線）不滿足時回錯誤。
	Initialize(ctx context.Context) error

	// SubmitSpin 發起一筆 spin 交易。
	// 回傳的 Receipt.BetKey 是之後領獎用的不透明把手；
	// Receipt.ClaimBlock 必須 >= Receipt.SubmitBlock。
	SubmitSpin(ctx context.Context, betPerLine int64, paylines int, walletAddr string) (store.SubmitReceipt, error)

	// ClaimSpin 領取開獎結果。
	// 合約：過了 claim block 之後，同一個 betKey 的結果必須是決定性的。
	ClaimSpin(ctx context.Context, betKey string) (store.SpinOutcome, error)

	// GetBalance 查詢地址餘額（micro）。
	GetBalance(ctx context.Context, addr string) (int64, error)

	// GetCurrentBlock 查詢目前區塊高度。
	GetCurrentBlock(ctx context.Context) (uint64, error)

	// GetContractConfig 取機台設定；每個 session 取一次後視為不可變。
	GetContractConfig(ctx context.Context) (*spec.MachineConfig, error)
}
