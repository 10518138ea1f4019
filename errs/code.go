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

package errs

// Code 是遊戲層錯誤碼。
//
// 這組代碼對外穩定（UI / API 呼叫端依此分流），字串值即 wire format，
// 請勿隨意改名；新增代碼時同步補上 defaultLevel / defaultRecoverable。
type Code string

const (
	InsufficientBalance Code = "INSUFFICIENT_BALANCE" // 可用餘額不足（balance - reserved）
	InvalidBet          Code = "INVALID_BET"          // 注額/線數不合法
	NetworkError        Code = "NETWORK_ERROR"        // 鏈端連線/傳輸失敗
	TransactionFailed   Code = "TRANSACTION_FAILED"   // 交易送出或領獎失敗
	ContractError       Code = "CONTRACT_ERROR"       // 合約回報的錯誤（非傳輸層）
	NotInitialized      Code = "NOT_INITIALIZED"      // 引擎尚未完成初始化
	Timeout             Code = "TIMEOUT"              // 等待區塊逾時（watchdog）
	Unknown             Code = "UNKNOWN"
)

func (c Code) String() string { return string(c) }

// defaultLevel 決定各代碼的預設嚴重度：
//   - 請求側問題（注額、餘額）屬 Warn，呼叫端修正後可重來。
//   - 系統側問題（未初始化、未知）屬 Fatal。
//   - 傳輸/交易類介於兩者之間，視為 Warn：單筆失敗不代表引擎不可用。
func (c Code) defaultLevel() ErrLevel {
	switch c {
	case InsufficientBalance, InvalidBet:
		return Warn
	case NetworkError, TransactionFailed, ContractError, Timeout:
		return Warn
	case NotInitialized, Unknown:
		return Fatal
	default:
		return Fatal
	}
}

// defaultRecoverable 決定各代碼預設是否可重試同一動作。
//
// 注意 InvalidBet 為 false：同樣的參數重送只會再失敗一次；
// InsufficientBalance 為 true：餘額是會變動的外部狀態。
func (c Code) defaultRecoverable() bool {
	switch c {
	case InsufficientBalance, NetworkError, TransactionFailed, Timeout:
		return true
	case InvalidBet, ContractError, NotInitialized, Unknown:
		return false
	default:
		return false
	}
}
