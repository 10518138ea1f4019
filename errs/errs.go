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

import (
	"errors"
	"fmt"
)

// ErrLevel : Error 分級，使最上層理解問題嚴重程度
type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
	Log
)

var errLvMap = map[ErrLevel]string{
	None:  "",
	Fatal: "fatal",
	Warn:  "warn",
	Log:   "log",
}

func ErrLv(errlv ErrLevel) string {
	if str, ok := errLvMap[errlv]; ok {
		return str
	}
	return ""
}

// E 是統一的錯誤型別。
// Message 為經過樣板格式化後的主訊息；Extra 為呼叫端可追加的額外上下文；
// Cause 可串接下層錯誤（wrap）；ErrLv 表示嚴重程度；
// Code 為遊戲層錯誤碼（對外穩定，UI/呼叫端依此分流）；
// Recoverable 表示呼叫端是否可以合理地重試同一個動作。
type E struct {
	Message     string
	Extra       string
	Cause       error
	ErrLv       ErrLevel
	Code        Code
	Recoverable bool
}

// Error 實作 error 介面並回傳格式化後的錯誤訊息。
func (e *E) Error() string {
	base := fmt.Sprintf("errlv=%s code=%s %s", ErrLv(e.ErrLv), e.Code, e.Message)
	if e.Extra != "" {
		base += " | extra: " + e.Extra
	}
	if e.Cause != nil {
		base += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return base
}

// Unwrap 讓 errors.Is / errors.As 能夠向下展開。
func (e *E) Unwrap() error { return e.Cause }

// New 依錯誤等級與訊息建立錯誤，Code 預設為 Unknown。
func New(errLv ErrLevel, msg string) *E {
	return &E{Message: msg, ErrLv: errLv, Code: Unknown}
}

func NewFatal(msg string) *E {
	return &E{Message: msg, ErrLv: Fatal, Code: Unknown}
}

func NewWarn(msg string) *E {
	return &E{Message: msg, ErrLv: Warn, Code: Unknown}
}

func NewLog(msg string) *E {
	return &E{Message: msg, ErrLv: Log, Code: Unknown}
}

func Fatalf(format string, a ...any) *E {
	return NewFatal(fmt.Sprintf(format, a...))
}

func Warnf(format string, a ...any) *E {
	return NewWarn(fmt.Sprintf(format, a...))
}

func Logf(format string, a ...any) *E {
	return NewLog(fmt.Sprintf(format, a...))
}

// NewCode 建立帶錯誤碼的錯誤。
//
// ErrLevel 由錯誤碼的預設等級決定（見 code.go），
// Recoverable 由錯誤碼的預設重試性決定；需要覆寫時請用 WithRecoverable。
func NewCode(code Code, msg string) *E {
	return &E{
		Message:     msg,
		ErrLv:       code.defaultLevel(),
		Code:        code,
		Recoverable: code.defaultRecoverable(),
	}
}

func Codef(code Code, format string, a ...any) *E {
	return NewCode(code, fmt.Sprintf(format, a...))
}

// WithRecoverable 覆寫 Recoverable 旗標（回傳自身方便串接）。
func (e *E) WithRecoverable(v bool) *E {
	e.Recoverable = v
	return e
}

// NewWithExtra 與 New 相同，但可附加額外上下文字串（不影響主訊息）。
func NewWithExtra(errLv ErrLevel, msg string, extra string) *E {
	e := New(errLv, msg)
	e.Extra = extra
	return e
}

// Wrap 使用給定的訊息包裝底層錯誤，建立一個 *E。
//
// ErrLevel / Code 規則：
//   - 若 cause 已經是 *E，則沿用其 ErrLv 與 Code（保持原本嚴重度與分類）。
//   - 若 cause 不是本包定義的 *E（多半是標準庫或三方依賴錯誤），
//     則 ErrLv 一律視為 Fatal、Code 視為 Unknown。
//
// 建議使用方式：
//   - 若你已判斷該錯誤是「可預期且可處理」的情境，請直接建立一個 *E
//     （使用 NewCode 並自行指定 Code），而不要對其呼叫 Wrap。
func Wrap(cause error, msg string) *E {
	var e *E
	errLv := Fatal
	code := Unknown
	recoverable := false
	if errors.As(cause, &e) {
		errLv = e.ErrLv
		code = e.Code
		recoverable = e.Recoverable
	}
	r := New(errLv, msg)
	r.Code = code
	r.Recoverable = recoverable
	r.Cause = cause
	return r
}

// WrapCode 與 Wrap 相同，但強制指定錯誤碼（覆蓋 cause 的分類）。
func WrapCode(cause error, code Code, msg string) *E {
	r := NewCode(code, msg)
	r.Cause = cause
	return r
}

// WrapWithExtra 使用給定的訊息與上下文包裝底層錯誤，建立一個 *E。
func WrapWithExtra(cause error, msg string, extra string) *E {
	r := Wrap(cause, msg)
	r.Extra = extra
	return r
}

func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return e, false
}

// CodeOf 取出錯誤的遊戲錯誤碼；非本包錯誤一律回 Unknown。
func CodeOf(err error) Code {
	if e, ok := AsErr(err); ok {
		return e.Code
	}
	return Unknown
}

// IsRecoverable 回報呼叫端是否可以合理地重試同一個動作。
func IsRecoverable(err error) bool {
	if e, ok := AsErr(err); ok {
		return e.Recoverable
	}
	return false
}
