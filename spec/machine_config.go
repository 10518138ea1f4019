package spec

import (
	"encoding/json"
	"fmt"

	"github.com/zintix-labs/chainspin/errs"
	"gopkg.in/yaml.v3"
)

// 盤面固定維度與金額單位。
//
// 所有金額一律使用整數 micro-units（1 unit = 1,000,000 micro），
// 避免浮點誤差污染派彩計算。
const (
	Columns   = 5 // 滾輪數
	Rows      = 3 // 可見列數
	MicroUnit = int64(1_000_000)
)

// MachineConfig 包含一台鏈上機台的完整設定。
//
// 來源有兩種：
//   - 正式環境：由 Adapter 從合約取回（GetContractConfig），一個 session 取一次後視為不可變。
//   - 沙盒/測試：由 YAML/JSON 設定檔解析（fs.FS 注入）。
//
// 解析後必須呼叫 Init()；Init 會做 fail-fast 檢查並建立衍生結構
// （符號索引滾輪、CSR 賠付表），之後的熱路徑查表不再配置記憶體。
type MachineConfig struct {
	AppID       uint64  `yaml:"app_id"       json:"app_id"`       // 合約/機台識別
	ChainID     string  `yaml:"chain_id"     json:"chain_id"`     // 鏈識別
	RTPTarget   float64 `yaml:"rtp_target"   json:"rtp_target"`   // 目標 RTP（觀測用，不參與計算）
	HouseEdge   float64 `yaml:"house_edge"   json:"house_edge"`   // 莊家優勢（觀測用）
	MinBet      int64   `yaml:"min_bet"      json:"min_bet"`      // 單線最小注（micro）
	MaxBet      int64   `yaml:"max_bet"      json:"max_bet"`      // 單線最大注（micro）
	MaxPaylines int     `yaml:"max_paylines" json:"max_paylines"` // 可選用線數上限

	SymbolUsedStr []string   `yaml:"symbol_used" json:"symbol_used"` // 符號表（定義索引順序）
	ReelStrips    [][]string `yaml:"reels"       json:"reels"`       // 5 條滾輪帶，每條等長
	PayTable      [][]int64  `yaml:"pay_table"   json:"pay_table"`   // [符號][連線數-1] 倍數
	Paylines      [][]int    `yaml:"paylines"    json:"paylines"`    // 每條線 5 個 row index

	WinTiers WinTierSetting `yaml:"win_tiers" json:"win_tiers"`

	// 衍生資料（Init 之後有效）
	SymbolUsed    []Symbol  `yaml:"-" json:"-"`
	Reels         [][]int16 `yaml:"-" json:"-"` // 符號索引滾輪帶（熱路徑用）
	PayTableFlat  []int64   `yaml:"-" json:"-"`
	PayTableIndex []int     `yaml:"-" json:"-"`
	SymbolCount   int       `yaml:"-" json:"-"`

	initFlag bool
}

// WinTierSetting 定義贏分級距（payout / totalBet 的倍數門檻）。
//
// 級距門檻不是由評分器推導而來，必須明確設定（每台機台可不同）。
type WinTierSetting struct {
	Small   float64 `yaml:"small"   json:"small"`   // >= Small 為小獎
	Medium  float64 `yaml:"medium"  json:"medium"`  // >= Medium 為中獎
	Large   float64 `yaml:"large"   json:"large"`   // >= Large 為大獎
	Jackpot float64 `yaml:"jackpot" json:"jackpot"` // >= Jackpot 為頭獎
}

func (w WinTierSetting) valid() error {
	if w.Small <= 0 || w.Medium <= w.Small || w.Large <= w.Medium || w.Jackpot <= w.Large {
		return errs.NewFatal(fmt.Sprintf("win tiers must be ascending positive: %+v", w))
	}
	return nil
}

// GetMachineConfigByYAML 解析並初始化 YAML 格式的機台設定。
func GetMachineConfigByYAML(raw []byte) (*MachineConfig, error) {
	mc := new(MachineConfig)
	if err := yaml.Unmarshal(raw, mc); err != nil {
		return nil, errs.Wrap(err, "unmarshal machine config yaml failed")
	}
	if err := mc.Init(); err != nil {
		return nil, err
	}
	return mc, nil
}

// GetMachineConfigByJSON 解析並初始化 JSON 格式的機台設定。
func GetMachineConfigByJSON(raw []byte) (*MachineConfig, error) {
	mc := new(MachineConfig)
	if err := json.Unmarshal(raw, mc); err != nil {
		return nil, errs.Wrap(err, "unmarshal machine config json failed")
	}
	if err := mc.Init(); err != nil {
		return nil, err
	}
	return mc, nil
}

// Init 檢查設定並建立衍生結構，重複呼叫為 no-op。
func (mc *MachineConfig) Init() error {
	if mc.initFlag {
		return nil
	}
	if err := mc.valid(); err != nil {
		return err
	}

	// 解析 SymbolUsed
	mc.SymbolUsed = make([]Symbol, len(mc.SymbolUsedStr))
	symIdx := make(map[string]int16, len(mc.SymbolUsedStr))
	for id, str := range mc.SymbolUsedStr {
		su, ok := ParseSymbol(str)
		if !ok {
			return errs.NewFatal(fmt.Sprintf("symbol used has wrong elem %s", str))
		}
		mc.SymbolUsed[id] = su
		if _, dup := symIdx[str]; dup {
			return errs.NewFatal(fmt.Sprintf("duplicate symbol in symbol_used: %s", str))
		}
		symIdx[str] = int16(id)
	}
	mc.SymbolCount = len(mc.SymbolUsed)

	// 滾輪帶轉符號索引
	mc.Reels = make([][]int16, len(mc.ReelStrips))
	for r, strip := range mc.ReelStrips {
		reel := make([]int16, len(strip))
		for i, str := range strip {
			id, ok := symIdx[str]
			if !ok {
				return errs.NewFatal(fmt.Sprintf("reel %d has unknown symbol %s", r, str))
			}
			reel[i] = id
		}
		mc.Reels[r] = reel
	}

	// 賠付表攤平（CSR：base + (runLen-1)）
	mc.PayTableFlat = make([]int64, mc.SymbolCount*Columns)
	mc.PayTableIndex = make([]int, mc.SymbolCount)
	write := 0
	for rowIdx, payRow := range mc.PayTable {
		mc.PayTableIndex[rowIdx] = write
		copy(mc.PayTableFlat[write:], payRow)
		write += Columns
	}

	mc.initFlag = true
	return nil
}

// valid 執行最基本的設定檢查，如需更多驗證可在此擴充。
func (mc *MachineConfig) valid() error {
	if mc.MinBet < 1 {
		return errs.NewFatal(fmt.Sprintf("app %d: min_bet must be >= 1 micro", mc.AppID))
	}
	if mc.MinBet > mc.MaxBet {
		return errs.NewFatal(fmt.Sprintf("app %d: min_bet %d > max_bet %d", mc.AppID, mc.MinBet, mc.MaxBet))
	}
	if mc.MaxPaylines < 1 {
		return errs.NewFatal(fmt.Sprintf("app %d: max_paylines must be >= 1", mc.AppID))
	}
	if len(mc.SymbolUsedStr) == 0 {
		return errs.NewFatal("empty symbol_used")
	}

	// 滾輪：固定 5 條，等長，且至少能鋪滿可見列
	if len(mc.ReelStrips) != Columns {
		return errs.NewFatal(fmt.Sprintf("reels must have exactly %d strips, got %d", Columns, len(mc.ReelStrips)))
	}
	strip0 := len(mc.ReelStrips[0])
	if strip0 < Rows {
		return errs.NewFatal(fmt.Sprintf("reel strip too short: %d < %d", strip0, Rows))
	}
	for r, strip := range mc.ReelStrips {
		if len(strip) != strip0 {
			return errs.NewFatal(fmt.Sprintf("reel %d length %d != reel 0 length %d", r, len(strip), strip0))
		}
	}

	// 賠付表：每個符號一列，列長固定為滾輪數
	if len(mc.PayTable) != len(mc.SymbolUsedStr) {
		return errs.NewFatal("len(symbol_used) != len(pay_table)")
	}
	for i, payRow := range mc.PayTable {
		if len(payRow) != Columns {
			return errs.NewFatal(fmt.Sprintf("pay_table row %d length %d != %d", i, len(payRow), Columns))
		}
		for _, v := range payRow {
			if v < 0 {
				return errs.NewFatal(fmt.Sprintf("pay_table row %d has negative multiplier", i))
			}
		}
	}

	// 線表：至少 MaxPaylines 條可選，每條 5 個合法 row index
	if len(mc.Paylines) < mc.MaxPaylines {
		return errs.NewFatal(fmt.Sprintf("paylines %d < max_paylines %d", len(mc.Paylines), mc.MaxPaylines))
	}
	for i, line := range mc.Paylines {
		if len(line) != Columns {
			return errs.NewFatal(fmt.Sprintf("payline %d length %d != %d", i, len(line), Columns))
		}
		for _, row := range line {
			if row < 0 || row >= Rows {
				return errs.NewFatal(fmt.Sprintf("payline %d row index %d out of range", i, row))
			}
		}
	}

	return mc.WinTiers.valid()
}

// ReelLength 回傳滾輪帶長度（Init 前後皆可用）。
func (mc *MachineConfig) ReelLength() int {
	if len(mc.ReelStrips) == 0 {
		return 0
	}
	return len(mc.ReelStrips[0])
}

// Multiplier 查詢符號在指定連線數下的倍數；未設定回 0。
func (mc *MachineConfig) Multiplier(symID int16, runLen int) int64 {
	if symID < 0 || int(symID) >= mc.SymbolCount || runLen < 1 || runLen > Columns {
		return 0
	}
	return mc.PayTableFlat[mc.PayTableIndex[symID]+(runLen-1)]
}

// SymbolName 回傳符號索引的設定檔名稱（對外呈現用）。
func (mc *MachineConfig) SymbolName(symID int16) string {
	if symID < 0 || int(symID) >= mc.SymbolCount {
		return "?"
	}
	return mc.SymbolUsed[symID].String()
}
