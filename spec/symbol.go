package spec

// Symbol 是設定檔中的符號名稱。
//
// 盤面與滾輪在熱路徑上一律使用「符號索引」（int16，指向 SymbolUsed 的位置），
// Symbol 只在設定解析與對外呈現（DTO/驗證輸出）時使用。
type Symbol int

const (
	// Z系列圖標(Zero) : 代表沒有得分圖標 None
	Z1 Symbol = iota
	Z2
	Z3

	// C系列圖標 : Scatter 圖標是分散符號
	C1
	C2

	// W系列圖標 : Wild 圖標是百搭符號
	W1
	W2

	// H系列圖標 : High 圖標是高分符號
	H1
	H2
	H3
	H4

	// L系列圖標 : Low 圖標是低分符號
	L1
	L2
	L3
	L4
	L5
)

var symbolMap = map[string]Symbol{
	"Z1": Z1, "Z2": Z2, "Z3": Z3,
	"C1": C1, "C2": C2,
	"W1": W1, "W2": W2,
	"H1": H1, "H2": H2, "H3": H3, "H4": H4,
	"L1": L1, "L2": L2, "L3": L3, "L4": L4, "L5": L5,
}

var symbolName = func() map[Symbol]string {
	m := make(map[Symbol]string, len(symbolMap))
	for k, v := range symbolMap {
		m[v] = k
	}
	return m
}()

func ParseSymbol(s string) (Symbol, bool) {
	sym, ok := symbolMap[s]
	return sym, ok
}

// String 回傳符號的設定檔名稱；未知符號回傳 "?"。
func (s Symbol) String() string {
	if n, ok := symbolName[s]; ok {
		return n
	}
	return "?"
}

// IsSymbolNone 回傳符號是否屬於 None 類型。
func IsSymbolNone(s Symbol) bool { return (s >= Z1) && (s <= Z3) }

// IsSymbolScatter 回傳符號是否屬於 Scatter 符號。
func IsSymbolScatter(s Symbol) bool { return (s >= C1) && (s <= C2) }

// IsSymbolWild 回傳符號是否屬於 Wild 符號。
func IsSymbolWild(s Symbol) bool { return (s >= W1) && (s <= W2) }

// IsSymbolHigh 回傳符號是否屬於高分符號。
func IsSymbolHigh(s Symbol) bool { return (s >= H1) && (s <= H4) }

// IsSymbolLow 回傳符號是否屬於低分符號。
func IsSymbolLow(s Symbol) bool { return (s >= L1) && (s <= L5) }
