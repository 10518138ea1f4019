package stats

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang language.Tag = language.English

// SummaryRender 定義輸出行為
type SummaryRender interface {
	Write(w io.Writer, s Summary) error
}

// Json渲染
type JsonSummaryRender struct{}

func (jr *JsonSummaryRender) Write(w io.Writer, s Summary) error {
	return json.NewEncoder(w).Encode(s)
}

// 終端表格渲染
type TableSummaryRender struct{}

func (tr *TableSummaryRender) Write(w io.Writer, s Summary) error {
	p := message.NewPrinter(lang)
	keys := []string{
		"rounds", "total bet", "total win", "rtp", "rtp 95% ci",
		"hit rate", "max win", "max mult",
		"small", "medium", "large", "jackpot",
	}
	msg := map[string]string{
		"rounds":     p.Sprintf("%d", s.Rounds),
		"total bet":  p.Sprintf("%d", s.TotalBet),
		"total win":  p.Sprintf("%d", s.TotalWin),
		"rtp":        p.Sprintf("%.4f", s.Rtp),
		"rtp 95% ci": p.Sprintf("[%.4f, %.4f]", s.RtpCI.Lo, s.RtpCI.Hi),
		"hit rate":   p.Sprintf("%.4f", s.HitRate),
		"max win":    p.Sprintf("%d", s.MaxWin),
		"max mult":   p.Sprintf("%.2f", s.MaxMult),
		"small":      p.Sprintf("%d", s.TierCount[TierSmall]),
		"medium":     p.Sprintf("%d", s.TierCount[TierMedium]),
		"large":      p.Sprintf("%d", s.TierCount[TierLarge]),
		"jackpot":    p.Sprintf("%d", s.TierCount[TierJackpot]),
	}
	_, err := fmt.Fprint(w, fmtTable("session report", keys, msg))
	return err
}

func blank(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}

// fmtTable 以 runewidth 對齊輸出簡易表格（標題置中、鍵值兩欄）。
func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	fmtStr := top
	fmtStr += p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right))
	fmtStr += divider
	for _, k := range keys {
		fmtStr += p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k])))
	}
	fmtStr += divider

	return fmtStr
}
