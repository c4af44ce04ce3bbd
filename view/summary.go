package view

import (
	"fmt"
	"sort"

	"incometracker/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// SourceShare 单个收入来源的小计与占比
type SourceShare struct {
	Source     string          `json:"source"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Percentage decimal.Decimal `json:"percentage"`
	Text       string          `json:"text"`
}

// Summary 收入总额与按来源拆分
type Summary struct {
	Total     decimal.Decimal `json:"total"`
	TotalText string          `json:"total_text"`
	Sources   []SourceShare   `json:"sources"`
}

// Summarize 对完整的收入列表重新汇总。
// 来源按字符串精确分组（区分大小写），按小计降序、来源名升序排列。
func Summarize(incomes []models.Income) Summary {
	total := decimal.Zero
	subtotals := make(map[string]decimal.Decimal)
	for _, in := range incomes {
		total = total.Add(in.Amount)
		subtotals[in.Source] = subtotals[in.Source].Add(in.Amount)
	}

	sources := make([]SourceShare, 0, len(subtotals))
	for source, sub := range subtotals {
		pct := Percentage(sub, total)
		sources = append(sources, SourceShare{
			Source:     source,
			Subtotal:   sub,
			Percentage: pct,
			Text:       fmt.Sprintf("%s: %s (%s%% of Total Income)", source, FormatCurrency(sub), pct.StringFixed(2)),
		})
	}
	sort.Slice(sources, func(i, j int) bool {
		if c := sources[i].Subtotal.Cmp(sources[j].Subtotal); c != 0 {
			return c > 0
		}
		return sources[i].Source < sources[j].Source
	})

	return Summary{
		Total:     total,
		TotalText: FormatCurrency(total),
		Sources:   sources,
	}
}

// Percentage 计算 part 占 total 的百分比，保留两位小数四舍五入；total 为 0 时返回 0
func Percentage(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Mul(hundred).DivRound(total, 2)
}

// FormatCurrency 金额展示格式，如 "$ 2000.00"
func FormatCurrency(d decimal.Decimal) string {
	return "$ " + d.StringFixed(2)
}

// Lines 每个来源一行的展示文本
func (s Summary) Lines() []string {
	lines := make([]string, 0, len(s.Sources))
	for _, src := range s.Sources {
		lines = append(lines, src.Text)
	}
	return lines
}
