package google

import (
	"fmt"
	"strconv"
	"strings"

	"bankdash/internal/core"

	"github.com/shopspring/decimal"
)

var transactionHeaders = []string{"ID", "Date", "Description", "Amount", "Category", "Type"}

// parseTransactions converts a values matrix whose first row names the
// columns ID, Date, Description, Amount, Category and Type (any order).
// Fully blank rows are skipped and counted.
func parseTransactions(values [][]interface{}) ([]core.Transaction, int, error) {
	out := make([]core.Transaction, 0)
	if len(values) == 0 {
		return out, 0, nil
	}
	headers := toStrings(values[0])
	cols := make(map[string]int, len(transactionHeaders))
	var missing []string
	for _, h := range transactionHeaders {
		i := indexOf(headers, h)
		if i == -1 {
			missing = append(missing, h)
		}
		cols[h] = i
	}
	if len(missing) > 0 {
		return nil, 0, fmt.Errorf("unexpected transactions header: missing %s; got headers=%v", strings.Join(missing, ","), headers)
	}

	skipped := 0
	for r := 1; r < len(values); r++ {
		row := toStrings(values[r])
		if blank(row) {
			skipped++
			continue
		}
		amount, err := core.ParseAmount(safeGet(row, cols["Amount"]))
		if err != nil {
			return nil, skipped, fmt.Errorf("row %d: %w", r+1, err)
		}
		typ, err := core.ParseTransactionType(safeGet(row, cols["Type"]))
		if err != nil {
			return nil, skipped, fmt.Errorf("row %d: %w", r+1, err)
		}
		out = append(out, core.Transaction{
			ID:          safeGet(row, cols["ID"]),
			Date:        safeGet(row, cols["Date"]),
			Description: safeGet(row, cols["Description"]),
			Amount:      amount,
			Category:    safeGet(row, cols["Category"]),
			Type:        typ,
		})
	}
	return out, skipped, nil
}

// parseSummary reads label/value rows such as "Total Income | 4300".
// Labels are matched ignoring case, spaces and underscores so that both
// "Net Balance" and "netBalance" work.
func parseSummary(values [][]interface{}) (core.FinancialSummary, error) {
	sum := core.FinancialSummary{}
	found := map[string]bool{}
	for _, raw := range values {
		row := toStrings(raw)
		key := normalizeLabel(safeGet(row, 0))
		val := safeGet(row, 1)
		switch key {
		case "totalincome", "totalexpenses", "netbalance":
			d, err := core.ParseAmount(val)
			if err != nil {
				return core.FinancialSummary{}, fmt.Errorf("summary %s: %w", safeGet(row, 0), err)
			}
			setAmount(&sum, key, d)
			found[key] = true
		case "transactioncount":
			n, err := strconv.Atoi(strings.TrimSpace(val))
			if err != nil {
				return core.FinancialSummary{}, fmt.Errorf("summary %s: %w", safeGet(row, 0), err)
			}
			sum.TransactionCount = n
			found[key] = true
		}
	}
	for _, k := range []string{"totalincome", "totalexpenses", "netbalance", "transactioncount"} {
		if !found[k] {
			return core.FinancialSummary{}, fmt.Errorf("summary sheet missing %q", k)
		}
	}
	return sum, nil
}

func setAmount(sum *core.FinancialSummary, key string, d decimal.Decimal) {
	switch key {
	case "totalincome":
		sum.TotalIncome = d
	case "totalexpenses":
		sum.TotalExpenses = d
	case "netbalance":
		sum.NetBalance = d
	}
}

func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "").Replace(s)
}

func blank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
