package notifier

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"PutScreener/internal/model"

	"github.com/guregu/null/v6"
)

const rule = "============================================================"

// Banner frames a heading between two rules.
func Banner(title string) string {
	return fmt.Sprintf("%s\n  %s\n%s\n", rule, title, rule)
}

// FormatTable renders the records as an aligned text table. Absent values
// are shown as "-". A negative places prints the value as quoted.
func FormatTable(rs *model.ResultSet) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, strings.Join(model.RecordColumns, "\t")+"\t")
	for _, r := range rs.Records {
		cells := []string{
			r.Symbol,
			cell(r.CurrentPrice, 2),
			cell(r.High52w, 2),
			cell(r.Low52w, 2),
			cell(r.DistanceFromLow, 2),
			cell(r.NearestStrike, -1),
			cell(r.Premium, -1),
			cell(r.IRR, 4),
			cell(r.EffectiveReturn, 4),
		}
		fmt.Fprintln(w, strings.Join(cells, "\t")+"\t")
	}
	w.Flush()
	return b.String()
}

func cell(v null.Float, places int) string {
	if !v.Valid {
		return "-"
	}
	if places < 0 {
		return strconv.FormatFloat(v.Float64, 'f', -1, 64)
	}
	return fmt.Sprintf("%.*f", places, v.Float64)
}

// FormatSummary renders the "Results Summary" block printed at the end of a run.
func FormatSummary(rs *model.ResultSet) string {
	var b strings.Builder
	b.WriteString(Banner("Results Summary"))
	b.WriteString(FormatTable(rs))

	var noPrice, noOptions int
	for _, r := range rs.Records {
		switch r.Status {
		case model.StatusPriceUnavailable, model.StatusMetricsFailed:
			noPrice++
		case model.StatusNoOptions:
			noOptions++
		}
	}
	b.WriteString(fmt.Sprintf("\nTickers: %d | without price data: %d | without options: %d\n",
		len(rs.Records), noPrice, noOptions))
	b.WriteString(fmt.Sprintf("Run %s at %s\n", rs.RunID, rs.GeneratedAt.Format("2006-01-02 15:04:05")))
	return b.String()
}

// FormatMessage renders the summary for Telegram's HTML parse mode.
func FormatMessage(rs *model.ResultSet) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>Put Screener</b> | %s\n\n", rs.GeneratedAt.Format("2006-01-02 15:04")))
	for _, r := range rs.Records {
		switch {
		case !r.HasPrice():
			b.WriteString(fmt.Sprintf("✗ <b>%s</b>: no price data\n", escapeHTML(r.Symbol)))
		case !r.HasOption():
			b.WriteString(fmt.Sprintf("⚠ <b>%s</b> %.2f (low %.2f, +%.2f%%): no put options\n",
				escapeHTML(r.Symbol), r.CurrentPrice.Float64, r.Low52w.Float64, r.DistanceFromLow.Float64))
		default:
			b.WriteString(fmt.Sprintf("✓ <b>%s</b> %.2f (low %.2f, +%.2f%%)\n   put %.2f @ %.2f | IRR %.4f | eff %.4f\n",
				escapeHTML(r.Symbol), r.CurrentPrice.Float64, r.Low52w.Float64, r.DistanceFromLow.Float64,
				r.NearestStrike.Float64, r.Premium.Float64, r.IRR.Float64, r.EffectiveReturn.Float64))
		}
	}
	return b.String()
}

func escapeHTML(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}
