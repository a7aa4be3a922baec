package cli

import (
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
)

// formatPrice renders an amount in naira with thousands separators.
func formatPrice(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "₦" + b.String() + "." + frac
}

type table struct {
	tw *tabwriter.Writer
}

func newTable(w io.Writer) *table {
	return &table{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (t *table) row(cols ...string) {
	_, _ = io.WriteString(t.tw, strings.Join(cols, "\t")+"\n")
}

func (t *table) flush() { _ = t.tw.Flush() }
