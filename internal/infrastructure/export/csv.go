package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

func writeCSV(w io.Writer, doc Document) error {
	money := NewMoneyFormatter(doc.Currency)
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range doc.tableRows() {
		var record []string
		switch r.kind {
		case rowMonth:
			record = []string{r.label, "", "", "", "", ""}
		case rowItem:
			record = []string{
				r.label, r.product, money.Money(r.price),
				money.Count(r.reservations), money.Count(r.guests), money.Money(r.revenue),
			}
		default:
			record = []string{
				r.label, "", "",
				money.Count(r.reservations), money.Count(r.guests), money.Money(r.revenue),
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
