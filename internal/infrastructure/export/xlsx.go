package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/salesdash/backend/internal/domain/venue"
)

// SheetName is the worksheet holding the report
const SheetName = "Ventas"

type xlsxStyles struct {
	header, month, item, itemMoney, total, totalMoney, grand, grandMoney int
}

func writeXLSX(w io.Writer, doc Document) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	styles, err := newXLSXStyles(f, doc.Currency)
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(SheetName, "A1", &Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "F1", styles.header); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	rowNum := 2
	for _, r := range doc.tableRows() {
		start, _ := excelize.CoordinatesToCellName(1, rowNum)
		var values []any
		textStyle, moneyStyle := styles.item, styles.itemMoney
		switch r.kind {
		case rowMonth:
			values = []any{r.label}
			textStyle, moneyStyle = styles.month, styles.month
		case rowItem:
			values = []any{r.label, r.product, r.price.InexactFloat64(), r.reservations, r.guests, r.revenue.InexactFloat64()}
		case rowDateTotal:
			values = []any{r.label, nil, nil, r.reservations, r.guests, r.revenue.InexactFloat64()}
			textStyle, moneyStyle = styles.total, styles.totalMoney
		case rowGrandTotal:
			values = []any{r.label, nil, nil, r.reservations, r.guests, r.revenue.InexactFloat64()}
			textStyle, moneyStyle = styles.grand, styles.grandMoney
		}
		if err := f.SetSheetRow(SheetName, start, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", rowNum, err)
		}
		if err := styleRow(f, rowNum, textStyle, moneyStyle); err != nil {
			return err
		}
		rowNum++
	}

	for col, width := range map[string]float64{"A": 18, "B": 42, "C": 14, "D": 12, "E": 12, "F": 16} {
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("failed to size column %s: %w", col, err)
		}
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func styleRow(f *excelize.File, row, textStyle, moneyStyle int) error {
	a, _ := excelize.CoordinatesToCellName(1, row)
	e, _ := excelize.CoordinatesToCellName(5, row)
	c, _ := excelize.CoordinatesToCellName(3, row)
	last, _ := excelize.CoordinatesToCellName(6, row)
	if err := f.SetCellStyle(SheetName, a, e, textStyle); err != nil {
		return fmt.Errorf("failed to style row %d: %w", row, err)
	}
	if err := f.SetCellStyle(SheetName, c, c, moneyStyle); err != nil {
		return fmt.Errorf("failed to style row %d: %w", row, err)
	}
	if err := f.SetCellStyle(SheetName, last, last, moneyStyle); err != nil {
		return fmt.Errorf("failed to style row %d: %w", row, err)
	}
	return nil
}

func newXLSXStyles(f *excelize.File, currency venue.Currency) (xlsxStyles, error) {
	moneyFmt := `"$"#,##0.00`
	if currency == venue.EUR {
		moneyFmt = `#,##0.00 "€"`
	}
	countFmt := `#,##0`

	var s xlsxStyles
	bold := &excelize.Font{Bold: true}

	var err error
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}); err != nil {
		return s, fmt.Errorf("failed to create style: %w", err)
	}
	if s.month, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E5E7EB"}, Pattern: 1},
	}); err != nil {
		return s, fmt.Errorf("failed to create style: %w", err)
	}
	if s.item, err = f.NewStyle(&excelize.Style{CustomNumFmt: &countFmt}); err != nil {
		return s, fmt.Errorf("failed to create style: %w", err)
	}
	if s.itemMoney, err = f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt}); err != nil {
		return s, fmt.Errorf("failed to create style: %w", err)
	}
	if s.total, err = f.NewStyle(&excelize.Style{Font: bold, CustomNumFmt: &countFmt}); err != nil {
		return s, fmt.Errorf("failed to create style: %w", err)
	}
	if s.totalMoney, err = f.NewStyle(&excelize.Style{Font: bold, CustomNumFmt: &moneyFmt}); err != nil {
		return s, fmt.Errorf("failed to create style: %w", err)
	}
	grandFill := excelize.Fill{Type: "pattern", Color: []string{"#FDE68A"}, Pattern: 1}
	if s.grand, err = f.NewStyle(&excelize.Style{Font: bold, Fill: grandFill, CustomNumFmt: &countFmt}); err != nil {
		return s, fmt.Errorf("failed to create style: %w", err)
	}
	if s.grandMoney, err = f.NewStyle(&excelize.Style{Font: bold, Fill: grandFill, CustomNumFmt: &moneyFmt}); err != nil {
		return s, fmt.Errorf("failed to create style: %w", err)
	}
	return s, nil
}
