package export

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/salesdash/backend/internal/domain/venue"
)

// MoneyFormatter renders amounts and counts the way a venue's currency is
// presented: MXN as $1,234.56 and EUR as €1.234,56.
type MoneyFormatter struct {
	symbol  string
	printer *message.Printer
}

// NewMoneyFormatter returns the formatter for a currency. Unknown currencies
// use the MXN presentation.
func NewMoneyFormatter(c venue.Currency) MoneyFormatter {
	if c == venue.EUR {
		// German separators match the dashboard's euro rendering, including
		// grouping of four digit amounts.
		return MoneyFormatter{symbol: "€", printer: message.NewPrinter(language.German)}
	}
	return MoneyFormatter{symbol: "$", printer: message.NewPrinter(language.AmericanEnglish)}
}

// Money formats an amount with two decimals and the currency symbol.
func (f MoneyFormatter) Money(amount decimal.Decimal) string {
	v := amount.Round(2).InexactFloat64()
	return f.symbol + f.printer.Sprint(number.Decimal(v, number.Scale(2)))
}

// Count formats an integer with thousands separators.
func (f MoneyFormatter) Count(n int64) string {
	return f.printer.Sprint(number.Decimal(n))
}
