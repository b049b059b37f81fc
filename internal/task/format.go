package task

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var idPrinter = message.NewPrinter(language.Indonesian)

// FormatIDR renders a rupiah amount with Indonesian digit grouping, e.g. "Rp 50.000".
func FormatIDR(v float64) string {
	return idPrinter.Sprintf("Rp %v", number.Decimal(v, number.MaxFractionDigits(2)))
}

var idMonths = [...]string{
	"Jan", "Feb", "Mar", "Apr", "Mei", "Jun",
	"Jul", "Agu", "Sep", "Okt", "Nov", "Des",
}

// FormatTimestamp renders t the way the id-ID locale shows a medium date with
// a short time: "17 Okt 2026, 14.30".
func FormatTimestamp(t time.Time) string {
	return fmt.Sprintf("%d %s %d, %02d.%02d",
		t.Day(), idMonths[t.Month()-1], t.Year(), t.Hour(), t.Minute())
}
