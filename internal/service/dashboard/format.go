package dashboard

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatDate renders a date the way the dashboard shows it, e.g. "Jan 15, 2024".
func FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

// FormatWeight renders kilograms with one decimal.
func FormatWeight(kg float64) string {
	return fmt.Sprintf("%.1f kg", kg)
}

// FormatMilkProduction renders liters with two decimals.
func FormatMilkProduction(liters float64) string {
	return fmt.Sprintf("%.2f L", liters)
}

// FormatPercentage renders a ratio (0.125) as a percentage ("12.5%").
func FormatPercentage(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}

// FormatCurrency renders US dollars with thousands grouping, e.g. "$1,234.50".
func FormatCurrency(amount float64) string {
	p := message.NewPrinter(language.AmericanEnglish)
	sign := ""
	if amount < 0 {
		sign = "-"
	}
	return sign + p.Sprintf("$%.2f", math.Abs(amount))
}
