package pdf

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Currency sufijo monetario impreso junto a los importes.
const Currency = "TND"

var frPrinter = message.NewPrinter(language.French)

// FormatMoney importe con 3 decimales en convención francesa: 1234.5 → "1 234,500 TND".
func FormatMoney(d decimal.Decimal) string {
	return FormatNumber(d, 3) + " " + Currency
}

// FormatQuantity cantidad sin ceros superfluos, con coma decimal.
func FormatQuantity(d decimal.Decimal) string {
	return FormatNumber(d, int(max(0, -d.Exponent())))
}

// FormatNumber número con separadores franceses y escala fija. Se formatea
// desde la representación decimal exacta, sin pasar por float64.
func FormatNumber(d decimal.Decimal, scale int) string {
	s := d.StringFixed(int32(scale))
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	var sb strings.Builder
	sb.WriteString(sign)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteString(frGroup)
		}
		sb.WriteRune(r)
	}
	if frac != "" {
		sb.WriteString(frDecimal)
		sb.WriteString(frac)
	}
	return sb.String()
}

// frGroup y frDecimal símbolos de agrupación y decimal del locale francés.
var frGroup, frDecimal = frenchSymbols()

func frenchSymbols() (group, dec string) {
	s := frPrinter.Sprint(number.Decimal(1234567.5, number.Scale(1))) // "1 234 567,5"
	i := strings.Index(s, "234")
	k := strings.Index(s, "567")
	if i < 1 || k < i {
		return " ", ","
	}
	return s[1:i], s[k+3 : len(s)-1]
}

// FormatAmountInWords importe en letras (dinares y millimes):
// 1234.5 → "mille deux cent trente-quatre dinars et cinq cents millimes".
func FormatAmountInWords(d decimal.Decimal) string {
	d = d.Round(3)
	var sb strings.Builder
	if d.IsNegative() {
		sb.WriteString("moins ")
		d = d.Neg()
	}
	dinars := d.Truncate(0)
	millimes := d.Sub(dinars).Shift(3).IntPart() // < 1000

	whole := dinars.BigInt()
	sb.WriteString(bigToFrench(whole))
	sb.WriteString(plural(" dinar", whole.Cmp(big.NewInt(1)) > 0))
	if millimes > 0 {
		sb.WriteString(" et ")
		sb.WriteString(NumberToFrench(millimes))
		sb.WriteString(plural(" millime", millimes > 1))
	}
	return sb.String()
}

func plural(word string, many bool) string {
	if many {
		return word + "s"
	}
	return word
}
