package pdf

import (
	"math/big"
	"strings"
)

var frUnits = [...]string{
	"zéro", "un", "deux", "trois", "quatre", "cinq", "six", "sept", "huit", "neuf",
	"dix", "onze", "douze", "treize", "quatorze", "quinze", "seize",
}

var frTens = [...]string{"", "dix", "vingt", "trente", "quarante", "cinquante", "soixante"}

// NumberToFrench escribe n en letras (ortografía tradicional).
func NumberToFrench(n int64) string {
	return bigToFrench(big.NewInt(n))
}

var frScales = []struct {
	value    *big.Int
	singular string
}{
	{pow10(21), "trilliard"},
	{pow10(18), "trillion"},
	{pow10(15), "billiard"},
	{pow10(12), "billion"},
	{pow10(9), "milliard"},
	{pow10(6), "million"},
}

func pow10(e int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(e), nil)
}

// bigToFrench admite cualquier magnitud: por encima del trilliard el
// multiplicador se escribe a su vez en letras.
func bigToFrench(n *big.Int) string {
	switch n.Sign() {
	case 0:
		return frUnits[0]
	case -1:
		return "moins " + bigToFrench(new(big.Int).Neg(n))
	}

	rest := new(big.Int).Set(n)
	var parts []string
	for _, s := range frScales {
		if rest.Cmp(s.value) < 0 {
			continue
		}
		q, r := new(big.Int).QuoRem(rest, s.value, new(big.Int))
		rest = r
		if q.IsInt64() && q.Int64() == 1 {
			parts = append(parts, "un "+s.singular)
		} else {
			parts = append(parts, bigToFrench(q)+" "+s.singular+"s")
		}
	}

	small := rest.Int64() // < 10^6
	if q := small / 1000; q > 0 {
		if q == 1 {
			parts = append(parts, "mille")
		} else {
			// "mille" es invariable y quita la marca de plural de cents/vingts que lo preceden.
			parts = append(parts, invariable(below1000(int(q)))+" mille")
		}
		small %= 1000
	}
	if small > 0 {
		parts = append(parts, below1000(int(small)))
	}
	return strings.Join(parts, " ")
}

func below1000(n int) string {
	h, r := n/100, n%100
	if h == 0 {
		return below100(r)
	}
	prefix := "cent"
	if h > 1 {
		prefix = frUnits[h] + " cent"
	}
	if r == 0 {
		if h > 1 {
			return prefix + "s"
		}
		return prefix
	}
	return prefix + " " + below100(r)
}

func below100(n int) string {
	if n < 17 {
		return frUnits[n]
	}
	if n < 20 {
		return "dix-" + frUnits[n-10]
	}
	t, u := n/10, n%10
	switch t {
	case 7:
		if u == 1 {
			return "soixante et onze"
		}
		return "soixante-" + below100(10+u)
	case 8:
		if u == 0 {
			return "quatre-vingts"
		}
		return "quatre-vingt-" + frUnits[u]
	case 9:
		return "quatre-vingt-" + below100(10+u)
	}
	switch u {
	case 0:
		return frTens[t]
	case 1:
		return frTens[t] + " et un"
	}
	return frTens[t] + "-" + frUnits[u]
}

// invariable quita la "s" de cents y quatre-vingts delante de mille.
func invariable(words string) string {
	if strings.HasSuffix(words, "cents") || strings.HasSuffix(words, "vingts") {
		return strings.TrimSuffix(words, "s")
	}
	return words
}
