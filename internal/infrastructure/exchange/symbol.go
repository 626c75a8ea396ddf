package exchange

import "strings"

// Exchange names as they appear in ticks, alerts and config.
const (
	Bithumb = "bithumb"
	Upbit   = "upbit"
	Coinone = "coinone"
	Korbit  = "korbit"
)

// Normalize maps an exchange-native ticker spelling to the canonical
// uppercase asset symbol:
//
//	bithumb  BTC_KRW -> BTC
//	upbit    KRW-BTC -> BTC
//	coinone  btc     -> BTC
//	korbit   btc_krw -> BTC
//
// Unknown exchanges get the identity mapping.
func Normalize(exchange, raw string) string {
	switch exchange {
	case Bithumb:
		return strings.SplitN(raw, "_", 2)[0]
	case Upbit:
		if i := strings.Index(raw, "-"); i >= 0 {
			return raw[i+1:]
		}
		return raw
	case Coinone:
		return strings.ToUpper(raw)
	case Korbit:
		return strings.ToUpper(strings.SplitN(raw, "_", 2)[0])
	default:
		return raw
	}
}
