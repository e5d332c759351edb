package currency

import (
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// fallbackToAED holds static reference rates into AED, used only when no
// stored rate covers a pair. Cross rates are derived through AED. The values
// track long-standing pegs and published reference levels, not live markets.
var fallbackToAED = map[valueobject.Currency]decimal.Decimal{
	valueobject.USD:             decimal.RequireFromString("3.6725"),
	valueobject.EUR:             decimal.RequireFromString("3.95"),
	valueobject.GBP:             decimal.RequireFromString("4.60"),
	valueobject.SAR:             decimal.RequireFromString("0.979"),
	valueobject.KWD:             decimal.RequireFromString("11.95"),
	valueobject.Currency("QAR"): decimal.RequireFromString("1.008"),
	valueobject.Currency("BHD"): decimal.RequireFromString("9.74"),
	valueobject.Currency("OMR"): decimal.RequireFromString("9.54"),
	valueobject.Currency("INR"): decimal.RequireFromString("0.044"),
	valueobject.JPY:             decimal.RequireFromString("0.025"),
}

// FallbackRate derives a reference rate for the pair from the static table,
// crossing through AED when neither side is AED. The second return value is
// false when the table cannot cover the pair.
func FallbackRate(from, to valueobject.Currency) (decimal.Decimal, bool) {
	if from == to {
		return decimal.NewFromInt(1), true
	}

	fromAED, fromOK := toAED(from)
	toAEDRate, toOK := toAED(to)
	if !fromOK || !toOK {
		return decimal.Decimal{}, false
	}

	return fromAED.Div(toAEDRate), true
}

func toAED(c valueobject.Currency) (decimal.Decimal, bool) {
	if c == valueobject.AED {
		return decimal.NewFromInt(1), true
	}
	rate, ok := fallbackToAED[c]
	return rate, ok
}
