package chain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amounts cross the API as decimal coin values and live on the wire
// as integer koinu, the same encoding used on the blockchain.
type CoinAmount = decimal.Decimal

const OneCoinKoinu int64 = 100_000_000
const MaxKoinuDigits = 8 // koinu digits after the decimal place

var ZeroCoins = decimal.NewFromInt(0)
var OneCoin = decimal.NewFromInt(1)
var oneCoinDec = decimal.NewFromInt(OneCoinKoinu)

// KoinuToDecimal converts a wire amount to its API decimal form.
func KoinuToDecimal(koinu int64) CoinAmount {
	return decimal.NewFromInt(koinu).Div(oneCoinDec)
}

// DecimalToKoinu converts an API amount to koinu, rejecting negative
// amounts and sub-koinu precision.
func DecimalToKoinu(amount CoinAmount) (int64, error) {
	if amount.IsNegative() {
		return 0, fmt.Errorf("invalid amount: negative values are not allowed: %v", amount)
	}
	if amount.Exponent() < -MaxKoinuDigits {
		return 0, fmt.Errorf("invalid amount: more than %d digits after the decimal place: %v", MaxKoinuDigits, amount)
	}
	koinu := amount.Mul(oneCoinDec)
	if !koinu.IsInteger() {
		return 0, fmt.Errorf("invalid amount: not a whole number of koinu: %v", amount)
	}
	return koinu.IntPart(), nil
}
