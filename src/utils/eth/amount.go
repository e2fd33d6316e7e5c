package eth

import (
	"fmt"
	"math/big"

	"github.com/warp-contracts/market/src/utils/model"

	"github.com/shopspring/decimal"
)

// Decimals of the native currency
const Decimals = 18

// Converts an amount of ether typed by a human into wei. Fails if the amount has more than 18 decimals.
func ToWei(amount string) (wei *big.Int, err error) {
	value, err := decimal.NewFromString(amount)
	if err != nil {
		err = fmt.Errorf("%w: amount %q is not a decimal", model.ErrInvalidInput, amount)
		return
	}
	return DecimalToWei(value)
}

func DecimalToWei(value decimal.Decimal) (wei *big.Int, err error) {
	if value.IsNegative() {
		err = fmt.Errorf("%w: amount is negative", model.ErrInvalidInput)
		return
	}

	shifted := value.Shift(Decimals)
	if !shifted.IsInteger() {
		err = fmt.Errorf("%w: amount has more than %d decimals", model.ErrInvalidInput, Decimals)
		return
	}

	wei = shifted.BigInt()
	return
}

// Exact conversion of wei into ether
func FromWei(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -Decimals)
}

// Parses a positive sale price
func ParsePrice(amount string) (wei *big.Int, err error) {
	wei, err = ToWei(amount)
	if err != nil {
		return
	}
	if wei.Sign() <= 0 {
		err = model.ErrInvalidPrice
	}
	return
}
