package normalize

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// YoctoDecimals is the number of decimals between NEAR and yoctoNEAR.
const YoctoDecimals = 24

// ToYoctoUnits scales a decimal amount by 10^decimals. The result is exact;
// amounts with more fractional digits than decimals are rejected.
func ToYoctoUnits(amount string, decimals int) (*big.Int, error) {
	if decimals < 0 {
		return nil, errors.Errorf("invalid decimals %d", decimals)
	}

	cleaned := strings.ReplaceAll(strings.TrimSpace(amount), ",", "")
	if cleaned == "" {
		return nil, errors.New("amount is empty")
	}

	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid amount %q", amount)
	}

	scaled := value.Shift(int32(decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, errors.Errorf("amount %q has more than %d decimals", amount, decimals)
	}

	return scaled.BigInt(), nil
}
