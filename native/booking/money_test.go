package booking

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecimalArithmetic(t *testing.T) {
	a := DecimalFromInt64(10)
	b := DecimalFromInt64(3)
	require.Equal(t, "13", a.Add(b).String())
	require.Equal(t, "7", a.Sub(b).String())
	require.Equal(t, "30", a.MulInt64(3).String())
}

func TestDecimalParseAndString(t *testing.T) {
	d, err := ParseDecimal("12.5")
	require.NoError(t, err)
	require.Equal(t, "12.5", d.String())

	zero, err := ParseDecimal("0")
	require.NoError(t, err)
	require.True(t, zero.IsZero())

	neg, err := ParseDecimal("-3.25")
	require.NoError(t, err)
	require.True(t, neg.IsNegative())
	require.Equal(t, "-3.25", neg.String())
}

func TestDecimalDivRoundHalfEven(t *testing.T) {
	// 180/3 = 60 exactly.
	sum := DecimalFromInt64(180)
	avg := sum.DivInt(3)
	require.Equal(t, "60", avg.String())

	// 1 split among 2 voters -> 0.5 exactly, no rounding needed.
	half := DecimalFromInt64(1).DivInt(2)
	require.Equal(t, "0.5", half.String())
}

func TestDecimalQuorumSplit(t *testing.T) {
	vault := DecimalFromInt64(100)
	votesSum := DecimalFromInt64(30).Add(DecimalFromInt64(60)).Add(DecimalFromInt64(90))
	avgPct := votesSum.DivInt(3)
	refund := avgPct.DivInt(100).Mul(vault)
	toOwner := vault.Sub(refund)
	require.Equal(t, "60", refund.String())
	require.Equal(t, "40", toOwner.String())
	require.Equal(t, vault.String(), refund.Add(toOwner).String())
}

func TestVaultDepositTakeAndTakeAll(t *testing.T) {
	v := NewVault("USD")
	require.NoError(t, v.Deposit(NewBucket("USD", DecimalFromInt64(20))))
	require.Equal(t, "20", v.Amount().String())

	bucket, err := v.Take(DecimalFromInt64(5))
	require.NoError(t, err)
	require.Equal(t, "5", bucket.Amount.String())
	require.Equal(t, "15", v.Amount().String())

	_, err = v.Take(DecimalFromInt64(1000))
	require.ErrorIs(t, err, ErrInsufficientFunds)

	remainder := v.TakeAll()
	require.Equal(t, "15", remainder.Amount.String())
	require.True(t, v.Amount().IsZero())
}

func TestVaultWrongCurrency(t *testing.T) {
	v := NewVault("USD")
	err := v.Deposit(NewBucket("EUR", DecimalFromInt64(1)))
	require.ErrorIs(t, err, ErrWrongCurrency)
}
