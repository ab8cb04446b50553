package booking

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestItem(t *testing.T) *Item {
	t.Helper()
	it, err := NewItem(1, 10, "USD", 100, 50)
	require.NoError(t, err)
	_, err = it.AddOrModifyAvailabilityInterval(0, 0, true, DecimalFromInt64(100), true)
	require.NoError(t, err)
	return it
}

func TestNewItemRejectsBadArguments(t *testing.T) {
	_, err := NewItem(1, 10, "USD", 0, 0)
	require.ErrorIs(t, err, ErrBadArgument)

	_, err = NewItem(1, 10, "USD", 100, -1)
	require.ErrorIs(t, err, ErrBadArgument)
}

func TestItemNewReservationHappyPath(t *testing.T) {
	it := newTestItem(t)
	bucket := NewBucket("USD", DecimalFromInt64(500))

	res, change, err := it.NewReservation(1, 20, 1000, 1300, 0, bucket)
	require.NoError(t, err)
	require.Equal(t, "300", res.Vault.Amount().String())
	require.Equal(t, "200", change.Amount.String())
	require.Equal(t, ReservationBooked, res.Status)
}

func TestItemNewReservationRejectsConflict(t *testing.T) {
	it := newTestItem(t)
	bucket := NewBucket("USD", DecimalFromInt64(500))

	_, _, err := it.NewReservation(1, 20, 1000, 1300, 0, bucket)
	require.NoError(t, err)

	_, _, err = it.NewReservation(2, 21, 1100, 1400, 0, bucket)
	require.ErrorIs(t, err, ErrConflict)
}

func TestItemNewReservationAllowsRebookAfterCancellation(t *testing.T) {
	it := newTestItem(t)
	bucket := NewBucket("USD", DecimalFromInt64(500))

	res, _, err := it.NewReservation(1, 20, 1000, 1300, 0, bucket)
	require.NoError(t, err)
	_, err = res.CancellationByCustomer(0)
	require.NoError(t, err)

	_, _, err = it.NewReservation(2, 21, 1100, 1400, 0, bucket)
	require.NoError(t, err)
}

func TestItemNewReservationRejectsMisalignedLength(t *testing.T) {
	it := newTestItem(t)
	bucket := NewBucket("USD", DecimalFromInt64(500))

	_, _, err := it.NewReservation(1, 20, 1000, 1050, 0, bucket)
	require.ErrorIs(t, err, ErrBadArgument)
}

func TestItemNewReservationRejectsInsufficientFunds(t *testing.T) {
	it := newTestItem(t)
	bucket := NewBucket("USD", DecimalFromInt64(10))

	_, _, err := it.NewReservation(1, 20, 1000, 1300, 0, bucket)
	require.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestItemNewReservationRejectsWrongCurrency(t *testing.T) {
	it := newTestItem(t)
	bucket := NewBucket("EUR", DecimalFromInt64(500))

	_, _, err := it.NewReservation(1, 20, 1000, 1300, 0, bucket)
	require.ErrorIs(t, err, ErrWrongCurrency)
}

func TestItemGetReservationNotFound(t *testing.T) {
	it := newTestItem(t)
	_, err := it.GetReservation(99)
	require.ErrorIs(t, err, ErrReservationNotFound)
}
