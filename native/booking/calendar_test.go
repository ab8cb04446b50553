package booking

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalendarAddOrModifyInsertVsUpdate(t *testing.T) {
	c := NewCalendar()
	price := DecimalFromInt64(10)

	inserted, err := c.AddOrModify(0, 100, true, price, true)
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = c.AddOrModify(0, 100, true, DecimalFromInt64(20), true)
	require.NoError(t, err)
	require.False(t, inserted)
}

func TestCalendarAddOrModifyRejectsMissingPriceWhenAvailable(t *testing.T) {
	c := NewCalendar()
	_, err := c.AddOrModify(0, 100, true, Decimal{}, false)
	require.ErrorIs(t, err, ErrBadArgument)
}

func TestCalendarPruneNeverPanicsOnSmallIndices(t *testing.T) {
	c := NewCalendar()
	require.NotPanics(t, func() {
		c.Prune(50)
	})

	_, err := c.AddOrModify(0, 100, true, DecimalFromInt64(10), true)
	require.NoError(t, err)
	require.NotPanics(t, func() {
		c.Prune(50)
	})
	require.NotPanics(t, func() {
		c.Prune(150)
	})
}

func TestCalendarPriceIntervalFlatRate(t *testing.T) {
	c := NewCalendar()
	_, err := c.AddOrModify(0, 0, true, DecimalFromInt64(10), true)
	require.NoError(t, err)

	total, err := c.PriceInterval(0, 300, 100)
	require.NoError(t, err)
	require.Equal(t, "30", total.String())
}

func TestCalendarPriceIntervalWalksPriceChange(t *testing.T) {
	c := NewCalendar()
	_, err := c.AddOrModify(0, 0, true, DecimalFromInt64(10), true)
	require.NoError(t, err)
	_, err = c.AddOrModify(0, 200, true, DecimalFromInt64(20), true)
	require.NoError(t, err)

	// [0,100): 1 slot @10 = 10. [100,200): 1 slot @10 = 10. [200,400): 2 slots @20 = 40.
	total, err := c.PriceInterval(0, 400, 100)
	require.NoError(t, err)
	require.Equal(t, "60", total.String())
}

func TestCalendarPriceIntervalRejectsUnavailable(t *testing.T) {
	c := NewCalendar()
	_, err := c.AddOrModify(0, 0, false, Decimal{}, false)
	require.NoError(t, err)

	_, err = c.PriceInterval(0, 100, 100)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestCalendarPriceIntervalRejectsMisalignment(t *testing.T) {
	c := NewCalendar()
	_, err := c.AddOrModify(0, 0, true, DecimalFromInt64(10), true)
	require.NoError(t, err)

	_, err = c.PriceInterval(50, 150, 100)
	require.ErrorIs(t, err, ErrMisaligned)
}

func TestCalendarPriceIntervalRejectsNoAvailability(t *testing.T) {
	c := NewCalendar()
	_, err := c.PriceInterval(0, 100, 100)
	require.ErrorIs(t, err, ErrNoAvailability)
}
