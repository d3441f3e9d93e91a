package period

import (
	"testing"
	"time"

	"github.com/hisabi/hisabi/internal/utils"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Run("should map any day of a month to the same period", func(t *testing.T) {
		// given
		first := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
		last := time.Date(2026, time.March, 31, 23, 59, 59, 0, time.UTC)

		// when
		p1 := Normalize(first)
		p2 := Normalize(last)

		// then
		assert.Equal(t, p1, p2)
		assert.Equal(t, Period{Year: 2026, Month: time.March}, p1)
	})

	t.Run("should use local components near a month boundary", func(t *testing.T) {
		// given
		kolkata, err := time.LoadLocation("Asia/Kolkata")
		assert.NoError(t, err)
		// 1st of April 02:00 IST is still 31st of March in UTC
		local := time.Date(2026, time.April, 1, 2, 0, 0, 0, kolkata)

		// when
		p := Normalize(local)

		// then
		assert.Equal(t, Period{Year: 2026, Month: time.April}, p)
	})
}

func TestNormalizeOrNow(t *testing.T) {
	clock := &utils.MockClock{FixedNow: time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)}

	t.Run("should use the clock when no date is given", func(t *testing.T) {
		p := NormalizeOrNow(nil, clock)
		assert.Equal(t, Period{Year: 2026, Month: time.March}, p)
	})

	t.Run("should prefer an explicit date", func(t *testing.T) {
		at := time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC)
		p := NormalizeOrNow(&at, clock)
		assert.Equal(t, Period{Year: 2026, Month: time.January}, p)
	})
}

func TestPeriod_Next(t *testing.T) {
	t.Run("should advance within a year", func(t *testing.T) {
		p := Period{Year: 2026, Month: time.May}
		assert.Equal(t, Period{Year: 2026, Month: time.June}, p.Next())
	})

	t.Run("should roll December over to January", func(t *testing.T) {
		p := Period{Year: 2026, Month: time.December}
		assert.Equal(t, Period{Year: 2027, Month: time.January}, p.Next())
	})
}

func TestPeriod_Start(t *testing.T) {
	p := Period{Year: 2026, Month: time.February}
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), p.Start())
}

func TestPeriod_Before(t *testing.T) {
	assert.True(t, Period{Year: 2025, Month: time.December}.Before(Period{Year: 2026, Month: time.January}))
	assert.True(t, Period{Year: 2026, Month: time.January}.Before(Period{Year: 2026, Month: time.February}))
	assert.False(t, Period{Year: 2026, Month: time.February}.Before(Period{Year: 2026, Month: time.February}))
}

func TestParse(t *testing.T) {
	t.Run("should parse YYYY-MM", func(t *testing.T) {
		p, err := Parse("2026-03")
		assert.NoError(t, err)
		assert.Equal(t, Period{Year: 2026, Month: time.March}, p)
	})

	t.Run("should parse a full date to its containing month", func(t *testing.T) {
		p, err := Parse("2026-03-17")
		assert.NoError(t, err)
		assert.Equal(t, Period{Year: 2026, Month: time.March}, p)
	})

	t.Run("should reject garbage", func(t *testing.T) {
		_, err := Parse("March 2026")
		assert.Error(t, err)
	})
}

func TestPeriod_String(t *testing.T) {
	assert.Equal(t, "2026-03", Period{Year: 2026, Month: time.March}.String())
	assert.Equal(t, "2025-12", Period{Year: 2025, Month: time.December}.String())
}
