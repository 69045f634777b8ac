package statschart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func absoluteProps(start, end time.Time) Props {
	return Props{Organization: "acme", Start: start, End: end}
}

func TestShouldUpdate_ReconstructedDatesAreEqual(t *testing.T) {
	prev := absoluteProps(
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
	)
	next := absoluteProps(
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
	)

	assert.False(t, ShouldUpdate(prev, next))
}

func TestShouldUpdate_SameInstantOtherZone(t *testing.T) {
	plus2 := time.FixedZone("UTC+2", 2*60*60)
	prev := absoluteProps(
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
	)
	next := absoluteProps(
		time.Date(2020, 1, 1, 2, 0, 0, 0, plus2),
		time.Date(2020, 1, 2, 2, 0, 0, 0, plus2),
	)

	assert.False(t, ShouldUpdate(prev, next))
}

func TestShouldUpdate_OneSecondLater(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)

	assert.True(t, ShouldUpdate(absoluteProps(start, end), absoluteProps(start.Add(time.Second), end)))
	assert.True(t, ShouldUpdate(absoluteProps(start, end), absoluteProps(start, end.Add(time.Second))))
}

func TestShouldUpdate_Period(t *testing.T) {
	assert.False(t, ShouldUpdate(Props{Period: "14d"}, Props{Period: "14d"}))
	assert.True(t, ShouldUpdate(Props{Period: "14d"}, Props{Period: "24h"}))

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, ShouldUpdate(Props{Period: "14d"}, absoluteProps(start, start.Add(time.Hour))))
}

func TestShouldUpdate_SuppressedWhileZooming(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	next := absoluteProps(start.Add(time.Hour), start.Add(2*time.Hour))
	next.Zooming = true

	assert.False(t, ShouldUpdate(absoluteProps(start, start.Add(time.Hour)), next))
}

func TestShouldUpdate_IgnoresUnrelatedFields(t *testing.T) {
	prev := Props{Organization: "acme", Period: "7d"}
	next := Props{Organization: "acme", Period: "7d", Category: "error", OnZoom: nil}

	assert.False(t, ShouldUpdate(prev, next))
}
