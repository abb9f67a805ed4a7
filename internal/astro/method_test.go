package astro

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smokyabdulrahman/prayer-times/internal/prayer"
)

func TestParseMethod(t *testing.T) {
	for _, info := range Methods {
		got, err := ParseMethod(info.Slug)
		require.NoError(t, err, info.Slug)
		assert.Equal(t, info.Method, got)
		assert.Equal(t, info.Slug, got.String())
	}

	got, err := ParseMethod(" ISNA ")
	require.NoError(t, err)
	assert.Equal(t, NorthAmerica, got)

	_, err = ParseMethod("jafari")
	assert.True(t, errors.Is(err, ErrUnknownMethod))
}

func TestParseMadhab(t *testing.T) {
	m, err := ParseMadhab("Hanafi")
	require.NoError(t, err)
	assert.Equal(t, Hanafi, m)
	assert.Equal(t, 2.0, m.ShadowFactor())

	m, err = ParseMadhab("shafi")
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.ShadowFactor())

	_, err = ParseMadhab("maliki-ish")
	assert.ErrorIs(t, err, ErrUnknownMadhab)
}

func TestParseHighLatitudeRule(t *testing.T) {
	for _, r := range []HighLatitudeRule{MiddleOfTheNight, SeventhOfTheNight, TwilightAngle} {
		got, err := ParseHighLatitudeRule(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}
	_, err := ParseHighLatitudeRule("angle-based")
	assert.ErrorIs(t, err, ErrUnknownHighLatitudeRule)
}

func TestRecommendedHighLatitudeRule(t *testing.T) {
	assert.Equal(t, MiddleOfTheNight, RecommendedHighLatitudeRule(21.4))
	assert.Equal(t, MiddleOfTheNight, RecommendedHighLatitudeRule(48))
	assert.Equal(t, SeventhOfTheNight, RecommendedHighLatitudeRule(51.5))
	assert.Equal(t, SeventhOfTheNight, RecommendedHighLatitudeRule(-55))
}

func TestNewParameters(t *testing.T) {
	tests := []struct {
		method   Method
		fajr     float64
		isha     float64
		interval int
	}{
		{MuslimWorldLeague, 18, 17, 0},
		{Egyptian, 19.5, 17.5, 0},
		{Karachi, 18, 18, 0},
		{UmmAlQura, 18.5, 0, 90},
		{NorthAmerica, 15, 15, 0},
		{Qatar, 18, 0, 90},
		{Tehran, 17.7, 14, 0},
	}
	for _, tt := range tests {
		t.Run(tt.method.String(), func(t *testing.T) {
			p := NewParameters(tt.method)
			assert.Equal(t, tt.fajr, p.FajrAngle)
			assert.Equal(t, tt.isha, p.IshaAngle)
			assert.Equal(t, tt.interval, p.IshaInterval)
			assert.Equal(t, Shafi, p.Madhab)
		})
	}
	assert.Equal(t, 4.5, NewParameters(Tehran).MaghribAngle)
	assert.Equal(t, 1, NewParameters(MuslimWorldLeague).adjustment(prayer.Dhuhr))
}

func TestParameters_Adjustment(t *testing.T) {
	p := NewParameters(Turkey)
	p.Adjustments = prayer.Offsets{prayer.Dhuhr: 2, prayer.Isha: 1}

	assert.Equal(t, 7, p.adjustment(prayer.Dhuhr))
	assert.Equal(t, -7, p.adjustment(prayer.Sunrise))
	assert.Equal(t, 1, p.adjustment(prayer.Isha))
	assert.Equal(t, 0, p.adjustment(prayer.Fajr))
}

func TestNightPortions(t *testing.T) {
	p := NewParameters(MuslimWorldLeague)
	f, i := p.nightPortions()
	assert.Equal(t, 0.5, f)
	assert.Equal(t, 0.5, i)

	p.HighLatitudeRule = TwilightAngle
	f, i = p.nightPortions()
	assert.InDelta(t, 0.3, f, 1e-12)
	assert.InDelta(t, 17.0/60, i, 1e-12)
}
