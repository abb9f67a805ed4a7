package schedule

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smokyabdulrahman/prayer-times/internal/prayer"
)

func sampleTimes(t *testing.T) prayer.Times {
	t.Helper()
	at := func(hh, mm int) time.Time {
		return time.Date(2024, 6, 15, hh, mm, 0, 0, time.UTC)
	}
	return prayer.Times{
		Date:    at(0, 0),
		Fajr:    at(4, 13),
		Sunrise: at(5, 38),
		// Seconds are dropped from fire times.
		Dhuhr:   at(12, 22).Add(42 * time.Second),
		Asr:     at(15, 41),
		Maghrib: at(19, 4),
		Isha:    at(20, 24),
	}
}

func identifiers(triggers []Trigger) []string {
	ids := make([]string, len(triggers))
	for i, tr := range triggers {
		ids[i] = tr.Identifier
	}
	return ids
}

func TestTranslate_AllSlots(t *testing.T) {
	triggers := Translate(sampleTimes(t), nil, nil)
	require.Len(t, triggers, 6)

	assert.Equal(t, []string{"azan_fajr", "sunrise", "azan_dhuhr", "azan_asr", "azan_maghrib", "azan_isha"}, identifiers(triggers))
	for _, tr := range triggers {
		assert.True(t, tr.Repeats, tr.Identifier)
	}

	dhuhr := triggers[2]
	assert.Equal(t, "12:22", dhuhr.Clock())
	assert.Equal(t, "Dhuhr Azan", dhuhr.Title)
	assert.Equal(t, AzanSound, dhuhr.SoundName())
}

func TestTranslate_SunriseSilentTitleOnly(t *testing.T) {
	triggers := Translate(sampleTimes(t), nil, nil)
	sunrise := triggers[1]

	assert.Equal(t, SunriseIdentifier, sunrise.Identifier)
	assert.Equal(t, "Sunrise", sunrise.Title)
	assert.Empty(t, sunrise.Body)
	assert.Nil(t, sunrise.Sound)
}

func TestTranslate_AppliesOffsets(t *testing.T) {
	azan := prayer.Offsets{prayer.Fajr: -5, prayer.Sunrise: 2, prayer.Isha: 40}
	triggers := Translate(sampleTimes(t), azan, nil)

	assert.Equal(t, "04:08", triggers[0].Clock())
	assert.Equal(t, "05:40", triggers[1].Clock())
	assert.Equal(t, "21:04", triggers[5].Clock())
}

func TestTranslate_CrossesMidnight(t *testing.T) {
	times := sampleTimes(t)
	times.Isha = time.Date(2024, 6, 15, 23, 50, 0, 0, time.UTC)

	triggers := Translate(times, prayer.Offsets{prayer.Isha: 20}, nil)
	isha := triggers[5]
	assert.Equal(t, 0, isha.Hour)
	assert.Equal(t, 10, isha.Minute)
}

func TestTranslate_MuteSunriseNotification(t *testing.T) {
	times := sampleTimes(t)
	all := Translate(times, nil, nil)
	muted := Translate(times, nil, MuteConfig{prayer.Sunrise: {Notification: true}})

	require.Len(t, muted, 5)
	assert.NotContains(t, identifiers(muted), SunriseIdentifier)

	var rest []Trigger
	for _, tr := range all {
		if tr.Identifier != SunriseIdentifier {
			rest = append(rest, tr)
		}
	}
	assert.Equal(t, rest, muted)
}

func TestTranslate_MuteAzanKeepsNotification(t *testing.T) {
	triggers := Translate(sampleTimes(t), nil, MuteConfig{
		prayer.Asr:   {Azan: true},
		prayer.Isha:  {Notification: true},
		prayer.Fajr:  {Azan: true, Notification: false},
		prayer.Dhuhr: {},
	})

	require.Len(t, triggers, 5)
	assert.NotContains(t, identifiers(triggers), "azan_isha")
	for _, tr := range triggers {
		switch tr.Identifier {
		case "azan_asr", "azan_fajr", SunriseIdentifier:
			assert.Nil(t, tr.Sound, tr.Identifier)
		default:
			assert.Equal(t, AzanSound, tr.SoundName(), tr.Identifier)
		}
	}
}

func TestTranslate_Idempotent(t *testing.T) {
	times := sampleTimes(t)
	opts := Options{Azan: prayer.Offsets{prayer.Maghrib: 3}, Dhikr: true}
	assert.Equal(t, Plan(times, opts), Plan(times, opts))
}

func TestTrigger_JSONShape(t *testing.T) {
	triggers := Translate(sampleTimes(t), nil, nil)
	b, err := json.Marshal(triggers[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"identifier":"sunrise","hour":5,"minute":38,"repeats":true,"title":"Sunrise","body":"","sound":null}`, string(b))
}

func TestDhikrTriggers(t *testing.T) {
	triggers := DhikrTriggers(sampleTimes(t), prayer.Offsets{prayer.Fajr: 5})
	require.Len(t, triggers, 5)

	byID := map[string]Trigger{}
	for _, tr := range triggers {
		byID[tr.Identifier] = tr
		assert.Equal(t, DhikrTitle, tr.Title)
		assert.Equal(t, DefaultSound, tr.SoundName())
		assert.True(t, tr.Repeats)
	}

	assert.Equal(t, "04:48", byID["dhikr_fajr"].Clock())    // 04:13 +5 +30
	assert.Equal(t, "12:02", byID["dhikr_dhuhr"].Clock())   // 12:22 -20
	assert.Equal(t, "18:34", byID["dhikr_maghrib"].Clock()) // 19:04 -30
	assert.Equal(t, "20:04", byID["dhikr_isha"].Clock())
	assert.Equal(t, "Time for your morning adhkar", byID["dhikr_fajr"].Body)
}

func TestDhikrBody_Rotation(t *testing.T) {
	// Day 1: dhuhr starts at index 1, asr at 2, isha at 4 % 3 = 1.
	assert.Equal(t, dhikrTexts[prayer.Dhuhr][1], DhikrBody(prayer.Dhuhr, 1))
	assert.Equal(t, dhikrTexts[prayer.Asr][2], DhikrBody(prayer.Asr, 1))
	assert.Equal(t, dhikrTexts[prayer.Isha][1], DhikrBody(prayer.Isha, 1))

	// Day 2 moves each one along.
	assert.Equal(t, dhikrTexts[prayer.Dhuhr][2], DhikrBody(prayer.Dhuhr, 2))
	assert.Equal(t, dhikrTexts[prayer.Asr][0], DhikrBody(prayer.Asr, 2))

	for d := 1; d <= 31; d++ {
		assert.Equal(t, dhikrTexts[prayer.Maghrib][0], DhikrBody(prayer.Maghrib, d))
	}
	assert.Empty(t, DhikrBody(prayer.Sunrise, 1))
}

// fakeNotifier records registrations and fails the configured identifiers.
type fakeNotifier struct {
	mu        sync.Mutex
	pending   map[string]Trigger
	fail      map[string]bool
	removeErr error
	removes   int
}

func newFakeNotifier(fail ...string) *fakeNotifier {
	f := &fakeNotifier{pending: map[string]Trigger{}, fail: map[string]bool{}}
	for _, id := range fail {
		f.fail[id] = true
	}
	return f
}

func (f *fakeNotifier) RemoveAll(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removes++
	f.pending = map[string]Trigger{}
	return nil
}

func (f *fakeNotifier) Add(ctx context.Context, t Trigger) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[t.Identifier] {
		return errors.New("permission denied")
	}
	f.pending[t.Identifier] = t
	return nil
}

func TestScheduler_SyncReplacesAll(t *testing.T) {
	n := newFakeNotifier()
	s := New(n, zerolog.Nop())
	times := sampleTimes(t)

	_, err := s.Sync(context.Background(), times, Options{Dhikr: true})
	require.NoError(t, err)
	assert.Len(t, n.pending, 11)

	res, err := s.Sync(context.Background(), times, Options{Mutes: MuteConfig{prayer.Sunrise: {Notification: true}}})
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, 2, n.removes)
	assert.Len(t, n.pending, 5)
	assert.Equal(t, []string{"azan_asr", "azan_dhuhr", "azan_fajr", "azan_isha", "azan_maghrib"}, res.Scheduled)
}

func TestScheduler_SyncIdempotent(t *testing.T) {
	n := newFakeNotifier()
	s := New(n, zerolog.Nop())
	times := sampleTimes(t)
	opts := Options{Azan: prayer.Offsets{prayer.Asr: 4}}

	_, err := s.Sync(context.Background(), times, opts)
	require.NoError(t, err)
	first := map[string]Trigger{}
	for k, v := range n.pending {
		first[k] = v
	}

	_, err = s.Sync(context.Background(), times, opts)
	require.NoError(t, err)
	assert.Equal(t, first, n.pending)
}

func TestScheduler_FailureDoesNotAbortBatch(t *testing.T) {
	var buf bytes.Buffer
	n := newFakeNotifier("azan_dhuhr")
	s := New(n, zerolog.New(&buf))

	res, err := s.Sync(context.Background(), sampleTimes(t), Options{})
	require.NoError(t, err)

	assert.False(t, res.OK())
	assert.Len(t, res.Scheduled, 5)
	require.Contains(t, res.Failed, "azan_dhuhr")
	assert.Len(t, n.pending, 5)
	assert.True(t, strings.Contains(buf.String(), `"identifier":"azan_dhuhr"`), buf.String())
}

func TestScheduler_RemoveAllError(t *testing.T) {
	n := newFakeNotifier()
	n.removeErr = errors.New("center unavailable")
	s := New(n, zerolog.Nop())

	_, err := s.Sync(context.Background(), sampleTimes(t), Options{})
	require.Error(t, err)
	assert.Empty(t, n.pending)
}

func TestIdentifiers(t *testing.T) {
	ids := Identifiers()
	assert.Len(t, ids, 11)
	assert.Contains(t, ids, SunriseIdentifier)
	assert.Contains(t, ids, "azan_maghrib")
	assert.Contains(t, ids, "dhikr_isha")
	assert.NotContains(t, ids, "dhikr_sunrise")
}
