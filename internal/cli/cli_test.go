package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/smokyabdulrahman/prayer-times/internal/astro"
	"github.com/smokyabdulrahman/prayer-times/internal/config"
	"github.com/smokyabdulrahman/prayer-times/internal/display"
	"github.com/smokyabdulrahman/prayer-times/internal/geo"
	"github.com/smokyabdulrahman/prayer-times/internal/prayer"
	"github.com/smokyabdulrahman/prayer-times/internal/schedule"
)

var mecca = geo.Coordinate{Latitude: 21.3891, Longitude: 39.8579}

// testEnv isolates config, cache and clock for one test.
type testEnv struct {
	t        *testing.T
	cacheDir string
	xdg      string
}

// newTestEnv points config and cache at temp dirs and freezes the clock at now.
func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{
		config.EnvLatitude, config.EnvLongitude, config.EnvTimezone, config.EnvMethod,
		config.EnvMQTTBroker, config.EnvRedisAddr, config.EnvRedisPassword, config.EnvLogLevel,
	} {
		t.Setenv(k, "")
	}

	prevColor := display.Enabled()
	display.SetEnabled(false)
	prevNow := nowFunc
	nowFunc = func() time.Time { return now }
	t.Cleanup(func() {
		display.SetEnabled(prevColor)
		nowFunc = prevNow
		loadedConfig = nil
	})

	return &testEnv{t: t, cacheDir: t.TempDir(), xdg: xdg}
}

// run executes the CLI in-process and returns stdout and stderr.
func (e *testEnv) run(args ...string) (string, string, error) {
	e.t.Helper()
	var stdout, stderr bytes.Buffer
	root := NewRootCmd("v1.2.3-test")
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append(args, "--cache-dir", e.cacheDir, "--env-file", filepath.Join(e.xdg, "missing.env")))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// mustRun is run that fails the test on error.
func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, errOut, err := e.run(args...)
	if err != nil {
		e.t.Fatalf("%v failed: %v\nstderr: %s", args, err, errOut)
	}
	return out
}

var meccaArgs = []string{"--latitude", "21.3891", "--longitude", "39.8579", "--timezone", "Asia/Riyadh"}

func withMecca(args ...string) []string {
	return append(args, meccaArgs...)
}

func riyadh(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Riyadh")
	if err != nil {
		t.Fatal(err)
	}
	return loc
}

// noon is 12:00 in Mecca on 15 June 2024, before dhuhr.
func noon(t *testing.T) time.Time {
	return time.Date(2024, 6, 15, 12, 0, 0, 0, riyadh(t))
}

func meccaTimes(t *testing.T, date time.Time) prayer.Times {
	t.Helper()
	times, err := astro.Compute(date, mecca, astro.NewParameters(astro.MuslimWorldLeague))
	if err != nil {
		t.Fatal(err)
	}
	return times
}

func TestVersionFlag(t *testing.T) {
	newTestEnv(t, noon(t))
	var stdout bytes.Buffer
	root := NewRootCmd("v1.2.3-test")
	root.SetOut(&stdout)
	root.SetArgs([]string{"--version"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}

	got := strings.TrimSpace(stdout.String())
	want := "prayer-times version v1.2.3-test"
	if got != want {
		t.Errorf("--version = %q, want %q", got, want)
	}
}

func TestPrintVersion(t *testing.T) {
	if got := PrintVersion("v1.0.0"); got != "prayer-times v1.0.0\n" {
		t.Errorf("PrintVersion() = %q", got)
	}
}

func TestMethodsSubcommand(t *testing.T) {
	env := newTestEnv(t, noon(t))
	out := env.mustRun("methods")

	for _, m := range []string{"Muslim World League", "Umm Al-Qura", "umm-al-qura", "isna", "Fajr 18.5°"} {
		if !strings.Contains(out, m) {
			t.Errorf("methods output missing %q", m)
		}
	}
}

func TestMethodsSubcommand_JSON(t *testing.T) {
	env := newTestEnv(t, noon(t))
	out := env.mustRun("methods", "--json")

	var methods []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(out), &methods); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(methods) != len(astro.Methods) {
		t.Fatalf("got %d methods, want %d", len(methods), len(astro.Methods))
	}
	if methods[0].ID != "mwl" {
		t.Errorf("first method = %q, want mwl", methods[0].ID)
	}
}

func TestConfigSubcommands(t *testing.T) {
	env := newTestEnv(t, noon(t))

	out := env.mustRun("config", "set", "method", "umm-al-qura")
	if strings.TrimSpace(out) != "Set method = umm-al-qura" {
		t.Errorf("config set output = %q", out)
	}

	if got := strings.TrimSpace(env.mustRun("config", "get", "method")); got != "umm-al-qura" {
		t.Errorf("config get method = %q, want umm-al-qura", got)
	}

	path := strings.TrimSpace(env.mustRun("config", "path"))
	if !strings.HasPrefix(path, env.xdg) {
		t.Errorf("config path %q not under %q", path, env.xdg)
	}

	show := env.mustRun("config")
	if !strings.Contains(show, "umm-al-qura (Umm Al-Qura University, Makkah)") {
		t.Errorf("config show missing method label:\n%s", show)
	}

	out = env.mustRun("config", "reset")
	if !strings.Contains(out, "reset") {
		t.Errorf("config reset output = %q", out)
	}
	if got := strings.TrimSpace(env.mustRun("config", "get", "method")); got != "" {
		t.Errorf("after reset, method = %q, want empty", got)
	}
}

func TestConfigSet_PairsAndUnset(t *testing.T) {
	env := newTestEnv(t, noon(t))

	out := env.mustRun("config", "set", "azan_offset.maghrib", "3", "mute_azan.fajr", "true")
	if !strings.Contains(out, "Set azan_offset.maghrib = 3") || !strings.Contains(out, "Set mute_azan.fajr = true") {
		t.Errorf("config set output = %q", out)
	}

	show := env.mustRun("config")
	for _, want := range []string{"Maghrib  +3m", "+10m", "muted", "(not set)"} {
		if !strings.Contains(show, want) {
			t.Errorf("config show missing %q:\n%s", want, show)
		}
	}

	var stored config.Config
	if err := json.Unmarshal([]byte(env.mustRun("config", "--json")), &stored); err != nil {
		t.Fatal(err)
	}
	if stored.AzanOffsets["maghrib"] != 3 || !stored.MuteAzan["fajr"] {
		t.Errorf("stored config = %+v", stored)
	}

	env.mustRun("config", "unset", "azan_offset.maghrib")
	if got := strings.TrimSpace(env.mustRun("config", "get", "azan_offset.maghrib")); got != "" {
		t.Errorf("after unset, azan_offset.maghrib = %q", got)
	}
	if got := strings.TrimSpace(env.mustRun("config", "get", "mute_azan.fajr")); got != "true" {
		t.Errorf("unset touched mute_azan.fajr: %q", got)
	}
}

func TestConfigSet_NegativeValues(t *testing.T) {
	env := newTestEnv(t, noon(t))

	env.mustRun("config", "set", "azan_offset.fajr", "-5")
	env.mustRun("config", "set", "latitude", "-33.86", "longitude", "-70.66")

	want := map[string]string{
		"azan_offset.fajr": "-5",
		"latitude":         "-33.86",
		"longitude":        "-70.66",
	}
	for key, val := range want {
		if got := strings.TrimSpace(env.mustRun("config", "get", key)); got != val {
			t.Errorf("config get %s = %q, want %q", key, got, val)
		}
	}
	if show := env.mustRun("config"); !strings.Contains(show, "-5m") {
		t.Errorf("config show missing -5m:\n%s", show)
	}
}

func TestConfigSet_AllOrNothing(t *testing.T) {
	env := newTestEnv(t, noon(t))

	if _, _, err := env.run("config", "set", "method", "isna", "latitude", "200"); err == nil {
		t.Fatal("expected error for invalid latitude")
	}
	if got := strings.TrimSpace(env.mustRun("config", "get", "method")); got != "" {
		t.Errorf("method = %q, want nothing saved", got)
	}
	if _, _, err := env.run("config", "set", "method"); err == nil {
		t.Error("expected error for odd argument count")
	}
}

func TestConfigSet_Invalid(t *testing.T) {
	env := newTestEnv(t, noon(t))

	tests := [][]string{
		{"config", "set", "method", "jafari"},
		{"config", "set", "latitude", "91"},
		{"config", "set", "nope", "1"},
		{"config", "get", "nope"},
	}
	for _, args := range tests {
		if _, _, err := env.run(args...); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestToday_JSON(t *testing.T) {
	env := newTestEnv(t, noon(t))
	out := env.mustRun(withMecca("--json")...)

	var got todayJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}

	want := meccaTimes(t, time.Date(2024, 6, 15, 0, 0, 0, 0, riyadh(t)))
	if got.Timings["dhuhr"] != want.Dhuhr.Format("15:04") {
		t.Errorf("dhuhr = %q, want %q", got.Timings["dhuhr"], want.Dhuhr.Format("15:04"))
	}
	if got.Timings["isha"] != want.Isha.Format("15:04") {
		t.Errorf("isha = %q, want %q", got.Timings["isha"], want.Isha.Format("15:04"))
	}
	if got.Iqama["maghrib"] != want.Maghrib.Add(10*time.Minute).Format("15:04") {
		t.Errorf("maghrib iqama = %q", got.Iqama["maghrib"])
	}
	if _, ok := got.Iqama["sunrise"]; ok {
		t.Error("sunrise has no iqama")
	}
	if got.Location.Source != sourceConfigured || got.Location.Timezone != "Asia/Riyadh" {
		t.Errorf("location = %+v", got.Location)
	}
	if got.Method != "mwl" || got.Madhab != "shafi" {
		t.Errorf("method/madhab = %s/%s", got.Method, got.Madhab)
	}
	if got.Current != "sunrise" {
		t.Errorf("current = %q, want sunrise", got.Current)
	}

	if got.Next == nil || got.Next.Prayer != "dhuhr" {
		t.Fatalf("next = %+v, want dhuhr", got.Next)
	}
	wantCountdown := int(want.Dhuhr.Sub(noon(t)) / time.Second)
	if got.Next.Countdown != wantCountdown {
		t.Errorf("countdown = %d, want %d", got.Next.Countdown, wantCountdown)
	}
	if got.Sunnah == nil || got.Sunnah.MiddleOfTheNight == "" {
		t.Errorf("sunnah = %+v, want night divisions", got.Sunnah)
	}
}

func TestToday_AzanOffsetShiftsAdjusted(t *testing.T) {
	env := newTestEnv(t, noon(t))
	env.mustRun("config", "set", "azan_offset.isha", "5")

	var got todayJSON
	if err := json.Unmarshal([]byte(env.mustRun(withMecca("--json")...)), &got); err != nil {
		t.Fatal(err)
	}

	want := meccaTimes(t, time.Date(2024, 6, 15, 0, 0, 0, 0, riyadh(t)))
	if got.Timings["isha"] != want.Isha.Format("15:04") {
		t.Errorf("raw isha = %q", got.Timings["isha"])
	}
	if got.Adjusted["isha"] != want.Isha.Add(5*time.Minute).Format("15:04") {
		t.Errorf("adjusted isha = %q", got.Adjusted["isha"])
	}
}

func TestToday_Rich(t *testing.T) {
	env := newTestEnv(t, noon(t))
	out := env.mustRun(meccaArgs...)

	for _, want := range []string{"Prayer Times", "Saturday 15 June 2024", "Muslim World League", "Dhuhr in", "Iqama", "Qibla"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestToday_TwelveHour(t *testing.T) {
	env := newTestEnv(t, noon(t))
	out := env.mustRun(withMecca("--json", "--time-format", "12h")...)

	var got todayJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	want := meccaTimes(t, time.Date(2024, 6, 15, 0, 0, 0, 0, riyadh(t)))
	if got.Timings["maghrib"] != want.Maghrib.Format("3:04 PM") {
		t.Errorf("maghrib = %q, want %q", got.Timings["maghrib"], want.Maghrib.Format("3:04 PM"))
	}
}

func TestDefaultCoordinateThenCached(t *testing.T) {
	env := newTestEnv(t, noon(t))

	out, stderr, err := env.run("--json", "--log-level", "warn")
	if err != nil {
		t.Fatal(err)
	}
	var got todayJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if got.Location.Source != sourceDefault || got.Location.Latitude != geo.DefaultCoordinate.Latitude {
		t.Errorf("location = %+v, want default coordinate", got.Location)
	}
	if !strings.Contains(stderr, "default coordinate") {
		t.Errorf("expected a warning on stderr, got %q", stderr)
	}

	// A configured run records the coordinate for later runs.
	env.mustRun(withMecca("--json")...)
	out = env.mustRun("--json")
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if got.Location.Source != sourceCached || got.Location.Latitude != mecca.Latitude {
		t.Errorf("location = %+v, want cached Mecca", got.Location)
	}
}

func TestEnvironmentOverridesConfig(t *testing.T) {
	env := newTestEnv(t, noon(t))
	env.mustRun("config", "set", "latitude", "51.5")
	env.mustRun("config", "set", "longitude", "-0.12")

	t.Setenv(config.EnvLatitude, "21.3891")
	t.Setenv(config.EnvLongitude, "39.8579")
	t.Setenv(config.EnvTimezone, "Asia/Riyadh")

	var got todayJSON
	if err := json.Unmarshal([]byte(env.mustRun("--json")), &got); err != nil {
		t.Fatal(err)
	}
	if got.Location.Latitude != mecca.Latitude || got.Location.Timezone != "Asia/Riyadh" {
		t.Errorf("location = %+v, want Mecca from environment", got.Location)
	}

	// Flags beat the environment.
	if err := json.Unmarshal([]byte(env.mustRun("--json", "--latitude", "24.7136", "--longitude", "46.6753")), &got); err != nil {
		t.Fatal(err)
	}
	if got.Location.Latitude != 24.7136 {
		t.Errorf("latitude = %v, want flag value", got.Location.Latitude)
	}
}

func TestInvalidFlags(t *testing.T) {
	env := newTestEnv(t, noon(t))

	tests := [][]string{
		withMecca("--method", "jafari"),
		withMecca("--madhab", "maliki"),
		{"--latitude", "95", "--longitude", "0"},
		withMecca("--log-level", "loud"),
		withMecca("next", "--prayers", "Fajr,Tahajjud"),
	}
	for _, args := range tests {
		if _, _, err := env.run(args...); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestNext(t *testing.T) {
	want := meccaTimes(t, time.Date(2024, 6, 15, 0, 0, 0, 0, riyadh(t)))

	tests := []struct {
		name string
		now  time.Time
		args []string
		want string
	}{
		{"name and time", noon(t), []string{"--format", "name-and-time"}, "Dhuhr " + want.Dhuhr.Format("15:04")},
		{"template", noon(t), []string{"--format", "{{.ShortName}}"}, "D"},
		{"selection", noon(t), []string{"--format", "name-and-time", "--prayers", "Maghrib,Isha"}, "Maghrib " + want.Maghrib.Format("15:04")},
		{"after isha", time.Date(2024, 6, 15, 23, 30, 0, 0, riyadh(t)), []string{"--format", "{{.Name}}"}, "Fajr"},
		{"countdown", want.Dhuhr.Add(-10 * time.Minute), []string{"--format", "countdown"}, "Dhuhr in 10:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.now)
			got := env.mustRun(withMecca(append([]string{"next"}, tt.args...)...)...)
			if got != tt.want {
				t.Errorf("next = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNext_FullShowsIqama(t *testing.T) {
	want := meccaTimes(t, time.Date(2024, 6, 15, 0, 0, 0, 0, riyadh(t)))
	// Five minutes after the dhuhr azan, iqama is 15 minutes away.
	env := newTestEnv(t, want.Dhuhr.Add(5*time.Minute))

	got := env.mustRun(withMecca("next")...)
	if !strings.HasPrefix(got, "Asr ") {
		t.Errorf("next = %q, want Asr first", got)
	}
	if !strings.HasSuffix(got, "| Iqama in 15:00") {
		t.Errorf("next = %q, want iqama countdown", got)
	}
}

func TestNext_InvalidFormat(t *testing.T) {
	env := newTestEnv(t, noon(t))
	for _, format := range []string{"verbose", "{{.Nope}}", "{{.Name"} {
		if _, _, err := env.run(withMecca("next", "--format", format)...); err == nil {
			t.Errorf("--format %q: expected error", format)
		}
	}
}

func TestQibla_JSON(t *testing.T) {
	env := newTestEnv(t, noon(t))
	out := env.mustRun("qibla", "--json", "--latitude", "51.5074", "--longitude", "-0.1278")

	var got qiblaJSON
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if got.Direction < 118 || got.Direction > 120 {
		t.Errorf("direction = %v, want about 119", got.Direction)
	}
	if got.Compass != "ESE" {
		t.Errorf("compass = %q, want ESE", got.Compass)
	}
	if got.DistanceKm < 4740 || got.DistanceKm > 4840 {
		t.Errorf("distance = %v, want about 4790", got.DistanceKm)
	}
}

func TestQibla_Text(t *testing.T) {
	env := newTestEnv(t, noon(t))
	out := env.mustRun("qibla", "--latitude", "51.5074", "--longitude", "-0.1278")
	if !strings.Contains(out, "ESE") || !strings.Contains(out, "km to the Kaaba") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestSchedule_JSON(t *testing.T) {
	env := newTestEnv(t, noon(t))

	var got scheduleOutput
	if err := json.Unmarshal([]byte(env.mustRun(withMecca("schedule", "--format", "json")...)), &got); err != nil {
		t.Fatal(err)
	}
	if got.Date != "2024-06-15" {
		t.Errorf("date = %q", got.Date)
	}
	if len(got.Triggers) != 6 {
		t.Fatalf("got %d triggers, want 6", len(got.Triggers))
	}
	if len(got.Scheduled) != 0 {
		t.Errorf("nothing should be scheduled without a sink, got %v", got.Scheduled)
	}

	if err := json.Unmarshal([]byte(env.mustRun(withMecca("schedule", "--json", "--dhikr")...)), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Triggers) != 11 {
		t.Errorf("got %d triggers with dhikr, want 11", len(got.Triggers))
	}
}

func TestSchedule_YAML(t *testing.T) {
	env := newTestEnv(t, noon(t))
	out := env.mustRun(withMecca("schedule", "--format", "yaml")...)

	var got scheduleOutput
	if err := yaml.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid YAML: %v\n%s", err, out)
	}
	if len(got.Triggers) != 6 {
		t.Fatalf("got %d triggers, want 6", len(got.Triggers))
	}

	want := meccaTimes(t, time.Date(2024, 6, 15, 0, 0, 0, 0, riyadh(t)))
	found := false
	for _, tr := range got.Triggers {
		if tr.Identifier == schedule.Identifier(prayer.Maghrib) {
			found = true
			if tr.Clock() != want.Maghrib.Format("15:04") {
				t.Errorf("maghrib trigger at %s, want %s", tr.Clock(), want.Maghrib.Format("15:04"))
			}
		}
	}
	if !found {
		t.Errorf("no maghrib trigger in %+v", got.Triggers)
	}
}

func TestSchedule_MuteFromConfig(t *testing.T) {
	env := newTestEnv(t, noon(t))
	env.mustRun("config", "set", "mute_azan.fajr", "true")

	var got scheduleOutput
	if err := json.Unmarshal([]byte(env.mustRun(withMecca("schedule", "--json")...)), &got); err != nil {
		t.Fatal(err)
	}
	for _, tr := range got.Triggers {
		if tr.Identifier == schedule.Identifier(prayer.Fajr) && tr.SoundName() == schedule.AzanSound {
			t.Errorf("fajr azan should be muted, got sound %q", tr.SoundName())
		}
	}
}

func TestSchedule_LogSink(t *testing.T) {
	env := newTestEnv(t, noon(t))

	out := env.mustRun(withMecca("schedule", "--json", "--sink", "log")...)
	var got scheduleOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Scheduled) != 6 || len(got.Failed) != 0 {
		t.Errorf("scheduled=%v failed=%v, want 6 scheduled", got.Scheduled, got.Failed)
	}

	text := env.mustRun(withMecca("schedule", "--sink", "log")...)
	if !strings.Contains(text, "6 triggers scheduled") {
		t.Errorf("text output missing summary:\n%s", text)
	}
}

func TestSchedule_Errors(t *testing.T) {
	env := newTestEnv(t, noon(t))

	tests := []struct {
		args []string
		want string
	}{
		{withMecca("schedule", "--format", "xml"), "invalid format"},
		{withMecca("schedule", "--sink", "pigeon"), "unknown sink"},
		{withMecca("schedule", "--sink", "mqtt"), "mqtt_broker"},
		{withMecca("schedule", "--sink", "redis"), "redis_addr"},
	}
	for _, tt := range tests {
		_, _, err := env.run(tt.args...)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%v: err = %v, want %q", tt.args, err, tt.want)
		}
	}
}

func TestList_JSON(t *testing.T) {
	env := newTestEnv(t, noon(t))

	var got listJSONOutput
	if err := json.Unmarshal([]byte(env.mustRun(withMecca("list", "3", "--json")...)), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Days) != 3 {
		t.Fatalf("got %d days, want 3", len(got.Days))
	}
	if got.Days[0].Date != "2024-06-15" || got.Days[2].Date != "2024-06-17" {
		t.Errorf("dates = %s..%s", got.Days[0].Date, got.Days[2].Date)
	}

	want := meccaTimes(t, time.Date(2024, 6, 16, 0, 0, 0, 0, riyadh(t)))
	if got.Days[1].Timings["fajr"] != want.Fajr.Format("15:04") {
		t.Errorf("day 2 fajr = %q, want %q", got.Days[1].Timings["fajr"], want.Fajr.Format("15:04"))
	}
}

func TestWeekAndMonth(t *testing.T) {
	env := newTestEnv(t, noon(t))

	week := env.mustRun(withMecca("week")...)
	if !strings.Contains(week, "7 Days") || !strings.Contains(week, "Sat 15 Jun") || !strings.Contains(week, "Fri 21 Jun") {
		t.Errorf("unexpected week output:\n%s", week)
	}

	var got listJSONOutput
	if err := json.Unmarshal([]byte(env.mustRun(withMecca("month", "--json")...)), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Days) != 30 {
		t.Errorf("month has %d days, want 30", len(got.Days))
	}
}

func TestList_PolarDaysAreKept(t *testing.T) {
	// Tromsø at midsummer: the sun never sets, so every day is uncomputable.
	env := newTestEnv(t, time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC))

	var got listJSONOutput
	out := env.mustRun("list", "2", "--json", "--latitude", "69.6492", "--longitude", "18.9553", "--timezone", "UTC")
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Days) != 2 {
		t.Fatalf("got %d days, want 2", len(got.Days))
	}
	for _, d := range got.Days {
		if d.Error == "" || d.Timings != nil {
			t.Errorf("day %s = %+v, want an error entry", d.Date, d)
		}
	}
}

func TestQuery(t *testing.T) {
	env := newTestEnv(t, noon(t))
	want := meccaTimes(t, time.Date(2024, 6, 15, 0, 0, 0, 0, riyadh(t)))

	if got := env.mustRun(withMecca("query", "ASR")...); got != "Asr "+want.Asr.Format("15:04")+"\n" {
		t.Errorf("query asr = %q", got)
	}

	table := env.mustRun(withMecca("query", "fajr", "--days", "week")...)
	if !strings.Contains(table, "Sat 15 Jun") || !strings.Contains(table, "Fri 21 Jun") {
		t.Errorf("unexpected table:\n%s", table)
	}
}

func TestQuery_Midnight(t *testing.T) {
	env := newTestEnv(t, noon(t))
	day := time.Date(2024, 6, 15, 0, 0, 0, 0, riyadh(t))

	var got queryJSONOutput
	if err := json.Unmarshal([]byte(env.mustRun(withMecca("query", "midnight", "--days", "2", "--json")...)), &got); err != nil {
		t.Fatal(err)
	}
	if got.Prayer != "midnight" || len(got.Days) != 2 {
		t.Fatalf("got %+v", got)
	}

	sn, err := astro.ComputeSunnah(day, mecca, astro.NewParameters(astro.MuslimWorldLeague))
	if err != nil {
		t.Fatal(err)
	}
	if got.Days[0].Time != sn.MiddleOfTheNight.Format("15:04") {
		t.Errorf("midnight = %q, want %q", got.Days[0].Time, sn.MiddleOfTheNight.Format("15:04"))
	}
}

func TestQuery_Errors(t *testing.T) {
	env := newTestEnv(t, noon(t))

	for _, args := range [][]string{
		withMecca("query", "tahajjud"),
		withMecca("query", "fajr", "--days", "0"),
		withMecca("query", "fajr", "--days", "fortnight"),
		withMecca("query"),
		withMecca("list", "abc"),
	} {
		if _, _, err := env.run(args...); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestWatch(t *testing.T) {
	env := newTestEnv(t, noon(t))
	out := env.mustRun(withMecca("watch", "--count", "3", "--interval", "1ms", "--format", "{{.Name}}")...)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), out)
	}
	for _, l := range lines {
		if l != "Dhuhr" {
			t.Errorf("line = %q, want Dhuhr", l)
		}
	}
}

func TestWatch_InvalidFlags(t *testing.T) {
	env := newTestEnv(t, noon(t))
	if _, _, err := env.run(withMecca("watch", "--interval", "0s")...); err == nil {
		t.Error("expected error for zero interval")
	}
	if _, _, err := env.run(withMecca("watch", "--count", "-1")...); err == nil {
		t.Error("expected error for negative count")
	}
}

func TestParseDays(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"1", 1, false},
		{"week", 7, false},
		{"month", 30, false},
		{"366", 366, false},
		{"367", 0, true},
		{"0", 0, true},
		{"-3", 0, true},
		{"x", 0, true},
	}
	for _, tt := range tests {
		got, err := parseDays(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseDays(%q) = %d, %v; want %d, err=%v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	l, err := newLogger(&buf, "")
	if err != nil {
		t.Fatal(err)
	}
	l.Info().Msg("hidden")
	l.Warn().Msg("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("default level should be warn, got %q", buf.String())
	}

	buf.Reset()
	l, err = newLogger(&buf, "DEBUG")
	if err != nil {
		t.Fatal(err)
	}
	l.Debug().Msg("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("debug level not applied, got %q", buf.String())
	}

	if _, err := newLogger(&buf, "loud"); err == nil {
		t.Error("expected error for unknown level")
	}
}
