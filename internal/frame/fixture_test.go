package frame_test

import (
	"errors"
	"testing"
	"time"

	"picframe/internal/database"
	"picframe/internal/frame"
	"picframe/internal/state"
	"picframe/internal/testutil"
)

// fixture wires a FrameService over in-memory stores.
type fixture struct {
	svc      *frame.FrameService
	metadata *state.MetadataStore
	display  frame.DisplayStore
	images   *testutil.MockImageDirectory
	renderer *testutil.RecordingRenderer
	history  *database.SQLiteHistory
	clock    *testutil.StubClock
	rng      *testutil.ScriptedRandom
}

type fixtureOption func(*fixture)

func withDisplayStore(d frame.DisplayStore) fixtureOption {
	return func(f *fixture) { f.display = d }
}

func withoutHistory() fixtureOption {
	return func(f *fixture) { f.history = nil }
}

func newFixture(t *testing.T, draws []int, opts ...fixtureOption) *fixture {
	t.Helper()

	clock := testutil.FixedClock()
	logger := frame.NewNopLogger()
	f := &fixture{
		metadata: state.NewMemoryMetadataStore(false, clock, logger),
		display:  state.NewMemoryDisplayStore(false, clock, logger),
		images:   testutil.NewMockImageDirectory(),
		renderer: testutil.NewRecordingRenderer(),
		history:  testutil.NewTestHistory(t),
		clock:    clock,
		rng:      testutil.NewScriptedRandom(draws...),
	}
	for _, opt := range opts {
		opt(f)
	}

	var history frame.History
	if f.history != nil {
		history = f.history
	}
	f.svc = frame.NewFrameService(f.metadata, f.display, f.images, f.renderer, history, logger, clock, f.rng, testutil.NewStubIDGenerator())
	return f
}

// at returns the fixed test date at the given wall-clock hour and minute.
func at(hour, minute int) time.Time {
	return time.Date(2024, 1, 15, hour, minute, 0, 0, time.Local)
}

func (f *fixture) addImage(t *testing.T, name, uploader string, uploaded time.Time) {
	t.Helper()
	f.images.AddFile(name, []byte("image:"+name), uploaded)
	if uploader == "" {
		return
	}
	saved := f.clock.Now()
	f.clock.Advance(uploaded.Sub(saved))
	defer f.clock.Advance(saved.Sub(uploaded))
	if err := f.metadata.RecordUpload(name, uploader); err != nil {
		t.Fatalf("RecordUpload(%s) error = %v", name, err)
	}
}

func (f *fixture) current(t *testing.T) string {
	t.Helper()
	current, err := f.display.GetCurrent()
	if err != nil {
		t.Fatalf("GetCurrent() error = %v", err)
	}
	return current
}

func (f *fixture) setCurrent(t *testing.T, name string) {
	t.Helper()
	if err := f.display.SetCurrent(name); err != nil {
		t.Fatalf("SetCurrent(%q) error = %v", name, err)
	}
}

// brokenDisplayStore fails every read and records writes.
type brokenDisplayStore struct {
	written []string
}

var errDisplayUnreadable = errors.New("display state unreadable")

func (b *brokenDisplayStore) GetCurrent() (string, error) { return "", errDisplayUnreadable }

func (b *brokenDisplayStore) SetCurrent(filename string) error {
	b.written = append(b.written, filename)
	return nil
}
