package host

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kestrelaudio/lv2host/examples/fixtureplugin"
	"github.com/kestrelaudio/lv2host/pkg/driver"
	"github.com/kestrelaudio/lv2host/pkg/midi"
)

// fakeDriver lets tests drive Process directly instead of running a
// real audio thread.
type fakeDriver struct {
	frames int
	cb     driver.Callback
}

func (d *fakeDriver) FramesPerBurst() int { return d.frames }
func (d *fakeDriver) Start(cb driver.Callback) error {
	d.cb = cb
	return nil
}
func (d *fakeDriver) Stop() error { return nil }

func openFixture(t *testing.T) (*Host, *fakeDriver) {
	t.Helper()
	h, err := Open(fixtureplugin.URI, 48000, fixtureplugin.NewWorld(), Options{})
	require.NoError(t, err)
	require.Equal(t, Initialized, h.State())

	d := &fakeDriver{frames: 4096}
	require.NoError(t, h.Start(d))
	require.Equal(t, Running, h.State())
	return h, d
}

func TestOpenAndRunOnePeriodOfSilence(t *testing.T) {
	h, d := openFixture(t)
	defer h.Close()

	buf := make([]float32, 4096*2)
	action := d.cb(buf, 2, 4096)
	require.Equal(t, driver.Continue, action)
	require.Len(t, buf, 8192)
}

func TestControlChangeTakesEffect(t *testing.T) {
	h, d := openFixture(t)
	defer h.Close()

	h.SetControl(fixtureplugin.PortGain, 0.4)
	v, ok := h.ControlValue(fixtureplugin.PortGain)
	require.True(t, ok)
	require.Equal(t, 0.4, v)

	buf := make([]float32, 4096*2)
	for i := range buf {
		buf[i] = 1.0
	}
	d.cb(buf, 2, 4096)

	// Channel 0 carries PortAudioIn -> PortAudioOut at gain 0.4.
	require.InDelta(t, 0.4, buf[0], 1e-6)
}

func TestWrongKindControlSetIsNoOp(t *testing.T) {
	h, _ := openFixture(t)
	defer h.Close()

	h.SetControl(fixtureplugin.PortAudioIn, 0.9) // not a control port
	_, ok := h.ControlValue(fixtureplugin.PortAudioIn)
	require.False(t, ok)
}

func TestCallbackRejectsBadFrameCounts(t *testing.T) {
	h, d := openFixture(t)
	defer h.Close()

	buf := make([]float32, 2)
	require.Equal(t, driver.Stop, d.cb(buf, 2, 0))

	bigBuf := make([]float32, 2*20000)
	require.Equal(t, driver.Stop, d.cb(bigBuf, 2, 20000))
}

func TestWorkerResponseDeliveredExactlyOnce(t *testing.T) {
	h, err := Open(fixtureplugin.URI, 48000, fixtureplugin.NewWorld(), Options{})
	require.NoError(t, err)
	defer h.Close()

	d := &fakeDriver{frames: 256}
	require.NoError(t, h.Start(d))

	require.NoError(t, h.pump.Schedule([]byte{0x00, 0x0F}))

	handle := h.handle
	fixtureHandle, ok := handle.(*fixtureplugin.Handle)
	require.True(t, ok)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		buf := make([]float32, 256*2)
		d.cb(buf, 2, 256)
		if _, n := fixtureHandle.LastResponse(); n > 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	resp, n := fixtureHandle.LastResponse()
	require.Equal(t, 1, n)
	require.Equal(t, []byte{0x00, 0xF0}, resp)
}

func TestMIDIOutputPortIsDecodedIntoTimeline(t *testing.T) {
	h, d := openFixture(t)
	defer h.Close()

	buf := make([]float32, 4096*2)
	d.cb(buf, 2, 4096)

	events, ok := h.MIDIEvents(fixtureplugin.PortMIDIOut)
	require.True(t, ok)
	require.Len(t, events, 1)

	note, ok := events[0].(midi.NoteOnEvent)
	require.True(t, ok)
	require.Equal(t, uint8(60), note.Note)
	require.Equal(t, uint8(100), note.Velocity)

	h.ClearMIDIEvents(fixtureplugin.PortMIDIOut)
	events, ok = h.MIDIEvents(fixtureplugin.PortMIDIOut)
	require.True(t, ok)
	require.Empty(t, events)
}

func TestCloseIsIdempotent(t *testing.T) {
	h, _ := openFixture(t)
	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
	require.Equal(t, Disposed, h.State())
}

func TestStateSaveRestoreRoundTrip(t *testing.T) {
	h, _ := openFixture(t)
	defer h.Close()

	h.SetControl(fixtureplugin.PortGain, 0.75)
	snap, err := h.SaveState()
	require.NoError(t, err)
	require.NotNil(t, snap)

	h.SetControl(fixtureplugin.PortGain, 0.1)
	v, _ := h.ControlValue(fixtureplugin.PortGain)
	require.Equal(t, 0.1, v)

	require.Error(t, h.LoadState(snap)) // Running: restore rejected

	require.NoError(t, h.Stop())
	require.NoError(t, h.LoadState(snap))
	v, _ = h.ControlValue(fixtureplugin.PortGain)
	require.Equal(t, 0.75, v)
}
