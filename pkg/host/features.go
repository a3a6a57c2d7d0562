package host

import (
	"unsafe"

	"github.com/kestrelaudio/lv2host/pkg/pluginapi"
)

// offeredFeatureURIs lists every feature URI the host is prepared to
// satisfy, used to validate a plugin's RequiredFeatures() at Open.
var offeredFeatureURIs = map[string]bool{
	pluginapi.FeatureURIDMapURI:        true,
	pluginapi.FeatureURIDUnmapURI:      true,
	pluginapi.FeatureOptionsURI:        true,
	pluginapi.FeatureBoundedBlockURI:   true,
	pluginapi.FeatureWorkerScheduleURI: true,
	pluginapi.FeatureMakePathURI:       true,
	pluginapi.FeatureMapPathURI:        true,
}

func passthroughPath(path string) string {
	return string(append([]byte(nil), path...))
}

// buildFeatures assembles the feature list advertised to Instantiate,
// per the open sequence in spec.md §4.4.1 step 6. Each payload is a
// heap-allocated pluginapi type kept alive for the Host's lifetime, so
// a Go-native plugin backend can type-assert the unsafe.Pointer back to
// its concrete, exported type instead of needing host-internal
// knowledge of the layout.
func (h *Host) buildFeatures() []pluginapi.Feature {
	h.uridMapData = &pluginapi.URIDMapData{Map: h.urids.Map}
	h.uridUnmapData = &pluginapi.URIDUnmapData{Unmap: h.urids.Unmap}
	h.optionsData = &pluginapi.OptionsData{MaxBlockLength: int32(h.maxBlockFrames)}
	h.workerScheduleData = &pluginapi.WorkerScheduleData{Schedule: h.scheduleWork}
	h.statePathData = &pluginapi.StatePathData{MakePath: passthroughPath, MapPath: passthroughPath, FreePath: func(string) {}}

	return []pluginapi.Feature{
		{URI: pluginapi.FeatureURIDMapURI, Data: unsafe.Pointer(h.uridMapData)},
		{URI: pluginapi.FeatureURIDUnmapURI, Data: unsafe.Pointer(h.uridUnmapData)},
		{URI: pluginapi.FeatureOptionsURI, Data: unsafe.Pointer(h.optionsData)},
		{URI: pluginapi.FeatureBoundedBlockURI, Data: nil},
		{URI: pluginapi.FeatureWorkerScheduleURI, Data: unsafe.Pointer(h.workerScheduleData)},
		{URI: pluginapi.FeatureMakePathURI, Data: unsafe.Pointer(h.statePathData)},
		{URI: pluginapi.FeatureMapPathURI, Data: unsafe.Pointer(h.statePathData)},
	}
}

func (h *Host) scheduleWork(data []byte) error {
	if h.pump == nil {
		return ErrNotReady
	}
	return h.pump.Schedule(data)
}
