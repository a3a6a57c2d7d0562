package pluginapi

// Well-known LV2 feature URIs. Both the host and any Go-native plugin
// backend reference these constants rather than literal strings, so the
// two sides can never drift apart on spelling.
const (
	FeatureURIDMapURI        = "http://lv2plug.in/ns/ext/urid#map"
	FeatureURIDUnmapURI      = "http://lv2plug.in/ns/ext/urid#unmap"
	FeatureOptionsURI        = "http://lv2plug.in/ns/ext/options#options"
	FeatureBoundedBlockURI   = "http://lv2plug.in/ns/ext/buf-size#boundedBlockLength"
	FeatureWorkerScheduleURI = "http://lv2plug.in/ns/ext/worker#schedule"
	FeatureMakePathURI       = "http://lv2plug.in/ns/ext/state#makePath"
	FeatureMapPathURI        = "http://lv2plug.in/ns/ext/state#mapPath"
)

// URIDMapData is the Feature.Data payload for FeatureURIDMapURI: the
// plugin calls Map(uri) to obtain a stable ID for a URI it did not
// already see at Open.
type URIDMapData struct {
	Map func(uri string) uint32
}

// URIDUnmapData is the Feature.Data payload for FeatureURIDUnmapURI.
type URIDUnmapData struct {
	Unmap func(id uint32) (uri string, ok bool)
}

// OptionsData is the Feature.Data payload for FeatureOptionsURI.
type OptionsData struct {
	MaxBlockLength int32
}

// WorkerScheduleData is the Feature.Data payload for
// FeatureWorkerScheduleURI: the plugin calls Schedule from inside Run to
// hand a request to the worker thread.
type WorkerScheduleData struct {
	Schedule func(data []byte) error
}

// StatePathData is the Feature.Data payload for FeatureMakePathURI and
// FeatureMapPathURI.
type StatePathData struct {
	MakePath func(path string) string
	MapPath  func(path string) string
	FreePath func(path string)
}
