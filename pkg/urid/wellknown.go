package urid

// Well-known URIs the host seeds into every table at open, so the
// feature set (URID map/unmap, options) and the atom sequence encoder
// can emit and recognize them without a round trip through Map at
// run time.
const (
	URISequence      = "http://lv2plug.in/ns/ext/atom#Sequence"
	URIFloat         = "http://lv2plug.in/ns/ext/atom#Float"
	URIInt           = "http://lv2plug.in/ns/ext/atom#Int"
	URIDouble        = "http://lv2plug.in/ns/ext/atom#Double"
	URIMidiEvent     = "http://lv2plug.in/ns/ext/midi#MidiEvent"
	URIPatchGet      = "http://lv2plug.in/ns/ext/patch#Get"
	URIPatchSet      = "http://lv2plug.in/ns/ext/patch#Set"
	URIPatchProperty = "http://lv2plug.in/ns/ext/patch#property"
	URIPatchValue    = "http://lv2plug.in/ns/ext/patch#value"
	URIStatePath     = "http://lv2plug.in/ns/ext/state#mapPath"
	URIMaxBlockLen   = "http://lv2plug.in/ns/ext/buf-size#maxBlockLength"
	URISampleRate    = "http://lv2plug.in/ns/ext/parameters#sampleRate"
)

// WellKnown is the set of URIs seeded into a fresh table, in a stable
// order so that (in the absence of any other activity) IDs are
// deterministic across host runs — convenient for tests and logs, never
// relied upon for correctness.
var WellKnown = []string{
	URISequence,
	URIFloat,
	URIInt,
	URIDouble,
	URIMidiEvent,
	URIPatchGet,
	URIPatchSet,
	URIPatchProperty,
	URIPatchValue,
	URIStatePath,
	URIMaxBlockLen,
	URISampleRate,
}

// Seed maps every WellKnown URI into t, in order, and returns the table
// for convenient chaining at open.
func Seed(t *Table) *Table {
	for _, uri := range WellKnown {
		t.Map(uri)
	}
	return t
}
