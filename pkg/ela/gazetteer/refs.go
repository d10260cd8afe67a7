package gazetteer

import (
	"strconv"
	"strings"
)

// URL bases used by TEI ref attributes that point into the two datasets.
const (
	PleiadesURLBase = "https://pleiades.stoa.org/places/"
	GeonamesURLBase = "https://www.geonames.org/"
)

// ParseRefURL extracts the source tag and numeric place id from a TEI ref
// attribute. Refs outside the two known URL bases report ok=false.
func ParseRefURL(ref string) (source string, id int64, ok bool) {
	switch {
	case strings.HasPrefix(ref, PleiadesURLBase):
		source = SourcePleiades
		ref = ref[len(PleiadesURLBase):]
	case strings.HasPrefix(ref, GeonamesURLBase):
		source = SourceGeonames
		ref = ref[len(GeonamesURLBase):]
	default:
		return "", 0, false
	}
	if slash := strings.IndexByte(ref, '/'); slash >= 0 {
		ref = ref[:slash]
	}
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		return "", 0, false
	}
	return source, id, true
}
