package metadata

import "strings"

// tagAliases maps each canonical descriptive tag to the names the probe
// backends use for it. ffprobe reports lowercase container tag names;
// exiftool reports CamelCase names. Matching is case-insensitive, so the
// alias lists only spell genuinely different names.
var tagAliases = map[string][]string{
	"title":             {"title"},
	"artist":            {"artist", "author", "performer"},
	"album":             {"album"},
	"album_artist":      {"album_artist", "albumartist", "band"},
	"composer":          {"composer"},
	"genre":             {"genre"},
	"year":              {"year", "date", "originalyear"},
	"track":             {"track", "tracknumber"},
	"disc":              {"disc", "discnumber"},
	"copyright":         {"copyright"},
	"comment":           {"comment", "description"},
	"encoder":           {"encoder", "encoded_by", "encodedby"},
	"language":          {"language"},
	"publisher":         {"publisher", "label"},
	"isrc":              {"isrc"},
	"barcode":           {"barcode", "catalognumber"},
	"bpm":               {"bpm", "tbpm", "beatsperminute"},
	"key":               {"key", "initialkey"},
	"mood":              {"mood"},
	"rating":            {"rating"},
	"creation_date":     {"creation_time", "createdate", "datetimeoriginal"},
	"modification_date": {"modification_time", "modifydate"},
	"gps_latitude":      {"gpslatitude"},
	"gps_longitude":     {"gpslongitude"},
	"make":              {"make", "com.apple.quicktime.make"},
	"model":             {"model", "com.apple.quicktime.model"},
	"software":          {"software", "com.apple.quicktime.software"},
}

// canonicalTagOrder fixes the iteration order for deterministic output.
var canonicalTagOrder = []string{
	"title", "artist", "album", "album_artist", "composer", "genre",
	"year", "track", "disc", "copyright", "comment", "encoder",
	"language", "publisher", "isrc", "barcode", "bpm", "key", "mood",
	"rating", "creation_date", "modification_date", "gps_latitude",
	"gps_longitude", "make", "model", "software",
}

// ConsolidateTags folds tag maps from multiple probe backends into one
// canonical set. Sources are consulted in order; the first backend that
// carries a value for a canonical tag wins, so container tags read by
// ffprobe take priority over exiftool's embedded metadata.
func ConsolidateTags(sources ...map[string]string) map[string]string {
	folded := make([]map[string]string, 0, len(sources))
	for _, source := range sources {
		if len(source) == 0 {
			continue
		}
		lowered := make(map[string]string, len(source))
		for name, value := range source {
			value = strings.TrimSpace(value)
			if value == "" {
				continue
			}
			name = strings.ToLower(name)
			if _, exists := lowered[name]; !exists {
				lowered[name] = value
			}
		}
		folded = append(folded, lowered)
	}

	consolidated := make(map[string]string)
	for _, canonical := range canonicalTagOrder {
		for _, source := range folded {
			if value := firstAlias(source, tagAliases[canonical]); value != "" {
				consolidated[canonical] = value
				break
			}
		}
	}
	return consolidated
}

func firstAlias(source map[string]string, aliases []string) string {
	for _, alias := range aliases {
		if value, ok := source[alias]; ok {
			return value
		}
	}
	return ""
}
