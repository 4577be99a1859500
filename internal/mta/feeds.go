package mta

// FeedID identifies one of the NYCT GTFS-RT feed endpoints. The subway is
// split across eight feeds by route group; a poll touches only the feeds the
// configured routes live on.
type FeedID string

const (
	FeedNumeric FeedID = "gtfs"      // 1-7 plus the Grand Central shuttle
	FeedACE     FeedID = "gtfs-ace"  // A, C, E, Rockaway and Franklin shuttles
	FeedBDFM    FeedID = "gtfs-bdfm" // B, D, F, M
	FeedG       FeedID = "gtfs-g"    // G
	FeedJZ      FeedID = "gtfs-jz"   // J, Z
	FeedL       FeedID = "gtfs-l"    // L
	FeedNQRW    FeedID = "gtfs-nqrw" // N, Q, R, W
	FeedSI      FeedID = "gtfs-si"   // Staten Island Railway
)

const feedBaseURL = "https://api-endpoint.mta.info/Dataservice/mtagtfsfeeds/nyct%2F"

// routeToFeed maps every NYCT route to the feed that carries it.
var routeToFeed = map[string]FeedID{
	"1":  FeedNumeric,
	"2":  FeedNumeric,
	"3":  FeedNumeric,
	"4":  FeedNumeric,
	"5":  FeedNumeric,
	"6":  FeedNumeric,
	"7":  FeedNumeric,
	"GS": FeedNumeric, // Grand Central Shuttle
	"A":  FeedACE,
	"C":  FeedACE,
	"E":  FeedACE,
	"H":  FeedACE, // Rockaway Park Shuttle
	"FS": FeedACE, // Franklin Avenue Shuttle
	"B":  FeedBDFM,
	"D":  FeedBDFM,
	"F":  FeedBDFM,
	"M":  FeedBDFM,
	"G":  FeedG,
	"J":  FeedJZ,
	"Z":  FeedJZ,
	"L":  FeedL,
	"N":  FeedNQRW,
	"Q":  FeedNQRW,
	"R":  FeedNQRW,
	"W":  FeedNQRW,
	"SI": FeedSI,
	"SS": FeedSI,
}

// FeedForRoute resolves the feed carrying a route. Express variants ("6X")
// resolve to their base route. The second return is false for routes not in
// the NYCT fleet.
func FeedForRoute(route string) (FeedID, bool) {
	if feed, ok := routeToFeed[route]; ok {
		return feed, true
	}
	if len(route) > 1 && route[len(route)-1] == 'X' {
		if feed, ok := routeToFeed[route[:len(route)-1]]; ok {
			return feed, true
		}
	}
	return "", false
}

// URL returns the HTTP endpoint for the feed.
func (f FeedID) URL() string {
	return feedBaseURL + string(f)
}

// Direction is a platform side. NYCT platform stop ids are the parent stop
// id with a direction suffix.
type Direction string

const (
	Uptown   Direction = "N"
	Downtown Direction = "S"
)

// PlatformID derives the directional platform stop id from a parent stop id.
func PlatformID(stopID string, d Direction) string {
	return stopID + string(d)
}
