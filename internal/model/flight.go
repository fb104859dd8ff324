package model

import (
	"time"

	"github.com/ravinmor/sky-watcher/pkg/utils"
)

// StateVectorFields is the number of positional fields in an OpenSky state vector
const StateVectorFields = 17

// PositionSource identifies where a state vector's position came from
type PositionSource int

const (
	SourceADSB PositionSource = iota
	SourceASTERIX
	SourceMLAT
	SourceFLARM
)

func (p PositionSource) String() string {
	switch p {
	case SourceADSB:
		return "ADS-B"
	case SourceASTERIX:
		return "ASTERIX"
	case SourceMLAT:
		return "MLAT"
	case SourceFLARM:
		return "FLARM"
	default:
		return "UNKNOWN"
	}
}

// FlightRecord is one aircraft state vector with its fields named.
// Pointer fields are nil when the API reported null.
type FlightRecord struct {
	ICAO24         string         `json:"icao24"`
	Callsign       string         `json:"callsign"`
	OriginCountry  string         `json:"origin_country"`
	TimePosition   *int64         `json:"time_position"`
	LastContact    int64          `json:"last_contact"`
	Longitude      *float64       `json:"longitude"`
	Latitude       *float64       `json:"latitude"`
	BaroAltitude   *float64       `json:"baro_altitude"`
	OnGround       bool           `json:"on_ground"`
	Velocity       *float64       `json:"velocity"`
	TrueTrack      *float64       `json:"true_track"`
	VerticalRate   *float64       `json:"vertical_rate"`
	Sensors        []int          `json:"sensors"`
	GeoAltitude    *float64       `json:"geo_altitude"`
	Squawk         *string        `json:"squawk"`
	SPI            bool           `json:"spi"`
	PositionSource PositionSource `json:"position_source"`
}

// LastContactTime returns last_contact as a time.Time
func (r *FlightRecord) LastContactTime() time.Time {
	return utils.UnixToTime(r.LastContact)
}

// PositionTime returns time_position as a time.Time, or false if no position
// update has been received
func (r *FlightRecord) PositionTime() (time.Time, bool) {
	if r.TimePosition == nil {
		return time.Time{}, false
	}
	return utils.UnixToTime(*r.TimePosition), true
}

// HasPosition reports whether both latitude and longitude are known
func (r *FlightRecord) HasPosition() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// OpenSkyResponse is the body of /states/all. States is nil when the API
// returns null or omits the field.
type OpenSkyResponse struct {
	Time   int64           `json:"time"`
	States [][]interface{} `json:"states"`
}
