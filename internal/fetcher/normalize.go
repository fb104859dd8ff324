package fetcher

import (
	"fmt"
	"math"

	"github.com/ravinmor/sky-watcher/internal/model"
)

// OrganizeStates converts raw OpenSky state vectors into flight records.
//
// State format: [icao24, callsign, origin_country, time_position, last_contact,
// longitude, latitude, baro_altitude, on_ground, velocity, true_track,
// vertical_rate, sensors, geo_altitude, squawk, spi, position_source]
//
// Fields past index 16 (category, when requested) are ignored. A state with
// fewer than 17 fields or a field of the wrong type fails the whole call.
// Timestamps, sensor serials and position_source must be whole numbers, and
// position_source must be one of the known codes 0-3.
func OrganizeStates(states [][]interface{}) ([]*model.FlightRecord, error) {
	records := make([]*model.FlightRecord, 0, len(states))

	for i, state := range states {
		record, err := decodeState(i, state)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

func decodeState(index int, state []interface{}) (*model.FlightRecord, error) {
	if len(state) < model.StateVectorFields {
		return nil, &StateError{
			Index: index,
			Err:   fmt.Errorf("%w: got %d fields, want %d", ErrIncompleteState, len(state), model.StateVectorFields),
		}
	}

	d := &stateDecoder{state: state, index: index}

	record := &model.FlightRecord{
		ICAO24:         d.str(0, "icao24"),
		Callsign:       d.str(1, "callsign"),
		OriginCountry:  d.str(2, "origin_country"),
		TimePosition:   d.optInt(3, "time_position"),
		LastContact:    d.integer(4, "last_contact"),
		Longitude:      d.optNum(5, "longitude"),
		Latitude:       d.optNum(6, "latitude"),
		BaroAltitude:   d.optNum(7, "baro_altitude"),
		OnGround:       d.boolean(8, "on_ground"),
		Velocity:       d.optNum(9, "velocity"),
		TrueTrack:      d.optNum(10, "true_track"),
		VerticalRate:   d.optNum(11, "vertical_rate"),
		Sensors:        d.ints(12, "sensors"),
		GeoAltitude:    d.optNum(13, "geo_altitude"),
		Squawk:         d.optStr(14, "squawk"),
		SPI:            d.boolean(15, "spi"),
		PositionSource: d.positionSource(16, "position_source"),
	}

	if d.err != nil {
		return nil, d.err
	}

	return record, nil
}

// stateDecoder reads typed values out of one state vector and keeps the first error
type stateDecoder struct {
	state []interface{}
	index int
	err   error
}

func (d *stateDecoder) fail(field string, v interface{}, want string) {
	if d.err != nil {
		return
	}
	d.err = &StateError{
		Index: d.index,
		Field: field,
		Err:   fmt.Errorf("%w: want %s, got %T", ErrFieldType, want, v),
	}
}

// failValue records a value of the right JSON type that is out of domain
func (d *stateDecoder) failValue(field string, v interface{}, want string) {
	if d.err != nil {
		return
	}
	d.err = &StateError{
		Index: d.index,
		Field: field,
		Err:   fmt.Errorf("%w: want %s, got %v", ErrFieldType, want, v),
	}
}

// wholeInt64 converts f when it is a whole number inside the int64 range
func wholeInt64(f float64) (int64, bool) {
	if math.Trunc(f) != f || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// str reads a string; null yields ""
func (d *stateDecoder) str(i int, field string) string {
	switch v := d.state[i].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		d.fail(field, v, "string")
		return ""
	}
}

func (d *stateDecoder) optStr(i int, field string) *string {
	switch v := d.state[i].(type) {
	case nil:
		return nil
	case string:
		return &v
	default:
		d.fail(field, v, "string")
		return nil
	}
}

func (d *stateDecoder) optNum(i int, field string) *float64 {
	switch v := d.state[i].(type) {
	case nil:
		return nil
	case float64:
		return &v
	default:
		d.fail(field, v, "number")
		return nil
	}
}

func (d *stateDecoder) optInt(i int, field string) *int64 {
	f := d.optNum(i, field)
	if f == nil {
		return nil
	}
	n, ok := wholeInt64(*f)
	if !ok {
		d.failValue(field, *f, "integer")
		return nil
	}
	return &n
}

// integer reads a required whole number
func (d *stateDecoder) integer(i int, field string) int64 {
	v, ok := d.state[i].(float64)
	if !ok {
		d.fail(field, d.state[i], "number")
		return 0
	}
	n, ok := wholeInt64(v)
	if !ok {
		d.failValue(field, v, "integer")
		return 0
	}
	return n
}

// positionSource reads a required source code; only the known codes are accepted
func (d *stateDecoder) positionSource(i int, field string) model.PositionSource {
	n := d.integer(i, field)
	if d.err != nil {
		return 0
	}
	if n < int64(model.SourceADSB) || n > int64(model.SourceFLARM) {
		d.failValue(field, n, "position source 0-3")
		return 0
	}
	return model.PositionSource(n)
}

// boolean reads a flag; null yields false
func (d *stateDecoder) boolean(i int, field string) bool {
	switch v := d.state[i].(type) {
	case nil:
		return false
	case bool:
		return v
	default:
		d.fail(field, v, "boolean")
		return false
	}
}

// ints reads a list of sensor serials; null yields nil
func (d *stateDecoder) ints(i int, field string) []int {
	switch v := d.state[i].(type) {
	case nil:
		return nil
	case []interface{}:
		out := make([]int, 0, len(v))
		for _, e := range v {
			f, ok := e.(float64)
			if !ok {
				d.fail(field, e, "number")
				return nil
			}
			n, ok := wholeInt64(f)
			if !ok || n < math.MinInt32 || n > math.MaxInt32 {
				d.failValue(field, f, "integer")
				return nil
			}
			out = append(out, int(n))
		}
		return out
	default:
		d.fail(field, v, "array")
		return nil
	}
}
