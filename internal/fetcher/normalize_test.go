package fetcher

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/ravinmor/sky-watcher/internal/model"
)

// decodeStates parses a JSON array of state vectors the same way the client does
func decodeStates(t *testing.T, raw string) [][]interface{} {
	t.Helper()
	var states [][]interface{}
	if err := json.Unmarshal([]byte(raw), &states); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return states
}

func TestOrganizeStatesFieldMapping(t *testing.T) {
	states := decodeStates(t, `[
		["abc123","TEST1234","Germany",1690000000,1690000005,10.5,45.8,3000,false,120,270,0,[1,2],3100,"1200",false,0]
	]`)

	records, err := OrganizeStates(states)
	if err != nil {
		t.Fatalf("OrganizeStates() unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	r := records[0]
	checks := []struct {
		field string
		got   interface{}
		want  interface{}
	}{
		{"icao24", r.ICAO24, "abc123"},
		{"callsign", r.Callsign, "TEST1234"},
		{"origin_country", r.OriginCountry, "Germany"},
		{"time_position", *r.TimePosition, int64(1690000000)},
		{"last_contact", r.LastContact, int64(1690000005)},
		{"longitude", *r.Longitude, 10.5},
		{"latitude", *r.Latitude, 45.8},
		{"baro_altitude", *r.BaroAltitude, 3000.0},
		{"on_ground", r.OnGround, false},
		{"velocity", *r.Velocity, 120.0},
		{"true_track", *r.TrueTrack, 270.0},
		{"vertical_rate", *r.VerticalRate, 0.0},
		{"sensors", r.Sensors, []int{1, 2}},
		{"geo_altitude", *r.GeoAltitude, 3100.0},
		{"squawk", *r.Squawk, "1200"},
		{"spi", r.SPI, false},
		{"position_source", r.PositionSource, model.SourceADSB},
	}

	for _, c := range checks {
		if !reflect.DeepEqual(c.got, c.want) {
			t.Errorf("%s = %v, want %v", c.field, c.got, c.want)
		}
	}
}

func TestOrganizeStatesNulls(t *testing.T) {
	states := decodeStates(t, `[
		["4b1815",null,"Switzerland",null,1690000005,null,null,null,true,null,null,null,null,null,null,true,2]
	]`)

	records, err := OrganizeStates(states)
	if err != nil {
		t.Fatalf("OrganizeStates() unexpected error: %v", err)
	}

	r := records[0]
	if r.Callsign != "" {
		t.Errorf("callsign = %q, want empty", r.Callsign)
	}
	if r.TimePosition != nil || r.Longitude != nil || r.Latitude != nil || r.BaroAltitude != nil ||
		r.Velocity != nil || r.TrueTrack != nil || r.VerticalRate != nil || r.GeoAltitude != nil || r.Squawk != nil {
		t.Errorf("expected nullable fields to be nil, got %+v", r)
	}
	if r.Sensors != nil {
		t.Errorf("sensors = %v, want nil", r.Sensors)
	}
	if !r.OnGround || !r.SPI {
		t.Errorf("on_ground/spi = %v/%v, want true/true", r.OnGround, r.SPI)
	}
	if r.PositionSource != model.SourceMLAT {
		t.Errorf("position_source = %v, want MLAT", r.PositionSource)
	}
}

func TestOrganizeStatesEmpty(t *testing.T) {
	for name, input := range map[string][][]interface{}{
		"nil":   nil,
		"empty": {},
	} {
		t.Run(name, func(t *testing.T) {
			records, err := OrganizeStates(input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if records == nil || len(records) != 0 {
				t.Errorf("expected empty non-nil slice, got %#v", records)
			}
		})
	}
}

func TestOrganizeStatesIgnoresCategory(t *testing.T) {
	states := decodeStates(t, `[
		["abc123","TEST1234","Germany",1690000000,1690000005,10.5,45.8,3000,false,120,270,0,null,3100,null,false,0,4]
	]`)

	records, err := OrganizeStates(states)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if records[0].ICAO24 != "abc123" {
		t.Errorf("icao24 = %q, want abc123", records[0].ICAO24)
	}
}

func TestOrganizeStatesErrors(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantErr   error
		wantIndex int
		wantField string
	}{
		{
			name:      "Short state",
			raw:       `[["abc123","TEST1234","Germany"]]`,
			wantErr:   ErrIncompleteState,
			wantIndex: 0,
		},
		{
			name: "Short second state",
			raw: `[
				["abc123","TEST1234","Germany",1690000000,1690000005,10.5,45.8,3000,false,120,270,0,null,3100,null,false,0],
				["def456","TEST5678","France",1690000000,1690000005,10.5,45.8,3000,false,120,270,0,null,3100,null]
			]`,
			wantErr:   ErrIncompleteState,
			wantIndex: 1,
		},
		{
			name:      "String latitude",
			raw:       `[["abc123","TEST1234","Germany",1690000000,1690000005,10.5,"45.8",3000,false,120,270,0,null,3100,null,false,0]]`,
			wantErr:   ErrFieldType,
			wantField: "latitude",
		},
		{
			name:      "Null last contact",
			raw:       `[["abc123","TEST1234","Germany",1690000000,null,10.5,45.8,3000,false,120,270,0,null,3100,null,false,0]]`,
			wantErr:   ErrFieldType,
			wantField: "last_contact",
		},
		{
			name:      "Non-numeric sensor",
			raw:       `[["abc123","TEST1234","Germany",1690000000,1690000005,10.5,45.8,3000,false,120,270,0,["x"],3100,null,false,0]]`,
			wantErr:   ErrFieldType,
			wantField: "sensors",
		},
		{
			name:      "Fractional time_position",
			raw:       `[["abc123","TEST1234","Germany",1690000000.9,1690000005,10.5,45.8,3000,false,120,270,0,null,3100,null,false,0]]`,
			wantErr:   ErrFieldType,
			wantField: "time_position",
		},
		{
			name:      "Out of range last_contact",
			raw:       `[["abc123","TEST1234","Germany",1690000000,1e19,10.5,45.8,3000,false,120,270,0,null,3100,null,false,0]]`,
			wantErr:   ErrFieldType,
			wantField: "last_contact",
		},
		{
			name:      "Fractional sensor",
			raw:       `[["abc123","TEST1234","Germany",1690000000,1690000005,10.5,45.8,3000,false,120,270,0,[1.5],3100,null,false,0]]`,
			wantErr:   ErrFieldType,
			wantField: "sensors",
		},
		{
			name:      "Fractional position_source",
			raw:       `[["abc123","TEST1234","Germany",1690000000,1690000005,10.5,45.8,3000,false,120,270,0,null,3100,null,false,1.5]]`,
			wantErr:   ErrFieldType,
			wantField: "position_source",
		},
		{
			name:      "Unknown position_source",
			raw:       `[["abc123","TEST1234","Germany",1690000000,1690000005,10.5,45.8,3000,false,120,270,0,null,3100,null,false,7]]`,
			wantErr:   ErrFieldType,
			wantField: "position_source",
		},
		{
			name:      "Numeric on_ground",
			raw:       `[["abc123","TEST1234","Germany",1690000000,1690000005,10.5,45.8,3000,1,120,270,0,null,3100,null,false,0]]`,
			wantErr:   ErrFieldType,
			wantField: "on_ground",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := OrganizeStates(decodeStates(t, tt.raw))
			if records != nil {
				t.Errorf("expected no records on error, got %d", len(records))
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}

			var stateErr *StateError
			if !errors.As(err, &stateErr) {
				t.Fatalf("error %v is not a *StateError", err)
			}
			if stateErr.Index != tt.wantIndex {
				t.Errorf("Index = %d, want %d", stateErr.Index, tt.wantIndex)
			}
			if stateErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", stateErr.Field, tt.wantField)
			}
		})
	}
}
