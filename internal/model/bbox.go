package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidBoundingBox is returned when a bounding box cannot be turned into a query
var ErrInvalidBoundingBox = errors.New("invalid bounding box")

// Coordinate is a geographic position in decimal degrees
type Coordinate struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// BoundingBox is the rectangular region a state vector query is limited to.
// It is an immutable value: the With* methods return a modified copy.
type BoundingBox struct {
	min *Coordinate
	max *Coordinate
}

// NewBoundingBox creates a bounding box with both corners set
func NewBoundingBox(min, max Coordinate) BoundingBox {
	return BoundingBox{min: &min, max: &max}
}

// WithMin returns a copy of the box whose lamin/lomin are taken from c
func (b BoundingBox) WithMin(c Coordinate) BoundingBox {
	b.min = &c
	return b
}

// WithMax returns a copy of the box whose lamax/lomax are taken from c
func (b BoundingBox) WithMax(c Coordinate) BoundingBox {
	b.max = &c
	return b
}

// Min returns the minimum corner and whether it has been set
func (b BoundingBox) Min() (Coordinate, bool) {
	if b.min == nil {
		return Coordinate{}, false
	}
	return *b.min, true
}

// Max returns the maximum corner and whether it has been set
func (b BoundingBox) Max() (Coordinate, bool) {
	if b.max == nil {
		return Coordinate{}, false
	}
	return *b.max, true
}

// Validate checks that both corners are set and hold finite numbers.
// Coordinate ranges and min < max are not checked.
func (b BoundingBox) Validate() error {
	if b.min == nil {
		return fmt.Errorf("%w: min coordinates not set", ErrInvalidBoundingBox)
	}
	if b.max == nil {
		return fmt.Errorf("%w: max coordinates not set", ErrInvalidBoundingBox)
	}

	for _, p := range b.params() {
		if math.IsNaN(p.value) || math.IsInf(p.value, 0) {
			return fmt.Errorf("%w: %s is not a finite number", ErrInvalidBoundingBox, p.key)
		}
	}

	return nil
}

// Encode renders the box as "lamin=..&lomin=..&lamax=..&lomax=.."
func (b BoundingBox) Encode() (string, error) {
	if err := b.Validate(); err != nil {
		return "", err
	}

	var sb strings.Builder
	for i, p := range b.params() {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(p.key)
		sb.WriteByte('=')
		sb.WriteString(strconv.FormatFloat(p.value, 'f', -1, 64))
	}

	return sb.String(), nil
}

// String implements fmt.Stringer for log output
func (b BoundingBox) String() string {
	q, err := b.Encode()
	if err != nil {
		return "<invalid bbox>"
	}
	return q
}

type queryParam struct {
	key   string
	value float64
}

// params lists the query parameters in the order the API documents them.
// Must only be called with both corners set.
func (b BoundingBox) params() []queryParam {
	return []queryParam{
		{"lamin", b.min.Latitude},
		{"lomin", b.min.Longitude},
		{"lamax", b.max.Latitude},
		{"lomax", b.max.Longitude},
	}
}
