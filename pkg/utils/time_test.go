package utils

import (
	"testing"
	"time"
)

func TestUnixToTime(t *testing.T) {
	got := UnixToTime(1690000000)
	if got.Location() != time.UTC {
		t.Errorf("location = %v, want UTC", got.Location())
	}
	if want := time.Date(2023, 7, 22, 4, 26, 40, 0, time.UTC); !got.Equal(want) {
		t.Errorf("UnixToTime() = %v, want %v", got, want)
	}
}
