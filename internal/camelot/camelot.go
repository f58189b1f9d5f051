// Package camelot converts pitch class and mode pairs into Camelot wheel
// notation and conventional key names.
package camelot

import (
	"strconv"
	"strings"
)

// Mode values as reported by audio analysis.
const (
	ModeMinor = 0
	ModeMajor = 1
)

// Wheel numbers indexed by pitch class (C=0 .. B=11).
var (
	majorWheel = [12]int{8, 3, 10, 5, 12, 7, 2, 9, 4, 11, 6, 1}
	minorWheel = [12]int{5, 12, 7, 2, 9, 4, 11, 6, 1, 8, 3, 10}
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Major keys carry the A suffix and minor keys the B suffix.
const (
	majorSuffix = "A"
	minorSuffix = "B"
)

func valid(pitchClass, mode int) bool {
	return pitchClass >= 0 && pitchClass <= 11 && (mode == ModeMinor || mode == ModeMajor)
}

// ToCamelot returns the Camelot code (e.g. "8A") or nil when either input is
// unknown (-1) or out of range.
func ToCamelot(pitchClass, mode int) *string {
	if !valid(pitchClass, mode) {
		return nil
	}
	var code string
	if mode == ModeMajor {
		code = strconv.Itoa(majorWheel[pitchClass]) + majorSuffix
	} else {
		code = strconv.Itoa(minorWheel[pitchClass]) + minorSuffix
	}
	return &code
}

// ToRegularKey returns a name such as "F# minor", or nil for unknown input.
func ToRegularKey(pitchClass, mode int) *string {
	if !valid(pitchClass, mode) {
		return nil
	}
	name := noteNames[pitchClass]
	if mode == ModeMajor {
		name += " major"
	} else {
		name += " minor"
	}
	return &name
}

var flats = map[string]int{
	"CB": 11, "DB": 1, "EB": 3, "FB": 4, "GB": 6, "AB": 8, "BB": 10,
}

// ParsePitchClass maps a note name like "C#", "Db" or "f♯" to its pitch class.
func ParsePitchClass(name string) (int, bool) {
	n := strings.ToUpper(strings.TrimSpace(name))
	n = strings.NewReplacer("♯", "#", "♭", "B", "SHARP", "#", "FLAT", "B", " ", "").Replace(n)
	if n == "" {
		return -1, false
	}
	if pc, ok := flats[n]; ok {
		return pc, true
	}
	for i, note := range noteNames {
		if n == note {
			return i, true
		}
	}
	switch n {
	case "E#":
		return 5, true
	case "B#":
		return 0, true
	}
	return -1, false
}

// ParseMode maps "major"/"minor" (or "maj"/"min") to a mode value.
func ParseMode(name string) (int, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "major", "maj", "1":
		return ModeMajor, true
	case "minor", "min", "0":
		return ModeMinor, true
	}
	return -1, false
}
