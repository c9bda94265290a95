package extract

import (
	"regexp"
	"strings"
	"unicode"
)

// roomCodePattern matches five dash-separated upper-case segments of two or
// more letters, optionally followed by free text.
var roomCodePattern = regexp.MustCompile(`^[A-Z]{2,}(?:-[A-Z]{2,}){4}(?:\s.*)?$`)

// UnitSeparator separates the car from the unit in a room-code payload.
const UnitSeparator = " - "

// RoomCode is a decoded room-name cell. The scheduling system reuses the free
// text after the code to carry the assigned vehicle.
type RoomCode struct {
	Code    string // e.g. AD-SF-FQ-AC-AV
	Payload string // everything after the code, e.g. "CENTER 3 CARRO 1 - UND84"
	Car     string // payload before the last " - "
	Unit    string // payload after the last " - ", empty when absent
}

// IsRoomCode reports whether the whole value matches the room-code shape.
func IsRoomCode(v any) bool {
	s, ok := String(v)
	if !ok {
		return false
	}
	return roomCodePattern.MatchString(s)
}

// ParseRoomCode validates the value and splits the payload into car and unit.
// It returns false when the value is not a room code or carries no payload.
func ParseRoomCode(v any) (RoomCode, bool) {
	s, ok := String(v)
	if !ok || !roomCodePattern.MatchString(s) {
		return RoomCode{}, false
	}

	rc := RoomCode{Code: s}
	if idx := strings.IndexFunc(s, unicode.IsSpace); idx >= 0 {
		rc.Code, rc.Payload = s[:idx], strings.TrimSpace(s[idx:])
	}
	if rc.Payload == "" {
		return RoomCode{}, false
	}

	rc.Car, rc.Unit = SplitCarUnit(rc.Payload)
	if rc.Car == "" {
		return RoomCode{}, false
	}
	return rc, true
}

// SplitCarUnit splits a payload on its last UnitSeparator, so car names may
// themselves contain the separator. Unit is empty when there is no separator
// or nothing follows it.
func SplitCarUnit(payload string) (car, unit string) {
	payload = strings.TrimSpace(payload)
	idx := strings.LastIndex(payload, UnitSeparator)
	if idx < 0 {
		return payload, ""
	}
	car = strings.TrimSpace(payload[:idx])
	unit = strings.TrimSpace(payload[idx+len(UnitSeparator):])
	if car == "" || unit == "" {
		return payload, ""
	}
	return car, unit
}
