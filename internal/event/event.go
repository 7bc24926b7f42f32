// Package event parses unsolicited daemon notifications.
//
// An event datagram starts with a decimal priority tag in angle brackets, then an
// event name, then free-form details:
//
//	<3>CTRL-EVENT-SCAN-RESULTS
//	<3>CTRL-EVENT-CONNECTED - Connection to 00:11:22:33:44:55 completed [id=0 id_str=]
//
// On a global control interface the tag is preceded by "IFNAME=<iface> ".
package event

import (
	"strconv"
	"strings"
)

const (
	Connected    = "CTRL-EVENT-CONNECTED"
	Disconnected = "CTRL-EVENT-DISCONNECTED"
	ScanResults  = "CTRL-EVENT-SCAN-RESULTS"
	ScanStarted  = "CTRL-EVENT-SCAN-STARTED"
	Terminating  = "CTRL-EVENT-TERMINATING"
	StateChange  = "CTRL-EVENT-STATE-CHANGE"

	StationConnected    = "AP-STA-CONNECTED"
	StationDisconnected = "AP-STA-DISCONNECTED"
)

const ifnamePrefix = "IFNAME="

// Priority is the numeric tag of an event. Lower values are more severe.
type Priority int

// Severer reports whether p ranks strictly above other.
func (p Priority) Severer(other Priority) bool {
	return p < other
}

// AtLeast reports whether p is as severe as min or more.
func (p Priority) AtLeast(min Priority) bool {
	return p <= min
}

// Event is one parsed notification.
type Event struct {
	Priority Priority
	// Interface is set only for events relayed by a global control interface.
	Interface string
	Name      string
	Details   string
	Raw       string
}

func (e Event) String() string {
	return e.Raw
}

// IsTagged reports whether b starts with a priority tag, optionally behind an
// IFNAME prefix. It does not allocate.
func IsTagged(b []byte) bool {
	_, _, ok := splitTag(b)
	return ok
}

// Parse splits raw into its parts. ok is false when raw carries no priority tag.
func Parse(raw string) (Event, bool) {
	b := []byte(raw)
	iface, tagEnd, ok := splitTag(b)
	if !ok {
		return Event{Raw: raw}, false
	}

	start := 0
	if iface != "" {
		start = len(ifnamePrefix) + len(iface) + 1
	}
	prio, err := strconv.Atoi(raw[start+1 : tagEnd])
	if err != nil {
		return Event{Raw: raw}, false
	}

	body := strings.TrimRight(raw[tagEnd+1:], "\r\n")
	name, details, _ := strings.Cut(body, " ")
	return Event{
		Priority:  Priority(prio),
		Interface: iface,
		Name:      name,
		Details:   strings.TrimSpace(details),
		Raw:       raw,
	}, true
}

// splitTag finds "<digits>" at the start of b, after an optional IFNAME prefix.
// tagEnd indexes the closing bracket.
func splitTag(b []byte) (iface string, tagEnd int, ok bool) {
	start := 0
	if hasPrefix(b, ifnamePrefix) {
		sp := -1
		for i := len(ifnamePrefix); i < len(b); i++ {
			if b[i] == ' ' {
				sp = i
				break
			}
		}
		if sp <= len(ifnamePrefix) {
			return "", 0, false
		}
		iface = string(b[len(ifnamePrefix):sp])
		start = sp + 1
	}

	if start >= len(b) || b[start] != '<' {
		return "", 0, false
	}
	digits := 0
	for i := start + 1; i < len(b); i++ {
		switch c := b[i]; {
		case c >= '0' && c <= '9':
			digits++
			if digits > 3 {
				return "", 0, false
			}
		case c == '>' && digits > 0:
			return iface, i, true
		default:
			return "", 0, false
		}
	}
	return "", 0, false
}

func hasPrefix(b []byte, prefix string) bool {
	return len(b) >= len(prefix) && string(b[:len(prefix)]) == prefix
}
