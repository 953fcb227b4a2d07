package domain

// Capability is a closed enumeration of the permission strings the backend
// issues. Permission checks go through CapabilitySet instead of scanning the
// raw string slice on every call site.
type Capability string

const (
	CapDatapuurRead    Capability = "datapuur:read"
	CapDatapuurWrite   Capability = "datapuur:write"
	CapDatapuurManage  Capability = "datapuur:manage"
	CapKGInsightsRead  Capability = "kginsights:read"
	CapKGInsightsWrite Capability = "kginsights:write"
	CapAdminRead       Capability = "admin:read"
	CapAdminManage     Capability = "admin:manage"
)

var knownCapabilities = map[Capability]bool{
	CapDatapuurRead:    true,
	CapDatapuurWrite:   true,
	CapDatapuurManage:  true,
	CapKGInsightsRead:  true,
	CapKGInsightsWrite: true,
	CapAdminRead:       true,
	CapAdminManage:     true,
}

// CapabilitySet is the set of capabilities granted to a session, computed once
// when the session loads.
type CapabilitySet map[Capability]bool

// ParseCapabilities maps raw permission strings onto the capability set.
// Strings the client does not recognize are returned separately so callers can
// log them without losing forward compatibility with newer backends.
func ParseCapabilities(perms []string) (set CapabilitySet, unknown []string) {
	set = make(CapabilitySet, len(perms))
	for _, p := range perms {
		c := Capability(p)
		if knownCapabilities[c] {
			set[c] = true
		} else {
			unknown = append(unknown, p)
		}
	}
	return set, unknown
}

// Has reports whether the capability was granted.
func (s CapabilitySet) Has(c Capability) bool {
	return s[c]
}

// Strings returns the granted capabilities as sorted-insensitive raw strings,
// mainly for display.
func (s CapabilitySet) Strings() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, string(c))
	}
	return out
}
