package calendar

// Period represents a named span of the day starting at a fixed hour.
// Its end is implied by the next-starting period in the owning cycle.
type Period struct {
	ID        string // unique within a cycle
	Name      string // optional display name
	StartHour int    // 0-23
}

// Label returns the display name, falling back to the id
func (p Period) Label() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}
