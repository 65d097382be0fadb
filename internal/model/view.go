package model

// ViewMode selects what the display shows.
type ViewMode int

const (
	ViewPrice ViewMode = iota
	ViewGraph8h
	ViewGraph24h
)

// Next returns the mode that follows m, wrapping Graph24h back to Price.
func (m ViewMode) Next() ViewMode {
	return (m + 1) % 3
}

// Slots returns the number of 15-minute slots shown by a graph mode, 0 for Price.
func (m ViewMode) Slots() int {
	switch m {
	case ViewGraph8h:
		return 32
	case ViewGraph24h:
		return 96
	default:
		return 0
	}
}

func (m ViewMode) String() string {
	switch m {
	case ViewPrice:
		return "price"
	case ViewGraph8h:
		return "graph8h"
	case ViewGraph24h:
		return "graph24h"
	default:
		return "unknown"
	}
}
