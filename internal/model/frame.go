package model

import "image/color"

// FrameKind tells the drawing surface which layout a Frame uses.
type FrameKind int

const (
	FrameStatus FrameKind = iota // title + status text only (no data, not configured)
	FramePrice
	FrameGraph
)

// Frame is one rendered view. It is recomputed on every redraw and never retained.
type Frame struct {
	Kind       FrameKind
	Mode       ViewMode
	Title      string
	Text       string // formatted price, or the status message for FrameStatus
	Unit       string
	Status     string
	Background color.RGBA
	Foreground color.RGBA
	Stale      bool
	Graph      *Graph
}

// Point is one vertex of the price curve in device pixels.
type Point struct {
	X, Y  float64
	Line  color.RGBA
	Fill  color.RGBA
	Price float64
}

// Marker is the "now" position on the graph.
type Marker struct {
	X, Y    float64
	Present bool // false when the current slot has no price; only X is meaningful then
}

// Tick is an hour label below the graph.
type Tick struct {
	X     float64
	Label string
}

// Graph is the geometry of a graph frame. Each segment is a run of
// consecutive known slots; missing slots split the curve.
type Graph struct {
	Width, Height int
	Left, Right   float64
	Top, Bottom   float64

	Segments [][]Point
	Marker   Marker
	Ticks    []Tick

	// Scaling inputs, from the known slots of the window only.
	MinPrice float64
	MaxPrice float64
	MinLabel string
	MaxLabel string
	Known    int
	Slots    int
}
