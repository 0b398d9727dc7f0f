package state

import (
	"encoding/json"
	"io"
	"time"
)

// SnapshotExport is the JSON-serializable representation of the animation.
type SnapshotExport struct {
	ExportedAt time.Time       `json:"exported_at"`
	LastFrame  time.Time       `json:"last_frame"`
	Ticks      uint64          `json:"ticks"`
	Frames     uint64          `json:"frames"`
	Comets     uint64          `json:"comets"`
	Elements   []ElementExport `json:"elements"`
	Events     []Event         `json:"events,omitempty"`
}

// ElementExport is one strip element with its device colour.
type ElementExport struct {
	Index int     `json:"index"`
	H     float64 `json:"h"`
	S     float64 `json:"s"`
	V     float64 `json:"v"`
	Hex   string  `json:"hex"`
}

// ExportSnapshot converts a Snapshot to an exportable format.
func ExportSnapshot(snap Snapshot, exportedAt time.Time) *SnapshotExport {
	export := &SnapshotExport{
		ExportedAt: exportedAt,
		LastFrame:  snap.LastFrame,
		Ticks:      snap.Ticks,
		Frames:     snap.Frames,
		Comets:     snap.Comets,
		Events:     snap.Events,
		Elements:   make([]ElementExport, len(snap.Frame)),
	}
	for i, px := range snap.Frame {
		export.Elements[i] = ElementExport{
			Index: i,
			H:     px.H,
			S:     px.S,
			V:     px.V,
			Hex:   px.Hex(),
		}
	}
	return export
}

// WriteJSON writes the export as indented JSON.
func (e *SnapshotExport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
