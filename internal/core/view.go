package core

import "fmt"

// View is the aggregation lens a read request is served under. It is
// always passed explicitly; there is no process-wide current view.
type View string

const (
	ViewMain     View = "main"
	ViewPartner  View = "partner"
	ViewCombined View = "combined"
)

// ParseView maps a request parameter to a View. Empty defaults to the
// combined household view.
func ParseView(s string) (View, error) {
	switch View(s) {
	case "":
		return ViewCombined, nil
	case ViewMain, ViewPartner, ViewCombined:
		return View(s), nil
	}
	return "", fmt.Errorf("invalid view %q", s)
}

// Filtered projects entries down to the chosen viewpoint. This is the
// single aggregation boundary: summaries, tables and balance rollups all
// consume entries through it.
//
// The combined view returns only primaries and masters, the full-amount
// source-of-truth rows, so shares are never double counted. A persona
// view returns the rows owned by that persona; shadows are owner-tagged
// to the receiving persona and therefore surface their half inline.
func Filtered(entries []Entry, v View) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		switch v {
		case ViewCombined:
			if !e.IsShadow() {
				out = append(out, e)
			}
		default:
			if e.Owner == Persona(v) {
				out = append(out, e)
			}
		}
	}
	return out
}
