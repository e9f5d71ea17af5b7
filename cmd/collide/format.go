package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// parseVec parses "x,y".
func parseVec(s string) (v2.Vec, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 2 {
		return v2.Vec{}, fmt.Errorf("invalid point %q, expected x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
	if err != nil {
		return v2.Vec{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return v2.Vec{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	return v2.Vec{X: x, Y: y}, nil
}

// FormatBox renders a box as "[x0, y0] .. [x1, y1]".
func FormatBox(b BoxData) string {
	if !b.Valid {
		return "(empty)"
	}
	return fmt.Sprintf("[%.6g, %.6g] .. [%.6g, %.6g]", b.Min[0], b.Min[1], b.Max[0], b.Max[1])
}

// writeReport prints a report in plain text.
func writeReport(w io.Writer, r Report) {
	for _, c := range r.Compounds {
		fmt.Fprintf(w, "Compound %q\n", c.Name)
		fmt.Fprintf(w, "  Parts: %d\n", len(c.Parts))
		fmt.Fprintf(w, "  AABB:  %s\n", FormatBox(c.AABB))
		for _, p := range c.Parts {
			fmt.Fprintf(w, "  %4d  %-15s %s\n", p.ID, p.Kind, FormatBox(p.AABB))
		}
	}
	for _, wr := range r.Warnings {
		fmt.Fprintf(w, "warning: compound %q: %s\n", wr.Compound, wr.Message)
	}
}

// writeErrors prints evaluation errors.
func writeErrors(w io.Writer, r Report) {
	for _, e := range r.Errors {
		if e.Line > 0 {
			fmt.Fprintf(w, "error: line %d: %s\n", e.Line, e.Message)
		} else {
			fmt.Fprintf(w, "error: %s\n", e.Message)
		}
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeHit(w io.Writer, h Hit) {
	if h.Inside {
		fmt.Fprintf(w, "inside (parts %v)\n", h.Parts)
	} else {
		fmt.Fprintln(w, "outside")
	}
	fmt.Fprintf(w, "distance: %.6g\n", h.Distance)
}
