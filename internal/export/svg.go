// Package export renders recorded flight paths as standalone SVG files.
package export

import (
	"fmt"
	"os"
	"strings"

	"github.com/san-kum/tvcsim/internal/recorder"
	"github.com/san-kum/tvcsim/internal/vehicle"
)

// TrajectorySVG draws the side view (x vs altitude) of a recorded flight as
// an SVG polyline, with stage events marked.
func TrajectorySVG(entries []recorder.Entry, stages []recorder.StageEvent, width, height int) string {
	if len(entries) < 2 {
		return ""
	}

	minX, maxX := entries[0].State[vehicle.PosX], entries[0].State[vehicle.PosX]
	minZ, maxZ := entries[0].State[vehicle.PosZ], entries[0].State[vehicle.PosZ]
	for _, e := range entries {
		x, z := e.State[vehicle.PosX], e.State[vehicle.PosZ]
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if z < minZ {
			minZ = z
		}
		if z > maxZ {
			maxZ = z
		}
	}
	if minZ > 0 {
		minZ = 0 // keep the ground in frame
	}

	rangeX := maxX - minX
	rangeZ := maxZ - minZ
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeZ == 0 {
		rangeZ = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	maxZ += rangeZ * 0.1
	rangeX = maxX - minX
	rangeZ = maxZ - minZ

	toPx := func(x, z float64) (float64, float64) {
		px := (x - minX) / rangeX * float64(width)
		py := float64(height) - (z-minZ)/rangeZ*float64(height)
		return px, py
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	// ground line
	_, groundY := toPx(minX, 0)
	sb.WriteString(fmt.Sprintf(`<line x1="0" y1="%.1f" x2="%d" y2="%.1f" stroke="#333333" stroke-width="1"/>
`, groundY, width, groundY))

	sb.WriteString(`<path fill="none" stroke="#1f77b4" stroke-width="1.5" d="M`)
	for i, e := range entries {
		px, py := toPx(e.State[vehicle.PosX], e.State[vehicle.PosZ])
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", px, py))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", px, py))
		}
	}
	sb.WriteString("\"/>\n")

	for _, ev := range stages {
		px, py := toPx(ev.Position[0], ev.Position[2])
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="3" fill="#ff7f0e"/>
`, px, py))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// WriteTrajectorySVG renders the trajectory to a file.
func WriteTrajectorySVG(path string, entries []recorder.Entry, stages []recorder.StageEvent, width, height int) error {
	svg := TrajectorySVG(entries, stages, width, height)
	if svg == "" {
		return fmt.Errorf("not enough recorded entries to draw a trajectory")
	}
	return os.WriteFile(path, []byte(svg), 0644)
}
