package export

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// CurveToSVG draws the polyline (xs[i], ys[i]) scaled to width x height with
// 10% padding and optional axis labels.
func CurveToSVG(xs, ys []float64, width, height int, strokeColor, xLabel, yLabel string) (string, error) {
	if len(xs) != len(ys) {
		return "", fmt.Errorf("export: %d x values for %d y values", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return "", fmt.Errorf("export: need at least 2 points, got %d", len(xs))
	}

	minX, maxX := floats.Min(xs), floats.Max(xs)
	minY, maxY := floats.Min(ys), floats.Max(ys)

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i := range xs {
		x := (xs[i] - minX) / rangeX * float64(width)
		y := float64(height) - (ys[i]-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}
	sb.WriteString(`"/>
`)

	if xLabel != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" fill="#888888" font-size="12" text-anchor="middle">%s (%.3g to %.3g)</text>
`, width/2, height-4, xLabel, floats.Min(xs), floats.Max(xs)))
	}
	if yLabel != "" {
		sb.WriteString(fmt.Sprintf(`<text x="4" y="14" fill="#888888" font-size="12">%s (%.3g to %.3g)</text>
`, yLabel, floats.Min(ys), floats.Max(ys)))
	}

	sb.WriteString(`</svg>`)
	return sb.String(), nil
}
