package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/spacesim/internal/space"
	"github.com/san-kum/spacesim/internal/storage"
)

// AU is one astronomical unit in meters.
const AU = 149598e6

type Options struct {
	Size    int           // width and height in pixels
	ScaleAU float64       // AU from the center to the edge
	Center  space.Vector2 // world point at the middle of the image
}

func (o Options) withDefaults() Options {
	if o.Size <= 0 {
		o.Size = 800
	}
	if o.ScaleAU <= 0 {
		o.ScaleAU = 10
	}
	return o
}

// SnapshotToSVG draws every body as a disc in its own color. Body radii are
// fractions of half the image, as in the live view. Stars holding an emitter
// slot get a glow.
func SnapshotToSVG(bodies []space.BodyState, opts Options) string {
	opts = opts.withDefaults()
	size := float64(opts.Size)
	half := size / 2
	perMeter := half / (opts.ScaleAU * AU)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, opts.Size, opts.Size, opts.Size, opts.Size))

	for _, b := range bodies {
		rel := b.Position.Sub(opts.Center)
		cx := half + rel.X*perMeter
		cy := half - rel.Y*perMeter
		if cx < 0 || cx > size || cy < 0 || cy > size {
			continue
		}
		r := math.Max(b.Radius*half, 1.5)
		color := b.Color.Hex()

		if _, ok := starSlot(b); ok {
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" fill-opacity="0.25"/>
`, cx, cy, r*2.5, color))
		}
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"><title>%s</title></circle>
`, cx, cy, r, color, escape(b.Name)))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

func starSlot(b space.BodyState) (int, bool) {
	if b.Category != space.Star || b.Slot < 0 {
		return 0, false
	}
	return b.Slot, true
}

// TracksToSVG draws recorded paths, fitted to the image with 10% padding.
// colors maps body ids to "#rrggbb"; missing ids are drawn white.
func TracksToSVG(tracks []storage.Track, colors map[space.BodyID]string, size int) string {
	if size <= 0 {
		size = 800
	}
	first := true
	var minX, maxX, minY, maxY float64
	for _, tr := range tracks {
		for _, p := range tr.Positions {
			if first {
				minX, maxX, minY, maxY = p.X, p.X, p.Y, p.Y
				first = false
				continue
			}
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
	}
	if first {
		return ""
	}

	// square bounds keep orbits round
	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	span *= 1.2
	minX, minY = cx-span/2, cy-span/2

	fsize := float64(size)
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, size, size, size, size))

	for _, tr := range tracks {
		if len(tr.Positions) == 0 {
			continue
		}
		stroke, ok := colors[tr.ID]
		if !ok {
			stroke = "#ffffff"
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke))
		for i, p := range tr.Positions {
			x := (p.X - minX) / span * fsize
			y := fsize - (p.Y-minY)/span*fsize
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString(fmt.Sprintf(`"><title>%s</title></path>
`, escape(tr.Name)))
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string { return escaper.Replace(s) }
