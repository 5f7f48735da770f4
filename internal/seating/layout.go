package seating

import "math"

// Point is a position in viewport coordinates (origin top-left, y grows down).
type Point struct {
	X float64
	Y float64
}

// CircleMax is the largest player count still laid out on a circle.
const CircleMax = 8

// Padding returns the distance kept between the seat track and the viewport edge.
func Padding(total int) float64 {
	switch {
	case total <= 12:
		return 60
	case total <= 16:
		return 50
	default:
		return 40
	}
}

// Position maps a seat index to viewport coordinates. Seat 0 sits at the top
// and indices advance clockwise. index may be fractional (e.g. i-0.5 for the
// point between two seats) and is taken modulo total.
func Position(index float64, total int, width, height float64) Point {
	if total < 1 {
		total = 1
	}
	frac := math.Mod(index/float64(total), 1)
	if frac < 0 {
		frac += 1
	}
	if total <= CircleMax {
		return onCircle(frac, width, height, Padding(total))
	}
	return newTrack(width, height, Padding(total)).at(frac)
}

func onCircle(frac, width, height, padding float64) Point {
	radius := math.Max(0, math.Min(width, height)/2-padding)
	angle := frac*2*math.Pi - math.Pi/2
	return Point{
		X: width/2 + radius*math.Cos(angle),
		Y: height/2 + radius*math.Sin(angle),
	}
}

// track is the rounded-rectangle perimeter used for larger tables.
type track struct {
	width, height float64
	padding       float64
	corner        float64
	horizontal    float64 // length of top and bottom straight edges
	vertical      float64 // length of left and right straight edges
	arc           float64 // length of one quarter-circle corner
}

func newTrack(width, height, padding float64) track {
	corner := math.Min(80, math.Min(width, height)/6)
	t := track{
		width:   width,
		height:  height,
		padding: padding,
		corner:  corner,
		arc:     math.Pi / 2 * corner,
	}
	t.horizontal = math.Max(0, width-2*padding-2*corner)
	t.vertical = math.Max(0, height-2*padding-2*corner)
	return t
}

func (t track) perimeter() float64 {
	return 2*t.horizontal + 2*t.vertical + 4*t.arc
}

// at returns the point at fraction frac (0..1) of the perimeter, starting at
// the left end of the top edge and walking clockwise.
func (t track) at(frac float64) Point {
	pos := frac * t.perimeter()
	left := t.padding
	right := t.width - t.padding
	top := t.padding
	bottom := t.height - t.padding
	r := t.corner

	// segments in clockwise order: top, top-right arc, right, bottom-right arc,
	// bottom, bottom-left arc, left, top-left arc
	if pos < t.horizontal {
		return Point{X: left + r + pos, Y: top}
	}
	pos -= t.horizontal
	if pos < t.arc {
		return t.arcPoint(right-r, top+r, pos, -math.Pi/2)
	}
	pos -= t.arc
	if pos < t.vertical {
		return Point{X: right, Y: top + r + pos}
	}
	pos -= t.vertical
	if pos < t.arc {
		return t.arcPoint(right-r, bottom-r, pos, 0)
	}
	pos -= t.arc
	if pos < t.horizontal {
		return Point{X: right - r - pos, Y: bottom}
	}
	pos -= t.horizontal
	if pos < t.arc {
		return t.arcPoint(left+r, bottom-r, pos, math.Pi/2)
	}
	pos -= t.arc
	if pos < t.vertical {
		return Point{X: left, Y: bottom - r - pos}
	}
	pos -= t.vertical
	return t.arcPoint(left+r, top+r, math.Min(pos, t.arc), math.Pi)
}

// arcPoint interpolates along a quarter circle centred on (cx, cy), starting
// at angle start and sweeping clockwise by pos/arc of a right angle.
func (t track) arcPoint(cx, cy, pos, start float64) Point {
	angle := start
	if t.arc > 0 {
		angle += pos / t.arc * (math.Pi / 2)
	}
	return Point{
		X: cx + t.corner*math.Cos(angle),
		Y: cy + t.corner*math.Sin(angle),
	}
}

// Indicator describes the drop marker drawn between two seats while dragging.
type Indicator struct {
	At Point
	// Rotation in degrees, clockwise from vertical.
	Rotation float64
}

// IndicatorAt returns the drop marker for gap, which sits halfway between
// seat gap-1 and seat gap.
func IndicatorAt(gap, total int, width, height float64) Indicator {
	if total < 1 {
		total = 1
	}
	mid := float64(gap) - 0.5
	return Indicator{
		At:       Position(mid, total, width, height),
		Rotation: mid / float64(total) * 360,
	}
}
