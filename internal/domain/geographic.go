package domain

import "math"

// AnglesToGeographic produces the X, Y, Z series of a pivoted table.
//
// When both H and D are recorded, X = H cos D and Y = H sin D with D in
// degrees; a missing H or D makes both outputs missing for that hour.
// Otherwise recorded X and Y columns pass through. Z always passes through.
// Components the source never recorded come back missing.
func AnglesToGeographic(p PivotedTable) XYZTable {
	var xs, ys []Value
	if p.Has(ComponentH) && p.Has(ComponentD) {
		h, d := p.Columns[ComponentH], p.Columns[ComponentD]
		xs = make([]Value, len(p.Times))
		ys = make([]Value, len(p.Times))
		for i := range p.Times {
			xs[i] = Lift2(h[i], d[i], func(h, d float64) float64 { return h * math.Cos(degToRad(d)) })
			ys[i] = Lift2(h[i], d[i], func(h, d float64) float64 { return h * math.Sin(degToRad(d)) })
		}
	} else {
		xs = p.Column(ComponentX)
		ys = p.Column(ComponentY)
	}
	zs := p.Column(ComponentZ)

	rows := make([]XYZRow, len(p.Times))
	for i, t := range p.Times {
		rows[i] = XYZRow{Time: t, X: xs[i], Y: ys[i], Z: zs[i]}
	}
	return XYZTable{Code: p.Code, Rows: rows}
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}
