package domain

import (
	"encoding/json"
	"math"
)

// Value is an optional physical quantity. The zero value is missing.
type Value struct {
	v  float64
	ok bool
}

// Missing is the absent value.
var Missing = Value{}

// Some wraps a present value. NaN and infinities are treated as missing so a
// Value never carries a non-finite number.
func Some(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Missing
	}
	return Value{v: f, ok: true}
}

// Get returns the value and whether it is present.
func (v Value) Get() (float64, bool) {
	return v.v, v.ok
}

// Valid reports whether the value is present.
func (v Value) Valid() bool {
	return v.ok
}

// Float64 returns the value, or NaN when missing. Use it only at output
// boundaries that expect NaN holes.
func (v Value) Float64() float64 {
	if !v.ok {
		return math.NaN()
	}
	return v.v
}

// Lift2 applies f when both inputs are present, otherwise returns Missing.
func Lift2(a, b Value, f func(a, b float64) float64) Value {
	if !a.ok || !b.ok {
		return Missing
	}
	return Some(f(a.v, b.v))
}

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.ok {
		return []byte("null"), nil
	}
	return json.Marshal(v.v)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Missing
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}
