// Package units provides distinct types for the physical quantities used in
// mass & balance and performance calculations.
//
// Arithmetic on these types is done on plain float64 values. A computed value
// becomes a unit again only when it is explicitly converted back, e.g.
// units.Kilogram(a.Float() + b.Float()), so every boundary states its unit.
package units

import (
	"errors"
	"fmt"

	"github.com/spf13/cast"
)

// Conversion constants
const (
	PoundsPerKilogram = 2.2046226218
	GallonsPerLiter   = 0.2641720524
	FeetPerMeter      = 3.280839895
)

var (
	// ErrBoolean is returned when a boolean is offered as a quantity.
	ErrBoolean = errors.New("boolean is not a valid quantity")
	// ErrNotNumeric is returned when a value cannot be converted to a number.
	ErrNotNumeric = errors.New("value is not numeric")
	// ErrUnitMismatch is returned when a quantity of another unit is offered.
	ErrUnitMismatch = errors.New("quantity has a different unit")
)

// Unit is the constraint satisfied by every quantity type in this package.
type Unit interface {
	~float64
	Float() float64
}

// Kilogram is a mass in kilograms.
type Kilogram float64

// Pound is a mass in pounds.
type Pound float64

// Liter is a volume in liters.
type Liter float64

// Gallon is a volume in US gallons.
type Gallon float64

// Meter is a length in meters.
type Meter float64

// Feet is a length in feet.
type Feet float64

// KilogramMeter is a moment in kilogram-meters.
type KilogramMeter float64

// InchPound is a moment in inch-pounds.
type InchPound float64

// KilogramPerLiter is a fuel density.
type KilogramPerLiter float64

// Celsius is a temperature in degrees Celsius.
type Celsius float64

// Knot is a wind component in knots.
type Knot float64

func (v Kilogram) Float() float64         { return float64(v) }
func (v Pound) Float() float64            { return float64(v) }
func (v Liter) Float() float64            { return float64(v) }
func (v Gallon) Float() float64           { return float64(v) }
func (v Meter) Float() float64            { return float64(v) }
func (v Feet) Float() float64             { return float64(v) }
func (v KilogramMeter) Float() float64    { return float64(v) }
func (v InchPound) Float() float64        { return float64(v) }
func (v KilogramPerLiter) Float() float64 { return float64(v) }
func (v Celsius) Float() float64          { return float64(v) }
func (v Knot) Float() float64             { return float64(v) }

// ToPounds converts kilograms to pounds.
func (v Kilogram) ToPounds() Pound { return Pound(float64(v) * PoundsPerKilogram) }

// ToKilograms converts pounds to kilograms.
func (v Pound) ToKilograms() Kilogram { return Kilogram(float64(v) / PoundsPerKilogram) }

// ToGallons converts liters to US gallons.
func (v Liter) ToGallons() Gallon { return Gallon(float64(v) * GallonsPerLiter) }

// ToLiters converts US gallons to liters.
func (v Gallon) ToLiters() Liter { return Liter(float64(v) / GallonsPerLiter) }

// ToFeet converts meters to feet.
func (v Meter) ToFeet() Feet { return Feet(float64(v) * FeetPerMeter) }

// ToMeters converts feet to meters.
func (v Feet) ToMeters() Meter { return Meter(float64(v) / FeetPerMeter) }

// New builds a quantity of type T from an arbitrary value. Numbers, numeric
// strings and values already of type T are accepted. Booleans and nil are
// rejected even though they have an obvious numeric encoding, and quantities
// of another unit must be converted explicitly first.
func New[T Unit](value any) (T, error) {
	switch v := value.(type) {
	case nil:
		return 0, fmt.Errorf("%T: %w: nil", T(0), ErrNotNumeric)
	case bool:
		return 0, fmt.Errorf("%T: %w", T(0), ErrBoolean)
	case T:
		return v, nil
	case interface{ Float() float64 }:
		return 0, fmt.Errorf("%T: %w: got %T", T(0), ErrUnitMismatch, v)
	}

	f, err := cast.ToFloat64E(value)
	if err != nil {
		return 0, fmt.Errorf("%T: %w: %v", T(0), ErrNotNumeric, err)
	}
	return T(f), nil
}

// MustNew is like New but panics on invalid input. Intended for constants and
// tests.
func MustNew[T Unit](value any) T {
	v, err := New[T](value)
	if err != nil {
		panic(err)
	}
	return v
}
