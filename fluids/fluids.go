package fluids

import "fmt"

// Fluid bundles the property correlations the solver needs. Liquids
// carry a temperature-dependent density; gases carry their density at
// normal conditions plus a pressure-dependent compressibility factor
// correcting the ideal-gas relation. Property slopes are linearized
// around the reference state, which keeps every derivative the Newton
// iteration needs analytic.
type Fluid struct {
	Name  string
	IsGas bool

	rhoRef    float64 // kg/m^3 at tRef (liquids) or normal conditions (gases)
	rhoSlope  float64 // kg/(m^3 K)
	tRef      float64 // K
	etaRef    float64 // Pa*s at tRef
	etaSlope  float64 // Pa*s per K
	cp        float64 // J/(kg K)
	compRef   float64 // compressibility factor at p=0 bar
	compSlope float64 // per bar
}

// Density returns the fluid density at temperature t. For gases this
// is the normal-condition density; the compressible momentum kernel
// applies the pressure correction itself.
func (f *Fluid) Density(t float64) float64 {
	if f.IsGas {
		return f.rhoRef
	}
	return f.rhoRef + f.rhoSlope*(t-f.tRef)
}

func (f *Fluid) Viscosity(t float64) float64 {
	eta := f.etaRef + f.etaSlope*(t-f.tRef)
	if eta < 1e-7 {
		eta = 1e-7
	}
	return eta
}

func (f *Fluid) HeatCapacity() float64 { return f.cp }

// Compressibility returns the factor Z(p) at absolute pressure p in
// bar.
func (f *Fluid) Compressibility(p float64) float64 {
	return f.compRef + f.compSlope*p
}

// DerCompressibility is dZ/dp. The linearized property makes it a
// constant; the kernels combine it with the mean-pressure derivatives
// via the chain rule.
func (f *Fluid) DerCompressibility() float64 { return f.compSlope }

// Water at atmospheric conditions.
func Water() *Fluid {
	return &Fluid{
		Name:     "water",
		rhoRef:   998.2,
		rhoSlope: -0.21,
		tRef:     293.15,
		etaRef:   1.002e-3,
		etaSlope: -2.1e-5,
		cp:       4182,
		compRef:  1,
	}
}

// LGas is low calorific natural gas.
func LGas() *Fluid {
	return &Fluid{
		Name:      "lgas",
		IsGas:     true,
		rhoRef:    0.8266, // at normal conditions
		tRef:      273.15,
		etaRef:    1.055e-5,
		etaSlope:  3.5e-8,
		cp:        2185,
		compRef:   1,
		compSlope: -0.0024,
	}
}

// HGas is high calorific natural gas.
func HGas() *Fluid {
	return &Fluid{
		Name:      "hgas",
		IsGas:     true,
		rhoRef:    0.7614,
		tRef:      273.15,
		etaRef:    1.098e-5,
		etaSlope:  3.7e-8,
		cp:        2458,
		compRef:   1,
		compSlope: -0.0022,
	}
}

var registry = map[string]func() *Fluid{
	"water": Water,
	"lgas":  LGas,
	"hgas":  HGas,
}

// Get looks a fluid up by name.
func Get(name string) (*Fluid, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("fluids: unknown fluid %q", name)
	}
	return ctor(), nil
}
