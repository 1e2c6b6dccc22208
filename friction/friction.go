// Package friction computes the pipe friction factor λ, the Reynolds
// number and the velocity derivative dλ/dv for the hydraulic
// derivative engine. All functions operate on whole branch batches and
// write into caller-supplied buffers.
package friction

import "math"

// Model selects the friction correlation.
type Model int

const (
	// Nikuradse sums the laminar 64/Re term with the fully rough
	// Nikuradse limit. Default model.
	Nikuradse Model = iota
	// SwameeJain is the explicit approximation of Colebrook-White.
	SwameeJain
	// Colebrook solves the implicit Colebrook-White equation by
	// fixed-point iteration.
	Colebrook
)

func ParseModel(s string) (Model, bool) {
	switch s {
	case "nikuradse", "":
		return Nikuradse, true
	case "swamee-jain":
		return SwameeJain, true
	case "colebrook":
		return Colebrook, true
	}
	return Nikuradse, false
}

func (m Model) String() string {
	switch m {
	case SwameeJain:
		return "swamee-jain"
	case Colebrook:
		return "colebrook"
	}
	return "nikuradse"
}

// Options tune the Colebrook fixed-point iteration.
type Options struct {
	MaxIter int
	Tol     float64
}

func (o Options) withDefaults() Options {
	if o.MaxIter <= 0 {
		o.MaxIter = 10
	}
	if o.Tol <= 0 {
		o.Tol = 1e-10
	}
	return o
}

const ln10 = math.Ln10

// Lambda fills lambda and re for the batch. zeroLength carries 1 for
// rows with physical length and 0 for pure local-loss connectors;
// their friction factor is forced to zero so only the loss coefficient
// contributes. gasMode is accepted for interface parity with the
// fluid-property layer; the correlations themselves are phase
// agnostic. Rows with zero velocity get Re=0 and a zero friction
// factor; the momentum kernel multiplies λ by v², so the residual
// stays exact and finite.
func Lambda(v, eta, rho, d, k []float64, gasMode bool, model Model, zeroLength []float64, opts Options, lambda, re []float64) {
	_ = gasMode
	opts = opts.withDefaults()
	for i := range v {
		re[i] = math.Abs(v[i]) * rho[i] * d[i] / eta[i]
		if re[i] < 1e-12 || zeroLength[i] == 0 {
			lambda[i] = 0
			continue
		}
		switch model {
		case SwameeJain:
			lambda[i] = swameeJain(re[i], d[i], k[i])
		case Colebrook:
			lambda[i] = colebrook(re[i], d[i], k[i], opts)
		default:
			lambda[i] = 64/re[i] + nikuradse(d[i], k[i])
		}
	}
}

// DerLambda fills der with dλ/dv, the signed derivative matching the
// λ(v) evaluated by Lambda. Zero-velocity and zero-friction rows get
// zero; the kernels combine der with v·|v| so the product vanishes
// there anyway.
func DerLambda(v, eta, rho, d, k []float64, model Model, lambda []float64, der []float64) {
	for i := range v {
		vAbs := math.Abs(v[i])
		if vAbs < 1e-12 || lambda[i] == 0 {
			der[i] = 0
			continue
		}
		switch model {
		case SwameeJain:
			re := vAbs * rho[i] * d[i] / eta[i]
			der[i] = derSwameeJain(re, d[i], k[i]) * rho[i] * d[i] / eta[i] * sign(v[i])
		case Colebrook:
			der[i] = derColebrook(v[i], eta[i], rho[i], d[i], k[i], lambda[i])
		default:
			der[i] = -64 * eta[i] / (rho[i] * d[i] * v[i] * vAbs)
		}
	}
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

// nikuradse is the fully rough limit 1/(2·log10(d/k)+1.14)².
func nikuradse(d, k float64) float64 {
	t := 2*math.Log10(d/k) + 1.14
	return 1 / (t * t)
}

func swameeJain(re, d, k float64) float64 {
	a := k/(3.7*d) + 5.74/math.Pow(re, 0.9)
	l := math.Log10(a)
	return 0.25 / (l * l)
}

// derSwameeJain is dλ/dRe.
func derSwameeJain(re, d, k float64) float64 {
	a := k/(3.7*d) + 5.74/math.Pow(re, 0.9)
	l := math.Log10(a)
	dadre := -0.9 * 5.74 * math.Pow(re, -1.9)
	return -0.5 / (l * l * l) * dadre / (a * ln10)
}

// colebrook iterates λ = (−2·log10(2.51/(Re·√λ) + k/(3.71·d)))⁻²,
// seeded with the Swamee-Jain estimate.
func colebrook(re, d, k float64, opts Options) float64 {
	lam := swameeJain(re, d, k)
	for n := 0; n < opts.MaxIter; n++ {
		b := 2.51/(re*math.Sqrt(lam)) + k/(3.71*d)
		next := -2 * math.Log10(b)
		next = 1 / (next * next)
		if math.Abs(next-lam) < opts.Tol {
			return next
		}
		lam = next
	}
	return lam
}

// derColebrook differentiates the implicit Colebrook relation
// G(λ,v) = λ^(−1/2) + 2·log10(b) = 0 with
// b = 2.51·η/(ρ·d·|v|·√λ) + k/(3.71·d), giving
// dλ/dv = −(∂G/∂v)/(∂G/∂λ) with the sign of v restored.
func derColebrook(v, eta, rho, d, k, lam float64) float64 {
	vAbs := math.Abs(v)
	sqrtLam := math.Sqrt(lam)
	cb := 2.51 * eta / (rho * d)
	b := cb/(vAbs*sqrtLam) + k/(3.71*d)
	dGdv := 2 / (b * ln10) * (-cb / (vAbs * vAbs * sqrtLam))
	dGdl := -0.5*math.Pow(lam, -1.5) + 2/(b*ln10)*(-0.5*cb/(vAbs*math.Pow(lam, 1.5)))
	return -dGdv / dGdl * sign(v)
}
