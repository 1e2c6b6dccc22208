package derivatives

// MediumPressure computes the flow-weighted mean pressure
//
//	p_m = (2/3)·(p_i³ − p_i1³)/(p_i² − p_i1²)
//
// along each gas branch together with its derivatives w.r.t. both
// endpoint absolute pressures. Equal endpoints are the analytic limit
// p_m = p_i, ∂p_m/∂p_i = 1, ∂p_m/∂p_i1 = −1; the check is per branch
// since one batch mixes degenerate and non-degenerate rows. The
// function runs every Newton iteration for every gas branch and only
// writes into the caller's buffers.
func MediumPressure(pFromAbs, pToAbs, pm, dpm, dpm1 []float64) {
	const c = 2.0 / 3.0
	for i := range pFromAbs {
		pi, pi1 := pFromAbs[i], pToAbs[i]
		if pi == pi1 {
			pm[i] = pi
			dpm[i] = 1
			dpm1[i] = -1
			continue
		}
		diffSq := pi*pi - pi1*pi1
		diffSqInv := 1 / diffSq
		diffCub := pi*pi*pi - pi1*pi1*pi1
		pm[i] = c * diffCub * diffSqInv
		dpm[i] = c * (3*pi*pi*diffSq - 2*pi*diffCub) * diffSqInv * diffSqInv
		dpm1[i] = c * (-3*pi1*pi1*diffSq + 2*pi1*diffCub) * diffSqInv * diffSqInv
	}
}
