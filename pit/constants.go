package pit

// Physical constants shared by the derivative kernels, the solver and
// the result extraction. Pressures are carried in bar throughout the
// tables; PConversion converts the bar-based pressure terms into Pa
// inside the momentum balance.
const (
	NormalPressure    = 1.01325 // bar
	NormalTemperature = 273.15  // K
	Gravitation       = 9.81    // m/s^2
	PConversion       = 1e5     // Pa per bar
)
