package windowing

import "math"

// generateKaiser creates periodic Kaiser window coefficients
func generateKaiser(n int, beta float64) []float64 {
	coefficients := make([]float64, n)

	// Normalize so that the peak coefficient is 1
	i0Beta := besselI0(beta)

	for i := range n {
		arg := 2.0*float64(i)/float64(n) - 1.0
		coefficients[i] = besselI0(beta*math.Sqrt(1-arg*arg)) / i0Beta
	}
	return coefficients
}

// besselI0 computes the zero-order modified Bessel function of the first kind
func besselI0(x float64) float64 {
	// Series expansion, converges quickly for the beta range used by windows
	sum := 1.0
	term := 1.0

	for i := 1; i < 300; i++ {
		half := x / (2.0 * float64(i))
		term *= half * half
		sum += term

		if term < 1e-16*sum {
			break
		}
	}

	return sum
}

// generateTriangle creates a periodic triangular (Bartlett) window peaking at n/2
func generateTriangle(n int) []float64 {
	coefficients := make([]float64, n)
	for i := range n {
		coefficients[i] = 1.0 - math.Abs(2.0*float64(i)/float64(n)-1.0)
	}
	return coefficients
}

// generateWelch creates a periodic Welch (parabolic) window
func generateWelch(n int) []float64 {
	coefficients := make([]float64, n)
	for i := range n {
		arg := 2.0*float64(i)/float64(n) - 1.0
		coefficients[i] = 1.0 - arg*arg
	}
	return coefficients
}

// generateTukey creates a periodic Tukey window: flat middle with cosine tapers
// covering alpha of the length
func generateTukey(n int, alpha float64) []float64 {
	coefficients := make([]float64, n)
	for i := range n {
		x := float64(i) / float64(n)
		switch {
		case alpha == 0:
			coefficients[i] = 1.0
		case x < alpha/2:
			// Rising cosine taper
			coefficients[i] = 0.5 * (1 - math.Cos(2*math.Pi*x/alpha))
		case x > 1-alpha/2:
			// Falling cosine taper
			coefficients[i] = 0.5 * (1 - math.Cos(2*math.Pi*(1-x)/alpha))
		default:
			coefficients[i] = 1.0
		}
	}
	return coefficients
}

// tukeyGains returns the closed-form Tukey gains, 1-alpha/2 and 1-5*alpha/8
func tukeyGains(cfg *WindowConfig, _ []float64) (float64, float64) {
	return 1 - cfg.Alpha/2, 1 - 5*cfg.Alpha/8
}
