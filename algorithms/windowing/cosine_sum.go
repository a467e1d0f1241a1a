package windowing

import "math"

// Cosine-sum windows: w[n] = sum_k (-1)^k a_k cos(2*pi*k*n/N)
var (
	rectangularTerms    = []float64{1.0}
	hannTerms           = []float64{0.5, 0.5}
	hammingTerms        = []float64{0.54, 0.46}
	blackmanTerms       = []float64{0.42, 0.5, 0.08}
	exactBlackmanTerms  = []float64{7938.0 / 18608.0, 9240.0 / 18608.0, 1430.0 / 18608.0}
	blackmanHarrisTerms = []float64{0.35875, 0.48829, 0.14128, 0.01168}

	blackmanNuttallTerms = []float64{0.3635819, 0.4891775, 0.1365995, 0.0106411}

	sevenTermBlackmanHarrisTerms = []float64{
		0.27105140069342,
		0.43329793923448,
		0.21812299954311,
		0.06592544638803,
		0.01081174209837,
		0.00077658482522,
		0.00001388721735,
	}

	flatTopTerms     = []float64{0.21557895, 0.41663158, 0.277263158, 0.083578947, 0.006947368}
	lowSideLobeTerms = []float64{0.323215218, 0.471492057, 0.17553428, 0.028497078, 0.001261367}
)

func cosineSumDefinition(terms []float64) definition {
	return definition{
		generate: func(n int, _ *WindowConfig) []float64 { return generateCosineSum(n, terms) },
		gains:    func(*WindowConfig, []float64) (float64, float64) { return cosineSumGains(terms) },
	}
}

// generateCosineSum evaluates the periodic cosine-sum window of length n
func generateCosineSum(n int, terms []float64) []float64 {
	coefficients := make([]float64, n)
	for i := range n {
		arg := 2 * math.Pi * float64(i) / float64(n)
		sign := 1.0
		sum := 0.0
		for k, a := range terms {
			sum += sign * a * math.Cos(float64(k)*arg)
			sign = -sign
		}
		coefficients[i] = sum
	}
	return coefficients
}

// cosineSumGains returns the continuous-window gains: a0 and a0^2 + sum(a_k^2)/2.
// These are the factors the reference measurements divide by, and they equal the
// discrete mean/mean-square whenever n exceeds twice the highest term order.
func cosineSumGains(terms []float64) (coherent, power float64) {
	coherent = terms[0]
	power = terms[0] * terms[0]
	for _, a := range terms[1:] {
		power += a * a / 2
	}
	return coherent, power
}
