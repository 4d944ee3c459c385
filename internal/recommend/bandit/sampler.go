// GAIming - Game Recommendation Engine
// Copyright 2026 Uri D. (Uri-do)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Uri-do/gaiming

package bandit

import (
	"math"
	"math/rand"
)

// SampleBeta draws from Beta(alpha, beta) as Ga/(Ga+Gb) with two gamma
// draws. Alpha and beta must be positive.
func SampleBeta(rng *rand.Rand, alpha, beta float64) float64 {
	ga := sampleGamma(rng, alpha)
	gb := sampleGamma(rng, beta)
	if ga+gb == 0 {
		return 0.5
	}
	return ga / (ga + gb)
}

// Variance returns the variance of Beta(alpha, beta). Used as an
// exploration tiebreak: higher variance means less certainty.
func Variance(alpha, beta float64) float64 {
	sum := alpha + beta
	return (alpha * beta) / (sum * sum * (sum + 1))
}

// sampleGamma draws from Gamma(shape, 1) using the Marsaglia-Tsang
// squeeze method. Shapes below 1 are boosted and corrected with a
// power-of-uniform factor.
func sampleGamma(rng *rand.Rand, shape float64) float64 {
	if shape < 1 {
		u := rng.Float64()
		for u == 0 {
			u = rng.Float64()
		}
		return sampleGamma(rng, shape+1) * math.Pow(u, 1/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)

	for {
		x := rng.NormFloat64()
		v := 1.0 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v

		u := rng.Float64()
		if u < 1.0-0.0331*x*x*x*x {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1.0-v+math.Log(v)) {
			return d * v
		}
	}
}
