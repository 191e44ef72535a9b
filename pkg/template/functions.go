package template

import (
	"math"
	"strconv"
)

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// randomInt returns a random integer in [lo, hi].
func (e *Engine) randomInt(lo, hi int) string {
	return strconv.Itoa(e.rand.intN(hi-lo+1) + lo)
}

// randomFloatRange returns a random float in [lo, hi) with the given
// number of decimals (default 2).
func (e *Engine) randomFloatRange(loStr, hiStr, precisionStr string) string {
	lo, err1 := strconv.ParseFloat(loStr, 64)
	hi, err2 := strconv.ParseFloat(hiStr, 64)
	if err1 != nil || err2 != nil || lo > hi {
		return ""
	}
	precision := 2
	if p, err := strconv.Atoi(precisionStr); err == nil && p >= 0 {
		precision = p
	}
	v := lo + e.rand.float64()*(hi-lo)
	scale := math.Pow(10, float64(precision))
	v = math.Round(v*scale) / scale
	return strconv.FormatFloat(v, 'f', precision, 64)
}

// randomString returns n random alphanumeric characters.
func (e *Engine) randomString(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphanumeric[e.rand.intN(len(alphanumeric))]
	}
	return string(b)
}
