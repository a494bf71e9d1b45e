package engine

import (
	"regexp"
	"strconv"
	"strings"
)

// reqMode classifies a parsed requirement expression.
type reqMode int

const (
	reqAny reqMode = iota
	reqGT
	reqLT
	reqRange
	reqEQ
	// reqInvalid marks an operator with an unparseable bound, e.g. ">abc".
	// It never scores.
	reqInvalid
)

// numericReqRe decides whether a free-text requirement carries numeric
// intent or is a plain label to compare verbatim.
var numericReqRe = regexp.MustCompile(`[<>-]|\d`)

func stripPct(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "%", "")
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// parseActualValue reads a measured value such as "55%", "7.2" or "2".
func parseActualValue(s string) (float64, bool) {
	return parseNumber(stripPct(s))
}

// parseRequirement parses a requirement expression into a mode and its
// bounds: ">40%" is gt, "<10" is lt, "6.5-8.0" is range, a bare number is
// eq, anything else is any. A leading minus sign is a negative number, not
// a range separator.
func parseRequirement(req string) (mode reqMode, a, b float64) {
	s := strings.TrimSpace(req)
	if s == "" {
		return reqAny, 0, 0
	}
	if strings.HasPrefix(s, ">") {
		if n, ok := parseNumber(stripPct(s[1:])); ok {
			return reqGT, n, 0
		}
		return reqInvalid, 0, 0
	}
	if strings.HasPrefix(s, "<") {
		if n, ok := parseNumber(stripPct(s[1:])); ok {
			return reqLT, n, 0
		}
		return reqInvalid, 0, 0
	}
	if strings.Contains(s, "-") && !strings.HasPrefix(s, "-") {
		lo, hi, _ := strings.Cut(s, "-")
		la, okA := parseNumber(stripPct(lo))
		lb, okB := parseNumber(stripPct(hi))
		if okA && okB && la <= lb {
			return reqRange, la, lb
		}
	}
	if n, ok := parseNumber(stripPct(s)); ok {
		return reqEQ, n, 0
	}
	return reqAny, 0, 0
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// scoreAgainstRequirement grades a measured value against a requirement
// expression. Values inside the requirement earn 1.0 and degrade linearly
// over a 20% tolerance band outside it; eq requirements keep a 5% plateau
// around the target.
func scoreAgainstRequirement(actual float64, haveActual bool, req string) float64 {
	if !haveActual {
		return 0.0
	}
	mode, a, b := parseRequirement(req)
	switch mode {
	case reqAny:
		return 1.0
	case reqGT:
		if actual >= a {
			return 1.0
		}
		tol := max64(1e-6, 0.20*a)
		return clamp01((actual - (a - tol)) / tol)
	case reqLT:
		if actual <= a {
			return 1.0
		}
		tol := max64(1e-6, 0.20*a)
		return clamp01(((a + tol) - actual) / tol)
	case reqRange:
		if a <= actual && actual <= b {
			return 1.0
		}
		width := max64(1e-6, b-a)
		tol := 0.20 * width
		if actual < a {
			return clamp01((actual - (a - tol)) / tol)
		}
		return clamp01(((b + tol) - actual) / tol)
	case reqEQ:
		if a == 0 {
			if actual == 0 {
				return 1.0
			}
			return 0.0
		}
		diff := abs64(actual - a)
		plateau := 0.05 * abs64(a)
		zero := 0.20 * abs64(a)
		if diff <= plateau {
			return 1.0
		}
		if diff >= zero {
			return 0.0
		}
		return (zero - diff) / (zero - plateau)
	}
	return 0.0
}

func max64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func abs64(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
