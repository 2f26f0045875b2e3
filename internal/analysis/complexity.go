package analysis

import (
	"fmt"
	"math"
	"strings"
)

// Complexity is the verdict of a two-pass measurement.
//
// The values other than NotMeasured are ordered from best to worst, except
// BetterThanO1, which flags an implausible measurement rather than a real
// complexity.
type Complexity int

const (
	// NotMeasured is the verdict of an operation kind that was not run.
	NotMeasured Complexity = iota
	BetterThanO1
	O1
	Ologn
	BetweenOLogNAndOn
	On
	WorseThanOn
)

var complexityNames = map[Complexity]string{
	NotMeasured:       "NotMeasured",
	BetterThanO1:      "BetterThanO1",
	O1:                "O1",
	Ologn:             "Ologn",
	BetweenOLogNAndOn: "BetweenOLogNAndOn",
	On:                "On",
	WorseThanOn:       "WorseThanOn",
}

func (c Complexity) String() string {
	if name, ok := complexityNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Complexity(%d)", int(c))
}

// Description returns the human verdict printed in analysis reports.
func (c Complexity) Description() string {
	switch c {
	case NotMeasured:
		return "not measured"
	case BetterThanO1:
		return "Better than O(1) -- aren't the machines idle or is there too little RAM?"
	case O1:
		return "O(1)"
	case Ologn:
		return "O(log(n))"
	case BetweenOLogNAndOn:
		return "Worse than O(log(n)) but better than O(n)"
	case On:
		return "O(n)"
	case WorseThanOn:
		return "Worse than O(n)"
	default:
		return "unpredicted algorithm complexity"
	}
}

// MarshalText encodes the verdict by name.
func (c Complexity) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a name produced by MarshalText.
func (c *Complexity) UnmarshalText(text []byte) error {
	for value, name := range complexityNames {
		if name == string(text) {
			*c = value
			return nil
		}
	}
	return fmt.Errorf("unknown complexity %q", text)
}

// PercentError is the tolerance applied to every ratio test.
//
// A ratio x is within tolerance when |x| < PercentError and beyond it when
// x >= PercentError; both rules apply to every branch of the classifier.
const PercentError = 0.10

// ClassifyInsertOrDelete classifies two insert (or delete) passes: pass 1
// moved n elements, pass 2 moved the following 2n. With n == 0 there is
// nothing to classify and the verdict is NotMeasured.
func ClassifyInsertOrDelete(pass1Delta, pass2Delta uint64, n uint) Complexity {
	if n == 0 {
		return NotMeasured
	}
	t1, t2 := insertOrDeleteTimes(pass1Delta, pass2Delta, n)
	growth := math.Log(float64(3*n)) / math.Log(float64(n))
	return classify(t1, t2, growth, 3)
}

// ClassifyUpdateOrSelect classifies two update (or select) passes of r
// operations each, run against structures holding n1 and n2 elements.
// n2 should be at least twice n1. Empty passes or structures are NotMeasured.
func ClassifyUpdateOrSelect(pass1Delta, pass2Delta uint64, n1, n2, r uint) Complexity {
	if n1 == 0 || r == 0 {
		return NotMeasured
	}
	t1, t2 := perElement(pass1Delta, r), perElement(pass2Delta, r)
	growth := math.Log(float64(n2)) / math.Log(float64(n1))
	linear := float64(n2) / float64(n1)
	return classify(t1, t2, growth, linear)
}

func insertOrDeleteTimes(pass1Delta, pass2Delta uint64, n uint) (float64, float64) {
	return perElement(pass1Delta, n), perElement(pass2Delta, 2*n)
}

// perElement divides a pass delta by its element count. An empty pass keeps
// its raw delta.
func perElement(delta uint64, count uint) float64 {
	if count == 0 {
		return float64(delta)
	}
	return float64(delta) / float64(count)
}

// classify is the shared waterfall. Branch order matters: the tolerance
// bands overlap, and the first matching branch wins.
func classify(t1, t2, growth, linear float64) Complexity {
	if t1 == 0 && t2 == 0 {
		return O1
	}
	ratio := t2 / t1
	switch {
	case t1/t2-1 >= PercentError:
		return BetterThanO1
	case math.Abs(ratio-1) < PercentError:
		return O1
	case math.Abs(ratio/growth-1) < PercentError:
		return Ologn
	case math.Abs(ratio/linear-1) < PercentError:
		return On
	case ratio/linear-1 >= PercentError:
		return WorseThanOn
	default:
		return BetweenOLogNAndOn
	}
}

// ComputeInsertOrDelete classifies an insert or delete measurement from its
// raw timestamps and returns the verdict along with a printable report.
func ComputeInsertOrDelete(op string, start1, end1, start2, end2 uint64, n uint) (Complexity, string) {
	delta1, delta2 := end1-start1, end2-start2
	complexity := ClassifyInsertOrDelete(delta1, delta2, n)
	t1, t2 := insertOrDeleteTimes(delta1, delta2, n)
	return complexity, FormatInsertOrDeleteReport(op, delta1, delta2, n, t1, t2, complexity)
}

// ComputeUpdateOrSelect classifies an update or select measurement from its
// raw timestamps and returns the verdict along with a printable report.
func ComputeUpdateOrSelect(op string, start1, end1, start2, end2 uint64, n1, n2, r uint) (Complexity, string) {
	delta1, delta2 := end1-start1, end2-start2
	complexity := ClassifyUpdateOrSelect(delta1, delta2, n1, n2, r)
	t1, t2 := perElement(delta1, r), perElement(delta2, r)
	return complexity, FormatUpdateOrSelectReport(op, delta1, delta2, n1, n2, r, t1, t2, complexity)
}

// FormatInsertOrDeleteReport lays out an insert/delete measurement.
//
//	Insert algorithm analysis:
//	         delta(us)           n            t(1)
//	1:             100        1000        0.100000
//	2:             200        2000        0.100000
//	--> O(1)
func FormatInsertOrDeleteReport(op string, delta1, delta2 uint64, n uint, t1, t2 float64, c Complexity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s algorithm analysis:\n", op)
	fmt.Fprintf(&b, "%-4s%14s%12s%16s\n", "", "delta(us)", "n", "t(1)")
	fmt.Fprintf(&b, "%-4s%14d%12d%16.6f\n", "1:", delta1, n, t1)
	fmt.Fprintf(&b, "%-4s%14d%12d%16.6f\n", "2:", delta2, 2*n, t2)
	fmt.Fprintf(&b, "--> %s\n", c.Description())
	return b.String()
}

// FormatUpdateOrSelectReport lays out an update/select measurement, adding
// the repeat count column.
func FormatUpdateOrSelectReport(op string, delta1, delta2 uint64, n1, n2, r uint, t1, t2 float64, c Complexity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s algorithm analysis:\n", op)
	fmt.Fprintf(&b, "%-4s%14s%12s%12s%16s\n", "", "delta(us)", "n", "r", "t(1)")
	fmt.Fprintf(&b, "%-4s%14d%12d%12d%16.6f\n", "1:", delta1, n1, r, t1)
	fmt.Fprintf(&b, "%-4s%14d%12d%12d%16.6f\n", "2:", delta2, n2, r, t2)
	fmt.Fprintf(&b, "--> %s\n", c.Description())
	return b.String()
}
