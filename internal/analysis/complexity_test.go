package analysis

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// insertDelta2 returns the pass 2 delta whose per-element time is ratio times
// the per-element time of pass 1.
func insertDelta2(delta1 uint64, ratio float64) uint64 {
	return uint64(math.Round(float64(delta1) * 2 * ratio))
}

func TestClassifyInsertOrDelete_Properties(t *testing.T) {
	for _, n := range []uint{10, 100, 1000} {
		growth := math.Log(float64(3*n)) / math.Log(float64(n))
		for _, delta1 := range []uint64{1000, 12345, 987654} {
			for _, jitter := range []float64{0.97, 1.0, 1.03} {
				assert.Equal(t, O1, ClassifyInsertOrDelete(delta1, insertDelta2(delta1, jitter), n),
					"flat per-element time, n=%d delta1=%d jitter=%v", n, delta1, jitter)
				assert.Equal(t, Ologn, ClassifyInsertOrDelete(delta1, insertDelta2(delta1, growth*jitter), n),
					"logarithmic growth, n=%d delta1=%d jitter=%v", n, delta1, jitter)
				assert.Equal(t, On, ClassifyInsertOrDelete(delta1, insertDelta2(delta1, 3*jitter), n),
					"linear growth, n=%d delta1=%d jitter=%v", n, delta1, jitter)
			}
		}
	}
}

func TestClassifyInsertOrDelete_Waterfall(t *testing.T) {
	tests := []struct {
		name           string
		delta1, delta2 uint64
		want           Complexity
	}{
		{"second pass twice as fast per element", 100, 100, BetterThanO1},
		{"flat", 100, 200, O1},
		{"logarithmic", 100, 232, Ologn},
		{"between log and linear", 100, 300, BetweenOLogNAndOn},
		{"linear", 100, 600, On},
		{"quadratic", 100, 1000, WorseThanOn},
		{"nothing measured", 0, 0, O1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyInsertOrDelete(tt.delta1, tt.delta2, 1000))
		})
	}
}

func TestClassifyInsertOrDelete_NearBands(t *testing.T) {
	// t1/t2 = 1.25: pass 2 is implausibly fast.
	assert.Equal(t, BetterThanO1, ClassifyInsertOrDelete(125, 200, 1000))
	// Ratio 1.125 left the O(1) band but is within 10% of log(3000)/log(1000).
	assert.Equal(t, Ologn, ClassifyInsertOrDelete(1000, 2250, 1000))
}

func TestClassifyUpdateOrSelect(t *testing.T) {
	tests := []struct {
		name           string
		delta1, delta2 uint64
		want           Complexity
	}{
		{"flat", 1000, 1000, O1},
		{"logarithmic", 10000, 11003, Ologn},
		{"linear", 1000, 2000, On},
		{"quadratic", 1000, 4000, WorseThanOn},
		{"between log and linear", 1000, 1500, BetweenOLogNAndOn},
		{"second pass faster", 1000, 500, BetterThanO1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyUpdateOrSelect(tt.delta1, tt.delta2, 1000, 2000, 1000))
		})
	}
}

func TestClassifyUpdateOrSelect_UsesSizeRatio(t *testing.T) {
	// With n2 = 4*n1 a doubling is no longer linear.
	assert.Equal(t, BetweenOLogNAndOn, ClassifyUpdateOrSelect(1000, 2000, 1000, 4000, 1000))
	assert.Equal(t, On, ClassifyUpdateOrSelect(1000, 4000, 1000, 4000, 1000))
}

func TestClassify_EmptyPassesAreNotMeasured(t *testing.T) {
	assert.Equal(t, NotMeasured, ClassifyInsertOrDelete(10, 40, 0))
	assert.Equal(t, NotMeasured, ClassifyUpdateOrSelect(10, 40, 0, 1, 0))
	assert.Equal(t, NotMeasured, ClassifyUpdateOrSelect(10, 40, 0, 1000, 1000))
	assert.Equal(t, NotMeasured, ClassifyUpdateOrSelect(10, 40, 1000, 2000, 0))

	c, report := ComputeInsertOrDelete("Insert", 0, 10, 0, 40, 0)
	assert.Equal(t, NotMeasured, c)
	assert.Contains(t, report, "--> not measured")
}

func TestPerElement_EmptyPassKeepsDelta(t *testing.T) {
	assert.Equal(t, 42.0, perElement(42, 0))
	assert.Equal(t, 0.5, perElement(1, 2))
}

func TestComputeInsertOrDelete_UsesDeltas(t *testing.T) {
	c, report := ComputeInsertOrDelete("Insert", 5000, 5100, 9000, 9200, 1000)
	assert.Equal(t, O1, c)
	assert.Contains(t, report, "Insert algorithm analysis:")
	assert.Contains(t, report, "--> O(1)")
}

func TestComputeReports_Golden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	c, report := ComputeInsertOrDelete("Insert", 0, 100, 0, 200, 1000)
	assert.Equal(t, O1, c)
	g.Assert(t, "insert_o1", []byte(report))

	c, report = ComputeInsertOrDelete("Delete", 0, 100, 0, 300, 1000)
	assert.Equal(t, BetweenOLogNAndOn, c)
	g.Assert(t, "delete_between", []byte(report))

	c, report = ComputeUpdateOrSelect("Select", 0, 10000, 0, 11003, 1000, 2000, 1000)
	assert.Equal(t, Ologn, c)
	g.Assert(t, "select_ologn", []byte(report))

	c, report = ComputeUpdateOrSelect("Update", 0, 1000, 0, 2000, 1000, 2000, 1000)
	assert.Equal(t, On, c)
	g.Assert(t, "update_on", []byte(report))
}

func TestComplexity_Text(t *testing.T) {
	for c := range complexityNames {
		text, err := c.MarshalText()
		require.NoError(t, err)

		var decoded Complexity
		require.NoError(t, decoded.UnmarshalText(text))
		assert.Equal(t, c, decoded)
	}

	var c Complexity
	assert.Error(t, c.UnmarshalText([]byte("O(n^2)")))
	assert.Equal(t, "Complexity(99)", Complexity(99).String())
	assert.Equal(t, "unpredicted algorithm complexity", Complexity(99).Description())
}

func TestComplexity_JSONInReport(t *testing.T) {
	out, err := json.Marshal(OperationReport{Complexity: Ologn, Pass1ElapsedUS: 7})
	require.NoError(t, err)
	assert.JSONEq(t, `{"complexity":"Ologn","pass1_elapsed_us":7,"pass2_elapsed_us":0}`, string(out))
}
