package dataprep

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"titanicml/pkg/dataset"
	"titanicml/pkg/pipeline"
)

func col(name string, typ dataset.Type, raw ...string) *dataset.Column {
	c := &dataset.Column{
		Name: name,
		Type: typ,
		Raw:  make([]string, len(raw)),
		Vals: make([]float64, len(raw)),
		Null: make([]bool, len(raw)),
	}
	for i, v := range raw {
		c.Raw[i] = v
		if v == "" {
			c.Null[i] = true
			c.Vals[i] = math.NaN()
			continue
		}
		if typ == dataset.String {
			c.Vals[i] = math.NaN()
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			panic(err)
		}
		c.Vals[i] = f
	}
	return c
}

func TestImputerFillsConstants(t *testing.T) {
	f, err := dataset.New(
		col("Age", dataset.Integer, "22", "", "40"),
		col("Port", dataset.String, "S", "", "C"),
	)
	require.NoError(t, err)

	im := NewImputer(map[string]float64{"Age": 29.7}, map[string]string{"Port": "S"})
	require.NoError(t, im.Fit(f))
	out, err := im.Transform(f)
	require.NoError(t, err)

	age, err := out.Floats("Age")
	require.NoError(t, err)
	assert.Equal(t, []float64{22, 29.7, 40}, age)
	ageCol, _ := out.Column("Age")
	assert.Equal(t, dataset.Double, ageCol.Type, "fill promotes integer column")
	assert.Equal(t, 0, ageCol.NumNull())

	port, _ := out.Column("Port")
	assert.Equal(t, []string{"S", "S", "C"}, port.Raw)

	// the input frame is untouched
	orig, _ := f.Column("Age")
	assert.Equal(t, 1, orig.NumNull())
}

func TestImputerValidation(t *testing.T) {
	f, err := dataset.New(col("Name", dataset.String, "a", "b"))
	require.NoError(t, err)

	assert.Error(t, NewImputer(map[string]float64{"Nope": 1}, nil).Fit(f))
	assert.Error(t, NewImputer(map[string]float64{"Name": 1}, nil).Fit(f))
}

func TestStringIndexerFrequencyOrder(t *testing.T) {
	f, err := dataset.New(col("Sex", dataset.String, "male", "female", "male", "male", "female"))
	require.NoError(t, err)

	si := NewStringIndexer("Sex")
	require.NoError(t, si.Fit(f))
	out, err := si.Transform(f)
	require.NoError(t, err)

	idx, err := out.Floats("SexIndex")
	require.NoError(t, err)
	// male is most frequent so it gets index 0
	assert.Equal(t, []float64{0, 1, 0, 0, 1}, idx)
}

func TestStringIndexerUnseenLabel(t *testing.T) {
	train, err := dataset.New(col("Port", dataset.String, "S", "C", "S"))
	require.NoError(t, err)
	si := NewStringIndexer("Port")
	require.NoError(t, si.Fit(train))

	test, err := dataset.New(col("Port", dataset.String, "Q", "S"))
	require.NoError(t, err)
	out, err := si.Transform(test)
	require.NoError(t, err)

	idx, err := out.Floats("PortIndex")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 0}, idx, "unseen label maps past the known ones")
}

func TestStringIndexerBeforeFit(t *testing.T) {
	f, err := dataset.New(col("Port", dataset.String, "S"))
	require.NoError(t, err)
	_, err = NewStringIndexer("Port").Transform(f)
	assert.Error(t, err)
}

func TestAssembler(t *testing.T) {
	f, err := dataset.New(
		col("A", dataset.Double, "1", "2"),
		col("B", dataset.Double, "3", "4"),
		col("C", dataset.String, "x", "y"),
	)
	require.NoError(t, err)

	a := NewAssembler("B", "A")
	require.NoError(t, a.Fit(f))
	out, err := a.Transform(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, out.FeatureNames)
	assert.Equal(t, [][]float64{{3, 1}, {4, 2}}, out.Features)

	assert.Error(t, NewAssembler("C").Fit(f), "string column cannot be assembled")
	assert.Error(t, NewAssembler("Z").Fit(f))
	assert.Error(t, NewAssembler().Fit(f))
}

func TestScalerStage(t *testing.T) {
	f, err := dataset.New(col("A", dataset.Double, "1", "2", "3"))
	require.NoError(t, err)

	s := NewScaler()
	assert.Error(t, s.Fit(f), "scaler requires assembled features")

	p := pipeline.New(NewAssembler("A"), NewScaler())
	out, err := p.Fit(f)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, out.Features[1][0], 1e-12)
	assert.True(t, out.Features[0][0] < 0 && out.Features[2][0] > 0)
}

func TestPipelineFitThenTransform(t *testing.T) {
	train, err := dataset.New(
		col("Age", dataset.Double, "10", "", "30"),
		col("Sex", dataset.String, "m", "f", "m"),
	)
	require.NoError(t, err)

	p := pipeline.New(
		NewImputer(map[string]float64{"Age": 20}, nil),
		NewStringIndexer("Sex"),
		NewAssembler("Age", "SexIndex"),
		NewScaler(),
	)
	fitted, err := p.Fit(train)
	require.NoError(t, err)
	require.Len(t, fitted.Features, 3)

	test, err := dataset.New(
		col("Age", dataset.Double, ""),
		col("Sex", dataset.String, "f"),
	)
	require.NoError(t, err)
	out, err := p.Transform(test)
	require.NoError(t, err)
	require.Len(t, out.Features, 1)
	// imputed age 20 is the train mean, so it scales to zero
	assert.InDelta(t, 0.0, out.Features[0][0], 1e-12)
}
