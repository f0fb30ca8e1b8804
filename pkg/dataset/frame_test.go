package dataset

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestReadCSVInference(t *testing.T) {
	path := writeCSV(t, "Id,Score,Label,Note\n1,0.5,yes,a\n2,1.5,no,\n3,2,yes,c\n")
	f, err := ReadCSV(path, nil)
	require.NoError(t, err)
	require.Equal(t, 3, f.Len())

	schema := f.Schema()
	require.Len(t, schema, 4)
	assert.Equal(t, Integer, schema[0].Type)
	assert.Equal(t, Double, schema[1].Type)
	assert.Equal(t, String, schema[2].Type)
	assert.False(t, schema[0].Nullable)
	assert.True(t, schema[3].Nullable)

	vals, err := f.Floats("Score")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 1.5, 2}, vals)

	_, err = f.Floats("Label")
	assert.Error(t, err, "string column has no float view")
	_, err = f.Floats("Missing")
	assert.Error(t, err)
}

func TestReadCSVSkipsMalformedRows(t *testing.T) {
	path := writeCSV(t, "A,B\n1,2\n3\n4,5\n")
	f, err := ReadCSV(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, f.Len())
}

func TestReadCSVMissingFile(t *testing.T) {
	_, err := ReadCSV(filepath.Join(t.TempDir(), "nope.csv"), nil)
	assert.Error(t, err)
}

func TestSchemaString(t *testing.T) {
	path := writeCSV(t, "Age,Name\n22,ann\n,bob\n")
	f, err := ReadCSV(path, nil)
	require.NoError(t, err)

	want := "root\n" +
		" |-- Age: integer (nullable = true)\n" +
		" |-- Name: string (nullable = false)\n"
	assert.Equal(t, want, f.Schema().String())
}

func TestNullCellsAreNaN(t *testing.T) {
	path := writeCSV(t, "V\n1.5\n\n2.5\n")
	f, err := ReadCSV(path, nil)
	require.NoError(t, err)

	vals, err := f.Floats("V")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(vals[1]))
	c, _ := f.Column("V")
	assert.Equal(t, 1, c.NumNull())
}

func TestSelectAndClone(t *testing.T) {
	path := writeCSV(t, "A,B\n1,x\n2,y\n3,z\n")
	f, err := ReadCSV(path, nil)
	require.NoError(t, err)
	f.FeatureNames = []string{"A"}
	f.Features = [][]float64{{1}, {2}, {3}}

	sub := f.Select([]int{2, 0})
	require.Equal(t, 2, sub.Len())
	vals, err := sub.Floats("A")
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1}, vals)
	assert.Equal(t, [][]float64{{3}, {1}}, sub.Features)

	clone := f.Clone()
	c, _ := clone.Column("B")
	c.SetString(0, "changed")
	orig, _ := f.Column("B")
	assert.Equal(t, "x", orig.Raw[0], "clone must not alias the original")
}

func TestAddColumnRejectsDuplicatesAndLengths(t *testing.T) {
	f, err := New(&Column{Name: "A", Raw: []string{"1"}, Vals: []float64{1}, Null: []bool{false}})
	require.NoError(t, err)
	err = f.AddColumn(&Column{Name: "A", Raw: []string{"2"}, Vals: []float64{2}, Null: []bool{false}})
	assert.Error(t, err)
	err = f.AddColumn(&Column{Name: "B", Raw: []string{"1", "2"}, Vals: []float64{1, 2}, Null: []bool{false, false}})
	assert.Error(t, err)
}
