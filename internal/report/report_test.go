package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/gymzone-cli/internal/features"
	"github.com/sells-group/gymzone-cli/internal/geo"
	"github.com/sells-group/gymzone-cli/internal/pipeline"
	"github.com/sells-group/gymzone-cli/internal/selector"
)

func sampleSelection() selector.Selection {
	return selector.Selection{
		Decision: selector.DecisionRelaxed,
		Eligible: 6,
		Excluded: 1,
		Recommendations: []selector.Recommendation{
			{Rank: 1, Profile: features.Profile{
				ClusterID: 3, Centroid: geo.LatLon{Latitude: 30.412345, Longitude: -91.123456},
				GymCount: 8, DenseGymCount: 7, NearbyStoreCount: 1, SpreadKm: 2.5, Score: 19.5,
			}},
			{Rank: 2, Profile: features.Profile{
				ClusterID: 0, Centroid: geo.LatLon{Latitude: 30.3, Longitude: -91.0},
				GymCount: 5, DenseGymCount: 4, NearbyStoreCount: 0, SpreadKm: 5.25, Score: 9.75,
			}},
		},
	}
}

func TestWrite_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatTable, sampleSelection()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Rank")
	assert.Contains(t, lines[0], "Score")
	assert.True(t, strings.HasPrefix(lines[2], "1 "))
	assert.Contains(t, lines[2], "30.4123")
	assert.Contains(t, lines[2], "2.50km")
	assert.Contains(t, lines[2], "19.50")
}

func TestWrite_TableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatTable, selector.Selection{Decision: selector.DecisionNone}))
	assert.Contains(t, buf.String(), "No recommended zones.")
}

func TestWrite_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sampleSelection()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{"1", "3", "30.412345", "-91.123456", "8", "7", "1", "2.500", "19.500"}, records[1])
	assert.Equal(t, "9.750", records[2][8])
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleSelection()))

	var got selector.Selection
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sampleSelection(), got)
	assert.Contains(t, buf.String(), `"decision": "relaxed"`)
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, sampleSelection()))

	var got selector.Selection
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sampleSelection(), got)
	assert.Contains(t, buf.String(), "decision: relaxed")
}

func TestWrite_UnsupportedFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, "pdf", sampleSelection())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported format "pdf"`)
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zones.xlsx")
	require.NoError(t, WriteXLSX(path, sampleSelection()))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	sheet, ok := f.Sheet[SheetName]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 3)

	assert.Equal(t, "rank", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "score", sheet.Rows[0].Cells[8].String())

	rank, err := sheet.Rows[1].Cells[0].Int()
	require.NoError(t, err)
	assert.Equal(t, 1, rank)

	score, err := sheet.Rows[1].Cells[8].Float()
	require.NoError(t, err)
	assert.InDelta(t, 19.5, score, 1e-9)
}

func TestWriteXLSX_BadPath(t *testing.T) {
	err := WriteXLSX(filepath.Join(t.TempDir(), "missing", "zones.xlsx"), sampleSelection())
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	var gyms []geo.Point
	for i := 0; i < 6; i++ {
		gyms = append(gyms, geo.Point{ID: int64(i + 1), Name: "Gym", Latitude: 30.40 + float64(i)*0.002, Longitude: -91.10})
	}
	gyms = append(gyms, geo.Point{ID: 50, Name: "Far", Latitude: 30.0, Longitude: -90.0})

	res, err := pipeline.Run(context.Background(), gyms, nil, pipeline.DefaultOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Summary(&buf, res))
	out := buf.String()

	assert.Contains(t, out, res.RunID)
	assert.Contains(t, out, "Gyms:          7 (6 clustered, 1 noise)")
	assert.Contains(t, out, "Decision:      fallback")
	assert.Contains(t, out, "Recommended:   1")
	assert.Contains(t, out, "Score range:")
}

func TestSummary_NoRecommendations(t *testing.T) {
	res, err := pipeline.Run(context.Background(), nil, nil, pipeline.DefaultOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Summary(&buf, res))
	assert.Contains(t, buf.String(), "Decision:      none")
	assert.NotContains(t, buf.String(), "Score range")
}
