package report

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/gymzone-cli/internal/selector"
)

// SheetName is the worksheet WriteXLSX fills.
const SheetName = "Recommendations"

// WriteXLSX saves the selection as a single-sheet workbook at path.
func WriteXLSX(path string, sel selector.Selection) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "report: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range csvHeader {
		header.AddCell().SetString(h)
	}

	for _, r := range sel.Recommendations {
		p := r.Profile
		row := sheet.AddRow()
		row.AddCell().SetInt(r.Rank)
		row.AddCell().SetInt(p.ClusterID)
		row.AddCell().SetFloatWithFormat(p.Centroid.Latitude, "0.000000")
		row.AddCell().SetFloatWithFormat(p.Centroid.Longitude, "0.000000")
		row.AddCell().SetInt(p.GymCount)
		row.AddCell().SetInt(p.DenseGymCount)
		row.AddCell().SetInt(p.NearbyStoreCount)
		row.AddCell().SetFloatWithFormat(p.SpreadKm, "0.000")
		row.AddCell().SetFloatWithFormat(p.Score, "0.000")
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save workbook %s", path)
	}
	return nil
}
