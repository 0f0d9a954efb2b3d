package align

import (
	"encoding/csv"
	"io"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/payee-cli/internal/model"
)

// WriteCSV writes merged export rows as CSV. Column order: the original
// columns sorted for determinism, then the fixed classification columns.
func WriteCSV(w io.Writer, rows []model.ExportRow) error {
	writer := csv.NewWriter(w)

	header := buildHeader(rows)
	if err := writer.Write(header); err != nil {
		return eris.Wrap(err, "export: write header")
	}

	record := make([]string, len(header))
	for _, row := range rows {
		for i, col := range header {
			record[i] = row[col]
		}
		if err := writer.Write(record); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}

	writer.Flush()
	return eris.Wrap(writer.Error(), "export: flush")
}

var classificationCols = []string{
	model.ExportColClassification,
	model.ExportColConfidence,
	model.ExportColReasoning,
	model.ExportColStatus,
}

func buildHeader(rows []model.ExportRow) []string {
	fixed := make(map[string]struct{}, len(classificationCols))
	for _, c := range classificationCols {
		fixed[c] = struct{}{}
	}

	seen := make(map[string]struct{})
	var original []string
	for _, row := range rows {
		for col := range row {
			if _, isFixed := fixed[col]; isFixed {
				continue
			}
			if _, dup := seen[col]; !dup {
				seen[col] = struct{}{}
				original = append(original, col)
			}
		}
	}
	sort.Strings(original)

	return append(original, classificationCols...)
}
