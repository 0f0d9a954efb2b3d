// Package align merges per-row classification results back onto the original
// spreadsheet rows with a strict no-misalignment guarantee.
package align

import (
	"fmt"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/payee-cli/internal/model"
)

// AlignmentError is fatal: a result's declared row index disagrees with its
// position, so emitting rows would silently attach classifications to the
// wrong payees. Export stops instead.
type AlignmentError struct {
	Position      int
	DeclaredIndex int
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("alignment violation: result at position %d declares row index %d", e.Position, e.DeclaredIndex)
}

// Merge joins results onto originalRows position by position. Output length
// always equals len(results). With row data present (strict mode), any
// result whose RowIndex differs from its position raises *AlignmentError.
// With no row data (lenient mode), minimal rows carrying only the
// classification fields are emitted.
func Merge(originalRows []map[string]string, results []model.PerRowResult) ([]model.ExportRow, error) {
	strict := len(originalRows) > 0
	if strict && len(originalRows) != len(results) {
		return nil, eris.Errorf("align: %d original rows but %d results", len(originalRows), len(results))
	}

	rows := make([]model.ExportRow, len(results))
	for i, result := range results {
		if result.RowIndex != i {
			return nil, &AlignmentError{Position: i, DeclaredIndex: result.RowIndex}
		}

		row := model.ExportRow{}
		if strict {
			for k, v := range originalRows[i] {
				row[k] = v
			}
		}
		row[model.ExportColClassification] = string(result.Classification)
		row[model.ExportColConfidence] = strconv.Itoa(result.Confidence)
		row[model.ExportColReasoning] = result.Reasoning
		row[model.ExportColStatus] = string(result.Status)
		rows[i] = row
	}
	return rows, nil
}
