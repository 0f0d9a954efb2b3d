package model

// RawName is a payee name as ingested, bound to the row it came from.
// Immutable once created; OriginRowIndex is the position of the row in the
// source file and is the key every downstream result must map back to.
type RawName struct {
	Text            string            `json:"text"`
	OriginRowIndex  int               `json:"origin_row_index"`
	OriginalRowData map[string]string `json:"original_row_data,omitempty"`
}

// NameCluster groups near-duplicate payee names under a canonical
// representative. Clusters live for the duration of one run and are never
// persisted across unrelated runs.
type NameCluster struct {
	CanonicalName string    `json:"canonical_name"`
	Members       []RawName `json:"members"`
}

// Size returns the number of member names in the cluster.
func (c *NameCluster) Size() int {
	return len(c.Members)
}
