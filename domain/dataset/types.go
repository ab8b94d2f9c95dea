package dataset

import (
	"dataviz/domain/core"
	"dataviz/domain/table"
)

// Upload is the stored record of one uploaded file. Processed is only ever
// written true: a file that fails to parse is never recorded.
type Upload struct {
	ID         core.UploadID  `json:"id" db:"id"`
	Name       string         `json:"name" db:"name"`
	FilePath   string         `json:"file_path" db:"file_path"`
	FileSize   int64          `json:"file_size" db:"file_size"`
	Checksum   core.Hash      `json:"checksum" db:"checksum"`
	RowCount   int            `json:"row_count" db:"row_count"`
	Columns    int            `json:"column_count" db:"column_count"`
	Processed  bool           `json:"processed" db:"processed"`
	UploadedAt core.Timestamp `json:"uploaded_at" db:"uploaded_at"`
}

// Snapshot is a named copy of a table. Data holds the row objects as a
// JSON array so column order survives a round trip.
type Snapshot struct {
	ID        core.SnapshotID `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Data      string          `json:"-" db:"data_json"`
	RowCount  int             `json:"row_count" db:"row_count"`
	CreatedAt core.Timestamp  `json:"created_at" db:"created_at"`
}

// NewSnapshot captures t under name.
func NewSnapshot(name string, t *table.Table) (*Snapshot, error) {
	raw, err := table.MarshalRecords(t)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		ID:        core.SnapshotID(core.NewID()),
		Name:      name,
		Data:      string(raw),
		RowCount:  t.Len(),
		CreatedAt: core.Now(),
	}, nil
}

// Table rebuilds the stored table.
func (s *Snapshot) Table() (*table.Table, error) {
	records, err := table.ParseRecords([]byte(s.Data))
	if err != nil {
		return nil, err
	}
	return table.FromRecords(records)
}

// ListFilter narrows admin and API listings. Zero values mean no filter.
type ListFilter struct {
	Query     string
	Processed *bool
	Limit     int
}

// DefaultListLimit applies when a filter leaves Limit unset.
const DefaultListLimit = 100

// EffectiveLimit clamps Limit into (0, DefaultListLimit].
func (f ListFilter) EffectiveLimit() int {
	if f.Limit <= 0 || f.Limit > DefaultListLimit {
		return DefaultListLimit
	}
	return f.Limit
}
