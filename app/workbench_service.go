package app

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"

	"dataviz/adapters/excel"
	"dataviz/domain/core"
	"dataviz/domain/dataset"
	"dataviz/domain/table"
	"dataviz/internal/chart"
	ingest "dataviz/internal/dataset"
	"dataviz/internal/errors"
	"dataviz/internal/logging"
	"dataviz/internal/profiling"
	"dataviz/internal/report"
	"dataviz/internal/session"
	"dataviz/ports"
)

// DefaultSnapshotName is used when a save request carries no name.
const DefaultSnapshotName = "Untitled Dataset"

// Workspace is the per-visitor slot holding the current table.
// *session.Session implements it.
type Workspace interface {
	Table() (*table.Table, bool)
	SetTable(t *table.Table, source string)
	Source() string
}

// WorkbenchService implements the upload, inspect and chart operations over
// a visitor's workspace, plus the persisted snapshots and upload records.
type WorkbenchService struct {
	uploads   ports.UploadRepository
	snapshots ports.SnapshotRepository
	blobs     ports.BlobStore
	policy    ingest.BlankPolicy
}

// NewWorkbenchService creates a workbench service. A nil policy means
// FillBlankWithZero.
func NewWorkbenchService(
	uploads ports.UploadRepository,
	snapshots ports.SnapshotRepository,
	blobs ports.BlobStore,
	policy ingest.BlankPolicy,
) *WorkbenchService {
	if policy == nil {
		policy = ingest.FillBlankWithZero
	}
	return &WorkbenchService{
		uploads:   uploads,
		snapshots: snapshots,
		blobs:     blobs,
		policy:    policy,
	}
}

// UploadRequest is one submitted file.
type UploadRequest struct {
	Name     string
	FileName string
	Data     []byte
}

// UploadResult describes a stored and loaded upload.
type UploadResult struct {
	UploadID core.UploadID `json:"upload_id"`
	FileName string        `json:"file_name"`
	Columns  []string      `json:"columns"`
	Rows     int           `json:"rows"`
}

// Upload parses a CSV or XLSX file, stores its bytes and record, and makes
// it the workspace's current table. Nothing is kept unless every step
// succeeds, so no record exists for a file that failed to process.
func (s *WorkbenchService) Upload(ctx context.Context, ws Workspace, req UploadRequest) (*UploadResult, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = filepath.Base(req.FileName)
	}
	log := logging.WithFields(ctx, "component", "workbench", "op", "upload", "file", req.FileName)

	format, err := ingest.DetectFormat(req.FileName)
	if err != nil {
		return nil, err
	}
	t, err := ingest.Decode(format, req.Data, s.policy)
	if err != nil {
		log.Warn("upload rejected", "error", err)
		return nil, errors.Wrap(err, "Error processing file")
	}

	id := core.UploadID(core.NewID())
	key := session.DatasetKey(id.String(), format.Ext())
	size, err := s.blobs.StoreBlob(ctx, key, bytes.NewReader(req.Data))
	if err != nil {
		return nil, err
	}

	checksum := core.NewHash(req.Data)
	record := &dataset.Upload{
		ID:         id,
		Name:       name,
		FilePath:   key,
		FileSize:   size,
		Checksum:   checksum,
		RowCount:   t.Len(),
		Columns:    t.Width(),
		Processed:  true,
		UploadedAt: core.Now(),
	}
	if err := s.uploads.Create(ctx, record); err != nil {
		if derr := s.blobs.DeleteBlob(ctx, key); derr != nil {
			log.Error("failed to remove orphaned blob", "key", key, "error", derr)
		}
		return nil, err
	}

	ws.SetTable(t, name)
	log.Info("upload processed",
		"upload_id", id, "rows", t.Len(), "columns", t.Width(), "bytes", size, "sha256", checksum.Short())

	return &UploadResult{UploadID: id, FileName: name, Columns: t.Columns(), Rows: t.Len()}, nil
}

// ProcessData replaces the current table with manually entered row objects
// (a JSON array). The values are taken as entered, without blank filling.
func (s *WorkbenchService) ProcessData(ctx context.Context, ws Workspace, rows []byte) ([]string, error) {
	records, err := table.ParseRecords(rows)
	if err != nil {
		return nil, err
	}
	t, err := table.FromRecords(records)
	if err != nil {
		return nil, err
	}
	ws.SetTable(t, "manual entry")
	logging.WithFields(ctx, "component", "workbench", "op", "process_data").
		Info("manual data loaded", "rows", t.Len(), "columns", t.Width())
	return t.Columns(), nil
}

// ColumnsResult is the current table with its column types.
type ColumnsResult struct {
	Columns     []string                             `json:"columns"`
	ColumnTypes map[string]profiling.Classification `json:"column_types"`
	Data        []table.Record                       `json:"data"`
}

// Columns describes the current table.
func (s *WorkbenchService) Columns(ctx context.Context, ws Workspace) (*ColumnsResult, error) {
	t, err := current(ws)
	if err != nil {
		return nil, err
	}
	return &ColumnsResult{
		Columns:     t.Columns(),
		ColumnTypes: profiling.ClassifyTable(t),
		Data:        t.Records(),
	}, nil
}

// GraphRequest selects a chart over the current table.
type GraphRequest struct {
	Kind    string `json:"graph_type" form:"graph_type"`
	XColumn string `json:"x_column" form:"x_column"`
	YColumn string `json:"y_column" form:"y_column"`
}

// GraphResult carries the serialised figure and both columns' statistics.
type GraphResult struct {
	Spec   *chart.Spec           `json:"-"`
	Plot   string                `json:"plot"`
	XStats profiling.ColumnStats `json:"x_stats"`
	YStats profiling.ColumnStats `json:"y_stats"`
}

// GenerateGraph builds the requested chart.
func (s *WorkbenchService) GenerateGraph(ctx context.Context, ws Workspace, req GraphRequest) (*GraphResult, error) {
	t, err := current(ws)
	if err != nil {
		return nil, err
	}
	spec, err := chart.Build(ctx, t, chart.ParseKind(req.Kind), req.XColumn, req.YColumn)
	if err != nil {
		return nil, err
	}

	xStats, err := profiling.DescribeColumn(t, req.XColumn)
	if err != nil {
		return nil, err
	}
	yStats, err := profiling.DescribeColumn(t, req.YColumn)
	if err != nil {
		return nil, err
	}

	return &GraphResult{
		Spec:   spec,
		Plot:   chart.Serialize(spec),
		XStats: xStats,
		YStats: yStats,
	}, nil
}

// RenderChart writes a PNG preview of the requested chart.
func (s *WorkbenchService) RenderChart(ctx context.Context, ws Workspace, req GraphRequest, w io.Writer, width, height int) error {
	t, err := current(ws)
	if err != nil {
		return err
	}
	spec, err := chart.Build(ctx, t, chart.ParseKind(req.Kind), req.XColumn, req.YColumn)
	if err != nil {
		return err
	}
	return chart.RenderPNG(spec, w, width, height)
}

// SaveSnapshot stores the current table under name.
func (s *WorkbenchService) SaveSnapshot(ctx context.Context, ws Workspace, name string) (*dataset.Snapshot, error) {
	t, ok := ws.Table()
	if !ok {
		return nil, errors.New(errors.CodeNoData, "No data available to save")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultSnapshotName
	}

	snap, err := dataset.NewSnapshot(name, t)
	if err != nil {
		return nil, err
	}
	if err := s.snapshots.Create(ctx, snap); err != nil {
		return nil, err
	}
	logging.WithFields(ctx, "component", "workbench", "op", "save").
		Info("snapshot saved", "snapshot_id", snap.ID, "name", name, "rows", snap.RowCount)
	return snap, nil
}

// ListSnapshots lists saved snapshots, newest first.
func (s *WorkbenchService) ListSnapshots(ctx context.Context, filter dataset.ListFilter) ([]*dataset.Snapshot, error) {
	return s.snapshots.List(ctx, filter)
}

// LoadSnapshot makes a saved snapshot the current table.
func (s *WorkbenchService) LoadSnapshot(ctx context.Context, ws Workspace, rawID string) ([]string, error) {
	id, err := core.ParseSnapshotID(rawID)
	if err != nil {
		return nil, errors.InvalidInput(err.Error())
	}
	snap, err := s.snapshots.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	t, err := snap.Table()
	if err != nil {
		return nil, errors.Wrap(err, "stored snapshot is unreadable")
	}
	ws.SetTable(t, snap.Name)
	return t.Columns(), nil
}

// DeleteSnapshot removes a saved snapshot.
func (s *WorkbenchService) DeleteSnapshot(ctx context.Context, rawID string) error {
	id, err := core.ParseSnapshotID(rawID)
	if err != nil {
		return errors.InvalidInput(err.Error())
	}
	return s.snapshots.Delete(ctx, id)
}

// ListUploads lists upload records, newest first.
func (s *WorkbenchService) ListUploads(ctx context.Context, filter dataset.ListFilter) ([]*dataset.Upload, error) {
	return s.uploads.List(ctx, filter)
}

// Export writes the current table as an XLSX workbook.
func (s *WorkbenchService) Export(ctx context.Context, ws Workspace, w io.Writer) error {
	t, err := current(ws)
	if err != nil {
		return err
	}
	return excel.WriteTable(w, t)
}

// Report summarises every column of the current table.
func (s *WorkbenchService) Report(ctx context.Context, ws Workspace) (*report.Report, error) {
	t, err := current(ws)
	if err != nil {
		return nil, err
	}
	return report.Build(ws.Source(), t), nil
}

// HasData reports whether the workspace holds a table.
func HasData(ws Workspace) bool {
	_, ok := ws.Table()
	return ok
}

func current(ws Workspace) (*table.Table, error) {
	t, ok := ws.Table()
	if !ok {
		return nil, errors.NoData()
	}
	return t, nil
}
