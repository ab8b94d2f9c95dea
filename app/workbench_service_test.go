package app

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"dataviz/adapters/excel"
	"dataviz/domain/core"
	"dataviz/domain/dataset"
	"dataviz/domain/table"
	"dataviz/internal/chart"
	ingest "dataviz/internal/dataset"
	"dataviz/internal/errors"
	"dataviz/internal/profiling"
	"dataviz/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUploadRepository struct {
	mock.Mock
}

func (m *MockUploadRepository) Create(ctx context.Context, u *dataset.Upload) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUploadRepository) GetByID(ctx context.Context, id core.UploadID) (*dataset.Upload, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*dataset.Upload)
	return u, args.Error(1)
}

func (m *MockUploadRepository) List(ctx context.Context, filter dataset.ListFilter) ([]*dataset.Upload, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*dataset.Upload), args.Error(1)
}

func (m *MockUploadRepository) Delete(ctx context.Context, id core.UploadID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) Create(ctx context.Context, s *dataset.Snapshot) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSnapshotRepository) GetByID(ctx context.Context, id core.SnapshotID) (*dataset.Snapshot, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*dataset.Snapshot)
	return s, args.Error(1)
}

func (m *MockSnapshotRepository) List(ctx context.Context, filter dataset.ListFilter) ([]*dataset.Snapshot, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*dataset.Snapshot), args.Error(1)
}

func (m *MockSnapshotRepository) Delete(ctx context.Context, id core.SnapshotID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type fixture struct {
	svc       *WorkbenchService
	uploads   *MockUploadRepository
	snapshots *MockSnapshotRepository
	blobs     *session.LocalBlobStore
	ws        *session.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	blobs, err := session.NewLocalBlobStore(t.TempDir())
	require.NoError(t, err)

	f := &fixture{
		uploads:   &MockUploadRepository{},
		snapshots: &MockSnapshotRepository{},
		blobs:     blobs,
		ws:        session.NewManager(time.Hour).Create(),
	}
	f.svc = NewWorkbenchService(f.uploads, f.snapshots, blobs, nil)
	return f
}

func (f *fixture) load(t *testing.T, csv string) {
	t.Helper()
	parsed, err := ingest.Preprocess([]byte(csv), ingest.FillBlankWithZero)
	require.NoError(t, err)
	tbl, err := parsed.Table()
	require.NoError(t, err)
	f.ws.SetTable(tbl, "test.csv")
}

func (f *fixture) blobKeys(t *testing.T) []string {
	keys, err := f.blobs.ListBlobs(context.Background(), session.DatasetPrefix)
	require.NoError(t, err)
	return keys
}

func TestUploadCSV(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var stored *dataset.Upload
	f.uploads.On("Create", mock.Anything, mock.AnythingOfType("*dataset.Upload")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*dataset.Upload) }).
		Return(nil).Once()

	res, err := f.svc.Upload(ctx, f.ws, UploadRequest{
		FileName: "sales.csv",
		Data:     []byte("a,b\n1, \n,3\n"),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, res.Columns)
	assert.Equal(t, "sales.csv", res.FileName)
	assert.Equal(t, 2, res.Rows)

	require.NotNil(t, stored)
	assert.True(t, stored.Processed)
	assert.Equal(t, res.UploadID, stored.ID)
	assert.Equal(t, "datasets/"+stored.ID.String()+".csv", stored.FilePath)
	assert.Equal(t, int64(11), stored.FileSize)
	assert.Equal(t, []string{stored.FilePath}, f.blobKeys(t))

	tbl, ok := f.ws.Table()
	require.True(t, ok)
	v, _ := tbl.At(0, 1).Float()
	assert.Equal(t, 0.0, v, "blank filled with zero")
	f.uploads.AssertExpectations(t)
}

func TestUploadXLSXUsesGivenName(t *testing.T) {
	f := newFixture(t)
	f.uploads.On("Create", mock.Anything, mock.Anything).Return(nil)

	src, err := table.New([]string{"x", "y"}, [][]table.Cell{{table.Number(1), table.Number(2)}})
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, excel.WriteTable(&buf, src))

	res, err := f.svc.Upload(context.Background(), f.ws, UploadRequest{
		Name:     "Quarterly",
		FileName: "book.xlsx",
		Data:     buf.Bytes(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Quarterly", res.FileName)
	assert.Equal(t, []string{"x", "y"}, res.Columns)
	assert.Equal(t, "Quarterly", f.ws.Source())
}

func TestUploadParseFailureStoresNothing(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Upload(context.Background(), f.ws, UploadRequest{
		FileName: "bad.csv",
		Data:     []byte("a,b\n1,2,3\n"),
	})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeShapeError))
	assert.Contains(t, err.Error(), "Error processing file")

	assert.Empty(t, f.blobKeys(t))
	_, ok := f.ws.Table()
	assert.False(t, ok)
	f.uploads.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUploadRecordFailureRemovesBlob(t *testing.T) {
	f := newFixture(t)
	f.uploads.On("Create", mock.Anything, mock.Anything).
		Return(errors.DatabaseError("insert failed", stderrors.New("disk full")))

	_, err := f.svc.Upload(context.Background(), f.ws, UploadRequest{
		FileName: "ok.csv",
		Data:     []byte("a\n1\n"),
	})
	assert.True(t, errors.HasCode(err, errors.CodeDatabaseError))
	assert.Empty(t, f.blobKeys(t))
	_, ok := f.ws.Table()
	assert.False(t, ok)
}

func TestUploadRejectsUnknownFormat(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Upload(context.Background(), f.ws, UploadRequest{FileName: "notes.txt", Data: []byte("x")})
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestProcessData(t *testing.T) {
	f := newFixture(t)
	cols, err := f.svc.ProcessData(context.Background(), f.ws,
		[]byte(`[{"name":"a","score":1},{"score":"2","extra":true}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "score", "extra"}, cols)
	assert.Equal(t, "manual entry", f.ws.Source())

	_, err = f.svc.ProcessData(context.Background(), f.ws, []byte(`{"not":"an array"}`))
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestColumnsWithoutData(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Columns(context.Background(), f.ws)
	assert.True(t, errors.HasCode(err, errors.CodeNoData))
}

func TestColumns(t *testing.T) {
	f := newFixture(t)
	f.load(t, "n,c\n1,x\n2,y\n")

	res, err := f.svc.Columns(context.Background(), f.ws)
	require.NoError(t, err)
	assert.Equal(t, []string{"n", "c"}, res.Columns)
	assert.Equal(t, profiling.Numeric, res.ColumnTypes["n"])
	assert.Equal(t, profiling.Categorical, res.ColumnTypes["c"])
	require.Len(t, res.Data, 2)

	raw, err := json.Marshal(res.Data[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1,"c":"x"}`, string(raw))
}

func TestGenerateGraph(t *testing.T) {
	f := newFixture(t)
	f.load(t, "x,y\n1,2\n2,4\n3,8\n")

	res, err := f.svc.GenerateGraph(context.Background(), f.ws, GraphRequest{Kind: "line", XColumn: "x", YColumn: "y"})
	require.NoError(t, err)
	assert.Equal(t, chart.Line, res.Spec.Kind)
	assert.Contains(t, res.Plot, `"Line Chart of y vs x"`)
	require.NotNil(t, res.YStats.Numeric)
	assert.Equal(t, 8.0, res.YStats.Numeric.Max)

	_, err = f.svc.GenerateGraph(context.Background(), f.ws, GraphRequest{Kind: "bar", XColumn: "x", YColumn: "zz"})
	assert.True(t, errors.HasCode(err, errors.CodeColumnNotFound))
}

func TestRenderChart(t *testing.T) {
	f := newFixture(t)
	f.load(t, "x,y\n1,2\n2,4\n")

	var buf bytes.Buffer
	require.NoError(t, f.svc.RenderChart(context.Background(), f.ws,
		GraphRequest{Kind: "scatter", XColumn: "x", YColumn: "y"}, &buf, 320, 240))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SaveSnapshot(ctx, f.ws, "empty")
	assert.True(t, errors.HasCode(err, errors.CodeNoData))

	f.load(t, "b,a\n1,x\n")

	var saved *dataset.Snapshot
	f.snapshots.On("Create", mock.Anything, mock.AnythingOfType("*dataset.Snapshot")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*dataset.Snapshot) }).
		Return(nil)

	snap, err := f.svc.SaveSnapshot(ctx, f.ws, "  ")
	require.NoError(t, err)
	assert.Equal(t, DefaultSnapshotName, snap.Name)
	assert.Same(t, snap, saved)

	other := session.NewManager(time.Hour).Create()
	f.snapshots.On("GetByID", mock.Anything, snap.ID).Return(snap, nil)
	cols, err := f.svc.LoadSnapshot(ctx, other, snap.ID.String())
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, cols)
	assert.Equal(t, DefaultSnapshotName, other.Source())

	missing := core.SnapshotID("nope")
	f.snapshots.On("GetByID", mock.Anything, missing).Return(nil, errors.NotFound("snapshot nope"))
	_, err = f.svc.LoadSnapshot(ctx, other, "nope")
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))

	_, err = f.svc.LoadSnapshot(ctx, other, " ")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestDeleteAndListSnapshots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	filter := dataset.ListFilter{Query: "q"}

	f.snapshots.On("List", mock.Anything, filter).Return([]*dataset.Snapshot{{Name: "q1"}}, nil)
	list, err := f.svc.ListSnapshots(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	f.snapshots.On("Delete", mock.Anything, core.SnapshotID("s1")).Return(nil)
	require.NoError(t, f.svc.DeleteSnapshot(ctx, "s1"))
	f.snapshots.AssertExpectations(t)
}

func TestExportAndReport(t *testing.T) {
	f := newFixture(t)
	f.load(t, "x,label\n1,a\n2,b\n")

	var buf bytes.Buffer
	require.NoError(t, f.svc.Export(context.Background(), f.ws, &buf))
	rows, err := excel.ReadRows(&buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "label"}, rows[0])
	assert.Len(t, rows, 3)

	rep, err := f.svc.Report(context.Background(), f.ws)
	require.NoError(t, err)
	assert.Equal(t, "test.csv", rep.Source)
	assert.Contains(t, rep.Markdown(), "| x | numeric |")
}
