package ui

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"dataviz/app"
	"dataviz/domain/dataset"
	"dataviz/internal/errors"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// snapshotView is a snapshot without its row data.
type snapshotView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	RowCount  int    `json:"row_count"`
	CreatedAt string `json:"created_at"`
}

func (s *Server) handleListSnapshots(c *gin.Context) {
	filter, err := listFilter(c.Query("q"), c.Query("limit"))
	if err != nil {
		fail(c, err)
		return
	}
	snaps, err := s.workbench.ListSnapshots(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}

	views := make([]snapshotView, 0, len(snaps))
	for _, snap := range snaps {
		views = append(views, snapshotView{
			ID:        snap.ID.String(),
			Name:      snap.Name,
			RowCount:  snap.RowCount,
			CreatedAt: snap.CreatedAt.String(),
		})
	}
	succeed(c, gin.H{"snapshots": views, "count": len(views)})
}

func (s *Server) handleLoadSnapshot(c *gin.Context) {
	columns, err := s.workbench.LoadSnapshot(c.Request.Context(), workspace(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	succeed(c, gin.H{"message": "Data loaded successfully", "columns": columns})
}

func (s *Server) handleDeleteSnapshot(c *gin.Context) {
	if err := s.workbench.DeleteSnapshot(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	succeed(c, gin.H{"message": "Snapshot deleted"})
}

type chartQuery struct {
	app.GraphRequest
	Width  int `form:"width" binding:"omitempty,min=100,max=4000"`
	Height int `form:"height" binding:"omitempty,min=100,max=4000"`
}

func (s *Server) handleChartPNG(c *gin.Context) {
	var q chartQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		fail(c, errors.InvalidInput("invalid chart query: "+err.Error()))
		return
	}

	var buf bytes.Buffer
	if err := s.workbench.RenderChart(c.Request.Context(), workspace(c), q.GraphRequest, &buf, q.Width, q.Height); err != nil {
		fail(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) handleExport(c *gin.Context) {
	var buf bytes.Buffer
	if err := s.workbench.Export(c.Request.Context(), workspace(c), &buf); err != nil {
		fail(c, err)
		return
	}
	name := fmt.Sprintf("dataviz-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (s *Server) handleReport(c *gin.Context) {
	rep, err := s.workbench.Report(c.Request.Context(), workspace(c))
	if err != nil {
		fail(c, err)
		return
	}

	switch c.DefaultQuery("format", "md") {
	case "md", "markdown":
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(rep.Markdown()))
	case "html":
		c.Data(http.StatusOK, "text/html; charset=utf-8", rep.HTML())
	default:
		fail(c, errors.InvalidInput("format must be md or html"))
	}
}

// listFilter reads the shared q/limit listing parameters.
func listFilter(q, limit string) (dataset.ListFilter, error) {
	filter := dataset.ListFilter{Query: q}
	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			return filter, errors.InvalidInput("limit must be a non-negative integer")
		}
		filter.Limit = n
	}
	return filter, nil
}
