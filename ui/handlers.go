package ui

import (
	stderrors "errors"
	"io"
	"net/http"

	"dataviz/app"
	"dataviz/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
)

func (s *Server) handleIndex(c *gin.Context) {
	s.renderTemplate(c, IndexTemplate, gin.H{
		"has_data": app.HasData(workspace(c)),
	})
}

func (s *Server) handleUpload(c *gin.Context) {
	ctx := c.Request.Context()
	if !s.uploadGate.TryAcquire(1) {
		fail(c, errors.TooManyRequests("Too many uploads in progress, try again shortly"))
		return
	}
	defer s.uploadGate.Release(1)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			fail(c, errors.InvalidInput("File exceeds the upload size limit"))
			return
		}
		fail(c, errors.InvalidInput("Invalid form submission"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, errors.Wrap(err, "Error processing file"))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		fail(c, errors.Wrap(err, "Error processing file"))
		return
	}

	result, err := s.workbench.Upload(ctx, workspace(c), app.UploadRequest{
		Name:     c.PostForm("name"),
		FileName: fh.Filename,
		Data:     data,
	})
	if err != nil {
		fail(c, err)
		return
	}

	succeed(c, gin.H{
		"message":   "File uploaded and processed successfully",
		"columns":   result.Columns,
		"file_name": result.FileName,
		"upload_id": result.UploadID,
		"rows":      result.Rows,
	})
}

func (s *Server) handleProcessData(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		fail(c, errors.InvalidInput("Error processing data: unreadable body"))
		return
	}
	if !gjson.ValidBytes(body) {
		fail(c, errors.ParseError("Error processing data", errors.InvalidInput("body is not valid JSON")))
		return
	}

	rows := []byte("[]")
	if data := gjson.GetBytes(body, "data"); data.Exists() && data.Type != gjson.Null {
		rows = []byte(data.Raw)
	}

	columns, err := s.workbench.ProcessData(c.Request.Context(), workspace(c), rows)
	if err != nil {
		fail(c, errors.Wrap(err, "Error processing data"))
		return
	}
	succeed(c, gin.H{
		"message": "Data processed successfully",
		"columns": columns,
	})
}

func (s *Server) handleGetColumns(c *gin.Context) {
	result, err := s.workbench.Columns(c.Request.Context(), workspace(c))
	if err != nil {
		fail(c, err)
		return
	}
	succeed(c, gin.H{
		"columns":      result.Columns,
		"column_types": result.ColumnTypes,
		"data":         result.Data,
	})
}

func (s *Server) handleGenerateGraph(c *gin.Context) {
	var req app.GraphRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, errors.InvalidInput("Error generating graph: "+err.Error()))
		return
	}

	result, err := s.workbench.GenerateGraph(c.Request.Context(), workspace(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	succeed(c, gin.H{
		"plot":    result.Plot,
		"x_stats": result.XStats,
		"y_stats": result.YStats,
	})
}

type saveRequest struct {
	Name string `json:"name" form:"name"`
}

func (s *Server) handleSaveData(c *gin.Context) {
	var req saveRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBind(&req); err != nil {
			fail(c, errors.InvalidInput("Error saving data: "+err.Error()))
			return
		}
	}

	snap, err := s.workbench.SaveSnapshot(c.Request.Context(), workspace(c), req.Name)
	if err != nil {
		fail(c, err)
		return
	}
	succeed(c, gin.H{
		"message": "Data saved successfully",
		"id":      snap.ID,
		"name":    snap.Name,
	})
}
