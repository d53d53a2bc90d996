package api

import (
	"net/http"

	"github.com/cccbbbaaaa/culture-china/internal/db"
	"github.com/cccbbbaaaa/culture-china/internal/importer"
	"github.com/cccbbbaaaa/culture-china/internal/model"
	"github.com/cccbbbaaaa/culture-china/pkg/errors"

	"github.com/gin-gonic/gin"
)

// ImportAlumni accepts the survey export ("excel") and an optional photo
// archive ("photos_zip"). With async=true the import is queued and 202 is
// returned with the pending batch.
func (h *Handler) ImportAlumni(c *gin.Context) {
	limit := h.cfg.Imports.MaxUploadBytes
	sheet, sheetName, err := readFormFile(c, "excel", limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	if len(sheet) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 Excel 文件 / Excel file is required."})
		return
	}
	archive, archiveName, err := readFormFile(c, "photos_zip", limit)
	if err != nil {
		h.fail(c, err)
		return
	}

	up := importer.Upload{
		Sheet:       sheet,
		SheetName:   sheetName,
		Archive:     archive,
		ArchiveName: archiveName,
		SubmittedBy: c.PostForm("submittedBy"),
	}

	if formBool(c, "async") || c.Query("async") == "true" {
		batch, err := h.Alumni.Enqueue(c.Request.Context(), up)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"success": true, "batch_id": batch.ID, "status": batch.Status})
		return
	}

	summary, err := h.Alumni.Import(c.Request.Context(), up)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "summary": summary.Preview(h.cfg.Imports.ErrorPreview)})
}

// ImportResources accepts an article list as "csv".
func (h *Handler) ImportResources(c *gin.Context) {
	data, name, err := readFormFile(c, "csv", h.cfg.Imports.MaxUploadBytes)
	if err != nil {
		h.fail(c, err)
		return
	}
	if len(data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 CSV 文件 / CSV file is required."})
		return
	}

	summary, err := h.Resources.Import(c.Request.Context(), importer.ResourceUpload{
		Data:        data,
		FileName:    name,
		SubmittedBy: c.PostForm("submittedBy"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "summary": summary.Preview(h.cfg.Imports.ErrorPreview)})
}

// GetBatch reports the progress of any import batch, including queued ones.
func (h *Handler) GetBatch(c *gin.Context) {
	batchID, ok := pathID(c, "batch_id")
	if !ok {
		return
	}
	batch, err := h.Repo.GetBatch(c.Request.Context(), batchID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Batch not found"})
			return
		}
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, model.BatchStatusResponse{
		BatchID:      batch.ID,
		BatchType:    batch.BatchType,
		Status:       batch.Status,
		TotalRows:    batch.TotalRows,
		AcceptedRows: batch.AcceptedRows,
		Notes:        db.DecodeNotes(batch),
		StartedAt:    batch.StartedAt,
		FinishedAt:   batch.FinishedAt,
	})
}
