package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-admin-server/internal/middleware"
	"hospital-admin-server/internal/models"
	"hospital-admin-server/internal/notify"
	"hospital-admin-server/internal/realtime"
	"hospital-admin-server/internal/storage"
	"hospital-admin-server/internal/utils"
)

// ReportHandler handles patient reports: file upload into the reports
// bucket, listing, download, status moves, and the realtime stream.
type ReportHandler struct {
	DB       *gorm.DB
	Store    *storage.Store
	Hub      *realtime.Hub
	Notifier *notify.Notifier
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(db *gorm.DB, store *storage.Store, hub *realtime.Hub, notifier *notify.Notifier) *ReportHandler {
	return &ReportHandler{DB: db, Store: store, Hub: hub, Notifier: notifier}
}

// CreateReport handles creating a report from a multipart form. Fields:
// patientId, title, optional patientTestId and status, plus the file.
func (h *ReportHandler) CreateReport(c *gin.Context) {
	patientID := c.PostForm("patientId")
	title := c.PostForm("title")
	if patientID == "" || title == "" {
		utils.BadRequest(c, "patientId and title are required")
		return
	}

	uploadedBy, _ := middleware.GetPrincipalID(c)

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", patientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	status := models.ReportStatusPending
	if s := c.PostForm("status"); s != "" {
		status = models.ReportStatus(s)
		if status != models.ReportStatusPending && status != models.ReportStatusReady {
			utils.BadRequest(c, "status must be pending or ready")
			return
		}
	}

	report := models.PatientReport{
		PatientID:     patientID,
		PatientTestID: c.PostForm("patientTestId"),
		Title:         title,
		Status:        status,
		ReportDate:    time.Now(),
		UploadedByID:  uploadedBy,
	}

	fileHeader, err := c.FormFile("file")
	if err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			utils.InternalServerError(c, "Failed to open uploaded file: "+err.Error())
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			utils.InternalServerError(c, "Failed to read uploaded file: "+err.Error())
			return
		}

		contentType := fileHeader.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		obj, err := h.Store.Upload(c.Request.Context(), storage.BucketReports, fileHeader.Filename, contentType, data)
		if err != nil {
			if errors.Is(err, storage.ErrFileTooLarge) {
				utils.BadRequest(c, "Uploaded file is too large")
			} else {
				utils.InternalServerError(c, "Failed to store file: "+err.Error())
			}
			return
		}
		report.FilePath = obj.Path
	}

	if err := h.DB.Create(&report).Error; err != nil {
		if report.FilePath != "" {
			// best effort cleanup of the stored blob
			_ = h.Store.Remove(c.Request.Context(), storage.BucketReports, report.FilePath)
		}
		utils.InternalServerError(c, "Failed to create report: "+err.Error())
		return
	}

	h.Hub.PublishReportEvent(c.Request.Context(), realtime.ReportEvent{
		Action:    "created",
		ReportID:  report.ID,
		PatientID: report.PatientID,
		Status:    string(report.Status),
		Title:     report.Title,
	})
	if report.Status == models.ReportStatusReady {
		h.onReportReady(c, &report, &patient)
	}

	utils.Created(c, "Report created successfully", report)
}

// GetReportsForPatient lists the reports of a patient.
func (h *ReportHandler) GetReportsForPatient(c *gin.Context) {
	var reports []models.PatientReport
	err := h.DB.Where("patient_id = ?", c.Param("patientId")).
		Order("report_date DESC").Find(&reports).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch reports: "+err.Error())
		return
	}
	utils.Success(c, "Reports fetched successfully", reports)
}

// GetReportFile downloads the file attached to a report.
func (h *ReportHandler) GetReportFile(c *gin.Context) {
	var report models.PatientReport
	if err := h.DB.First(&report, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Report not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	if report.FilePath == "" {
		utils.NotFound(c, "Report has no attached file")
		return
	}

	obj, err := h.Store.Download(c.Request.Context(), storage.BucketReports, report.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			utils.NotFound(c, "Report file not found")
		} else {
			utils.InternalServerError(c, "Failed to fetch file: "+err.Error())
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", obj.FileName))
	c.Data(http.StatusOK, obj.ContentType, obj.Data)
}

// UpdateReportStatusRequest represents the status update body.
type UpdateReportStatusRequest struct {
	Status models.ReportStatus `json:"status" binding:"required,oneof=pending ready delivered"`
}

// UpdateReportStatus moves a report through its lifecycle.
func (h *ReportHandler) UpdateReportStatus(c *gin.Context) {
	var req UpdateReportStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var report models.PatientReport
	if err := h.DB.First(&report, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Report not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	wasReady := report.Status == models.ReportStatusReady || report.Status == models.ReportStatusDelivered
	report.Status = req.Status
	if err := h.DB.Save(&report).Error; err != nil {
		utils.InternalServerError(c, "Failed to update report: "+err.Error())
		return
	}

	h.Hub.PublishReportEvent(c.Request.Context(), realtime.ReportEvent{
		Action:    "updated",
		ReportID:  report.ID,
		PatientID: report.PatientID,
		Status:    string(report.Status),
		Title:     report.Title,
	})
	if report.Status == models.ReportStatusReady && !wasReady {
		var patient models.Patient
		if err := h.DB.First(&patient, "id = ?", report.PatientID).Error; err == nil {
			h.onReportReady(c, &report, &patient)
		}
	}

	utils.Success(c, "Report status updated successfully", report)
}

// DeleteReport removes a report and its stored file.
func (h *ReportHandler) DeleteReport(c *gin.Context) {
	var report models.PatientReport
	if err := h.DB.First(&report, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Report not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if report.FilePath != "" {
		if err := h.Store.Remove(c.Request.Context(), storage.BucketReports, report.FilePath); err != nil {
			utils.InternalServerError(c, "Failed to remove file: "+err.Error())
			return
		}
	}
	if err := h.DB.Delete(&models.PatientReport{}, "id = ?", report.ID).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete report: "+err.Error())
		return
	}

	h.Hub.PublishReportEvent(c.Request.Context(), realtime.ReportEvent{
		Action:    "deleted",
		ReportID:  report.ID,
		PatientID: report.PatientID,
	})

	utils.Success(c, "Report deleted successfully", nil)
}

// StreamReports is the realtime feed: it subscribes to the patient's
// report channel and forwards change events as server-sent events until
// the client disconnects.
func (h *ReportHandler) StreamReports(c *gin.Context) {
	patientID := c.Query("patientId")
	if patientID == "" {
		utils.BadRequest(c, "patientId is required")
		return
	}

	ctx := c.Request.Context()
	events, cancel := h.Hub.SubscribeReports(ctx, patientID)
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("report", ev)
			return true
		case <-ctx.Done():
			return false
		}
	})
}

// onReportReady fans out the side effects of a report becoming ready:
// a notification for the assigned doctor and the outbound webhook.
func (h *ReportHandler) onReportReady(c *gin.Context, report *models.PatientReport, patient *models.Patient) {
	if patient.DoctorID != "" {
		var record models.DoctorRecord
		if err := h.DB.First(&record, "id = ?", patient.DoctorID).Error; err == nil {
			notification := models.Notification{
				UserID:  record.UserID,
				Title:   "Report ready",
				Message: fmt.Sprintf("Report %q for patient %s is ready", report.Title, patient.RegistrationNumber),
			}
			_ = h.DB.Create(&notification).Error
		}
	}

	_ = h.Notifier.ReportReady(c.Request.Context(), notify.ReportReadyPayload{
		ReportID:           report.ID,
		PatientID:          report.PatientID,
		RegistrationNumber: patient.RegistrationNumber,
		Title:              report.Title,
		ReadyAt:            time.Now(),
	})
}
