package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func patientTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewPatientTestHandler(db)
	r.PATCH("/patient-tests/:id/status", h.UpdateTestStatus)
	return r
}

func orderedTestRows(status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "created_at", "updated_at", "patient_id", "test_subtype_id", "status", "ordered_by_id", "notes"}).
		AddRow("t1", now, now, "pat-1", "sub-1", status, "staff-1", "")
}

func TestUpdateTestStatusValidTransition(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `patient_tests` WHERE id = \\?").
		WillReturnRows(orderedTestRows("ordered"))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `patient_tests`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/patient-tests/t1/status",
		strings.NewReader(`{"status":"sample_collected"}`))
	req.Header.Set("Content-Type", "application/json")
	patientTestRouter(db).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sample_collected")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTestStatusRejectsInvalidTransition(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `patient_tests` WHERE id = \\?").
		WillReturnRows(orderedTestRows("completed"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/patient-tests/t1/status",
		strings.NewReader(`{"status":"ordered"}`))
	req.Header.Set("Content-Type", "application/json")
	patientTestRouter(db).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet(), "no update may run for an invalid transition")
}

func TestUpdateTestStatusRejectsUnknownStatus(t *testing.T) {
	db, _ := newMockDB(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/patient-tests/t1/status",
		strings.NewReader(`{"status":"teleported"}`))
	req.Header.Set("Content-Type", "application/json")
	patientTestRouter(db).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
