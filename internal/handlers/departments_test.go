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
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gdb, mock
}

func departmentRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewDepartmentHandler(db)
	r.GET("/departments", h.GetDepartments)
	r.POST("/departments", h.CreateDepartment)
	return r
}

func TestGetDepartments(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at", "name", "description"}).
		AddRow("d1", now, now, "Cardiology", "Heart unit").
		AddRow("d2", now, now, "Radiology", "Imaging unit")
	mock.ExpectQuery("SELECT \\* FROM `departments`").WillReturnRows(rows)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/departments", nil)
	departmentRouter(db).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Cardiology")
	assert.Contains(t, w.Body.String(), "Radiology")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDepartment(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `departments` WHERE name = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `departments`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/departments",
		strings.NewReader(`{"name":"Cardiology","description":"Heart unit"}`))
	req.Header.Set("Content-Type", "application/json")
	departmentRouter(db).ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Cardiology")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDepartmentDuplicateName(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()

	mock.ExpectQuery("SELECT \\* FROM `departments` WHERE name = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at", "name", "description"}).
			AddRow("d1", now, now, "Cardiology", "Heart unit"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/departments",
		strings.NewReader(`{"name":"Cardiology"}`))
	req.Header.Set("Content-Type", "application/json")
	departmentRouter(db).ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDepartmentValidation(t *testing.T) {
	db, _ := newMockDB(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/departments", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	departmentRouter(db).ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
