package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudgetLimitHandler_Create(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 分类可用
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(categoryRows(2, "餐饮", nil, true))

	// 当月没有已有限额
	mock.ExpectQuery("SELECT .* FROM `budget_limits`").
		WillReturnRows(sqlmock.NewRows([]string{}))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `budget_limits`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/budget-limits", NewBudgetLimitHandler().Create)

	body := `{"category_id":2,"amount_limit":1000,"warning_threshold":80,"month":"2025-06"}`
	req := httptest.NewRequest("POST", "/budget-limits", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "创建成功", resp["message"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(1000), data["amount_limit"])
	assert.Equal(t, float64(80), data["warning_threshold"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetLimitHandler_Create_Duplicate(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(categoryRows(2, "餐饮", nil, true))

	// 当月已有限额：拒绝且不覆盖
	mock.ExpectQuery("SELECT .* FROM `budget_limits`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "category_id", "amount_limit", "warning_threshold", "month", "created_at", "updated_at", "deleted_at"}).
			AddRow(1, 1, 2, 500.0, 100.0, time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local), time.Now(), time.Now(), nil))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/budget-limits", NewBudgetLimitHandler().Create)

	body := `{"category_id":2,"amount_limit":1000,"month":"2025-06"}`
	req := httptest.NewRequest("POST", "/budget-limits", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "该分类在当月已有预算限额")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetLimitHandler_Create_DefaultThreshold(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(categoryRows(2, "餐饮", nil, true))
	mock.ExpectQuery("SELECT .* FROM `budget_limits`").
		WillReturnRows(sqlmock.NewRows([]string{}))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `budget_limits`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/budget-limits", NewBudgetLimitHandler().Create)

	// 不传阈值，缺省 100
	body := `{"category_id":2,"amount_limit":1000,"month":"2025-06"}`
	req := httptest.NewRequest("POST", "/budget-limits", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(100), data["warning_threshold"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestParseMonth(t *testing.T) {
	// 月份写法
	m := parseMonth("2025-03")
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local), m)

	// 日期写法归一化到当月第一天
	m = parseMonth("2025-03-15")
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local), m)

	// 解析失败回落到当前月份
	now := time.Now()
	m = parseMonth("not-a-month")
	assert.Equal(t, time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local), m)
	m = parseMonth("")
	assert.Equal(t, time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local), m)
}
