package api

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transactionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "amount", "type", "category_id", "note", "transaction_date", "is_active", "created_at", "updated_at", "deleted_at"})
}

func TestStatisticsHandler_WeeklySummary(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	day := func(d string) time.Time {
		tm, _ := time.ParseInLocation("2006-01-02", d, time.Local)
		return tm
	}

	// 周内记录：两笔支出一笔收入
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(transactionRows().
			AddRow(1, 1, 100.0, "expense", 2, "", day("2025-06-09"), true, time.Now(), time.Now(), nil).
			AddRow(2, 1, 50.0, "expense", 3, "", day("2025-06-11"), true, time.Now(), time.Now(), nil).
			AddRow(3, 1, 8000.0, "income", 8, "", day("2025-06-10"), true, time.Now(), time.Now(), nil))

	// 记录中出现过的可见分类
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "user_id", "is_default", "is_active", "created_at", "updated_at", "deleted_at"}).
			AddRow(2, "餐饮", "", nil, true, true, time.Now(), time.Now(), nil).
			AddRow(3, "交通", "", nil, true, true, time.Now(), time.Now(), nil).
			AddRow(8, "工资", "", nil, true, true, time.Now(), time.Now(), nil))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/statistics/weekly-summary", NewStatisticsHandler().WeeklySummary)

	// 2025-06-11 是周三，所在周为 06-09（周一）至 06-15（周日）
	req := httptest.NewRequest("GET", "/statistics/weekly-summary?date=2025-06-11", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "2025-06-09 - 2025-06-15", data["week"])
	assert.Equal(t, float64(8000), data["total_income"])
	assert.Equal(t, float64(150), data["total_expense"])

	top := data["top_categories"].([]interface{})
	require.Len(t, top, 3)
	// 支出降序
	first := top[0].(map[string]interface{})
	assert.Equal(t, "餐饮", first["category"])
	assert.Equal(t, float64(100), first["expense"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatisticsHandler_WeeklySummary_BadDate(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/statistics/weekly-summary", NewStatisticsHandler().WeeklySummary)

	req := httptest.NewRequest("GET", "/statistics/weekly-summary?date=11/06/2025", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "日期格式错误")
}

func TestStatisticsHandler_MonthlyReport(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	day := func(d string) time.Time {
		tm, _ := time.ParseInLocation("2006-01-02", d, time.Local)
		return tm
	}

	// 当月记录
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(transactionRows().
			AddRow(1, 1, 300.0, "expense", 2, "", day("2025-03-05"), true, time.Now(), time.Now(), nil).
			AddRow(2, 1, 5000.0, "income", 8, "", day("2025-03-01"), true, time.Now(), time.Now(), nil))

	// 当月限额（无）
	mock.ExpectQuery("SELECT .* FROM `budget_limits`").
		WillReturnRows(sqlmock.NewRows([]string{}))

	// 本人创建的分类（无，category_summary 为空）
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(sqlmock.NewRows([]string{}))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/statistics/monthly-report", NewStatisticsHandler().MonthlyReport)

	req := httptest.NewRequest("GET", "/statistics/monthly-report?month=2025-03", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(5000), data["total_income"])
	assert.Equal(t, float64(300), data["total_expense"])
	assert.Equal(t, float64(4700), data["balance"])
	assert.Empty(t, data["budget_limit_exceeded"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatisticsHandler_MonthlyReport_ExceededLimits(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	day := func(d string) time.Time {
		tm, _ := time.ParseInLocation("2006-01-02", d, time.Local)
		return tm
	}
	month := time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local)

	// 餐饮支出恰好等于限额，交通支出差 1 元
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(transactionRows().
			AddRow(1, 1, 300.0, "expense", 2, "", day("2025-03-05"), true, time.Now(), time.Now(), nil).
			AddRow(2, 1, 499.0, "expense", 3, "", day("2025-03-06"), true, time.Now(), time.Now(), nil))

	// 两条当月限额
	mock.ExpectQuery("SELECT .* FROM `budget_limits`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "category_id", "amount_limit", "warning_threshold", "month", "created_at", "updated_at", "deleted_at"}).
			AddRow(1, 1, 2, 300.0, 100.0, month, time.Now(), time.Now(), nil).
			AddRow(2, 1, 3, 500.0, 100.0, month, time.Now(), time.Now(), nil))

	// 限额的分类 Preload
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "user_id", "is_default", "is_active", "created_at", "updated_at", "deleted_at"}).
			AddRow(2, "餐饮", "", nil, true, true, time.Now(), time.Now(), nil).
			AddRow(3, "交通", "", nil, true, true, time.Now(), time.Now(), nil))

	// 本人创建的分类（无）
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(sqlmock.NewRows([]string{}))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/statistics/monthly-report", NewStatisticsHandler().MonthlyReport)

	req := httptest.NewRequest("GET", "/statistics/monthly-report?month=2025-03", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})

	// 支出等于限额即计入超限（>=），未达限额的不出现
	exceeded := data["budget_limit_exceeded"].([]interface{})
	require.Len(t, exceeded, 1)
	entry := exceeded[0].(map[string]interface{})
	assert.Equal(t, "餐饮", entry["category"])
	assert.Equal(t, float64(300), entry["limit"])
	assert.Equal(t, float64(300), entry["actual_expense"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatisticsHandler_MonthlyReport_BadMonth(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/statistics/monthly-report", NewStatisticsHandler().MonthlyReport)

	req := httptest.NewRequest("GET", "/statistics/monthly-report?month=March", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	assert.Contains(t, w.Body.String(), "月份格式错误")
}

func TestStatisticsHandler_Overview(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	day := func(d string) time.Time {
		tm, _ := time.ParseInLocation("2006-01-02", d, time.Local)
		return tm
	}

	// 全部时间的记录
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(transactionRows().
			AddRow(1, 1, 100.0, "expense", 2, "", day("2025-05-01"), true, time.Now(), time.Now(), nil).
			AddRow(2, 1, 60.0, "expense", 2, "", day("2025-05-01"), true, time.Now(), time.Now(), nil).
			AddRow(3, 1, 40.0, "expense", 2, "", day("2025-06-03"), true, time.Now(), time.Now(), nil))

	// 全部限额（无）
	mock.ExpectQuery("SELECT .* FROM `budget_limits`").
		WillReturnRows(sqlmock.NewRows([]string{}))

	// 出现过的分类
	mock.ExpectQuery("SELECT .* FROM `categories`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "user_id", "is_default", "is_active", "created_at", "updated_at", "deleted_at"}).
			AddRow(2, "餐饮", "", nil, true, true, time.Now(), time.Now(), nil))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/statistics/overview", NewStatisticsHandler().Overview)

	req := httptest.NewRequest("GET", "/statistics/overview", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(200), data["total_expense"])
	assert.Equal(t, float64(-200), data["balance"])

	// 按日支出：稀疏且升序
	daily := data["daily_expense"].([]interface{})
	require.Len(t, daily, 2)
	d0 := daily[0].(map[string]interface{})
	assert.Equal(t, "2025-05-01", d0["date"])
	assert.Equal(t, float64(160), d0["expense"])
	d1 := daily[1].(map[string]interface{})
	assert.Equal(t, "2025-06-03", d1["date"])
	require.NoError(t, mock.ExpectationsWereMet())
}
