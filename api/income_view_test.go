package api

import (
	"bytes"
	"net/http/httptest"
	"testing"
	"time"

	"incometracker/config"
	"incometracker/view"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	incomeColumns = []string{"id", "user_id", "source", "amount", "date", "payment_frequency", "created_at", "updated_at", "deleted_at"}
	noteColumns   = []string{"id", "user_id", "content", "created_at", "deleted_at"}
)

func setUserIDMiddleware(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

func setupViewRouter(userID uint) *gin.Engine {
	return setupViewRouterWithConfig(testConfig(), userID)
}

func setupViewRouterWithConfig(cfg *config.Config, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewIncomeViewHandler(cfg, view.NewRegistry())

	router := gin.New()
	router.Use(setUserIDMiddleware(userID))
	g := router.Group("/income-view")
	g.GET("", h.Get)
	g.POST("/submit", h.Submit)
	g.POST("/incomes/:id/edit", h.Edit)
	g.POST("/incomes/:id/select", h.Select)
	g.POST("/deselect", h.Deselect)
	g.POST("/clear", h.Clear)
	g.POST("/delete", h.Delete)
	g.POST("/notes", h.AddNote)
	g.DELETE("/notes/:id", h.DeleteNote)
	g.GET("/summary", h.Summary)
	g.POST("/summary/email", h.EmailSummary)
	return router
}

func expectLoad(mock sqlmock.Sqlmock, userID uint) {
	expectUserIncomes(mock, userID)
	mock.ExpectQuery("SELECT .* FROM `notes` WHERE user_id = .* ORDER BY id").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(noteColumns).
			AddRow(4, userID, "first", time.Now(), nil).
			AddRow(9, userID, "second", time.Now(), nil))
}

func perform(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIncomeViewHandler_Get(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	expectLoad(mock, 1)

	w := perform(setupViewRouter(1), "GET", "/income-view", "")

	require.Equal(t, 200, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Len(t, data["incomes"], 2)
	assert.Len(t, data["notes"], 2)
	summary := data["summary"].(map[string]interface{})
	assert.Equal(t, "$ 2000.00", summary["total_text"])
	assert.Nil(t, data["selected_id"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncomeViewHandler_Get_StoreError(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	mock.ExpectQuery("SELECT .* FROM `incomes`").WillReturnError(assert.AnError)

	w := perform(setupViewRouter(1), "GET", "/income-view", "")

	assert.Equal(t, 500, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncomeViewHandler_Submit_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing source", `{"source":"  ","amount":"10","date":"2024-01-01","payment_frequency":"Weekly"}`, view.MsgFillAllFields},
		{"missing frequency", `{"source":"Job","amount":"10","date":"2024-01-01"}`, view.MsgFillAllFields},
		{"bad amount", `{"source":"Job","amount":"ten","date":"2024-01-01","payment_frequency":"Weekly"}`, view.MsgAmountNotNumber},
		{"zero amount", `{"source":"Job","amount":"0","date":"2024-01-01","payment_frequency":"Weekly"}`, view.MsgAmountNotPositive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, cleanup := setupMockDB(t)
			defer cleanup()
			expectLoad(mock, 1)

			w := perform(setupViewRouter(1), "POST", "/income-view/submit", tt.body)

			assert.Equal(t, 400, w.Code)
			assert.Equal(t, tt.message, decodeResponse(t, w)["message"])
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestIncomeViewHandler_Submit_Add(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	expectLoad(mock, 1)

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `users`").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(1, "alice", "x", "", now, now, nil))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `incomes`").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()
	expectUserIncomes(mock, 1)

	body := `{"source":"Bonus","amount":"250","date":"2024-03-02","payment_frequency":"Monthly"}`
	w := perform(setupViewRouter(1), "POST", "/income-view/submit", body)

	require.Equal(t, 200, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, view.NoticeIncomeAdded, resp["message"])
	form := resp["data"].(map[string]interface{})["form"].(map[string]interface{})
	assert.Equal(t, "", form["source"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncomeViewHandler_EditThenUpdate(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	router := setupViewRouter(1)
	expectLoad(mock, 1)

	w := perform(router, "POST", "/income-view/incomes/2/edit", "")
	require.Equal(t, 200, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["selected_id"])
	form := data["form"].(map[string]interface{})
	assert.Equal(t, "Job", form["source"])
	assert.Equal(t, "1500.00", form["amount"])
	assert.Equal(t, "2024-03-01", form["date"])

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `incomes` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	expectUserIncomes(mock, 1)

	body := `{"source":"Job","amount":"1600","date":"2024-03-01","payment_frequency":"Monthly"}`
	w = perform(router, "POST", "/income-view/submit", body)
	require.Equal(t, 200, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, view.NoticeIncomeUpdated, resp["message"])
	assert.Nil(t, resp["data"].(map[string]interface{})["selected_id"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncomeViewHandler_Edit_Unknown(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	expectLoad(mock, 1)

	w := perform(setupViewRouter(1), "POST", "/income-view/incomes/77/edit", "")

	assert.Equal(t, 404, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncomeViewHandler_Edit_InvalidID(t *testing.T) {
	w := perform(setupViewRouter(1), "POST", "/income-view/incomes/abc/edit", "")
	assert.Equal(t, 400, w.Code)
}

func TestIncomeViewHandler_Delete_NoSelection(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	expectLoad(mock, 1)

	w := perform(setupViewRouter(1), "POST", "/income-view/delete", "")

	assert.Equal(t, 400, w.Code)
	assert.Equal(t, view.MsgSelectIncomeDelete, decodeResponse(t, w)["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncomeViewHandler_SelectThenDelete(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	router := setupViewRouter(1)
	expectLoad(mock, 1)

	w := perform(router, "POST", "/income-view/incomes/1/select", "")
	require.Equal(t, 200, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["grid_selected_id"])
	assert.Equal(t, float64(1), data["selected_id"])

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `incomes` SET `deleted_at`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT .* FROM `incomes`").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(incomeColumns).
			AddRow(2, 1, "Job", "1500.00", time.Now(), "Monthly", time.Now(), time.Now(), nil))

	w = perform(router, "POST", "/income-view/delete", "")
	require.Equal(t, 200, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, view.NoticeIncomeDeleted, resp["message"])
	data = resp["data"].(map[string]interface{})
	assert.Nil(t, data["grid_selected_id"])
	assert.Nil(t, data["selected_id"])
	assert.Len(t, data["incomes"], 1)
	assert.Equal(t, "$ 1500.00", data["summary"].(map[string]interface{})["total_text"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncomeViewHandler_Deselect(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	router := setupViewRouter(1)
	expectLoad(mock, 1)

	require.Equal(t, 200, perform(router, "POST", "/income-view/incomes/1/select", "").Code)
	w := perform(router, "POST", "/income-view/deselect", "")

	require.Equal(t, 200, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Nil(t, data["grid_selected_id"])
	// 取消选中不影响编辑状态
	assert.Equal(t, float64(1), data["selected_id"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncomeViewHandler_Clear(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	router := setupViewRouter(1)
	expectLoad(mock, 1)

	require.Equal(t, 200, perform(router, "POST", "/income-view/incomes/2/edit", "").Code)
	w := perform(router, "POST", "/income-view/clear", "")

	require.Equal(t, 200, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Nil(t, data["selected_id"])
	assert.Equal(t, "", data["form"].(map[string]interface{})["amount"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncomeViewHandler_AddNote(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	expectLoad(mock, 1)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `notes`").
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectCommit()

	w := perform(setupViewRouter(1), "POST", "/income-view/notes", `{"content":"  raise in May  "}`)

	require.Equal(t, 200, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, view.NoticeNoteAdded, resp["message"])
	notes := resp["data"].(map[string]interface{})["notes"].([]interface{})
	require.Len(t, notes, 3)
	last := notes[2].(map[string]interface{})
	assert.Equal(t, float64(12), last["id"])
	assert.Equal(t, "raise in May", last["content"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncomeViewHandler_AddNote_Blank(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	expectLoad(mock, 1)

	w := perform(setupViewRouter(1), "POST", "/income-view/notes", `{"content":"   "}`)

	require.Equal(t, 200, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, view.NoticeNoteEmptyIgnored, resp["message"])
	assert.Len(t, resp["data"].(map[string]interface{})["notes"], 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncomeViewHandler_DeleteNote(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	expectLoad(mock, 1)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `notes` SET `deleted_at`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := perform(setupViewRouter(1), "DELETE", "/income-view/notes/4", "")

	require.Equal(t, 200, w.Code)
	notes := decodeResponse(t, w)["data"].(map[string]interface{})["notes"].([]interface{})
	require.Len(t, notes, 1)
	assert.Equal(t, float64(9), notes[0].(map[string]interface{})["id"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncomeViewHandler_DeleteNote_Unknown(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	expectLoad(mock, 1)

	w := perform(setupViewRouter(1), "DELETE", "/income-view/notes/5", "")

	assert.Equal(t, 404, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncomeViewHandler_Summary(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	expectLoad(mock, 1)

	w := perform(setupViewRouter(1), "GET", "/income-view/summary", "")

	require.Equal(t, 200, w.Code)
	data := decodeResponse(t, w)["data"].(map[string]interface{})
	sources := data["sources"].([]interface{})
	require.Len(t, sources, 2)
	first := sources[0].(map[string]interface{})
	assert.Equal(t, "Job", first["source"])
	assert.Equal(t, "Job: $ 1500.00 (75.00% of Total Income)", first["text"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncomeViewHandler_EmailSummary_Disabled(t *testing.T) {
	w := perform(setupViewRouter(1), "POST", "/income-view/summary/email", "")
	assert.Equal(t, 503, w.Code)
}

func TestIncomeViewHandler_Submit_UpdateOfVanishedRecord(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	router := setupViewRouter(1)
	expectLoad(mock, 1)

	require.Equal(t, 200, perform(router, "POST", "/income-view/incomes/2/edit", "").Code)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `incomes` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	body := `{"source":"Job","amount":"1600","date":"2024-03-01","payment_frequency":"Monthly"}`
	w := perform(router, "POST", "/income-view/submit", body)

	assert.Equal(t, 404, w.Code)
	assert.Equal(t, "Record not found", decodeResponse(t, w)["message"])

	// 失败后下次访问重新加载
	expectLoad(mock, 1)
	require.Equal(t, 200, perform(router, "GET", "/income-view/summary", "").Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncomeViewHandler_Summary_PartialLoadIsNotCached(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	router := setupViewRouter(1)

	expectUserIncomes(mock, 1)
	mock.ExpectQuery("SELECT .* FROM `notes`").WillReturnError(assert.AnError)
	assert.Equal(t, 500, perform(router, "GET", "/income-view/summary", "").Code)

	expectLoad(mock, 1)
	w := perform(router, "GET", "/income-view/summary", "")
	require.Equal(t, 200, w.Code)
	assert.Equal(t, "$ 2000.00", decodeResponse(t, w)["data"].(map[string]interface{})["total_text"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func emailEnabledConfig() *config.Config {
	cfg := testConfig()
	cfg.Email = config.EmailConfig{Enabled: true, Host: "smtp.example.com", Port: 465, From: "Income Tracker"}
	return cfg
}

func TestIncomeViewHandler_EmailSummary_NoAddress(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `users`").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(1, "alice", "x", "", now, now, nil))

	w := perform(setupViewRouterWithConfig(emailEnabledConfig(), 1), "POST", "/income-view/summary/email", "")

	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "No email address on your account", decodeResponse(t, w)["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncomeViewHandler_EmailSummary_UserLookupFails(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	mock.ExpectQuery("SELECT .* FROM `users`").
		WithArgs(1).
		WillReturnError(assert.AnError)

	w := perform(setupViewRouterWithConfig(emailEnabledConfig(), 1), "POST", "/income-view/summary/email", "")

	assert.Equal(t, 500, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncomeViewHandler_EmailSummary_FailedRefreshReloadsNextTime(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	router := setupViewRouterWithConfig(emailEnabledConfig(), 1)

	expectLoad(mock, 1)
	require.Equal(t, 200, perform(router, "GET", "/income-view", "").Code)

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `users`").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(1, "alice", "x", "alice@example.com", now, now, nil))
	expectUserIncomes(mock, 1)
	mock.ExpectQuery("SELECT .* FROM `notes`").WillReturnError(assert.AnError)
	assert.Equal(t, 500, perform(router, "POST", "/income-view/summary/email", "").Code)

	// 收入已刷新而备注失败，状态不能继续当作已加载
	expectLoad(mock, 1)
	require.Equal(t, 200, perform(router, "GET", "/income-view/summary", "").Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
