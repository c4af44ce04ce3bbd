package api

import (
	"errors"
	"net/http"
	"strconv"

	"incometracker/config"
	"incometracker/database"
	"incometracker/middleware"
	"incometracker/models"
	"incometracker/service"
	"incometracker/view"

	"github.com/gin-gonic/gin"
)

// IncomeViewHandler 收入页面的用户动作，每个接口对应页面上的一个操作
type IncomeViewHandler struct {
	registry *view.Registry
	email    *service.EmailService
}

func NewIncomeViewHandler(cfg *config.Config, registry *view.Registry) *IncomeViewHandler {
	return &IncomeViewHandler{
		registry: registry,
		email:    service.NewEmailService(&cfg.Email),
	}
}

// ViewResponse 页面当前状态
type ViewResponse struct {
	Incomes            []models.Income           `json:"incomes"`
	Notes              []models.Note             `json:"notes"`
	Summary            view.Summary              `json:"summary"`
	Form               view.Form                 `json:"form"`
	SelectedID         *uint                     `json:"selected_id"`
	GridSelectedID     *uint                     `json:"grid_selected_id"`
	PaymentFrequencies []models.PaymentFrequency `json:"payment_frequencies"`
}

// AddNoteRequest 新增备注
type AddNoteRequest struct {
	Content string `json:"content" example:"Bonus expected in March"`
}

func newViewResponse(st *view.State) ViewResponse {
	resp := ViewResponse{
		Incomes:            st.Incomes,
		Notes:              st.Notes,
		Summary:            st.Summary,
		Form:               st.Form,
		PaymentFrequencies: models.GetPaymentFrequencies(),
	}
	if resp.Incomes == nil {
		resp.Incomes = []models.Income{}
	}
	if resp.Notes == nil {
		resp.Notes = []models.Note{}
	}
	if resp.Summary.Sources == nil {
		resp.Summary.Sources = []view.SourceShare{}
	}
	if st.Selected != nil {
		id := st.Selected.ID
		resp.SelectedID = &id
	}
	if st.GridSelected != nil {
		id := st.GridSelected.ID
		resp.GridSelectedID = &id
	}
	return resp
}

func stores() view.Stores {
	return view.Stores{
		Incomes: service.NewIncomeService(database.DB),
		Notes:   service.NewNoteService(database.DB),
		Users:   service.NewUserService(database.DB),
	}
}

// withView 持有当前用户的页面状态执行 fn；fn 返回提示文案，成功时连同页面状态一起返回
func (h *IncomeViewHandler) withView(c *gin.Context, fallback string, fn func(v *view.IncomeView) (string, error)) {
	h.run(c, false, fallback, fn)
}

func (h *IncomeViewHandler) run(c *gin.Context, refresh bool, fallback string, fn func(v *view.IncomeView) (string, error)) {
	state, release := h.registry.Acquire(middleware.GetCurrentUserID(c))
	defer release()

	v := view.New(stores(), middleware.Session(c), state)
	load := v.EnsureLoaded
	if refresh {
		load = v.Refresh
	}
	if err := load(); err != nil {
		state.Loaded = false
		respondError(c, err, "load income view failed")
		return
	}

	msg, err := fn(v)
	if err != nil {
		var verr *view.ValidationError
		if !errors.As(err, &verr) {
			// 存储出错后页面状态可能与数据库不一致，下次访问重新加载
			state.Loaded = false
		}
		respondError(c, err, fallback)
		return
	}
	if msg == "" {
		msg = "success"
	}
	SuccessWithMessage(c, msg, newViewResponse(state))
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		BadRequest(c, "invalid id")
		return 0, false
	}
	return uint(id), true
}

// Get 刷新页面
// @Summary 刷新收入页面（收入列表、备注、汇总）
// @Tags income-view
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=ViewResponse}
// @Router /api/v1/income-view [get]
func (h *IncomeViewHandler) Get(c *gin.Context) {
	h.run(c, true, "refresh failed", func(v *view.IncomeView) (string, error) {
		return "", nil
	})
}

// Submit 新增或更新收入
// @Summary 新增或更新收入
// @Description 没有正在编辑的记录时新增，否则覆盖正在编辑的记录
// @Tags income-view
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body view.Form true "表单"
// @Success 200 {object} Response{data=ViewResponse}
// @Failure 400 {object} Response
// @Router /api/v1/income-view/submit [post]
func (h *IncomeViewHandler) Submit(c *gin.Context) {
	var form view.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		BadRequest(c, "invalid parameters: "+err.Error())
		return
	}
	h.withView(c, "save income failed", func(v *view.IncomeView) (string, error) {
		return v.AddOrUpdate(form)
	})
}

// Edit 编辑按钮
// @Summary 选择收入进入编辑并回填表单
// @Tags income-view
// @Produce json
// @Security BearerAuth
// @Param id path int true "收入ID"
// @Success 200 {object} Response{data=ViewResponse}
// @Failure 404 {object} Response
// @Router /api/v1/income-view/incomes/{id}/edit [post]
func (h *IncomeViewHandler) Edit(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	h.withView(c, "edit income failed", func(v *view.IncomeView) (string, error) {
		return "", v.EditByID(id)
	})
}

// Select 列表行选中
// @Summary 选中列表行（同时进入编辑）
// @Tags income-view
// @Produce json
// @Security BearerAuth
// @Param id path int true "收入ID"
// @Success 200 {object} Response{data=ViewResponse}
// @Failure 404 {object} Response
// @Router /api/v1/income-view/incomes/{id}/select [post]
func (h *IncomeViewHandler) Select(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	h.withView(c, "select income failed", func(v *view.IncomeView) (string, error) {
		return "", v.SelectByID(id)
	})
}

// Deselect 取消列表选中
// @Summary 取消列表选中
// @Tags income-view
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=ViewResponse}
// @Router /api/v1/income-view/deselect [post]
func (h *IncomeViewHandler) Deselect(c *gin.Context) {
	h.withView(c, "deselect failed", func(v *view.IncomeView) (string, error) {
		v.Select(nil)
		return "", nil
	})
}

// Clear 清空表单
// @Summary 清空表单和编辑状态
// @Tags income-view
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=ViewResponse}
// @Router /api/v1/income-view/clear [post]
func (h *IncomeViewHandler) Clear(c *gin.Context) {
	h.withView(c, "clear form failed", func(v *view.IncomeView) (string, error) {
		v.ClearForm()
		return "", nil
	})
}

// Delete 删除列表中选中的收入
// @Summary 删除选中的收入
// @Tags income-view
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=ViewResponse}
// @Failure 400 {object} Response "未选中收入"
// @Router /api/v1/income-view/delete [post]
func (h *IncomeViewHandler) Delete(c *gin.Context) {
	h.withView(c, "delete income failed", func(v *view.IncomeView) (string, error) {
		return v.Delete()
	})
}

// AddNote 新增备注
// @Summary 新增备注，空内容忽略
// @Tags income-view
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AddNoteRequest true "备注"
// @Success 200 {object} Response{data=ViewResponse}
// @Router /api/v1/income-view/notes [post]
func (h *IncomeViewHandler) AddNote(c *gin.Context) {
	var req AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid parameters: "+err.Error())
		return
	}
	h.withView(c, "add note failed", func(v *view.IncomeView) (string, error) {
		note, err := v.AddNote(req.Content)
		if err != nil {
			return "", err
		}
		if note == nil {
			return view.NoticeNoteEmptyIgnored, nil
		}
		return view.NoticeNoteAdded, nil
	})
}

// DeleteNote 删除备注
// @Summary 删除备注
// @Tags income-view
// @Produce json
// @Security BearerAuth
// @Param id path int true "备注ID"
// @Success 200 {object} Response{data=ViewResponse}
// @Failure 404 {object} Response
// @Router /api/v1/income-view/notes/{id} [delete]
func (h *IncomeViewHandler) DeleteNote(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	h.withView(c, "delete note failed", func(v *view.IncomeView) (string, error) {
		if err := v.DeleteNote(id); err != nil {
			return "", err
		}
		return view.NoticeNoteDeleted, nil
	})
}

// Summary 汇总面板
// @Summary 收入总额与来源拆分
// @Tags income-view
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=view.Summary}
// @Router /api/v1/income-view/summary [get]
func (h *IncomeViewHandler) Summary(c *gin.Context) {
	state, release := h.registry.Acquire(middleware.GetCurrentUserID(c))
	defer release()

	v := view.New(stores(), middleware.Session(c), state)
	if err := v.EnsureLoaded(); err != nil {
		state.Loaded = false
		respondError(c, err, "load summary failed")
		return
	}
	summary := state.Summary
	if summary.Sources == nil {
		summary.Sources = []view.SourceShare{}
	}
	Success(c, summary)
}

// EmailSummary 把汇总发送到当前用户邮箱
// @Summary 发送收入汇总邮件
// @Tags income-view
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Failure 400 {object} Response "用户未设置邮箱"
// @Failure 503 {object} Response "邮件服务未启用"
// @Router /api/v1/income-view/summary/email [post]
func (h *IncomeViewHandler) EmailSummary(c *gin.Context) {
	if !h.email.Enabled() {
		Error(c, http.StatusServiceUnavailable, "Email service is not enabled")
		return
	}

	userID := middleware.GetCurrentUserID(c)
	user, err := service.NewUserService(database.DB).FindUserByID(userID)
	if err != nil {
		respondUserLookupError(c, err)
		return
	}
	if user.Email == "" {
		BadRequest(c, "No email address on your account")
		return
	}

	state, release := h.registry.Acquire(userID)
	defer release()

	v := view.New(stores(), middleware.Session(c), state)
	if err := v.Refresh(); err != nil {
		state.Loaded = false
		respondError(c, err, "load summary failed")
		return
	}

	notes := make([]string, 0, len(state.Notes))
	for _, n := range state.Notes {
		notes = append(notes, n.Content)
	}
	if err := h.email.SendIncomeSummary(user.Email, service.IncomeSummaryEmail{
		Username:  user.Username,
		TotalText: state.Summary.TotalText,
		Lines:     state.Summary.Lines(),
		Notes:     notes,
	}); err != nil {
		InternalError(c, config.SafeErrorMessage(err, "send email failed"))
		return
	}
	SuccessWithMessage(c, "Summary sent to "+user.Email, nil)
}
