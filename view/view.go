// Package view 实现收入页面的控制逻辑：表单校验、增删改编排、备注以及汇总计算。
//
// 每个用户动作对应 IncomeView 上的一个方法，调用顺序固定为
// 持久化 → 重新查询 → 更新状态 → 重新汇总，全部同步完成。
package view

import (
	"errors"
	"fmt"
	"strings"

	"incometracker/models"
)

var (
	// ErrIncomeNotFound 收入不在当前用户的列表中
	ErrIncomeNotFound = errors.New("income not found")
	// ErrNoteNotFound 备注不在当前用户的列表中
	ErrNoteNotFound = errors.New("note not found")
)

// SessionProvider 提供当前登录用户
type SessionProvider interface {
	LoggedInUserID() uint
}

// IncomeStore 收入存储
type IncomeStore interface {
	GetIncomesByUserID(userID uint) ([]models.Income, error)
	AddIncome(in *models.Income) error
	UpdateIncome(in *models.Income) error
	DeleteIncome(id uint) error
}

// NoteStore 备注存储，AddNote 需同步回填 ID
type NoteStore interface {
	GetNotesByUserID(userID uint) ([]models.Note, error)
	AddNote(n *models.Note) error
	DeleteNoteByID(id uint) error
}

// UserFinder 用于给新收入标记所属用户
type UserFinder interface {
	FindUserByID(id uint) (*models.User, error)
}

// Stores 页面依赖的外部存储
type Stores struct {
	Incomes IncomeStore
	Notes   NoteStore
	Users   UserFinder
}

// State 单个用户的页面状态
type State struct {
	Form         Form
	Selected     *models.Income // 正在编辑的记录
	GridSelected *models.Income // 列表中选中的行，删除按钮作用于它
	Incomes      []models.Income
	Notes        []models.Note
	Summary      Summary
	Loaded       bool
}

// IncomeView 收入页面控制器，绑定一次请求的会话与状态
type IncomeView struct {
	stores  Stores
	session SessionProvider
	state   *State
}

func New(stores Stores, session SessionProvider, state *State) *IncomeView {
	return &IncomeView{stores: stores, session: session, state: state}
}

func (v *IncomeView) State() *State {
	return v.state
}

// EnsureLoaded 首次访问时加载列表
func (v *IncomeView) EnsureLoaded() error {
	if v.state.Loaded {
		return nil
	}
	return v.Refresh()
}

// Refresh 重新查询收入与备注并重新汇总
func (v *IncomeView) Refresh() error {
	if err := v.refreshIncomes(); err != nil {
		return err
	}
	notes, err := v.stores.Notes.GetNotesByUserID(v.session.LoggedInUserID())
	if err != nil {
		return err
	}
	v.state.Notes = notes
	v.state.Loaded = true
	return nil
}

func (v *IncomeView) refreshIncomes() error {
	incomes, err := v.stores.Incomes.GetIncomesByUserID(v.session.LoggedInUserID())
	if err != nil {
		return err
	}
	v.state.Incomes = incomes
	v.state.Summary = Summarize(incomes)
	// 选中项指向刷新后的记录，已不存在的选中项清空
	v.state.Selected = v.rebind(v.state.Selected)
	v.state.GridSelected = v.rebind(v.state.GridSelected)
	return nil
}

func (v *IncomeView) rebind(sel *models.Income) *models.Income {
	if sel == nil {
		return nil
	}
	fresh, ok := v.findIncome(sel.ID)
	if !ok {
		return nil
	}
	return fresh
}

func (v *IncomeView) findIncome(id uint) (*models.Income, bool) {
	for i := range v.state.Incomes {
		if v.state.Incomes[i].ID == id {
			in := v.state.Incomes[i]
			return &in, true
		}
	}
	return nil, false
}

// AddOrUpdate 校验表单；无编辑中的记录时新增，否则覆盖编辑中的记录。
// 校验失败返回 *ValidationError，状态不变。
func (v *IncomeView) AddOrUpdate(form Form) (string, error) {
	values, err := form.validate()
	if err != nil {
		return "", err
	}
	if v.state.Selected == nil {
		return v.addIncome(values)
	}
	return v.updateIncome(values)
}

func (v *IncomeView) addIncome(values validatedForm) (string, error) {
	user, err := v.stores.Users.FindUserByID(v.session.LoggedInUserID())
	if err != nil {
		return "", err
	}
	income := models.Income{
		UserID:           user.ID,
		Source:           values.source,
		Amount:           values.amount,
		Date:             values.date,
		PaymentFrequency: values.frequency,
	}
	if err := v.stores.Incomes.AddIncome(&income); err != nil {
		return "", err
	}
	if err := v.refreshIncomes(); err != nil {
		return "", err
	}
	v.ClearForm()
	return NoticeIncomeAdded, nil
}

func (v *IncomeView) updateIncome(values validatedForm) (string, error) {
	// 在副本上修改，持久化失败时编辑中的记录保持原样
	income := *v.state.Selected
	income.Source = values.source
	income.Amount = values.amount
	income.Date = values.date
	income.PaymentFrequency = values.frequency

	if err := v.stores.Incomes.UpdateIncome(&income); err != nil {
		return "", err
	}
	if err := v.refreshIncomes(); err != nil {
		return "", err
	}
	v.ClearForm()
	return NoticeIncomeUpdated, nil
}

// Edit 选中记录进入编辑并回填表单
func (v *IncomeView) Edit(in models.Income) {
	v.state.Selected = &in
	v.state.Form = FormFromIncome(in)
}

// EditByID 编辑当前列表中的某条记录
func (v *IncomeView) EditByID(id uint) error {
	in, ok := v.findIncome(id)
	if !ok {
		return fmt.Errorf("edit income %d: %w", id, ErrIncomeNotFound)
	}
	v.Edit(*in)
	return nil
}

// Select 列表选中行变化；选中非空时同时进入编辑
func (v *IncomeView) Select(in *models.Income) {
	if in == nil {
		v.state.GridSelected = nil
		return
	}
	sel := *in
	v.state.GridSelected = &sel
	v.Edit(sel)
}

// SelectByID 选中当前列表中的某一行
func (v *IncomeView) SelectByID(id uint) error {
	in, ok := v.findIncome(id)
	if !ok {
		return fmt.Errorf("select income %d: %w", id, ErrIncomeNotFound)
	}
	v.Select(in)
	return nil
}

// Delete 删除列表中选中的行
func (v *IncomeView) Delete() (string, error) {
	sel := v.state.GridSelected
	if sel == nil {
		return "", &ValidationError{Message: MsgSelectIncomeDelete}
	}
	if err := v.stores.Incomes.DeleteIncome(sel.ID); err != nil {
		return "", err
	}
	v.state.GridSelected = nil
	v.ClearForm()
	if err := v.refreshIncomes(); err != nil {
		return "", err
	}
	return NoticeIncomeDeleted, nil
}

// ClearForm 清空表单与编辑状态
func (v *IncomeView) ClearForm() {
	v.state.Form = Form{}
	v.state.Selected = nil
}

// AddNote 新增备注，内容去除首尾空白；空内容直接忽略并返回 nil
func (v *IncomeView) AddNote(text string) (*models.Note, error) {
	content := strings.TrimSpace(text)
	if content == "" {
		return nil, nil
	}
	note := models.Note{
		UserID:  v.session.LoggedInUserID(),
		Content: content,
	}
	if err := v.stores.Notes.AddNote(&note); err != nil {
		return nil, err
	}
	v.state.Notes = append(v.state.Notes, note)
	return &note, nil
}

// DeleteNote 删除指定备注，只移除 ID 匹配的那一条
func (v *IncomeView) DeleteNote(id uint) error {
	idx := -1
	for i, n := range v.state.Notes {
		if n.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("delete note %d: %w", id, ErrNoteNotFound)
	}
	if err := v.stores.Notes.DeleteNoteByID(id); err != nil {
		return err
	}
	v.state.Notes = append(v.state.Notes[:idx:idx], v.state.Notes[idx+1:]...)
	return nil
}
