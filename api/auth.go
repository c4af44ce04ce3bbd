package api

import (
	"strings"
	"time"

	"incometracker/config"
	"incometracker/database"
	"incometracker/middleware"
	"incometracker/models"
	"incometracker/service"
	"incometracker/view"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	cfg      *config.Config
	sessions *view.Registry
}

// NewAuthHandler 创建认证处理器；登录成功后丢弃该用户缓存的页面状态
func NewAuthHandler(cfg *config.Config, sessions *view.Registry) *AuthHandler {
	return &AuthHandler{cfg: cfg, sessions: sessions}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50" example:"alice"`
	Password string `json:"password" binding:"required,min=6,max=50" example:"password123"`
	Email    string `json:"email" binding:"omitempty,email" example:"alice@example.com"`
}

// LoginRequest 登录请求（用户名或邮箱）
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"alice"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token    string      `json:"token"`
	UserInfo models.User `json:"user_info"`
}

// Register 用户注册
// @Summary 用户注册
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "注册信息"
// @Success 200 {object} Response{data=models.User}
// @Failure 400 {object} Response
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid parameters: "+err.Error())
		return
	}
	users := service.NewUserService(database.DB)

	exists, err := users.UsernameExists(req.Username)
	if err != nil {
		InternalError(c, config.SafeErrorMessage(err, "registration failed"))
		return
	}
	if exists {
		BadRequest(c, "Username already exists")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		InternalError(c, "hash password failed")
		return
	}

	user := models.User{
		Username: req.Username,
		Password: string(hashed),
		Email:    strings.TrimSpace(req.Email),
	}
	if err := users.CreateUser(&user); err != nil {
		InternalError(c, config.SafeErrorMessage(err, "registration failed"))
		return
	}

	SuccessWithMessage(c, "Registration successful", user)
}

// Login 用户登录
// @Summary 用户登录，获取 JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "登录信息"
// @Success 200 {object} Response{data=LoginResponse}
// @Failure 401 {object} Response
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid parameters: "+err.Error())
		return
	}

	user, err := service.NewUserService(database.DB).FindByLogin(req.Username)
	if err != nil {
		Unauthorized(c, "Invalid username or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		Unauthorized(c, "Invalid username or password")
		return
	}

	expire := h.cfg.JWT.ExpireTime
	if expire <= 0 {
		expire = 24 * time.Hour
	}
	token, err := middleware.GenerateToken(user.ID, user.Username, expire)
	if err != nil {
		InternalError(c, "generate token failed")
		return
	}

	// 新会话从数据库重新加载页面
	h.sessions.Forget(user.ID)

	SuccessWithMessage(c, "Login successful", LoginResponse{Token: token, UserInfo: *user})
}

// GetProfile 当前用户信息
// @Summary 当前用户信息
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.User}
// @Router /api/v1/auth/profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, err := service.NewUserService(database.DB).FindUserByID(middleware.GetCurrentUserID(c))
	if err != nil {
		respondUserLookupError(c, err)
		return
	}
	Success(c, user)
}
