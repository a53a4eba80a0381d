package user

import (
	"errors"
	"net/http"

	"product_api/internal/apperror"
	"product_api/internal/binding"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	userService UserServiceInterface
}

func NewUserController(userService UserServiceInterface) *UserController {
	return &UserController{
		userService: userService,
	}
}

// RegisterRoutes mounts the /users CRUD routes and /auth/login.
func (uc *UserController) RegisterRoutes(r gin.IRouter) {
	users := r.Group("/users")
	{
		users.GET("", uc.ListUsers)
		users.GET("/:id", uc.GetUser)
		users.POST("", uc.CreateUser)
		users.PUT("/:id", uc.UpdateUser)
		users.DELETE("/:id", uc.DeleteUser)
	}

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", uc.Login)
	}
}

func (uc *UserController) ListUsers(c *gin.Context) {
	users, err := uc.userService.ListUsers(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, users)
}

func (uc *UserController) GetUser(c *gin.Context) {
	u, err := uc.userService.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		uc.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, u)
}

func (uc *UserController) CreateUser(c *gin.Context) {
	raw, err := binding.JSONObject(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	u, err := uc.userService.CreateUser(c.Request.Context(), ParseCreateInput(raw))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, u)
}

func (uc *UserController) UpdateUser(c *gin.Context) {
	raw, err := binding.JSONObject(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	u, err := uc.userService.UpdateUser(c.Request.Context(), c.Param("id"), ParseUpdateInput(raw))
	if err != nil {
		uc.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, u)
}

func (uc *UserController) DeleteUser(c *gin.Context) {
	if err := uc.userService.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		uc.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// Login handles user login and returns a bearer token
func (uc *UserController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperror.BadRequest(err))
		return
	}

	token, err := uc.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (uc *UserController) handleError(c *gin.Context, err error) {
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	_ = c.Error(err)
}
