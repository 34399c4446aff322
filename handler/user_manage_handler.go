package handler

import (
	"net/http"
	"strconv"

	"github.com/baotran/ragchat-be/service"
	"github.com/baotran/ragchat-be/types"

	"github.com/gin-gonic/gin"
)

type UserManageHandler struct {
	userService service.UserService
}

func NewUserManageHandler(userService service.UserService) *UserManageHandler {
	return &UserManageHandler{
		userService: userService,
	}
}

func (h *UserManageHandler) CreateUser(c *gin.Context) {
	var req types.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "invalid request body",
		})
		return
	}
	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "username and password are required",
		})
		return
	}

	user := &types.User{
		Username:   req.Username,
		Password:   req.Password,
		FullName:   req.FullName,
		Role:       req.Role,
		Department: req.Department,
	}
	if err := h.userService.CreateUser(c.Request.Context(), user); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}
	user.Password = ""
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   user,
	})
}

func (h *UserManageHandler) BatchCreateUser(c *gin.Context) {
	var req types.BatchCreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Users) == 0 {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "invalid request body",
		})
		return
	}

	users := make([]*types.User, 0, len(req.Users))
	for _, u := range req.Users {
		users = append(users, &types.User{
			Username:   u.Username,
			Password:   u.Password,
			FullName:   u.FullName,
			Role:       u.Role,
			Department: u.Department,
		})
	}
	if err := h.userService.BatchCreateUser(c.Request.Context(), users); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status:  "success",
		Message: "users created",
	})
}

func (h *UserManageHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, types.DataResponse{
			Status:  "error",
			Message: "user not found",
		})
		return
	}
	user.Password = ""
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   user,
	})
}

func (h *UserManageHandler) UpdateUser(c *gin.Context) {
	var req types.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "invalid request body",
		})
		return
	}

	user := &types.User{
		Username:   req.Username,
		Password:   req.Password,
		FullName:   req.FullName,
		Role:       req.Role,
		Department: req.Department,
	}
	if err := h.userService.UpdateUser(c.Request.Context(), req.ID, user); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status:  "success",
		Message: "user updated",
	})
}

func (h *UserManageHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: "failed to delete user",
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status:  "success",
		Message: "user deleted",
	})
}

func (h *UserManageHandler) PaginateUser(c *gin.Context) {
	page, err := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
	if err != nil || limit < 1 {
		limit = 20
	}

	users, total, err := h.userService.PaginateUser(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: "failed to list users",
		})
		return
	}
	for _, u := range users {
		u.Password = ""
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data: gin.H{
			"users": users,
			"total": total,
		},
	})
}
