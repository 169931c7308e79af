package server

import (
	"net/http"
	"strings"

	userdomain "github.com/cinetrack/cinetrack/internal/user/domain"
	"github.com/cinetrack/cinetrack/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

type updateUserRequest struct {
	Name *string `json:"name"`
}

func (s *Server) CreateUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	user, err := s.userSvc.Register(c.Request.Context(), userdomain.RegisterUserRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": user})
}

func (s *Server) ListUsers(c *gin.Context) {
	var page pagination.Page
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.userSvc.List(c.Request.Context(), userdomain.ListUsersRequest{Page: page})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetUserByID(c *gin.Context) {
	user, err := s.userSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": user})
}

func (s *Server) UpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	user, err := s.userSvc.Update(c.Request.Context(), userdomain.UpdateUserRequest{
		ID:   c.Param("id"),
		Name: req.Name,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": user})
}

func (s *Server) DeleteUser(c *gin.Context) {
	if err := s.userSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// UserExists answers peer existence probes: 200 when the user exists, 404
// when it does not. The status code is the contract; the body is a courtesy.
func (s *Server) UserExists(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	exists, err := s.userSvc.Exists(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"exists": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"exists": true})
}

func (s *Server) GetUserRatingProfile(c *gin.Context) {
	profile, err := s.userSvc.RatingProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profile})
}
