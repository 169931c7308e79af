package server

import (
	"net/http"

	ratingdomain "github.com/cinetrack/cinetrack/internal/rating/domain"
	"github.com/gin-gonic/gin"
)

type createRatingRequest struct {
	UserID  string  `json:"userId"`
	MovieID string  `json:"movieId"`
	Value   float64 `json:"value"`
	Review  *string `json:"review"`
}

type rateMovieRequest struct {
	Value  float64 `json:"value"`
	Review *string `json:"review"`
}

type updateRatingRequest struct {
	Value  *float64 `json:"value"`
	Review *string  `json:"review"`
}

func (s *Server) CreateRating(c *gin.Context) {
	var req createRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	rating, err := s.ratingSvc.Create(c.Request.Context(), ratingdomain.CreateRatingRequest{
		UserID:  req.UserID,
		MovieID: req.MovieID,
		Value:   req.Value,
		Review:  req.Review,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": rating})
}

// RateMovie upserts: rating the same movie again replaces the previous
// value instead of conflicting.
func (s *Server) RateMovie(c *gin.Context) {
	var req rateMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	rating, err := s.ratingSvc.Rate(c.Request.Context(), ratingdomain.RateRequest{
		UserID:  c.Param("userId"),
		MovieID: c.Param("movieId"),
		Value:   req.Value,
		Review:  req.Review,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rating})
}

func (s *Server) GetRatingByID(c *gin.Context) {
	rating, err := s.ratingSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rating})
}

func (s *Server) GetRatingByUserAndMovie(c *gin.Context) {
	rating, err := s.ratingSvc.GetByUserAndMovie(c.Request.Context(), c.Param("userId"), c.Param("movieId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rating})
}

func (s *Server) ListRatingsByUser(c *gin.Context) {
	ratings, err := s.ratingSvc.ListByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ratings})
}

func (s *Server) ListRatingsByMovie(c *gin.Context) {
	ratings, err := s.ratingSvc.ListByMovie(c.Request.Context(), c.Param("movieId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ratings})
}

func (s *Server) UpdateRating(c *gin.Context) {
	var req updateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	rating, err := s.ratingSvc.Update(c.Request.Context(), ratingdomain.UpdateRatingRequest{
		ID:     c.Param("id"),
		Value:  req.Value,
		Review: req.Review,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rating})
}

func (s *Server) DeleteRating(c *gin.Context) {
	if err := s.ratingSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
