package server

import (
	"net/http"
	"strings"

	moviedomain "github.com/cinetrack/cinetrack/internal/movie/domain"
	"github.com/cinetrack/cinetrack/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

type createMovieRequest struct {
	Title           string  `json:"title"`
	Genre           string  `json:"genre"`
	ReleaseYear     int     `json:"releaseYear"`
	Description     *string `json:"description"`
	Director        *string `json:"director"`
	DurationMinutes *int    `json:"durationMinutes"`
	PosterURL       *string `json:"posterUrl"`
}

type updateMovieRequest struct {
	Title           *string `json:"title"`
	Genre           *string `json:"genre"`
	ReleaseYear     *int    `json:"releaseYear"`
	Description     *string `json:"description"`
	Director        *string `json:"director"`
	DurationMinutes *int    `json:"durationMinutes"`
	PosterURL       *string `json:"posterUrl"`
}

func (s *Server) CreateMovie(c *gin.Context) {
	var req createMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	movie, err := s.movieSvc.Create(c.Request.Context(), moviedomain.CreateMovieRequest{
		Title:           req.Title,
		Genre:           req.Genre,
		ReleaseYear:     req.ReleaseYear,
		Description:     req.Description,
		Director:        req.Director,
		DurationMinutes: req.DurationMinutes,
		PosterURL:       req.PosterURL,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": movie})
}

func (s *Server) ListMovies(c *gin.Context) {
	var page pagination.Page
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.movieSvc.List(c.Request.Context(), moviedomain.ListMoviesRequest{Page: page})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetMovieByID(c *gin.Context) {
	movie, err := s.movieSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": movie})
}

func (s *Server) UpdateMovie(c *gin.Context) {
	var req updateMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	movie, err := s.movieSvc.Update(c.Request.Context(), moviedomain.UpdateMovieRequest{
		ID:              c.Param("id"),
		Title:           req.Title,
		Genre:           req.Genre,
		ReleaseYear:     req.ReleaseYear,
		Description:     req.Description,
		Director:        req.Director,
		DurationMinutes: req.DurationMinutes,
		PosterURL:       req.PosterURL,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": movie})
}

func (s *Server) DeleteMovie(c *gin.Context) {
	if err := s.movieSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// MovieExists mirrors UserExists: status code carries the answer.
func (s *Server) MovieExists(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	exists, err := s.movieSvc.Exists(c.Request.Context(), id)
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
