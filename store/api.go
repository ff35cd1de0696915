package store

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ArticleAPIServer serves stored articles over HTTP.
type ArticleAPIServer struct {
	store *ArticleStore
}

// NewArticleAPIServer creates a new article API server.
func NewArticleAPIServer(store *ArticleStore) *ArticleAPIServer {
	return &ArticleAPIServer{
		store: store,
	}
}

// SetupRouter configures the Gin router with all article API routes.
func (s *ArticleAPIServer) SetupRouter() *gin.Engine {
	router := gin.Default()

	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	api := router.Group("/api/articles")
	api.POST("/import/batch", s.HandleImportBatch)
	api.GET("", s.HandleListArticles)
	api.POST("", s.HandleCreateArticle)
	api.GET("/:id", s.HandleGetArticle)
	api.PUT("/:id", s.HandleUpdateArticle)
	api.DELETE("/:id", s.HandleDeleteArticle)

	return router
}

// ImportBatchRequest represents the request for POST
// /api/articles/import/batch.
type ImportBatchRequest struct {
	Articles []ArticleInput `json:"articles" binding:"required"`
}

// ImportBatchResponse represents the response for POST
// /api/articles/import/batch.
type ImportBatchResponse struct {
	Message string `json:"message"`
	*ImportResult
}

// errorResponse creates a standardized error response.
func errorResponse(code, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

// handleError maps domain errors to HTTP responses.
func (s *ArticleAPIServer) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrArticleNotFound):
		c.JSON(http.StatusNotFound, errorResponse("not_found", err.Error()))
	case errors.Is(err, ErrDuplicateSlug):
		c.JSON(http.StatusConflict, errorResponse("conflict", err.Error()))
	case errors.Is(err, ErrInvalidArticle):
		c.JSON(http.StatusUnprocessableEntity, errorResponse("validation_error", err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, errorResponse("internal_error", "Failed to process request"))
	}
}

// parseID reads the :id path parameter, writing a 400 response if it is not
// a UUID.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	articleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("bad_request", "Invalid article ID"))
		return uuid.Nil, false
	}
	return articleID, true
}

// HandleImportBatch handles POST /api/articles/import/batch. The whole batch
// is validated up front; after that, items are imported independently.
func (s *ArticleAPIServer) HandleImportBatch(c *gin.Context) {
	var req ImportBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("bad_request", err.Error()))
		return
	}

	for _, input := range req.Articles {
		if err := input.Validate(); err != nil {
			s.handleError(c, err)
			return
		}
	}

	result := s.store.ImportBatch(req.Articles)

	c.JSON(http.StatusCreated, ImportBatchResponse{
		Message:      "Batch import completed",
		ImportResult: result,
	})
}

// HandleListArticles handles GET /api/articles.
func (s *ArticleAPIServer) HandleListArticles(c *gin.Context) {
	articles, err := s.store.ListArticles()
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, articles)
}

// HandleCreateArticle handles POST /api/articles.
func (s *ArticleAPIServer) HandleCreateArticle(c *gin.Context) {
	var input ArticleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("bad_request", err.Error()))
		return
	}

	article, err := s.store.CreateArticle(input)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, article)
}

// HandleGetArticle handles GET /api/articles/{id}.
func (s *ArticleAPIServer) HandleGetArticle(c *gin.Context) {
	articleID, ok := parseID(c)
	if !ok {
		return
	}

	article, err := s.store.GetArticle(articleID)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, article)
}

// HandleUpdateArticle handles PUT /api/articles/{id}.
func (s *ArticleAPIServer) HandleUpdateArticle(c *gin.Context) {
	articleID, ok := parseID(c)
	if !ok {
		return
	}

	var update ArticleUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("bad_request", err.Error()))
		return
	}

	article, err := s.store.UpdateArticle(articleID, update)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, article)
}

// HandleDeleteArticle handles DELETE /api/articles/{id}.
func (s *ArticleAPIServer) HandleDeleteArticle(c *gin.Context) {
	articleID, ok := parseID(c)
	if !ok {
		return
	}

	if err := s.store.DeleteArticle(articleID); err != nil {
		s.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
