package books

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"bookhub/pkg/models"
)

type Handler struct {
	Service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)                    // GET /books?page=N
	rg.GET("/tags", h.tags)               // GET /books/tags
	rg.GET("/litrpg", h.litrpg)           // GET /books/litrpg
	rg.GET("/trending", h.trending)       // GET /books/trending?limit=N
	rg.GET("/search", h.search)           // GET /books/search
	rg.GET("/author/:name", h.byAuthor)   // GET /books/author/:name
	rg.GET("/:id", h.getByID)             // GET /books/:id
	rg.GET("/:id/similar", h.similar)     // GET /books/:id/similar?limit=N
	rg.GET("/:id/history", h.history)     // GET /books/:id/history
}

func (h *Handler) list(c *gin.Context) {
	page := parseInt(c.Query("page"), 1)

	items, totalPages, err := h.Service.ListPage(c.Request.Context(), page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"books":       items,
		"totalPages":  totalPages,
		"currentPage": page,
	})
}

func (h *Handler) tags(c *gin.Context) {
	c.JSON(http.StatusOK, models.CanonicalTags)
}

func (h *Handler) litrpg(c *gin.Context) {
	items, err := h.Service.LitRPG(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "litrpg query failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) trending(c *gin.Context) {
	limit := parseInt(c.Query("limit"), 10)

	items, err := h.Service.Trending(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "trending query failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) search(c *gin.Context) {
	params := models.BookSearchParams{
		MinRating:     parseFloat(c.Query("minRating"), 0),
		MinPages:      parseInt(c.Query("minPages"), 0),
		OnlyCompleted: c.Query("onlyCompleted") == "true",
		SortBy:        c.Query("sortBy"),
		Limit:         parseInt(c.Query("limit"), 0),
		Offset:        parseInt(c.Query("offset"), 0),
	}

	// tags=LitRPG,Fantasy OR tags=LitRPG&tags=Fantasy
	tags := c.QueryArray("tags")
	if len(tags) == 1 && strings.Contains(tags[0], ",") {
		tags = strings.Split(tags[0], ",")
	}
	params.Tags = tags

	items, err := h.Service.Search(c.Request.Context(), params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) getByID(c *gin.Context) {
	b, err := h.Service.GetBook(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) similar(c *gin.Context) {
	limit := parseInt(c.Query("limit"), 10)

	items, err := h.Service.SimilarBooks(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "similar query failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) byAuthor(c *gin.Context) {
	items, err := h.Service.AuthorBooks(c.Request.Context(), c.Param("name"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "author query failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) history(c *gin.Context) {
	items, err := h.Service.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history query failed"})
		return
	}
	c.JSON(http.StatusOK, items)
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func parseFloat(s string, def float64) float64 {
	if strings.TrimSpace(s) == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}
