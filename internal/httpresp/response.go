package httpresp

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PageResponse is the paginated listing envelope.
type PageResponse[T any] struct {
	Items []T   `json:"items"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// Pagination describes one page of a listing whose items sit under their own key.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	return Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: Pages(total, limit),
	}
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

func Page[T any](c *gin.Context, items []T, page, limit int, total int64) {
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, PageResponse[T]{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: Pages(total, limit),
	})
}

// Pages is ceil(total/limit).
func Pages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
