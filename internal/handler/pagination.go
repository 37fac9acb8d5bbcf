package handler

import (
	"strconv"

	"github.com/Baaaki/yamdb/internal/repository"
	"github.com/gin-gonic/gin"
)

// pageFromQuery reads ?page= and ?page_size=; bad values fall back to defaults.
func pageFromQuery(c *gin.Context) repository.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(repository.DefaultPageSize)))
	return repository.Page{Number: page, Size: size}.Normalize()
}

type listResponse struct {
	Count    int64       `json:"count"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Results  interface{} `json:"results"`
}

func newListResponse(page repository.Page, total int64, results interface{}) listResponse {
	return listResponse{
		Count:    total,
		Page:     page.Number,
		PageSize: page.Size,
		Results:  results,
	}
}

// idParam parses a positive numeric path parameter.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
