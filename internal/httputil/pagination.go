package httputil

import (
	"github.com/gin-gonic/gin"
	validation "github.com/jellydator/validation"
)

// Pagination bounds for list endpoints.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Page is an offset/limit window parsed from the query string.
type Page struct {
	Offset int `form:"offset" json:"offset"`
	Limit  int `form:"limit"  json:"limit"`
}

// Validate checks the window against the pagination bounds.
func (p *Page) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.Offset, validation.Min(0)),
		validation.Field(&p.Limit, validation.Required, validation.Min(1), validation.Max(MaxPageLimit)),
	)
}

// ParsePagination reads ?offset=&limit= with defaults of 0 and DefaultPageLimit. Non-numeric or
// out-of-range values are returned as validation errors.
func ParsePagination(c *gin.Context) (offset, limit int, err error) {
	page := Page{Limit: DefaultPageLimit}
	if err := c.ShouldBindQuery(&page); err != nil {
		return 0, 0, validation.Errors{"query": validation.NewError("invalid_pagination",
			"offset and limit must be integers")}
	}
	if err := page.Validate(); err != nil {
		return 0, 0, err
	}
	return page.Offset, page.Limit, nil
}
