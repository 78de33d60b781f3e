package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/martijn/serverlist/internal/api/dto"
	"github.com/martijn/serverlist/internal/api/middleware"
	"github.com/martijn/serverlist/internal/core/service"
)

type ServerHandler struct {
	serverService *service.ServerService
}

func NewServerHandler(serverService *service.ServerService) *ServerHandler {
	return &ServerHandler{
		serverService: serverService,
	}
}

// ListServers handles GET /api/servers/select
func (h *ServerHandler) ListServers(c *gin.Context) {
	params := c.Request.URL.Query()
	policy := h.serverService.Pagination()

	list, err := h.serverService.ListServers(
		c.Request.Context(),
		service.ParseFilterRequest(params),
		middleware.GetAuthContext(c),
		policy.PageRequest(params),
	)
	if err != nil {
		writeError(c, err)
		return
	}

	if list.Page == nil {
		c.JSON(http.StatusOK, dto.NewServerResponses(list.Items))
		return
	}

	page := list.Page
	response := dto.ServerListResponse{
		Count:   page.Count,
		Results: dto.NewServerResponses(page.Items),
	}
	if page.HasNext() {
		link := pageLink(c.Request, policy.PageQueryParam, page.Number+1)
		response.Next = &link
	}
	if page.HasPrevious() {
		link := pageLink(c.Request, policy.PageQueryParam, page.Number-1)
		response.Previous = &link
	}

	c.JSON(http.StatusOK, response)
}

// pageLink rebuilds the absolute request URL pointing at another page. The
// first page is addressed without a page parameter.
func pageLink(r *http.Request, param string, number int) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	} else if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	link := url.URL{
		Scheme: scheme,
		Host:   r.Host,
		Path:   r.URL.Path,
	}

	query := r.URL.Query()
	if number <= 1 {
		query.Del(param)
	} else {
		query.Set(param, strconv.Itoa(number))
	}
	link.RawQuery = query.Encode()

	return link.String()
}

// writeError maps service errors to their status, anything else to a 500
func writeError(c *gin.Context, err error) {
	var svcErr *service.ServiceError
	if errors.As(err, &svcErr) {
		c.JSON(svcErr.Code, dto.ErrorResponse{
			Error:   http.StatusText(svcErr.Code),
			Message: svcErr.Message,
			Code:    svcErr.Code,
		})
		return
	}

	// The cause goes to the log, never to the caller
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error:   "Internal Server Error",
		Message: "An unexpected error occurred",
		Code:    http.StatusInternalServerError,
	})
}
