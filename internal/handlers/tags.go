package handlers

import (
	"net/http"

	"recipebox/internal/services"

	"github.com/labstack/echo/v4"
)

type TagHandler struct {
	tagService *services.TagService
}

func NewTagHandler(tagService *services.TagService) *TagHandler {
	return &TagHandler{tagService: tagService}
}

func (h *TagHandler) List(c echo.Context) error {
	tags, err := h.tagService.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tags)
}

func (h *TagHandler) Get(c echo.Context) error {
	tagID, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}

	tag, err := h.tagService.GetByID(c.Request().Context(), tagID)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, tag)
}
