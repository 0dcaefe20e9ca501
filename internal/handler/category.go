package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tickethub/helpdesk-api/internal/apierr"
	"github.com/tickethub/helpdesk-api/internal/model"
	"github.com/tickethub/helpdesk-api/internal/repository"
)

// CategoryHandler serves the owner-scoped category endpoints. Every
// operation stamps or filters on the caller's identity; a category id
// belonging to another user behaves exactly like a missing one.
type CategoryHandler struct {
	Categories *repository.CategoryRepo
}

func NewCategoryHandler(r *repository.CategoryRepo) *CategoryHandler {
	return &CategoryHandler{Categories: r}
}

type categoryReq struct {
	Title string `json:"title"`
}

// Create handles POST /categories.
func (h *CategoryHandler) Create(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req categoryReq
	if err := c.Bind(&req); err != nil {
		return apierr.NewValidation(map[string]string{"details": "Invalid request body"})
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return apierr.NewValidation(map[string]string{"title": "Title field is required"})
	}

	cat := &model.Category{Title: title, CreatedBy: user.ID}
	if err := h.Categories.Create(c.Request().Context(), cat); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cat)
}

// List handles GET /categories with ?page and ?limit.
func (h *CategoryHandler) List(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	p := parsePage(c)
	ctx := c.Request().Context()

	total, err := h.Categories.CountByOwner(ctx, user.ID)
	if err != nil {
		return err
	}
	items, err := h.Categories.ListByOwner(ctx, user.ID, p.Limit, p.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, paginate(c, total, p, items))
}

// Get handles GET /categories/:id.
func (h *CategoryHandler) Get(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	cat, err := h.Categories.GetByIDAndOwner(c.Request().Context(), c.Param("id"), user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return &apierr.NotFound{Message: "Category not found"}
		}
		return err
	}
	return c.JSON(http.StatusOK, cat)
}

// Update handles PUT /categories/:id.
func (h *CategoryHandler) Update(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req categoryReq
	if err := c.Bind(&req); err != nil {
		return apierr.NewValidation(map[string]string{"details": "Invalid request body"})
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return apierr.NewValidation(map[string]string{"title": "Title field is required"})
	}

	ctx := c.Request().Context()
	if err := h.Categories.UpdateTitle(ctx, c.Param("id"), user.ID, title); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return &apierr.NotFound{Message: "Category not found"}
		}
		return err
	}
	cat, err := h.Categories.GetByIDAndOwner(ctx, c.Param("id"), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cat)
}

// Delete handles DELETE /categories/:id.
func (h *CategoryHandler) Delete(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.Categories.DeleteByIDAndOwner(c.Request().Context(), c.Param("id"), user.ID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return &apierr.NotFound{Message: "Category not found"}
		}
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "deleted"})
}
