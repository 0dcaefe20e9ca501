package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tickethub/helpdesk-api/internal/apierr"
	"github.com/tickethub/helpdesk-api/internal/model"
	"github.com/tickethub/helpdesk-api/internal/queue"
	"github.com/tickethub/helpdesk-api/internal/repository"
	queue_publisher "github.com/tickethub/helpdesk-api/internal/service"
)

// TicketHandler serves the owner-scoped ticket endpoints. Ticket writes
// validate the category reference against the caller's own categories, so
// a ticket can never point at a category the caller cannot see.
type TicketHandler struct {
	Tickets    *repository.TicketRepo
	Categories *repository.CategoryRepo

	// publish is swapped out in tests; it defaults to the RabbitMQ publisher.
	publish func(ctx context.Context, ev queue.TicketCreatedEvent) error
}

func NewTicketHandler(t *repository.TicketRepo, cat *repository.CategoryRepo) *TicketHandler {
	return &TicketHandler{Tickets: t, Categories: cat, publish: queue_publisher.PublishTicketCreated}
}

type ticketReq struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
}

// validate normalizes the request and returns a field→message map of
// everything wrong with it.
func (r *ticketReq) validate() map[string]string {
	r.Title = strings.TrimSpace(r.Title)
	r.Category = strings.TrimSpace(r.Category)
	r.Status = strings.TrimSpace(r.Status)
	r.Priority = strings.TrimSpace(r.Priority)

	fields := map[string]string{}
	if r.Title == "" {
		fields["title"] = "Title is required"
	}
	if r.Category == "" {
		fields["category"] = "A Category is required"
	}
	switch {
	case r.Status == "":
		fields["status"] = "Status is required"
	case !model.ValidStatus(r.Status):
		fields["status"] = "Status must be one of: Todo, In Progress, In Requirements"
	}
	switch {
	case r.Priority == "":
		fields["priority"] = "Priority field is required"
	case !model.ValidPriority(r.Priority):
		fields["priority"] = "Priority must be one of: Low, Medium, High, Critical"
	}
	return fields
}

// Create handles POST /tickets.
func (h *TicketHandler) Create(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req ticketReq
	if err := c.Bind(&req); err != nil {
		return apierr.NewValidation(map[string]string{"details": "Invalid request body"})
	}
	if fields := req.validate(); len(fields) > 0 {
		return apierr.NewValidation(fields)
	}

	ctx := c.Request().Context()
	cat, err := h.Categories.GetByIDAndOwner(ctx, req.Category, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return &apierr.NotFound{Message: "Category not found"}
		}
		return err
	}

	t := &model.Ticket{
		Title:       req.Title,
		CategoryID:  cat.ID,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		CreatedBy:   user.ID,
	}
	if err := h.Tickets.Create(ctx, t); err != nil {
		return err
	}

	// Fire-and-forget event publish; failures are logged by the publisher
	// and never fail the request.
	ev := queue.TicketCreatedEvent{
		TicketID:      t.ID,
		Title:         t.Title,
		CategoryTitle: cat.Title,
		Status:        t.Status,
		Priority:      t.Priority,
		CreatedBy:     t.CreatedBy,
		CreatedAt:     t.CreatedAt.UTC().Format(time.RFC3339),
	}
	go func() {
		pctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.publish(pctx, ev)
	}()

	return c.JSON(http.StatusCreated, t)
}

// List handles GET /tickets with ?page and ?limit.
func (h *TicketHandler) List(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	p := parsePage(c)
	ctx := c.Request().Context()

	total, err := h.Tickets.CountByOwner(ctx, user.ID)
	if err != nil {
		return err
	}
	items, err := h.Tickets.ListByOwner(ctx, user.ID, p.Limit, p.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, paginate(c, total, p, items))
}

// Get handles GET /tickets/:id.
func (h *TicketHandler) Get(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	t, err := h.Tickets.GetByIDAndOwner(c.Request().Context(), c.Param("id"), user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return &apierr.NotFound{Message: "Ticket not found"}
		}
		return err
	}
	return c.JSON(http.StatusOK, t)
}

// Update handles PUT /tickets/:id with a full ticket body.
func (h *TicketHandler) Update(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req ticketReq
	if err := c.Bind(&req); err != nil {
		return apierr.NewValidation(map[string]string{"details": "Invalid request body"})
	}
	if fields := req.validate(); len(fields) > 0 {
		return apierr.NewValidation(fields)
	}

	ctx := c.Request().Context()
	if _, err := h.Categories.GetByIDAndOwner(ctx, req.Category, user.ID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return &apierr.NotFound{Message: "Category not found"}
		}
		return err
	}

	t := &model.Ticket{
		ID:          c.Param("id"),
		Title:       req.Title,
		CategoryID:  req.Category,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		CreatedBy:   user.ID,
	}
	if err := h.Tickets.Update(ctx, t); err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return &apierr.NotFound{Message: "Ticket not found"}
		}
		return err
	}
	updated, err := h.Tickets.GetByIDAndOwner(ctx, t.ID, user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /tickets/:id.
func (h *TicketHandler) Delete(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.Tickets.DeleteByIDAndOwner(c.Request().Context(), c.Param("id"), user.ID); err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return &apierr.NotFound{Message: "Ticket not found"}
		}
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"msg": "deleted"})
}
