package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pebecgov/pebec-app-sub000/internal/api/dto"
	"github.com/pebecgov/pebec-app-sub000/internal/domain"
	"github.com/pebecgov/pebec-app-sub000/internal/repository"
	"github.com/pebecgov/pebec-app-sub000/internal/service"
)

// ReportsHandler serves report templates and submissions.
type ReportsHandler struct {
	reports *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reports *service.ReportService) *ReportsHandler {
	return &ReportsHandler{reports: reports}
}

// CreateTemplate POST /report-templates.
func (h *ReportsHandler) CreateTemplate(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.ReportTemplateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	tpl, err := h.reports.CreateTemplate(c.UserContext(), user, req.Name, req.Description, req.Fields)
	if err != nil {
		return err
	}
	return created(c, dto.NewReportTemplateResponse(tpl))
}

// ListTemplates GET /report-templates.
func (h *ReportsHandler) ListTemplates(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	list, err := h.reports.ListTemplates(c.UserContext(), user)
	if err != nil {
		return err
	}
	return data(c, dto.NewReportTemplateResponses(list))
}

// Submit POST /reports.
func (h *ReportsHandler) Submit(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.ReportSubmitRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	report, err := h.reports.SubmitReport(c.UserContext(), user, req.TemplateID, req.Values)
	if err != nil {
		return err
	}
	return created(c, dto.NewReportResponse(report))
}

// List GET /reports?template_id=&submitted_by=&status=.
func (h *ReportsHandler) List(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	filter := repository.ReportFilter{
		TemplateID:  optionalQuery(c, "template_id"),
		SubmittedBy: optionalQuery(c, "submitted_by"),
	}
	if status := optionalQuery(c, "status"); status != nil {
		s := domain.ReportStatus(*status)
		filter.Status = &s
	}
	filter.Limit, filter.Offset = paging(c)
	list, err := h.reports.ListSubmissions(c.UserContext(), user, filter)
	if err != nil {
		return err
	}
	return data(c, dto.NewReportResponses(list))
}

// Review PATCH /reports/:id/review.
func (h *ReportsHandler) Review(c *fiber.Ctx) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.ReportReviewRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	report, err := h.reports.ReviewSubmission(c.UserContext(), user, c.Params("id"), req.Status, req.Note)
	if err != nil {
		return err
	}
	return data(c, dto.NewReportResponse(report))
}
