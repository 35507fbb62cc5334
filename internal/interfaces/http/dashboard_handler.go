package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/jhoicas/stockmaster-api/internal/application/analytics"
)

// DashboardHandler maneja los endpoints del dashboard y los reportes.
type DashboardHandler struct {
	uc      *appanalytics.DashboardUseCase
	reports *appanalytics.ReportUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase, reports *appanalytics.ReportUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc, reports: reports}
}

// KPIs devuelve los totales del dashboard y los productos bajo reorden.
// GET /api/dashboard/kpis
//
// Respuesta: KPIResponse (totalProducts, totalStock, pendingReceipts, pendingDeliveries,
// failedOperations, lowStockProducts). Puede venir de caché por unos segundos.
func (h *DashboardHandler) KPIs(c *fiber.Ctx) error {
	out, err := h.uc.KPIs(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Charts devuelve entradas/salidas de los últimos 7 días y productos por categoría.
// GET /api/dashboard/charts
func (h *DashboardHandler) Charts(c *fiber.Ctx) error {
	out, err := h.uc.Charts(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// StockReport godoc
// @Summary      Reporte de existencias en PDF
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {file}  binary
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/reports/stock.pdf [get]
func (h *DashboardHandler) StockReport(c *fiber.Ctx) error {
	pdf, err := h.reports.StockReportPDF(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`inline; filename="stock-%s.pdf"`, time.Now().UTC().Format("20060102")))
	return c.Send(pdf)
}
