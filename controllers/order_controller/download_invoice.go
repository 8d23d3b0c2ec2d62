package order_controller

import (
	"fmt"
	"net/http"

	"github.com/Modeva-Ecommerce/modeva-commerce-backend/config"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/logger"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/models"
	"github.com/Modeva-Ecommerce/modeva-commerce-backend/services"
	"github.com/gin-gonic/gin"
)

type Controller struct {
	invoices *services.InvoiceService
	log      *logger.Logger
}

func New(invoices *services.InvoiceService, log *logger.Logger) *Controller {
	return &Controller{invoices: invoices, log: log.Named("order")}
}

// DownloadInvoice godoc
// @Summary Download order invoice PDF
// @Description Generate and download an invoice PDF for the order
// @Tags Orders
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 "PDF file"
// @Failure 404 {object} models.ApiResponse "Order not found"
// @Failure 422 {object} models.ApiResponse "Invalid order ID"
// @Failure 500 {object} models.ApiResponse "Server error"
// @Router /api/v1/admin/order/{id}/invoice [get]
func (oc *Controller) DownloadInvoice(c *gin.Context) {
	orderID := c.Param("id")

	ctx, cancel := config.WithRequestTimeout(c.Request.Context())
	defer cancel()

	inv, err := oc.invoices.Build(ctx, orderID)
	if err != nil {
		models.RespondError(c, err)
		return
	}
	pdf, err := oc.invoices.Render(inv)
	if err != nil {
		models.RespondError(c, err)
		return
	}

	name := inv.OrderNo
	if name == "" {
		name = orderID
	}
	oc.log.Infow("[order.download-invoice] invoice generated", "order", orderID, "bytes", len(pdf))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="invoice-%s.pdf"`, name))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
