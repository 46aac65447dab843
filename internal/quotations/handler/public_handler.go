package handler

import (
	"fmt"
	"net/http"
	"strings"

	"cotizador_backend/internal/quotations/service"
	"cotizador_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
)

// AccessCodeHeader carries the viewer's access code for protected quotations.
const AccessCodeHeader = "X-Access-Code"

// PublicHandler serves the unauthenticated viewer endpoints.
type PublicHandler struct {
	svc     *service.Service
	baseURL string
}

// NewPublicHandler creates the public quotations handler. baseURL is the
// frontend origin used to build shareable viewer links.
func NewPublicHandler(svc *service.Service, baseURL string) *PublicHandler {
	return &PublicHandler{svc: svc, baseURL: strings.TrimRight(baseURL, "/")}
}

// RegisterRoutes registers the public viewer routes
func (h *PublicHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:folio", h.GetByFolio)
	rg.GET("/:folio/qr", h.ShareQR)
}

// GetByFolio serves a quotation to the public viewer. Protected quotations
// read the code from the X-Access-Code header.
func (h *PublicHandler) GetByFolio(c *gin.Context) {
	folio := strings.TrimSpace(c.Param("folio"))
	if folio == "" {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	code := strings.TrimSpace(c.GetHeader(AccessCodeHeader))

	result, err := h.svc.GetPublicByFolio(c.Request.Context(), folio, code, c.ClientIP())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

// ShareQR renders a QR code PNG pointing at the viewer link for the folio.
// The link itself carries no secret, so the endpoint needs no code.
func (h *PublicHandler) ShareQR(c *gin.Context) {
	folio := strings.TrimSpace(c.Param("folio"))
	if folio == "" {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	shareURL := fmt.Sprintf("%s/q/%s", h.baseURL, folio)
	png, err := qrcode.Encode(shareURL, qrcode.Medium, 256)
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "failed to render QR code", nil)
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
