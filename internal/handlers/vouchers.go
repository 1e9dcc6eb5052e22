package handlers

import (
	"net/http"

	"cleo_backend/internal/pagination"
	"cleo_backend/internal/service"

	"github.com/gin-gonic/gin"
)

// voucherRequest is the body of POST /api/v1/member-vouchers.
type voucherRequest struct {
	MemberName  string  `json:"member_name" binding:"required"`
	VoucherName string  `json:"voucher_name" binding:"required"`
	Balance     float64 `json:"balance" binding:"gte=0"`
}

// @Summary      Create member voucher
// @Tags         vouchers
// @Accept       json
// @Produce      json
// @Param        body  body      voucherRequest  true  "Voucher"
// @Success      201   {object}  models.MemberVoucher
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/member-vouchers [post]
// @Security     BearerAuth
func (h *Handler) createVoucher(c *gin.Context) {
	var req voucherRequest
	if ok := h.bindJSONOrBadRequest(c, &req); !ok {
		return
	}
	v, err := h.services.Vouchers.Create(c.Request.Context(), service.VoucherParams{
		MemberName:  req.MemberName,
		VoucherName: req.VoucherName,
		Balance:     req.Balance,
	})
	if err != nil {
		h.respondError(c, "voucher_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

// @Summary      List member vouchers
// @Description  page selects offset paging and wins over cursors. after/before are opaque cursors; invalid ones are ignored.
// @Tags         vouchers
// @Produce      json
// @Param        limit       query  int     false  "Page size 1-100"  default(10)
// @Param        page        query  int     false  "Page number (offset mode)"
// @Param        after       query  string  false  "Cursor: rows after this one"
// @Param        before      query  string  false  "Cursor: rows before this one"
// @Param        searchTerm  query  string  false  "Member or voucher name filter"
// @Success      200  {object}  models.MemberVoucherPage
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/member-vouchers [get]
// @Security     BearerAuth
func (h *Handler) listVouchers(c *gin.Context) {
	page, err := h.services.Vouchers.List(c.Request.Context(), service.VoucherListParams{
		Page: pagination.RawParams{
			Limit:  c.Query("limit"),
			Page:   c.Query("page"),
			After:  c.Query("after"),
			Before: c.Query("before"),
		},
		Search: c.Query("searchTerm"),
	})
	if err != nil {
		h.respondError(c, "voucher_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, page)
}
