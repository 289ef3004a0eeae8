package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/slot-booking/internal/httpresp"
	ucBooking "github.com/BruksfildServices01/slot-booking/internal/usecase/booking"
)

type SlotHandler struct {
	listSlots *ucBooking.ListSlots
	log       *zap.Logger
}

func NewSlotHandler(listSlots *ucBooking.ListSlots, log *zap.Logger) *SlotHandler {
	return &SlotHandler{listSlots: listSlots, log: log}
}

// GET /slots?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *SlotHandler) List(c *gin.Context) {
	out, err := h.listSlots.Execute(c.Request.Context(), ucBooking.ListSlotsInput{
		From: c.Query("from"),
		To:   c.Query("to"),
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.OK(c, out)
}
