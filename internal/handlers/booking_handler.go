package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/slot-booking/internal/dto"
	"github.com/BruksfildServices01/slot-booking/internal/httperr"
	"github.com/BruksfildServices01/slot-booking/internal/httpresp"
	"github.com/BruksfildServices01/slot-booking/internal/middleware"
	ucBooking "github.com/BruksfildServices01/slot-booking/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	bookSlot        *ucBooking.BookSlot
	setStatus       *ucBooking.SetStatus
	listMyBookings  *ucBooking.ListMyBookings
	listAllBookings *ucBooking.ListAllBookings
	getBooking      *ucBooking.GetBooking
	loc             *time.Location
	log             *zap.Logger
}

func NewBookingHandler(
	bookSlot *ucBooking.BookSlot,
	setStatus *ucBooking.SetStatus,
	listMyBookings *ucBooking.ListMyBookings,
	listAllBookings *ucBooking.ListAllBookings,
	getBooking *ucBooking.GetBooking,
	loc *time.Location,
	log *zap.Logger,
) *BookingHandler {
	return &BookingHandler{
		bookSlot:        bookSlot,
		setStatus:       setStatus,
		listMyBookings:  listMyBookings,
		listAllBookings: listAllBookings,
		getBooking:      getBooking,
		loc:             loc,
		log:             log,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type BookRequest struct {
	StartAt string `json:"startAt"`
	EndAt   string `json:"endAt"`
	Notes   string `json:"notes"`
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

type BookingResponse struct {
	Booking dto.BookingView `json:"booking"`
}

type BookingListResponse struct {
	Bookings []dto.BookingView `json:"bookings"`
	Total    int               `json:"total"`
}

type BookingPageResponse struct {
	Bookings   []dto.BookingView   `json:"bookings"`
	Pagination httpresp.Pagination `json:"pagination"`
}

// ======================================================
// POST /book
// ======================================================

func (h *BookingHandler) Book(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	b, err := h.bookSlot.Execute(c.Request.Context(), ucBooking.BookSlotInput{
		UserID:  user.ID,
		StartAt: req.StartAt,
		EndAt:   req.EndAt,
		Notes:   req.Notes,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.Created(c, BookingResponse{Booking: dto.NewBookingView(b, h.loc)})
}

// ======================================================
// GET /my-bookings
// ======================================================

func (h *BookingHandler) MyBookings(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	list, err := h.listMyBookings.Execute(c.Request.Context(), user.ID)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	views := dto.NewBookingViews(list, h.loc)
	httpresp.OK(c, BookingListResponse{Bookings: views, Total: len(views)})
}

// ======================================================
// GET /all-bookings (admin)
// ======================================================

func (h *BookingHandler) AllBookings(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	res, err := h.listAllBookings.Execute(c.Request.Context(), ucBooking.ListAllBookingsInput{
		Page:   page,
		Limit:  limit,
		Status: c.Query("status"),
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.OK(c, BookingPageResponse{
		Bookings:   dto.NewBookingViews(res.Items, h.loc),
		Pagination: httpresp.NewPagination(res.Page, res.Limit, res.Total),
	})
}

// ======================================================
// GET /bookings/:id
// ======================================================

func (h *BookingHandler) Get(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	id, ok := bookingID(c)
	if !ok {
		return
	}

	b, err := h.getBooking.Execute(c.Request.Context(), user, id)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.OK(c, BookingResponse{Booking: dto.NewBookingView(b, h.loc)})
}

// ======================================================
// PATCH /bookings/:id/status (admin)
// ======================================================

func (h *BookingHandler) SetStatus(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	id, ok := bookingID(c)
	if !ok {
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	b, err := h.setStatus.Execute(c.Request.Context(), ucBooking.SetStatusInput{
		ActorID:   user.ID,
		BookingID: id,
		Status:    req.Status,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	httpresp.OK(c, BookingResponse{Booking: dto.NewBookingView(b, h.loc)})
}

// bookingID parses :id. A malformed id cannot match any booking.
func bookingID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		httperr.NotFound(c, "booking_not_found", "Booking not found.")
		return 0, false
	}
	return uint(id), true
}
