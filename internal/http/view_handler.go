package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/calendar"
	"github.com/example/room-booking/internal/scheduler"
)

type submissionGuard interface {
	Issue() string
	Begin(token string) (func(consumed bool), error)
}

// ViewHandler serves the server-rendered pages.
type ViewHandler struct {
	service reservationService
	guard   submissionGuard
	pages   *pageSet
	logger  *slog.Logger
}

func NewViewHandler(service reservationService, guard submissionGuard, logger *slog.Logger) (*ViewHandler, error) {
	base := defaultLogger(logger)
	pages, err := loadPages(base)
	if err != nil {
		return nil, err
	}
	return &ViewHandler{service: service, guard: guard, pages: pages, logger: base}, nil
}

func (h *ViewHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "ViewHandler", operation, attrs...)
}

type overviewPage struct {
	Title     string
	DateLabel string
	PrevDay   string
	TodayDay  string
	IsToday   bool
	NextDay   string
	Notice    string
	Error     string
	Rooms     []roomRowView
}

type roomRowView struct {
	ID        int64
	Name      string
	Meta      string
	FreeSlots int
	Slots     []slotView
}

type slotView struct {
	Label      string
	Booked     bool
	Title      string
	ReserveURL string
}

// Overview renders every room's timeline for the selected day.
func (h *ViewHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	loc := h.service.Location()

	selector := calendar.NewSelector(h.service.Now, loc)
	if value := strings.TrimSpace(r.URL.Query().Get("date")); value != "" {
		if day, err := calendar.ParseDay(value, loc); err == nil {
			selector.Set(day)
		} else {
			h.log(ctx, "Overview", "date", value).InfoContext(ctx, "ignoring malformed date")
		}
	}

	day := selector.Day()
	page := overviewPage{
		Title:     "회의실 예약",
		DateLabel: selector.Label(),
		PrevDay:   h.neighbourDay(day, (*calendar.Selector).Prev),
		TodayDay:  h.neighbourDay(day, (*calendar.Selector).Today),
		IsToday:   selector.IsToday(),
		NextDay:   h.neighbourDay(day, (*calendar.Selector).Next),
	}
	if r.URL.Query().Get("notice") == "reserved" {
		page.Notice = messageReserved
	}

	timelines, err := h.service.DayTimeline(ctx, day)
	if err != nil {
		h.log(ctx, "Overview", "day", calendar.FormatDay(day)).ErrorContext(ctx, "timeline failed", "error", err, "error_kind", application.ErrorKind(err))
		_, body := describeServiceError(err)
		page.Error = body.Message
		h.pages.render(ctx, w, http.StatusInternalServerError, "overview", page)
		return
	}

	page.Rooms = make([]roomRowView, 0, len(timelines))
	for _, timeline := range timelines {
		page.Rooms = append(page.Rooms, toRoomRowView(timeline, loc))
	}
	h.pages.render(ctx, w, http.StatusOK, "overview", page)
}

// neighbourDay applies one selector transition to a copy seeded with day.
func (h *ViewHandler) neighbourDay(day time.Time, move func(*calendar.Selector) time.Time) string {
	selector := calendar.NewSelector(h.service.Now, h.service.Location())
	selector.Set(day)
	return calendar.FormatDay(move(selector))
}

func toRoomRowView(timeline application.RoomTimeline, loc *time.Location) roomRowView {
	row := roomRowView{
		ID:        timeline.Room.ID,
		Name:      timeline.Room.Name,
		Meta:      roomMeta(timeline.Room),
		FreeSlots: scheduler.FreeSlots(timeline.Slots),
		Slots:     make([]slotView, 0, len(timeline.Slots)),
	}
	for _, slot := range timeline.Slots {
		row.Slots = append(row.Slots, toSlotView(timeline.Room.ID, slot, loc))
	}
	return row
}

func roomMeta(room application.Room) string {
	if room.HasLocation() {
		return fmt.Sprintf("%s · %d명", room.Location, room.Capacity)
	}
	return fmt.Sprintf("%d명", room.Capacity)
}

func toSlotView(roomID int64, slot scheduler.Slot, loc *time.Location) slotView {
	view := slotView{Label: fmt.Sprintf("%02d:00", slot.Hour)}
	if slot.Booked {
		view.Booked = true
		view.Title = "예약됨: " + slot.Booking.Holder
		return view
	}
	view.Title = "예약 가능"
	view.ReserveURL = reserveURL(roomID, slot.Interval, loc)
	return view
}

func reserveURL(roomID int64, interval scheduler.Interval, loc *time.Location) string {
	query := url.Values{}
	query.Set("room_id", strconv.FormatInt(roomID, 10))
	query.Set("start", interval.Start.In(loc).Format(time.RFC3339))
	query.Set("end", interval.End.In(loc).Format(time.RFC3339))
	return "/reserve?" + query.Encode()
}

type reservePage struct {
	Title     string
	RoomName  string
	TimeLabel string
	RoomID    string
	Start     string
	End       string
	Token     string
	UserName  string
	UserPhone string
	Message   string
	Errors    map[string]string
}

type reserveTarget struct {
	roomID int64
	start  time.Time
	end    time.Time
}

// parseReserveTarget reads the slot chosen on the overview. ok is false when
// any of room_id, start or end is missing or malformed.
func parseReserveTarget(get func(string) string) (target reserveTarget, ok bool) {
	roomID, err := strconv.ParseInt(strings.TrimSpace(get("room_id")), 10, 64)
	if err != nil || roomID <= 0 {
		return reserveTarget{}, false
	}
	start, err := time.Parse(time.RFC3339, strings.TrimSpace(get("start")))
	if err != nil {
		return reserveTarget{}, false
	}
	end, err := time.Parse(time.RFC3339, strings.TrimSpace(get("end")))
	if err != nil {
		return reserveTarget{}, false
	}
	return reserveTarget{roomID: roomID, start: start, end: end}, true
}

// ReserveForm renders the create form for the slot in the query string.
func (h *ViewHandler) ReserveForm(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := h.newReservePage(r.Context(), query.Get, h.guard.Issue())
	if page.Message != "" {
		h.pages.render(r.Context(), w, http.StatusBadRequest, "reserve", page)
		return
	}
	h.pages.render(r.Context(), w, http.StatusOK, "reserve", page)
}

// SubmitReservation creates the reservation and redirects to the overview of
// its day. Failures re-render the form in place.
func (h *ViewHandler) SubmitReservation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		h.log(ctx, "SubmitReservation", "error_kind", "bad_request").ErrorContext(ctx, "failed to parse form", "error", err)
		http.Error(w, errBadRequestBody.Error(), http.StatusBadRequest)
		return
	}

	token := r.PostForm.Get("form_token")
	page := h.newReservePage(ctx, r.Form.Get, token)
	page.UserName = r.PostForm.Get("user_name")
	page.UserPhone = r.PostForm.Get("user_phone")

	target, ok := parseReserveTarget(r.Form.Get)
	if !ok {
		h.pages.render(ctx, w, http.StatusBadRequest, "reserve", page)
		return
	}

	logger := h.log(ctx, "SubmitReservation", "room_id", target.roomID)

	release, err := h.guard.Begin(token)
	if err != nil {
		logger.WarnContext(ctx, "duplicate submission rejected", "error_kind", application.ErrorKind(err))
		page.Token = h.guard.Issue()
		page.Message = messageDuplicate
		h.pages.render(ctx, w, http.StatusConflict, "reserve", page)
		return
	}

	reservation, err := h.service.CreateReservation(ctx, application.CreateReservationParams{
		RoomID:    target.roomID,
		UserName:  page.UserName,
		UserPhone: page.UserPhone,
		Passcode:  r.PostForm.Get("password"),
		StartTime: target.start,
		EndTime:   target.end,
	})
	if err != nil {
		release(false)
		status, body := describeServiceError(err)
		page.Message = body.Message
		page.Errors = body.Errors
		if status == http.StatusInternalServerError {
			page.Message = messageCreateFailed
		}
		logger.WarnContext(ctx, "reservation rejected", "status", status, "error", err, "error_kind", application.ErrorKind(err))
		h.pages.render(ctx, w, status, "reserve", page)
		return
	}
	release(true)

	logger.With("reservation_id", reservation.ID).InfoContext(ctx, "reservation created")
	day := calendar.FormatDay(reservation.StartTime.In(h.service.Location()))
	http.Redirect(w, r, "/?date="+day+"&notice=reserved", http.StatusSeeOther)
}

func (h *ViewHandler) newReservePage(ctx context.Context, get func(string) string, token string) reservePage {
	page := reservePage{
		Title:  "회의실 예약",
		RoomID: get("room_id"),
		Start:  get("start"),
		End:    get("end"),
		Token:  token,
	}

	target, ok := parseReserveTarget(get)
	if !ok {
		page.Message = errInvalidReservationForm.Error()
		return page
	}
	page.TimeLabel = timeRangeLabel(target.start, target.end, h.service.Location())
	page.RoomName = h.roomName(ctx, target.roomID)
	return page
}

func (h *ViewHandler) roomName(ctx context.Context, roomID int64) string {
	rooms, err := h.service.ListRooms(ctx)
	if err != nil {
		h.log(ctx, "roomName", "room_id", roomID).WarnContext(ctx, "room lookup failed", "error", err)
		return ""
	}
	for _, room := range rooms {
		if room.ID == roomID {
			return room.Name
		}
	}
	return ""
}

// timeRangeLabel renders "M/D HH:00 ~ HH:00" in loc.
func timeRangeLabel(start, end time.Time, loc *time.Location) string {
	s, e := start.In(loc), end.In(loc)
	return fmt.Sprintf("%d/%d %02d:00 ~ %02d:00", int(s.Month()), s.Day(), s.Hour(), e.Hour())
}

type lookupPage struct {
	Title     string
	UserPhone string
	Searched  bool
	Empty     string
	Message   string
	Errors    map[string]string
	Results   []lookupResultView
}

type lookupResultView struct {
	RoomName  string
	Label     string
	Location  string
	UserName  string
	UserPhone string
}

// LookupForm renders the unsearched lookup form.
func (h *ViewHandler) LookupForm(w http.ResponseWriter, r *http.Request) {
	h.pages.render(r.Context(), w, http.StatusOK, "lookup", lookupPage{Title: "예약 조회"})
}

// SubmitLookup searches by phone and passcode and renders the matches.
func (h *ViewHandler) SubmitLookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		h.log(ctx, "SubmitLookup", "error_kind", "bad_request").ErrorContext(ctx, "failed to parse form", "error", err)
		http.Error(w, errBadRequestBody.Error(), http.StatusBadRequest)
		return
	}

	page := lookupPage{Title: "예약 조회", UserPhone: r.PostForm.Get("user_phone")}
	results, err := h.service.FindReservations(ctx, application.FindReservationsParams{
		UserPhone: page.UserPhone,
		Passcode:  r.PostForm.Get("password"),
	})
	if err != nil {
		status, body := describeServiceError(err)
		var vErr *application.ValidationError
		if !errors.As(err, &vErr) {
			page.Message = body.Message
		}
		page.Errors = body.Errors
		h.log(ctx, "SubmitLookup").WarnContext(ctx, "lookup failed", "status", status, "error", err, "error_kind", application.ErrorKind(err))
		h.pages.render(ctx, w, status, "lookup", page)
		return
	}

	page.Searched = true
	if len(results) == 0 {
		page.Empty = messageLookupEmpty
	}
	loc := h.service.Location()
	for _, result := range results {
		location := "-"
		if result.Room.HasLocation() {
			location = result.Room.Location
		}
		page.Results = append(page.Results, lookupResultView{
			RoomName:  result.Room.Name,
			Label:     timeRangeLabel(result.StartTime, result.EndTime, loc),
			Location:  location,
			UserName:  result.UserName,
			UserPhone: result.UserPhone,
		})
	}
	h.pages.render(ctx, w, http.StatusOK, "lookup", page)
}
