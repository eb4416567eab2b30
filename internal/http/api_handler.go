package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/calendar"
	"github.com/example/room-booking/internal/scheduler"
)

type reservationService interface {
	ListRooms(ctx context.Context) ([]application.Room, error)
	ListReservationsForDay(ctx context.Context, day time.Time) ([]application.Reservation, error)
	CreateReservation(ctx context.Context, params application.CreateReservationParams) (application.Reservation, error)
	FindReservations(ctx context.Context, params application.FindReservationsParams) ([]application.ReservationLookup, error)
	DayTimeline(ctx context.Context, day time.Time) ([]application.RoomTimeline, error)
	RoomTimeline(ctx context.Context, roomID int64, day time.Time) (application.RoomTimeline, error)
	Location() *time.Location
	Now() time.Time
}

// APIHandler serves the JSON API.
type APIHandler struct {
	service   reservationService
	responder responder
	logger    *slog.Logger
}

func NewAPIHandler(service reservationService, logger *slog.Logger) *APIHandler {
	base := defaultLogger(logger)
	return &APIHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *APIHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "APIHandler", operation, attrs...)
}

func (h *APIHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.service.ListRooms(r.Context())
	if err != nil {
		h.log(r.Context(), "ListRooms").ErrorContext(r.Context(), "room listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	resp := roomListResponse{Rooms: make([]roomDTO, 0, len(rooms))}
	for _, room := range rooms {
		resp.Rooms = append(resp.Rooms, toRoomDTO(room))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (h *APIHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	day, err := selectedDay(r, h.service)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	reservations, err := h.service.ListReservationsForDay(r.Context(), day)
	if err != nil {
		h.log(r.Context(), "ListReservations", "day", calendar.FormatDay(day)).ErrorContext(r.Context(), "reservation listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	resp := dayReservationsResponse{Date: calendar.FormatDay(day), Reservations: make([]reservationDTO, 0, len(reservations))}
	for _, reservation := range reservations {
		resp.Reservations = append(resp.Reservations, toReservationDTO(reservation))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (h *APIHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req createReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "CreateReservation", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode reservation request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	params, err := req.toParams()
	if err != nil {
		h.log(r.Context(), "CreateReservation", "error_kind", "bad_request").ErrorContext(r.Context(), "invalid reservation timestamps", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidTimestamp)
		return
	}

	logger := h.log(r.Context(), "CreateReservation", "room_id", params.RoomID)

	reservation, err := h.service.CreateReservation(r.Context(), params)
	if err != nil {
		logger.WarnContext(r.Context(), "reservation rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("reservation_id", reservation.ID).InfoContext(r.Context(), "reservation created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, reservationResponse{Reservation: toReservationDTO(reservation)})
}

func (h *APIHandler) FindReservations(w http.ResponseWriter, r *http.Request) {
	var req lookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "FindReservations", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode lookup request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	results, err := h.service.FindReservations(r.Context(), application.FindReservationsParams{
		UserPhone: req.UserPhone,
		Passcode:  req.Password,
	})
	if err != nil {
		h.log(r.Context(), "FindReservations").WarnContext(r.Context(), "lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	resp := lookupResponse{Reservations: make([]lookupDTO, 0, len(results))}
	for _, result := range results {
		resp.Reservations = append(resp.Reservations, lookupDTO{
			reservationDTO: toReservationDTO(result.Reservation),
			Room:           toRoomDTO(result.Room),
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (h *APIHandler) RoomTimeline(w http.ResponseWriter, r *http.Request) {
	roomID, err := strconv.ParseInt(chi.URLParam(r, "roomID"), 10, 64)
	if err != nil || roomID <= 0 {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomID)
		return
	}
	day, err := selectedDay(r, h.service)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	timeline, err := h.service.RoomTimeline(r.Context(), roomID, day)
	if err != nil {
		h.log(r.Context(), "RoomTimeline", "room_id", roomID).WarnContext(r.Context(), "timeline failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	resp := timelineResponse{
		Room:      toRoomDTO(timeline.Room),
		Date:      calendar.FormatDay(day),
		FreeSlots: scheduler.FreeSlots(timeline.Slots),
		Slots:     make([]slotDTO, 0, len(timeline.Slots)),
	}
	for _, slot := range timeline.Slots {
		resp.Slots = append(resp.Slots, toSlotDTO(slot))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

// selectedDay resolves ?date= against the service clock; an absent value
// selects today.
func selectedDay(r *http.Request, service reservationService) (time.Time, error) {
	selector := calendar.NewSelector(service.Now, service.Location())
	value := strings.TrimSpace(r.URL.Query().Get("date"))
	if value == "" {
		return selector.Day(), nil
	}
	day, err := calendar.ParseDay(value, service.Location())
	if err != nil {
		return time.Time{}, err
	}
	return selector.Set(day), nil
}

type createReservationRequest struct {
	RoomID    int64  `json:"room_id"`
	UserName  string `json:"user_name"`
	UserPhone string `json:"user_phone"`
	Password  string `json:"password"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func (r createReservationRequest) toParams() (application.CreateReservationParams, error) {
	start, err := parseTimestamp(r.StartTime)
	if err != nil {
		return application.CreateReservationParams{}, err
	}
	end, err := parseTimestamp(r.EndTime)
	if err != nil {
		return application.CreateReservationParams{}, err
	}
	return application.CreateReservationParams{
		RoomID:    r.RoomID,
		UserName:  r.UserName,
		UserPhone: r.UserPhone,
		Passcode:  r.Password,
		StartTime: start,
		EndTime:   end,
	}, nil
}

// parseTimestamp accepts RFC 3339; an empty value yields the zero time so
// the service reports it as a missing field.
func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, value)
}

type lookupRequest struct {
	UserPhone string `json:"user_phone"`
	Password  string `json:"password"`
}

type roomDTO struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Location  *string   `json:"location"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
}

func toRoomDTO(room application.Room) roomDTO {
	dto := roomDTO{
		ID:        room.ID,
		Name:      room.Name,
		Capacity:  room.Capacity,
		CreatedAt: room.CreatedAt,
	}
	if room.HasLocation() {
		location := room.Location
		dto.Location = &location
	}
	return dto
}

// reservationDTO never carries the passcode.
type reservationDTO struct {
	ID        int64     `json:"id"`
	RoomID    int64     `json:"room_id"`
	UserName  string    `json:"user_name"`
	UserPhone string    `json:"user_phone"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
}

func toReservationDTO(reservation application.Reservation) reservationDTO {
	return reservationDTO{
		ID:        reservation.ID,
		RoomID:    reservation.RoomID,
		UserName:  reservation.UserName,
		UserPhone: reservation.UserPhone,
		StartTime: reservation.StartTime,
		EndTime:   reservation.EndTime,
		CreatedAt: reservation.CreatedAt,
	}
}

type lookupDTO struct {
	reservationDTO
	Room roomDTO `json:"room"`
}

type slotDTO struct {
	Hour          int       `json:"hour"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Booked        bool      `json:"booked"`
	ReservationID int64     `json:"reservation_id,omitempty"`
	Holder        string    `json:"holder,omitempty"`
}

func toSlotDTO(slot scheduler.Slot) slotDTO {
	dto := slotDTO{
		Hour:   slot.Hour,
		Start:  slot.Interval.Start,
		End:    slot.Interval.End,
		Booked: slot.Booked,
	}
	if slot.Booked {
		dto.ReservationID = slot.Booking.ID
		dto.Holder = slot.Booking.Holder
	}
	return dto
}

type roomListResponse struct {
	Rooms []roomDTO `json:"rooms"`
}

type dayReservationsResponse struct {
	Date         string           `json:"date"`
	Reservations []reservationDTO `json:"reservations"`
}

type reservationResponse struct {
	Reservation reservationDTO `json:"reservation"`
}

type lookupResponse struct {
	Reservations []lookupDTO `json:"reservations"`
}

type timelineResponse struct {
	Room      roomDTO   `json:"room"`
	Date      string    `json:"date"`
	FreeSlots int       `json:"free_slots"`
	Slots     []slotDTO `json:"slots"`
}
