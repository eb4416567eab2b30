package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/room-booking/internal/application"
)

var (
	errBadRequestBody         = errors.New("요청 형식이 올바르지 않습니다.")
	errInvalidRoomID          = errors.New("회의실 ID가 올바르지 않습니다.")
	errInvalidDate            = errors.New("날짜 형식이 올바르지 않습니다. (YYYY-MM-DD)")
	errInvalidTimestamp       = errors.New("시간 형식이 올바르지 않습니다. (RFC 3339)")
	errInvalidReservationForm = errors.New("예약 정보가 올바르지 않습니다.")
)

const (
	messageReserved         = "예약이 완료되었습니다."
	messageConflict         = "이미 해당 시간대에 예약이 존재합니다."
	messageDuplicate        = "이미 처리 중인 요청입니다."
	messageLookupEmpty      = "예약 내역을 찾을 수 없습니다."
	messageValidationFailed = "입력 내용을 확인해 주세요."
	messageCreateFailed     = "예약 중 오류가 발생했습니다."
	messageNotFound         = "요청한 정보를 찾을 수 없습니다."
	messageInternal         = "서버 내부 오류가 발생했습니다."
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	status, body := describeServiceError(err)
	r.writeJSON(ctx, w, status, body)
}

// describeServiceError maps a service error to its status and localized body.
// The HTML views reuse it so both surfaces report failures identically.
func describeServiceError(err error) (int, errorResponse) {
	switch {
	case errors.Is(err, application.ErrReservationConflict):
		return http.StatusConflict, errorResponse{ErrorCode: "RESERVATION_CONFLICT", Message: messageConflict}
	case errors.Is(err, application.ErrDuplicateSubmission):
		return http.StatusConflict, errorResponse{ErrorCode: "DUPLICATE_SUBMISSION", Message: messageDuplicate}
	case errors.Is(err, application.ErrNotFound):
		return http.StatusNotFound, errorResponse{Message: messageNotFound}
	}

	var vErr *application.ValidationError
	if errors.As(err, &vErr) {
		return http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "VALIDATION_FAILED",
			Message:   messageValidationFailed,
			Errors:    localizeValidationErrors(vErr),
		}
	}
	return http.StatusInternalServerError, errorResponse{Message: messageInternal}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "요청 내용이 올바르지 않습니다."
	case http.StatusNotFound:
		return messageNotFound
	case http.StatusMethodNotAllowed:
		return "허용되지 않는 요청 방식입니다."
	case http.StatusConflict:
		return messageConflict
	case http.StatusUnprocessableEntity:
		return messageValidationFailed
	case http.StatusServiceUnavailable:
		return "서비스를 일시적으로 사용할 수 없습니다."
	default:
		return messageInternal
	}
}

func localizeValidationErrors(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		translated[field] = translateValidationMessage(msg)
	}
	return translated
}

func translateValidationMessage(message string) string {
	switch message {
	case "room is required":
		return "회의실을 선택하세요"
	case "room does not exist":
		return "존재하지 않는 회의실입니다"
	case "name is required":
		return "이름을 입력하세요"
	case "phone must be at least 8 characters", "phone must contain digits":
		return "휴대폰 번호를 입력하세요"
	case "phone must be at most 20 characters":
		return "번호가 너무 깁니다"
	case "passcode must be 4 digits":
		return "4자리 숫자 비밀번호를 입력하세요"
	case "start is required":
		return "시작 시간이 필요합니다"
	case "end is required":
		return "종료 시간이 필요합니다"
	case "start must be before end":
		return "종료 시간은 시작 시간보다 늦어야 합니다"
	default:
		return message
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
