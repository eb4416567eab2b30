// Package http serves the booking pages and the JSON API.
//
// HTML views:
//   - GET /?date=YYYY-MM-DD: the day overview. Every room is drawn as a row of
//     ten hourly slots (09:00 through 18:00); free slots link to the create form.
//   - GET /reserve?room_id=&start=&end=, POST /reserve: the create form. A
//     successful submit redirects to the overview with a completion notice.
//   - GET /lookup, POST /lookup: find reservations by phone and passcode.
//
// JSON API (see api_handler.go for the DTOs):
//   - GET /api/rooms
//   - GET /api/reservations?date=YYYY-MM-DD
//   - POST /api/reservations
//   - POST /api/reservations/lookup
//   - GET /api/rooms/{id}/timeline?date=YYYY-MM-DD
//
// Operational endpoints: GET /healthz and GET /metrics.
package http
