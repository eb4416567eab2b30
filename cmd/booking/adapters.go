package main

import (
	"context"
	"time"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/persistence"
)

type roomRepositoryAdapter struct {
	repo persistence.RoomRepository
}

func newRoomRepositoryAdapter(repo persistence.RoomRepository) *roomRepositoryAdapter {
	return &roomRepositoryAdapter{repo: repo}
}

func (a *roomRepositoryAdapter) ListRooms(ctx context.Context) ([]application.Room, error) {
	models, err := a.repo.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	rooms := make([]application.Room, 0, len(models))
	for _, model := range models {
		rooms = append(rooms, toApplicationRoom(model))
	}
	return rooms, nil
}

func (a *roomRepositoryAdapter) GetRoom(ctx context.Context, id int64) (application.Room, error) {
	stored, err := a.repo.GetRoom(ctx, id)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

type reservationRepositoryAdapter struct {
	repo persistence.ReservationRepository
}

func newReservationRepositoryAdapter(repo persistence.ReservationRepository) *reservationRepositoryAdapter {
	return &reservationRepositoryAdapter{repo: repo}
}

func (a *reservationRepositoryAdapter) ListReservationsStartingBetween(ctx context.Context, from, to time.Time) ([]application.Reservation, error) {
	models, err := a.repo.ListReservationsStartingBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	reservations := make([]application.Reservation, 0, len(models))
	for _, model := range models {
		reservations = append(reservations, toApplicationReservation(model))
	}
	return reservations, nil
}

func (a *reservationRepositoryAdapter) CreateReservation(ctx context.Context, reservation application.Reservation) (application.Reservation, error) {
	stored, err := a.repo.CreateReservation(ctx, toPersistenceReservation(reservation))
	if err != nil {
		return application.Reservation{}, err
	}
	return toApplicationReservation(stored), nil
}

func (a *reservationRepositoryAdapter) FindReservations(ctx context.Context, query application.ReservationQuery) ([]application.ReservationLookup, error) {
	models, err := a.repo.FindReservations(ctx, persistence.ReservationFilter{
		UserPhone: query.UserPhone,
		Password:  cloneString(query.Passcode),
	})
	if err != nil {
		return nil, err
	}
	results := make([]application.ReservationLookup, 0, len(models))
	for _, model := range models {
		results = append(results, application.ReservationLookup{
			Reservation: toApplicationReservation(model.Reservation),
			Room: application.Room{
				ID:       model.Room.ID,
				Name:     model.Room.Name,
				Location: derefString(model.Room.Location),
				Capacity: model.Room.Capacity,
			},
		})
	}
	return results, nil
}

func toApplicationRoom(model persistence.MeetingRoom) application.Room {
	return application.Room{
		ID:        model.ID,
		Name:      model.Name,
		Location:  derefString(model.Location),
		Capacity:  model.Capacity,
		CreatedAt: model.CreatedAt,
	}
}

func toApplicationReservation(model persistence.Reservation) application.Reservation {
	return application.Reservation{
		ID:        model.ID,
		RoomID:    model.RoomID,
		UserName:  model.UserName,
		UserPhone: model.UserPhone,
		Passcode:  model.Password,
		StartTime: model.StartTime,
		EndTime:   model.EndTime,
		CreatedAt: model.CreatedAt,
	}
}

func toPersistenceReservation(reservation application.Reservation) persistence.Reservation {
	return persistence.Reservation{
		ID:        reservation.ID,
		RoomID:    reservation.RoomID,
		UserName:  reservation.UserName,
		UserPhone: reservation.UserPhone,
		Password:  reservation.Passcode,
		StartTime: reservation.StartTime,
		EndTime:   reservation.EndTime,
		CreatedAt: reservation.CreatedAt,
	}
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
