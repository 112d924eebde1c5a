package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/valueobject"
)

// Rating: накопительный рейтинг пользователя.
type Rating struct {
	UserID    uuid.UUID
	Total     uint64
	Count     uint64
	UpdatedAt time.Time
}

func NewRating(userID uuid.UUID) *Rating {
	return &Rating{UserID: userID}
}

func (r *Rating) Add(value valueobject.RatingValue) {
	r.Total += uint64(value)
	r.Count++
	r.UpdatedAt = time.Now().UTC()
}

// Average: целочисленное среднее с отбрасыванием дробной части.
func (r *Rating) Average() uint64 {
	if r.Count == 0 {
		return 0
	}
	return r.Total / r.Count
}
