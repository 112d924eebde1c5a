package rating

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/entity"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/event"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/repository"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/valueobject"
	"github.com/ignatzorin/escrow-marketplace/internal/pkg/apperror"
)

type RateUserInput struct {
	RaterID  uuid.UUID
	TargetID uuid.UUID
	Value    uint64
}

type RateUserUseCase struct {
	ratingRepo repository.RatingRepository
	tx         repository.Transactor
	emitter    event.Emitter
}

func NewRateUserUseCase(ratingRepo repository.RatingRepository, tx repository.Transactor, emitter event.Emitter) *RateUserUseCase {
	return &RateUserUseCase{ratingRepo: ratingRepo, tx: tx, emitter: emitter}
}

// Execute добавляет оценку к рейтингу пользователя. Ограничений на число оценок от одного участника нет.
func (uc *RateUserUseCase) Execute(ctx context.Context, input RateUserInput) (*entity.Rating, error) {
	value, err := valueobject.NewRatingValue(input.Value)
	if err != nil {
		return nil, err
	}
	if input.TargetID == uuid.Nil {
		return nil, apperror.New(apperror.ErrCodeValidation, "не указан оцениваемый пользователь")
	}

	var (
		rating *entity.Rating
		events event.Buffer
	)
	err = uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		rating, err = uc.ratingRepo.FindByUserID(ctx, input.TargetID)
		if err != nil {
			return err
		}
		rating.Add(value)
		if err := uc.ratingRepo.Save(ctx, rating); err != nil {
			return apperror.Ensure(err, apperror.ErrCodeDatabaseError, "не удалось сохранить рейтинг")
		}
		events.Add(event.Event{
			Type:       event.TypeUserRated,
			Principal:  input.TargetID,
			Attributes: map[string]string{"rater": input.RaterID.String(), "value": strconv.FormatUint(input.Value, 10)},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.Flush(uc.emitter)
	return rating, nil
}

type GetRatingUseCase struct {
	ratingRepo repository.RatingRepository
}

func NewGetRatingUseCase(ratingRepo repository.RatingRepository) *GetRatingUseCase {
	return &GetRatingUseCase{ratingRepo: ratingRepo}
}

func (uc *GetRatingUseCase) Execute(ctx context.Context, userID uuid.UUID) (*entity.Rating, error) {
	return uc.ratingRepo.FindByUserID(ctx, userID)
}
