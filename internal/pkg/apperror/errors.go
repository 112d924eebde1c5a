package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeUnauthenticated   ErrorCode = "UNAUTHENTICATED"
	ErrCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrCodeBadRequest        ErrorCode = "BAD_REQUEST"
	ErrCodeValidation        ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidState      ErrorCode = "INVALID_STATE"
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
	ErrCodeDatabaseError     ErrorCode = "DATABASE_ERROR"
	ErrCodeLedger            ErrorCode = "LEDGER_ERROR"
	ErrCodeInsufficientFunds ErrorCode = "INSUFFICIENT_FUNDS"
	ErrCodeInvalidMilestones ErrorCode = "INVALID_MILESTONES"
	ErrCodeJobNotOpen        ErrorCode = "JOB_NOT_OPEN"
	ErrCodeAlreadyBidded     ErrorCode = "ALREADY_BIDDED"
	ErrCodeBidNotFound       ErrorCode = "BID_NOT_FOUND"
	ErrCodeNoMoreMilestones  ErrorCode = "NO_MORE_MILESTONES"
	ErrCodeAlreadyDisputed   ErrorCode = "ALREADY_DISPUTED"
	ErrCodeAlreadyVoted      ErrorCode = "ALREADY_VOTED"
	ErrCodeInvalidRating     ErrorCode = "INVALID_RATING"
	ErrCodeRateLimited       ErrorCode = "RATE_LIMITED"
)

// AppError: типизированная ошибка бизнес-операции.
// Details содержит значения, из-за которых операция была отклонена.
type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
	Details    map[string]interface{}
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is сравнивает ошибки по коду и сообщению, чтобы errors.Is работал с копиями из WithDetail.
func (e *AppError) Is(target error) bool {
	other, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == other.Code && e.Message == other.Message
}

// WithDetail возвращает копию ошибки с дополнительным полем в Details.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	details := make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value

	cp := *e
	cp.Details = details
	return &cp
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// Ensure оставляет типизированную ошибку как есть, остальные оборачивает в code.
func Ensure(err error, code ErrorCode, message string) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return Wrap(err, code, message)
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound, ErrCodeBidNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthenticated:
		return http.StatusUnauthorized
	case ErrCodeUnauthorized:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeInvalidMilestones, ErrCodeInvalidRating:
		return http.StatusBadRequest
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeInsufficientFunds:
		return http.StatusPaymentRequired
	case ErrCodeJobNotOpen, ErrCodeAlreadyBidded, ErrCodeNoMoreMilestones,
		ErrCodeAlreadyDisputed, ErrCodeAlreadyVoted, ErrCodeInvalidState:
		return http.StatusConflict
	case ErrCodeLedger:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf возвращает код ошибки или ErrCodeInternal для нетипизированных ошибок.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// HasCode проверяет, что err является AppError с указанным кодом.
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func IsNotFound(err error) bool {
	return HasCode(err, ErrCodeNotFound)
}

func IsUnauthorized(err error) bool {
	return HasCode(err, ErrCodeUnauthorized)
}

func IsValidation(err error) bool {
	return HasCode(err, ErrCodeValidation)
}

var (
	ErrJobNotFound       = New(ErrCodeNotFound, "заказ не найден")
	ErrDisputeNotFound   = New(ErrCodeNotFound, "спор не найден")
	ErrBidNotFound       = New(ErrCodeBidNotFound, "ожидающее предложение не найдено")
	ErrUnauthenticated   = New(ErrCodeUnauthenticated, "требуется авторизация")
	ErrUnauthorized      = New(ErrCodeUnauthorized, "недостаточно прав для операции")
	ErrInsufficientFunds = New(ErrCodeInsufficientFunds, "недостаточно средств на балансе")
	ErrInvalidMilestones = New(ErrCodeInvalidMilestones, "некорректный график этапов")
	ErrJobNotOpen        = New(ErrCodeJobNotOpen, "заказ не принимает предложения")
	ErrJobNotInProgress  = New(ErrCodeInvalidState, "заказ не находится в работе")
	ErrAlreadyBidded     = New(ErrCodeAlreadyBidded, "вы уже откликнулись на этот заказ")
	ErrNoMoreMilestones  = New(ErrCodeNoMoreMilestones, "все этапы заказа уже оплачены")
	ErrAlreadyDisputed   = New(ErrCodeAlreadyDisputed, "по заказу уже открыт спор")
	ErrDisputeResolved   = New(ErrCodeInvalidState, "спор уже разрешён")
	ErrAlreadyVoted      = New(ErrCodeAlreadyVoted, "вы уже проголосовали по этому спору")
	ErrInvalidRating     = New(ErrCodeInvalidRating, "рейтинг должен быть от 1 до 5")
)
