package event

import "github.com/google/uuid"

const (
	TypeJobPosted         = "job.posted"
	TypeJobCancelled      = "job.cancelled"
	TypeJobCompleted      = "job.completed"
	TypeBidPlaced         = "bid.placed"
	TypeBidAccepted       = "bid.accepted"
	TypeMilestoneReleased = "milestone.released"
	TypeDisputeRaised     = "dispute.raised"
	TypeDisputeVoted      = "dispute.voted"
	TypeDisputeResolved   = "dispute.resolved"
	TypeUserRated         = "user.rated"
	TypeAccountDeposited  = "account.deposited"
)

// Event: зафиксированное изменение состояния маркетплейса.
type Event struct {
	Type       string
	JobID      uint64
	Principal  uuid.UUID
	Amount     uint64
	Attributes map[string]string
}

// Emitter получает события только после успешной фиксации транзакции.
type Emitter interface {
	Emit(Event)
}

type NoopEmitter struct{}

func (NoopEmitter) Emit(Event) {}

// Buffer копит события внутри транзакции.
type Buffer struct {
	events []Event
}

func (b *Buffer) Add(e Event) {
	b.events = append(b.events, e)
}

// Flush отправляет накопленные события и очищает буфер.
func (b *Buffer) Flush(emitter Emitter) {
	if emitter == nil {
		emitter = NoopEmitter{}
	}
	for _, e := range b.events {
		emitter.Emit(e)
	}
	b.events = nil
}
