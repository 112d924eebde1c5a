package policy

import (
	"github.com/google/uuid"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/entity"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/valueobject"
)

// VoterEligibility решает, может ли участник голосовать по спору.
type VoterEligibility interface {
	CanVote(voter uuid.UUID, job *entity.Job, dispute *entity.Dispute) bool
}

// OpenVoting допускает любого участника.
type OpenVoting struct{}

func (OpenVoting) CanVote(uuid.UUID, *entity.Job, *entity.Dispute) bool {
	return true
}

// PrincipalSet: фиксированный набор участников.
type PrincipalSet map[uuid.UUID]struct{}

func NewPrincipalSet(ids ...uuid.UUID) PrincipalSet {
	set := make(PrincipalSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s PrincipalSet) Contains(id uuid.UUID) bool {
	_, ok := s[id]
	return ok
}

// ArbiterVoting допускает к голосованию только арбитров из набора.
type ArbiterVoting struct {
	Arbiters PrincipalSet
}

func (a ArbiterVoting) CanVote(voter uuid.UUID, _ *entity.Job, _ *entity.Dispute) bool {
	return a.Arbiters.Contains(voter)
}

// ExcludeParties отстраняет клиента и фрилансера заказа поверх другой политики.
type ExcludeParties struct {
	Next VoterEligibility
}

func (e ExcludeParties) CanVote(voter uuid.UUID, job *entity.Job, dispute *entity.Dispute) bool {
	return !job.IsParticipant(voter) && e.Next.CanVote(voter, job, dispute)
}

// NewVoterEligibility выбирает открытое голосование при пустом списке арбитров.
func NewVoterEligibility(arbiters []uuid.UUID, excludeParties bool) VoterEligibility {
	var eligibility VoterEligibility = OpenVoting{}
	if len(arbiters) > 0 {
		eligibility = ArbiterVoting{Arbiters: NewPrincipalSet(arbiters...)}
	}
	if excludeParties {
		eligibility = ExcludeParties{Next: eligibility}
	}
	return eligibility
}

// Resolution задаёт правила закрытия спора.
type Resolution struct {
	// Quorum: число голосов, после которого спор закрывается автоматически.
	Quorum      uint64
	TieBreak    valueobject.DisputeOutcome
	AutoResolve bool
	// Authorities могут закрыть спор явно. Пустой набор запрещает явное закрытие.
	Authorities PrincipalSet
}

func DefaultResolution() Resolution {
	return Resolution{
		Quorum:      3,
		TieBreak:    valueobject.DisputeOutcomeRefund,
		AutoResolve: true,
		Authorities: PrincipalSet{},
	}
}

// QuorumReached сообщает, что спор нужно закрыть по итогам голосования.
func (r Resolution) QuorumReached(d *entity.Dispute) bool {
	return r.AutoResolve && r.Quorum > 0 && d.TotalVotes() >= r.Quorum
}

func (r Resolution) CanResolve(principal uuid.UUID) bool {
	return r.Authorities.Contains(principal)
}

// Outcome: итог по текущему подсчёту голосов.
func (r Resolution) Outcome(d *entity.Dispute) valueobject.DisputeOutcome {
	tieBreak := r.TieBreak
	if tieBreak == valueobject.DisputeOutcomeNone {
		tieBreak = valueobject.DisputeOutcomeRefund
	}
	return d.Tally(tieBreak)
}
