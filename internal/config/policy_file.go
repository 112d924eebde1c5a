package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ignatzorin/escrow-marketplace/internal/domain/policy"
	"github.com/ignatzorin/escrow-marketplace/internal/domain/valueobject"
)

// policyFile: структура TOML-файла с правилами площадки.
//
//	[dispute]
//	quorum = 5
//	tie_break = "refund"
//	auto_resolve = true
//	arbiters = ["..."]
//	exclude_parties = false
//	authorities = ["..."]
//
//	[limits]
//	max_milestones = 10
type policyFile struct {
	Dispute struct {
		Quorum         uint64   `toml:"quorum"`
		TieBreak       string   `toml:"tie_break"`
		AutoResolve    bool     `toml:"auto_resolve"`
		Arbiters       []string `toml:"arbiters"`
		ExcludeParties bool     `toml:"exclude_parties"`
		Authorities    []string `toml:"authorities"`
	} `toml:"dispute"`
	Limits struct {
		MaxMilestones        int `toml:"max_milestones"`
		MaxTitleLength       int `toml:"max_title_length"`
		MaxDescriptionLength int `toml:"max_description_length"`
		MaxProposalLength    int `toml:"max_proposal_length"`
		MaxReasonLength      int `toml:"max_reason_length"`
	} `toml:"limits"`
}

// loadPolicyFile накладывает на cfg только ключи, явно заданные в файле.
func loadPolicyFile(path string, cfg *Config) error {
	var raw policyFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("config: не удалось прочитать %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("config: неизвестные ключи в %s: %v", path, undecoded)
	}

	if meta.IsDefined("dispute", "quorum") {
		cfg.Dispute.Quorum = raw.Dispute.Quorum
	}
	if meta.IsDefined("dispute", "tie_break") {
		outcome, err := valueobject.NewDisputeOutcome(strings.TrimSpace(raw.Dispute.TieBreak))
		if err != nil {
			return fmt.Errorf("config: dispute.tie_break: %w", err)
		}
		cfg.Dispute.TieBreak = outcome
	}
	if meta.IsDefined("dispute", "auto_resolve") {
		cfg.Dispute.AutoResolve = raw.Dispute.AutoResolve
	}
	if meta.IsDefined("dispute", "arbiters") {
		ids, err := parsePrincipals("dispute.arbiters", raw.Dispute.Arbiters)
		if err != nil {
			return err
		}
		cfg.Arbiters = ids
	}
	if meta.IsDefined("dispute", "exclude_parties") {
		cfg.ExcludeParties = raw.Dispute.ExcludeParties
	}
	if meta.IsDefined("dispute", "authorities") {
		ids, err := parsePrincipals("dispute.authorities", raw.Dispute.Authorities)
		if err != nil {
			return err
		}
		cfg.Dispute.Authorities = policy.NewPrincipalSet(ids...)
	}

	limits := []struct {
		key    string
		value  int
		target *int
	}{
		{"max_milestones", raw.Limits.MaxMilestones, &cfg.Limits.MaxMilestones},
		{"max_title_length", raw.Limits.MaxTitleLength, &cfg.Limits.MaxTitleLength},
		{"max_description_length", raw.Limits.MaxDescriptionLength, &cfg.Limits.MaxDescriptionLength},
		{"max_proposal_length", raw.Limits.MaxProposalLength, &cfg.Limits.MaxProposalLength},
		{"max_reason_length", raw.Limits.MaxReasonLength, &cfg.Limits.MaxReasonLength},
	}
	for _, l := range limits {
		if !meta.IsDefined("limits", l.key) {
			continue
		}
		if l.value <= 0 {
			return fmt.Errorf("config: limits.%s должен быть больше нуля", l.key)
		}
		*l.target = l.value
	}
	return nil
}
