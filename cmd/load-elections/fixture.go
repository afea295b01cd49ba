package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/goodnatureofminers/electionledger-backend/internal/codec"
	"github.com/goodnatureofminers/electionledger-backend/internal/model"
	"gopkg.in/yaml.v3"
)

type fixture struct {
	Elections []electionFixture `yaml:"elections"`
}

type electionFixture struct {
	Code      string            `yaml:"code"`
	Title     string            `yaml:"title"`
	StartsAt  time.Time         `yaml:"starts_at"`
	EndsAt    time.Time         `yaml:"ends_at"`
	Positions []positionFixture `yaml:"positions"`
}

type positionFixture struct {
	Code                string             `yaml:"code"`
	Title               string             `yaml:"title"`
	EligibleLevels      []int              `yaml:"eligible_levels"`
	EligibleDepartments []string           `yaml:"eligible_departments"`
	Gender              string             `yaml:"gender"`
	Candidates          []candidateFixture `yaml:"candidates"`
}

type candidateFixture struct {
	Code     string `yaml:"code"`
	FullName string `yaml:"full_name"`
}

// parseFixture decodes and checks a fixture. Every code must map to a ledger
// identifier that is unique among entities of its kind.
func parseFixture(r io.Reader) ([]model.Election, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f fixture
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("fixture is empty")
		}
		return nil, fmt.Errorf("decode fixture: %w", err)
	}

	seen := map[string]map[codec.Identifier]string{"election": {}, "position": {}, "candidate": {}}
	claim := func(kind, code string) error {
		if code == "" {
			return fmt.Errorf("%s without a code", kind)
		}
		id, err := codec.Encode(code)
		if err != nil {
			return fmt.Errorf("%s %q: %w", kind, code, err)
		}
		if prev, ok := seen[kind][id]; ok {
			if prev == code {
				return fmt.Errorf("%s %q defined twice", kind, code)
			}
			return fmt.Errorf("%s %q shares a ledger identifier with %q", kind, code, prev)
		}
		seen[kind][id] = code
		return nil
	}

	out := make([]model.Election, 0, len(f.Elections))
	for _, e := range f.Elections {
		if err := claim("election", e.Code); err != nil {
			return nil, err
		}
		if !e.EndsAt.After(e.StartsAt) {
			return nil, fmt.Errorf("election %q ends before it starts", e.Code)
		}
		election := model.Election{
			Code:     e.Code,
			Title:    e.Title,
			StartsAt: e.StartsAt,
			EndsAt:   e.EndsAt,
		}
		for _, p := range e.Positions {
			if err := claim("position", p.Code); err != nil {
				return nil, err
			}
			position := model.Position{
				Code:                p.Code,
				Title:               p.Title,
				EligibleLevels:      p.EligibleLevels,
				EligibleDepartments: p.EligibleDepartments,
				Gender:              p.Gender,
			}
			for _, c := range p.Candidates {
				if err := claim("candidate", c.Code); err != nil {
					return nil, err
				}
				position.Candidates = append(position.Candidates, model.Candidate{Code: c.Code, FullName: c.FullName})
			}
			election.Positions = append(election.Positions, position)
		}
		out = append(out, election)
	}
	return out, nil
}
