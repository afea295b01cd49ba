package voting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/electionledger-backend/internal/chain"
	"github.com/goodnatureofminers/electionledger-backend/internal/codec"
	"github.com/goodnatureofminers/electionledger-backend/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	kindSingle = "single"
	kindBallot = "ballot"

	// receiptRevert is matched against revert reasons that reject a reused receipt.
	receiptRevert = "receipt already used"
)

// CastOutcome is the result variant of a cast attempt.
type CastOutcome int

const (
	// Cast means the transaction mined and the votes were recorded.
	Cast CastOutcome = iota + 1
	// AlreadyVoted means the voter has a vote for the position already.
	AlreadyVoted
	// DuplicateReceipt means the ledger rejected the receipt as used. A new
	// attempt mints a fresh receipt.
	DuplicateReceipt
	// Pending means the transaction was broadcast but not mined in time.
	// The votes are recorded as pending and reconciled later.
	Pending
)

func (o CastOutcome) String() string {
	switch o {
	case Cast:
		return "cast"
	case AlreadyVoted:
		return "already_voted"
	case DuplicateReceipt:
		return "duplicate_receipt"
	case Pending:
		return "pending"
	default:
		return "unknown"
	}
}

// CastRequest selects one candidate.
type CastRequest struct {
	ElectionCode  string
	PositionCode  string
	CandidateCode string
}

// BallotRequest selects one candidate per position. The two slices are parallel.
type BallotRequest struct {
	ElectionCode   string
	PositionCodes  []string
	CandidateCodes []string
}

// CastLine is one recorded vote of a cast.
type CastLine struct {
	PositionCode  string
	CandidateCode string
	Receipt       string
	Status        model.VoteStatus
	// Mined is set once the transaction's block was read.
	Mined *model.Enrichment
}

// CastResult describes a cast attempt.
type CastResult struct {
	Outcome CastOutcome
	TxHash  string
	Lines   []CastLine
	Reason  string
}

// line is a validated vote awaiting submission.
type line struct {
	election  *model.Election
	position  *model.Position
	candidate *model.Candidate
}

// CastVote casts a single vote.
func (s *Service) CastVote(ctx context.Context, voter model.Voter, req CastRequest) (result CastResult, err error) {
	started := time.Now()
	defer func() {
		s.metrics.ObserveCast(kindSingle, castLabel(result, err), started)
	}()

	if voter.DID == "" {
		return CastResult{}, invalid("voter identity is required")
	}
	digest := codec.VoterDigest(voter.DID)
	unlock := s.locks.Lock(digest)
	defer unlock()

	l, err := s.validate(ctx, voter, req.ElectionCode, req.PositionCode, req.CandidateCode)
	if err != nil {
		return CastResult{}, err
	}
	if voted, err := s.hasVoted(ctx, digest, []line{l}); err != nil || voted != nil {
		return alreadyVoted(voted), err
	}

	receipts, err := s.mintReceipts(1)
	if err != nil {
		return CastResult{}, err
	}
	positionID, candidateID, err := identifiers(l)
	if err != nil {
		return CastResult{}, err
	}

	sub, err := s.ledger.Vote(ctx, positionID, candidateID, receipts[0].Identifier())
	return s.settle(ctx, digest, []line{l}, receipts, sub, err)
}

// CastBallot casts one vote per position of an election in a single
// transaction. The ledger commits all lines or none.
func (s *Service) CastBallot(ctx context.Context, voter model.Voter, req BallotRequest) (result CastResult, err error) {
	started := time.Now()
	defer func() {
		s.metrics.ObserveCast(kindBallot, castLabel(result, err), started)
	}()

	if len(req.PositionCodes) != len(req.CandidateCodes) {
		return CastResult{}, fmt.Errorf("%w: %d positions, %d candidates",
			chain.ErrArrayLengthMismatch, len(req.PositionCodes), len(req.CandidateCodes))
	}
	if len(req.PositionCodes) == 0 {
		return CastResult{}, invalid("ballot is empty")
	}
	if voter.DID == "" {
		return CastResult{}, invalid("voter identity is required")
	}
	digest := codec.VoterDigest(voter.DID)
	unlock := s.locks.Lock(digest)
	defer unlock()

	lines := make([]line, 0, len(req.PositionCodes))
	seen := make(map[string]struct{}, len(req.PositionCodes))
	for i, positionCode := range req.PositionCodes {
		if _, dup := seen[positionCode]; dup {
			return CastResult{}, invalid("position %q appears more than once", positionCode)
		}
		seen[positionCode] = struct{}{}

		l, err := s.validate(ctx, voter, req.ElectionCode, positionCode, req.CandidateCodes[i])
		if err != nil {
			return CastResult{}, err
		}
		lines = append(lines, l)
	}
	if voted, err := s.hasVoted(ctx, digest, lines); err != nil || voted != nil {
		return alreadyVoted(voted), err
	}

	receipts, err := s.mintReceipts(len(lines))
	if err != nil {
		return CastResult{}, err
	}
	positions := make([]codec.Identifier, 0, len(lines))
	candidates := make([]codec.Identifier, 0, len(lines))
	receiptIDs := make([]codec.Identifier, 0, len(receipts))
	for _, l := range lines {
		positionID, candidateID, err := identifiers(l)
		if err != nil {
			return CastResult{}, err
		}
		positions = append(positions, positionID)
		candidates = append(candidates, candidateID)
	}
	for _, r := range receipts {
		receiptIDs = append(receiptIDs, r.Identifier())
	}

	sub, err := s.ledger.VoteBatch(ctx, positions, candidates, receiptIDs)
	return s.settle(ctx, digest, lines, receipts, sub, err)
}

// validate runs every local precondition of one vote.
func (s *Service) validate(ctx context.Context, voter model.Voter, electionCode, positionCode, candidateCode string) (line, error) {
	candidate, err := s.repo.CandidateByCode(ctx, candidateCode)
	if errors.Is(err, model.ErrNotFound) {
		return line{}, invalid("candidate %q not found", candidateCode)
	}
	if err != nil {
		return line{}, fmt.Errorf("load candidate: %w", err)
	}

	position := candidate.Position
	if position == nil || position.Code != positionCode {
		return line{}, invalid("candidate %q does not stand for position %q", candidateCode, positionCode)
	}
	election := position.Election
	if election == nil || election.Code != electionCode {
		return line{}, invalid("position %q is not part of election %q", positionCode, electionCode)
	}

	if now := s.clock.Now(); !election.IsOpen(now) {
		if !election.HasStarted(now) {
			return line{}, invalid("election %q has not started", electionCode)
		}
		return line{}, invalid("election %q has ended", electionCode)
	}
	if !s.eligibility.IsEligible(voter, *position) {
		return line{}, invalid("not eligible to vote for position %q", positionCode)
	}
	if !election.IsSynced || !position.IsSynced || !candidate.IsSynced {
		return line{}, invalid("candidate %q is not on the ledger yet", candidateCode)
	}
	return line{election: election, position: position, candidate: candidate}, nil
}

// hasVoted returns the first line the voter already voted on.
func (s *Service) hasVoted(ctx context.Context, digest string, lines []line) (*line, error) {
	for i := range lines {
		exists, err := s.repo.VoteExists(ctx, digest, lines[i].position.ID)
		if err != nil {
			return nil, fmt.Errorf("check prior vote: %w", err)
		}
		if exists {
			return &lines[i], nil
		}
	}
	return nil, nil
}

func alreadyVoted(l *line) CastResult {
	if l == nil {
		return CastResult{}
	}
	return CastResult{
		Outcome: AlreadyVoted,
		Reason:  fmt.Sprintf("already voted for position %q", l.position.Code),
	}
}

func (s *Service) mintReceipts(n int) ([]codec.Receipt, error) {
	out := make([]codec.Receipt, n)
	for i := range out {
		r, err := s.receipts.NewReceipt()
		if err != nil {
			return nil, fmt.Errorf("mint receipt: %w", err)
		}
		out[i] = r
	}
	return out, nil
}

func identifiers(l line) (position, candidate codec.Identifier, err error) {
	if position, err = codec.Encode(l.position.Code); err != nil {
		return position, candidate, err
	}
	candidate, err = codec.Encode(l.candidate.Code)
	return position, candidate, err
}

// settle classifies the submission and records the votes once a transaction
// hash exists.
func (s *Service) settle(ctx context.Context, digest string, lines []line, receipts []codec.Receipt, sub *chain.Submission, err error) (CastResult, error) {
	outcome := Cast
	var (
		notMined *chain.NotMinedError
		revert   *chain.RevertError
	)
	switch {
	case err == nil:
	case errors.As(err, &notMined) && sub != nil:
		outcome = Pending
		s.logger.Warn("vote not mined in time; recording as pending",
			zap.String("tx_hash", notMined.TxHash),
			zap.String("reason", notMined.Reason),
		)
	case chain.IsRevert(err, receiptRevert) && errors.As(err, &revert):
		return CastResult{Outcome: DuplicateReceipt, Reason: revert.Reason}, nil
	default:
		return CastResult{}, fmt.Errorf("submit vote: %w", err)
	}

	txHash := sub.TxHash.Hex()
	votes := make([]model.Vote, len(lines))
	result := CastResult{Outcome: outcome, TxHash: txHash, Lines: make([]CastLine, len(lines))}
	for i, l := range lines {
		votes[i] = model.Vote{
			ID:          uuid.NewString(),
			VoterDigest: digest,
			PositionID:  l.position.ID,
			CandidateID: l.candidate.ID,
			ElectionID:  l.election.ID,
			Receipt:     receipts[i].String(),
			TxHash:      txHash,
			Status:      model.VoteStatusPending,
		}
		result.Lines[i] = CastLine{
			PositionCode:  l.position.Code,
			CandidateCode: l.candidate.Code,
			Receipt:       votes[i].Receipt,
			Status:        model.VoteStatusPending,
		}
	}

	// The transaction exists, so the rows must be written even if the caller
	// went away.
	persistCtx := context.WithoutCancel(ctx)
	if err := s.repo.CreateVotes(persistCtx, votes); err != nil {
		s.logger.Error("votes on ledger but not recorded", zap.String("tx_hash", txHash), zap.Error(err))
		return CastResult{}, fmt.Errorf("record votes of %s: %w", txHash, err)
	}

	if outcome == Cast {
		s.enrich(persistCtx, votes, &result)
	}
	return result, nil
}

// enrich fills block metadata in place. Failures leave the votes pending.
func (s *Service) enrich(ctx context.Context, votes []model.Vote, result *CastResult) {
	if s.enricher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, enrichTimeout)
	defer cancel()

	applied, err := s.enricher.Enrich(ctx, votes)
	if err != nil {
		s.logger.Warn("vote enrichment deferred", zap.String("tx_hash", result.TxHash), zap.Error(err))
	}
	for i, v := range votes {
		if e, ok := applied[v.ID]; ok {
			result.Lines[i].Status = e.Status
			result.Lines[i].Mined = &e
		}
	}
}

func castLabel(result CastResult, err error) string {
	switch {
	case err == nil:
		return result.Outcome.String()
	case IsValidation(err), errors.Is(err, chain.ErrArrayLengthMismatch):
		return "invalid"
	default:
		return "error"
	}
}
