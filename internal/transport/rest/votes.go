package rest

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goodnatureofminers/electionledger-backend/internal/model"
	"github.com/goodnatureofminers/electionledger-backend/internal/service/voting"
	"github.com/gorilla/mux"
)

// Voter identity arrives from the authenticating proxy in front of the API.
const (
	headerVoterDID        = "X-Voter-DID"
	headerVoterLevel      = "X-Voter-Level"
	headerVoterDepartment = "X-Voter-Department"
	headerVoterGender     = "X-Voter-Gender"
)

func voterFrom(r *http.Request) (model.Voter, error) {
	voter := model.Voter{
		DID:        strings.TrimSpace(r.Header.Get(headerVoterDID)),
		Department: strings.TrimSpace(r.Header.Get(headerVoterDepartment)),
		Gender:     strings.TrimSpace(r.Header.Get(headerVoterGender)),
	}
	if raw := strings.TrimSpace(r.Header.Get(headerVoterLevel)); raw != "" {
		level, err := strconv.Atoi(raw)
		if err != nil {
			return model.Voter{}, fmt.Errorf("%w: %s must be an integer", errBadRequest, headerVoterLevel)
		}
		voter.Level = level
	}
	return voter, nil
}

type castRequest struct {
	ElectionCode   string   `json:"election_code"`
	PositionCode   string   `json:"position_code,omitempty"`
	CandidateCode  string   `json:"candidate_code,omitempty"`
	PositionCodes  []string `json:"position_codes,omitempty"`
	CandidateCodes []string `json:"candidate_codes,omitempty"`
}

func (c castRequest) isBallot() bool {
	return c.PositionCodes != nil || c.CandidateCodes != nil
}

type blockInfo struct {
	BlockNumber    *uint64    `json:"block_number,omitempty"`
	Confirmations  *uint64    `json:"confirmations,omitempty"`
	BlockTimestamp *time.Time `json:"block_timestamp,omitempty"`
	NetworkFee     string     `json:"network_fee,omitempty"`
}

func minedBlock(e *model.Enrichment) blockInfo {
	if e == nil {
		return blockInfo{}
	}
	out := blockInfo{
		BlockNumber:   &e.BlockNumber,
		Confirmations: &e.Confirmations,
		NetworkFee:    e.NetworkFee.String(),
	}
	if !e.BlockTimestamp.IsZero() {
		out.BlockTimestamp = &e.BlockTimestamp
	}
	return out
}

type castLine struct {
	PositionCode  string `json:"position_code"`
	CandidateCode string `json:"candidate_code"`
	Receipt       string `json:"receipt"`
	Status        string `json:"status"`
	blockInfo
}

// castResponse carries a single vote flat and a ballot under votes.
type castResponse struct {
	Outcome string `json:"outcome"`
	Receipt string `json:"receipt,omitempty"`
	TxHash  string `json:"tx_hash,omitempty"`
	Status  string `json:"status,omitempty"`
	blockInfo
	Votes   []castLine `json:"votes,omitempty"`
	Message string     `json:"message,omitempty"`
}

func castStatus(o voting.CastOutcome) int {
	switch o {
	case voting.Cast:
		return http.StatusCreated
	case voting.Pending:
		return http.StatusAccepted
	case voting.AlreadyVoted:
		return http.StatusBadRequest
	case voting.DuplicateReceipt:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) cast(w http.ResponseWriter, r *http.Request) {
	voter, err := voterFrom(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req castRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	var result voting.CastResult
	if req.isBallot() {
		result, err = h.voting.CastBallot(r.Context(), voter, voting.BallotRequest{
			ElectionCode:   req.ElectionCode,
			PositionCodes:  req.PositionCodes,
			CandidateCodes: req.CandidateCodes,
		})
	} else {
		result, err = h.voting.CastVote(r.Context(), voter, voting.CastRequest{
			ElectionCode:  req.ElectionCode,
			PositionCode:  req.PositionCode,
			CandidateCode: req.CandidateCode,
		})
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := castResponse{
		Outcome: result.Outcome.String(),
		TxHash:  result.TxHash,
		Message: result.Reason,
	}
	if !req.isBallot() && len(result.Lines) == 1 {
		l := result.Lines[0]
		resp.Receipt = l.Receipt
		resp.Status = string(l.Status)
		resp.blockInfo = minedBlock(l.Mined)
	} else {
		for _, l := range result.Lines {
			resp.Votes = append(resp.Votes, castLine{
				PositionCode:  l.PositionCode,
				CandidateCode: l.CandidateCode,
				Receipt:       l.Receipt,
				Status:        string(l.Status),
				blockInfo:     minedBlock(l.Mined),
			})
		}
	}
	h.writeJSON(w, castStatus(result.Outcome), resp)
}

type verifyRequest struct {
	Receipt string `json:"receipt"`
}

type verifyResponse struct {
	Valid          bool       `json:"valid"`
	Receipt        string     `json:"receipt,omitempty"`
	TxHash         string     `json:"tx_hash,omitempty"`
	Status         string     `json:"status,omitempty"`
	ElectionTitle  string     `json:"election_title,omitempty"`
	PositionTitle  string     `json:"position_title,omitempty"`
	CandidateName  string     `json:"candidate_name,omitempty"`
	BlockNumber    *uint64    `json:"block_number,omitempty"`
	Confirmations  *uint64    `json:"confirmations,omitempty"`
	BlockTimestamp *time.Time `json:"block_timestamp,omitempty"`
	NetworkFee     string     `json:"network_fee,omitempty"`
	Message        string     `json:"message,omitempty"`
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	req.Receipt = strings.TrimSpace(req.Receipt)

	v, err := h.voting.Verify(r.Context(), req.Receipt)
	if err != nil {
		if statusOf(err) == http.StatusNotFound {
			h.writeJSON(w, http.StatusNotFound, verifyResponse{Valid: false, Message: "receipt not found"})
			return
		}
		h.writeError(w, r, err)
		return
	}

	resp := verifyResponse{
		Valid:          true,
		Receipt:        v.Receipt,
		TxHash:         v.TxHash,
		Status:         string(v.Status),
		ElectionTitle:  v.ElectionTitle,
		PositionTitle:  v.PositionTitle,
		CandidateName:  v.CandidateName,
		BlockNumber:    v.BlockNumber,
		Confirmations:  v.Confirmations,
		BlockTimestamp: v.BlockTimestamp,
	}
	if v.NetworkFee.Valid {
		resp.NetworkFee = v.NetworkFee.Decimal.String()
	}
	h.writeJSON(w, http.StatusOK, resp)
}

type candidateResult struct {
	Code     string  `json:"code"`
	FullName string  `json:"full_name"`
	Votes    int64   `json:"votes"`
	Percent  float64 `json:"percentage"`
	IsWinner bool    `json:"is_winner"`
}

type positionResult struct {
	Code               string            `json:"code"`
	Title              string            `json:"title"`
	TotalVotesPosition int64             `json:"total_votes_position"`
	Candidates         []candidateResult `json:"candidates"`
}

type resultsResponse struct {
	ElectionCode     string           `json:"election_code"`
	ElectionTitle    string           `json:"election_title"`
	TotalVotesCast   int64            `json:"total_votes_cast"`
	TotalVotesSynced int64            `json:"total_votes_synced"`
	PercentSynced    float64          `json:"percent_synced"`
	Positions        []positionResult `json:"positions"`
}

func (h *Handler) results(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	electionCode := strings.TrimSpace(q.Get("election_code"))
	if electionCode == "" {
		h.writeError(w, r, fmt.Errorf("%w: election_code is required", errBadRequest))
		return
	}

	res, err := h.voting.Results(r.Context(), electionCode, strings.TrimSpace(q.Get("position_code")))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := resultsResponse{
		ElectionCode:     res.ElectionCode,
		ElectionTitle:    res.ElectionTitle,
		TotalVotesCast:   res.TotalVotesCast,
		TotalVotesSynced: res.TotalVotesSynced,
		PercentSynced:    res.PercentSynced,
		Positions:        make([]positionResult, 0, len(res.Positions)),
	}
	for _, p := range res.Positions {
		pr := positionResult{
			Code:               p.Code,
			Title:              p.Title,
			TotalVotesPosition: p.TotalVotes,
			Candidates:         make([]candidateResult, 0, len(p.Candidates)),
		}
		for _, c := range p.Candidates {
			pr.Candidates = append(pr.Candidates, candidateResult(c))
		}
		resp.Positions = append(resp.Positions, pr)
	}
	h.writeJSON(w, http.StatusOK, resp)
}

type chainTally struct {
	PositionCode  string `json:"position_code"`
	CandidateCode string `json:"candidate_code"`
	Votes         uint64 `json:"votes"`
}

func (h *Handler) chainResults(w http.ResponseWriter, r *http.Request) {
	tallies, err := h.voting.ChainResults(r.Context(), mux.Vars(r)["position_code"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, chainTallies(tallies))
}

func (h *Handler) electionChainResults(w http.ResponseWriter, r *http.Request) {
	tallies, err := h.voting.ElectionChainResults(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, chainTallies(tallies))
}

func chainTallies(in []voting.ChainTally) []chainTally {
	out := make([]chainTally, 0, len(in))
	for _, t := range in {
		out = append(out, chainTally(t))
	}
	return out
}

type historyEntry struct {
	ElectionCode  string    `json:"election_code"`
	ElectionTitle string    `json:"election_title"`
	PositionCode  string    `json:"position_code"`
	PositionTitle string    `json:"position_title"`
	CandidateCode string    `json:"candidate_code"`
	CandidateName string    `json:"candidate_name"`
	Receipt       string    `json:"receipt"`
	TxHash        string    `json:"tx_hash"`
	Status        string    `json:"status"`
	CastAt        time.Time `json:"cast_at"`
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	voter, err := voterFrom(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	entries, err := h.voting.History(r.Context(), voter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]historyEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyEntry{
			ElectionCode:  e.ElectionCode,
			ElectionTitle: e.ElectionTitle,
			PositionCode:  e.PositionCode,
			PositionTitle: e.PositionTitle,
			CandidateCode: e.CandidateCode,
			CandidateName: e.CandidateName,
			Receipt:       e.Receipt,
			TxHash:        e.TxHash,
			Status:        string(e.Status),
			CastAt:        e.CastAt,
		})
	}
	h.writeJSON(w, http.StatusOK, out)
}
