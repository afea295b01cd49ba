package chain

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// BallotABI is the interface of the deployed ballot contract.
const BallotABI = `[
{"inputs":[{"internalType":"bytes32","name":"electionId","type":"bytes32"}],"name":"electionExists","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"view","type":"function"},
{"inputs":[{"internalType":"bytes32","name":"positionId","type":"bytes32"}],"name":"positionExists","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"view","type":"function"},
{"inputs":[{"internalType":"bytes32","name":"positionId","type":"bytes32"},{"internalType":"bytes32","name":"candidateId","type":"bytes32"}],"name":"candidateExists","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"view","type":"function"},
{"inputs":[{"internalType":"bytes32","name":"electionId","type":"bytes32"}],"name":"addElection","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"inputs":[{"internalType":"bytes32","name":"positionId","type":"bytes32"},{"internalType":"string","name":"title","type":"string"},{"internalType":"bytes32","name":"electionId","type":"bytes32"}],"name":"addPosition","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"inputs":[{"internalType":"bytes32","name":"positionId","type":"bytes32"},{"internalType":"bytes32","name":"candidateId","type":"bytes32"},{"internalType":"string","name":"name","type":"string"}],"name":"addCandidate","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"inputs":[{"internalType":"bytes32","name":"positionId","type":"bytes32"},{"internalType":"bytes32","name":"candidateId","type":"bytes32"},{"internalType":"bytes32","name":"receipt","type":"bytes32"}],"name":"vote","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"inputs":[{"internalType":"bytes32[]","name":"positionIds","type":"bytes32[]"},{"internalType":"bytes32[]","name":"candidateIds","type":"bytes32[]"},{"internalType":"bytes32[]","name":"receipts","type":"bytes32[]"}],"name":"voteBatch","outputs":[],"stateMutability":"nonpayable","type":"function"},
{"inputs":[{"internalType":"bytes32","name":"positionId","type":"bytes32"}],"name":"getResults","outputs":[{"internalType":"bytes32[]","name":"candidateIds","type":"bytes32[]"},{"internalType":"uint256[]","name":"counts","type":"uint256[]"}],"stateMutability":"view","type":"function"},
{"inputs":[{"internalType":"bytes32","name":"electionId","type":"bytes32"}],"name":"getBallotResults","outputs":[{"internalType":"bytes32[]","name":"positionIds","type":"bytes32[]"},{"internalType":"bytes32[]","name":"candidateIds","type":"bytes32[]"},{"internalType":"uint256[]","name":"counts","type":"uint256[]"}],"stateMutability":"view","type":"function"}
]`

// LoadABI parses the ABI at path, or BallotABI when path is empty. The file may
// hold a bare ABI array or a build artifact with an "abi" field.
func LoadABI(path string) (*abi.ABI, error) {
	raw := BallotABI
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read abi %s: %w", path, err)
		}
		raw = strings.TrimSpace(string(b))
		if strings.HasPrefix(raw, "{") {
			var artifact struct {
				ABI json.RawMessage `json:"abi"`
			}
			if err := json.Unmarshal(b, &artifact); err != nil {
				return nil, fmt.Errorf("decode abi artifact %s: %w", path, err)
			}
			raw = string(artifact.ABI)
		}
	}
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse abi: %w", err)
	}
	return &parsed, nil
}
