package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Dial connects to the node at url and verifies it answers for chainID.
// A zero chainID skips the comparison.
func Dial(ctx context.Context, url string, chainID *big.Int) (*ethclient.Client, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("%w: rpc url not configured", ErrConnectionUnavailable)
	}
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %w", ErrConnectionUnavailable, url, err)
	}
	got, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: chain id: %w", ErrConnectionUnavailable, err)
	}
	if chainID != nil && chainID.Sign() > 0 && got.Cmp(chainID) != 0 {
		client.Close()
		return nil, fmt.Errorf("node reports chain id %s, expected %s", got, chainID)
	}
	return client, nil
}

// ParseSigner decodes a hex private key and checks it against wallet when
// wallet is not empty.
func ParseSigner(hexKey, wallet string) (*ecdsa.PrivateKey, common.Address, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if hexKey == "" {
		return nil, common.Address{}, fmt.Errorf("private key not configured")
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, common.Address{}, fmt.Errorf("parse private key: %w", err)
	}
	from := crypto.PubkeyToAddress(key.PublicKey)
	if wallet != "" {
		if !common.IsHexAddress(wallet) {
			return nil, common.Address{}, fmt.Errorf("invalid wallet address %q", wallet)
		}
		if common.HexToAddress(wallet) != from {
			return nil, common.Address{}, fmt.Errorf("%w: %s != %s", ErrSignerMismatch, wallet, from.Hex())
		}
	}
	return key, from, nil
}
