// Package manifest imports candidate swapper contracts from a remote
// deployments manifest.
package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Mohsinsiddi/swapctl/internal/chain"
	"github.com/Mohsinsiddi/swapctl/internal/logging"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// maxBody bounds the manifest size.
const maxBody = 1 << 20

// Manifest lists swapper deployments per network name, in probe order:
//
//	{"contracts": {"mainnet": ["0x...", "0x..."], "sepolia": ["0x..."]}}
type Manifest struct {
	Contracts map[string][]string `json:"contracts"`
}

// For returns the parsed addresses listed for network.
func (m *Manifest) For(network string) ([]common.Address, error) {
	raw := m.Contracts[strings.ToLower(network)]
	out := make([]common.Address, 0, len(raw))
	for _, s := range raw {
		a, err := chain.ParseAddress(s)
		if err != nil {
			return nil, fmt.Errorf("manifest %s: %w", network, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// Target receives imported contracts. *config.Config implements it.
type Target interface {
	AddContract(addr string) error
	Candidates() ([]common.Address, error)
}

// Syncer fetches manifests.
type Syncer struct {
	client *http.Client
	log    logrus.FieldLogger
}

// New creates a Syncer.
func New(log logrus.FieldLogger) *Syncer {
	return &Syncer{
		client: &http.Client{Timeout: 15 * time.Second},
		log:    logging.OrDiscard(log),
	}
}

// Fetch downloads and parses the manifest at url.
func (s *Syncer) Fetch(ctx context.Context, url string) (*Manifest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching manifest: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching manifest: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// Sync appends the manifest's contracts for network to t, after the ones
// already configured. It returns the newly added addresses.
func (s *Syncer) Sync(ctx context.Context, url, network string, t Target) ([]common.Address, error) {
	m, err := s.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	listed, err := m.For(network)
	if err != nil {
		return nil, err
	}
	existing, err := t.Candidates()
	if err != nil {
		return nil, err
	}
	known := make(map[common.Address]bool, len(existing))
	for _, a := range existing {
		known[a] = true
	}

	var added []common.Address
	for _, a := range listed {
		if known[a] {
			continue
		}
		if err := t.AddContract(a.Hex()); err != nil {
			return added, err
		}
		known[a] = true
		added = append(added, a)
	}
	s.log.WithFields(logrus.Fields{"network": network, "listed": len(listed), "added": len(added)}).Info("manifest synced")
	return added, nil
}
