package chain

import (
	"errors"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ErrNetworkNotFound is returned when a network is not in the registry.
var ErrNetworkNotFound = errors.New("network not found")

// Network holds the metadata and well-known addresses of one EVM network.
type Network struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	ChainID     int64    `json:"chain_id"`
	RPCs        []string `json:"rpcs"`
	Explorer    string   `json:"explorer"`

	// Zero when the protocol is not deployed on the network.
	StETH           common.Address `json:"steth"`
	WETH            common.Address `json:"weth"`
	WithdrawalQueue common.Address `json:"withdrawal_queue"`
	// DefaultSwapper is the swapper used when no candidates are configured.
	DefaultSwapper common.Address `json:"default_swapper"`
}

// TxURL returns the explorer link for a transaction hash.
func (n *Network) TxURL(hash string) string {
	if n.Explorer == "" {
		return ""
	}
	return n.Explorer + "/tx/" + hash
}

// Registry is the network registry.
type Registry struct {
	networks []Network
	byName   map[string]*Network
	byID     map[int64]*Network
}

// NewRegistry returns the registry of supported networks.
func NewRegistry() *Registry {
	nets := allNetworks()
	r := &Registry{
		networks: nets,
		byName:   make(map[string]*Network, len(nets)),
		byID:     make(map[int64]*Network, len(nets)),
	}
	for i := range r.networks {
		n := &r.networks[i]
		r.byName[n.Name] = n
		r.byID[n.ChainID] = n
	}
	return r
}

// GetByName finds a network by name (case-insensitive). "ethereum" is an
// alias for mainnet.
func (r *Registry) GetByName(name string) (*Network, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "ethereum" {
		name = "mainnet"
	}
	n, ok := r.byName[name]
	if !ok {
		return nil, ErrNetworkNotFound
	}
	return n, nil
}

// GetByChainID finds a network by its numeric chain ID.
func (r *Registry) GetByChainID(id int64) (*Network, error) {
	n, ok := r.byID[id]
	if !ok {
		return nil, ErrNetworkNotFound
	}
	return n, nil
}

// Names returns all network names sorted alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.networks))
	for _, n := range r.networks {
		names = append(names, n.Name)
	}
	sort.Strings(names)
	return names
}

func allNetworks() []Network {
	return []Network{
		{
			Name: "mainnet", DisplayName: "Ethereum", ChainID: 1,
			RPCs:            []string{"https://eth.llamarpc.com", "https://ethereum-rpc.publicnode.com"},
			Explorer:        "https://etherscan.io",
			StETH:           common.HexToAddress("0xae7ab96520DE3A18E5e111B5EaAb095312D7fE84"),
			WETH:            common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"),
			WithdrawalQueue: common.HexToAddress("0x889edc2edab5f40e902b864ad4d7ade8e412f9b1"),
			DefaultSwapper:  common.HexToAddress("0x404079604e7d565d068ac8e8eb213b4f05b174f4"),
		},
		{
			Name: "holesky", DisplayName: "Holesky", ChainID: 17000,
			RPCs:     []string{"https://ethereum-holesky-rpc.publicnode.com"},
			Explorer: "https://holesky.etherscan.io",
		},
		{
			Name: "sepolia", DisplayName: "Sepolia", ChainID: 11155111,
			RPCs:     []string{"https://ethereum-sepolia-rpc.publicnode.com", "https://sepolia.gateway.tenderly.co"},
			Explorer: "https://sepolia.etherscan.io",
		},
		{
			Name: "local", DisplayName: "Local (anvil)", ChainID: 31337,
			RPCs: []string{"http://127.0.0.1:8545"},
		},
	}
}
