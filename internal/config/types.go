package config

// Config holds all swapctl configuration.
type Config struct {
	DefaultNetwork string              `json:"default_network" mapstructure:"default_network"`
	DefaultWallet  string              `json:"default_wallet"  mapstructure:"default_wallet"`
	RPCAlgorithm   string              `json:"rpc_algorithm"   mapstructure:"rpc_algorithm"` // "fastest" | "round-robin" | "failover"
	RPCURL         string              `json:"rpc_url,omitempty" mapstructure:"rpc_url"`     // pins one endpoint, skips selection
	CustomRPCs     map[string][]string `json:"custom_rpcs"     mapstructure:"custom_rpcs"`

	// Contracts are the candidate swapper addresses, probed in order.
	Contracts []string `json:"contracts" mapstructure:"contracts"`

	// Address overrides for networks where the registry has none.
	StETH           string `json:"steth,omitempty"            mapstructure:"steth"`
	WETH            string `json:"weth,omitempty"             mapstructure:"weth"`
	WithdrawalQueue string `json:"withdrawal_queue,omitempty" mapstructure:"withdrawal_queue"`

	ServerAddr   string `json:"server_addr"   mapstructure:"server_addr"`
	LogFile      string `json:"log_file"      mapstructure:"log_file"`
	PollInterval int    `json:"poll_interval" mapstructure:"poll_interval"` // seconds
	AuthWindow   int    `json:"auth_window"   mapstructure:"auth_window"`   // seconds a signed authorization stays valid

	// internal: config dir path used for Save()
	configDir string
}
