package provider

import "encoding/json"

// NetworkInfo is the result of net_info.
type NetworkInfo struct {
	Listening bool              `json:"listening"`
	Listeners []string          `json:"listeners"`
	NPeers    string            `json:"n_peers"`
	Peers     []json.RawMessage `json:"peers"`
}

// Status is the result of status.
type Status struct {
	NodeInfo      NodeInfo      `json:"node_info"`
	SyncInfo      SyncInfo      `json:"sync_info"`
	ValidatorInfo ValidatorInfo `json:"validator_info"`
}

type NodeInfo struct {
	VersionSet []VersionInfo `json:"version_set"`
	NetAddress string        `json:"net_address"`
	Network    string        `json:"network"`
	Software   string        `json:"software"`
	Version    string        `json:"version"`
	Channels   string        `json:"channels"`
	Moniker    string        `json:"moniker"`
	Other      struct {
		TxIndex    string `json:"tx_index"`
		RPCAddress string `json:"rpc_address"`
	} `json:"other"`
}

type VersionInfo struct {
	Name     string `json:"Name"`
	Version  string `json:"Version"`
	Optional bool   `json:"Optional"`
}

type SyncInfo struct {
	LatestBlockHash   string `json:"latest_block_hash"`
	LatestAppHash     string `json:"latest_app_hash"`
	LatestBlockHeight string `json:"latest_block_height"`
	LatestBlockTime   string `json:"latest_block_time"`
	CatchingUp        bool   `json:"catching_up"`
}

type ValidatorInfo struct {
	Address     string     `json:"address"`
	PubKey      *PublicKey `json:"pub_key"`
	VotingPower string     `json:"voting_power"`
}

// PublicKey is an amino JSON encoded key.
type PublicKey struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// ConsensusParams is the result of consensus_params.
type ConsensusParams struct {
	BlockHeight     string `json:"block_height"`
	ConsensusParams struct {
		Block struct {
			MaxTxBytes    string `json:"MaxTxBytes"`
			MaxDataBytes  string `json:"MaxDataBytes"`
			MaxBlockBytes string `json:"MaxBlockBytes"`
			MaxGas        string `json:"MaxGas"`
			TimeIotaMS    string `json:"TimeIotaMS"`
		} `json:"Block"`
		Validator struct {
			PubKeyTypeURLs []string `json:"PubKeyTypeURLs"`
		} `json:"Validator"`
	} `json:"consensus_params"`
}

// ConsensusState is the result of consensus_state. The round state is kept
// loosely typed; its keys vary between node versions.
type ConsensusState struct {
	RoundState map[string]json.RawMessage `json:"round_state"`
}

// BlockInfo is the result of block.
type BlockInfo struct {
	BlockMeta BlockMeta `json:"block_meta"`
	Block     Block     `json:"block"`
}

type BlockMeta struct {
	BlockID BlockID     `json:"block_id"`
	Header  BlockHeader `json:"header"`
}

type Block struct {
	Header BlockHeader `json:"header"`
	Data   struct {
		// Txs holds the base64 encoded transactions; null for empty blocks.
		Txs []string `json:"txs"`
	} `json:"data"`
	LastCommit struct {
		BlockID    BlockID         `json:"block_id"`
		Precommits []PrecommitInfo `json:"precommits"`
	} `json:"last_commit"`
}

type BlockHeader struct {
	Version         string  `json:"version"`
	ChainID         string  `json:"chain_id"`
	Height          string  `json:"height"`
	Time            string  `json:"time"`
	NumTxs          string  `json:"num_txs"`
	TotalTxs        string  `json:"total_txs"`
	AppVersion      string  `json:"app_version"`
	LastBlockID     BlockID `json:"last_block_id"`
	LastCommitHash  *string `json:"last_commit_hash"`
	DataHash        *string `json:"data_hash"`
	ValidatorsHash  string  `json:"validators_hash"`
	ConsensusHash   string  `json:"consensus_hash"`
	AppHash         string  `json:"app_hash"`
	LastResultsHash *string `json:"last_results_hash"`
	ProposerAddress string  `json:"proposer_address"`
}

type BlockID struct {
	Hash  *string `json:"hash"`
	Parts struct {
		Total string  `json:"total"`
		Hash  *string `json:"hash"`
	} `json:"parts"`
}

// PrecommitInfo is one vote of a commit; null entries stand for absent votes.
type PrecommitInfo struct {
	Type             int     `json:"type"`
	Height           string  `json:"height"`
	Round            string  `json:"round"`
	BlockID          BlockID `json:"block_id"`
	Timestamp        string  `json:"timestamp"`
	ValidatorAddress string  `json:"validator_address"`
	ValidatorIndex   string  `json:"validator_index"`
	Signature        string  `json:"signature"`
}

// BlockResult is the result of block_results.
type BlockResult struct {
	Height  string `json:"height"`
	Results struct {
		DeliverTx  []DeliverTx `json:"deliver_tx"`
		EndBlock   EndBlock    `json:"end_block"`
		BeginBlock BeginBlock  `json:"begin_block"`
	} `json:"results"`
}

type DeliverTx struct {
	ResponseBase ABCIResponseBase `json:"ResponseBase"`
	GasWanted    string           `json:"GasWanted"`
	GasUsed      string           `json:"GasUsed"`
}

type EndBlock struct {
	ResponseBase     ABCIResponseBase `json:"ResponseBase"`
	ValidatorUpdates json.RawMessage  `json:"ValidatorUpdates"`
	ConsensusParams  json.RawMessage  `json:"ConsensusParams"`
	Events           json.RawMessage  `json:"Events"`
}

type BeginBlock struct {
	ResponseBase ABCIResponseBase `json:"ResponseBase"`
}

// BroadcastTxSyncResult is the result of broadcast_tx_sync.
type BroadcastTxSyncResult struct {
	Error map[string]json.RawMessage `json:"error"`
	Data  *string                    `json:"data"`
	Log   string                     `json:"Log"`
	Hash  string                     `json:"hash"`
}

// BroadcastTxCommitResult is the result of broadcast_tx_commit.
type BroadcastTxCommitResult struct {
	CheckTx   DeliverTx `json:"check_tx"`
	DeliverTx DeliverTx `json:"deliver_tx"`
	Hash      string    `json:"hash"`
	Height    string    `json:"height"`
}

// BroadcastMode selects how a transaction is submitted.
type BroadcastMode string

const (
	// BroadcastSync returns once the transaction passed CheckTx.
	BroadcastSync BroadcastMode = BroadcastTxSyncEndpoint
	// BroadcastCommit returns once the transaction is committed in a block.
	BroadcastCommit BroadcastMode = BroadcastTxCommitEndpoint
)

// ABCIInfo is the result of abci_info.
type ABCIInfo struct {
	Response struct {
		ResponseBase     ABCIResponseBase `json:"ResponseBase"`
		ABCIVersion      string           `json:"ABCIVersion"`
		AppVersion       string           `json:"AppVersion"`
		LastBlockHeight  string           `json:"LastBlockHeight"`
		LastBlockAppHash *string          `json:"LastBlockAppHash"`
	} `json:"response"`
}

// UnconfirmedTxs is the result of num_unconfirmed_txs and unconfirmed_txs.
type UnconfirmedTxs struct {
	Count      string   `json:"n_txs"`
	Total      string   `json:"total"`
	TotalBytes string   `json:"total_bytes"`
	Txs        []string `json:"txs"`
}

// Validators is the result of validators.
type Validators struct {
	BlockHeight string `json:"block_height"`
	Validators  []struct {
		Address          string     `json:"address"`
		PubKey           *PublicKey `json:"pub_key"`
		VotingPower      string     `json:"voting_power"`
		ProposerPriority string     `json:"proposer_priority"`
	} `json:"validators"`
}

// Genesis is the result of genesis. The document itself is chain specific.
type Genesis struct {
	Genesis json.RawMessage `json:"genesis"`
}
