package provider

// Methods served by a Tendermint2 node.
const (
	HealthEndpoint            = "health"
	StatusEndpoint            = "status"
	NetInfoEndpoint           = "net_info"
	GenesisEndpoint           = "genesis"
	ConsensusParamsEndpoint   = "consensus_params"
	ConsensusStateEndpoint    = "consensus_state"
	CommitEndpoint            = "commit"
	ValidatorsEndpoint        = "validators"
	BlockEndpoint             = "block"
	BlockResultsEndpoint      = "block_results"
	BlockchainEndpoint        = "blockchain"
	NumUnconfirmedTxsEndpoint = "num_unconfirmed_txs"
	UnconfirmedTxsEndpoint    = "unconfirmed_txs"
	BroadcastTxAsyncEndpoint  = "broadcast_tx_async"
	BroadcastTxSyncEndpoint   = "broadcast_tx_sync"
	BroadcastTxCommitEndpoint = "broadcast_tx_commit"
	ABCIInfoEndpoint          = "abci_info"
	ABCIQueryEndpoint         = "abci_query"
)

// ABCI query paths.
const (
	balancesPath = "bank/balances/"
	accountsPath = "auth/accounts/"
	gasPricePath = "auth/gasprice"
	simulatePath = ".app/simulate"
)
