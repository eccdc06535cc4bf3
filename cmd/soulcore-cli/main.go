// Command soulcore-cli drives the NILE economic core directly against a
// local data directory: token creation, curve trades, oracle reporting, and
// treasury withdrawals, against a LevelDB-backed store (an in-memory store
// when no data directory is configured). It mirrors
// cmd/nhb-cli/main.go's os.Args-based subcommand dispatch, collapsed to a
// single binary since this core has no separate RPC-serving node to talk to.
package main

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"os"
	"strconv"

	"github.com/ethereum/go-ethereum/common"

	"github.com/nilecore/soulcore/curve"
	"github.com/nilecore/soulcore/factory"
	"github.com/nilecore/soulcore/internal/config"
	"github.com/nilecore/soulcore/internal/logging"
	"github.com/nilecore/soulcore/oracle"
	"github.com/nilecore/soulcore/personid"
	"github.com/nilecore/soulcore/router"
	"github.com/nilecore/soulcore/state/bank"
	"github.com/nilecore/soulcore/storage"
	"github.com/nilecore/soulcore/store"
	"github.com/nilecore/soulcore/token"
	"github.com/nilecore/soulcore/treasury"
)

const configPath = "soulcore.toml"

// app bundles every wired engine a subcommand might need.
type app struct {
	cfg     *config.Config
	ledger  *bank.Ledger
	token   *token.Engine
	treas   *treasury.Engine
	curve   *curve.Engine
	oracle  *oracle.Engine
	factory *factory.Engine
	router  *router.Engine
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	logging.Setup("soulcore-cli", cfg.Env, logging.Options{LogFile: cfg.LogFile})

	a, err := newApp(cfg)
	if err != nil {
		fmt.Printf("Error initializing core: %v\n", err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "create-token":
		a.cmdCreateToken(os.Args[2:])
	case "fund":
		a.cmdFund(os.Args[2:])
	case "buy":
		a.cmdBuy(os.Args[2:])
	case "sell":
		a.cmdSell(os.Args[2:])
	case "quote-buy":
		a.cmdQuoteBuy(os.Args[2:])
	case "quote-sell":
		a.cmdQuoteSell(os.Args[2:])
	case "authorize-agent":
		a.cmdAuthorizeAgent(os.Args[2:])
	case "submit-report":
		a.cmdSubmitReport(os.Args[2:])
	case "vote":
		a.cmdVote(os.Args[2:])
	case "creator-withdraw":
		a.cmdCreatorWithdraw(os.Args[2:])
	case "protocol-withdraw":
		a.cmdProtocolWithdraw(os.Args[2:])
	case "balance":
		a.cmdBalance(os.Args[2:])
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
	}
}

func printUsage() {
	fmt.Println("Usage: soulcore-cli <command> [args]")
	fmt.Println("Commands:")
	fmt.Println("  create-token <person_id> <name> <symbol> <creator_addr>")
	fmt.Println("  fund <addr> <coin_amount>")
	fmt.Println("  buy <person_id> <buyer_addr> <coin_in> <min_tokens_out>")
	fmt.Println("  sell <person_id> <seller_addr> <token_amount> <min_coin_out>")
	fmt.Println("  quote-buy <person_id> <coin_in>")
	fmt.Println("  quote-sell <person_id> <token_amount>")
	fmt.Println("  authorize-agent <agent_addr>")
	fmt.Println("  submit-report <agent_addr> <person_id> <event_type> <headline> <impact_score>")
	fmt.Println("  vote <agent_addr> <report_id_hex> <approve|reject>")
	fmt.Println("  creator-withdraw <creator_addr>")
	fmt.Println("  protocol-withdraw")
	fmt.Println("  balance <addr>")
}

func newApp(cfg *config.Config) (*app, error) {
	var db storage.Database
	if cfg.DataDir == "" || cfg.DataDir == ":memory:" {
		db = storage.NewMemDB()
	} else {
		ldb, err := storage.NewLevelDB(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open leveldb at %s: %w", cfg.DataDir, err)
		}
		db = ldb
	}

	ledger := bank.NewLedger()

	tokenKV := store.Open(db, "token")
	treasuryKV := store.Open(db, "treasury")
	curveKV := store.Open(db, "curve")
	oracleKV := store.Open(db, "oracle")
	factoryKV := store.Open(db, "factory")

	tokenEngine := token.NewEngine(token.NewStorage(tokenKV))

	owner := common.HexToAddress(cfg.OwnerAddress)
	protocolWallet := common.HexToAddress(cfg.ProtocolWallet)
	treasuryEngine := treasury.NewEngine(treasury.NewStorage(treasuryKV, ledger.Send), owner)
	if err := treasuryEngine.SetProtocolWallet(owner, protocolWallet); err != nil {
		return nil, fmt.Errorf("set protocol wallet: %w", err)
	}

	curveEngine := curve.NewEngine(curve.NewStorage(curveKV, ledger.Send), tokenEngine, treasuryEngine)

	oracleEngine := oracle.NewEngine(oracle.NewStorage(oracleKV), owner)

	factoryAddr := common.HexToAddress(cfg.FactoryAddress)
	defaultThreshold := new(big.Int).Mul(big.NewInt(int64(cfg.DefaultGraduationCoins)), coinScale())
	factoryEngine := factory.NewEngine(factory.NewStorage(factoryKV), tokenEngine, curveEngine, factoryAddr, owner, defaultThreshold)

	routerAddr := common.HexToAddress(cfg.RouterAddress)
	routerEngine := router.NewEngine(ledger, tokenEngine, curveEngine, routerAddr)

	return &app{
		cfg:     cfg,
		ledger:  ledger,
		token:   tokenEngine,
		treas:   treasuryEngine,
		curve:   curveEngine,
		oracle:  oracleEngine,
		factory: factoryEngine,
		router:  routerEngine,
	}, nil
}

// coinScale is the wad-equivalent scale for whole native-coin units.
func coinScale() *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
}

func parsePersonID(s string) personid.ID {
	id, err := personid.Parse(s)
	if err != nil {
		fmt.Printf("Error: invalid person_id %q: %v\n", s, err)
		os.Exit(1)
	}
	return id
}

func decodeReportID(s string) ([32]byte, error) {
	var id [32]byte
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("invalid report_id %q: %w", s, err)
	}
	if len(raw) != len(id) {
		return id, fmt.Errorf("report_id %q must be 32 bytes, got %d", s, len(raw))
	}
	copy(id[:], raw)
	return id, nil
}

func parseBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		fmt.Printf("Error: invalid integer %q\n", s)
		os.Exit(1)
	}
	return v
}

func (a *app) cmdCreateToken(args []string) {
	if len(args) < 4 {
		fmt.Println("Error: create-token requires <person_id> <name> <symbol> <creator_addr>")
		return
	}
	personID := parsePersonID(args[0])
	creator := common.HexToAddress(args[3])
	tokenAddr, curveAddr, err := a.factory.CreateSoulToken(creator, personID, args[1], args[2])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("token=%s curve=%s\n", tokenAddr.Hex(), curveAddr.Hex())
}

func (a *app) cmdFund(args []string) {
	if len(args) < 2 {
		fmt.Println("Error: fund requires <addr> <coin_amount>")
		return
	}
	addr := common.HexToAddress(args[0])
	a.ledger.Credit(addr, parseBig(args[1]))
	fmt.Printf("balance(%s)=%s\n", addr.Hex(), a.ledger.Balance(addr))
}

func (a *app) cmdBuy(args []string) {
	if len(args) < 4 {
		fmt.Println("Error: buy requires <person_id> <buyer_addr> <coin_in> <min_tokens_out>")
		return
	}
	personID := parsePersonID(args[0])
	buyer := common.HexToAddress(args[1])
	coinIn := parseBig(args[2])
	minTokensOut := parseBig(args[3])

	if err := a.ledger.Debit(buyer, coinIn); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	tokensOut, err := a.router.Buy(buyer, personID, coinIn, minTokensOut)
	if err != nil {
		a.ledger.Credit(buyer, coinIn)
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("tokens_out=%s\n", tokensOut)
}

func (a *app) cmdSell(args []string) {
	if len(args) < 4 {
		fmt.Println("Error: sell requires <person_id> <seller_addr> <token_amount> <min_coin_out>")
		return
	}
	personID := parsePersonID(args[0])
	seller := common.HexToAddress(args[1])
	tokenAmount := parseBig(args[2])
	minCoinOut := parseBig(args[3])

	if err := a.token.Approve(personID, seller, a.router.Address(), tokenAmount); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	coinOut, err := a.router.Sell(seller, personID, tokenAmount, minCoinOut)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("coin_out=%s\n", coinOut)
}

func (a *app) cmdQuoteBuy(args []string) {
	if len(args) < 2 {
		fmt.Println("Error: quote-buy requires <person_id> <coin_in>")
		return
	}
	quote, err := a.router.QuoteBuy(parsePersonID(args[0]), parseBig(args[1]))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("tokens_out=%s fee=%s source=%s\n", quote.AmountOut, quote.Fee, quote.Source)
}

func (a *app) cmdQuoteSell(args []string) {
	if len(args) < 2 {
		fmt.Println("Error: quote-sell requires <person_id> <token_amount>")
		return
	}
	quote, err := a.router.QuoteSell(parsePersonID(args[0]), parseBig(args[1]))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("coin_out=%s fee=%s source=%s\n", quote.AmountOut, quote.Fee, quote.Source)
}

func (a *app) cmdAuthorizeAgent(args []string) {
	if len(args) < 1 {
		fmt.Println("Error: authorize-agent requires <agent_addr>")
		return
	}
	owner := common.HexToAddress(a.cfg.OwnerAddress)
	agent := common.HexToAddress(args[0])
	if err := a.oracle.AuthorizeAgent(owner, agent); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("authorized agent=%s\n", agent.Hex())
}

func (a *app) cmdSubmitReport(args []string) {
	if len(args) < 5 {
		fmt.Println("Error: submit-report requires <agent_addr> <person_id> <event_type> <headline> <impact_score>")
		return
	}
	agent := common.HexToAddress(args[0])
	personID := parsePersonID(args[1])
	impact, err := strconv.Atoi(args[4])
	if err != nil {
		fmt.Printf("Error: invalid impact_score %q\n", args[4])
		return
	}
	report, err := a.oracle.SubmitReport(agent, personID, args[2], args[3], int32(impact))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("report_id=%x finalized=%v accepted=%v\n", report.ID, report.Finalized, report.Accepted)
}

func (a *app) cmdVote(args []string) {
	if len(args) < 3 {
		fmt.Println("Error: vote requires <agent_addr> <report_id_hex> <approve|reject>")
		return
	}
	agent := common.HexToAddress(args[0])
	id, err := decodeReportID(args[1])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	approve := args[2] == "approve"
	report, err := a.oracle.Vote(agent, id, approve)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("finalized=%v accepted=%v\n", report.Finalized, report.Accepted)
}

func (a *app) cmdCreatorWithdraw(args []string) {
	if len(args) < 1 {
		fmt.Println("Error: creator-withdraw requires <creator_addr>")
		return
	}
	creator := common.HexToAddress(args[0])
	if err := a.treas.CreatorWithdraw(creator); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("withdrawn to %s, new balance %s\n", creator.Hex(), a.ledger.Balance(creator))
}

func (a *app) cmdProtocolWithdraw(args []string) {
	owner := common.HexToAddress(a.cfg.OwnerAddress)
	if err := a.treas.ProtocolWithdraw(owner); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println("protocol withdrawal sent")
}

func (a *app) cmdBalance(args []string) {
	if len(args) < 1 {
		fmt.Println("Error: balance requires <addr>")
		return
	}
	addr := common.HexToAddress(args[0])
	fmt.Printf("balance(%s)=%s\n", addr.Hex(), a.ledger.Balance(addr))
}
