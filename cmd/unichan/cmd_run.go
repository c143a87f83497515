package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/iov-one/unichan"
	"github.com/iov-one/unichan/app"
	"github.com/iov-one/unichan/errors"
	"github.com/iov-one/unichan/store/iavl"
	"github.com/iov-one/unichan/x/paychan"
	"github.com/tendermint/tendermint/libs/log"
)

func cmdRun(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Execute a script of ledger operations read from the input, one JSON object
per line, and write the outcome of each operation as one JSON line.

Supported operations:

  {"op": "fund", "caller": "0x..", "amount": "100"}
  {"op": "withdraw", "caller": "0x..", "voucher": {"updated_balance": "40", "signature": "0x.."}}
  {"op": "challenge", "caller": "0x.."}
  {"op": "defund", "caller": "0x.."}
  {"op": "time_left", "account": "0x.."}
  {"op": "balance", "account": "0x.."}
  {"op": "advance", "duration": "31s"}

The clock starts at the -start time and only moves on advance. Changes are
committed after every operation. Without -home all state is kept in memory.
With -home the state is stored on disk and the genesis is only loaded the
first time. Operations fail if -start is before the last committed block time.
`)
		fl.PrintDefaults()
	}
	var (
		genesisFl = fl.String("genesis", "genesis.json", "Path to the genesis file.")
		homeFl    = fl.String("home", "", "Directory to store the ledger state under. Empty to keep everything in memory.")
		startFl   = fl.String("start", "", "Initial time of the clock in RFC3339 format. Defaults to the current time.")
		logFl     = fl.String("log", "error", "Log level: debug, info, error or none.")
	)
	fl.Parse(args)

	logger, err := newLogger(*logFl)
	if err != nil {
		flagDie("invalid log level: %s", err)
	}
	start := time.Now().UTC()
	if *startFl != "" {
		start, err = time.Parse(time.RFC3339, *startFl)
		if err != nil {
			flagDie("invalid start time: %s", err)
		}
	}

	var db iavl.CommitStore
	if *homeFl == "" {
		db = iavl.MockCommitStore()
	} else {
		if err := os.MkdirAll(*homeFl, 0700); err != nil {
			return fmt.Errorf("cannot create home directory: %s", err)
		}
		db, err = iavl.NewCommitStore(*homeFl, "unichan")
		if err != nil {
			return fmt.Errorf("cannot open store: %s", err)
		}
	}
	defer db.Close()

	clock := &scriptClock{now: start}
	ledger, err := app.NewLedger(db, clock, logger)
	if err != nil {
		return fmt.Errorf("cannot create ledger: %s", err)
	}
	if ledger.ChainID() == "" {
		gen, err := app.LoadGenesis(*genesisFl)
		if err != nil {
			return err
		}
		if err := ledger.InitChain(gen); err != nil {
			return fmt.Errorf("cannot initialize chain: %s", err)
		}
		if _, err := ledger.Commit(); err != nil {
			return fmt.Errorf("cannot commit genesis: %s", err)
		}
	}

	return runScript(ledger, clock, input, output)
}

// scriptOp is a single line of the script.
type scriptOp struct {
	Op       string                `json:"op"`
	Caller   common.Address        `json:"caller"`
	Account  common.Address        `json:"account"`
	Amount   *math.HexOrDecimal256 `json:"amount"`
	Voucher  *paychan.Voucher      `json:"voucher"`
	Duration unichan.UnixDuration  `json:"duration"`
}

// scriptResult is the outcome of a single operation.
type scriptResult struct {
	Line  int               `json:"line"`
	Op    string            `json:"op"`
	Tags  map[string]string `json:"tags,omitempty"`
	Value string            `json:"value,omitempty"`
	Code  uint32            `json:"code,omitempty"`
	Error string            `json:"error,omitempty"`
}

func runScript(ledger *app.Ledger, clock *scriptClock, input io.Reader, output io.Writer) error {
	enc := json.NewEncoder(output)
	scanner := bufio.NewScanner(input)
	for line := 1; scanner.Scan(); line++ {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		var op scriptOp
		if err := json.Unmarshal([]byte(raw), &op); err != nil {
			return fmt.Errorf("line %d: cannot decode operation: %s", line, err)
		}

		res := scriptResult{Line: line, Op: op.Op}
		value, tags, err := execute(ledger, clock, op)
		if err != nil {
			// Operation failures are part of the outcome, not a
			// reason to stop the script.
			res.Code = errors.Code(err)
			res.Error = err.Error()
		} else {
			res.Value = value
			res.Tags = tags
		}
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("cannot write result: %s", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("cannot read script: %s", err)
	}
	return nil
}

func execute(ledger *app.Ledger, clock *scriptClock, op scriptOp) (string, map[string]string, error) {
	var msg unichan.Msg
	switch op.Op {
	case "advance":
		if op.Duration < 0 {
			return "", nil, errors.Wrap(errors.ErrInput, "negative duration")
		}
		return clock.advance(op.Duration.Duration()).Format(time.RFC3339), nil, nil
	case "time_left":
		left, err := ledger.TimeLeft(op.Account)
		if err != nil {
			return "", nil, err
		}
		return left.String(), nil, nil
	case "balance":
		amount, err := ledger.Balance(op.Account)
		if err != nil {
			return "", nil, err
		}
		return amount.String(), nil, nil
	case "fund":
		if op.Amount == nil {
			return "", nil, errors.Wrap(errors.ErrEmpty, "missing amount")
		}
		msg = &paychan.FundMsg{Amount: (*big.Int)(op.Amount)}
	case "withdraw":
		if op.Voucher == nil {
			return "", nil, errors.Wrap(errors.ErrEmpty, "missing voucher")
		}
		msg = &paychan.WithdrawMsg{Voucher: *op.Voucher}
	case "challenge":
		msg = &paychan.ChallengeMsg{}
	case "defund":
		msg = &paychan.DefundMsg{}
	default:
		return "", nil, errors.Wrapf(errors.ErrInput, "unknown operation %q", op.Op)
	}

	res, err := ledger.Deliver(app.NewTx(op.Caller, msg))
	if err != nil {
		return "", nil, err
	}
	if _, err := ledger.Commit(); err != nil {
		return "", nil, err
	}
	tags := make(map[string]string, len(res.Tags))
	for _, t := range res.Tags {
		tags[t.Key] = t.Value
	}
	return "", tags, nil
}

// scriptClock is moved only by the script.
type scriptClock struct {
	mu  sync.Mutex
	now time.Time
}

var _ app.Clock = (*scriptClock)(nil)

func (c *scriptClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *scriptClock) advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// newLogger returns a tendermint logger writing to stderr, filtered to
// the given level.
func newLogger(level string) (log.Logger, error) {
	if level == "none" {
		return log.NewNopLogger(), nil
	}
	opt, err := log.AllowLevel(level)
	if err != nil {
		return nil, err
	}
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stderr)).With("module", "unichan")
	return log.NewFilter(logger, opt), nil
}

// flagDie terminates the process because of an invalid flag value.
func flagDie(description string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, description+"\n", args...)
	os.Exit(2)
}
