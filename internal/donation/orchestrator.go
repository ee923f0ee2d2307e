package donation

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/Mohsinsiddi/bonded/internal/contract"
	"github.com/Mohsinsiddi/bonded/internal/logx"
	"github.com/Mohsinsiddi/bonded/internal/units"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Action names a user-initiated state change.
type Action string

const (
	ActionDonate     Action = "donate"
	ActionSell       Action = "sell"
	ActionSetCharity Action = "set-charity"
	ActionSweep      Action = "sweep"
)

// Confirmer asks the user a yes/no question before a transaction is built.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) { return f(ctx, prompt) }

// AlwaysConfirm accepts every prompt.
var AlwaysConfirm = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

// PendingAction exists only while one submission is in progress.
type PendingAction struct {
	ID        uuid.UUID
	Action    Action
	StartedAt time.Time
}

// Result describes a finished action. Snapshot is the refreshed state; it
// is nil only when the refresh itself failed.
type Result struct {
	ID       uuid.UUID
	Action   Action
	Prompt   string // confirmation text, if the action asked
	Declined bool
	TxHash   common.Hash
	Receipt  *types.Receipt
	Snapshot *DomainSnapshot
}

// SellQuote is the contract's simulated return for a sale.
type SellQuote struct {
	Amount        *big.Int
	Balance       *big.Int
	Supply        *big.Int
	Symbol        string
	FinalPrice    *big.Int
	RedeemableEth *big.Int
}

// Prompt is the confirmation text for the sale.
func (q SellQuote) Prompt() string {
	msg := fmt.Sprintf("You will receive %s ETH (%s ETH per %s) in return for %s %s. Are you sure?",
		units.FormatEther(q.RedeemableEth), units.FormatEther(q.FinalPrice), q.Symbol,
		units.FormatEther(q.Amount), q.Symbol)
	if q.Balance != nil && q.Amount.Cmp(q.Balance) > 0 {
		msg += fmt.Sprintf("\nWarning: your balance is only %s %s.", units.FormatEther(q.Balance), q.Symbol)
	}
	return msg
}

// SweepPrompt is the confirmation text for sweeping vault wei.
func SweepPrompt(vault *big.Int) string {
	return fmt.Sprintf("You will sweep the vault contract and the remaining %s ETH will be transferred to your account. Are you sure?",
		units.FormatEther(vault))
}

// Orchestrator runs the user actions against one session and keeps the
// store current.
type Orchestrator struct {
	session  *Session
	bindings *Bindings
	store    *Store
	gas      GasPolicy
	confirm  Confirmer
	log      zerolog.Logger

	mu      sync.Mutex
	pending *PendingAction // at most one action in flight
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

func WithGasPolicy(p GasPolicy) OrchestratorOption {
	return func(o *Orchestrator) { o.gas = p }
}

func WithConfirmer(c Confirmer) OrchestratorOption {
	return func(o *Orchestrator) { o.confirm = c }
}

func WithLogger(l zerolog.Logger) OrchestratorOption {
	return func(o *Orchestrator) { o.log = logx.Module(l, "orchestrator") }
}

// NewOrchestrator creates an orchestrator. Without a Confirmer every prompt
// is declined.
func NewOrchestrator(s *Session, b *Bindings, store *Store, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		session:  s,
		bindings: b,
		store:    store,
		gas:      DefaultGasPolicy(),
		confirm: ConfirmFunc(func(context.Context, string) (bool, error) {
			return false, nil
		}),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Store returns the snapshot store.
func (o *Orchestrator) Store() *Store { return o.store }

// Session returns the session the orchestrator acts for.
func (o *Orchestrator) Session() *Session { return o.session }

// Bindings returns the resolved contract handles.
func (o *Orchestrator) Bindings() *Bindings { return o.bindings }

// Load builds a full snapshot and publishes it. cause is recorded on the
// snapshot; empty means startup.
func (o *Orchestrator) Load(ctx context.Context, cause string) (*DomainSnapshot, error) {
	snap, err := BuildSnapshot(ctx, o.session, o.bindings)
	if err != nil {
		o.log.Error().Err(err).Msg("snapshot failed")
		return nil, err
	}
	if cause != "" {
		snap.Cause = cause
	}
	published := o.store.Publish(snap)
	o.log.Debug().Uint64("version", published.Version).Str("cause", published.Cause).Msg("snapshot published")
	return published, nil
}

// Refresh re-reads the moving balances and publishes the result. Without a
// prior snapshot it falls back to a full Load.
func (o *Orchestrator) Refresh(ctx context.Context, cause string) (*DomainSnapshot, error) {
	prior := o.store.Current()
	if prior == nil {
		return o.Load(ctx, cause)
	}
	return o.refreshWith(ctx, cause, prior.CharityAddress, prior.IsOwner)
}

func (o *Orchestrator) refreshWith(ctx context.Context, cause string, charity common.Address, isOwner bool) (*DomainSnapshot, error) {
	snap, err := Refresh(ctx, o.session, o.bindings, charity, isOwner)
	if err != nil {
		o.log.Error().Err(err).Str("cause", cause).Msg("refresh failed, keeping previous snapshot")
		return nil, err
	}
	snap.Cause = cause
	published := o.store.Publish(snap)
	o.log.Debug().Uint64("version", published.Version).Str("cause", cause).Msg("snapshot published")
	return published, nil
}

// Pending returns the action in flight, if any.
func (o *Orchestrator) Pending() []PendingAction {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pending == nil {
		return nil
	}
	return []PendingAction{*o.pending}
}

// Donate sends amount (decimal ETH) to the logic contract's donate().
func (o *Orchestrator) Donate(ctx context.Context, amount string) (*Result, error) {
	p, err := o.begin(ActionDonate)
	if err != nil {
		return nil, err
	}
	defer o.end(p)

	value, err := units.ParsePositiveEther(amount)
	if err != nil {
		return nil, err
	}
	res := &Result{ID: p.ID, Action: ActionDonate}
	if err := o.submit(ctx, p, res, value); err != nil {
		return res, err
	}
	return o.finish(ctx, res)
}

// QuoteSell asks the contract what selling amount (decimal tokens) would
// return at the current supply.
func (o *Orchestrator) QuoteSell(ctx context.Context, amount string) (*SellQuote, error) {
	value, err := units.ParsePositiveEther(amount)
	if err != nil {
		return nil, err
	}
	return o.quote(ctx, value)
}

func (o *Orchestrator) quote(ctx context.Context, value *big.Int) (*SellQuote, error) {
	r := reader{s: o.session, b: o.bindings}
	token := o.bindings.Token.Call

	balance, err := r.uint(ctx, token, FieldTokenBalance, "balanceOf", o.session.Account)
	if err != nil {
		return nil, err
	}
	supply, err := r.uint(ctx, token, FieldTokenSupply, "totalSupply")
	if err != nil {
		return nil, err
	}
	symbol := ""
	if cur := o.store.Current(); cur != nil {
		symbol = cur.TokenSymbol
	} else {
		out, err := o.bindings.Token.Call(ctx, o.session.Account, "symbol")
		if err != nil {
			return nil, &ReadError{Field: FieldSymbol, Err: err}
		}
		symbol, _ = one(out).(string)
	}

	out, err := o.bindings.Logic.Call(ctx, o.session.Account, "calculateReturn", value, supply)
	if err != nil {
		return nil, &ReadError{Field: FieldCalculate, Err: err}
	}
	if len(out) != 2 {
		return nil, &ReadError{Field: FieldCalculate, Err: fmt.Errorf("expected 2 outputs, got %d", len(out))}
	}
	price, ok1 := out[0].(*big.Int)
	eth, ok2 := out[1].(*big.Int)
	if !ok1 || !ok2 {
		return nil, &ReadError{Field: FieldCalculate, Err: fmt.Errorf("unexpected output types %T, %T", out[0], out[1])}
	}

	return &SellQuote{
		Amount:        value,
		Balance:       balance,
		Supply:        supply,
		Symbol:        symbol,
		FinalPrice:    price,
		RedeemableEth: eth,
	}, nil
}

// Sell quotes the sale, asks for confirmation and submits sell(amount).
func (o *Orchestrator) Sell(ctx context.Context, amount string) (*Result, error) {
	p, err := o.begin(ActionSell)
	if err != nil {
		return nil, err
	}
	defer o.end(p)

	value, err := units.ParsePositiveEther(amount)
	if err != nil {
		return nil, err
	}
	q, err := o.quote(ctx, value)
	if err != nil {
		return nil, err
	}

	res := &Result{ID: p.ID, Action: ActionSell, Prompt: q.Prompt()}
	ok, err := o.ask(ctx, p, res.Prompt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return o.declined(ctx, res)
	}

	if err := o.submit(ctx, p, res, nil, value); err != nil {
		return res, err
	}
	return o.finish(ctx, res)
}

// SetCharityAddress changes the charity and publishes a snapshot built
// around the address the contract reports afterwards.
func (o *Orchestrator) SetCharityAddress(ctx context.Context, addr string) (*Result, error) {
	p, err := o.begin(ActionSetCharity)
	if err != nil {
		return nil, err
	}
	defer o.end(p)

	cur, err := o.requireOwner()
	if err != nil {
		return nil, err
	}
	addr = strings.TrimSpace(addr)
	if !common.IsHexAddress(addr) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}

	res := &Result{ID: p.ID, Action: ActionSetCharity}
	if err := o.submit(ctx, p, res, nil, common.HexToAddress(addr)); err != nil {
		return res, err
	}

	r := reader{s: o.session, b: o.bindings}
	charity, err := r.address(ctx, o.bindings.Logic.Call, "charityAddress", FieldCharityAddress)
	if err != nil {
		o.log.Error().Err(err).Str("id", p.ID.String()).Msg("re-reading charity address failed")
		return res, err
	}
	snap, err := o.refreshWith(ctx, causeOf(res), charity, cur.IsOwner)
	if err != nil {
		return res, err
	}
	res.Snapshot = snap
	return res, nil
}

// SweepVault moves the vault's remaining ETH to the owner once no tokens
// remain.
func (o *Orchestrator) SweepVault(ctx context.Context) (*Result, error) {
	p, err := o.begin(ActionSweep)
	if err != nil {
		return nil, err
	}
	defer o.end(p)

	cur, err := o.requireOwner()
	if err != nil {
		return nil, err
	}
	if !cur.SweepEnabled() {
		return nil, ErrSweepDisabled
	}

	res := &Result{ID: p.ID, Action: ActionSweep, Prompt: SweepPrompt(cur.BondingVaultBalance)}
	ok, err := o.ask(ctx, p, res.Prompt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return o.declined(ctx, res)
	}

	if err := o.submit(ctx, p, res, nil); err != nil {
		return res, err
	}
	return o.finish(ctx, res)
}

// --- internal ---

func (o *Orchestrator) begin(a Action) (*PendingAction, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if cur := o.pending; cur != nil {
		o.log.Warn().Str("action", string(a)).Str("pending", string(cur.Action)).
			Str("pending_id", cur.ID.String()).Msg("submission rejected, action pending")
		return nil, fmt.Errorf("%s: %s in flight: %w", a, cur.Action, ErrActionPending)
	}
	p := &PendingAction{ID: uuid.New(), Action: a, StartedAt: time.Now()}
	o.pending = p
	o.log.Info().Str("action", string(a)).Str("id", p.ID.String()).Msg("action started")
	return p, nil
}

func (o *Orchestrator) end(p *PendingAction) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pending == p {
		o.pending = nil
	}
}

func (o *Orchestrator) requireOwner() (*DomainSnapshot, error) {
	cur := o.store.Current()
	if cur == nil {
		return nil, ErrNoSnapshot
	}
	if !cur.CanAdminister() {
		return nil, ErrNotOwner
	}
	return cur, nil
}

func (o *Orchestrator) ask(ctx context.Context, p *PendingAction, prompt string) (bool, error) {
	o.log.Debug().Str("id", p.ID.String()).Str("prompt", prompt).Msg("confirmation requested")
	ok, err := o.confirm.Confirm(ctx, prompt)
	if err != nil {
		return false, fmt.Errorf("confirmation: %w", err)
	}
	if !ok {
		o.log.Info().Str("action", string(p.Action)).Str("id", p.ID.String()).Msg("cancelled by user")
	}
	return ok, nil
}

// declined performs the idempotent refresh that follows a refused prompt.
func (o *Orchestrator) declined(ctx context.Context, res *Result) (*Result, error) {
	res.Declined = true
	snap, err := o.Refresh(ctx, string(res.Action)+" declined")
	if err != nil {
		return res, err
	}
	res.Snapshot = snap
	return res, nil
}

// submit encodes method args for the logic contract, broadcasts with the
// fixed gas policy and waits for the receipt.
func (o *Orchestrator) submit(ctx context.Context, p *PendingAction, res *Result, value *big.Int, args ...interface{}) error {
	method := logicMethod(p.Action)
	data, err := o.bindings.Logic.Pack(method, args...)
	if err != nil {
		return o.failed(p, &SubmissionError{Action: p.Action, Stage: StageEncode, Err: err})
	}

	req := contract.TxRequest{
		From:     o.session.Account,
		To:       o.bindings.Logic.Address,
		Value:    value,
		Data:     data,
		Gas:      o.gas.Limit(p.Action),
		GasPrice: o.gas.Price,
	}
	hash, err := o.session.Sender.Submit(ctx, req)
	if err != nil {
		return o.failed(p, &SubmissionError{Action: p.Action, Stage: StageSubmit, Err: err})
	}
	res.TxHash = hash
	o.log.Info().
		Str("id", p.ID.String()).
		Str("tx", hash.Hex()).
		Uint64("gas", req.Gas).
		Str("gas_price", req.GasPrice.String()).
		Msg("transaction submitted")

	receipt, err := o.session.Sender.WaitMined(ctx, hash)
	res.Receipt = receipt
	if err != nil {
		return o.failed(p, &SubmissionError{Action: p.Action, Stage: StageConfirm, TxHash: hash, Err: err})
	}
	o.log.Info().
		Str("id", p.ID.String()).
		Str("tx", hash.Hex()).
		Uint64("block", receipt.BlockNumber.Uint64()).
		Uint64("gas_used", receipt.GasUsed).
		Msg("transaction confirmed")
	return nil
}

func (o *Orchestrator) failed(p *PendingAction, err *SubmissionError) error {
	o.log.Error().Err(err).Str("id", p.ID.String()).Str("stage", err.Stage).Msg("action failed")
	return err
}

// finish refreshes after a confirmed transaction.
func (o *Orchestrator) finish(ctx context.Context, res *Result) (*Result, error) {
	snap, err := o.Refresh(ctx, causeOf(res))
	if err != nil {
		return res, err
	}
	res.Snapshot = snap
	return res, nil
}

func causeOf(res *Result) string {
	return string(res.Action) + " " + res.TxHash.Hex()
}

func logicMethod(a Action) string {
	switch a {
	case ActionDonate:
		return "donate"
	case ActionSell:
		return "sell"
	case ActionSetCharity:
		return "setCharityAddress"
	case ActionSweep:
		return "sweepVault"
	}
	return string(a)
}
