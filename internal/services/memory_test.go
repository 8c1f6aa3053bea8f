package services

import (
	"context"
	"sync"

	"github.com/crownvote/pageant-backend/internal/models"
	"github.com/crownvote/pageant-backend/pkg/paygate"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// In-memory repository fakes. They return mongo.ErrNoDocuments for misses so
// the services see the same error surface as the real implementations, and
// they guard state with mutexes so concurrency tests are meaningful.

// txnStore lets memUnitOfWork snapshot a fake before a unit of work and
// restore it when the work fails, emulating transaction rollback.
type txnStore interface {
	snapshot() any
	restore(state any)
}

type memContestRepo struct {
	mu       sync.Mutex
	contests map[primitive.ObjectID]*models.Contest
}

func newMemContestRepo() *memContestRepo {
	return &memContestRepo{contests: make(map[primitive.ObjectID]*models.Contest)}
}

func (r *memContestRepo) Create(_ context.Context, contest *models.Contest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if contest.ID.IsZero() {
		contest.ID = primitive.NewObjectID()
	}
	cp := *contest
	r.contests[contest.ID] = &cp
	return nil
}

func (r *memContestRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Contest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	contest, ok := r.contests[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *contest
	return &cp, nil
}

func (r *memContestRepo) FindAll(_ context.Context, _, _ int) ([]*models.Contest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Contest, 0, len(r.contests))
	for _, contest := range r.contests {
		cp := *contest
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memContestRepo) Update(_ context.Context, contest *models.Contest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.contests[contest.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	cp := *contest
	r.contests[contest.ID] = &cp
	return nil
}

func (r *memContestRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.contests, id)
	return nil
}

func (r *memContestRepo) IncrementTotals(_ context.Context, id primitive.ObjectID, votes int, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	contest, ok := r.contests[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	contest.TotalVotes += int64(votes)
	contest.TotalAmount += amount
	return nil
}

func (r *memContestRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.contests)), nil
}

func (r *memContestRepo) snapshot() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make(map[primitive.ObjectID]*models.Contest, len(r.contests))
	for id, contest := range r.contests {
		v := *contest
		cp[id] = &v
	}
	return cp
}

func (r *memContestRepo) restore(state any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contests = state.(map[primitive.ObjectID]*models.Contest)
}

type memCandidateRepo struct {
	mu         sync.Mutex
	candidates map[primitive.ObjectID]*models.Candidate
}

func newMemCandidateRepo() *memCandidateRepo {
	return &memCandidateRepo{candidates: make(map[primitive.ObjectID]*models.Candidate)}
}

func (r *memCandidateRepo) Create(_ context.Context, candidate *models.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if candidate.ID.IsZero() {
		candidate.ID = primitive.NewObjectID()
	}
	cp := *candidate
	r.candidates[candidate.ID] = &cp
	return nil
}

func (r *memCandidateRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	candidate, ok := r.candidates[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *candidate
	return &cp, nil
}

func (r *memCandidateRepo) FindByContestID(_ context.Context, contestID primitive.ObjectID, _, _ int) ([]*models.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Candidate
	for _, candidate := range r.candidates {
		if candidate.ContestID == contestID {
			cp := *candidate
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memCandidateRepo) Update(_ context.Context, candidate *models.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.candidates[candidate.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	cp := *candidate
	r.candidates[candidate.ID] = &cp
	return nil
}

func (r *memCandidateRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.candidates, id)
	return nil
}

func (r *memCandidateRepo) IncrementTotals(_ context.Context, id primitive.ObjectID, votes int, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	candidate, ok := r.candidates[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	candidate.TotalVotes += int64(votes)
	candidate.TotalAmount += amount
	return nil
}

func (r *memCandidateRepo) snapshot() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make(map[primitive.ObjectID]*models.Candidate, len(r.candidates))
	for id, candidate := range r.candidates {
		v := *candidate
		cp[id] = &v
	}
	return cp
}

func (r *memCandidateRepo) restore(state any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.candidates = state.(map[primitive.ObjectID]*models.Candidate)
}

type memTxRepo struct {
	mu  sync.Mutex
	txs map[string]*models.PaymentTransaction
}

func newMemTxRepo() *memTxRepo {
	return &memTxRepo{txs: make(map[string]*models.PaymentTransaction)}
}

func (r *memTxRepo) Create(_ context.Context, tx *models.PaymentTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx.ID = primitive.NewObjectID()
	cp := *tx
	r.txs[tx.TransactionRef] = &cp
	return nil
}

func (r *memTxRepo) FindByRef(_ context.Context, ref string) (*models.PaymentTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txs[ref]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *tx
	return &cp, nil
}

func (r *memTxRepo) FindByContestID(_ context.Context, contestID primitive.ObjectID, _, _ int) ([]*models.PaymentTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PaymentTransaction
	for _, tx := range r.txs {
		if tx.ContestID == contestID {
			cp := *tx
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ClaimPending mirrors the conditional FindOneAndUpdate: the status check and
// the terminal write happen under one lock, so exactly one concurrent caller
// can win.
func (r *memTxRepo) ClaimPending(_ context.Context, ref string, status models.TransactionStatus, providerRef, providerPayload string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txs[ref]
	if !ok || tx.Status != models.TransactionStatusPending {
		return false, nil
	}
	tx.Status = status
	if providerRef != "" {
		tx.ProviderRef = providerRef
	}
	if providerPayload != "" {
		tx.ProviderPayload = providerPayload
	}
	return true, nil
}

func (r *memTxRepo) snapshot() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make(map[string]*models.PaymentTransaction, len(r.txs))
	for ref, tx := range r.txs {
		v := *tx
		cp[ref] = &v
	}
	return cp
}

func (r *memTxRepo) restore(state any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txs = state.(map[string]*models.PaymentTransaction)
}

type memVoteRepo struct {
	mu        sync.Mutex
	votes     []*models.Vote
	createErr error // returned once by CreateMany to simulate a storage failure
}

func newMemVoteRepo() *memVoteRepo {
	return &memVoteRepo{}
}

func (r *memVoteRepo) failNextCreate(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createErr = err
}

func (r *memVoteRepo) CreateMany(_ context.Context, votes []*models.Vote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		err := r.createErr
		r.createErr = nil
		return err
	}
	for _, v := range votes {
		cp := *v
		cp.ID = primitive.NewObjectID()
		r.votes = append(r.votes, &cp)
	}
	return nil
}

func (r *memVoteRepo) CountByTransactionRef(_ context.Context, ref string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, v := range r.votes {
		if v.TransactionRef == ref {
			n++
		}
	}
	return n, nil
}

func (r *memVoteRepo) CountByCandidateID(_ context.Context, candidateID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, v := range r.votes {
		if v.CandidateID == candidateID {
			n++
		}
	}
	return n, nil
}

func (r *memVoteRepo) TallyByContestID(_ context.Context, contestID primitive.ObjectID) ([]models.CandidateTally, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byCandidate := make(map[primitive.ObjectID]*models.CandidateTally)
	for _, v := range r.votes {
		if v.ContestID != contestID {
			continue
		}
		tally, ok := byCandidate[v.CandidateID]
		if !ok {
			tally = &models.CandidateTally{CandidateID: v.CandidateID}
			byCandidate[v.CandidateID] = tally
		}
		tally.Votes++
		tally.Amount += v.AmountShare
	}
	out := make([]models.CandidateTally, 0, len(byCandidate))
	for _, tally := range byCandidate {
		out = append(out, *tally)
	}
	return out, nil
}

func (r *memVoteRepo) snapshot() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]*models.Vote, len(r.votes))
	for i, v := range r.votes {
		vote := *v
		cp[i] = &vote
	}
	return cp
}

func (r *memVoteRepo) restore(state any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.votes = state.([]*models.Vote)
}

// sumSharesByRef is a test helper for counter-consistency assertions
func (r *memVoteRepo) sumSharesByRef(ref string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, v := range r.votes {
		if v.TransactionRef == ref {
			sum += v.AmountShare
		}
	}
	return sum
}

type memQuotaRepo struct {
	mu     sync.Mutex
	quotas map[string]*models.VoterQuota
}

func newMemQuotaRepo() *memQuotaRepo {
	return &memQuotaRepo{quotas: make(map[string]*models.VoterQuota)}
}

func quotaKey(contestID primitive.ObjectID, payer string) string {
	return contestID.Hex() + "|" + payer
}

func (r *memQuotaRepo) Find(_ context.Context, contestID primitive.ObjectID, payer string) (*models.VoterQuota, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	quota, ok := r.quotas[quotaKey(contestID, payer)]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *quota
	return &cp, nil
}

func (r *memQuotaRepo) IncrementConsumed(_ context.Context, contestID primitive.ObjectID, payer string, votes int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := quotaKey(contestID, payer)
	quota, ok := r.quotas[key]
	if !ok {
		quota = &models.VoterQuota{
			ID:            primitive.NewObjectID(),
			ContestID:     contestID,
			PayerIdentity: payer,
		}
		r.quotas[key] = quota
	}
	quota.VotesConsumed += votes
	return nil
}

func (r *memQuotaRepo) snapshot() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make(map[string]*models.VoterQuota, len(r.quotas))
	for key, quota := range r.quotas {
		v := *quota
		cp[key] = &v
	}
	return cp
}

func (r *memQuotaRepo) restore(state any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quotas = state.(map[string]*models.VoterQuota)
}

// memUnitOfWork serializes units of work the way the storage transaction
// serializes conflicting writers, and emulates rollback: when fn fails, every
// participating store is restored to its pre-transaction state.
type memUnitOfWork struct {
	mu     sync.Mutex
	stores []txnStore
}

func (u *memUnitOfWork) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	snapshots := make([]any, len(u.stores))
	for i, store := range u.stores {
		snapshots[i] = store.snapshot()
	}
	if err := fn(ctx); err != nil {
		for i, store := range u.stores {
			store.restore(snapshots[i])
		}
		return err
	}
	return nil
}

type fakeGateway struct {
	mu            sync.Mutex
	checkoutCalls int
	chargeOutcome string
}

func (g *fakeGateway) CreateCheckout(_ context.Context, req paygate.CheckoutRequest) (*paygate.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.checkoutCalls++
	return &paygate.CheckoutSession{
		PaymentURL:  "https://pay.example/checkout/" + req.TransactionRef,
		ProviderRef: "PRV-" + req.TransactionRef,
	}, nil
}

func (g *fakeGateway) VerifyCharge(_ context.Context, ref string) (*paygate.ChargeStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	outcome := g.chargeOutcome
	if outcome == "" {
		outcome = paygate.OutcomeSucceeded
	}
	return &paygate.ChargeStatus{
		TransactionRef: ref,
		ProviderRef:    "PRV-" + ref,
		Outcome:        outcome,
		RawPayload:     []byte(`{"status":"test"}`),
	}, nil
}
