package commands

import (
	"context"
	"errors"
	"math"
	"testing"

	"admesh/contexts/protocol-core/conviction-governance/adapters/memory"
	"admesh/contexts/protocol-core/conviction-governance/domain/entities"
	domainerrors "admesh/contexts/protocol-core/conviction-governance/domain/errors"
	"admesh/contexts/protocol-core/conviction-governance/ports"
	"admesh/internal/shared/reentrancy"
)

type stubCampaigns struct {
	status           string
	remaining        uint64
	slashOnTerminate uint64
	activateCalls    int
	terminateCalls   int
}

func (c *stubCampaigns) GetCampaign(_ context.Context, campaignID uint64) (ports.CampaignView, error) {
	if c.status == "" {
		return ports.CampaignView{}, domainerrors.ErrCampaignNotFound
	}
	return ports.CampaignView{CampaignID: campaignID, Status: c.status, RemainingPlanck: c.remaining}, nil
}

func (c *stubCampaigns) Activate(_ context.Context, _ uint64) error {
	c.activateCalls++
	c.status = ports.CampaignStatusActive
	return nil
}

func (c *stubCampaigns) Terminate(_ context.Context, _ uint64) (uint64, error) {
	c.terminateCalls++
	c.status = ports.CampaignStatusTerminated
	return c.slashOnTerminate, nil
}

type stubTreasury struct {
	balances map[string]uint64
	failNext bool
}

var errTransferFailed = errors.New("transfer failed")

func (t *stubTreasury) Transfer(_ context.Context, from string, to string, amount uint64) error {
	if t.failNext {
		t.failNext = false
		return errTransferFailed
	}
	if t.balances[from] < amount {
		return errTransferFailed
	}
	t.balances[from] -= amount
	t.balances[to] += amount
	return nil
}

type stubClock struct {
	block uint64
}

func (c *stubClock) BlockNumber() uint64 { return c.block }

type governanceFixture struct {
	store     *memory.Store
	campaigns *stubCampaigns
	treasury  *stubTreasury
	clock     *stubClock
	vote      VoteUseCase
	rewards   RewardsUseCase
}

func newGovernanceFixture(t *testing.T) *governanceFixture {
	t.Helper()
	store := memory.NewStore()
	campaigns := &stubCampaigns{status: ports.CampaignStatusPending}
	treasury := &stubTreasury{balances: map[string]uint64{
		"voter-1":          10_000_000,
		"voter-2":          10_000_000,
		"rewards-operator": 10_000_000,
	}}
	clock := &stubClock{block: 5}
	guard := &reentrancy.Guard{}
	fixture := &governanceFixture{
		store:     store,
		campaigns: campaigns,
		treasury:  treasury,
		clock:     clock,
		vote: VoteUseCase{
			Votes:                store,
			Tallies:              store,
			FailedNays:           store,
			Campaigns:            campaigns,
			Treasury:             treasury,
			Clock:                clock,
			Outbox:               store,
			IDGen:                store,
			Guard:                guard,
			CustodyAccount:       "governance",
			BaseLockupBlocks:     10,
			MaxLockupBlocks:      1_000,
			ActivationThreshold:  1_000_000,
			TerminationThreshold: 2_000_000,
			MinReviewerStake:     100,
		},
		rewards: RewardsUseCase{
			Votes:                  store,
			Tallies:                store,
			PullLedger:             store,
			FailedNays:             store,
			Campaigns:              campaigns,
			Treasury:               treasury,
			Clock:                  clock,
			Outbox:                 store,
			IDGen:                  store,
			Guard:                  guard,
			CustodyAccount:         "governance",
			RewardsOperatorAccount: "rewards-operator",
		},
	}
	return fixture
}

func TestVoteAyeValidation(t *testing.T) {
	fixture := newGovernanceFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		cmd  VoteCommand
	}{
		{"empty voter", VoteCommand{Voter: "  ", CampaignID: 1, StakePlanck: 100}},
		{"zero stake", VoteCommand{Voter: "voter-1", CampaignID: 1, StakePlanck: 0}},
		{"conviction above max", VoteCommand{Voter: "voter-1", CampaignID: 1, StakePlanck: 100, Conviction: 7}},
	}
	for _, tc := range cases {
		if _, err := fixture.vote.VoteAye(ctx, tc.cmd); !errors.Is(err, domainerrors.ErrInvalidVoteInput) {
			t.Fatalf("%s: err = %v, want ErrInvalidVoteInput", tc.name, err)
		}
	}
	if fixture.treasury.balances["governance"] != 0 {
		t.Fatalf("invalid votes must not move stake, custody holds %d", fixture.treasury.balances["governance"])
	}
}

func TestVoteAyeRequiresPendingCampaign(t *testing.T) {
	fixture := newGovernanceFixture(t)
	fixture.campaigns.status = ports.CampaignStatusActive

	_, err := fixture.vote.VoteAye(context.Background(), VoteCommand{Voter: "voter-1", CampaignID: 1, StakePlanck: 500})
	if !errors.Is(err, domainerrors.ErrCampaignNotPending) {
		t.Fatalf("err = %v, want ErrCampaignNotPending", err)
	}
}

func TestVoteAyeUnknownCampaign(t *testing.T) {
	fixture := newGovernanceFixture(t)
	fixture.campaigns.status = ""

	_, err := fixture.vote.VoteAye(context.Background(), VoteCommand{Voter: "voter-1", CampaignID: 9, StakePlanck: 500})
	if !errors.Is(err, domainerrors.ErrCampaignNotFound) {
		t.Fatalf("err = %v, want ErrCampaignNotFound", err)
	}
}

func TestVoteAyeMovesStakeIntoCustodyAndLocks(t *testing.T) {
	fixture := newGovernanceFixture(t)
	ctx := context.Background()

	vote, err := fixture.vote.VoteAye(ctx, VoteCommand{Voter: "voter-1", CampaignID: 1, StakePlanck: 500, Conviction: 2})
	if err != nil {
		t.Fatalf("VoteAye: %v", err)
	}
	if vote.Direction != entities.VoteDirectionAye {
		t.Fatalf("direction = %q", vote.Direction)
	}
	// Cast at block 5 with base lockup 10: 5 + 10<<2.
	if vote.LockedUntilBlock != 45 {
		t.Fatalf("locked until %d, want 45", vote.LockedUntilBlock)
	}
	if fixture.treasury.balances["governance"] != 500 {
		t.Fatalf("custody holds %d, want 500", fixture.treasury.balances["governance"])
	}

	tally, found, err := fixture.store.GetTally(ctx, 1)
	if err != nil || !found {
		t.Fatalf("GetTally: found=%v err=%v", found, err)
	}
	if tally.AyeWeightPlanck != 2_000 {
		t.Fatalf("aye weight = %d, want 2000", tally.AyeWeightPlanck)
	}
	if tally.QualifyingAyeVoters != 1 {
		t.Fatalf("qualifying voters = %d, want 1", tally.QualifyingAyeVoters)
	}
	if tally.Activated {
		t.Fatal("tally activated below threshold")
	}
}

func TestVoteAyeBelowReviewerStakeDoesNotQualify(t *testing.T) {
	fixture := newGovernanceFixture(t)
	ctx := context.Background()

	if _, err := fixture.vote.VoteAye(ctx, VoteCommand{Voter: "voter-1", CampaignID: 1, StakePlanck: 99}); err != nil {
		t.Fatalf("VoteAye: %v", err)
	}
	tally, _, _ := fixture.store.GetTally(ctx, 1)
	if tally.QualifyingAyeVoters != 0 {
		t.Fatalf("qualifying voters = %d, want 0", tally.QualifyingAyeVoters)
	}
}

func TestVoteAyeRejectsDoubleVote(t *testing.T) {
	fixture := newGovernanceFixture(t)
	ctx := context.Background()

	if _, err := fixture.vote.VoteAye(ctx, VoteCommand{Voter: "voter-1", CampaignID: 1, StakePlanck: 500}); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if _, err := fixture.vote.VoteAye(ctx, VoteCommand{Voter: "voter-1", CampaignID: 1, StakePlanck: 500}); !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("second vote: err = %v, want ErrAlreadyVoted", err)
	}
}

func TestVoteAyeTransferFailureLeavesNoRecord(t *testing.T) {
	fixture := newGovernanceFixture(t)
	ctx := context.Background()
	fixture.treasury.failNext = true

	if _, err := fixture.vote.VoteAye(ctx, VoteCommand{Voter: "voter-1", CampaignID: 1, StakePlanck: 500}); !errors.Is(err, errTransferFailed) {
		t.Fatalf("err = %v, want transfer failure", err)
	}
	if _, found, _ := fixture.store.GetVote(ctx, 1, "voter-1"); found {
		t.Fatal("vote persisted despite failed stake transfer")
	}
	if _, found, _ := fixture.store.GetTally(ctx, 1); found {
		t.Fatal("tally written despite failed stake transfer")
	}
}

func TestVoteAyeActivationLatch(t *testing.T) {
	fixture := newGovernanceFixture(t)
	ctx := context.Background()

	if _, err := fixture.vote.VoteAye(ctx, VoteCommand{Voter: "voter-1", CampaignID: 1, StakePlanck: 600_000}); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if fixture.campaigns.activateCalls != 0 {
		t.Fatal("activated below threshold")
	}

	if _, err := fixture.vote.VoteAye(ctx, VoteCommand{Voter: "voter-2", CampaignID: 1, StakePlanck: 400_000}); err != nil {
		t.Fatalf("second vote: %v", err)
	}
	if fixture.campaigns.activateCalls != 1 {
		t.Fatalf("activate calls = %d, want 1", fixture.campaigns.activateCalls)
	}
	tally, _, _ := fixture.store.GetTally(ctx, 1)
	if !tally.Activated {
		t.Fatal("tally not latched activated")
	}

	// The campaign has left pending, so no further aye weight can accrue
	// and the latch can never fire twice.
	if _, err := fixture.vote.VoteAye(ctx, VoteCommand{Voter: "voter-3", CampaignID: 1, StakePlanck: 100}); !errors.Is(err, domainerrors.ErrCampaignNotPending) {
		t.Fatalf("post-activation vote: err = %v, want ErrCampaignNotPending", err)
	}
}

func TestVoteNayRequiresRunningCampaign(t *testing.T) {
	fixture := newGovernanceFixture(t)

	_, err := fixture.vote.VoteNay(context.Background(), VoteCommand{Voter: "voter-1", CampaignID: 1, StakePlanck: 500})
	if !errors.Is(err, domainerrors.ErrCampaignNotRunning) {
		t.Fatalf("err = %v, want ErrCampaignNotRunning", err)
	}
}

func TestVoteNayLockupUsesFailedNayHistory(t *testing.T) {
	fixture := newGovernanceFixture(t)
	ctx := context.Background()
	fixture.campaigns.status = ports.CampaignStatusActive
	if _, err := fixture.store.IncrementFailedNay(ctx, "voter-1"); err != nil {
		t.Fatalf("IncrementFailedNay: %v", err)
	}
	if _, err := fixture.store.IncrementFailedNay(ctx, "voter-1"); err != nil {
		t.Fatalf("IncrementFailedNay: %v", err)
	}

	vote, err := fixture.vote.VoteNay(ctx, VoteCommand{Voter: "voter-1", CampaignID: 1, StakePlanck: 500, Conviction: 1})
	if err != nil {
		t.Fatalf("VoteNay: %v", err)
	}
	// Block 5 + (10<<1 + 10<<2) with two resolved failed nays.
	if vote.LockedUntilBlock != 65 {
		t.Fatalf("locked until %d, want 65", vote.LockedUntilBlock)
	}
}

func TestVoteNayTerminationLatch(t *testing.T) {
	fixture := newGovernanceFixture(t)
	ctx := context.Background()
	fixture.campaigns.status = ports.CampaignStatusActive
	fixture.campaigns.slashOnTerminate = 777

	if _, err := fixture.vote.VoteNay(ctx, VoteCommand{Voter: "voter-1", CampaignID: 1, StakePlanck: 2_000_000}); err != nil {
		t.Fatalf("VoteNay: %v", err)
	}
	if fixture.campaigns.terminateCalls != 1 {
		t.Fatalf("terminate calls = %d, want 1", fixture.campaigns.terminateCalls)
	}
	tally, _, _ := fixture.store.GetTally(ctx, 1)
	if !tally.Terminated {
		t.Fatal("tally not latched terminated")
	}
	if tally.TerminationBlock != 5 {
		t.Fatalf("termination block = %d, want 5", tally.TerminationBlock)
	}
	if tally.SlashPoolPlanck != 777 {
		t.Fatalf("slash pool = %d, want 777", tally.SlashPoolPlanck)
	}

	if _, err := fixture.vote.VoteNay(ctx, VoteCommand{Voter: "voter-2", CampaignID: 1, StakePlanck: 100}); !errors.Is(err, domainerrors.ErrCampaignNotRunning) {
		t.Fatalf("post-termination vote: err = %v, want ErrCampaignNotRunning", err)
	}
}

func TestDistributeSlashRewardsRequiresTermination(t *testing.T) {
	fixture := newGovernanceFixture(t)

	err := fixture.rewards.DistributeSlashRewards(context.Background(), 1)
	if !errors.Is(err, domainerrors.ErrCampaignNotTerminated) {
		t.Fatalf("err = %v, want ErrCampaignNotTerminated", err)
	}
}

func TestDistributeSlashRewardsProportionalToNayWeight(t *testing.T) {
	fixture := newGovernanceFixture(t)
	ctx := context.Background()

	seedVote := func(voter string, direction entities.VoteDirection, stake uint64, conviction uint8) {
		t.Helper()
		if err := fixture.store.PutVote(ctx, entities.VoteRecord{
			CampaignID:  1,
			Voter:       voter,
			Direction:   direction,
			StakePlanck: stake,
			Conviction:  conviction,
		}); err != nil {
			t.Fatalf("PutVote: %v", err)
		}
	}
	seedVote("voter-1", entities.VoteDirectionNay, 100, 0) // weight 100
	seedVote("voter-2", entities.VoteDirectionNay, 150, 1) // weight 300
	seedVote("voter-3", entities.VoteDirectionAye, 500, 6) // excluded
	if err := fixture.store.PutTally(ctx, entities.CampaignVote{
		CampaignID:      1,
		Terminated:      true,
		SlashPoolPlanck: 1_000,
	}); err != nil {
		t.Fatalf("PutTally: %v", err)
	}

	if err := fixture.rewards.DistributeSlashRewards(ctx, 1); err != nil {
		t.Fatalf("DistributeSlashRewards: %v", err)
	}

	wantShares := map[string]uint64{"voter-1": 250, "voter-2": 750, "voter-3": 0}
	for voter, want := range wantShares {
		entry, _, err := fixture.store.GetEntry(ctx, 1, voter)
		if err != nil {
			t.Fatalf("GetEntry %s: %v", voter, err)
		}
		if entry.ClaimableSlashPlanck != want {
			t.Fatalf("%s claimable = %d, want %d", voter, entry.ClaimableSlashPlanck, want)
		}
	}
}

func TestDistributeSlashRewardsSoleNayVoterTakesWholePool(t *testing.T) {
	fixture := newGovernanceFixture(t)
	ctx := context.Background()

	if err := fixture.store.PutVote(ctx, entities.VoteRecord{
		CampaignID:  1,
		Voter:       "voter-1",
		Direction:   entities.VoteDirectionNay,
		StakePlanck: 1_000,
		Conviction:  3,
	}); err != nil {
		t.Fatalf("PutVote: %v", err)
	}
	if err := fixture.store.PutTally(ctx, entities.CampaignVote{
		CampaignID:      1,
		Terminated:      true,
		SlashPoolPlanck: 123_456_789,
	}); err != nil {
		t.Fatalf("PutTally: %v", err)
	}

	if err := fixture.rewards.DistributeSlashRewards(ctx, 1); err != nil {
		t.Fatalf("DistributeSlashRewards: %v", err)
	}
	entry, _, _ := fixture.store.GetEntry(ctx, 1, "voter-1")
	if entry.ClaimableSlashPlanck != 123_456_789 {
		t.Fatalf("claimable = %d, want the whole pool", entry.ClaimableSlashPlanck)
	}
}

func TestMulDivLeavesOnlyRoundingDust(t *testing.T) {
	// Three equal weights over a pool that does not divide evenly.
	total := uint64(3)
	pool := uint64(1_000_000_000_000_000_001)
	var distributed uint64
	for i := 0; i < 3; i++ {
		distributed += mulDiv(pool, 1, total)
	}
	if distributed > pool {
		t.Fatalf("distributed %d exceeds pool %d", distributed, pool)
	}
	if pool-distributed >= total {
		t.Fatalf("dust %d not below weight count %d", pool-distributed, total)
	}
}

func seedMaturedNayWithSlash(t *testing.T, fixture *governanceFixture, claimable uint64) {
	t.Helper()
	ctx := context.Background()
	if err := fixture.store.PutVote(ctx, entities.VoteRecord{
		CampaignID:       1,
		Voter:            "voter-1",
		Direction:        entities.VoteDirectionNay,
		StakePlanck:      500,
		LockedUntilBlock: 4,
	}); err != nil {
		t.Fatalf("PutVote: %v", err)
	}
	if err := fixture.store.PutEntry(ctx, entities.PullLedgerEntry{
		CampaignID:           1,
		Voter:                "voter-1",
		ClaimableSlashPlanck: claimable,
	}); err != nil {
		t.Fatalf("PutEntry: %v", err)
	}
	fixture.treasury.balances["governance"] = claimable + 500
}

func TestClaimSlashRewardPaysOutOnce(t *testing.T) {
	fixture := newGovernanceFixture(t)
	ctx := context.Background()
	seedMaturedNayWithSlash(t, fixture, 400)
	voterBefore := fixture.treasury.balances["voter-1"]

	amount, err := fixture.rewards.ClaimSlashReward(ctx, "voter-1", 1)
	if err != nil {
		t.Fatalf("ClaimSlashReward: %v", err)
	}
	if amount != 400 {
		t.Fatalf("claimed %d, want 400", amount)
	}
	if got := fixture.treasury.balances["voter-1"]; got != voterBefore+400 {
		t.Fatalf("voter balance = %d, want %d", got, voterBefore+400)
	}

	if _, err := fixture.rewards.ClaimSlashReward(ctx, "voter-1", 1); !errors.Is(err, domainerrors.ErrNothingToClaim) {
		t.Fatalf("second claim: err = %v, want ErrNothingToClaim", err)
	}
}

func TestClaimSlashRewardBeforeLockMaturity(t *testing.T) {
	fixture := newGovernanceFixture(t)
	seedMaturedNayWithSlash(t, fixture, 400)
	fixture.clock.block = 3

	_, err := fixture.rewards.ClaimSlashReward(context.Background(), "voter-1", 1)
	if !errors.Is(err, domainerrors.ErrLockNotMatured) {
		t.Fatalf("err = %v, want ErrLockNotMatured", err)
	}
}

func TestClaimSlashRewardWithoutVote(t *testing.T) {
	fixture := newGovernanceFixture(t)

	_, err := fixture.rewards.ClaimSlashReward(context.Background(), "voter-1", 1)
	if !errors.Is(err, domainerrors.ErrVoteNotFound) {
		t.Fatalf("err = %v, want ErrVoteNotFound", err)
	}
}

func TestClaimSlashRewardRestoresBalanceOnTransferFailure(t *testing.T) {
	fixture := newGovernanceFixture(t)
	ctx := context.Background()
	seedMaturedNayWithSlash(t, fixture, 400)
	fixture.treasury.failNext = true

	if _, err := fixture.rewards.ClaimSlashReward(ctx, "voter-1", 1); !errors.Is(err, errTransferFailed) {
		t.Fatalf("err = %v, want transfer failure", err)
	}
	entry, _, _ := fixture.store.GetEntry(ctx, 1, "voter-1")
	if entry.ClaimableSlashPlanck != 400 {
		t.Fatalf("claimable after failed transfer = %d, want 400", entry.ClaimableSlashPlanck)
	}

	if amount, err := fixture.rewards.ClaimSlashReward(ctx, "voter-1", 1); err != nil || amount != 400 {
		t.Fatalf("retry claim: amount=%d err=%v", amount, err)
	}
}

func TestClaimRejectsReentrantCall(t *testing.T) {
	fixture := newGovernanceFixture(t)
	seedMaturedNayWithSlash(t, fixture, 400)

	if err := fixture.rewards.Guard.Enter(); err != nil {
		t.Fatalf("Enter: %v", err)
	}
	defer fixture.rewards.Guard.Exit()

	if _, err := fixture.rewards.ClaimSlashReward(context.Background(), "voter-1", 1); !errors.Is(err, reentrancy.ErrReentrantCall) {
		t.Fatalf("err = %v, want ErrReentrantCall", err)
	}
}

func TestVoteRejectsReentrantCall(t *testing.T) {
	fixture := newGovernanceFixture(t)

	if err := fixture.vote.Guard.Enter(); err != nil {
		t.Fatalf("Enter: %v", err)
	}
	defer fixture.vote.Guard.Exit()

	if _, err := fixture.vote.VoteAye(context.Background(), VoteCommand{Voter: "voter-1", CampaignID: 1, StakePlanck: 500}); !errors.Is(err, reentrancy.ErrReentrantCall) {
		t.Fatalf("aye: err = %v, want ErrReentrantCall", err)
	}
	if _, err := fixture.vote.VoteNay(context.Background(), VoteCommand{Voter: "voter-1", CampaignID: 1, StakePlanck: 500}); !errors.Is(err, reentrancy.ErrReentrantCall) {
		t.Fatalf("nay: err = %v, want ErrReentrantCall", err)
	}
}

func TestVoteNayWithShiftedOutStakeStillTerminates(t *testing.T) {
	fixture := newGovernanceFixture(t)
	ctx := context.Background()
	fixture.campaigns.status = ports.CampaignStatusActive

	// 2^58 planck at conviction 6 shifts the top bit out of uint64. The
	// weight must saturate, not wrap to zero and suppress the latch.
	fixture.treasury.balances["whale-1"] = 1 << 58
	if _, err := fixture.vote.VoteNay(ctx, VoteCommand{Voter: "whale-1", CampaignID: 1, StakePlanck: 1 << 58, Conviction: 6}); err != nil {
		t.Fatalf("VoteNay: %v", err)
	}

	tally, _, _ := fixture.store.GetTally(ctx, 1)
	if tally.NayWeightPlanck != math.MaxUint64 {
		t.Fatalf("nay weight = %d, want saturation at MaxUint64", tally.NayWeightPlanck)
	}
	if !tally.Terminated || fixture.campaigns.terminateCalls != 1 {
		t.Fatalf("terminated=%v calls=%d, want the termination latch to fire", tally.Terminated, fixture.campaigns.terminateCalls)
	}
}

func TestCreditAyeRewardOperatorOnly(t *testing.T) {
	fixture := newGovernanceFixture(t)

	err := fixture.rewards.CreditAyeReward(context.Background(), "voter-1", 1, "voter-1", 100)
	if !errors.Is(err, domainerrors.ErrUnauthorizedCaller) {
		t.Fatalf("err = %v, want ErrUnauthorizedCaller", err)
	}
}

func TestCreditAyeRewardRequiresConcludedCampaign(t *testing.T) {
	fixture := newGovernanceFixture(t)
	fixture.campaigns.status = ports.CampaignStatusActive

	err := fixture.rewards.CreditAyeReward(context.Background(), "rewards-operator", 1, "voter-1", 100)
	if !errors.Is(err, domainerrors.ErrCampaignNotConcluded) {
		t.Fatalf("err = %v, want ErrCampaignNotConcluded", err)
	}
}

func TestCreditAyeRewardRequiresAyeVote(t *testing.T) {
	fixture := newGovernanceFixture(t)
	ctx := context.Background()
	fixture.campaigns.status = ports.CampaignStatusCompleted
	if err := fixture.store.PutVote(ctx, entities.VoteRecord{
		CampaignID: 1,
		Voter:      "voter-1",
		Direction:  entities.VoteDirectionNay,
	}); err != nil {
		t.Fatalf("PutVote: %v", err)
	}

	err := fixture.rewards.CreditAyeReward(ctx, "rewards-operator", 1, "voter-1", 100)
	if !errors.Is(err, domainerrors.ErrAyeVoteRequired) {
		t.Fatalf("err = %v, want ErrAyeVoteRequired", err)
	}
}

func TestCreditAndClaimAyeReward(t *testing.T) {
	fixture := newGovernanceFixture(t)
	ctx := context.Background()
	fixture.campaigns.status = ports.CampaignStatusCompleted
	if err := fixture.store.PutVote(ctx, entities.VoteRecord{
		CampaignID:       1,
		Voter:            "voter-1",
		Direction:        entities.VoteDirectionAye,
		StakePlanck:      500,
		LockedUntilBlock: 4,
	}); err != nil {
		t.Fatalf("PutVote: %v", err)
	}

	if err := fixture.rewards.CreditAyeReward(ctx, "rewards-operator", 1, "voter-1", 2_500); err != nil {
		t.Fatalf("CreditAyeReward: %v", err)
	}
	// The credit is funded by the operator at submission time.
	if got := fixture.treasury.balances["governance"]; got != 2_500 {
		t.Fatalf("custody holds %d, want 2500", got)
	}

	amount, err := fixture.rewards.ClaimAyeReward(ctx, "voter-1", 1)
	if err != nil {
		t.Fatalf("ClaimAyeReward: %v", err)
	}
	if amount != 2_500 {
		t.Fatalf("claimed %d, want 2500", amount)
	}
	if got := fixture.treasury.balances["governance"]; got != 0 {
		t.Fatalf("custody holds %d after claim, want 0", got)
	}
}

func TestWithdrawStakeReturnsStakeOnce(t *testing.T) {
	fixture := newGovernanceFixture(t)
	ctx := context.Background()
	seedMaturedNayWithSlash(t, fixture, 0)
	voterBefore := fixture.treasury.balances["voter-1"]

	amount, err := fixture.rewards.WithdrawStake(ctx, "voter-1", 1)
	if err != nil {
		t.Fatalf("WithdrawStake: %v", err)
	}
	if amount != 500 {
		t.Fatalf("withdrew %d, want 500", amount)
	}
	if got := fixture.treasury.balances["voter-1"]; got != voterBefore+500 {
		t.Fatalf("voter balance = %d, want %d", got, voterBefore+500)
	}

	if _, err := fixture.rewards.WithdrawStake(ctx, "voter-1", 1); !errors.Is(err, domainerrors.ErrNothingToClaim) {
		t.Fatalf("second withdrawal: err = %v, want ErrNothingToClaim", err)
	}
	// The emptied record still blocks a second vote.
	if _, found, _ := fixture.store.GetVote(ctx, 1, "voter-1"); !found {
		t.Fatal("vote record removed by stake withdrawal")
	}
}

func TestWithdrawStakeRestoresStakeOnTransferFailure(t *testing.T) {
	fixture := newGovernanceFixture(t)
	ctx := context.Background()
	seedMaturedNayWithSlash(t, fixture, 0)
	fixture.treasury.failNext = true

	if _, err := fixture.rewards.WithdrawStake(ctx, "voter-1", 1); !errors.Is(err, errTransferFailed) {
		t.Fatalf("err = %v, want transfer failure", err)
	}
	vote, _, _ := fixture.store.GetVote(ctx, 1, "voter-1")
	if vote.StakePlanck != 500 {
		t.Fatalf("stake after failed transfer = %d, want 500", vote.StakePlanck)
	}
}

func TestWithdrawStakeBeforeLockMaturity(t *testing.T) {
	fixture := newGovernanceFixture(t)
	seedMaturedNayWithSlash(t, fixture, 0)
	fixture.clock.block = 3

	_, err := fixture.rewards.WithdrawStake(context.Background(), "voter-1", 1)
	if !errors.Is(err, domainerrors.ErrLockNotMatured) {
		t.Fatalf("err = %v, want ErrLockNotMatured", err)
	}
}

func TestResolveFailedNay(t *testing.T) {
	fixture := newGovernanceFixture(t)
	ctx := context.Background()
	fixture.campaigns.status = ports.CampaignStatusCompleted
	if err := fixture.store.PutVote(ctx, entities.VoteRecord{
		CampaignID: 1,
		Voter:      "voter-1",
		Direction:  entities.VoteDirectionNay,
	}); err != nil {
		t.Fatalf("PutVote: %v", err)
	}

	count, err := fixture.rewards.ResolveFailedNay(ctx, 1, "voter-1")
	if err != nil {
		t.Fatalf("ResolveFailedNay: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}

	if _, err := fixture.rewards.ResolveFailedNay(ctx, 1, "voter-1"); !errors.Is(err, domainerrors.ErrAlreadyResolved) {
		t.Fatalf("second resolution: err = %v, want ErrAlreadyResolved", err)
	}
	if got, _ := fixture.store.FailedNayCount(ctx, "voter-1"); got != 1 {
		t.Fatalf("failed nay count = %d, want 1", got)
	}
}

func TestResolveFailedNayRequiresCompletedCampaign(t *testing.T) {
	fixture := newGovernanceFixture(t)
	fixture.campaigns.status = ports.CampaignStatusTerminated

	_, err := fixture.rewards.ResolveFailedNay(context.Background(), 1, "voter-1")
	if !errors.Is(err, domainerrors.ErrCampaignNotCompleted) {
		t.Fatalf("err = %v, want ErrCampaignNotCompleted", err)
	}
}

func TestResolveFailedNayRequiresNayVote(t *testing.T) {
	fixture := newGovernanceFixture(t)
	ctx := context.Background()
	fixture.campaigns.status = ports.CampaignStatusCompleted
	if err := fixture.store.PutVote(ctx, entities.VoteRecord{
		CampaignID: 1,
		Voter:      "voter-1",
		Direction:  entities.VoteDirectionAye,
	}); err != nil {
		t.Fatalf("PutVote: %v", err)
	}

	_, err := fixture.rewards.ResolveFailedNay(ctx, 1, "voter-1")
	if !errors.Is(err, domainerrors.ErrNayVoteRequired) {
		t.Fatalf("err = %v, want ErrNayVoteRequired", err)
	}
}
