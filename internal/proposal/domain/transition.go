package domain

// Tally is a snapshot of the counters the transition decision reads. The
// member count is the organization's current membership, not a snapshot
// taken at proposal creation: members joining later raise the quorum bar
// for proposals still open.
type Tally struct {
	VotesFor          int
	VotesAgainst      int
	MemberCount       int
	ApprovalThreshold int
}

// Quorum is the minimum number of total votes before a proposal can pass:
// half the current membership, rounded up.
func Quorum(memberCount int) int {
	if memberCount <= 0 {
		return 0
	}
	return (memberCount + 1) / 2
}

// ApprovalPercent returns the yes share of total votes as an integer
// percentage rounded to nearest. Zero votes is defined as zero percent,
// so a proposal can never pass without votes even at threshold zero.
func ApprovalPercent(votesFor, total int) int {
	if total <= 0 {
		return 0
	}
	return (votesFor*200 + total) / (2 * total)
}

// Decide returns the status a proposal should hold given a fresh tally.
// Only active proposals move; passed and rejected are terminal. A
// proposal passes iff quorum is met and the exact yes share reaches the
// threshold (equality passes). There is no auto-reject: a proposal that
// can no longer mathematically pass stays active.
func Decide(current string, tally Tally) string {
	if current != StatusActive {
		return current
	}

	total := tally.VotesFor + tally.VotesAgainst
	if total == 0 || total < Quorum(tally.MemberCount) {
		return StatusActive
	}

	// Exact comparison: votesFor/total*100 >= threshold, without float
	// rounding at the boundary.
	if tally.VotesFor*100 >= tally.ApprovalThreshold*total {
		return StatusPassed
	}
	return StatusActive
}
