package domain

import "testing"

func TestQuorum(t *testing.T) {
	tests := []struct {
		members int
		want    int
	}{
		{0, 0},
		{1, 1},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
		{10, 5},
		{11, 6},
	}
	for _, tc := range tests {
		if got := Quorum(tc.members); got != tc.want {
			t.Errorf("Quorum(%d) = %d, want %d", tc.members, got, tc.want)
		}
	}
}

func TestApprovalPercent(t *testing.T) {
	tests := []struct {
		votesFor int
		total    int
		want     int
	}{
		{0, 0, 0},
		{0, 3, 0},
		{1, 2, 50},
		{2, 3, 67},
		{1, 3, 33},
		{3, 3, 100},
		{2, 4, 50},
	}
	for _, tc := range tests {
		if got := ApprovalPercent(tc.votesFor, tc.total); got != tc.want {
			t.Errorf("ApprovalPercent(%d, %d) = %d, want %d", tc.votesFor, tc.total, got, tc.want)
		}
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name    string
		current string
		tally   Tally
		want    string
	}{
		{
			name:    "no votes stays active",
			current: StatusActive,
			tally:   Tally{MemberCount: 4, ApprovalThreshold: 51},
			want:    StatusActive,
		},
		{
			name:    "below quorum stays active",
			current: StatusActive,
			tally:   Tally{VotesFor: 1, MemberCount: 4, ApprovalThreshold: 51},
			want:    StatusActive,
		},
		{
			name:    "quorum met above threshold passes",
			current: StatusActive,
			tally:   Tally{VotesFor: 2, MemberCount: 4, ApprovalThreshold: 51},
			want:    StatusPassed,
		},
		{
			name:    "exact threshold equality passes",
			current: StatusActive,
			tally:   Tally{VotesFor: 1, VotesAgainst: 1, MemberCount: 2, ApprovalThreshold: 50},
			want:    StatusPassed,
		},
		{
			name:    "one percent under threshold stays active",
			current: StatusActive,
			tally:   Tally{VotesFor: 2, VotesAgainst: 1, MemberCount: 3, ApprovalThreshold: 70},
			want:    StatusActive,
		},
		{
			name:    "majority no stays active rather than rejecting",
			current: StatusActive,
			tally:   Tally{VotesFor: 1, VotesAgainst: 3, MemberCount: 4, ApprovalThreshold: 51},
			want:    StatusActive,
		},
		{
			name:    "single member single yes passes",
			current: StatusActive,
			tally:   Tally{VotesFor: 1, MemberCount: 1, ApprovalThreshold: 51},
			want:    StatusPassed,
		},
		{
			name:    "passed is terminal",
			current: StatusPassed,
			tally:   Tally{VotesFor: 0, VotesAgainst: 5, MemberCount: 5, ApprovalThreshold: 51},
			want:    StatusPassed,
		},
		{
			name:    "rejected is terminal",
			current: StatusRejected,
			tally:   Tally{VotesFor: 5, MemberCount: 5, ApprovalThreshold: 51},
			want:    StatusRejected,
		},
		{
			name:    "threshold zero still needs a vote",
			current: StatusActive,
			tally:   Tally{MemberCount: 0, ApprovalThreshold: 0},
			want:    StatusActive,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Decide(tc.current, tc.tally); got != tc.want {
				t.Errorf("Decide(%s, %+v) = %s, want %s", tc.current, tc.tally, got, tc.want)
			}
		})
	}
}
