package domain

import "testing"

func TestLevelForPoints(t *testing.T) {
	tests := []struct {
		points int64
		want   MembershipLevel
	}{
		{0, MembershipBronze},
		{99, MembershipBronze},
		{100, MembershipSilver},
		{150, MembershipSilver},
		{499, MembershipSilver},
		{500, MembershipGold},
		{999, MembershipGold},
		{1000, MembershipPlatinum},
		{5000, MembershipPlatinum},
	}

	for _, tt := range tests {
		if got := LevelForPoints(tt.points); got != tt.want {
			t.Errorf("LevelForPoints(%d) = %s, want %s", tt.points, got, tt.want)
		}
	}
}

// Уровень пересчитывается от суммарных баллов, поэтому накопление
// 150 + 400 переводит покупателя с silver на gold.
func TestLevelForPoints_Accumulation(t *testing.T) {
	var points int64

	points += 150
	if got := LevelForPoints(points); got != MembershipSilver {
		t.Fatalf("after 150 points: %s, want silver", got)
	}

	points += 400
	if got := LevelForPoints(points); got != MembershipGold {
		t.Fatalf("after 550 points: %s, want gold", got)
	}
}
