package levels

import "testing"

func TestPointsRequiredForLevel(t *testing.T) {
	cases := []struct {
		level int
		want  int
	}{
		{0, 0},
		{1, 0},
		{2, 132},
		{3, 233},
		{4, 348},
		{10, 1256},
	}

	for _, tc := range cases {
		if got := PointsRequiredForLevel(tc.level); got != tc.want {
			t.Fatalf("PointsRequiredForLevel(%d) = %d; want %d", tc.level, got, tc.want)
		}
	}
}

func TestLevelFromPoints(t *testing.T) {
	cases := []struct {
		points int
		stored int
		want   int
	}{
		{0, 1, 1},
		{131, 1, 1},
		{132, 1, 2},
		{233, 1, 3},
		{100, 1, 1},
		{0, 5, 5},   // never below stored level
		{233, 5, 5}, // points imply 3, stored wins
		{-10, 1, 1},
	}

	for _, tc := range cases {
		if got := LevelFromPoints(tc.points, tc.stored); got != tc.want {
			t.Fatalf("LevelFromPoints(%d, %d) = %d; want %d", tc.points, tc.stored, got, tc.want)
		}
	}
}

func TestBonusPoints(t *testing.T) {
	cases := []struct {
		base       int
		difficulty int
		want       int
	}{
		{100, 1, 0},
		{100, 2, 20},
		{100, 3, 50},
		{100, 4, 80},
		{100, 5, 100},
		{100, 0, 0},  // out of range
		{100, 9, 0},  // out of range
		{75, 3, 37},  // floor
	}

	for _, tc := range cases {
		if got := BonusPoints(tc.base, tc.difficulty); got != tc.want {
			t.Fatalf("BonusPoints(%d, %d) = %d; want %d", tc.base, tc.difficulty, got, tc.want)
		}
	}
}

func TestCalculateUserLevelInfoMonotonic(t *testing.T) {
	info := CalculateUserLevelInfo(5, 0)
	if info.CurrentLevel < 5 {
		t.Fatalf("effective level %d below stored 5", info.CurrentLevel)
	}
	if info.IsLevelUp {
		t.Fatal("stored level above calculated must not report a level-up")
	}
}

func TestCalculateUserLevelInfoLevelUp(t *testing.T) {
	info := CalculateUserLevelInfo(1, 250)
	if info.CurrentLevel != 3 {
		t.Fatalf("expected level 3 with 250 points, got %d", info.CurrentLevel)
	}
	if !info.IsLevelUp {
		t.Fatal("expected level-up flag")
	}
	if info.CurrentLevelPoints != 250-233 {
		t.Fatalf("in-level points = %d; want %d", info.CurrentLevelPoints, 250-233)
	}
	if info.PointsToNextLevel != PointsRequiredForLevel(4)-250 {
		t.Fatalf("points to next = %d; want %d", info.PointsToNextLevel, PointsRequiredForLevel(4)-250)
	}
}

func TestCalculateUserLevelInfoProgressBounds(t *testing.T) {
	for _, points := range []int{0, 1, 131, 132, 200, 5000} {
		info := CalculateUserLevelInfo(1, points)
		if info.ProgressPercent < 0 || info.ProgressPercent > 100 {
			t.Fatalf("progress %d out of [0,100] for %d points", info.ProgressPercent, points)
		}
	}
}
