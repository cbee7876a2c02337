package service

import (
	"testing"

	"github.com/Spok95/skedule/internal/models"
)

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"kitten", "sitting", 3},
		{"", "abc", 3},
		{"abc", "", 3},
		{"иван", "иван", 0},
		{"ёж", "еж", 1},
		{"петров", "петрова", 1},
	}
	for _, c := range cases {
		if got := levenshtein(c.a, c.b); got != c.want {
			t.Fatalf("levenshtein(%q, %q) = %d, ожидали %d", c.a, c.b, got, c.want)
		}
	}
}

func teacherIDs(ts []models.Teacher) []int64 {
	out := make([]int64, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.ID)
	}
	return out
}

func TestRankTeachers(t *testing.T) {
	teachers := []models.Teacher{
		{ID: 1, Name: "Петров Иван"},
		{ID: 2, Name: "Иванова Мария"},
		{ID: 3, Name: "Сидоров Пётр"},
		{ID: 4, Name: "Иванов Олег"},
	}

	got := teacherIDs(rankTeachers(teachers, "Иван", 0))
	// совпадение в начале раньше, чем в середине; при равной позиции ближе по Левенштейну
	want := []int64{4, 2, 1, 3}
	if len(got) != len(want) {
		t.Fatalf("получили %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("порядок %v, ожидали %v", got, want)
		}
	}

	if got := rankTeachers(teachers, "иван", 2); len(got) != 2 || got[0].ID != 4 {
		t.Fatalf("limit 2: %v", teacherIDs(got))
	}
	if got := rankTeachers(nil, "x", 5); len(got) != 0 {
		t.Fatalf("пустой список: %v", got)
	}
}
