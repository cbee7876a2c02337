package service

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Spok95/skedule/internal/db"
	"github.com/Spok95/skedule/internal/models"
)

// SearchSchools школы, в названии которых есть подстрока.
func (s *Service) SearchSchools(ctx context.Context, name string) ([]models.School, error) {
	return nonNil(db.SearchSchools(ctx, s.db, name, s.limits.MaxSearch))
}

// SearchTeachers нечёткий поиск учителя по имени внутри школы.
func (s *Service) SearchTeachers(ctx context.Context, schoolID int64, name string) ([]models.Teacher, error) {
	teachers, err := s.ListTeachers(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	return rankTeachers(teachers, name, s.limits.MaxSearch), nil
}

type teacherRank struct {
	missing bool
	index   int
	dist    int
}

func (a teacherRank) less(b teacherRank) bool {
	if a.missing != b.missing {
		return !a.missing
	}
	if a.index != b.index {
		return a.index < b.index
	}
	return a.dist < b.dist
}

// rankTeachers: сначала имена с подстрокой, затем по позиции совпадения,
// затем по расстоянию Левенштейна. Регистр не учитывается.
func rankTeachers(teachers []models.Teacher, name string, limit int) []models.Teacher {
	needle := strings.ToLower(name)
	ranks := make(map[int64]teacherRank, len(teachers))
	for _, t := range teachers {
		hay := strings.ToLower(t.Name)
		r := teacherRank{dist: levenshtein(hay, needle)}
		if i := strings.Index(hay, needle); i >= 0 {
			r.index = utf8.RuneCountInString(hay[:i])
		} else {
			r.missing = true
			r.index = utf8.RuneCountInString(t.Name) + 1
		}
		ranks[t.ID] = r
	}

	out := append([]models.Teacher(nil), teachers...)
	sort.SliceStable(out, func(i, j int) bool { return ranks[out[i].ID].less(ranks[out[j].ID]) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// levenshtein по рунам, две строки таблицы.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
