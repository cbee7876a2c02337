package db

import (
	"context"

	"github.com/Spok95/skedule/internal/ctxutil"
)

// Counts: счётчики для статистики.
type Counts struct {
	Users               int64 `json:"users"`
	Students            int64 `json:"students"`
	Teachers            int64 `json:"teachers"`
	Parents             int64 `json:"parents"`
	Administrations     int64 `json:"administrations"`
	ParentsWithChildren int64 `json:"parents_with_children"`
}

func CountStats(ctx context.Context, q Querier) (Counts, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var c Counts
	err := q.QueryRowContext(ctx, `
		SELECT
			(SELECT count(*) FROM accounts),
			count(*) FILTER (WHERE role_type = 0),
			count(*) FILTER (WHERE role_type = 1),
			count(*) FILTER (WHERE role_type = 2),
			count(*) FILTER (WHERE role_type = 3),
			count(*) FILTER (WHERE role_type = 2
				AND EXISTS (SELECT 1 FROM students s WHERE s.parent_id = roles.parent_id))
		FROM roles
	`).Scan(&c.Users, &c.Students, &c.Teachers, &c.Parents, &c.Administrations, &c.ParentsWithChildren)
	return c, err
}

// StudentsByLevel Ученики (роли) по параллелям
func StudentsByLevel(ctx context.Context, q Querier) (map[int]int64, error) {
	return histogram(ctx, q, `
		SELECT sc.educational_level, count(*)
		FROM roles r
		JOIN students s    ON s.id = r.student_id
		JOIN subclasses sc ON sc.id = s.subclass_id
		WHERE r.role_type = 0
		GROUP BY sc.educational_level
	`)
}

// ParentsByChildrenCount Распределение родителей по числу детей
func ParentsByChildrenCount(ctx context.Context, q Querier) (map[int]int64, error) {
	return histogram(ctx, q, `
		SELECT n, count(*) FROM (
			SELECT (SELECT count(*) FROM students s WHERE s.parent_id = r.parent_id) AS n
			FROM roles r WHERE r.role_type = 2
		) x
		GROUP BY n
	`)
}

// ChildrenByLevel Дети родителей по параллелям
func ChildrenByLevel(ctx context.Context, q Querier) (map[int]int64, error) {
	return histogram(ctx, q, `
		SELECT sc.educational_level, count(*)
		FROM roles r
		JOIN students s    ON s.parent_id = r.parent_id
		JOIN subclasses sc ON sc.id = s.subclass_id
		WHERE r.role_type = 2
		GROUP BY sc.educational_level
	`)
}

// TeachersByLevel Сколько учителей с ролью ведут уроки в каждой параллели
func TeachersByLevel(ctx context.Context, q Querier) (map[int]int64, error) {
	return histogram(ctx, q, `
		SELECT lvl, count(*) FROM (
			SELECT DISTINCT r.id, sc.educational_level AS lvl
			FROM roles r
			JOIN lessons l            ON l.teacher_id = r.teacher_id
			JOIN lesson_subclasses ls ON ls.lesson_id = l.id
			JOIN subclasses sc        ON sc.id = ls.subclass_id
			WHERE r.role_type = 1
		) x
		GROUP BY lvl
	`)
}

func histogram(ctx context.Context, q Querier, query string) (map[int]int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := map[int]int64{}
	for rows.Next() {
		var k int
		var v int64
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}
