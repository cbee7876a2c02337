package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Spok95/skedule/internal/ctxutil"
	"github.com/Spok95/skedule/internal/models"
)

// RoleTarget: роль-получатель и telegram id её аккаунта.
type RoleTarget struct {
	RoleID     int64
	TelegramID int64
}

const roleSelect = `
	SELECT r.id, r.account_id, r.role_type, r.is_main_role,
	       r.student_id, r.teacher_id, r.parent_id, r.administration_id,
	       s.school_id, s.subclass_id, s.parent_id, a.school_id
	FROM roles r
	LEFT JOIN students s        ON s.id = r.student_id
	LEFT JOIN administrations a ON a.id = r.administration_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoleRow(sc rowScanner) (models.Role, error) {
	var (
		r                                    models.Role
		rt                                   int16
		studentID, teacherID, parentID       sql.NullInt64
		adminID                              sql.NullInt64
		sSchool, sSubclass, sParent, aSchool sql.NullInt64
	)
	if err := sc.Scan(&r.ID, &r.AccountID, &rt, &r.IsMain,
		&studentID, &teacherID, &parentID, &adminID,
		&sSchool, &sSubclass, &sParent, &aSchool); err != nil {
		return r, err
	}

	switch models.RoleType(rt) {
	case models.RoleStudent:
		if !studentID.Valid {
			return r, fmt.Errorf("role %d: student payload is null", r.ID)
		}
		d := models.StudentData{StudentID: studentID.Int64, SchoolID: sSchool.Int64, SubclassID: sSubclass.Int64}
		if sParent.Valid {
			p := sParent.Int64
			d.ParentID = &p
		}
		r.Data = d
	case models.RoleTeacher:
		if !teacherID.Valid {
			return r, fmt.Errorf("role %d: teacher payload is null", r.ID)
		}
		r.Data = models.TeacherData{TeacherID: teacherID.Int64}
	case models.RoleParent:
		if !parentID.Valid {
			return r, fmt.Errorf("role %d: parent payload is null", r.ID)
		}
		r.Data = models.ParentData{ParentID: parentID.Int64}
	case models.RoleAdministration:
		if !adminID.Valid {
			return r, fmt.Errorf("role %d: administration payload is null", r.ID)
		}
		r.Data = models.AdministrationData{AdministrationID: adminID.Int64, SchoolID: aSchool.Int64}
	default:
		return r, fmt.Errorf("role %d: unknown role_type %d", r.ID, rt)
	}
	return r, nil
}

func ListRoles(ctx context.Context, q Querier, accountID int64) ([]models.Role, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := q.QueryContext(ctx, roleSelect+` WHERE r.account_id = $1 ORDER BY r.id`, accountID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.Role
	for rows.Next() {
		r, err := scanRoleRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func GetRole(ctx context.Context, q Querier, id int64) (*models.Role, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	r, err := scanRoleRow(q.QueryRowContext(ctx, roleSelect+` WHERE r.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRole создаёт строку полезной нагрузки (кроме учителя) и саму роль.
func CreateRole(ctx context.Context, q Querier, accountID int64, isMain bool, data models.RoleData) (models.Role, error) {
	var (
		col string
		fk  int64
		err error
	)
	switch d := data.(type) {
	case models.StudentData:
		if d.StudentID, err = CreateStudent(ctx, q, d); err != nil {
			return models.Role{}, err
		}
		col, fk, data = "student_id", d.StudentID, d
	case models.TeacherData:
		col, fk = "teacher_id", d.TeacherID
	case models.ParentData:
		if d.ParentID, err = createParent(ctx, q); err != nil {
			return models.Role{}, err
		}
		col, fk, data = "parent_id", d.ParentID, d
	case models.AdministrationData:
		if d.AdministrationID, err = createAdministration(ctx, q, d.SchoolID); err != nil {
			return models.Role{}, err
		}
		col, fk, data = "administration_id", d.AdministrationID, d
	default:
		return models.Role{}, fmt.Errorf("unsupported role data %T", data)
	}

	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	r := models.Role{AccountID: accountID, IsMain: isMain, Data: data}
	err = q.QueryRowContext(ctx, `
		INSERT INTO roles (account_id, role_type, is_main_role, `+col+`)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, accountID, int16(data.Type()), isMain, fk).Scan(&r.ID)
	return r, err
}

// DeleteRole удаляет роль и её полезную нагрузку по тегу.
// Строку справочника teachers не трогает.
func DeleteRole(ctx context.Context, q Querier, r models.Role) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	if _, err := q.ExecContext(ctx, `DELETE FROM roles WHERE id = $1`, r.ID); err != nil {
		return fmt.Errorf("delete role %d: %w", r.ID, err)
	}

	var err error
	switch d := r.Data.(type) {
	case models.StudentData:
		_, err = q.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, d.StudentID)
	case models.TeacherData:
	case models.ParentData:
		// дети родителя удаляются каскадом
		_, err = q.ExecContext(ctx, `DELETE FROM parents WHERE id = $1`, d.ParentID)
	case models.AdministrationData:
		_, err = q.ExecContext(ctx, `DELETE FROM administrations WHERE id = $1`, d.AdministrationID)
	default:
		err = fmt.Errorf("unsupported role data %T", r.Data)
	}
	if err != nil {
		return fmt.Errorf("delete %s payload of role %d: %w", r.Type(), r.ID, err)
	}
	return nil
}

func SetMainRole(ctx context.Context, q Querier, roleID int64, isMain bool) error {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	_, err := q.ExecContext(ctx, `UPDATE roles SET is_main_role = $2 WHERE id = $1`, roleID, isMain)
	return err
}

func createParent(ctx context.Context, q Querier) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var id int64
	err := q.QueryRowContext(ctx, `INSERT INTO parents DEFAULT VALUES RETURNING id`).Scan(&id)
	return id, err
}

func createAdministration(ctx context.Context, q Querier, schoolID int64) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var id int64
	err := q.QueryRowContext(ctx, `INSERT INTO administrations (school_id) VALUES ($1) RETURNING id`, schoolID).Scan(&id)
	return id, err
}

// TeacherRoleTargets Роли учителей для указанных строк справочника
func TeacherRoleTargets(ctx context.Context, q Querier, teacherIDs []int64) ([]RoleTarget, error) {
	return queryTargets(ctx, q, `
		SELECT r.id, a.telegram_id
		FROM roles r JOIN accounts a ON a.id = r.account_id
		WHERE r.role_type = 1 AND r.teacher_id = ANY($1)
		ORDER BY r.id
	`, int64Array(teacherIDs))
}

// StudentRoleTargets Роли учеников из указанных классов
func StudentRoleTargets(ctx context.Context, q Querier, subclassIDs []int64) ([]RoleTarget, error) {
	return queryTargets(ctx, q, `
		SELECT r.id, a.telegram_id
		FROM roles r
		JOIN accounts a ON a.id = r.account_id
		JOIN students s ON s.id = r.student_id
		WHERE r.role_type = 0 AND s.subclass_id = ANY($1)
		ORDER BY r.id
	`, int64Array(subclassIDs))
}

// ParentRoleTargets Роли родителей, у которых хотя бы один ребёнок учится в указанных классах
func ParentRoleTargets(ctx context.Context, q Querier, subclassIDs []int64) ([]RoleTarget, error) {
	return queryTargets(ctx, q, `
		SELECT r.id, a.telegram_id
		FROM roles r JOIN accounts a ON a.id = r.account_id
		WHERE r.role_type = 2
		  AND EXISTS (SELECT 1 FROM students s WHERE s.parent_id = r.parent_id AND s.subclass_id = ANY($1))
		ORDER BY r.id
	`, int64Array(subclassIDs))
}

func AllRoleTargets(ctx context.Context, q Querier) ([]RoleTarget, error) {
	return queryTargets(ctx, q, `
		SELECT r.id, a.telegram_id
		FROM roles r JOIN accounts a ON a.id = r.account_id
		ORDER BY r.id
	`)
}

func queryTargets(ctx context.Context, q Querier, query string, args ...any) ([]RoleTarget, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []RoleTarget
	for rows.Next() {
		var t RoleTarget
		if err := rows.Scan(&t.RoleID, &t.TelegramID); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
