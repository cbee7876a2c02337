package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	codeUniqueViolation = "23505"
	codeCheckViolation  = "23514"
	codeStringTooLong   = "22001"
	codeOutOfRange      = "22003"
)

// ConstraintViolation возвращает имя нарушенного ограничения
// для unique/check ошибок Postgres (pgx или lib/pq).
func ConstraintViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == codeUniqueViolation || pgErr.Code == codeCheckViolation {
			return pgErr.ConstraintName, true
		}
		return "", false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if string(pqErr.Code) == codeUniqueViolation || string(pqErr.Code) == codeCheckViolation {
			return pqErr.Constraint, true
		}
	}
	return "", false
}

// InvalidData: значение не помещается в колонку (длина строки, диапазон числа).
func InvalidData(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeStringTooLong || pgErr.Code == codeOutOfRange
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == codeStringTooLong || string(pqErr.Code) == codeOutOfRange
	}
	return false
}
