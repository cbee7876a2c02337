package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestConstraintViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "cabinets_corpus_name_key"}
	if name, ok := ConstraintViolation(fmt.Errorf("insert: %w", pgErr)); !ok || name != "cabinets_corpus_name_key" {
		t.Fatalf("pgx: получили %q %v", name, ok)
	}

	pqErr := &pq.Error{Code: "23514", Constraint: "lesson_numbers_time_order"}
	if name, ok := ConstraintViolation(pqErr); !ok || name != "lesson_numbers_time_order" {
		t.Fatalf("pq: получили %q %v", name, ok)
	}

	if _, ok := ConstraintViolation(&pgconn.PgError{Code: "23503"}); ok {
		t.Fatal("foreign key не считается конфликтом уникальности")
	}
	if _, ok := ConstraintViolation(errors.New("boom")); ok {
		t.Fatal("обычная ошибка не нарушение ограничения")
	}
	if _, ok := ConstraintViolation(nil); ok {
		t.Fatal("nil")
	}
}

func TestInvalidData(t *testing.T) {
	if !InvalidData(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "22001"})) {
		t.Fatal("pgx: слишком длинная строка")
	}
	if !InvalidData(&pq.Error{Code: "22003"}) {
		t.Fatal("pq: число вне диапазона")
	}
	if InvalidData(&pgconn.PgError{Code: "23505"}) || InvalidData(errors.New("boom")) || InvalidData(nil) {
		t.Fatal("прочие ошибки не относятся к данным")
	}
}
