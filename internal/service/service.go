package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Spok95/skedule/internal/db"
	"github.com/Spok95/skedule/internal/logging"
	"go.uber.org/zap"
)

// Notifier доставляет текст на набор telegram id.
type Notifier interface {
	Deliver(ctx context.Context, text string, telegramIDs []int64, silent bool) error
}

// Publisher публикует длинный текст и возвращает постоянную ссылку.
type Publisher interface {
	Publish(ctx context.Context, title, html string) (string, error)
}

// InvalidContent реализуют ошибки публикации, вызванные самим содержимым.
type InvalidContent interface {
	InvalidContent() bool
}

type Limits struct {
	MaxChildren int
	MaxHistory  int
	MaxSearch   int
}

func DefaultLimits() Limits {
	return Limits{MaxChildren: 1, MaxHistory: 10, MaxSearch: 5}
}

type Options struct {
	Logger    *zap.Logger
	Notifier  Notifier
	Publisher Publisher
	Limits    Limits
	Now       func() time.Time
}

type Service struct {
	db        *sql.DB
	log       *zap.Logger
	notifier  Notifier
	publisher Publisher
	limits    Limits
	locks     *accountLocks
	now       func() time.Time
}

func New(database *sql.DB, opts Options) *Service {
	s := &Service{
		db:        database,
		log:       opts.Logger,
		notifier:  opts.Notifier,
		publisher: opts.Publisher,
		limits:    opts.Limits,
		locks:     newAccountLocks(),
		now:       opts.Now,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.limits == (Limits{}) {
		s.limits = DefaultLimits()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Service) logger(ctx context.Context) *zap.Logger {
	return logging.From(ctx, s.log)
}

// tx выполняет fn в одной транзакции и приводит ошибки ограничений БД к доменным.
func (s *Service) tx(ctx context.Context, fn func(q db.Querier) error) error {
	err := db.WithTx(ctx, s.db, func(tx *sql.Tx) error { return fn(tx) })
	return storeErr(err)
}

var constraintMessages = map[string]string{
	"schools_name_key":                 "School with this name already exists",
	"corpuses_school_name_key":         "Corpus with this name already exists in the school",
	"corpuses_school_address_key":      "Corpus with this address already exists in the school",
	"cabinets_corpus_name_key":         "Cabinet with this name already exists in the corpus",
	"teachers_school_name_key":         "Teacher with this name already exists in the school",
	"subclasses_school_triple_key":     "Subclass with these params already exists in the school",
	"lesson_numbers_school_number_key": "Lesson number already exists in the school",
	"lesson_numbers_time_order":        "time_start must be earlier than time_end",
	"lessons_slot_key":                 "Lesson with these params already exists",
	"accounts_telegram_id_key":         "User with this telegram id already exists",
	"roles_account_type_key":           "User already has a role of this type",
	"roles_one_main_idx":               "User already has a main role",
}

func storeErr(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if db.InvalidData(err) {
		return &Error{Kind: KindValidation, Msg: "value does not fit the field", Err: err}
	}
	if name, ok := db.ConstraintViolation(err); ok {
		// автоимена CHECK на колонку (cabinets_floor_check): значение вне диапазона
		if _, known := constraintMessages[name]; !known && strings.HasSuffix(name, "_check") {
			return &Error{Kind: KindValidation, Msg: fmt.Sprintf("value out of range (%s)", name), Err: err}
		}
		msg, known := constraintMessages[name]
		if !known {
			msg = fmt.Sprintf("constraint %s violated", name)
		}
		return &Error{Kind: KindConflict, Msg: msg, Err: err}
	}
	return err
}
