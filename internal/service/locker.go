package service

import "sync"

// accountLocks не даёт двум изменениям ролей одного telegram id идти одновременно
// внутри процесса. Между процессами порядок держит SELECT ... FOR UPDATE.
// Запись живёт, пока её кто-то держит или ждёт.
type accountLocks struct {
	mu   sync.Mutex
	byID map[int64]*accountLock
}

type accountLock struct {
	sync.Mutex
	refs int
}

func newAccountLocks() *accountLocks {
	return &accountLocks{byID: make(map[int64]*accountLock)}
}

// lock блокирует telegramID и возвращает функцию освобождения.
func (l *accountLocks) lock(telegramID int64) (unlock func()) {
	l.mu.Lock()
	m, ok := l.byID[telegramID]
	if !ok {
		m = &accountLock{}
		l.byID[telegramID] = m
	}
	m.refs++
	l.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		l.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(l.byID, telegramID)
		}
		l.mu.Unlock()
	}
}

