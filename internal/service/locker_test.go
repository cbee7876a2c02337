package service

import (
	"sync"
	"testing"
	"time"
)

// held: сколько telegram id сейчас в таблице.
func (l *accountLocks) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byID)
}

func TestAccountLocks_ReleasesEntries(t *testing.T) {
	l := newAccountLocks()
	for id := int64(1); id <= 100; id++ {
		unlock := l.lock(id)
		unlock()
	}
	if n := l.held(); n != 0 {
		t.Fatalf("после освобождения осталось %d записей", n)
	}
}

func TestAccountLocks_SerializesSameID(t *testing.T) {
	l := newAccountLocks()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.lock(555)
			defer unlock()

			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Fatalf("одновременно внутри было %d", maxSeen)
	}
	if n := l.held(); n != 0 {
		t.Fatalf("осталось %d записей", n)
	}
}

func TestAccountLocks_DifferentIDsIndependent(t *testing.T) {
	l := newAccountLocks()
	unlockA := l.lock(1)
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := l.lock(2)
		unlock()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("блокировка другого id ждала чужую")
	}
	if n := l.held(); n != 1 {
		t.Fatalf("ожидали 1 запись, получили %d", n)
	}
}
