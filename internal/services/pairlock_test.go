package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPairLocker(t *testing.T) {
	t.Run("pair order does not matter", func(t *testing.T) {
		l := NewPairLocker()
		unlock := l.Lock("a", "b")

		acquired := make(chan struct{})
		go func() {
			release := l.Lock("b", "a")
			close(acquired)
			release()
		}()

		select {
		case <-acquired:
			t.Fatal("reversed pair acquired while held")
		case <-time.After(50 * time.Millisecond):
		}

		unlock()

		select {
		case <-acquired:
		case <-time.After(time.Second):
			t.Fatal("reversed pair never acquired")
		}
	})

	t.Run("different pairs do not block", func(t *testing.T) {
		l := NewPairLocker()
		unlock := l.Lock("a", "b")
		defer unlock()

		done := make(chan struct{})
		go func() {
			l.Lock("a", "c")()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("unrelated pair blocked")
		}
	})

	t.Run("entries are released", func(t *testing.T) {
		l := NewPairLocker()
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				l.Lock("x", "y")()
			}()
		}
		wg.Wait()
		assert.Equal(t, 0, l.size())
	})
}
