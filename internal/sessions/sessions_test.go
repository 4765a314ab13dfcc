package sessions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Lukeeddleman/loadoutlab-site/internal/catalog"
	"github.com/Lukeeddleman/loadoutlab-site/internal/forge"
	"github.com/Lukeeddleman/loadoutlab-site/internal/logger"
	"github.com/Lukeeddleman/loadoutlab-site/internal/models"
	"github.com/Lukeeddleman/loadoutlab-site/internal/questionnaire"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestManager(ttl time.Duration, opts ...forge.Option) (*Manager, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	m := NewManager(logger.New(), catalog.Default(), ttl, opts...)
	m.now = clock.Now
	return m, clock
}

func TestManager_SessionsAreIndependent(t *testing.T) {
	m, _ := newTestManager(time.Hour)

	a := m.Create()
	b := m.Create()
	if a.ID == b.ID {
		t.Fatal("expected distinct session IDs")
	}

	err := a.Do(func(store *forge.Store, _ *questionnaire.Workflow) error {
		_, err := store.SetConfiguration(models.PlatformConfiguration{FirearmType: models.Rifle, SubType: models.AR15})
		return err
	})
	if err != nil {
		t.Fatalf("SetConfiguration failed: %v", err)
	}

	b.Do(func(store *forge.Store, _ *questionnaire.Workflow) error {
		if store.Configuration() != nil {
			t.Error("session b saw session a's platform")
		}
		return nil
	})
}

func TestManager_GetExpires(t *testing.T) {
	m, clock := newTestManager(time.Hour)
	s := m.Create()

	clock.Advance(30 * time.Minute)
	if _, ok := m.Get(s.ID); !ok {
		t.Fatal("expected session to be live")
	}

	// Get refreshed lastSeen, so another 59 minutes is still fine
	clock.Advance(59 * time.Minute)
	if _, ok := m.Get(s.ID); !ok {
		t.Fatal("expected session to be refreshed by Get")
	}

	clock.Advance(61 * time.Minute)
	if _, ok := m.Get(s.ID); ok {
		t.Fatal("expected session to expire")
	}
	if m.Len() != 0 {
		t.Errorf("expected expired session to be removed, have %d", m.Len())
	}
}

func TestManager_Sweep(t *testing.T) {
	m, clock := newTestManager(time.Hour)
	m.Create()
	m.Create()

	clock.Advance(2 * time.Hour)
	fresh := m.Create()

	if n := m.Sweep(); n != 2 {
		t.Errorf("expected 2 sessions swept, got %d", n)
	}
	if _, ok := m.Get(fresh.ID); !ok {
		t.Error("fresh session should survive the sweep")
	}
}

func TestManager_Delete(t *testing.T) {
	m, _ := newTestManager(time.Hour)
	s := m.Create()
	m.Delete(s.ID)
	if _, ok := m.Get(s.ID); ok {
		t.Error("expected session to be deleted")
	}
}

func TestManager_FromRequest(t *testing.T) {
	m, _ := newTestManager(time.Hour)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/forge", nil)
	s := m.FromRequest(w, r)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName || cookies[0].Value != s.ID {
		t.Fatalf("expected session cookie, got %v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}

	w2 := httptest.NewRecorder()
	r2 := httptest.NewRequest(http.MethodGet, "/api/forge", nil)
	r2.AddCookie(cookies[0])
	again := m.FromRequest(w2, r2)
	if again != s {
		t.Error("expected the same session for the same cookie")
	}
	if len(w2.Result().Cookies()) != 0 {
		t.Error("did not expect a new cookie for a known session")
	}

	w3 := httptest.NewRecorder()
	r3 := httptest.NewRequest(http.MethodGet, "/api/forge", nil)
	r3.AddCookie(&http.Cookie{Name: CookieName, Value: "stale"})
	if m.FromRequest(w3, r3) == s {
		t.Error("unknown cookie should start a new session")
	}
	if m.Len() != 2 {
		t.Errorf("expected 2 sessions, got %d", m.Len())
	}
}

func TestManager_StoreOptionsApplied(t *testing.T) {
	m, _ := newTestManager(time.Hour, forge.WithDependencyGating())
	s := m.Create()

	s.Do(func(store *forge.Store, _ *questionnaire.Workflow) error {
		if !store.Locked(models.CategoryBarrel) {
			t.Error("expected gating to be enabled on new stores")
		}
		return nil
	})
}

func TestManager_ConcurrentDo(t *testing.T) {
	m, _ := newTestManager(time.Hour)
	s := m.Create()
	cat := catalog.Default()
	optic, _ := cat.Part(models.CategoryOptic, "holosun-510c")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Do(func(store *forge.Store, _ *questionnaire.Workflow) error {
				if i%2 == 0 {
					return store.SetSelectedPart(models.CategoryOptic, optic)
				}
				return store.ClearSelectedPart(models.CategoryOptic)
			})
		}(i)
	}
	wg.Wait()
}

func TestManager_StartSweeperStops(t *testing.T) {
	m, _ := newTestManager(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		m.StartSweeper(ctx, 10*time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
