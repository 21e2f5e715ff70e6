package schedule

import (
	"reflect"
	"testing"
	"time"
)

func TestManualAfterOrder(t *testing.T) {
	m := NewManual()
	var got []string

	m.After(30*time.Millisecond, func() { got = append(got, "c") })
	m.After(10*time.Millisecond, func() { got = append(got, "a") })
	m.After(10*time.Millisecond, func() { got = append(got, "b") })

	if n := m.Advance(9 * time.Millisecond); n != 0 {
		t.Fatalf("Advance(9ms) fired %d, want 0", n)
	}
	if n := m.Advance(21 * time.Millisecond); n != 3 {
		t.Fatalf("Advance(21ms) fired %d, want 3", n)
	}

	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("fire order = %v, want %v", got, want)
	}
	if m.Now() != 30*time.Millisecond {
		t.Errorf("Now() = %v, want 30ms", m.Now())
	}
}

func TestManualTimerStop(t *testing.T) {
	m := NewManual()
	fired := false
	timer := m.After(time.Second, func() { fired = true })

	if !timer.Stop() {
		t.Error("Stop() on pending timer = false, want true")
	}
	if timer.Stop() {
		t.Error("second Stop() = true, want false")
	}

	m.Advance(2 * time.Second)
	if fired {
		t.Error("stopped timer fired")
	}
}

func TestManualStopAfterFire(t *testing.T) {
	m := NewManual()
	timer := m.After(time.Millisecond, func() {})
	m.Advance(time.Millisecond)
	if timer.Stop() {
		t.Error("Stop() after fire = true, want false")
	}
}

func TestManualNestedTimersInsideWindow(t *testing.T) {
	m := NewManual()
	var got []time.Duration

	m.After(10*time.Millisecond, func() {
		got = append(got, m.Now())
		m.After(10*time.Millisecond, func() { got = append(got, m.Now()) })
	})

	m.Advance(25 * time.Millisecond)

	want := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("fire times = %v, want %v", got, want)
	}
}

func TestManualFrameDefersNestedCallbacks(t *testing.T) {
	m := NewManual()
	var got []int

	m.NextFrame(func() {
		got = append(got, 1)
		m.NextFrame(func() { got = append(got, 2) })
	})

	if n := m.Frame(); n != 1 {
		t.Fatalf("first Frame() ran %d, want 1", n)
	}
	if !reflect.DeepEqual(got, []int{1}) {
		t.Fatalf("after first frame got %v, want [1]", got)
	}

	m.Frame()
	if !reflect.DeepEqual(got, []int{1, 2}) {
		t.Errorf("after second frame got %v, want [1 2]", got)
	}
}

func TestManualSettle(t *testing.T) {
	m := NewManual()
	done := false
	m.NextFrame(func() {
		m.After(100*time.Millisecond, func() { done = true })
	})

	steps := m.Settle(FrameInterval, 100)
	if !done {
		t.Fatal("Settle() did not run the nested timer")
	}
	if steps == 0 || steps >= 100 {
		t.Errorf("Settle() steps = %d, want between 1 and 99", steps)
	}
	if timers, frames := m.Pending(); timers != 0 || frames != 0 {
		t.Errorf("Pending() = %d, %d after Settle, want 0, 0", timers, frames)
	}
}

func TestDebouncerCollapsesBurst(t *testing.T) {
	m := NewManual()
	runs := 0
	d := NewDebouncer(m, 150*time.Millisecond, func() { runs++ })

	for i := 0; i < 5; i++ {
		d.Trigger()
		m.Advance(100 * time.Millisecond)
	}
	if runs != 0 {
		t.Fatalf("runs during burst = %d, want 0", runs)
	}

	m.Advance(150 * time.Millisecond)
	if runs != 1 {
		t.Errorf("runs after quiet period = %d, want 1", runs)
	}
}

func TestDebouncerStop(t *testing.T) {
	m := NewManual()
	runs := 0
	d := NewDebouncer(m, 150*time.Millisecond, func() { runs++ })

	if d.Stop() {
		t.Error("Stop() with nothing pending = true, want false")
	}

	d.Trigger()
	if !d.Stop() {
		t.Error("Stop() with pending run = false, want true")
	}
	m.Advance(time.Second)
	if runs != 0 {
		t.Errorf("runs = %d after Stop, want 0", runs)
	}
}
