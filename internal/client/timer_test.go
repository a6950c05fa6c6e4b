package client

import (
	"context"
	"testing"
	"time"
)

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{300 * time.Second, "05:00"},
		{180 * time.Second, "03:00"},
		{61 * time.Second, "01:01"},
		{59*time.Second + 100*time.Millisecond, "01:00"},
		{400 * time.Millisecond, "00:01"},
		{0, "00:00"},
		{-5 * time.Second, "00:00"},
	}

	for _, tt := range tests {
		if got := FormatRemaining(tt.d); got != tt.want {
			t.Errorf("FormatRemaining(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestCountdown_RunsToZero(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got []time.Duration
	for left := range Countdown(ctx, time.Now().Add(50*time.Millisecond), 10*time.Millisecond) {
		got = append(got, left)
	}

	if len(got) < 2 {
		t.Fatalf("ticks = %d, want several", len(got))
	}
	if got[len(got)-1] != 0 {
		t.Errorf("last value = %v, want 0", got[len(got)-1])
	}
	for i := 1; i < len(got); i++ {
		if got[i] > got[i-1] {
			t.Errorf("countdown went up: %v", got)
			break
		}
	}
}

func TestCountdown_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := Countdown(ctx, time.Now().Add(time.Hour), 10*time.Millisecond)

	<-ch
	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel not closed after cancel")
		}
	}
}

func TestCountdown_AlreadyExpired(t *testing.T) {
	var got []time.Duration
	for left := range Countdown(context.Background(), time.Now().Add(-time.Minute), time.Hour) {
		got = append(got, left)
	}
	if len(got) != 1 || got[0] != 0 {
		t.Errorf("Countdown() = %v, want [0]", got)
	}
}
