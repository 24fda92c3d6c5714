// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ring_test

import (
	"testing"

	"code.aurasignal.dev/dataflow/ring"
)

func TestPushPopOrder(t *testing.T) {
	r := ring.NewSPSC[int](4)
	for i := 0; i < 4; i++ {
		if err := r.Push(i); err != nil {
			t.Fatalf("Push(%d): %v", i, err)
		}
	}
	for i := 0; i < 4; i++ {
		v, err := r.Pop()
		if err != nil || v != i {
			t.Fatalf("Pop() = %d, %v; want %d, nil", v, err, i)
		}
	}
}

func TestCapRoundsToPow2(t *testing.T) {
	r := ring.NewSPSC[int](5)
	if r.Cap() != 8 {
		t.Fatalf("Cap(): got %d, want 8", r.Cap())
	}
}

func TestPushFullReturnsError(t *testing.T) {
	r := ring.NewSPSC[int](2)
	if err := r.Push(1); err != nil {
		t.Fatalf("Push 1: %v", err)
	}
	if err := r.Push(2); err != nil {
		t.Fatalf("Push 2: %v", err)
	}
	if err := r.Push(3); err != ring.ErrFull {
		t.Fatalf("Push at capacity: got %v, want ErrFull", err)
	}
}

func TestPopEmptyReturnsError(t *testing.T) {
	r := ring.NewSPSC[int](2)
	if _, err := r.Pop(); err != ring.ErrEmpty {
		t.Fatalf("Pop on empty: got %v, want ErrEmpty", err)
	}
}

func TestPushSlicePopSliceWraparound(t *testing.T) {
	r := ring.NewSPSC[int](4)
	n := r.PushSlice([]int{1, 2, 3})
	if n != 3 {
		t.Fatalf("PushSlice: got %d, want 3", n)
	}
	dst := make([]int, 2)
	if got := r.PopSlice(dst); got != 2 || dst[0] != 1 || dst[1] != 2 {
		t.Fatalf("PopSlice: got %d %v", got, dst)
	}
	// Push more, forcing the write index to wrap past the buffer end.
	n = r.PushSlice([]int{4, 5, 6})
	if n != 3 {
		t.Fatalf("PushSlice after partial drain: got %d, want 3", n)
	}
	dst = make([]int, 4)
	got := r.PopSlice(dst)
	if got != 4 {
		t.Fatalf("PopSlice: got %d, want 4", got)
	}
	want := []int{3, 4, 5, 6}
	for i, w := range want {
		if dst[i] != w {
			t.Fatalf("PopSlice order: got %v, want %v", dst, want)
		}
	}
}

func TestPushSlicePartialWhenFull(t *testing.T) {
	r := ring.NewSPSC[int](4)
	n := r.PushSlice([]int{1, 2, 3, 4, 5, 6})
	if n != 4 {
		t.Fatalf("PushSlice into empty ring of cap 4: got %d, want 4", n)
	}
}

func TestDrainClearsPending(t *testing.T) {
	r := ring.NewSPSC[int](4)
	_ = r.Push(1)
	_ = r.Push(2)
	r.Drain()
	if _, err := r.Pop(); err != ring.ErrEmpty {
		t.Fatalf("Pop after Drain: got err=%v, want ErrEmpty", err)
	}
}
