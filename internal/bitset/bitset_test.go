// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bitset_test

import (
	"testing"

	"code.aurasignal.dev/dataflow/internal/bitset"
)

func TestSetClearGet(t *testing.T) {
	s := bitset.New(10)
	if s.Get(3) {
		t.Fatalf("bit 3 should start clear")
	}
	s.Set(3)
	if !s.Get(3) {
		t.Fatalf("bit 3 should be set")
	}
	s.Clear(3)
	if s.Get(3) {
		t.Fatalf("bit 3 should be clear again")
	}
}

func TestCapacityBoundaryWordCount(t *testing.T) {
	// Capacities on both sides of each 64-bit word boundary must report
	// their exact Len and address their last bit. The (capacity+32)/64
	// sizing this replaces (see DESIGN.md) allocates no word for
	// capacity 1 and one word too few for 65 and 129, so Set(cap-1)
	// would panic there.
	for _, cap := range []int{1, 63, 64, 65, 127, 128, 129} {
		s := bitset.New(cap)
		if s.Len() != cap {
			t.Fatalf("Len(): got %d, want %d", s.Len(), cap)
		}
		// The last addressable bit must not panic.
		s.Set(cap - 1)
		if !s.Get(cap - 1) {
			t.Fatalf("capacity %d: last bit did not set", cap)
		}
	}
}

func TestOutOfRangePanics(t *testing.T) {
	s := bitset.New(4)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for out-of-range index")
		}
	}()
	s.Get(4)
}

func TestTestAndSet(t *testing.T) {
	s := bitset.New(4)
	if prev := s.TestAndSet(1); prev {
		t.Fatalf("first TestAndSet should report previously clear")
	}
	if prev := s.TestAndSet(1); !prev {
		t.Fatalf("second TestAndSet should report previously set")
	}
}
