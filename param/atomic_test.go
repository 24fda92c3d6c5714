// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package param_test

import (
	"testing"

	"code.aurasignal.dev/dataflow/param"
)

func TestAtomicValueStoreLoad(t *testing.T) {
	a := param.NewAtomicValue(param.NormalizedZero)
	a.Store(0.75)
	if v := a.Load(); v != 0.75 {
		t.Fatalf("Load() = %v, want 0.75", v)
	}
}

func TestAtomicValueChangedFlagClearsOnTake(t *testing.T) {
	a := param.NewAtomicValue(param.NormalizedZero)
	if _, changed := a.TakeChanged(); changed {
		t.Fatalf("fresh AtomicValue should not report changed")
	}
	a.Store(0.25)
	v, changed := a.TakeChanged()
	if !changed || v != 0.25 {
		t.Fatalf("TakeChanged() = %v, %v; want 0.25, true", v, changed)
	}
	if _, changed := a.TakeChanged(); changed {
		t.Fatalf("second TakeChanged should report no change")
	}
}
