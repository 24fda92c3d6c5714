// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package note_test

import (
	"testing"

	"code.aurasignal.dev/dataflow/note"
)

func TestVelocityClamped(t *testing.T) {
	if e := note.On(1.5); e.Value != 1 {
		t.Fatalf("On(1.5).Value = %v, want 1", e.Value)
	}
	if e := note.Off(-0.5); e.Value != 0 {
		t.Fatalf("Off(-0.5).Value = %v, want 0", e.Value)
	}
}

func TestKindSelectsPayload(t *testing.T) {
	cases := []struct {
		e    note.Event
		kind note.Kind
	}{
		{note.On(0.8), note.KindOn},
		{note.Off(0.2), note.KindOff},
		{note.Pressure(0.3), note.KindPressure},
		{note.Timbre(0.4), note.KindTimbre},
		{note.Pan(-0.5), note.KindPan},
		{note.Gain(0.9), note.KindGain},
	}
	for _, c := range cases {
		if c.e.Kind != c.kind {
			t.Fatalf("got kind %v, want %v", c.e.Kind, c.kind)
		}
	}
}
