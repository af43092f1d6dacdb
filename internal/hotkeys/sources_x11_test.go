package hotkeys

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"
)

func keymapWith(codes ...xproto.Keycode) []byte {
	keys := make([]byte, 32)
	for _, kc := range codes {
		keys[kc/8] |= 1 << (kc % 8)
	}
	return keys
}

func TestDiffKeymap(t *testing.T) {
	codes := map[xproto.Keycode]Key{
		37: KeyControlL,
		49: KeyGrave,
		64: KeyAltL,
		23: KeyTab,
	}

	tests := []struct {
		name string
		prev []byte
		cur  []byte
		want []KeyEvent
	}{
		{
			name: "nothing changed",
			prev: keymapWith(37),
			cur:  keymapWith(37),
			want: nil,
		},
		{
			name: "chord in one sample puts modifier first",
			prev: nil,
			cur:  keymapWith(49, 37),
			want: []KeyEvent{{KeyControlL, true}, {KeyGrave, true}},
		},
		{
			name: "release",
			prev: keymapWith(64, 23),
			cur:  keymapWith(64),
			want: []KeyEvent{{KeyTab, false}},
		},
		{
			name: "untracked key ignored",
			prev: keymapWith(),
			cur:  keymapWith(100),
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := diffKeymap(tt.prev, tt.cur, codes)
			if len(got) != len(tt.want) {
				t.Fatalf("diffKeymap() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("diffKeymap()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDiffKeymapDrivesDispatcher(t *testing.T) {
	codes := map[xproto.Keycode]Key{37: KeyControlL, 49: KeyGrave}
	a := &fakeActions{}
	d := NewDispatcher(nil, a, quiet())

	samples := [][]byte{
		keymapWith(37),
		keymapWith(37, 49),
		keymapWith(37),
		keymapWith(),
	}
	var prev []byte
	for _, cur := range samples {
		for _, ev := range diffKeymap(prev, cur, codes) {
			d.Handle(ev)
		}
		prev = cur
	}
	if a.captures != 1 {
		t.Fatalf("captures = %d, want 1", a.captures)
	}
	if d.Modifiers().Ctrl {
		t.Fatal("ctrl still held after release sample")
	}
}
