package abi

import "testing"

func TestInitSymbol(t *testing.T) {
	tests := []struct {
		gen    Generation
		module string
		want   string
	}{
		{GenCurrent, "demo", "GuestInit_demo"},
		{GenCurrent, "audio_io", "GuestInit_audio_io"},
		{GenLegacy, "demo", "initdemo"},
		{GenLegacy, "audio_io", "initaudio_io"},
	}

	for _, tt := range tests {
		if got := InitSymbol(tt.gen, tt.module); got != tt.want {
			t.Errorf("InitSymbol(%d, %q) = %q, want %q", tt.gen, tt.module, got, tt.want)
		}
	}
}

func TestInitSymbol_Deterministic(t *testing.T) {
	a := InitSymbol(GenCurrent, "demo")
	b := InitSymbol(GenCurrent, "demo")
	if a != b {
		t.Errorf("init symbol not deterministic: %q vs %q", a, b)
	}
}

func TestRef_IsNull(t *testing.T) {
	if !Null.IsNull() {
		t.Error("Null should be null")
	}
	if Ref(1).IsNull() {
		t.Error("non-zero ref should not be null")
	}
}

func TestMethodFlags(t *testing.T) {
	flags := MethVarArgs | MethKeywords
	if flags&MethVarArgs == 0 || flags&MethKeywords == 0 {
		t.Error("flag bits should compose")
	}
	if flags&MethStatic != 0 {
		t.Error("unset flag bit present")
	}
}
