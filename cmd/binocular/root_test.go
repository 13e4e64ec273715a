package main

import (
	"testing"
)

func TestParseCoefs(t *testing.T) {
	got, err := parseCoefs("beta", "1,-2, 0.5")
	if err != nil {
		t.Fatalf("parseCoefs failed: %v", err)
	}
	want := []float64{1, -2, 0.5}
	if len(got) != len(want) {
		t.Fatalf("got %d coefficients, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("coef[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestParseCoefs_Invalid(t *testing.T) {
	if _, err := parseCoefs("beta", ""); err == nil {
		t.Error("empty vector should fail")
	}
	if _, err := parseCoefs("beta", "1,x"); err == nil {
		t.Error("non-numeric coefficient should fail")
	}
}

func TestStartValues_DefaultsToOnes(t *testing.T) {
	beta, gamma, err := startValues(1, 1, "", "", "")
	if err != nil {
		t.Fatalf("startValues failed: %v", err)
	}
	for i, v := range beta.Coef {
		if v != 1 {
			t.Errorf("beta[%d] = %v, want 1", i, v)
		}
	}
	for j := 0; j < 2; j++ {
		for i, v := range gamma.Free(j) {
			if v != 1 {
				t.Errorf("gamma%d[%d] = %v, want 1", j+1, i, v)
			}
		}
	}
}

func TestStartValues_DimensionMismatch(t *testing.T) {
	if _, _, err := startValues(2, 1, "1,2", "", ""); err == nil {
		t.Error("short beta vector should fail against p=2")
	}
	if _, _, err := startValues(1, 2, "", "1,2", "1,2"); err == nil {
		t.Error("short gamma vectors should fail against q=2")
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{
		"simulate": false, "fit": false, "mcmc": false,
		"misclassprob": false, "runs": false, "version": false,
	}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}
