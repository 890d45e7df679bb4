package main

import "testing"

func TestParseSamples(t *testing.T) {
	tests := []struct {
		args    []string
		want    []sample
		wantErr bool
	}{
		{nil, []sample{}, false},
		{[]string{"0.25", "1"}, []sample{{0.25, 1}}, false},
		{[]string{"0", "0", "1", "0.5"}, []sample{{0, 0}, {1, 0.5}}, false},
		{[]string{"0.5"}, nil, true},
		{[]string{"x", "1"}, nil, true},
		{[]string{"1", "y"}, nil, true},
	}
	for _, tt := range tests {
		got, err := parseSamples(tt.args)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseSamples(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			continue
		}
		if tt.wantErr {
			continue
		}
		if len(got) != len(tt.want) {
			t.Fatalf("parseSamples(%v) = %v, want %v", tt.args, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("parseSamples(%v)[%d] = %v, want %v", tt.args, i, got[i], tt.want[i])
			}
		}
	}
}
