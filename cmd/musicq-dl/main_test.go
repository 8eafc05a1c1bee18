package main

import (
	"reflect"
	"testing"
)

func TestSplitURLs(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"https://youtu.be/a", []string{"https://youtu.be/a"}},
		{"https://youtu.be/a, https://youtu.be/b", []string{"https://youtu.be/a", "https://youtu.be/b"}},
		{"https://youtu.be/a\r\n\nhttps://youtu.be/b\n", []string{"https://youtu.be/a", "https://youtu.be/b"}},
		{" , ,", nil},
	}
	for _, tt := range tests {
		if got := splitURLs(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitURLs(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
