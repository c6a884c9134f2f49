package suggest_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/nest-os/nest/suggest"
)

func ExampleString() {
	hooks := []string{"preBuild", "postBuild", "genInfo"}

	fmt.Printf("Did you mean %q?", suggest.String("postbuild", hooks))
	// Output: Did you mean "postBuild"?
}

func TestString(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		candidates []string
		want       string
	}{
		{"Exact", "timezone", []string{"hostname", "timezone"}, "timezone"},
		{"Almost", "timezon", []string{"hostname", "timezone"}, "timezone"},
		{"NoMatch", "tz", []string{"hostname", "timezone"}, ""},
		{"Long", "initramfs_generatr", []string{"initramfs_generator", "bootloader"}, "initramfs_generator"},
		{"NoCandidates", "kernels", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := suggest.String(tt.input, tt.candidates)
			if got != tt.want {
				t.Errorf("String(%q, %v) = %q, want %q", tt.input, tt.candidates, got, tt.want)
			}
		})
	}
}

func TestFunc(t *testing.T) {
	norm := func(s string) string { return strings.ToLower(strings.Replace(s, "_", "", -1)) }
	fields := []string{"fullName", "homeDir", "manageHome"}

	tests := []struct {
		input string
		want  string
	}{
		{"full_name", "fullName"},
		{"home_dirr", "homeDir"},
		{"MANAGE_HOME", "manageHome"},
		{"password", ""},
	}

	for _, tt := range tests {
		if got := suggest.Func(tt.input, fields, norm); got != tt.want {
			t.Errorf("Func(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
