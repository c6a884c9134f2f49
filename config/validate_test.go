package config_test

import (
	"strings"
	"testing"

	"github.com/nest-os/nest/config"
	"go.uber.org/multierr"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *config.Config
		wantErrs []string
	}{
		{"Defaults", config.New(config.Config{}), nil},
		{
			"EmptyKernel",
			config.New(config.Config{Kernels: []string{"linux", ""}}),
			[]string{"Config.Kernels[1]: must be set"},
		},
		{
			"RelativePaths",
			config.New(config.Config{Users: []config.User{{Username: "ada", HomeDir: "ada", Shell: "zsh"}}}),
			[]string{
				`Config.Users[0].HomeDir: "ada" must start with "/"`,
				`Config.Users[0].Shell: "zsh" must start with "/"`,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := config.Validate(tt.cfg)
			errs := multierr.Errors(err)
			if len(errs) != len(tt.wantErrs) {
				t.Fatalf("Validate() errors = %v, want %v", errs, tt.wantErrs)
			}
			for i, e := range errs {
				if !strings.Contains(e.Error(), tt.wantErrs[i]) {
					t.Errorf("Error %d = %q, want %q", i, e.Error(), tt.wantErrs[i])
				}
			}
		})
	}
}
