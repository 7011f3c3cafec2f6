package logger

import "testing"

func TestNewWithDefaults(t *testing.T) {
	log, err := New(nil)
	if err != nil {
		t.Fatalf("New(nil) returned error: %v", err)
	}
	if log == nil || log.Logger == nil {
		t.Fatal("expected a usable logger")
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"bad level", func(c *Config) { c.Level = "verbose" }, true},
		{"bad format", func(c *Config) { c.Format = "xml" }, true},
		{"bad output", func(c *Config) { c.Output = "syslog" }, true},
		{"file output without filename", func(c *Config) {
			c.Output = "file"
			c.File.Filename = ""
		}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestGlobalLoggerFallback(t *testing.T) {
	// L must never return nil even before InitGlobal
	if L() == nil {
		t.Fatal("L() returned nil")
	}

	if err := InitGlobal(DefaultConfig()); err != nil {
		t.Fatalf("InitGlobal failed: %v", err)
	}
	if L() == nil {
		t.Fatal("L() returned nil after InitGlobal")
	}
}
