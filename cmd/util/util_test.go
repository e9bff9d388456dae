package util

import (
	"strings"
	"testing"

	"github.com/ValentinKolb/dSlot/lib/common"
	"github.com/ValentinKolb/dSlot/lib/slotmap"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func TestWrapString(t *testing.T) {
	text := strings.Repeat("word ", 40)
	for _, line := range strings.Split(WrapString(text), "\n") {
		if len(line) > Wrap {
			t.Errorf("Expected lines of at most %d characters, got %d", Wrap, len(line))
		}
	}
	if WrapString("") != "" {
		t.Errorf("Expected empty output for empty input")
	}
}

func TestSetup(t *testing.T) {
	t.Setenv("DSLOT_LARGE_HASH_SIZE", "123")
	InitConfig()

	cmd := &cobra.Command{Use: "test"}
	SetupTableFlags(cmd)
	if err := cmd.ParseFlags([]string{"--table", "ordered", "--thread-safe"}); err != nil {
		t.Fatalf("Failed to parse flags: %v", err)
	}
	if err := viper.BindPFlags(cmd.PersistentFlags()); err != nil {
		t.Fatalf("Failed to bind flags: %v", err)
	}

	config := GetConfig()
	if config.Table != "ordered" || !config.ThreadSafe {
		t.Errorf("Expected flags to be applied, got %+v", config)
	}
	if config.LargeHashSize != 123 {
		t.Errorf("Expected large hash size from the environment, got %d", config.LargeHashSize)
	}

	c, err := NewContainer(config)
	if err != nil {
		t.Fatalf("Failed to create container: %v", err)
	}
	if p := c.Policy(); p.Table != slotmap.ImplOrdered || p.LargeHashSize != 123 || !p.ThreadSafe {
		t.Errorf("Expected the policy to follow the configuration, got %+v", p)
	}

	if _, err := NewContainer(&common.Config{Table: "hashed", LargeHashSize: 1}); err == nil {
		t.Errorf("Expected error for a table kind that can't be selected")
	}
}
