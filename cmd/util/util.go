package util

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/dSlot/lib/common"
	"github.com/ValentinKolb/dSlot/lib/slotmap"
	"github.com/ValentinKolb/dSlot/lib/slotmap/container"
	"github.com/ValentinKolb/dSlot/lib/slotmap/snapshot"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupTableFlags adds the flags that shape the tables to a command
func SetupTableFlags(cmd *cobra.Command) {
	key := "table"
	cmd.PersistentFlags().String(key, string(slotmap.ImplEmbedded), WrapString("Bucket table kind used before the hashed representation (embedded, ordered)"))

	key = "thread-safe"
	cmd.PersistentFlags().Bool(key, false, WrapString("Use the shared regime with stamped locking"))

	key = "initial-capacity"
	cmd.PersistentFlags().Int(key, 0, WrapString("Bucket capacity of the first table (0 = start with a single entry map)"))

	key = "large-hash-size"
	cmd.PersistentFlags().Int(key, slotmap.DefaultLargeHashSize, WrapString("Slot count at which bucket tables are replaced by the hashed representation"))

	key = "keys"
	cmd.PersistentFlags().Int(key, 1000, WrapString("How many different keys to use"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "warn", WrapString("The level at which logs will be output (debug, info, warn, error)"))
}

// InitConfig loads .env files and binds environment variables with the DSLOT_ prefix
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("dslot")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// GetConfig reads the configuration from viper
func GetConfig() *common.Config {
	return &common.Config{
		LogLevel:        viper.GetString("log-level"),
		Table:           viper.GetString("table"),
		ThreadSafe:      viper.GetBool("thread-safe"),
		InitialCapacity: viper.GetInt("initial-capacity"),
		LargeHashSize:   viper.GetInt("large-hash-size"),
		Threads:         viper.GetInt("threads"),
		Keys:            viper.GetInt("keys"),
		Codec:           viper.GetString("codec"),
	}
}

// Setup binds the flags of cmd, reads the configuration and initializes the loggers
func Setup(cmd *cobra.Command) (*common.Config, error) {
	if err := BindCommandFlags(cmd); err != nil {
		return nil, err
	}
	config := GetConfig()
	if config.Keys < 0 {
		return nil, fmt.Errorf("invalid number of keys %d", config.Keys)
	}
	if err := common.InitLoggers(*config); err != nil {
		return nil, err
	}
	return config, nil
}

// ContainerOptions converts the configuration to container options
func ContainerOptions(config *common.Config) *container.Options {
	return &container.Options{
		InitialCapacity: config.InitialCapacity,
		LargeHashSize:   config.LargeHashSize,
		Table:           slotmap.Implementation(config.Table),
		ThreadSafe:      config.ThreadSafe,
	}
}

// NewContainer creates a container from the configuration
func NewContainer(config *common.Config) (*container.Container, error) {
	c, err := container.New(ContainerOptions(config))
	if err != nil {
		return nil, fmt.Errorf("invalid table configuration: %w", err)
	}
	return c, nil
}

// GetCodec creates a snapshot codec based on configuration
func GetCodec() (snapshot.Codec, error) {
	return snapshot.ByName(viper.GetString("codec"))
}
