package inspect

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ValentinKolb/dSlot/cmd/util"
	"github.com/ValentinKolb/dSlot/lib/common"
	"github.com/ValentinKolb/dSlot/lib/slot"
	"github.com/ValentinKolb/dSlot/lib/slotmap/container"
	"github.com/ValentinKolb/dSlot/lib/slotmap/events"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// InspectCmd fills a container and prints its statistics
	InspectCmd = &cobra.Command{
		Use:   "inspect",
		Short: "Fill a table and print its statistics",
		Long: `Inserts --keys keys into a new container, optionally removes every n-th key
again and prints the Info of the resulting representation as JSON.`,
		RunE: run,
	}
)

func init() {
	cobra.OnInitialize(util.InitConfig)

	util.SetupTableFlags(InspectCmd)

	key := "remove-every"
	InspectCmd.Flags().Int(key, 0, util.WrapString("Remove every n-th key after filling the table (0 = remove nothing)"))
	key = "metrics"
	InspectCmd.Flags().Bool(key, false, util.WrapString("Also print the structural event counters in Prometheus text format"))
}

func run(cmd *cobra.Command, _ []string) error {
	config, err := util.Setup(cmd)
	if err != nil {
		return err
	}

	c, err := fill(config, viper.GetInt("remove-every"))
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(c.Info(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	if viper.GetBool("metrics") {
		fmt.Println()
		events.WritePrometheus(os.Stdout)
	}
	return nil
}

// fill creates a container from config holding config.Keys string keys and
// removes every removeEvery-th of them again
func fill(config *common.Config, removeEvery int) (*container.Container, error) {
	c, err := util.NewContainer(config)
	if err != nil {
		return nil, err
	}

	log := common.GetLogger("cmd")
	for i := 0; i < config.Keys; i++ {
		s, err := c.Modify(slot.StringKey(fmt.Sprintf("key-%d", i)), slot.Empty)
		if err != nil {
			return nil, err
		}
		s.SetRawValue(i)
	}
	log.Infof("inserted %d keys, table is %s", config.Keys, c.Implementation())

	if removeEvery > 0 {
		removed := 0
		for i := 0; i < config.Keys; i += removeEvery {
			if c.Remove(slot.StringKey(fmt.Sprintf("key-%d", i))) {
				removed++
			}
		}
		log.Infof("removed %d keys, table is %s", removed, c.Implementation())
	}
	return c, nil
}
