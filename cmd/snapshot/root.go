package snapshot

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/ValentinKolb/dSlot/cmd/util"
	"github.com/ValentinKolb/dSlot/lib/common"
	"github.com/ValentinKolb/dSlot/lib/slot"
	"github.com/ValentinKolb/dSlot/lib/slotmap/container"
	snap "github.com/ValentinKolb/dSlot/lib/slotmap/snapshot"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// SnapshotCmd saves a table, loads it again and verifies the result
	SnapshotCmd = &cobra.Command{
		Use:   "snapshot",
		Short: "Save and reload a table snapshot",
		Long: `Builds a container with --keys keys, saves it with the selected codec to
--file (or memory if no file is given), loads the snapshot into a new container
and verifies size, order, attributes and values.`,
		RunE: run,
	}
)

func init() {
	cobra.OnInitialize(util.InitConfig)

	util.SetupTableFlags(SnapshotCmd)

	key := "codec"
	SnapshotCmd.Flags().String(key, "binary", util.WrapString("Codec used for the snapshot (binary, json, gob)"))
	key = "file"
	SnapshotCmd.Flags().String(key, "", util.WrapString("Path of the snapshot file (empty = keep it in memory)"))
}

func run(cmd *cobra.Command, _ []string) error {
	config, err := util.Setup(cmd)
	if err != nil {
		return err
	}
	codec, err := util.GetCodec()
	if err != nil {
		return err
	}

	src, err := build(config)
	if err != nil {
		return err
	}

	n, err := roundTrip(src, codec, viper.GetString("file"), func() (*container.Container, error) {
		return util.NewContainer(config)
	})
	if err != nil {
		return err
	}
	fmt.Printf("saved and verified %d slots (%s, %s)\n", n, codec.Name(), src.Implementation())
	return nil
}

// build creates a container holding values of every serializable type
func build(config *common.Config) (*container.Container, error) {
	c, err := util.NewContainer(config)
	if err != nil {
		return nil, err
	}
	for i := 0; i < config.Keys; i++ {
		var key slot.Key
		var value interface{}
		switch i % 4 {
		case 0:
			key, value = slot.StringKey(fmt.Sprintf("key-%d", i)), fmt.Sprintf("value-%d", i)
		case 1:
			key, value = slot.IndexKey(int32(i)), i
		case 2:
			key, value = slot.StringKey(fmt.Sprintf("key-%d", i)), float64(i)/2
		default:
			key, value = slot.IndexKey(int32(i)), i%8 == 3
		}
		s, err := c.Modify(key, slot.Attributes(i%3))
		if err != nil {
			return nil, err
		}
		s.SetRawValue(value)
	}
	return c, nil
}

// roundTrip saves src to path (or a buffer), loads it into a new container
// and compares both. It returns the number of verified slots.
func roundTrip(src *container.Container, codec snap.Codec, path string, newContainer func() (*container.Container, error)) (int, error) {
	var (
		buf bytes.Buffer
		w   io.Writer = &buf
	)
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return 0, fmt.Errorf("failed to create snapshot file: %v", err)
		}
		defer f.Close()
		w = f
	}
	if err := src.Save(w, codec); err != nil {
		return 0, fmt.Errorf("failed to save snapshot: %w", err)
	}

	var r io.Reader = &buf
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return 0, fmt.Errorf("failed to open snapshot file: %v", err)
		}
		defer f.Close()
		r = f
	}

	dst, err := newContainer()
	if err != nil {
		return 0, err
	}
	if err := dst.Load(r, codec); err != nil {
		return 0, fmt.Errorf("failed to load snapshot: %w", err)
	}

	want, got := src.Slots(), dst.Slots()
	if len(want) != len(got) {
		return 0, fmt.Errorf("size mismatch: saved %d slots, loaded %d", len(want), len(got))
	}
	for i := range want {
		if want[i].Key() != got[i].Key() {
			return 0, fmt.Errorf("order mismatch at %d: saved '%s', loaded '%s'", i, want[i].Key(), got[i].Key())
		}
		if want[i].Attributes() != got[i].Attributes() || want[i].Value() != got[i].Value() {
			return 0, fmt.Errorf("slot '%s' changed: saved %v (%s), loaded %v (%s)",
				want[i].Key(), want[i].Value(), want[i].Attributes(), got[i].Value(), got[i].Attributes())
		}
	}
	return len(got), nil
}
