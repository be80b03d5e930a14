package perf

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/crucial707/hci-accounts/cmd/cli/config"
	"github.com/crucial707/hci-accounts/cmd/cli/output"
	"github.com/crucial707/hci-accounts/cmd/cli/root"
	"github.com/crucial707/hci-accounts/internal/telemetry"
)

func init() {
	root.GetRoot().AddCommand(perfCmd())
}

func perfCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "perf",
		Short: "Show the server host's CPU, memory and OS",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := config.HTTPClient.Get(config.APIURL() + "/performance")
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("API error (%d)", resp.StatusCode)
			}

			var r telemetry.Report
			if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
				return err
			}
			output.RenderTable(cmd.OutOrStdout(), []string{"METRIC", "VALUE"}, [][]interface{}{
				{"os", fmt.Sprintf("%s %s %s", r.OS.Platform, r.OS.Distro, r.OS.Release)},
				{"cpu cores", r.CPU.Cores},
				{"cpu load", r.CPU.Load},
				{"memory total", r.Memory.Total},
				{"memory used", r.Memory.Used},
				{"memory free", r.Memory.Free},
			})
			return nil
		},
	}
}
