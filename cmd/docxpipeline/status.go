package main

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
)

type diagnostics struct {
	ModelID            string `json:"model_id"`
	ModelKeyConfigured bool   `json:"model_key_configured"`
	ModelBaseURL       string `json:"model_base_url"`
	GoVersion          string `json:"go_version"`
	HeapAllocBytes     uint64 `json:"heap_alloc_bytes"`
	DiskFreeBytes      uint64 `json:"disk_free_bytes,omitempty"`
	DiskTotalBytes     uint64 `json:"disk_total_bytes,omitempty"`
}

func newStatusCmd() *cobra.Command {
	var cfgPath string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print environment diagnostics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				fatalf(exitError, "%v", err)
			}

			baseURL := os.Getenv("OPENAI_BASE_URL")
			if baseURL == "" {
				baseURL = "https://api.openai.com/v1"
			}

			var mem runtime.MemStats
			runtime.ReadMemStats(&mem)

			d := diagnostics{
				ModelID:            cfg.ModelID,
				ModelKeyConfigured: modelKeyConfigured(),
				ModelBaseURL:       baseURL,
				GoVersion:          runtime.Version(),
				HeapAllocBytes:     mem.HeapAlloc,
			}
			if free, total, err := diskHeadroom("."); err == nil {
				d.DiskFreeBytes, d.DiskTotalBytes = free, total
			}

			if asJSON {
				data, err := json.MarshalIndent(d, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			fmt.Printf("model_id:              %s\n", d.ModelID)
			fmt.Printf("model_key_configured:  %t\n", d.ModelKeyConfigured)
			fmt.Printf("model_base_url:        %s\n", d.ModelBaseURL)
			fmt.Printf("go_version:            %s\n", d.GoVersion)
			fmt.Printf("heap_alloc_bytes:      %d\n", d.HeapAllocBytes)
			if d.DiskTotalBytes > 0 {
				fmt.Printf("disk_free_bytes:       %d\n", d.DiskFreeBytes)
				fmt.Printf("disk_total_bytes:      %d\n", d.DiskTotalBytes)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "", "path to a pipeline config YAML file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print diagnostics as JSON")
	return cmd
}

// diskHeadroom reports free/total bytes on the filesystem holding path.
// There is no automation handle to probe in this rendition; filesystem
// headroom is the one diagnostic that generalizes from the original's
// COM-automation availability check to something this repo can answer.
func diskHeadroom(path string) (free, total uint64, err error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return 0, 0, err
	}
	free = stat.Bavail * uint64(stat.Bsize)
	total = stat.Blocks * uint64(stat.Bsize)
	return free, total, nil
}
