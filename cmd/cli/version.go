package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leadflow/leadflow/internal/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()

			fmt.Printf("leadflow %s\n", info.Version)
			if info.GitCommit != "" {
				fmt.Printf("  commit: %s\n", info.GitCommit)
			}
			fmt.Printf("  go: %s\n", info.GoVersion)
			fmt.Printf("  platform: %s\n", info.Platform)

			return nil
		},
	}
}
