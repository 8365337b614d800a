package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leadflow/leadflow/internal/initialization"
	"github.com/leadflow/leadflow/internal/version"
)

func NewStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show service configuration status",
		Long:  `Display the resolved configuration and which optional providers are available.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus()
		},
	}

	return cmd
}

func runStatus() error {
	fmt.Printf("leadflow %s\n", version.GetShortVersion())

	config, err := initialization.LoadConfig()
	if err != nil {
		fmt.Println("❌ Configuration incomplete")
		fmt.Printf("   %v\n", err)
		return nil
	}

	fmt.Println("✅ Configuration loaded")
	fmt.Printf("   HTTP address: %s\n", config.HTTPAddress)
	fmt.Printf("   Email lookup: %s\n", availability(config.HunterAPIKey != ""))
	fmt.Printf("   Company search: %s\n", availability(config.CompanySearchURL != ""))

	return nil
}

func availability(configured bool) string {
	if configured {
		return "configured"
	}
	return "not configured"
}
