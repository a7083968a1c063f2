package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/zatekoja/healthcapacity/internal/domain/entities"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// options are shared by every subcommand
type options struct {
	file      string
	apiURL    string
	tablePath string
	jsonOut   bool
	verbose   bool
	limit     int
	radiusKm  float64
	filter    entities.FacilityFilter
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:          "redirect",
		Short:        "Patient redirection recommendations from hospital occupancy statistics",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initLogging(cmd.ErrOrStderr(), opts.verbose)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.file, "file", "f", "", "read facility statistics from a JSON export instead of the API")
	flags.StringVar(&opts.apiURL, "api-url", "", "statistics API base URL (default $HEALTHCARE_API_URL)")
	flags.StringVar(&opts.tablePath, "table", "", "YAML compatibility table (default $COMPATIBILITY_TABLE_PATH or built-in)")
	flags.BoolVar(&opts.jsonOut, "json", false, "print JSON instead of text")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")
	flags.Float64Var(&opts.radiusKm, "radius", 0, "search radius in km (default from configuration)")
	flags.StringVar(&opts.filter.District, "district", "", "only facilities in this district")
	flags.StringVar(&opts.filter.FacilityType, "type", "", "only facilities of this type")
	flags.StringVar(&opts.filter.BedProfile, "profile", "", "only this bed profile")
	flags.StringVar(&opts.filter.Search, "search", "", "substring match on organisation name")

	rootCmd.AddCommand(recommendCmd(opts))
	rootCmd.AddCommand(alternativesCmd(opts))
	rootCmd.AddCommand(sourcesCmd(opts))
	rootCmd.AddCommand(bedsCmd(opts))
	rootCmd.AddCommand(summaryCmd(opts))
	rootCmd.AddCommand(fetchCmd(opts))

	return rootCmd
}

func recommendCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "List overloaded facilities with ranked redirection targets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRecommend(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "alternatives shown per facility (default from configuration)")
	return cmd
}

func alternativesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alternatives [facility-id]",
		Short: "Rank redirection targets for one facility",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runAlternatives(cmd.Context(), cmd.OutOrStdout(), opts, id)
		},
	}
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "alternatives shown (default from configuration)")
	return cmd
}

func sourcesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sources [facility-id]",
		Short: "List overloaded facilities that could send patients to a facility",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runSources(cmd.Context(), cmd.OutOrStdout(), opts, id)
		},
	}
}

func bedsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "beds [facility-id]",
		Short: "Estimate beds needed to bring a facility to the target occupancy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return runBeds(cmd.Context(), cmd.OutOrStdout(), opts, id)
		},
	}
}

func summaryCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show occupancy totals per load band and district",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSummary(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
}

func fetchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:       "fetch [facilities|hospitalizations|city-beds]",
		Short:     "Download a statistics dataset from the API",
		Long:      "Download a statistics dataset from the API. The facilities export can be fed back with --file.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{datasetFacilities, datasetHospitalizations, datasetCityBeds},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd.Context(), cmd.OutOrStdout(), opts, args[0])
		},
	}
}
