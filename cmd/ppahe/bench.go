package main

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nvr-ai/go-ppahe/benchmark"
	"github.com/nvr-ai/go-ppahe/images"
)

func newBenchCommand(log func() *zerolog.Logger) *cobra.Command {
	var (
		scenarioFile string
		corpusDir    string
		outputDir    string
		set          string
		resolution   string
		workers      []int
		maxWindows   []int
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run enhancement benchmark scenarios and save the results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := *log()

			res, err := images.ParseFrameSize(resolution)
			if err != nil {
				return err
			}

			var scenarios *benchmark.ScenarioSet
			switch {
			case scenarioFile != "":
				loaded, err := benchmark.LoadScenarioSet(scenarioFile)
				if err != nil {
					return err
				}
				scenarios = loaded
			case set == "quick":
				scenarios = benchmark.QuickScenarios()
			case set == "parallelism":
				scenarios = benchmark.ParallelismScenarios(res, workers)
			case set == "windows":
				scenarios = benchmark.WindowScenarios(res, maxWindows)
			default:
				return errors.Errorf("unknown scenario set %q", set)
			}

			suite := benchmark.NewSuite(outputDir, logger)
			if corpusDir != "" {
				if err := suite.LoadCorpus(corpusDir); err != nil {
					return err
				}
			}
			suite.AddScenarioSet(scenarios)

			logger.Info().Str("set", scenarios.Name).Int("scenarios", len(scenarios.Scenarios)).Msg("running benchmark")
			if err := suite.RunAllScenarios(cmd.Context()); err != nil {
				return err
			}
			results, summary, err := suite.SaveResults()
			if err != nil {
				return err
			}
			logger.Info().Str("results", results).Str("summary", summary).Msg("benchmark saved")
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&scenarioFile, "scenarios", "", "JSON scenario set file (overrides --set)")
	f.StringVar(&set, "set", "quick", "predefined scenario set (quick, parallelism, windows)")
	f.StringVar(&resolution, "resolution", "vga", "frame size for the parallelism and windows sets (alias such as 720p, or WIDTHxHEIGHT)")
	f.StringVar(&corpusDir, "corpus", "", "directory of images to benchmark with (default: synthetic frames)")
	f.StringVar(&outputDir, "output-dir", "./benchmark_results", "directory for result files")
	f.IntSliceVar(&workers, "workers", []int{1, 2, 4, 8}, "worker counts for the parallelism set")
	f.IntSliceVar(&maxWindows, "max-windows", []int{15, 33, 65}, "maximum window sizes for the windows set")

	return cmd
}
