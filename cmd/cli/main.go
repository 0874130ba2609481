package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"taxoscreen/adapters/tabular"
	"taxoscreen/app"
	"taxoscreen/domain/abundance"
	"taxoscreen/domain/core"
	"taxoscreen/domain/screen"
	"taxoscreen/internal/classify"
	"taxoscreen/internal/ecology"
	"taxoscreen/internal/lasso"
	"taxoscreen/internal/ordination"
	"taxoscreen/internal/report"
	"taxoscreen/internal/testkit"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "taxoscreen",
		Short: "Comparative metagenomics toolkit: screening, ordination, classification",
	}

	rootCmd.AddCommand(
		newScreenCmd(),
		newDistanceCmd(),
		newDiversityCmd(),
		newOrdinateCmd(),
		newClassifyCmd(),
		newLassoCmd(),
		newDemoCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newScreenCmd() *cobra.Command {
	var variant, covariate string
	var cutoff, alpha float64
	var workers int
	var markdown, relative bool

	cmd := &cobra.Command{
		Use:   "screen [matrix-file] [metadata-file]",
		Short: "Screen features for group association with FDR correction",
		Long: `Screen every sufficiently abundant feature for association with the
sample grouping (Wilcoxon rank-sum) or a numeric covariate (Spearman),
apply Benjamini-Hochberg correction, and report significant features.

Example: taxoscreen screen abundance.tsv metadata.tsv --alpha 0.05`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			matrix, metadata, err := loadPair(args[0], args[1])
			if err != nil {
				return err
			}
			if relative {
				if matrix, err = matrix.RelativeAbundance(); err != nil {
					return err
				}
			}

			cfg := screen.Config{
				Variant:         screen.TestVariant(variant),
				CovariateColumn: covariate,
				AbundanceCutoff: cutoff,
				Alpha:           alpha,
				Workers:         workers,
			}
			outcome, err := app.NewScreenService().Screen(context.Background(), matrix, metadata, cfg)
			if err != nil {
				return err
			}

			if markdown {
				run := &screen.Run{
					ID:            core.RunID(core.NewID()),
					DatasetLabel:  args[0],
					Config:        cfg.WithDefaults(),
					Status:        screen.RunStatusCompleted,
					FeaturesTotal: outcome.FeaturesTotal,
					FeaturesKept:  outcome.FeaturesKept,
					Results:       outcome.Results,
					CreatedAt:     core.Now(),
				}
				fmt.Println(report.Markdown(run))
				return nil
			}
			return printJSON(outcome)
		},
	}

	cmd.Flags().StringVar(&variant, "variant", string(screen.TestTwoGroup), "test variant: two_group or correlation")
	cmd.Flags().StringVar(&covariate, "covariate", "", "metadata column for the correlation variant")
	cmd.Flags().Float64Var(&cutoff, "cutoff", screen.DefaultAbundanceCutoff, "minimum per-feature abundance to test")
	cmd.Flags().Float64Var(&alpha, "alpha", screen.DefaultAlpha, "adjusted p-value significance level")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent feature tests (0 = all cores)")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "print a markdown report instead of JSON")
	cmd.Flags().BoolVar(&relative, "relative", false, "convert counts to relative abundance first")
	return cmd
}

func newDistanceCmd() *cobra.Command {
	var metric string

	cmd := &cobra.Command{
		Use:   "distance [matrix-file]",
		Short: "Compute the sample dissimilarity matrix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matrix, err := tabular.NewDataReader().ReadMatrix(args[0])
			if err != nil {
				return err
			}
			dist, err := ecology.DistanceMatrix(matrix, metric)
			if err != nil {
				return err
			}
			return printJSON(map[string]interface{}{
				"metric":   metric,
				"samples":  matrix.Samples,
				"distance": dist,
			})
		},
	}

	cmd.Flags().StringVar(&metric, "metric", ecology.MetricBrayCurtis, "braycurtis, jaccard, or euclidean")
	return cmd
}

func newDiversityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diversity [matrix-file]",
		Short: "Compute per-sample alpha diversity indices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matrix, err := tabular.NewDataReader().ReadMatrix(args[0])
			if err != nil {
				return err
			}
			div := ecology.AlphaDiversity(matrix)
			return printJSON(map[string]interface{}{
				"samples": div,
				"shannon": ecology.SummarizeShannon(div),
			})
		},
	}
	return cmd
}

func newOrdinateCmd() *cobra.Command {
	var method, metric string
	var axes int

	cmd := &cobra.Command{
		Use:   "ordinate [matrix-file]",
		Short: "Project samples with PCA or PCoA",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matrix, err := tabular.NewDataReader().ReadMatrix(args[0])
			if err != nil {
				return err
			}

			var result *ordination.Result
			switch method {
			case "pca":
				result, err = ordination.PCA(matrix, axes)
			case "pcoa":
				dist, derr := ecology.DistanceMatrix(matrix, metric)
				if derr != nil {
					return derr
				}
				result, err = ordination.PCoA(dist, matrix.Samples, axes)
			default:
				return fmt.Errorf("unknown ordination method: %s", method)
			}
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&method, "method", "pcoa", "pca or pcoa")
	cmd.Flags().StringVar(&metric, "metric", ecology.MetricBrayCurtis, "distance metric for pcoa")
	cmd.Flags().IntVar(&axes, "axes", 2, "number of axes to keep")
	return cmd
}

func newClassifyCmd() *cobra.Command {
	var metric string
	var k int

	cmd := &cobra.Command{
		Use:   "classify [matrix-file] [metadata-file]",
		Short: "Validate group clusters with leave-one-out kNN",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			matrix, metadata, err := loadPair(args[0], args[1])
			if err != nil {
				return err
			}
			dist, err := ecology.DistanceMatrix(matrix, metric)
			if err != nil {
				return err
			}
			rep, err := classify.LeaveOneOut(dist, matrix.Samples, metadata.Groups, k)
			if err != nil {
				return err
			}
			return printJSON(rep)
		},
	}

	cmd.Flags().StringVar(&metric, "metric", ecology.MetricBrayCurtis, "distance metric")
	cmd.Flags().IntVar(&k, "k", 3, "number of neighbors")
	return cmd
}

func newLassoCmd() *cobra.Command {
	var lambda float64
	var folds int
	var seed int64

	cmd := &cobra.Command{
		Use:   "lasso [matrix-file] [metadata-file]",
		Short: "Fit a cross-validated LASSO logistic regression on the grouping",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			matrix, metadata, err := loadPair(args[0], args[1])
			if err != nil {
				return err
			}
			x, y, err := supervisedInputs(matrix, metadata)
			if err != nil {
				return err
			}

			fitCfg := lasso.FitConfig{Lambda: lambda}
			eval, err := lasso.CrossValidate(x, y, matrix.Features, lasso.CVConfig{
				Folds: folds,
				Seed:  seed,
				Fit:   fitCfg,
			})
			if err != nil {
				return err
			}

			model, err := lasso.Fit(x, y, matrix.Features, fitCfg)
			if err != nil {
				return err
			}
			return printJSON(map[string]interface{}{
				"evaluation": eval,
				"selected":   model.SelectedFeatures(),
			})
		},
	}

	cmd.Flags().Float64Var(&lambda, "lambda", 0.01, "L1 penalty strength")
	cmd.Flags().IntVar(&folds, "folds", 5, "cross-validation folds")
	cmd.Flags().Int64Var(&seed, "seed", 42, "fold assignment seed")
	return cmd
}

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the full pipeline on a seeded synthetic dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := testkit.NewGenerator(testkit.DefaultConfig())
			matrix, metadata := gen.Generate()

			outcome, err := app.NewScreenService().Screen(context.Background(), matrix, metadata, screen.Config{})
			if err != nil {
				return err
			}

			dist, err := ecology.DistanceMatrix(matrix, ecology.MetricBrayCurtis)
			if err != nil {
				return err
			}
			knnReport, err := classify.LeaveOneOut(dist, matrix.Samples, metadata.Groups, 3)
			if err != nil {
				return err
			}
			pcoa, err := ordination.PCoA(dist, matrix.Samples, 2)
			if err != nil {
				return err
			}

			x, y, err := supervisedInputs(matrix, metadata)
			if err != nil {
				return err
			}
			eval, err := lasso.CrossValidate(x, y, matrix.Features, lasso.CVConfig{Folds: 5, Seed: 42})
			if err != nil {
				return err
			}

			return printJSON(map[string]interface{}{
				"screen":    outcome,
				"knn":       knnReport,
				"pcoa_axes": pcoa.Explained,
				"lasso":     eval,
			})
		},
	}
	return cmd
}

// supervisedInputs converts the matrix and two-level grouping into the
// samples-by-features design and 0/1 labels the supervised pipeline needs.
func supervisedInputs(matrix *abundance.AbundanceMatrix, metadata *abundance.SampleMetadata) ([][]float64, []int, error) {
	levels := metadata.GroupLevels()
	if len(levels) != 2 {
		return nil, nil, core.NewGroupingError(len(levels))
	}

	x := make([][]float64, matrix.NumSamples())
	y := make([]int, matrix.NumSamples())
	for j := 0; j < matrix.NumSamples(); j++ {
		x[j] = matrix.Column(j)
		if metadata.Groups[j] == levels[1] {
			y[j] = 1
		}
	}
	return x, y, nil
}

func loadPair(matrixPath, metadataPath string) (*abundance.AbundanceMatrix, *abundance.SampleMetadata, error) {
	reader := tabular.NewDataReader()
	matrix, err := reader.ReadMatrix(matrixPath)
	if err != nil {
		return nil, nil, err
	}
	metadata, err := reader.ReadMetadata(metadataPath, matrix)
	if err != nil {
		return nil, nil, err
	}
	return matrix, metadata, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
