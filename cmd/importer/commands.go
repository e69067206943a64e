package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/namwkim/dataviz-storytelling/internal/dataset"
	"github.com/namwkim/dataviz-storytelling/internal/db"
	"github.com/namwkim/dataviz-storytelling/internal/petition"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type options struct {
	dir           string
	petitionsFile string
	citiesFile    string
	databaseURL   string
	outlierZ      float64
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "importer",
		Short: "Load and inspect the H1B petition dataset",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if os.Getenv("APP_ENV") != "production" {
				_ = godotenv.Load()
			}
			if opts.databaseURL == "" {
				opts.databaseURL = os.Getenv("DATABASE_URL")
			}
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.dir, "dir", "data", "Directory holding the CSV files")
	root.PersistentFlags().StringVar(&opts.petitionsFile, "petitions", "h1b_data.csv", "Petition CSV file name")
	root.PersistentFlags().StringVar(&opts.citiesFile, "cities", "us_cities.csv", "City coordinate CSV file name")
	root.PersistentFlags().StringVar(&opts.databaseURL, "database-url", "", "PostgreSQL DSN (default: $DATABASE_URL)")

	root.AddCommand(newLoadCmd(opts), newStatsCmd(opts))
	return root
}

func newLoadCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Copy the petition and city CSVs into PostgreSQL",
		Long: `Replace the petitions and city_coordinates tables with the rows of
the CSV files in --dir. The raw rows are stored; cleaning happens when the
dashboard loads them.

Examples:
  importer load --dir data
  importer load --dir data --database-url postgres://localhost/h1b`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.databaseURL == "" {
				return errors.New("--database-url or DATABASE_URL is required")
			}
			ctx := cmd.Context()

			csv := petition.NewCSVRepository(dataset.NewFileSource(opts.dir), opts.petitionsFile, opts.citiesFile)
			petitions, err := csv.Petitions(ctx)
			if err != nil {
				return err
			}
			cities, err := csv.Cities(ctx)
			if err != nil {
				return err
			}

			pool, err := db.ConnectPostgres(ctx, opts.databaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			np, nc, err := petition.NewPostgresRepository(pool).Import(ctx, petitions, cities)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ imported %d petitions and %d cities\n", np, nc)
			return nil
		},
	}
}

func newStatsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print what cleaning does to the dataset",
		Long: `Prepare the dataset the way the dashboard does and print the row
counts at each step as JSON. Reads PostgreSQL when --from-db is set,
otherwise the CSV files in --dir.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fromDB, _ := cmd.Flags().GetBool("from-db")
			repo, closeRepo, err := openRepository(cmd.Context(), opts, fromDB)
			if err != nil {
				return err
			}
			defer closeRepo()

			ds, err := petition.NewLoader(repo, opts.outlierZ, nil).Dataset(cmd.Context())
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				petition.Stats
				Years []int `json:"years"`
			}{ds.Stats, ds.Years()})
		},
	}
	cmd.Flags().Bool("from-db", false, "Read the imported tables instead of the CSV files")
	cmd.Flags().Float64Var(&opts.outlierZ, "outlier-z", petition.DefaultOutlierZ, "Absolute wage z-score above which rows are dropped")
	return cmd
}

func openRepository(ctx context.Context, opts *options, fromDB bool) (petition.Repository, func(), error) {
	if !fromDB {
		return petition.NewCSVRepository(dataset.NewFileSource(opts.dir), opts.petitionsFile, opts.citiesFile), func() {}, nil
	}
	if opts.databaseURL == "" {
		return nil, nil, errors.New("--from-db needs --database-url or DATABASE_URL")
	}
	pool, err := db.ConnectPostgres(ctx, opts.databaseURL)
	if err != nil {
		return nil, nil, err
	}
	return petition.NewPostgresRepository(pool), pool.Close, nil
}
