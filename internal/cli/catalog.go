package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"refonte-quiz-service/internal/catalog"
	"refonte-quiz-service/internal/config"
	"refonte-quiz-service/internal/domain"
	"refonte-quiz-service/internal/infra/postgres"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// NewCatalogCmd groups the catalog maintenance commands.
func NewCatalogCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and import question catalogs",
	}
	cmd.AddCommand(newCatalogValidateCmd())
	cmd.AddCommand(newCatalogImportCmd(configPath))
	return cmd
}

func newCatalogValidateCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a catalog file (the embedded catalog when --file is empty)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var loader catalog.Loader = catalog.NewEmbeddedLoader()
			if file != "" {
				loader = catalog.NewFileLoader(file)
			}
			c, err := loader.LoadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			printCatalog(cmd.OutOrStdout(), c)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "catalog JSON file")
	return cmd
}

func newCatalogImportCmd(configPath *string) *cobra.Command {
	var (
		file string
		name string
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Store a catalog file in Postgres under a name",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if name == "" {
				name = cfg.Catalog.Name
			}
			data := catalog.DefaultDocument()
			if file != "" {
				if data, err = os.ReadFile(file); err != nil {
					return errors.Wrapf(err, "read catalog %s", file)
				}
			}
			return importCatalog(cmd.Context(), cfg.Postgres.URL, name, data)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "catalog JSON file (the embedded catalog when empty)")
	cmd.Flags().StringVar(&name, "name", "", "catalog name (defaults to catalog.name)")
	return cmd
}

func importCatalog(ctx context.Context, dsn, name string, data []byte) error {
	if err := runMigrations(ctx, dsn); err != nil {
		return err
	}
	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return errors.Wrap(err, "connect postgres")
	}
	defer pool.Close()
	return postgres.NewCatalogStore(pool, name).SaveCatalog(ctx, data)
}

func printCatalog(w io.Writer, c *domain.Catalog) {
	questions := 0
	for _, s := range c.Sections {
		fmt.Fprintf(w, "%-12s %-24s %d questions\n", s.Slug, s.Name, len(s.Questions))
		questions += len(s.Questions)
	}
	fmt.Fprintf(w, "ok: %d categories, %d questions\n", len(c.Sections), questions)
}
