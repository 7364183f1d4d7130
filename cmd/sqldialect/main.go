package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/koba/sqldialect/internal/config"
	"github.com/koba/sqldialect/internal/database"
	"github.com/koba/sqldialect/internal/dialect"
	_ "github.com/koba/sqldialect/internal/dialect/all"
	"github.com/koba/sqldialect/internal/diff"
	"github.com/koba/sqldialect/internal/generator"
	"github.com/koba/sqldialect/internal/schema"
)

var (
	cfgFile       string
	authorization string
	cascade       bool
	dropCatalog   bool
	execute       bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "sqldialect",
	Short:         "Vendor-specific SQL generation",
	Long:          `Render catalogs, migrations and lifecycle DDL in the SQL of a specific database vendor.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var dialectsCmd = &cobra.Command{
	Use:   "dialects",
	Short: "List registered dialects and their capabilities",
	Args:  cobra.NoArgs,
	RunE:  runDialects,
}

var functionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "Show how each dialect renders the portable functions",
	Args:  cobra.NoArgs,
	RunE:  runFunctions,
}

var renderCmd = &cobra.Command{
	Use:   "render <catalog.yaml>",
	Short: "Print the DDL for a catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate <old.yaml> <new.yaml>",
	Short: "Print the DDL that migrates one catalog to another",
	Args:  cobra.ExactArgs(2),
	RunE:  runMigrate,
}

var applyCmd = &cobra.Command{
	Use:   "apply <catalog.yaml>",
	Short: "Create a catalog in the configured database",
	Args:  cobra.ExactArgs(1),
	RunE:  runApply,
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Create or drop a schema",
}

var schemaCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchemaCreate,
}

var schemaDropCmd = &cobra.Command{
	Use:   "drop <name>",
	Short: "Drop a schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchemaDrop,
}

var databaseCmd = &cobra.Command{
	Use:   "database",
	Short: "Create or drop a database",
}

var databaseCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a database",
	Args:  cobra.ExactArgs(1),
	RunE:  runDatabaseCreate,
}

var databaseDropCmd = &cobra.Command{
	Use:   "drop <name>",
	Short: "Drop a database",
	Args:  cobra.ExactArgs(1),
	RunE:  runDatabaseDrop,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default: ./"+config.DefaultFile+" when present)")
	flags.String("dialect", "postgres", "Target dialect (see 'sqldialect dialects')")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.Bool("if-not-exists", false, "Guard CREATE/DROP TABLE with IF [NOT] EXISTS where supported")
	flags.String("host", "localhost", "Database host")
	flags.String("port", "", "Database port (default: the vendor's port)")
	flags.String("database", "", "Database name, or file path for sqlite")
	flags.String("user", "", "Database user")
	flags.String("password", "", "Database password")
	flags.String("dsn", "", "Driver data source name, overriding the connection flags")

	renderCmd.Flags().BoolVar(&dropCatalog, "drop", false, "Render DROP statements instead of CREATE")
	schemaCreateCmd.Flags().StringVar(&authorization, "authorization", "", "Principal that owns the schema")
	schemaDropCmd.Flags().BoolVar(&cascade, "cascade", false, "Drop every object in the schema too")
	for _, cmd := range []*cobra.Command{schemaCreateCmd, schemaDropCmd, databaseCreateCmd, databaseDropCmd} {
		cmd.Flags().BoolVar(&execute, "execute", false, "Run the statement against the configured database instead of printing it")
	}

	schemaCmd.AddCommand(schemaCreateCmd, schemaDropCmd)
	databaseCmd.AddCommand(databaseCreateCmd, databaseDropCmd)

	rootCmd.AddCommand(dialectsCmd)
	rootCmd.AddCommand(functionsCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(databaseCmd)
}

// env is the resolved configuration of one command invocation
type env struct {
	cfg     *config.Config
	dialect dialect.Dialect
	logger  *slog.Logger
}

func setup(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	d, err := dialect.Lookup(cfg.Dialect)
	if err != nil {
		return nil, err
	}
	logger := cfg.NewLogger()
	cmd.SetContext(dialect.WithContext(cmd.Context(), d))
	return &env{cfg: cfg, dialect: d, logger: logger}, nil
}

func (e *env) generator() *generator.DDLGenerator {
	g := generator.NewDDLGenerator(e.dialect, e.logger)
	g.IfNotExists = e.cfg.IfNotExists
	return g
}

func (e *env) executor(ctx context.Context) (*database.Executor, error) {
	db, err := database.Open(ctx, database.Config{
		Dialect:  e.dialect.Name(),
		Host:     e.cfg.Host,
		Port:     e.cfg.Port,
		Database: e.cfg.Database,
		User:     e.cfg.User,
		Password: e.cfg.Password,
		DSN:      e.cfg.DSN,
	})
	if err != nil {
		return nil, err
	}
	return database.NewExecutor(db, e.dialect, e.logger), nil
}

func runDialects(cmd *cobra.Command, args []string) error {
	writeDialects(cmd.OutOrStdout())
	return nil
}

func writeDialects(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Dialect", "If Not Exists", "Schemas", "Cascade", "Database DDL",
		"Partial Index", "Sequences", "Multi Keys", "Ident Keys Only", "Autoinc PK"})

	for _, name := range dialect.List() {
		d, _ := dialect.Get(name)
		c := d.Capabilities()
		t.AppendRow(table.Row{name, mark(c.SupportsIfNotExists), mark(c.SupportsCreateSchema),
			mark(c.SupportsDropSchemaCascade), mark(c.SupportsDatabaseDDL), mark(c.SupportsPartialIndexes),
			mark(c.SupportsCreateSequence), mark(c.SupportsMultipleGeneratedKeys),
			mark(c.SupportsOnlyIdentifiersInGeneratedKeys), mark(c.AutoincImpliesPrimaryKey)})
	}
	t.Render()
}

func mark(ok bool) string {
	if ok {
		return "yes"
	}
	return "-"
}

func runFunctions(cmd *cobra.Command, args []string) error {
	writeFunctions(cmd.OutOrStdout())
	return nil
}

func writeFunctions(w io.Writer) {
	seed := 42
	sep := ", "
	samples := []struct {
		name string
		expr dialect.Expression
	}{
		{"random", dialect.Random{}},
		{"random(seed)", dialect.Random{Seed: &seed}},
		{"char_length", dialect.CharLength{Expr: dialect.Col("name")}},
		{"substring", dialect.Substring{Expr: dialect.Col("name"), Start: dialect.Int(1), Length: dialect.Int(3)}},
		{"concat", dialect.Concat{Separator: "-", Exprs: []dialect.Expression{dialect.Col("first"), dialect.Col("last")}}},
		{"group_concat", dialect.GroupConcat{Expr: dialect.Col("name"), Separator: &sep,
			OrderBy: []dialect.OrderKey{dialect.By(dialect.Col("name"), dialect.Asc)}}},
		{"locate", dialect.Locate{Expr: dialect.Col("name"), Substring: "x"}},
		{"regexp", dialect.Regexp{Expr: dialect.Col("name"), Pattern: dialect.Lit("^a"), CaseSensitive: true}},
		{"extract(year)", dialect.Extract{Part: dialect.Year, Expr: dialect.Col("created")}},
	}

	names := dialect.List()
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	header := table.Row{"Function"}
	for _, name := range names {
		header = append(header, name)
	}
	t.AppendHeader(header)

	for _, sample := range samples {
		row := table.Row{sample.name}
		for _, name := range names {
			d, _ := dialect.Get(name)
			sql, err := dialect.Render(d, sample.expr)
			switch {
			case dialect.IsUnsupported(err):
				sql = "(unsupported)"
			case err != nil:
				sql = "(error)"
			}
			row = append(row, sql)
		}
		t.AppendRow(row)
	}
	t.Render()
}

func runRender(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}

	catalog, err := schema.LoadCatalog(args[0])
	if err != nil {
		return err
	}

	var statements []string
	if dropCatalog {
		statements, err = e.generator().DropCatalog(catalog)
	} else {
		statements, err = e.generator().CreateCatalog(catalog)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "-- %s DDL for %s\n\n", e.dialect.Name(), args[0])
	fmt.Fprint(cmd.OutOrStdout(), generator.Script(statements))
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}

	oldCatalog, err := schema.LoadCatalog(args[0])
	if err != nil {
		return fmt.Errorf("failed to load old catalog: %w", err)
	}
	newCatalog, err := schema.LoadCatalog(args[1])
	if err != nil {
		return fmt.Errorf("failed to load new catalog: %w", err)
	}

	result := diff.Compare(oldCatalog, newCatalog)
	if result.Empty() {
		fmt.Fprintln(cmd.ErrOrStderr(), "No differences found.")
		return nil
	}
	if e.cfg.Level() <= slog.LevelDebug {
		diff.Display(cmd.ErrOrStderr(), result)
	}

	statements, err := e.generator().Migrate(result)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "-- Migration SQL from %s to %s (%s)\n\n", args[0], args[1], e.dialect.Name())
	fmt.Fprint(out, generator.Script(statements))
	return nil
}

func runApply(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}

	catalog, err := schema.LoadCatalog(args[0])
	if err != nil {
		return err
	}
	statements, err := e.generator().CreateCatalog(catalog)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	exec, err := e.executor(ctx)
	if err != nil {
		return err
	}
	defer exec.Close()

	if err := exec.Apply(ctx, statements); err != nil {
		return err
	}

	tables, err := exec.Tables(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Applied %d statements; tables: %s\n", len(statements), strings.Join(tables, ", "))
	return nil
}

func runSchemaCreate(cmd *cobra.Command, args []string) error {
	return lifecycle(cmd, func(d dialect.Dialect) (string, error) {
		return d.CreateSchema(schema.Schema{Name: args[0], Authorization: authorization})
	})
}

func runSchemaDrop(cmd *cobra.Command, args []string) error {
	return lifecycle(cmd, func(d dialect.Dialect) (string, error) {
		return d.DropSchema(schema.Schema{Name: args[0]}, cascade)
	})
}

func runDatabaseCreate(cmd *cobra.Command, args []string) error {
	return lifecycle(cmd, func(d dialect.Dialect) (string, error) {
		return d.CreateDatabase(args[0])
	})
}

func runDatabaseDrop(cmd *cobra.Command, args []string) error {
	return lifecycle(cmd, func(d dialect.Dialect) (string, error) {
		return d.DropDatabase(args[0])
	})
}

// lifecycle renders one statement and prints or executes it
func lifecycle(cmd *cobra.Command, render func(dialect.Dialect) (string, error)) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}

	stmt, err := render(e.dialect)
	if err != nil {
		return err
	}
	if !execute {
		fmt.Fprintln(cmd.OutOrStdout(), stmt+";")
		return nil
	}

	ctx := cmd.Context()
	exec, err := e.executor(ctx)
	if err != nil {
		return err
	}
	defer exec.Close()
	return exec.Exec(ctx, stmt)
}
