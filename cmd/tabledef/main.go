// Command tabledef reads MySQL table definitions and renders them as
// CREATE TABLE statements, query schemas, HTTP resources or object-storage
// snapshots.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

const version = "0.1.0"

// CLI defines the command-line interface for tabledef.
type CLI struct {
	Globals

	Tables  TablesCmd  `cmd:"" help:"List the base tables of the current database"`
	DDL     DDLCmd     `cmd:"" name:"ddl" help:"Print CREATE TABLE statements"`
	Schema  SchemaCmd  `cmd:"" help:"Print query schemas as JSON"`
	Export  ExportCmd  `cmd:"" help:"Upload CREATE TABLE snapshots to object storage"`
	Runs    RunsCmd    `cmd:"" help:"List export runs found in object storage"`
	Serve   ServeCmd   `cmd:"" help:"Serve table descriptions over HTTP"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli := CLI{Globals: Globals{out: os.Stdout}}
	kctx := kong.Parse(&cli,
		kong.Name("tabledef"),
		kong.Description("MySQL schema introspection and DDL rendering"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	err := kctx.Run(&cli.Globals)
	kctx.FatalIfErrorf(err)
}
