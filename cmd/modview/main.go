package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joeydtaylor/modview/pkg/core"
	"github.com/joeydtaylor/modview/pkg/render"
	"github.com/joeydtaylor/modview/pkg/serverfx"
	"github.com/joeydtaylor/modview/pkg/store/sqlstore"
	httpx "github.com/joeydtaylor/modview/pkg/transport/httpx"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var version = "dev"

// CLI is the command line interface of modview.
type CLI struct {
	Serve Serve `kong:"cmd,help='Start the web server.'"`
	Check Check `kong:"cmd,help='Validate a manifest and build its views.'"`

	Version kong.VersionFlag `kong:"help='Output version and exit.'"`
}

// Serve runs the server until it receives SIGINT or SIGTERM.
type Serve struct {
	Manifest string `kong:"env='MODVIEW_MANIFEST',help='Path to the manifest file.'"`
	Listen   string `kong:"env='SERVER_LISTEN_ADDRESS',help='[host]:port to listen on.'"`
}

// Run the serve command.
func (c *Serve) Run() error {
	// serverfx reads both from the environment.
	if c.Manifest != "" {
		if err := os.Setenv("MODVIEW_MANIFEST", c.Manifest); err != nil {
			return err
		}
	}
	if c.Listen != "" {
		if err := os.Setenv("SERVER_LISTEN_ADDRESS", c.Listen); err != nil {
			return err
		}
	}
	app := fx.New(serverfx.Module(serverfx.WithService("modview")))
	if err := app.Err(); err != nil {
		return fmt.Errorf("failed building the application: %w", err)
	}
	app.Run()
	return nil
}

// Check loads a manifest the way serve does, without listening.
type Check struct {
	Manifest string `kong:"arg,optional,default='modview.toml',help='Path to the manifest file.'"`
}

// Run the check command.
func (c *Check) Run(out io.Writer) error {
	ctx := context.Background()
	man, err := core.LoadConfig(c.Manifest)
	if err != nil {
		return err
	}

	var db *sqlstore.DB
	if len(man.Models) > 0 {
		// Throwaway database: only the declarations are checked.
		if db, err = sqlstore.Open(ctx, "file:check?mode=memory&cache=shared"); err != nil {
			return err
		}
		defer db.Close()
	}
	if err = core.Default.Bind(ctx, man, db); err != nil {
		return err
	}

	var rnd render.Renderer
	if man.Server.Templates != "" {
		t, err := render.FromDir(man.Server.Templates)
		if err != nil {
			return err
		}
		rnd = t
	}

	if _, err = core.BuildRouter(man, core.BuildDeps{
		Router:   httpx.NewChi(),
		Registry: core.Default,
		Renderer: rnd,
		Logger:   zap.NewNop(),
	}); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s: ok (%d views, %d models, %d forms)\n",
		c.Manifest, len(man.Views), len(man.Models), len(man.Forms))
	return nil
}

func main() {
	c := &CLI{}
	kctx := kong.Parse(c,
		kong.Name("modview"),
		kong.Description("Serve HTTP views composed from manifest modules."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			Summary:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": version},
		kong.BindTo(os.Stdout, (*io.Writer)(nil)),
	)
	kctx.FatalIfErrorf(kctx.Run())
}
