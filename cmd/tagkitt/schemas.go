package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kittclouds/tagkitt/internal/store"
	"github.com/kittclouds/tagkitt/pkg/schemas"
)

func schemasCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schemas",
		Short: "Manage the schema registry",
	}
	cmd.AddCommand(schemasListCmd(g), schemasAddCmd(g), schemasRemoveCmd(g), schemasUseCmd(g))
	return cmd
}

func withApp(g *globalFlags, cmd *cobra.Command, fn func(a *app) error) error {
	a, err := openApp(g, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func schemasListCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g, cmd, func(a *app) error {
				recs, err := a.registry.ListSchemas()
				if err != nil {
					return err
				}
				active, err := a.registry.GetSetting(store.SettingActiveSchema)
				if err != nil {
					return err
				}
				if active == "" {
					active = a.cfg.Active
				}
				return a.printSchemas(recs, active)
			})
		},
	}
}

func schemasAddCmd(g *globalFlags) *cobra.Command {
	var (
		name  string
		roots []string
		css   string
	)
	cmd := &cobra.Command{
		Use:   "add <file|pattern>...",
		Short: "Import grammar JSON files into the registry",
		Long: `Imports grammar files, validating each one first. Patterns such as
"schemas/**/*.json" are expanded. The id is the file name without extension.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g, cmd, func(a *app) error {
				if a.cfg.Store.DSN == "" {
					a.logger.Warn("Registry is in memory; set store.dsn to keep imported schemas")
				}

				var names []string
				for _, arg := range args {
					p, err := a.fsPath(arg)
					if err != nil {
						return err
					}
					if !strings.ContainsAny(arg, "*?[{") {
						names = append(names, p)
						continue
					}
					found, err := a.loader.Discover(p)
					if err != nil {
						return err
					}
					names = append(names, found...)
				}
				if len(names) == 0 {
					return fmt.Errorf("no grammar files match %s", strings.Join(args, " "))
				}

				recs, err := a.loader.Import(cmd.Context(), a.registry, names)
				if err != nil {
					return err
				}

				if len(recs) == 1 && (name != "" || len(roots) > 0 || css != "") {
					rec := recs[0]
					if name != "" {
						rec.Name = name
					}
					if len(roots) > 0 {
						rec.Roots = roots
					}
					if css != "" {
						rec.CSS = css
					}
					if err := a.registry.UpsertSchema(rec); err != nil {
						return err
					}
				}
				return a.printSchemas(recs, "")
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name (single file only)")
	cmd.Flags().StringSliceVar(&roots, "roots", nil, "Root elements offered for new documents (single file only)")
	cmd.Flags().StringVar(&css, "css", "", "Stylesheet URL (single file only)")
	return cmd
}

func schemasRemoveCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>...",
		Short: "Remove schemas from the registry",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g, cmd, func(a *app) error {
				active, err := a.registry.GetSetting(store.SettingActiveSchema)
				if err != nil {
					return err
				}
				for _, id := range args {
					if err := a.registry.DeleteSchema(id); err != nil {
						return err
					}
					if id == active {
						if err := a.registry.SetSetting(store.SettingActiveSchema, ""); err != nil {
							return err
						}
					}
					a.logger.Info("Removed schema", slog.String("id", id))
				}
				return nil
			})
		},
	}
}

func schemasUseCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "use <id>",
		Short: "Make a registered schema the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g, cmd, func(a *app) error {
				act, err := a.session.Activate(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "active schema: %s\n", act.Record.ID)
				return nil
			})
		},
	}
}

func watchCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Reload configured schemas when their grammar files change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(g, cmd, func(a *app) error {
				if !a.cfg.Watch.Enabled {
					return fmt.Errorf("watching is off; set watch.enabled: true in tagkitt.yaml")
				}
				files := make(map[string]string, len(a.cfg.Schemas))
				for _, sc := range a.cfg.Schemas {
					files[sc.Grammar] = sc.ID
				}
				if len(files) == 0 {
					return fmt.Errorf("no schemas configured")
				}

				if _, err := a.engine(g); err != nil && !errors.Is(err, errNoSchema) {
					return err
				}

				w, err := schemas.NewWatcher(schemas.WatcherConfig{
					Files:         files,
					DebounceDelay: a.cfg.Watch.Debounce,
					Logger:        a.logger,
					Reload: func(ctx context.Context, id, path string) error {
						data, err := a.readGrammar(path)
						if err != nil {
							return err
						}
						return a.session.UpdateGrammar(id, data)
					},
				})
				if err != nil {
					return err
				}

				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				if err := w.Start(ctx); err != nil {
					return err
				}
				<-ctx.Done()
				a.logger.Info("Shutting down watcher")
				return w.Stop()
			})
		},
	}
}
