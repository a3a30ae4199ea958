package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rpattn/contentql/internal/config"
	"github.com/rpattn/contentql/internal/contentful"
	"github.com/rpattn/contentql/internal/domain"
	"github.com/rpattn/contentql/internal/export"
	"github.com/rpattn/contentql/internal/graphql"
	"github.com/rpattn/contentql/internal/logging"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:           "contentql",
	Short:         "Resolve queries against a content delivery space",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", ".", "directory containing config.yaml")
	rootCmd.AddCommand(newQueryCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newQueryCmd() *cobra.Command {
	var (
		operation  string
		vars       []string
		exportPath string
		pretty     bool
	)

	cmd := &cobra.Command{
		Use:   "query [file]",
		Short: "Resolve a query read from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readQuery(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			variables, err := parseVars(vars)
			if err != nil {
				return err
			}

			cfg, err := config.Load(configDir)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			client, err := contentful.New(cfg.Contentful, contentful.WithLogger(logger.Named("contentful")))
			if err != nil {
				return err
			}
			resolver := graphql.NewResolver(client,
				graphql.WithLogger(logger.Named("resolver")),
				graphql.WithConcurrency(cfg.Server.Concurrency),
			)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			result, err := resolver.Execute(ctx, graphql.Request{
				Query:         source,
				OperationName: operation,
				Variables:     variables,
			})
			if err != nil {
				return err
			}
			for _, rootErr := range result.Errors {
				logger.Warn("root failed", zap.String("root", rootErr.Key), zap.Error(rootErr.Err))
			}

			if exportPath != "" {
				return writeExport(exportPath, result)
			}
			return printJSON(cmd.OutOrStdout(), result, pretty)
		},
	}

	cmd.Flags().StringVar(&operation, "operation", "", "operation to run when the document holds several")
	cmd.Flags().StringArrayVar(&vars, "var", nil, "query variable as key=value (repeatable, JSON values accepted)")
	cmd.Flags().StringVar(&exportPath, "export", "", "write the result to this .xlsx file instead of stdout")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
	return cmd
}

func readQuery(stdin io.Reader, args []string) (string, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 1 && args[0] != "-" {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(stdin)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read query: %w", err)
	}
	source := strings.TrimSpace(string(data))
	if source == "" {
		return "", fmt.Errorf("query is empty")
	}
	return source, nil
}

// parseVars turns key=value pairs into variables. Values that parse as JSON
// keep their JSON type; anything else is a string.
func parseVars(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	vars := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid variable %q, expected key=value", pair)
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		vars[key] = value
	}
	return vars, nil
}

func writeExport(path string, result domain.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := export.WriteWorkbook(f, result); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
