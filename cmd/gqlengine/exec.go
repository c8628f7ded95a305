package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	engine "github.com/hanpama/gqlengine/internal/engine"
	"github.com/spf13/cobra"
)

func newExecCmd() *cobra.Command {
	var (
		query     string
		queryFile string
		variables string
		operation string
		subscribe bool
		compact   bool
	)
	cmd := &cobra.Command{
		Use:   "exec",
		Short: "Execute one operation and print the response",
		Long: "Execute one operation against the schema and the --data root value.\n" +
			"The operation is read from --query, --query-file, or standard input.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			eng, err := buildEngine(cfg)
			if err != nil {
				return err
			}

			req := engine.Request{Query: query, OperationName: operation}
			switch {
			case queryFile != "":
				b, err := os.ReadFile(queryFile)
				if err != nil {
					return err
				}
				req.Query = string(b)
			case query == "":
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				req.Query = string(b)
			}
			if variables != "" {
				dec := json.NewDecoder(bytes.NewReader([]byte(variables)))
				dec.UseNumber()
				if err := dec.Decode(&req.Variables); err != nil {
					return fmt.Errorf("invalid --variables: %w", err)
				}
			}

			encode := func(v any) error {
				var b []byte
				var err error
				if compact {
					b, err = json.Marshal(v)
				} else {
					b, err = json.MarshalIndent(v, "", "  ")
				}
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
				return err
			}

			if subscribe {
				failed := false
				for res := range eng.Subscribe(cmd.Context(), req) {
					failed = failed || res.HasErrors()
					if err := encode(res); err != nil {
						return err
					}
				}
				if failed {
					return errors.New("subscription reported errors")
				}
				return nil
			}

			res := eng.Do(cmd.Context(), req)
			if err := encode(res); err != nil {
				return err
			}
			if res.HasErrors() {
				return errors.New("operation reported errors")
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&query, "query", "q", "", "GraphQL document")
	f.StringVarP(&queryFile, "query-file", "f", "", "File containing the GraphQL document")
	f.StringVar(&variables, "variables", "", "Variables as a JSON object")
	f.StringVarP(&operation, "operation", "o", "", "Operation name")
	f.BoolVar(&subscribe, "subscribe", false, "Run a subscription and print one response per event")
	f.BoolVar(&compact, "compact", false, "Print compact JSON")
	f.Bool("introspection", true, "Enable GraphQL introspection")
	f.Int("max-concurrency", 0, "Maximum concurrent fields per selection set; 0 is unbounded")
	return cmd
}
