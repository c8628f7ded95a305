package main

import (
	"errors"
	"fmt"
	"os"

	language "github.com/hanpama/gqlengine/internal/language"
	schema "github.com/hanpama/gqlengine/internal/schema"
	validation "github.com/hanpama/gqlengine/internal/validation"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [query files...]",
		Short: "Check the schema and validate documents against it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			sch, err := loadSchema(cfg.Schema.Files)
			if err != nil {
				return err
			}
			failed := 0
			for _, path := range args {
				b, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				doc, perr := language.ParseQuery(string(b))
				if perr != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, perr)
					failed++
					continue
				}
				for _, e := range validation.Validate(sch, doc) {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", path, e.Error())
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d validation error(s)", failed)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func newPrintSchemaCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "print-schema",
		Short: "Print the merged schema as SDL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			sch, err := loadSchema(cfg.Schema.Files)
			if err != nil {
				return err
			}
			sdl := schema.Render(sch)
			if out == "" {
				_, err = fmt.Fprint(cmd.OutOrStdout(), sdl)
				return err
			}
			if err := os.WriteFile(out, []byte(sdl), 0o644); err != nil {
				return errors.Join(errors.New("write schema"), err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Write SDL to file instead of stdout")
	return cmd
}
