package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"

	"github.com/dshills/keycmd/internal/keybind"
)

func newListCmd(opts *globalOptions) *cobra.Command {
	var (
		asJSON  bool
		command string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List key bindings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := opts.openApp(cmd, true)
			if err != nil {
				return err
			}
			defer application.Close()

			bindings := application.Bindings().All()
			if command != "" {
				bindings = application.Bindings().BindingsFor(command)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				doc, err := bindingsJSON(bindings)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, doc)
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KEYS\tCOMMAND\tPARAM")
			for _, b := range bindings {
				fmt.Fprintf(w, "%s\t%s\t%s\n", b.Keys, b.Command, b.Param)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print bindings as JSON")
	cmd.Flags().StringVar(&command, "command", "", "only list bindings of this command")
	return cmd
}

func bindingsJSON(bindings []keybind.Binding) (string, error) {
	doc := "[]"
	for _, b := range bindings {
		obj, err := sjson.Set("{}", "keys", b.Keys)
		if err != nil {
			return "", err
		}
		if obj, err = sjson.Set(obj, "command", b.Command); err != nil {
			return "", err
		}
		if b.Param != "" {
			if obj, err = sjson.Set(obj, "param", b.Param); err != nil {
				return "", err
			}
		}
		if doc, err = sjson.SetRaw(doc, "-1", obj); err != nil {
			return "", err
		}
	}
	return doc, nil
}

func newCommandsCmd(opts *globalOptions) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "commands",
		Short: "List registered commands with their bindings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := opts.openApp(cmd, true)
			if err != nil {
				return err
			}
			defer application.Close()

			reg := application.Registry()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "COMMAND\tCATEGORY\tLABEL\tKEYS")
			for _, name := range reg.Names() {
				info, ok := reg.Info(name)
				if !ok {
					continue
				}
				if category != "" && !strings.EqualFold(info.Category, category) {
					continue
				}
				var keys []string
				for _, b := range application.Bindings().BindingsFor(name) {
					keys = append(keys, b.Keys)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, info.Category, info.Label, strings.Join(keys, ", "))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only list commands in this category")
	return cmd
}
