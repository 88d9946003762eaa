package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/keycmd/internal/keybind"
)

func newBindCmd(opts *globalOptions) *cobra.Command {
	var (
		force bool
		param string
	)

	cmd := &cobra.Command{
		Use:   "bind <command> <keys>",
		Short: "Bind a key sequence to a command",
		Long: `Bind a key sequence to a command and save it in the preference file.

Keys are chords separated by spaces, e.g. "Ctrl+K B". A sequence owned by
another command is refused unless --force is given, which moves it.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := opts.openApp(cmd, true)
			if err != nil {
				return err
			}
			defer application.Close()

			name, keys := args[0], args[1]
			out := cmd.OutOrStdout()
			if !application.Registry().Has(name) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s is not a registered command\n", name)
			}

			err = application.Bindings().AssignWithParam(name, param, keys, force)
			if errors.Is(err, keybind.ErrSequenceInUse) {
				return fmt.Errorf("%s is bound to %v; use --force to rebind", keys, application.Bindings().UsedBy(keys))
			}
			if err != nil {
				return err
			}

			for _, b := range application.Bindings().Conflicts(keys) {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s overlaps %s (%s)\n", keys, b.Keys, b.Command)
			}
			fmt.Fprintf(out, "%s -> %s\n", keys, name)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "take the sequence from its current owner")
	cmd.Flags().StringVar(&param, "param", "", "parameter passed to the command")
	return cmd
}

func newUnbindCmd(opts *globalOptions) *cobra.Command {
	var bySequence bool

	cmd := &cobra.Command{
		Use:   "unbind <command|keys>",
		Short: "Remove the key bindings of a command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := opts.openApp(cmd, true)
			if err != nil {
				return err
			}
			defer application.Close()

			out := cmd.OutOrStdout()
			if bySequence {
				if !application.Bindings().UnbindSequence(args[0]) {
					return fmt.Errorf("%s is not bound", args[0])
				}
				fmt.Fprintf(out, "removed %s\n", args[0])
				return nil
			}

			n := application.Bindings().Unbind(args[0])
			if n == 0 {
				return fmt.Errorf("%s has no bindings", args[0])
			}
			fmt.Fprintf(out, "removed %d binding(s) of %s\n", n, args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&bySequence, "keys", "k", false, "treat the argument as a key sequence")
	return cmd
}

func newUsedByCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "used-by <keys>",
		Short: "Show which commands use a key sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := opts.openApp(cmd, true)
			if err != nil {
				return err
			}
			defer application.Close()

			out := cmd.OutOrStdout()
			keys := args[0]
			users := application.Bindings().UsedBy(keys)
			if len(users) == 0 {
				fmt.Fprintf(out, "%s is unbound\n", keys)
			}
			for _, name := range users {
				fmt.Fprintf(out, "%s\t%s\n", keys, name)
			}
			for _, b := range application.Bindings().Conflicts(keys) {
				fmt.Fprintf(out, "%s\t%s (overlaps)\n", b.Keys, b.Command)
			}
			return nil
		},
	}
}
