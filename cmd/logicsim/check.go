// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"fmt"
	"io"

	"github.com/db47h/logicsim"
	"github.com/db47h/logicsim/boardfile"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check FILE",
	Short: "Check a board file",
	Long: `Check builds all boards of a board file and prints the interface of the
main board along with its component and net counts.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return check(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func check(w io.Writer, name string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	f, err := boardfile.Load(name)
	if err != nil {
		return err
	}
	lib := logicsim.NewLibrary()
	b, err := f.Build(lib, logicsim.WithLogger(log), logicsim.WithMaxPasses(maxPasses))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %d components, %d wires, %d nets, %d definitions\n",
		b.Name(), len(b.Components()), len(b.Wires()), b.NetCount(), lib.Len())
	for _, p := range b.Interface() {
		fmt.Fprintf(w, "  %-13s %s[%d]\n", p.Dir, p.Name, p.Width)
	}
	return nil
}
