package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zeusync/scenebridge/internal/core/fsm/fsmdata"
	"github.com/zeusync/scenebridge/internal/core/runtime"
)

func newValidateCommand(_ *rootOptions) *cobra.Command {
	var scenes []string

	cmd := &cobra.Command{
		Use:   "validate <fsm-file>...",
		Short: "Validate state machine templates and scene fixtures",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && len(scenes) == 0 {
				return errors.New("nothing to validate")
			}
			out := cmd.OutOrStdout()
			var all error
			for _, path := range args {
				def, err := fsmdata.LoadFile(path)
				if err != nil {
					fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
					all = errors.Join(all, err)
					continue
				}
				fmt.Fprintf(out, "ok   %s: %s, %d nodes, %d transitions\n", path, def.Name, len(def.Nodes), len(def.Transitions))
			}
			for _, path := range scenes {
				f, err := runtime.LoadFixtureFile(path)
				if err != nil {
					fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
					all = errors.Join(all, err)
					continue
				}
				fmt.Fprintf(out, "ok   %s: scene %s, %d root objects, %d machines\n", path, f.Name, len(f.Objects), len(f.Machines))
			}
			return all
		},
	}

	cmd.Flags().StringSliceVar(&scenes, "scene", nil, "scene fixtures to validate")
	return cmd
}
