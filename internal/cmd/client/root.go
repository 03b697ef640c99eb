package client

import (
	"github.com/spf13/cobra"
)

// NewRoot constructs a root Cobra command for the Flume client.
// It registers the stream command group.
func NewRoot(baseURL BaseURLFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "flume",
		Short: "Flume client commands",
	}
	root.AddCommand(NewStreamCommand(baseURL))
	return root
}
