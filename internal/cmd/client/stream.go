package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

// NewStreamCommand constructs the `stream` command group and subcommands.
func NewStreamCommand(baseURL BaseURLFunc) *cobra.Command {
	streamCmd := &cobra.Command{Use: "stream", Short: "Stream operations"}

	streamCmd.AddCommand(
		newStreamAddCommand(baseURL),
		newStreamRangeCommand(baseURL),
		newStreamLenCommand(baseURL),
		newStreamTrimCommand(baseURL),
		newStreamDeleteCommand(baseURL),
		newStreamInfoCommand(baseURL),
		newStreamSetIDCommand(baseURL),
	)
	return streamCmd
}

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("namespace", "", "Namespace (server default when empty)")
	cmd.Flags().String("stream", "", "Stream name")
	_ = cmd.MarkFlagRequired("stream")
}

func newStreamAddCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [field value ...]",
		Short: "Append an entry to a stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			ns, _ := cmd.Flags().GetString("namespace")
			st, _ := cmd.Flags().GetString("stream")
			id, _ := cmd.Flags().GetString("id")
			noMk, _ := cmd.Flags().GetBool("nomkstream")
			if len(args) == 0 {
				return fmt.Errorf("at least one field is required")
			}
			var out struct {
				ID string `json:"id"`
			}
			err := postJSON(baseURL(), "/v1/streams/add", map[string]any{
				"namespace":  ns,
				"stream":     st,
				"id":         id,
				"fields":     args,
				"noMkStream": noMk,
			}, &out)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.ID)
			return nil
		},
	}
	addCommonFlags(cmd)
	cmd.Flags().String("id", "*", `Entry ID: "*", "<ms>-*", "<ms>-<seq>", or "<ms>"`)
	cmd.Flags().Bool("nomkstream", false, "Fail when the stream does not exist")
	return cmd
}

func newStreamRangeCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "range",
		Short: "Scan entries between two IDs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ns, _ := cmd.Flags().GetString("namespace")
			st, _ := cmd.Flags().GetString("stream")
			start, _ := cmd.Flags().GetString("start")
			end, _ := cmd.Flags().GetString("end")
			reverse, _ := cmd.Flags().GetBool("reverse")
			count, _ := cmd.Flags().GetInt("count")
			filter, _ := cmd.Flags().GetString("filter")

			q := url.Values{}
			q.Set("ns", ns)
			q.Set("stream", st)
			q.Set("start", start)
			q.Set("end", end)
			if reverse {
				q.Set("reverse", "true")
			}
			if count > 0 {
				q.Set("count", strconv.Itoa(count))
			}
			if filter != "" {
				q.Set("filter", filter)
			}
			var out struct {
				Entries []struct {
					ID     string   `json:"id"`
					Fields []string `json:"fields"`
				} `json:"entries"`
			}
			if err := getJSON(baseURL(), "/v1/streams/range", q, &out); err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, e := range out.Entries {
				if err := enc.Encode(e); err != nil {
					return err
				}
			}
			return nil
		},
	}
	addCommonFlags(cmd)
	cmd.Flags().String("start", "-", `Range start ID ("-" for minimum, "(" prefix for exclusive)`)
	cmd.Flags().String("end", "+", `Range end ID ("+" for maximum, "(" prefix for exclusive)`)
	cmd.Flags().Bool("reverse", false, "Scan from end to start")
	cmd.Flags().Int("count", 0, "Maximum entries to return")
	cmd.Flags().String("filter", "", "CEL filter expression")
	return cmd
}

func newStreamLenCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "len",
		Short: "Count live entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ns, _ := cmd.Flags().GetString("namespace")
			st, _ := cmd.Flags().GetString("stream")
			q := url.Values{}
			q.Set("ns", ns)
			q.Set("stream", st)
			var out struct {
				Length uint64 `json:"length"`
			}
			if err := getJSON(baseURL(), "/v1/streams/len", q, &out); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.Length)
			return nil
		},
	}
	addCommonFlags(cmd)
	return cmd
}

func newStreamTrimCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trim",
		Short: "Drop entries from the head of a stream",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ns, _ := cmd.Flags().GetString("namespace")
			st, _ := cmd.Flags().GetString("stream")
			maxLen, _ := cmd.Flags().GetInt64("maxlen")
			minID, _ := cmd.Flags().GetString("minid")

			body := map[string]any{"namespace": ns, "stream": st}
			switch {
			case maxLen >= 0:
				body["strategy"] = "maxlen"
				body["maxLen"] = maxLen
			case minID != "":
				body["strategy"] = "minid"
				body["minId"] = minID
			default:
				return fmt.Errorf("one of --maxlen or --minid is required")
			}
			var out struct {
				Removed uint64 `json:"removed"`
			}
			if err := postJSON(baseURL(), "/v1/streams/trim", body, &out); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.Removed)
			return nil
		},
	}
	addCommonFlags(cmd)
	cmd.Flags().Int64("maxlen", -1, "Keep at most this many entries")
	cmd.Flags().String("minid", "", "Drop entries with IDs below this")
	return cmd
}

func newStreamDeleteCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id> [id ...]",
		Short: "Delete entries by ID",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ns, _ := cmd.Flags().GetString("namespace")
			st, _ := cmd.Flags().GetString("stream")
			var out struct {
				Removed uint64 `json:"removed"`
			}
			err := postJSON(baseURL(), "/v1/streams/delete", map[string]any{
				"namespace": ns,
				"stream":    st,
				"ids":       args,
			}, &out)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out.Removed)
			return nil
		},
	}
	addCommonFlags(cmd)
	return cmd
}

func newStreamInfoCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show stream metadata",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ns, _ := cmd.Flags().GetString("namespace")
			st, _ := cmd.Flags().GetString("stream")
			q := url.Values{}
			q.Set("ns", ns)
			q.Set("stream", st)
			var out json.RawMessage
			if err := getJSON(baseURL(), "/v1/streams/info", q, &out); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	addCommonFlags(cmd)
	return cmd
}

func newStreamSetIDCommand(baseURL BaseURLFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setid <id>",
		Short: "Force the last generated ID forward",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ns, _ := cmd.Flags().GetString("namespace")
			st, _ := cmd.Flags().GetString("stream")
			return postJSON(baseURL(), "/v1/streams/setid", map[string]any{
				"namespace": ns,
				"stream":    st,
				"id":        args[0],
			}, nil)
		},
	}
	addCommonFlags(cmd)
	return cmd
}
