package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/RassulYunussov/ec3client"
	"github.com/RassulYunussov/ec3client/batch"
	"github.com/RassulYunussov/ec3client/cache"
	"github.com/RassulYunussov/ec3client/common"
	"github.com/spf13/cobra"
)

func newGetCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID [ID...]",
		Short: "Fetch EPDs by id",
		Long: `Fetches one or more EPDs by id. Ids may also be comma separated.

A single id prints the record. Several ids print a map of id to
{data, error, status} and fail when any record failed.`,
		Example: `  ec3fetch get ec3y49fr
  ec3fetch get ec3y49fr,ec3zzn4a --workers 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := root.open()
			if err != nil {
				return err
			}
			var jobs []batch.Job
			for _, arg := range args {
				for _, id := range strings.Split(arg, ",") {
					id = strings.TrimSpace(id)
					if id == "" {
						continue
					}
					jobs = append(jobs, batch.Job{
						Key:     id,
						Request: common.Request{URL: recordURL(s.cfg.API.BaseURL, id), Method: common.MethodGet, CredentialOverride: root.Creds},
					})
				}
			}
			switch len(jobs) {
			case 0:
				return fmt.Errorf("no ids given")
			case 1:
				return fetchOne(cmd.Context(), s.client, jobs[0].Request, cmd.OutOrStdout())
			}

			runner := batch.NewRunner(s.client,
				batch.WithWorkers(root.workers(s.cfg)),
				batch.WithPause(s.cfg.Batch.Pause),
				batch.WithCache(cache.New[*common.Outcome]()),
				batch.WithLogger(s.log),
			)
			results, err := runner.Run(cmd.Context(), jobs)
			if err != nil {
				return err
			}
			return writeResults(cmd.OutOrStdout(), results)
		},
	}
}

func newURLCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "url URL",
		Short:   "GET an absolute API url",
		Example: `  ec3fetch url https://etl-api.buildingtransparency.org/api/epds/ec3y49fr`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := root.open()
			if err != nil {
				return err
			}
			request := common.Request{URL: args[0], Method: common.MethodGet, CredentialOverride: root.Creds}
			return fetchOne(cmd.Context(), s.client, request, cmd.OutOrStdout())
		},
	}
}

// listOptions holds the paging flags of the list command
type listOptions struct {
	PageSize   int
	PageNumber int
	Query      string
	Fields     string
}

func newListCommand(root *rootOptions) *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List EPDs one page at a time",
		Example: `  ec3fetch list --page-size 50 --page 2
  ec3fetch list --query plant_or_group__owned_by__name__like=BREX --fields id,name`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := root.open()
			if err != nil {
				return err
			}
			u, err := listURL(s.cfg.API.BaseURL, opts)
			if err != nil {
				return err
			}
			request := common.Request{URL: u, Method: common.MethodGet, CredentialOverride: root.Creds}
			return fetchOne(cmd.Context(), s.client, request, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&opts.PageSize, "page-size", 250, "Records per page")
	cmd.Flags().IntVarP(&opts.PageNumber, "page", "p", 1, "Page number, starting at 1")
	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "Extra query string, e.g. a=b&c=d")
	cmd.Flags().StringVarP(&opts.Fields, "fields", "f", "", "Comma separated fields to return")

	return cmd
}

func fetchOne(ctx context.Context, client ec3client.Client, request common.Request, stdout io.Writer) error {
	outcome, err := client.Execute(ctx, request)
	if err != nil {
		return err
	}
	return writeJSON(stdout, outcome.Body)
}

type resultEntry struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
	Status int             `json:"status,omitempty"`
}

func writeResults(stdout io.Writer, results []batch.Result) error {
	out := make(map[string]resultEntry, len(results))
	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			out[r.Key] = resultEntry{Error: r.Err.Error(), Status: ec3client.StatusCode(r.Err)}
			continue
		}
		out[r.Key] = resultEntry{Data: r.Outcome.Body, Status: r.Outcome.StatusCode}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return err
	}
	if err := writeJSON(stdout, data); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d records failed", failed, len(results))
	}
	return nil
}

func writeJSON(w io.Writer, raw json.RawMessage) error {
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	var indented bytes.Buffer
	if err := json.Indent(&indented, raw, "", "    "); err != nil {
		return err
	}
	indented.WriteByte('\n')
	_, err := indented.WriteTo(w)
	return err
}

func recordURL(baseURL, id string) string {
	return strings.TrimSuffix(baseURL, "/") + "/epds/" + url.PathEscape(id)
}

func listURL(baseURL string, opts *listOptions) (string, error) {
	if opts.PageSize < 1 || opts.PageNumber < 1 {
		return "", fmt.Errorf("--page-size and --page must be positive")
	}
	values, err := url.ParseQuery(opts.Query)
	if err != nil {
		return "", fmt.Errorf("invalid --query: %w", err)
	}
	values.Set("page_size", strconv.Itoa(opts.PageSize))
	values.Set("page_number", strconv.Itoa(opts.PageNumber))
	if opts.Fields != "" {
		values.Set("fields", opts.Fields)
	}
	return strings.TrimSuffix(baseURL, "/") + "/epds?" + values.Encode(), nil
}
