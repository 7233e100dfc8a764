package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/Sternrassler/flickr-client/pkg/client"
	"github.com/spf13/cobra"
)

func newCallCommand(a *app) *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "call <method> [key=value...]",
		Short: "Call any Flickr API method",
		Example: `  flickr call test.echo foo=bar
  flickr call flickr.photos.getInfo photo_id=52345 -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(args[1:])
			if err != nil {
				return err
			}

			c, err := a.flickrClient(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := c.Request(cmd.Context(), args[0], params, noCache)
			if err != nil {
				return err
			}

			return a.render(resp, func(w io.Writer) error {
				plain, err := toPlain(resp)
				if err != nil {
					return err
				}
				return renderTable(w, []string{"Key", "Value"}, flattenRows(plain))
			})
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "skip the response cache")
	return cmd
}

func parseParams(args []string) (client.Params, error) {
	params := make(client.Params, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", arg)
		}
		params[key] = value
	}
	return params, nil
}
