package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/Sternrassler/flickr-client/pkg/client"
	"github.com/spf13/cobra"
)

type searchResult struct {
	Page    int               `json:"page" yaml:"page"`
	Pages   int               `json:"pages" yaml:"pages"`
	PerPage int               `json:"perpage" yaml:"perpage"`
	Total   int               `json:"total" yaml:"total"`
	Photos  []client.Response `json:"photos" yaml:"photos"`
}

func newSearchCommand(a *app) *cobra.Command {
	var (
		text    string
		tags    []string
		userID  string
		perPage int
		page    int
		all     bool
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search photos",
		Example: `  flickr search --text sunset --per-page 20
  flickr search --tags cat,dog --user 12345@N00 --all -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			params := client.Params{}
			if text != "" {
				params["text"] = text
			}
			if len(tags) > 0 {
				params["tags"] = strings.Join(tags, ",")
			}
			if userID != "" {
				params["user_id"] = userID
			}
			if len(params) == 0 {
				return fmt.Errorf("at least one of --text, --tags or --user is required")
			}

			f, err := a.flickr(ctx)
			if err != nil {
				return err
			}
			pager, err := f.Photos().SearchPager(params, perPage, f.Client().CacheEnabled())
			if err != nil {
				return err
			}

			var photos []client.Response
			if all {
				err = pager.All(ctx, func(item client.Response) error {
					photos = append(photos, item)
					return nil
				})
			} else {
				photos, err = pager.Get(ctx, page)
			}
			if err != nil {
				return err
			}

			result := searchResult{
				Page:    pager.Page(),
				Pages:   pager.Pages(),
				PerPage: pager.PerPage(),
				Total:   pager.Total(),
				Photos:  photos,
			}
			return a.render(result, func(w io.Writer) error {
				rows := make([][]string, 0, len(photos))
				for _, p := range photos {
					rows = append(rows, []string{p.String("id"), p.String("title"), p.String("owner")})
				}
				if err := renderTable(w, []string{"ID", "Title", "Owner"}, rows); err != nil {
					return err
				}
				if !all {
					fmt.Fprintf(w, "Page %d of %d (%d photos)\n", result.Page, result.Pages, result.Total)
				}
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&text, "text", "", "free text to match in title, description and tags")
	flags.StringSliceVar(&tags, "tags", nil, "comma-separated tags")
	flags.StringVar(&userID, "user", "", "restrict to this user's NSID")
	flags.IntVar(&perPage, "per-page", 100, "photos per page (max 500)")
	flags.IntVar(&page, "page", 1, "page to fetch")
	flags.BoolVar(&all, "all", false, "fetch every page")
	return cmd
}
