package main

import (
	"fmt"
	"io"

	"github.com/Sternrassler/flickr-client/pkg/upload"
	"github.com/spf13/cobra"
)

func newUploadCommand(a *app) *cobra.Command {
	var (
		opts    upload.Options
		replace string
		public  bool
		friend  bool
		family  bool
		hidden  bool
	)

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload or replace a photo",
		Example: `  flickr upload sunset.jpg --title Sunset --tags "beach,summer evening" --public
  flickr upload fixed.jpg --replace 52345 --async`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.flickrClient(cmd.Context())
			if err != nil {
				return err
			}
			uploader := upload.New(c).WithLogger(a.logger)

			var resp *upload.Response
			if replace != "" {
				resp, err = uploader.Replace(cmd.Context(), args[0], replace, opts.Async)
			} else {
				flags := cmd.Flags()
				if flags.Changed("public") {
					opts.IsPublic = &public
				}
				if flags.Changed("friend") {
					opts.IsFriend = &friend
				}
				if flags.Changed("family") {
					opts.IsFamily = &family
				}
				if hidden {
					opts.Hidden = upload.HiddenYes
				}
				resp, err = uploader.Upload(cmd.Context(), args[0], opts)
			}
			if err != nil {
				return err
			}

			return a.render(resp, func(w io.Writer) error {
				if resp.TicketID != "" {
					_, err := fmt.Fprintf(w, "Upload queued, ticket %s\n", resp.TicketID)
					return err
				}
				return renderTable(w, []string{"Photo ID", "Secret"}, [][]string{{resp.PhotoID, resp.Secret}})
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Title, "title", "", "photo title")
	flags.StringVar(&opts.Description, "description", "", "photo description")
	flags.StringSliceVar(&opts.Tags, "tags", nil, "comma-separated tags; tags may contain spaces")
	flags.BoolVar(&public, "public", false, "visible to everyone")
	flags.BoolVar(&friend, "friend", false, "visible to friends")
	flags.BoolVar(&family, "family", false, "visible to family")
	flags.BoolVar(&hidden, "hidden", false, "hide from public searches")
	flags.BoolVar(&opts.Async, "async", false, "return a ticket instead of waiting")
	flags.StringVar(&replace, "replace", "", "replace the file of this photo id")
	return cmd
}
