package main

import (
	"fmt"

	"github.com/Sternrassler/flickr-client/pkg/flickr"
	"github.com/spf13/cobra"
)

func newShortURLCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shorturl",
		Short: "Convert between photo ids and flic.kr short URLs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "encode <photo-id>",
		Short: "Print the short URL of a photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := flickr.ShortURL(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, u)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "decode <short-url>",
		Short: "Print the photo id of a short URL or base58 code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := flickr.PhotoIDFromShortURL(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, id)
			return err
		},
	})
	return cmd
}
