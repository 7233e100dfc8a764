package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/Sternrassler/flickr-client/pkg/flickr"
	"github.com/spf13/cobra"
)

func newPhotosCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photos",
		Short: "Inspect photos",
	}
	cmd.AddCommand(newPhotosInfoCommand(a), newPhotosSizesCommand(a))
	return cmd
}

func newPhotosInfoCommand(a *app) *cobra.Command {
	var secret string

	cmd := &cobra.Command{
		Use:   "info <photo-id>",
		Short: "Show photo details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.flickr(cmd.Context())
			if err != nil {
				return err
			}
			info, found, err := f.Photos().GetInfo(cmd.Context(), args[0], secret)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("photo %s not found", args[0])
			}

			return a.render(info, func(w io.Writer) error {
				privacy, _ := flickr.PrivacyLevelName(info.Privacy())
				short, _ := flickr.ShortURL(info.ID)
				return renderTable(w, []string{"Field", "Value"}, [][]string{
					{"ID", info.ID},
					{"Title", info.Title},
					{"Owner", fmt.Sprintf("%s (%s)", info.Owner.Username, info.Owner.NSID)},
					{"Taken", info.Dates.Taken},
					{"Views", strconv.FormatInt(int64(info.Views), 10)},
					{"Privacy", privacy},
					{"Image", flickr.ImageURL(info.Photo, flickr.SizeLarge1024)},
					{"Short URL", short},
				})
			})
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "photo secret, skips the permission check")
	return cmd
}

func newPhotosSizesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sizes <photo-id>",
		Short: "List the available sizes of a photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.flickr(cmd.Context())
			if err != nil {
				return err
			}
			sizes, found, err := f.Photos().GetSizes(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("photo %s not found", args[0])
			}

			return a.render(sizes, func(w io.Writer) error {
				rows := make([][]string, 0, len(sizes))
				for _, s := range sizes {
					rows = append(rows, []string{s.Label, fmt.Sprintf("%dx%d", s.Width, s.Height), s.Source})
				}
				return renderTable(w, []string{"Label", "Dimensions", "Source"}, rows)
			})
		},
	}
}
